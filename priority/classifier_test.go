package priority

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Thresholds(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  Level
	}{
		{"well above high", 7, LevelHigh},
		{"exactly high boundary", 5, LevelHigh},
		{"just below high", 4.999, LevelMedium},
		{"middle of medium", 3, LevelMedium},
		{"exactly medium boundary", 2, LevelMedium},
		{"just below medium", 1.999, LevelLow},
		{"one", 1, LevelLow},
		{"absent score decodes to zero", 0, LevelLow},
		{"negative", -3, LevelLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.score))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, LevelMedium, Classify(3.5))
	}
}

func TestLevel_Color(t *testing.T) {
	assert.Equal(t, "red", LevelHigh.Color())
	assert.Equal(t, "orange", LevelMedium.Color())
	assert.Equal(t, "green", LevelLow.Color())
}
