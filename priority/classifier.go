package priority

// Level is the visual severity bucket of a leak report.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Classify maps a priority score to its level. Total over all scores:
// >= 5 is high, >= 2 is medium, everything else (including a missing
// score, which decodes to 0) is low.
func Classify(score float64) Level {
	switch {
	case score >= 5:
		return LevelHigh
	case score >= 2:
		return LevelMedium
	}
	return LevelLow
}

// Color returns the marker color for the level.
func (l Level) Color() string {
	switch l {
	case LevelHigh:
		return "red"
	case LevelMedium:
		return "orange"
	}
	return "green"
}
