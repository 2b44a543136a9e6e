package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vigiagua/leakmap/services"
)

func TestPopup_EmptyProperties(t *testing.T) {
	html := Popup(services.LeakProperties{})

	assert.Equal(t, 6, strings.Count(html, "N/A"), "leak type, description, intensity, origin, status and date default to N/A")
	assert.Contains(t, html, "Prioridade: 0")
	assert.Contains(t, html, "Data: N/A")
	assert.NotContains(t, html, "<img")
}

func TestPopup_AllFields(t *testing.T) {
	html := Popup(services.LeakProperties{
		LeakType:      "leak",
		Intensity:     "severe",
		Origin:        "pipe",
		Description:   "Vazamento na calçada",
		PriorityScore: 7,
		Status:        "reportado",
		SubmittedAt:   "2025-06-15T12:00:00Z",
	})

	assert.Contains(t, html, "Vazamento: leak")
	assert.Contains(t, html, "Intensidade: severe")
	assert.Contains(t, html, "Origem: pipe")
	assert.Contains(t, html, "Vazamento na calçada")
	assert.Contains(t, html, "Prioridade: 7")
	assert.Contains(t, html, "Status: reportado")
	assert.Contains(t, html, "Data: 15/06/2025 12:00")
	assert.NotContains(t, html, "N/A")
}

func TestPopup_PhotoIncludedOnlyWhenPresent(t *testing.T) {
	withPhoto := Popup(services.LeakProperties{
		PhotoURL: "https://kc.example.org/attachments/foto.jpg",
	})
	assert.Contains(t, withPhoto, "<img")
	assert.Contains(t, withPhoto, "https://kc.example.org/attachments/foto.jpg")

	withoutPhoto := Popup(services.LeakProperties{})
	assert.NotContains(t, withoutPhoto, "<img")
}

func TestPopup_EscapesUserContent(t *testing.T) {
	html := Popup(services.LeakProperties{
		Description: "<script>alert(1)</script>",
	})

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestPopup_UnparseableTimestampPassesThrough(t *testing.T) {
	html := Popup(services.LeakProperties{SubmittedAt: "ontem"})
	assert.Contains(t, html, "Data: ontem")
}

func TestPopup_FractionalScore(t *testing.T) {
	html := Popup(services.LeakProperties{PriorityScore: 2.5})
	assert.Contains(t, html, "Prioridade: 2.5")
}
