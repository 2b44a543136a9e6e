package render

import (
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/vigiagua/leakmap/services"
)

const notAvailable = "N/A"

var popupTmpl = template.Must(template.New("popup").Parse(strings.TrimSpace(`
<b>Vazamento: {{.LeakType}}</b><br>
Descrição: {{.Description}}<br>
Intensidade: {{.Intensity}}<br>
Origem: {{.Origin}}<br>
Prioridade: {{.Score}}<br>
Status: {{.Status}}<br>
Data: {{.SubmittedAt}}
{{- if .PhotoURL}}<br><img src="{{.PhotoURL}}" alt="Foto do vazamento" width="150">{{end}}
`)))

type popupData struct {
	LeakType    string
	Description string
	Intensity   string
	Origin      string
	Score       string
	Status      string
	SubmittedAt string
	PhotoURL    string
}

// Popup builds the HTML popup body for a feature. Absent fields render as
// "N/A" (the score as 0); the photo is included only when a URL is present.
// Values are escaped by the template.
func Popup(props services.LeakProperties) string {
	data := popupData{
		LeakType:    orNA(props.LeakType),
		Description: orNA(props.Description),
		Intensity:   orNA(props.Intensity),
		Origin:      orNA(props.Origin),
		Score:       strconv.FormatFloat(props.PriorityScore, 'f', -1, 64),
		Status:      orNA(props.Status),
		SubmittedAt: formatSubmittedAt(props.SubmittedAt),
		PhotoURL:    props.PhotoURL,
	}

	var b strings.Builder
	if err := popupTmpl.Execute(&b, data); err != nil {
		return ""
	}
	return b.String()
}

func orNA(val string) string {
	if strings.TrimSpace(val) == "" {
		return notAvailable
	}
	return val
}

// formatSubmittedAt renders the submission timestamp in the dd/mm/yyyy
// order the reporting teams use. Unparseable values pass through verbatim.
func formatSubmittedAt(val string) string {
	val = strings.TrimSpace(val)
	if val == "" {
		return notAvailable
	}
	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return val
	}
	return t.Format("02/01/2006 15:04")
}
