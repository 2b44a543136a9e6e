package render

import (
	"github.com/vigiagua/leakmap/priority"
	"github.com/vigiagua/leakmap/services"
)

// Attributes are the Leaflet circleMarker options for one feature. JSON
// field names match the Leaflet option names so the page can pass the
// object straight through.
type Attributes struct {
	Radius      int     `json:"radius"`
	FillColor   string  `json:"fillColor"`
	Color       string  `json:"color"`
	Weight      int     `json:"weight"`
	Opacity     float64 `json:"opacity"`
	FillOpacity float64 `json:"fillOpacity"`
}

// StyleFor derives the marker style for a feature. Only the fill color
// varies, driven by the priority score; everything else is fixed.
func StyleFor(props services.LeakProperties) Attributes {
	return Attributes{
		Radius:      8,
		FillColor:   priority.Classify(props.PriorityScore).Color(),
		Color:       "#000",
		Weight:      1,
		Opacity:     1,
		FillOpacity: 0.8,
	}
}
