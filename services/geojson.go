package services

// FeatureCollection is the GeoJSON payload published by the WFS layer over
// the leak-report table (or assembled from KoboToolbox submissions).
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id,omitempty"`
	Geometry   Geometry       `json:"geometry"`
	Properties LeakProperties `json:"properties"`
}

type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lon, lat]
}

// LeakProperties mirrors the columns of the vazamentos_denuncias layer.
// PriorityScore defaults to 0 when the attribute is absent.
type LeakProperties struct {
	LeakType      string            `json:"tipo_vazamento"`
	Intensity     string            `json:"intensidade_vazamento"`
	Origin        string            `json:"origem_vazamento"`
	Description   string            `json:"descricao_detalhes"`
	PhotoURL      string            `json:"foto_url,omitempty"`
	PriorityScore float64           `json:"prioridade_score"`
	Status        string            `json:"status"`
	SubmittedAt   string            `json:"data_submissao"`
	OSMTags       map[string]string `json:"osm_tags,omitempty"`
}

// LatLon returns the feature's point coordinates in lat, lon order.
// GeoJSON stores them lon-first.
func (f Feature) LatLon() (float64, float64, bool) {
	if len(f.Geometry.Coordinates) < 2 {
		return 0, 0, false
	}
	return f.Geometry.Coordinates[1], f.Geometry.Coordinates[0], true
}
