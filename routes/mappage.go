package routes

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/vigiagua/leakmap/config"
)

// mapPage is the viewer itself: one base tile layer plus one fetch of the
// styled features. Markers are added only after the whole collection has
// been received and decoded; any failure surfaces a single alert.
const mapPage = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Mapa de Vazamentos</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<style>
  html, body { margin: 0; height: 100%; }
  #map { height: 100%; }
</style>
</head>
<body>
<div id="map"></div>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script>
  const map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});

  L.tileLayer({{.TileURL}}, {
    attribution: {{.TileAttribution}}
  }).addTo(map);

  fetch('/v1/features')
    .then((resp) => {
      if (!resp.ok) {
        throw new Error('HTTP ' + resp.status);
      }
      return resp.json();
    })
    .then((data) => {
      const markers = L.layerGroup();
      for (const feature of data.features) {
        const [lon, lat] = feature.geometry.coordinates;
        L.circleMarker([lat, lon], feature.style)
          .bindPopup(feature.popup_html)
          .addTo(markers);
      }
      markers.addTo(map);
    })
    .catch((err) => {
      console.error('Falha ao carregar as denúncias de vazamento:', err);
      alert('Não foi possível carregar as denúncias de vazamento.');
    });
</script>
</body>
</html>
`

var mapPageTmpl = template.Must(template.New("map").Parse(mapPage))

type mapPageData struct {
	TileURL         string
	TileAttribution string
	CenterLat       float64
	CenterLon       float64
	Zoom            int
}

func mapPageHandler(cfg *config.Config) fiber.Handler {
	data := mapPageData{
		TileURL:         cfg.TileURL,
		TileAttribution: cfg.TileAttribution,
		CenterLat:       cfg.CenterLat,
		CenterLon:       cfg.CenterLon,
		Zoom:            cfg.Zoom,
	}

	return func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := mapPageTmpl.Execute(&buf, data); err != nil {
			return c.Status(500).SendString("failed to render map page")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(buf.Bytes())
	}
}
