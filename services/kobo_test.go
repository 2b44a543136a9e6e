package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKoboToken = "Token abc123"

const koboBody = `[
  {
    "_id": 101,
    "_submission_time": "2025-06-15T12:00:00Z",
    "localizacao_vazamento": "-23.5505 -46.6333 760.0 5.0",
    "tipo_vazamento": "pipe_burst",
    "intensidade_vazamento": "severe",
    "origem_vazamento": "valve",
    "descricao_detalhes": "Jato de água na rua",
    "foto_vazamento": "foto101.jpg"
  },
  {
    "_id": 102,
    "_submission_time": "2025-06-15T13:00:00Z",
    "localizacao_vazamento": "",
    "tipo_vazamento": "leak"
  }
]`

func newKoboServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testKoboToken, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestKoboFetcher_BuildsFeatures(t *testing.T) {
	srv := newKoboServer(t, http.StatusOK, koboBody)
	defer srv.Close()

	fetcher := NewKoboFetcher(srv.URL+"/api/v1/data/123", testKoboToken, 5*time.Second)
	collection, _, notModified, err := fetcher.Fetch("")
	require.NoError(t, err)
	assert.False(t, notModified)

	assert.Equal(t, "FeatureCollection", collection.Type)
	// The second submission has no usable location and is dropped.
	require.Len(t, collection.Features, 1)

	f := collection.Features[0]
	assert.Equal(t, "101", f.ID)
	assert.Equal(t, "Point", f.Geometry.Type)
	// GeoJSON is lon-first; the Kobo geopoint string is lat-first.
	assert.Equal(t, []float64{-46.6333, -23.5505}, f.Geometry.Coordinates)

	assert.Equal(t, "pipe_burst", f.Properties.LeakType)
	assert.Equal(t, "severe", f.Properties.Intensity)
	assert.Equal(t, "valve", f.Properties.Origin)
	assert.Equal(t, "Jato de água na rua", f.Properties.Description)
	assert.Equal(t, "reportado", f.Properties.Status)
	assert.Equal(t, "2025-06-15T12:00:00Z", f.Properties.SubmittedAt)
	assert.Equal(t, 0.0, f.Properties.PriorityScore)
}

func TestKoboFetcher_AttachmentURL(t *testing.T) {
	srv := newKoboServer(t, http.StatusOK, koboBody)
	defer srv.Close()

	fetcher := NewKoboFetcher(srv.URL+"/api/v1/data/123", testKoboToken, 5*time.Second)
	collection, _, _, err := fetcher.Fetch("")
	require.NoError(t, err)

	require.Len(t, collection.Features, 1)
	assert.Equal(t, srv.URL+"/api/v1/attachments/foto101.jpg", collection.Features[0].Properties.PhotoURL)
}

func TestKoboFetcher_OSMTags(t *testing.T) {
	srv := newKoboServer(t, http.StatusOK, koboBody)
	defer srv.Close()

	fetcher := NewKoboFetcher(srv.URL+"/api/v1/data/123", testKoboToken, 5*time.Second)
	collection, _, _, err := fetcher.Fetch("")
	require.NoError(t, err)

	tags := collection.Features[0].Properties.OSMTags
	assert.Equal(t, "pipe_burst", tags["waterway"])
	// Intensity overrides the pipe_burst marker on the leak key.
	assert.Equal(t, "severe", tags["leak"])
	assert.Equal(t, "valve", tags["leak:source"])
	assert.Equal(t, "Jato de água na rua", tags["description"])
	assert.NotEmpty(t, tags["image"])
}

func TestKoboFetcher_APIError(t *testing.T) {
	srv := newKoboServer(t, http.StatusUnauthorized, `{"detail":"Invalid token."}`)
	defer srv.Close()

	fetcher := NewKoboFetcher(srv.URL+"/api/v1/data/123", testKoboToken, 5*time.Second)
	_, _, _, err := fetcher.Fetch("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestParseKoboLocation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLat float64
		wantLon float64
		wantOK  bool
	}{
		{"full geopoint", "-23.5505 -46.6333 760.0 5.0", -23.5505, -46.6333, true},
		{"lat lon only", "-8.0476 -34.877", -8.0476, -34.877, true},
		{"empty", "", 0, 0, false},
		{"single value", "-23.5", 0, 0, false},
		{"garbage", "aqui perto", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon, ok := parseKoboLocation(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantLat, lat)
				assert.Equal(t, tt.wantLon, lon)
			}
		})
	}
}
