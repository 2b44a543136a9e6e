package services

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// koboSubmission is one raw form submission from the KoboToolbox data API.
type koboSubmission struct {
	ID             json.Number `json:"_id"`
	SubmissionTime string      `json:"_submission_time"`
	Location       string      `json:"localizacao_vazamento"` // "lat lon alt acc"
	LeakType       string      `json:"tipo_vazamento"`
	Intensity      string      `json:"intensidade_vazamento"`
	Origin         string      `json:"origem_vazamento"`
	Description    string      `json:"descricao_detalhes"`
	Photo          string      `json:"foto_vazamento"`
}

type koboFetcher struct {
	client *http.Client
	apiURL string
	token  string
}

// NewKoboFetcher builds a fetcher that reads submissions straight from the
// KoboToolbox data API and assembles them into a GeoJSON FeatureCollection,
// for deployments without a WFS layer in front of the report table.
func NewKoboFetcher(apiURL, token string, timeout time.Duration) FeatureFetcher {
	return &koboFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		apiURL: apiURL,
		token:  token,
	}
}

func (k *koboFetcher) Fetch(etag string) (*FeatureCollection, string, bool, error) {
	req, err := http.NewRequest(http.MethodGet, k.apiURL, nil)
	if err != nil {
		return nil, "", false, err
	}
	req.Header.Set("Authorization", k.token)
	req.Header.Set("Accept", "application/json")

	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, "", false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		log.Printf("KoboToolbox not modified (etag=%s)", etag)
		return nil, etag, true, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", false, errors.New("KoboToolbox API error, status: " + resp.Status)
	}

	var submissions []koboSubmission
	if err := json.NewDecoder(resp.Body).Decode(&submissions); err != nil {
		return nil, "", false, err
	}

	collection := &FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]Feature, 0, len(submissions)),
	}
	for _, sub := range submissions {
		feature, ok := k.toFeature(sub)
		if !ok {
			log.Printf("skipping kobo submission %s: no usable location", sub.ID.String())
			continue
		}
		collection.Features = append(collection.Features, feature)
	}

	newETag := resp.Header.Get("ETag")
	log.Printf("Fetched %d submissions from KoboToolbox (%d placed)", len(submissions), len(collection.Features))

	return collection, newETag, false, nil
}

func (k *koboFetcher) toFeature(sub koboSubmission) (Feature, bool) {
	lat, lon, ok := parseKoboLocation(sub.Location)
	if !ok {
		return Feature{}, false
	}

	props := LeakProperties{
		LeakType:    sub.LeakType,
		Intensity:   sub.Intensity,
		Origin:      sub.Origin,
		Description: sub.Description,
		Status:      "reportado",
		SubmittedAt: sub.SubmissionTime,
	}
	if sub.Photo != "" {
		props.PhotoURL = k.attachmentURL(sub.Photo)
	}
	props.OSMTags = osmTags(props)

	return Feature{
		Type: "Feature",
		ID:   sub.ID.String(),
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: []float64{lon, lat},
		},
		Properties: props,
	}, true
}

// attachmentURL rebuilds the photo URL from the data API base, the same way
// the sync job stores it: <base>/attachments/<filename>.
func (k *koboFetcher) attachmentURL(filename string) string {
	base, _, found := strings.Cut(k.apiURL, "/data/")
	if !found {
		base = k.apiURL
	}
	return base + "/attachments/" + filename
}

// parseKoboLocation splits the Kobo geopoint string "lat lon alt acc".
func parseKoboLocation(val string) (float64, float64, bool) {
	parts := strings.Fields(val)
	if len(parts) < 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// osmTags derives OpenStreetMap-style tags from the form answers, matching
// the mapping used when reports are exported upstream.
func osmTags(props LeakProperties) map[string]string {
	tags := make(map[string]string)
	if props.LeakType != "" {
		tags["waterway"] = props.LeakType
		if props.LeakType == "pipe_burst" {
			tags["leak"] = "pipe_burst"
		}
	}
	if props.Intensity != "" {
		tags["leak"] = props.Intensity
	}
	if props.Origin != "" {
		tags["leak:source"] = props.Origin
	}
	if props.Description != "" {
		tags["description"] = props.Description
	}
	if props.PhotoURL != "" {
		tags["image"] = props.PhotoURL
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
