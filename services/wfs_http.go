package services

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"
)

// FeatureFetcher retrieves the current feature collection from an upstream
// source. The returned bool is true when the upstream reported Not Modified
// for the given ETag.
type FeatureFetcher interface {
	Fetch(etag string) (*FeatureCollection, string, bool, error)
}

type wfsFetcher struct {
	client *http.Client
	url    string
}

// NewWFSFetcher builds a fetcher for a WFS GetFeature endpoint returning
// GeoJSON (outputFormat=application/json).
func NewWFSFetcher(url string, timeout time.Duration) FeatureFetcher {
	return &wfsFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		url: url,
	}
}

func (w *wfsFetcher) Fetch(etag string) (*FeatureCollection, string, bool, error) {
	req, err := http.NewRequest(http.MethodGet, w.url, nil)
	if err != nil {
		return nil, "", false, err
	}
	req.Header.Set("Accept", "application/json")

	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, "", false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		log.Printf("WFS not modified (etag=%s)", etag)
		return nil, etag, true, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", false, errors.New("upstream WFS error, status: " + resp.Status)
	}

	var collection FeatureCollection
	if err := json.NewDecoder(resp.Body).Decode(&collection); err != nil {
		return nil, "", false, err
	}

	newETag := resp.Header.Get("ETag")
	log.Printf("Fetched %d features from WFS (%s, status=%s, etag=%s)", len(collection.Features), w.url, resp.Status, newETag)

	return &collection, newETag, false, nil
}
