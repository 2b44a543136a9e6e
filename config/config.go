package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultTileURL     = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	defaultAttribution = "&copy; OpenStreetMap contributors"
)

// Config holds all service settings, populated from environment variables.
// Loaded once at startup and never mutated.
type Config struct {
	ListenAddr      string
	RedisAddr       string
	CacheTTL        time.Duration
	UpstreamTimeout time.Duration

	// Feature source. WFSURL is the default source; when KoboAPIURL is set
	// the service reads raw KoboToolbox submissions instead.
	WFSURL     string
	KoboAPIURL string
	KoboToken  string

	// Map viewer settings injected into the rendered page.
	TileURL         string
	TileAttribution string
	CenterLat       float64
	CenterLon       float64
	Zoom            int
}

// Load reads configuration from environment variables, applying defaults
// where unset. It fails fast on missing or out-of-range values.
func Load() (*Config, error) {
	cacheTTL, err := parseDuration("CACHE_TTL", "60s")
	if err != nil {
		return nil, err
	}

	upstreamTimeout, err := parseDuration("UPSTREAM_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	centerLat, err := parseFloat("CENTER_LAT", "-23.5505")
	if err != nil {
		return nil, err
	}

	centerLon, err := parseFloat("CENTER_LON", "-46.6333")
	if err != nil {
		return nil, err
	}

	zoom, err := parseInt("ZOOM", "13")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ListenAddr:      envOrDefault("LISTEN_ADDR", ":3000"),
		RedisAddr:       envOrDefault("REDIS_ADDR", "redis:6379"),
		CacheTTL:        cacheTTL,
		UpstreamTimeout: upstreamTimeout,

		WFSURL:     os.Getenv("WFS_URL"),
		KoboAPIURL: os.Getenv("KOBO_API_URL"),
		KoboToken:  os.Getenv("KOBO_TOKEN"),

		TileURL:         envOrDefault("TILE_URL", defaultTileURL),
		TileAttribution: envOrDefault("TILE_ATTRIBUTION", defaultAttribution),
		CenterLat:       centerLat,
		CenterLon:       centerLon,
		Zoom:            zoom,
	}

	if cfg.WFSURL == "" && cfg.KoboAPIURL == "" {
		return nil, errors.New("WFS_URL is required (or set KOBO_API_URL to read submissions directly)")
	}
	if cfg.KoboAPIURL != "" && cfg.KoboToken == "" {
		return nil, errors.New("KOBO_API_URL is set but KOBO_TOKEN is not")
	}
	if cfg.CenterLat < -90 || cfg.CenterLat > 90 {
		return nil, fmt.Errorf("CENTER_LAT out of range: %v", cfg.CenterLat)
	}
	if cfg.CenterLon < -180 || cfg.CenterLon > 180 {
		return nil, fmt.Errorf("CENTER_LON out of range: %v", cfg.CenterLon)
	}
	if cfg.Zoom < 0 || cfg.Zoom > 22 {
		return nil, fmt.Errorf("ZOOM out of range: %d", cfg.Zoom)
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, envOrDefault(key, def))
	}
	return d, nil
}

func parseFloat(key, def string) (float64, error) {
	f, err := strconv.ParseFloat(envOrDefault(key, def), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, envOrDefault(key, def))
	}
	return f, nil
}

func parseInt(key, def string) (int, error) {
	n, err := strconv.Atoi(envOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, envOrDefault(key, def))
	}
	return n, nil
}
