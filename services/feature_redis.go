package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/vigiagua/leakmap/observability"
)

const redisKeyRaw = "leakmap:features:raw"

// FeatureService serves the current feature collection, raw or decoded.
type FeatureService interface {
	GetRaw() ([]byte, error)
	GetCollection() (*FeatureCollection, error)
}

type redisFeatureService struct {
	redis    *redis.Client
	fetcher  FeatureFetcher
	metrics  *observability.Metrics
	ttl      time.Duration
	refreshM sync.Mutex
}

type cachedPayload struct {
	ETag string          `json:"etag"`
	JSON json.RawMessage `json:"json"`
}

// NewRedisFeatureService wraps a fetcher with a Redis-backed raw-payload
// cache. A warm cache is served immediately while a background refresh
// revalidates against the upstream ETag.
func NewRedisFeatureService(rdb *redis.Client, fetcher FeatureFetcher, metrics *observability.Metrics, ttl time.Duration) FeatureService {
	return &redisFeatureService{
		redis:   rdb,
		fetcher: fetcher,
		metrics: metrics,
		ttl:     ttl,
	}
}

func (s *redisFeatureService) GetRaw() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	val, err := s.redis.Get(ctx, redisKeyRaw).Bytes()
	if err == nil {
		var cached cachedPayload
		if json.Unmarshal(val, &cached) == nil {
			s.metrics.CacheLookups.WithLabelValues("hit").Inc()
			s.tryRefresh(cached.ETag)
			return cached.JSON, nil
		}
	}
	s.metrics.CacheLookups.WithLabelValues("miss").Inc()

	data, etag, _, err := s.fetch("")
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errors.New("no data returned from fetcher")
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	s.saveRawCache(etag, raw)
	return raw, nil
}

func (s *redisFeatureService) GetCollection() (*FeatureCollection, error) {
	raw, err := s.GetRaw()
	if err != nil {
		return nil, err
	}

	var collection FeatureCollection
	if err := json.Unmarshal(raw, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// fetch delegates to the fetcher and records outcome and duration.
func (s *redisFeatureService) fetch(etag string) (*FeatureCollection, string, bool, error) {
	timer := prometheus.NewTimer(s.metrics.FetchDuration)
	data, newETag, notModified, err := s.fetcher.Fetch(etag)
	timer.ObserveDuration()

	switch {
	case err != nil:
		s.metrics.UpstreamRequests.WithLabelValues("error").Inc()
	case notModified:
		s.metrics.UpstreamRequests.WithLabelValues("not_modified").Inc()
	default:
		s.metrics.UpstreamRequests.WithLabelValues("success").Inc()
		if data != nil {
			s.metrics.FeaturesLoaded.Set(float64(len(data.Features)))
		}
	}
	return data, newETag, notModified, err
}

func (s *redisFeatureService) tryRefresh(etag string) {
	if !s.refreshM.TryLock() {
		return
	}

	go func() {
		defer s.refreshM.Unlock()

		data, newETag, notModified, err := s.fetch(etag)
		if err != nil {
			log.Printf("cache refresh failed: %v", err)
			return
		}
		if notModified || data == nil {
			return
		}

		raw, err := json.Marshal(data)
		if err != nil {
			return
		}
		s.saveRawCache(newETag, raw)
	}()
}

func (s *redisFeatureService) saveRawCache(etag string, raw []byte) {
	payload := cachedPayload{
		ETag: etag,
		JSON: raw,
	}

	bytes, err := json.Marshal(payload)
	if err != nil {
		log.Printf("marshal cache failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.redis.Set(ctx, redisKeyRaw, bytes, s.ttl).Err(); err != nil {
		log.Printf("failed to save redis key=%s: %v", redisKeyRaw, err)
	} else {
		log.Printf("redis cache updated (etag=%s, ttl=%s)", etag, s.ttl)
	}
}
