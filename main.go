package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/vigiagua/leakmap/config"
	"github.com/vigiagua/leakmap/observability"
	"github.com/vigiagua/leakmap/routes"
	"github.com/vigiagua/leakmap/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   0,
	})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection failed: %v", err)
	} else {
		log.Printf("Redis connected: %s", cfg.RedisAddr)
	}

	metrics := observability.NewMetrics()

	var fetcher services.FeatureFetcher
	if cfg.KoboAPIURL != "" {
		fetcher = services.NewKoboFetcher(cfg.KoboAPIURL, cfg.KoboToken, cfg.UpstreamTimeout)
		log.Printf("Feature source: KoboToolbox (%s)", cfg.KoboAPIURL)
	} else {
		fetcher = services.NewWFSFetcher(cfg.WFSURL, cfg.UpstreamTimeout)
		log.Printf("Feature source: WFS (%s)", cfg.WFSURL)
	}

	featureService := services.NewRedisFeatureService(rdb, fetcher, metrics, cfg.CacheTTL)

	go func() {
		if _, err := featureService.GetRaw(); err != nil {
			log.Printf("Cache warm-up failed: %v", err)
		} else {
			log.Printf("Cache warm-up completed")
		}
	}()

	routes.RegisterRoutes(app, featureService, rdb, cfg)

	log.Fatal(app.Listen(cfg.ListenAddr))
}
