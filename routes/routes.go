package routes

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/vigiagua/leakmap/config"
	"github.com/vigiagua/leakmap/priority"
	"github.com/vigiagua/leakmap/render"
	"github.com/vigiagua/leakmap/services"
)

func RegisterRoutes(app *fiber.App, svc services.FeatureService, rdb *redis.Client, cfg *config.Config) {
	app.Get("/", mapPageHandler(cfg))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/v1/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return c.Status(503).JSON(fiber.Map{"redis": "down"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/v1/features/raw", func(c *fiber.Ctx) error {
		raw, err := svc.GetRaw()
		if err != nil {
			return c.Status(502).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(raw)
	})

	app.Get("/v1/features", func(c *fiber.Ctx) error {
		collection, err := svc.GetCollection()
		if err != nil {
			return c.Status(502).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		features := make([]styledFeature, 0, len(collection.Features))
		for _, f := range collection.Features {
			features = append(features, styledFeature{
				Feature:   f,
				Level:     priority.Classify(f.Properties.PriorityScore),
				Style:     render.StyleFor(f.Properties),
				PopupHTML: render.Popup(f.Properties),
			})
		}

		return c.JSON(fiber.Map{
			"type":     "FeatureCollection",
			"count":    len(features),
			"features": features,
		})
	})

	app.Get("/v1/priority", func(c *fiber.Ctx) error {
		collection, err := svc.GetCollection()
		if err != nil {
			return c.Status(502).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		results := priority.Analyze(collection)
		items := make([]analyzedFeature, 0, len(results))
		for i, f := range collection.Features {
			items = append(items, analyzedFeature{
				Feature:  f,
				Priority: results[i],
			})
		}

		levelFilter := strings.ToLower(strings.TrimSpace(c.Query("priority_level")))
		if levelFilter != "" && levelFilter != "all" {
			filtered := make([]analyzedFeature, 0, len(items))
			for _, it := range items {
				if strings.ToLower(string(it.Priority.Level)) == levelFilter {
					filtered = append(filtered, it)
				}
			}
			items = filtered
		}

		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Priority.Score == items[j].Priority.Score {
				return submittedAt(items[i]).After(submittedAt(items[j]))
			}
			return items[i].Priority.Score > items[j].Priority.Score
		})

		limit := len(items)
		if q := strings.TrimSpace(c.Query("limit")); q != "" {
			if n, err := strconv.Atoi(q); err == nil && n > 0 && n < limit {
				limit = n
			}
		}

		return c.JSON(fiber.Map{
			"count": len(items),
			"items": items[:limit],
		})
	})

	app.Get("/v1/summary", func(c *fiber.Ctx) error {
		collection, err := svc.GetCollection()
		if err != nil {
			return c.Status(502).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		features := collection.Features
		statusCounts := buildCounts(features, func(f services.Feature) string { return f.Properties.Status })
		intensityCounts := buildCounts(features, func(f services.Feature) string { return f.Properties.Intensity })
		originCounts := buildCounts(features, func(f services.Feature) string { return f.Properties.Origin })

		return c.JSON(fiber.Map{
			"total":       len(features),
			"statuses":    fiber.Map{"total": len(statusCounts), "items": statusCounts},
			"intensities": fiber.Map{"total": len(intensityCounts), "items": intensityCounts},
			"origins":     fiber.Map{"total": len(originCounts), "items": originCounts},
		})
	})
}

// styledFeature is a feature enriched with everything the map page needs to
// draw its marker.
type styledFeature struct {
	services.Feature
	Level     priority.Level    `json:"priority_level"`
	Style     render.Attributes `json:"style"`
	PopupHTML string            `json:"popup_html"`
}

type analyzedFeature struct {
	services.Feature
	Priority priority.Result `json:"priority"`
}

type nameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func buildCounts(features []services.Feature, get func(services.Feature) string) []nameCount {
	temp := make(map[string]*nameCount)
	for _, f := range features {
		name := strings.TrimSpace(get(f))
		if name == "" {
			continue
		}

		key := strings.ToLower(name)
		if existing, ok := temp[key]; ok {
			existing.Count++
		} else {
			temp[key] = &nameCount{Name: name, Count: 1}
		}
	}

	result := make([]nameCount, 0, len(temp))
	for _, v := range temp {
		result = append(result, *v)
	}

	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})
	return result
}

func submittedAt(item analyzedFeature) time.Time {
	val := strings.TrimSpace(item.Properties.SubmittedAt)
	if val == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}
	}
	return t
}
