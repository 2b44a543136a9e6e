package priority

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vigiagua/leakmap/services"
)

// Report statuses used by the field teams.
const (
	StatusReported   = "reportado"
	StatusInspecting = "em_inspecao"
	StatusRepaired   = "reparado"
)

const (
	proximityRadiusMeters = 100
	recentRepairedDays    = 30

	activeNeighborPoints   = 3
	repairedNeighborPoints = 5
)

// Result is the recomputed priority of one active report.
type Result struct {
	Score   int      `json:"score"`
	Level   Level    `json:"level"`
	Reasons []string `json:"reasons"`
}

// Analyze recomputes priority scores for the active reports in a collection.
// Clusters of active reports raise the score; a repaired report reappearing
// nearby raises it more, since recurrence points at a deeper fault. Returns
// one Result per feature, indexed like the input; non-active reports score
// zero and classify low like any zero score.
func Analyze(collection *services.FeatureCollection) []Result {
	features := collection.Features
	results := make([]Result, len(features))
	recentLimit := clock.Now().Add(-recentRepairedDays * 24 * time.Hour)

	for i, feature := range features {
		results[i] = Result{Level: Classify(0)}

		if !isActive(feature.Properties.Status) {
			continue
		}
		lat, lon, ok := feature.LatLon()
		if !ok {
			continue
		}

		var score int
		var reasons []string

		activeNearby := 0
		repairedNearby := 0
		for j, other := range features {
			if i == j {
				continue
			}
			olat, olon, ok := other.LatLon()
			if !ok || haversineMeters(lat, lon, olat, olon) > proximityRadiusMeters {
				continue
			}
			switch {
			case isActive(other.Properties.Status):
				activeNearby++
			case other.Properties.Status == StatusRepaired && submittedAfter(other.Properties.SubmittedAt, recentLimit):
				repairedNearby++
			}
		}

		if activeNearby > 0 {
			score += activeNearby * activeNeighborPoints
			reasons = append(reasons, strconv.Itoa(activeNearby)+" active report(s) within "+strconv.Itoa(proximityRadiusMeters)+" m")
		}
		if repairedNearby > 0 {
			score += repairedNearby * repairedNeighborPoints
			reasons = append(reasons, strconv.Itoa(repairedNearby)+" recently repaired report(s) within "+strconv.Itoa(proximityRadiusMeters)+" m (possible recurrence)")
		}
		if score < 0 {
			score = 0
		}

		results[i] = Result{
			Score:   score,
			Level:   Classify(float64(score)),
			Reasons: reasons,
		}
	}

	return results
}

func isActive(status string) bool {
	switch strings.TrimSpace(status) {
	case StatusReported, StatusInspecting:
		return true
	}
	return false
}

func submittedAfter(val string, limit time.Time) bool {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(val))
	if err != nil {
		return false
	}
	return !t.Before(limit)
}

const earthRadiusMeters = 6371000

// haversineMeters is the great-circle distance between two WGS-84 points.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
