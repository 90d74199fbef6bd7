// Package priority computes a report's urgency tier.
//
// The tier is a pure function of the report's fields, the weather-impact
// classification for its coordinates, and the current time: points are
// accumulated per factor and mapped onto four ordinal levels. Every
// contribution is recorded in a trace so a coordinator can audit how a
// tier was reached.
package priority

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/reliefops/go-disaster-response/internal/models"
)

// Weather risk levels recognized by the scorer. Any other classification
// contributes nothing.
const (
	RiskHigh   = "High"
	RiskMedium = "Medium"
	RiskLow    = "Low"
)

// Impact is a weather-risk classification for a disaster type at a location.
type Impact struct {
	RiskLevel string
	Details   string
}

// WeatherClassifier rates weather risk for a disaster type at coordinates.
// Implementations return an error when weather data cannot be resolved;
// scoring degrades to a zero contribution in that case.
type WeatherClassifier interface {
	Classify(ctx context.Context, lat, lon float64, disasterType models.DisasterType) (Impact, error)
}

// Tier thresholds on the accumulated score.
const (
	thresholdCritical = 8
	thresholdHigh     = 5
	thresholdMedium   = 3
)

// Result is the outcome of scoring one report.
type Result struct {
	Level models.PriorityLevel
	Score int
	Trace []string
}

// TraceText renders the scoring trace one line per contribution.
func (r Result) TraceText() string {
	return strings.Join(r.Trace, "\n")
}

// Score computes the priority tier for a report.
//
// A malformed occurrence timestamp is fatal and returns an error. A failed
// weather lookup is not: it contributes zero points and a trace note. The
// classifier may be nil, which is treated the same as an unavailable lookup.
func Score(ctx context.Context, r *models.Report, classifier WeatherClassifier) (Result, error) {
	// Recency depends on the timestamp, so reject malformed ones before
	// accumulating anything.
	occurred, err := r.OccurrenceTime()
	if err != nil {
		return Result{}, err
	}

	res := Result{}
	res.addf(0, "Disaster Type: %s", r.DisasterType)

	// Disaster-type base impact.
	switch r.DisasterType {
	case models.DisasterTypeWildfire, models.DisasterTypeHurricane, models.DisasterTypeEarthquake:
		res.addf(3, "Disaster: high impact            +3 points")
	case models.DisasterTypeFlood, models.DisasterTypeLandslide:
		res.addf(2, "Disaster: medium impact          +2 points")
	default:
		res.addf(0, "Disaster: unknown impact         +0 points")
	}

	// Weather impact at the report's coordinates.
	impact, ok := classifyWeather(ctx, r, classifier)
	if !ok {
		res.addf(0, "Weather: data unavailable        +0 points")
	} else {
		switch impact.RiskLevel {
		case RiskHigh:
			res.addf(5, "Weather: high impact             +5 points")
		case RiskMedium:
			res.addf(3, "Weather: medium impact           +3 points")
		case RiskLow:
			res.addf(1, "Weather: low impact              +1 point")
		default:
			res.addf(0, "Weather: minimal impact          +0 points")
		}
	}

	// Affected area. An absent field contributes nothing; a present but
	// unparseable value (including an empty string) goes through its own
	// zero-point branch rather than the small-area +1 branch.
	if r.AffectedAreaSize == nil {
		res.addf(0, "Affected area: not provided      +0 points")
	} else if area, err := strconv.ParseFloat(strings.TrimSpace(*r.AffectedAreaSize), 64); err != nil {
		res.addf(0, "Affected area: unreadable        +0 points")
	} else {
		switch {
		case area > 1000:
			res.addf(4, "Affected area: >1000             +4 points")
		case area > 100:
			res.addf(3, "Affected area: 100-999           +3 points")
		case area > 10:
			res.addf(2, "Affected area: 10-99             +2 points")
		default:
			res.addf(1, "Affected area: <10               +1 point")
		}
	}

	// Time sensitivity.
	hours := clock.Now().UTC().Sub(occurred).Hours()
	switch {
	case hours < 6:
		res.addf(3, "Time: very recent (<6h)          +3 points")
	case hours < 24:
		res.addf(2, "Time: recent (6-24h)             +2 points")
	case hours < 72:
		res.addf(1, "Time: older (24-72h)             +1 point")
	default:
		res.addf(0, "Time: stale (>72h)               +0 points")
	}

	// Critical infrastructure nearby.
	infra := strings.ToLower(r.NearbyInfrastructure)
	if strings.Contains(infra, "hospital") || strings.Contains(infra, "power plant") {
		res.addf(5, "Critical infrastructure          +5 points")
	}

	// Cascading effects: an earthquake near a dam can trigger a flood.
	if r.DisasterType == models.DisasterTypeEarthquake && strings.Contains(infra, "dam") {
		res.addf(3, "Cascading effects                +3 points")
	}

	res.Trace = append(res.Trace, fmt.Sprintf("Final score: %d", res.Score))

	switch {
	case res.Score >= thresholdCritical:
		res.Level = models.PriorityCritical
	case res.Score >= thresholdHigh:
		res.Level = models.PriorityHigh
	case res.Score >= thresholdMedium:
		res.Level = models.PriorityMedium
	default:
		res.Level = models.PriorityLow
	}
	res.Trace = append(res.Trace, fmt.Sprintf("Priority: %s", res.Level))

	return res, nil
}

func (r *Result) addf(points int, format string, args ...any) {
	r.Score += points
	r.Trace = append(r.Trace, fmt.Sprintf(format, args...))
}

func classifyWeather(ctx context.Context, r *models.Report, classifier WeatherClassifier) (Impact, bool) {
	if classifier == nil {
		return Impact{}, false
	}
	lat, lon, ok := r.Coordinates()
	if !ok {
		return Impact{}, false
	}
	impact, err := classifier.Classify(ctx, lat, lon, r.DisasterType)
	if err != nil {
		return Impact{}, false
	}
	return impact, true
}
