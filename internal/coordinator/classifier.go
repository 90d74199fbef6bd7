package coordinator

import (
	"context"
	"errors"

	"github.com/reliefops/go-disaster-response/internal/models"
	"github.com/reliefops/go-disaster-response/internal/observability"
	"github.com/reliefops/go-disaster-response/internal/priority"
)

var errWeatherUnavailable = errors.New("weather classifier not configured")

// instrumentedClassifier counts lookup outcomes around the real classifier.
type instrumentedClassifier struct {
	inner   priority.WeatherClassifier
	metrics *observability.Metrics
}

func (ic *instrumentedClassifier) Classify(ctx context.Context, lat, lon float64, disasterType models.DisasterType) (priority.Impact, error) {
	impact, err := ic.inner.Classify(ctx, lat, lon, disasterType)
	if err != nil {
		ic.metrics.WeatherLookups.WithLabelValues("unavailable").Inc()
		return impact, err
	}
	ic.metrics.WeatherLookups.WithLabelValues("classified").Inc()
	return impact, nil
}
