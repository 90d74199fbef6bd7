package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliefops/go-disaster-response/internal/models"
	"github.com/reliefops/go-disaster-response/internal/priority"
)

func TestClassify_FetchesAndRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "-23.3800", r.URL.Query().Get("latitude"))
		assert.Equal(t, "150.5100", r.URL.Query().Get("longitude"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"current":{"temperature_2m":38.2,"relative_humidity_2m":18,"precipitation":0,"wind_speed_10m":25}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, nil)
	impact, err := c.Classify(context.Background(), -23.38, 150.51, models.DisasterTypeWildfire)
	require.NoError(t, err)

	assert.Equal(t, priority.RiskHigh, impact.RiskLevel)
	assert.Contains(t, impact.Details, "38.2°C")
}

func TestClassify_Non200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, nil)
	_, err := c.Classify(context.Background(), 0, 0, models.DisasterTypeFlood)
	assert.Error(t, err)
}

func TestClassify_UnreachableIsError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond, nil)
	_, err := c.Classify(context.Background(), 0, 0, models.DisasterTypeFlood)
	assert.Error(t, err)
}

func TestClassifyConditions(t *testing.T) {
	tests := []struct {
		name string
		cond Conditions
		dt   models.DisasterType
		want string
	}{
		{"hot dry wildfire", Conditions{TemperatureC: 36, HumidityPct: 20}, models.DisasterTypeWildfire, priority.RiskHigh},
		{"warm wildfire", Conditions{TemperatureC: 31, HumidityPct: 50}, models.DisasterTypeWildfire, priority.RiskMedium},
		{"cool damp wildfire", Conditions{TemperatureC: 15, HumidityPct: 80}, models.DisasterTypeWildfire, priority.RiskLow},
		{"hurricane gale", Conditions{WindSpeedKMH: 110}, models.DisasterTypeHurricane, priority.RiskHigh},
		{"hurricane breeze", Conditions{WindSpeedKMH: 30}, models.DisasterTypeHurricane, priority.RiskLow},
		{"flood downpour", Conditions{PrecipMM: 14}, models.DisasterTypeFlood, priority.RiskHigh},
		{"flood drizzle", Conditions{PrecipMM: 3}, models.DisasterTypeFlood, priority.RiskMedium},
		{"landslide rain", Conditions{PrecipMM: 9}, models.DisasterTypeLandslide, priority.RiskHigh},
		{"quake calm", Conditions{}, models.DisasterTypeEarthquake, priority.RiskLow},
		{"quake storm", Conditions{WindSpeedKMH: 70}, models.DisasterTypeEarthquake, priority.RiskMedium},
		{"other calm", Conditions{}, models.DisasterTypeOther, priority.RiskLow},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyConditions(tc.cond, tc.dt)
			assert.Equal(t, tc.want, got.RiskLevel)
		})
	}
}
