// Package weather classifies weather-driven risk for a disaster type at a
// location, backed by an Open-Meteo compatible current-conditions endpoint.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/reliefops/go-disaster-response/internal/models"
	"github.com/reliefops/go-disaster-response/internal/priority"
)

const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Client implements priority.WeatherClassifier over an Open-Meteo style API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Conditions are the current observations used by the classifier.
type Conditions struct {
	TemperatureC float64 `json:"temperature_2m"`
	HumidityPct  float64 `json:"relative_humidity_2m"`
	PrecipMM     float64 `json:"precipitation"`
	WindSpeedKMH float64 `json:"wind_speed_10m"`
}

type response struct {
	Current Conditions `json:"current"`
}

// Classify fetches current conditions and rates the weather risk for the
// given disaster type. Errors mean "weather unavailable"; the caller
// degrades to a zero scoring contribution.
func (c *Client) Classify(ctx context.Context, lat, lon float64, disasterType models.DisasterType) (priority.Impact, error) {
	cond, err := c.fetch(ctx, lat, lon)
	if err != nil {
		return priority.Impact{}, err
	}
	return ClassifyConditions(cond, disasterType), nil
}

func (c *Client) fetch(ctx context.Context, lat, lon float64) (Conditions, error) {
	params := url.Values{
		"latitude":  {fmt.Sprintf("%.4f", lat)},
		"longitude": {fmt.Sprintf("%.4f", lon)},
		"current":   {"temperature_2m,relative_humidity_2m,precipitation,wind_speed_10m"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Conditions{}, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Conditions{}, fmt.Errorf("error fetching weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Conditions{}, fmt.Errorf("weather API error: status %d: %s", resp.StatusCode, body)
	}

	var data response
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Conditions{}, fmt.Errorf("error decoding weather response: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug("weather conditions fetched",
			"lat", lat, "lon", lon,
			"temp_c", data.Current.TemperatureC,
			"wind_kmh", data.Current.WindSpeedKMH,
			"precip_mm", data.Current.PrecipMM,
		)
	}
	return data.Current, nil
}

// ClassifyConditions maps observed conditions onto a risk level for one
// disaster type. Thresholds are deliberately coarse: the rating feeds a
// point-based priority score, not a forecast product.
func ClassifyConditions(c Conditions, disasterType models.DisasterType) priority.Impact {
	details := fmt.Sprintf("%.1f°C, wind %.0f km/h, precipitation %.1f mm, humidity %.0f%%",
		c.TemperatureC, c.WindSpeedKMH, c.PrecipMM, c.HumidityPct)

	var risk string
	switch disasterType {
	case models.DisasterTypeWildfire:
		// Hot, dry and windy drives fire spread.
		switch {
		case c.TemperatureC >= 35 && c.HumidityPct <= 25:
			risk = priority.RiskHigh
		case c.TemperatureC >= 30 || c.HumidityPct <= 35 || c.WindSpeedKMH >= 40:
			risk = priority.RiskMedium
		default:
			risk = priority.RiskLow
		}
	case models.DisasterTypeHurricane:
		switch {
		case c.WindSpeedKMH >= 90:
			risk = priority.RiskHigh
		case c.WindSpeedKMH >= 60:
			risk = priority.RiskMedium
		default:
			risk = priority.RiskLow
		}
	case models.DisasterTypeFlood:
		switch {
		case c.PrecipMM >= 10:
			risk = priority.RiskHigh
		case c.PrecipMM >= 2:
			risk = priority.RiskMedium
		default:
			risk = priority.RiskLow
		}
	case models.DisasterTypeLandslide:
		// Sustained rain saturates slopes.
		switch {
		case c.PrecipMM >= 8:
			risk = priority.RiskHigh
		case c.PrecipMM >= 2:
			risk = priority.RiskMedium
		default:
			risk = priority.RiskLow
		}
	case models.DisasterTypeEarthquake:
		// Weather does not cause earthquakes but bad conditions slow the
		// response.
		if c.WindSpeedKMH >= 60 || c.PrecipMM >= 5 {
			risk = priority.RiskMedium
		} else {
			risk = priority.RiskLow
		}
	default:
		if c.WindSpeedKMH >= 75 || c.PrecipMM >= 10 {
			risk = priority.RiskMedium
		} else {
			risk = priority.RiskLow
		}
	}

	return priority.Impact{RiskLevel: risk, Details: details}
}
