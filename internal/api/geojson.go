package api

import (
	"strings"

	"github.com/reliefops/go-disaster-response/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func toGeoJSON(reports []models.Report) FeatureCollection {
	features := make([]Feature, 0, len(reports))

	for i := range reports {
		r := &reports[i]
		if _, _, ok := r.Coordinates(); !ok {
			continue
		}
		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{r.Longitude, r.Latitude},
			},
			Properties: map[string]any{
				"id":              r.ID,
				"reference":       r.Reference,
				"type":            strings.ToLower(r.DisasterType.String()),
				"location":        r.Location,
				"priority":        strings.ToLower(r.PriorityLevel.String()),
				"response_status": r.ResponseStatus.String(),
				"occurred_at":     r.OccurredAt,
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
