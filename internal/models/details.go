package models

import (
	"fmt"
	"strings"
)

type detailField struct {
	label string
	value func(*Report) string
}

// detailFields drives the disaster-specific detail formatter. Every
// department renders the same fields for a given disaster type, so the
// table lives here instead of being repeated per department.
var detailFields = map[DisasterType][]detailField{
	DisasterTypeWildfire: {
		{"Fire Intensity", func(r *Report) string { return r.FireIntensity }},
		{"Affected Area Size", func(r *Report) string { return derefOrEmpty(r.AffectedAreaSize) }},
		{"Nearby Infrastructure", func(r *Report) string { return r.NearbyInfrastructure }},
	},
	DisasterTypeHurricane: {
		{"Wind Speed", func(r *Report) string { return r.WindSpeed }},
		{"Flood Risk", func(r *Report) string { return fmt.Sprintf("%t", r.FloodRisk) }},
		{"Evacuation Status", func(r *Report) string { return r.EvacuationStatus }},
	},
	DisasterTypeEarthquake: {
		{"Magnitude", func(r *Report) string { return r.Magnitude }},
		{"Depth", func(r *Report) string { return r.Depth }},
		{"Aftershocks Expected", func(r *Report) string { return fmt.Sprintf("%t", r.AftershocksExpected) }},
	},
	DisasterTypeFlood: {
		{"Water Level", func(r *Report) string { return r.WaterLevel }},
		{"Flood Evacuation Status", func(r *Report) string { return r.FloodEvacuationStatus }},
		{"Infrastructure Damage", func(r *Report) string { return r.InfrastructureDamage }},
	},
	DisasterTypeLandslide: {
		{"Slope Stability", func(r *Report) string { return r.SlopeStability }},
		{"Blocked Roads", func(r *Report) string { return r.BlockedRoads }},
		{"Casualties/Injuries", func(r *Report) string { return r.CasualtiesInjuries }},
	},
}

// genericFields is the fallthrough for unknown disaster types.
var genericFields = []detailField{
	{"Disaster Description", func(r *Report) string { return r.DisasterDescription }},
	{"Estimated Impact", func(r *Report) string { return r.EstimatedImpact }},
}

// AppendDetails writes the disaster-specific detail lines for the report
// into sb, one "Label: value" line per field.
func AppendDetails(sb *strings.Builder, r *Report) {
	fields, ok := detailFields[r.DisasterType]
	if !ok {
		fields = genericFields
	}
	for _, f := range fields {
		sb.WriteString(f.label)
		sb.WriteString(": ")
		sb.WriteString(f.value(r))
		sb.WriteString("\n")
	}
}

// Details renders the disaster-specific detail block as a string.
func Details(r *Report) string {
	var sb strings.Builder
	AppendDetails(&sb, r)
	return sb.String()
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
