package models

import (
	"fmt"
	"time"
)

// OccurredAtLayout is the storage layout for a report's occurrence time.
// Priority scoring parses it strictly and fails on malformed values.
const OccurredAtLayout = "2006-01-02 15:04:05"

// Report is one disaster incident record with multi-department status
// tracking. It mirrors a single row of the reports table.
type Report struct {
	ID           int64
	Reference    string // UUID assigned at intake
	DisasterType DisasterType
	Location     string
	Latitude     float64
	Longitude    float64
	OccurredAt   string // OccurredAtLayout
	ReporterName string
	ContactInfo  string

	// ResponseStatus is the overall lifecycle status; the per-department
	// map tracks each department's own response.
	ResponseStatus     ResponseStatus
	DepartmentStatuses map[Department]ResponseStatus

	CommunicationLog string // append-only, newline-joined
	ResourcesNeeded  string // newline-joined
	PriorityLevel    PriorityLevel

	// Disaster-specific optional fields. AffectedAreaSize is a pointer
	// because scoring distinguishes an absent field from a present but
	// unparseable one.
	FireIntensity         string
	AffectedAreaSize      *string
	NearbyInfrastructure  string
	WindSpeed             string
	FloodRisk             bool
	EvacuationStatus      string
	Magnitude             string
	Depth                 string
	AftershocksExpected   bool
	WaterLevel            string
	FloodEvacuationStatus string
	InfrastructureDamage  string
	SlopeStability        string
	BlockedRoads          string
	CasualtiesInjuries    string
	DisasterDescription   string
	EstimatedImpact       string

	CreatedAt time.Time
}

// Coordinates reports whether the record carries a usable lat/lon pair.
func (r *Report) Coordinates() (lat, lon float64, ok bool) {
	if r.Latitude == 0 && r.Longitude == 0 {
		return 0, 0, false
	}
	return r.Latitude, r.Longitude, true
}

// OccurrenceTime parses the stored occurrence timestamp. Malformed values
// are an error; callers that score the report treat this as fatal.
func (r *Report) OccurrenceTime() (time.Time, error) {
	t, err := time.Parse(OccurredAtLayout, r.OccurredAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("report %d: bad occurrence timestamp %q: %w", r.ID, r.OccurredAt, err)
	}
	return t, nil
}

// StatusFor resolves a department's status, defaulting to Not Responsible so
// the map is total over the known department set.
func (r *Report) StatusFor(dept Department) ResponseStatus {
	if r.DepartmentStatuses == nil {
		return StatusNotResponsible
	}
	if s, ok := r.DepartmentStatuses[dept]; ok {
		return s
	}
	return StatusNotResponsible
}

// SetDepartmentStatus records a department's status in memory.
func (r *Report) SetDepartmentStatus(dept Department, status ResponseStatus) {
	if r.DepartmentStatuses == nil {
		r.DepartmentStatuses = DefaultDepartmentStatuses()
	}
	r.DepartmentStatuses[dept] = status
}

// AppendLog appends one communication-log entry. Entries are never rewritten
// or reordered.
func (r *Report) AppendLog(entry string) string {
	if r.CommunicationLog == "" {
		r.CommunicationLog = entry
	} else {
		r.CommunicationLog = r.CommunicationLog + "\n" + entry
	}
	return r.CommunicationLog
}

// AppendResource appends one resources-needed entry.
func (r *Report) AppendResource(resource string) string {
	if r.ResourcesNeeded == "" {
		r.ResourcesNeeded = resource
	} else {
		r.ResourcesNeeded = r.ResourcesNeeded + "\n" + resource
	}
	return r.ResourcesNeeded
}

// DefaultDepartmentStatuses returns a status map with every department set
// to Not Responsible.
func DefaultDepartmentStatuses() map[Department]ResponseStatus {
	m := make(map[Department]ResponseStatus, len(Departments))
	for _, d := range Departments {
		m[d] = StatusNotResponsible
	}
	return m
}
