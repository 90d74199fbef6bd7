package models

import "strings"

type DisasterType string

const (
	DisasterTypeWildfire   DisasterType = "Wildfire"
	DisasterTypeHurricane  DisasterType = "Hurricane"
	DisasterTypeEarthquake DisasterType = "Earthquake"
	DisasterTypeFlood      DisasterType = "Flood"
	DisasterTypeLandslide  DisasterType = "Landslide"
	DisasterTypeOther      DisasterType = "Other"
)

func (d DisasterType) String() string {
	return string(d)
}

// ParseDisasterType maps free text onto the closed type set. Anything it
// does not recognize becomes DisasterTypeOther.
func ParseDisasterType(s string) DisasterType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wildfire":
		return DisasterTypeWildfire
	case "hurricane":
		return DisasterTypeHurricane
	case "earthquake":
		return DisasterTypeEarthquake
	case "flood":
		return DisasterTypeFlood
	case "landslide":
		return DisasterTypeLandslide
	default:
		return DisasterTypeOther
	}
}

type Department string

const (
	DepartmentFire             Department = "fire_department"
	DepartmentHealth           Department = "health_department"
	DepartmentLawEnforcement   Department = "law_enforcement"
	DepartmentMeteorology      Department = "meteorology"
	DepartmentGeoscience       Department = "geoscience"
	DepartmentUtilityCompanies Department = "utility_companies"
)

// Departments lists every known department. Order matters: it is the column
// order used by the repository's multi-status update.
var Departments = []Department{
	DepartmentFire,
	DepartmentHealth,
	DepartmentLawEnforcement,
	DepartmentMeteorology,
	DepartmentGeoscience,
	DepartmentUtilityCompanies,
}

// StatusColumn is the reports-table column holding this department's status.
func (d Department) StatusColumn() string {
	return string(d) + "_status"
}

func (d Department) DisplayName() string {
	switch d {
	case DepartmentFire:
		return "Fire Department"
	case DepartmentHealth:
		return "Health Department"
	case DepartmentLawEnforcement:
		return "Law Enforcement"
	case DepartmentMeteorology:
		return "Meteorology"
	case DepartmentGeoscience:
		return "Geoscience"
	case DepartmentUtilityCompanies:
		return "Utility Companies"
	default:
		return string(d)
	}
}

func ParseDepartment(s string) (Department, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fire", "fire_department", "fire department":
		return DepartmentFire, true
	case "health", "health_department", "health department":
		return DepartmentHealth, true
	case "law", "law_enforcement", "law enforcement":
		return DepartmentLawEnforcement, true
	case "meteorology":
		return DepartmentMeteorology, true
	case "geoscience":
		return DepartmentGeoscience, true
	case "utility", "utility_companies", "utility companies":
		return DepartmentUtilityCompanies, true
	default:
		return "", false
	}
}

type ResponseStatus string

const (
	StatusPending        ResponseStatus = "Pending"
	StatusInProgress     ResponseStatus = "In Progress"
	StatusResolved       ResponseStatus = "Resolved"
	StatusNotResponsible ResponseStatus = "Not Responsible"
)

func (s ResponseStatus) String() string {
	return string(s)
}

// ParseResponseStatus maps stored or user-supplied text onto the status set.
// NULL and unknown values default to Not Responsible, which keeps the
// department-status map total even for rows written before a department
// column existed.
func ParseResponseStatus(s string) ResponseStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending
	case "in progress", "in_progress":
		return StatusInProgress
	case "resolved":
		return StatusResolved
	default:
		return StatusNotResponsible
	}
}

// Open reports are the ones still needing coordination.
func (s ResponseStatus) Open() bool {
	return s == StatusPending || s == StatusInProgress
}

type PriorityLevel string

const (
	PriorityCritical PriorityLevel = "Critical"
	PriorityHigh     PriorityLevel = "High"
	PriorityMedium   PriorityLevel = "Medium"
	PriorityLow      PriorityLevel = "Low"
)

func (p PriorityLevel) String() string {
	return string(p)
}
