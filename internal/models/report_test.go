package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor_DefaultsToNotResponsible(t *testing.T) {
	r := &Report{}
	for _, d := range Departments {
		assert.Equal(t, StatusNotResponsible, r.StatusFor(d))
	}

	r.DepartmentStatuses = map[Department]ResponseStatus{
		DepartmentFire: StatusInProgress,
	}
	assert.Equal(t, StatusInProgress, r.StatusFor(DepartmentFire))
	assert.Equal(t, StatusNotResponsible, r.StatusFor(DepartmentHealth))
}

func TestDefaultDepartmentStatuses_CoversEveryDepartment(t *testing.T) {
	m := DefaultDepartmentStatuses()
	require.Len(t, m, len(Departments))
	for _, d := range Departments {
		assert.Equal(t, StatusNotResponsible, m[d])
	}
}

func TestAppendLog_AppendOnly(t *testing.T) {
	r := &Report{}
	r.AppendLog("first entry")
	r.AppendLog("second entry")

	assert.Equal(t, "first entry\nsecond entry", r.CommunicationLog)
}

func TestOccurrenceTime(t *testing.T) {
	r := &Report{ID: 3, OccurredAt: "2026-05-01 14:30:00"}
	got, err := r.OccurrenceTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 14, 30, 0, 0, time.UTC), got)

	r.OccurredAt = "yesterday afternoon"
	_, err = r.OccurrenceTime()
	assert.Error(t, err)
}

func TestParseDisasterType(t *testing.T) {
	assert.Equal(t, DisasterTypeWildfire, ParseDisasterType("wildfire"))
	assert.Equal(t, DisasterTypeWildfire, ParseDisasterType(" Wildfire "))
	assert.Equal(t, DisasterTypeOther, ParseDisasterType("meteor strike"))
	assert.Equal(t, DisasterTypeOther, ParseDisasterType(""))
}

func TestParseResponseStatus(t *testing.T) {
	assert.Equal(t, StatusInProgress, ParseResponseStatus("In Progress"))
	assert.Equal(t, StatusInProgress, ParseResponseStatus("in_progress"))
	assert.Equal(t, StatusNotResponsible, ParseResponseStatus(""))
	assert.Equal(t, StatusNotResponsible, ParseResponseStatus("whatever"))
}

func TestParseDepartment(t *testing.T) {
	d, ok := ParseDepartment("Fire Department")
	require.True(t, ok)
	assert.Equal(t, DepartmentFire, d)

	_, ok = ParseDepartment("coast guard")
	assert.False(t, ok)
}

func TestStatusColumnNames(t *testing.T) {
	assert.Equal(t, "fire_department_status", DepartmentFire.StatusColumn())
	assert.Equal(t, "utility_companies_status", DepartmentUtilityCompanies.StatusColumn())
}
