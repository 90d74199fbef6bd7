package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliefops/go-disaster-response/internal/gis"
	"github.com/reliefops/go-disaster-response/internal/models"
	"github.com/reliefops/go-disaster-response/internal/observability"
	"github.com/reliefops/go-disaster-response/internal/priority"
	"github.com/reliefops/go-disaster-response/internal/repository"
)

var testNow = time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	priority.SetClock(clockwork.NewFakeClockAt(testNow))
	t.Cleanup(func() { priority.SetClock(nil) })
}

type stubClassifier struct {
	impact priority.Impact
	err    error
}

func (s *stubClassifier) Classify(ctx context.Context, lat, lon float64, dt models.DisasterType) (priority.Impact, error) {
	return s.impact, s.err
}

type stubGeocoder struct {
	point gis.Point
	err   error
}

func (s *stubGeocoder) Resolve(ctx context.Context, location string) (gis.Point, error) {
	return s.point, s.err
}

// failingRepo wraps a real repository and fails selected operations, for
// exercising the log-and-continue persistence model.
type failingRepo struct {
	repository.ReportRepository
	failLog      bool
	failPriority bool
}

var errStore = errors.New("store unavailable")

func (f *failingRepo) UpdateCommunicationLog(ctx context.Context, id int64, log string) error {
	if f.failLog {
		return errStore
	}
	return f.ReportRepository.UpdateCommunicationLog(ctx, id, log)
}

func (f *failingRepo) UpdatePriority(ctx context.Context, id int64, level models.PriorityLevel) error {
	if f.failPriority {
		return errStore
	}
	return f.ReportRepository.UpdatePriority(ctx, id, level)
}

func newTestDB(t *testing.T) *repository.SQLiteDB {
	t.Helper()
	db, err := repository.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newCoordinator(t *testing.T, repo repository.ReportRepository, classifier priority.WeatherClassifier) *Coordinator {
	t.Helper()
	sites := gis.NewSiteIndex([]gis.Site{
		{Name: "Base Hospital", Kind: "hospital", Lat: -23.3850, Lon: 150.5050},
	})
	return New(repo, &stubGeocoder{point: gis.Point{Lat: -23.38, Lon: 150.51}}, classifier, sites, observability.NewMetricsForTesting())
}

func occurredAgo(hours int) string {
	return testNow.Add(-time.Duration(hours) * time.Hour).Format(models.OccurredAtLayout)
}

func TestIntake_AssignsReferenceStatusesAndPriority(t *testing.T) {
	freezeClock(t)
	db := newTestDB(t)
	c := newCoordinator(t, db, &stubClassifier{impact: priority.Impact{RiskLevel: priority.RiskHigh}})

	r := &models.Report{
		DisasterType: models.DisasterTypeWildfire,
		Location:     "Rockhampton",
		Latitude:     -23.3781,
		Longitude:    150.5100,
		OccurredAt:   occurredAgo(2),
	}
	require.NoError(t, c.Intake(context.Background(), r))

	assert.NotZero(t, r.ID)
	assert.NotEmpty(t, r.Reference)
	assert.Equal(t, models.StatusPending, r.ResponseStatus)
	assert.Len(t, r.DepartmentStatuses, len(models.Departments))
	// Site index filled in the blank infrastructure field, which the
	// scorer then saw: 3 + 5 + 3 (recent) + 5 (hospital) = 16.
	assert.Contains(t, r.NearbyInfrastructure, "Base Hospital")
	assert.Equal(t, models.PriorityCritical, r.PriorityLevel)

	stored, err := db.GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityCritical, stored.PriorityLevel)
}

func TestIntake_BadTimestampRejected(t *testing.T) {
	freezeClock(t)
	db := newTestDB(t)
	c := newCoordinator(t, db, nil)

	r := &models.Report{
		DisasterType: models.DisasterTypeFlood,
		OccurredAt:   "last tuesday",
	}
	assert.Error(t, c.Intake(context.Background(), r))
}

func TestIntake_KeepsProvidedInfrastructure(t *testing.T) {
	freezeClock(t)
	db := newTestDB(t)
	c := newCoordinator(t, db, nil)

	r := &models.Report{
		DisasterType:         models.DisasterTypeFlood,
		Latitude:             -23.3781,
		Longitude:            150.5100,
		OccurredAt:           occurredAgo(100),
		NearbyInfrastructure: "levee bank",
	}
	require.NoError(t, c.Intake(context.Background(), r))
	assert.Equal(t, "levee bank", r.NearbyInfrastructure)
}

func TestUpdateAssignments_AppliedOnlyOnSuccess(t *testing.T) {
	freezeClock(t)
	db := newTestDB(t)
	c := newCoordinator(t, db, nil)
	ctx := context.Background()

	r := &models.Report{DisasterType: models.DisasterTypeEarthquake, OccurredAt: occurredAgo(1)}
	require.NoError(t, c.Intake(ctx, r))

	c.UpdateAssignments(ctx, r, map[models.Department]models.ResponseStatus{
		models.DepartmentFire:       models.StatusInProgress,
		models.DepartmentGeoscience: models.StatusPending,
	})

	assert.Equal(t, models.StatusInProgress, r.StatusFor(models.DepartmentFire))
	assert.Equal(t, models.StatusPending, r.StatusFor(models.DepartmentGeoscience))
	assert.Equal(t, models.StatusNotResponsible, r.StatusFor(models.DepartmentHealth))

	stored, err := db.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, stored.StatusFor(models.DepartmentFire))

	// A write against a missing row leaves memory untouched.
	ghost := &models.Report{ID: 9999, DisasterType: models.DisasterTypeFlood}
	c.UpdateAssignments(ctx, ghost, map[models.Department]models.ResponseStatus{
		models.DepartmentFire: models.StatusResolved,
	})
	assert.Equal(t, models.StatusNotResponsible, ghost.StatusFor(models.DepartmentFire))
}

func TestAppendCommunicationLog_SurvivesStoreFailure(t *testing.T) {
	freezeClock(t)
	db := newTestDB(t)
	repo := &failingRepo{ReportRepository: db, failLog: true}
	c := newCoordinator(t, repo, nil)
	ctx := context.Background()

	r := &models.Report{DisasterType: models.DisasterTypeFlood, OccurredAt: occurredAgo(1)}
	require.NoError(t, c.Intake(ctx, r))

	// The write fails; the in-memory log keeps the entry and no error
	// reaches the caller.
	c.AppendCommunicationLog(ctx, r, "dispatched swift-water team")
	assert.Equal(t, "dispatched swift-water team", r.CommunicationLog)

	stored, err := db.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.CommunicationLog)
}

func TestRecomputePriority_PersistsTier(t *testing.T) {
	freezeClock(t)
	db := newTestDB(t)
	c := newCoordinator(t, db, &stubClassifier{err: errors.New("down")})
	ctx := context.Background()

	area := "500"
	r := &models.Report{
		DisasterType:     models.DisasterTypeFlood,
		Latitude:         -23.3781,
		Longitude:        150.5100,
		OccurredAt:       occurredAgo(100),
		AffectedAreaSize: &area,
		// Explicit value prevents the intake suggestion from adding
		// hospital points.
		NearbyInfrastructure: "none",
	}
	require.NoError(t, c.Intake(ctx, r))

	res, err := c.RecomputePriority(ctx, r)
	require.NoError(t, err)

	// 2 (flood) + 0 (weather down) + 3 (area 500) + 0 (stale) = 5.
	assert.Equal(t, 5, res.Score)
	assert.Equal(t, models.PriorityHigh, res.Level)
	assert.Contains(t, res.TraceText(), "Weather: data unavailable")

	stored, err := db.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, stored.PriorityLevel)
}

func TestRecomputePriority_StoreFailureStillReturnsResult(t *testing.T) {
	freezeClock(t)
	db := newTestDB(t)
	repo := &failingRepo{ReportRepository: db, failPriority: true}
	c := newCoordinator(t, repo, nil)
	ctx := context.Background()

	r := &models.Report{DisasterType: models.DisasterTypeHurricane, OccurredAt: occurredAgo(1)}
	require.NoError(t, c.Intake(ctx, r))

	res, err := c.RecomputePriority(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, res.Level)
	assert.Equal(t, models.PriorityHigh, r.PriorityLevel)
}

func TestRefreshAndOpenReports(t *testing.T) {
	freezeClock(t)
	db := newTestDB(t)
	c := newCoordinator(t, db, nil)
	ctx := context.Background()

	open := &models.Report{DisasterType: models.DisasterTypeWildfire, OccurredAt: occurredAgo(1)}
	require.NoError(t, c.Intake(ctx, open))
	closed := &models.Report{DisasterType: models.DisasterTypeFlood, OccurredAt: occurredAgo(1), ResponseStatus: models.StatusResolved}
	require.NoError(t, c.Intake(ctx, closed))

	c.Refresh(ctx)
	c.RefreshOpen(ctx)

	assert.Len(t, c.Reports(), 2)
	require.Len(t, c.OpenReports(), 1)
	assert.Equal(t, open.ID, c.OpenReports()[0].ID)
}

func TestGeocodeDelegation(t *testing.T) {
	db := newTestDB(t)
	c := newCoordinator(t, db, nil)

	p, err := c.Geocode(context.Background(), "Rockhampton")
	require.NoError(t, err)
	assert.InDelta(t, -23.38, p.Lat, 0.001)
}
