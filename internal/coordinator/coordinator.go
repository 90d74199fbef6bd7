// Package coordinator orchestrates incident reports across departments:
// loading and refreshing the report set, assigning departments, appending
// logs and resources, and delegating geocoding, weather analysis and
// priority computation to collaborators.
//
// Persistence failures follow the service's best-effort model: they are
// logged and swallowed, and the in-memory report may diverge from the store.
// The one exception is priority scoring, where a malformed report timestamp
// is returned to the caller.
package coordinator

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/reliefops/go-disaster-response/internal/gis"
	"github.com/reliefops/go-disaster-response/internal/models"
	"github.com/reliefops/go-disaster-response/internal/observability"
	"github.com/reliefops/go-disaster-response/internal/priority"
	"github.com/reliefops/go-disaster-response/internal/repository"
)

// infraSuggestRadiusKm bounds the site-index lookup used to prefill a
// report's nearby-infrastructure field at intake.
const infraSuggestRadiusKm = 25.0

type Coordinator struct {
	repo       repository.ReportRepository
	geocoder   gis.Geocoder
	classifier priority.WeatherClassifier
	sites      *gis.SiteIndex
	metrics    *observability.Metrics

	reports     []models.Report
	openReports []models.Report
}

func New(repo repository.ReportRepository, geocoder gis.Geocoder, classifier priority.WeatherClassifier, sites *gis.SiteIndex, metrics *observability.Metrics) *Coordinator {
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	c := &Coordinator{
		repo:     repo,
		geocoder: geocoder,
		sites:    sites,
		metrics:  metrics,
	}
	if classifier != nil {
		c.classifier = &instrumentedClassifier{inner: classifier, metrics: metrics}
	}
	return c
}

// Refresh reloads the full report set from the store. On failure the
// previous in-memory set is kept.
func (c *Coordinator) Refresh(ctx context.Context) {
	reports, err := c.repo.List(ctx, repository.Filter{})
	if err != nil {
		slog.Error("error loading reports", "error", err)
		c.metrics.StoreFailures.WithLabelValues("list").Inc()
		return
	}
	c.reports = reports
}

// RefreshOpen reloads the subset of reports with open overall status.
func (c *Coordinator) RefreshOpen(ctx context.Context) {
	reports, err := c.repo.List(ctx, repository.Filter{OpenOnly: true})
	if err != nil {
		slog.Error("error loading open reports", "error", err)
		c.metrics.StoreFailures.WithLabelValues("list_open").Inc()
		return
	}
	c.openReports = reports
}

func (c *Coordinator) Reports() []models.Report {
	return c.reports
}

func (c *Coordinator) OpenReports() []models.Report {
	return c.openReports
}

// Intake registers a new report: assigns its reference, fills the
// department map, suggests nearby infrastructure when coordinates are
// known, computes the initial priority and persists the row.
func (c *Coordinator) Intake(ctx context.Context, r *models.Report) error {
	r.Reference = uuid.NewString()
	if r.ResponseStatus == "" {
		r.ResponseStatus = models.StatusPending
	}
	if r.DepartmentStatuses == nil {
		r.DepartmentStatuses = models.DefaultDepartmentStatuses()
	}

	if lat, lon, ok := r.Coordinates(); ok && r.NearbyInfrastructure == "" && c.sites != nil {
		r.NearbyInfrastructure = c.sites.DescribeNearby(lat, lon, infraSuggestRadiusKm)
	}

	res, err := priority.Score(ctx, r, c.classifier)
	if err != nil {
		return err
	}
	r.PriorityLevel = res.Level
	c.metrics.PriorityScores.WithLabelValues(string(res.Level)).Inc()

	if err := c.repo.Create(ctx, r); err != nil {
		return err
	}
	c.metrics.ReportsCreated.Inc()
	slog.Info("report created", "id", r.ID, "reference", r.Reference, "type", r.DisasterType, "priority", r.PriorityLevel)
	return nil
}

// UpdateAssignments persists every department's status in one write and
// applies the assignment in memory only when the write succeeded.
// Departments missing from the map become Not Responsible.
func (c *Coordinator) UpdateAssignments(ctx context.Context, r *models.Report, assignments map[models.Department]models.ResponseStatus) {
	if err := c.repo.UpdateDepartmentStatuses(ctx, r.ID, assignments); err != nil {
		slog.Error("error updating department assignments", "id", r.ID, "error", err)
		c.metrics.StoreFailures.WithLabelValues("assignments").Inc()
		return
	}
	for _, d := range models.Departments {
		if st, ok := assignments[d]; ok && st != "" {
			r.SetDepartmentStatus(d, st)
		} else {
			r.SetDepartmentStatus(d, models.StatusNotResponsible)
		}
	}
}

// UpdateReport persists the overall status, resources, log and priority.
func (c *Coordinator) UpdateReport(ctx context.Context, r *models.Report) {
	if err := c.repo.UpdateReport(ctx, r); err != nil {
		slog.Error("error updating report", "id", r.ID, "error", err)
		c.metrics.StoreFailures.WithLabelValues("update").Inc()
	}
}

// AppendCommunicationLog appends an entry in memory and persists the log
// best-effort. The in-memory entry survives a failed write.
func (c *Coordinator) AppendCommunicationLog(ctx context.Context, r *models.Report, entry string) {
	updated := r.AppendLog(entry)
	if err := c.repo.UpdateCommunicationLog(ctx, r.ID, updated); err != nil {
		slog.Error("error updating communication log", "id", r.ID, "error", err)
		c.metrics.StoreFailures.WithLabelValues("log").Inc()
	}
}

// AddResourceNeeded appends a resources-needed entry, same model as the
// communication log.
func (c *Coordinator) AddResourceNeeded(ctx context.Context, r *models.Report, resource string) {
	updated := r.AppendResource(resource)
	if err := c.repo.UpdateResources(ctx, r.ID, updated); err != nil {
		slog.Error("error updating resources needed", "id", r.ID, "error", err)
		c.metrics.StoreFailures.WithLabelValues("resources").Inc()
	}
}

// UpdateCoordinates corrects a report's coordinates.
func (c *Coordinator) UpdateCoordinates(ctx context.Context, r *models.Report, lat, lon float64) {
	r.Latitude = lat
	r.Longitude = lon
	if err := c.repo.UpdateCoordinates(ctx, r.ID, lat, lon); err != nil {
		slog.Error("error updating coordinates", "id", r.ID, "error", err)
		c.metrics.StoreFailures.WithLabelValues("coordinates").Inc()
	}
}

// Geocode resolves a free-text location via the geocoding collaborator.
func (c *Coordinator) Geocode(ctx context.Context, location string) (gis.Point, error) {
	if c.geocoder == nil {
		return gis.Point{}, gis.ErrNoMatch
	}
	p, err := c.geocoder.Resolve(ctx, location)
	switch {
	case err == gis.ErrNoMatch:
		c.metrics.GeocodeRequests.WithLabelValues("no_match").Inc()
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
	default:
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}
	return p, err
}

// Weather classifies weather risk at the given coordinates.
func (c *Coordinator) Weather(ctx context.Context, lat, lon float64, disasterType models.DisasterType) (priority.Impact, error) {
	if c.classifier == nil {
		return priority.Impact{}, errWeatherUnavailable
	}
	return c.classifier.Classify(ctx, lat, lon, disasterType)
}

// NearbyInfrastructure queries the site index.
func (c *Coordinator) NearbyInfrastructure(lat, lon, radiusKm float64) []gis.NearbySite {
	if c.sites == nil {
		return nil
	}
	return c.sites.Nearby(lat, lon, radiusKm)
}

// RecomputePriority scores the report and persists the resulting tier.
// A malformed occurrence timestamp is returned to the caller; a failed
// persist is logged and the in-memory tier is still updated.
func (c *Coordinator) RecomputePriority(ctx context.Context, r *models.Report) (priority.Result, error) {
	res, err := priority.Score(ctx, r, c.classifier)
	if err != nil {
		return priority.Result{}, err
	}

	r.PriorityLevel = res.Level
	c.metrics.PriorityScores.WithLabelValues(string(res.Level)).Inc()

	if err := c.repo.UpdatePriority(ctx, r.ID, res.Level); err != nil {
		slog.Error("error persisting priority", "id", r.ID, "error", err)
		c.metrics.StoreFailures.WithLabelValues("priority").Inc()
	}
	return res, nil
}
