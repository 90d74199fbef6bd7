// Package department implements the per-department view of the report
// store. One Actioner type covers every department; the department identity
// is data, not a subclass.
package department

import (
	"context"
	"log/slog"
	"strings"

	"github.com/reliefops/go-disaster-response/internal/models"
	"github.com/reliefops/go-disaster-response/internal/observability"
	"github.com/reliefops/go-disaster-response/internal/repository"
)

// Actioner is one department's capability surface over shared reports:
// status updates, communication logging and active-report queries.
type Actioner struct {
	dept    models.Department
	repo    repository.ReportRepository
	metrics *observability.Metrics
}

func NewActioner(dept models.Department, repo repository.ReportRepository, metrics *observability.Metrics) *Actioner {
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	return &Actioner{
		dept:    dept,
		repo:    repo,
		metrics: metrics,
	}
}

func (a *Actioner) Department() models.Department {
	return a.dept
}

// InformStatus reports the department's readiness.
func (a *Actioner) InformStatus() string {
	return a.dept.DisplayName() + " is ready to respond to incidents."
}

// UpdateStatus records this department's response status on the report, in
// memory and best-effort in the store.
func (a *Actioner) UpdateStatus(ctx context.Context, r *models.Report, status models.ResponseStatus) {
	r.SetDepartmentStatus(a.dept, status)
	if err := a.repo.UpdateDepartmentStatus(ctx, r.ID, a.dept, status); err != nil {
		slog.Error("error updating department status",
			"department", a.dept, "id", r.ID, "status", status, "error", err)
		a.metrics.StoreFailures.WithLabelValues("department_status").Inc()
	}
}

// AppendLog appends a communication-log entry on the department's behalf.
func (a *Actioner) AppendLog(ctx context.Context, r *models.Report, entry string) {
	updated := r.AppendLog(entry)
	if err := a.repo.UpdateCommunicationLog(ctx, r.ID, updated); err != nil {
		slog.Error("error updating communication log",
			"department", a.dept, "id", r.ID, "error", err)
		a.metrics.StoreFailures.WithLabelValues("log").Inc()
	}
}

// ActiveReports lists reports this department is currently responsible for:
// open overall status and a department status other than Not Responsible.
func (a *Actioner) ActiveReports(ctx context.Context) ([]models.Report, error) {
	dept := a.dept
	return a.repo.List(ctx, repository.Filter{
		OpenOnly:   true,
		Department: &dept,
	})
}

// DescribeDetails renders the report's disaster-specific detail block. The
// fields shown depend only on the disaster type, so every department shares
// the same formatter.
func (a *Actioner) DescribeDetails(r *models.Report) string {
	var sb strings.Builder
	models.AppendDetails(&sb, r)
	return sb.String()
}

// Roster is the typed lookup of every department's actioner.
type Roster map[models.Department]*Actioner

// NewRoster builds an actioner for every known department.
func NewRoster(repo repository.ReportRepository, metrics *observability.Metrics) Roster {
	roster := make(Roster, len(models.Departments))
	for _, d := range models.Departments {
		roster[d] = NewActioner(d, repo, metrics)
	}
	return roster
}
