package repository

import (
	"context"
	"errors"

	"github.com/reliefops/go-disaster-response/internal/models"
)

// ErrNotFound is returned when no report exists for the requested id.
var ErrNotFound = errors.New("report not found")

// Filter narrows report listings.
type Filter struct {
	// OpenOnly keeps reports whose overall status is Pending or In Progress.
	OpenOnly bool
	// Department keeps reports where this department's own status is not
	// Not Responsible. Combined with OpenOnly it yields a department's
	// active workload.
	Department *models.Department
	Type       *models.DisasterType
	Priority   *models.PriorityLevel
	Limit      int
	Offset     int
}

// ReportRepository is the persisted store of incident reports. Reports are
// never deleted; every mutation is a single-statement write.
type ReportRepository interface {
	Create(ctx context.Context, r *models.Report) error
	GetByID(ctx context.Context, id int64) (*models.Report, error)
	List(ctx context.Context, opts Filter) ([]models.Report, error)

	// UpdateReport persists the overall status, resources, communication
	// log and priority in one write.
	UpdateReport(ctx context.Context, r *models.Report) error

	// UpdateDepartmentStatuses writes every department's status column in
	// a single statement.
	UpdateDepartmentStatuses(ctx context.Context, id int64, statuses map[models.Department]models.ResponseStatus) error
	UpdateDepartmentStatus(ctx context.Context, id int64, dept models.Department, status models.ResponseStatus) error

	UpdateCommunicationLog(ctx context.Context, id int64, log string) error
	UpdateResources(ctx context.Context, id int64, resources string) error
	UpdateCoordinates(ctx context.Context, id int64, lat, lon float64) error
	UpdatePriority(ctx context.Context, id int64, level models.PriorityLevel) error
	UpdateResponseStatus(ctx context.Context, id int64, status models.ResponseStatus) error
}
