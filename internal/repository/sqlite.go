package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/reliefops/go-disaster-response/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			reference TEXT NOT NULL,
			disaster_type TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			latitude REAL NOT NULL DEFAULT 0,
			longitude REAL NOT NULL DEFAULT 0,
			occurred_at TEXT NOT NULL,
			reporter_name TEXT NOT NULL DEFAULT '',
			contact_info TEXT NOT NULL DEFAULT '',
			response_status TEXT NOT NULL DEFAULT 'Pending',
			fire_department_status TEXT NOT NULL DEFAULT 'Not Responsible',
			health_department_status TEXT NOT NULL DEFAULT 'Not Responsible',
			law_enforcement_status TEXT NOT NULL DEFAULT 'Not Responsible',
			meteorology_status TEXT NOT NULL DEFAULT 'Not Responsible',
			geoscience_status TEXT NOT NULL DEFAULT 'Not Responsible',
			utility_companies_status TEXT NOT NULL DEFAULT 'Not Responsible',
			communication_log TEXT NOT NULL DEFAULT '',
			resources_needed TEXT NOT NULL DEFAULT '',
			priority_level TEXT NOT NULL DEFAULT 'Low',
			fire_intensity TEXT NOT NULL DEFAULT '',
			affected_area_size TEXT,
			nearby_infrastructure TEXT NOT NULL DEFAULT '',
			wind_speed TEXT NOT NULL DEFAULT '',
			flood_risk INTEGER NOT NULL DEFAULT 0,
			evacuation_status TEXT NOT NULL DEFAULT '',
			magnitude TEXT NOT NULL DEFAULT '',
			depth TEXT NOT NULL DEFAULT '',
			aftershocks_expected INTEGER NOT NULL DEFAULT 0,
			water_level TEXT NOT NULL DEFAULT '',
			flood_evacuation_status TEXT NOT NULL DEFAULT '',
			infrastructure_damage TEXT NOT NULL DEFAULT '',
			slope_stability TEXT NOT NULL DEFAULT '',
			blocked_roads TEXT NOT NULL DEFAULT '',
			casualties_injuries TEXT NOT NULL DEFAULT '',
			disaster_description TEXT NOT NULL DEFAULT '',
			estimated_impact TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_reports_response_status ON reports(response_status);
		CREATE INDEX IF NOT EXISTS idx_reports_disaster_type ON reports(disaster_type);
		CREATE INDEX IF NOT EXISTS idx_reports_priority ON reports(priority_level);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

const reportColumns = `id, reference, disaster_type, location, latitude, longitude,
	occurred_at, reporter_name, contact_info, response_status,
	fire_department_status, health_department_status, law_enforcement_status,
	meteorology_status, geoscience_status, utility_companies_status,
	communication_log, resources_needed, priority_level,
	fire_intensity, affected_area_size, nearby_infrastructure,
	wind_speed, flood_risk, evacuation_status,
	magnitude, depth, aftershocks_expected,
	water_level, flood_evacuation_status, infrastructure_damage,
	slope_stability, blocked_roads, casualties_injuries,
	disaster_description, estimated_impact, created_at`

func (s *SQLiteDB) Create(ctx context.Context, r *models.Report) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.DepartmentStatuses == nil {
		r.DepartmentStatuses = models.DefaultDepartmentStatuses()
	}

	query := `INSERT INTO reports (
		reference, disaster_type, location, latitude, longitude,
		occurred_at, reporter_name, contact_info, response_status,
		fire_department_status, health_department_status, law_enforcement_status,
		meteorology_status, geoscience_status, utility_companies_status,
		communication_log, resources_needed, priority_level,
		fire_intensity, affected_area_size, nearby_infrastructure,
		wind_speed, flood_risk, evacuation_status,
		magnitude, depth, aftershocks_expected,
		water_level, flood_evacuation_status, infrastructure_damage,
		slope_stability, blocked_roads, casualties_injuries,
		disaster_description, estimated_impact, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := s.db.ExecContext(ctx, query,
		r.Reference, string(r.DisasterType), r.Location, r.Latitude, r.Longitude,
		r.OccurredAt, r.ReporterName, r.ContactInfo, string(r.ResponseStatus),
		string(r.StatusFor(models.DepartmentFire)),
		string(r.StatusFor(models.DepartmentHealth)),
		string(r.StatusFor(models.DepartmentLawEnforcement)),
		string(r.StatusFor(models.DepartmentMeteorology)),
		string(r.StatusFor(models.DepartmentGeoscience)),
		string(r.StatusFor(models.DepartmentUtilityCompanies)),
		r.CommunicationLog, r.ResourcesNeeded, string(r.PriorityLevel),
		r.FireIntensity, r.AffectedAreaSize, r.NearbyInfrastructure,
		r.WindSpeed, r.FloodRisk, r.EvacuationStatus,
		r.Magnitude, r.Depth, r.AftershocksExpected,
		r.WaterLevel, r.FloodEvacuationStatus, r.InfrastructureDamage,
		r.SlopeStability, r.BlockedRoads, r.CasualtiesInjuries,
		r.DisasterDescription, r.EstimatedImpact, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting report: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading inserted report id: %w", err)
	}
	r.ID = id
	return nil
}

func (s *SQLiteDB) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ?`, id)
	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning report %d: %w", id, err)
	}
	return r, nil
}

func (s *SQLiteDB) List(ctx context.Context, opts Filter) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports`
	var conds []string
	var args []any

	if opts.OpenOnly {
		conds = append(conds, `response_status IN ('Pending', 'In Progress')`)
	}
	if opts.Department != nil {
		conds = append(conds, opts.Department.StatusColumn()+` != 'Not Responsible'`)
	}
	if opts.Type != nil {
		conds = append(conds, `disaster_type = ?`)
		args = append(args, string(*opts.Type))
	}
	if opts.Priority != nil {
		conds = append(conds, `priority_level = ?`)
		args = append(args, string(*opts.Priority))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += " ORDER BY id"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning report row: %w", err)
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

func (s *SQLiteDB) UpdateReport(ctx context.Context, r *models.Report) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE reports SET response_status = ?, resources_needed = ?, communication_log = ?, priority_level = ? WHERE id = ?`,
		string(r.ResponseStatus), r.ResourcesNeeded, r.CommunicationLog, string(r.PriorityLevel), r.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating report %d: %w", r.ID, err)
	}
	return nil
}

func (s *SQLiteDB) UpdateDepartmentStatuses(ctx context.Context, id int64, statuses map[models.Department]models.ResponseStatus) error {
	// One statement covers all six columns so a partial assignment can
	// never be persisted. Departments missing from the map are written as
	// Not Responsible.
	statusArg := func(d models.Department) string {
		if st, ok := statuses[d]; ok && st != "" {
			return string(st)
		}
		return string(models.StatusNotResponsible)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE reports SET fire_department_status = ?, health_department_status = ?,
			law_enforcement_status = ?, meteorology_status = ?, geoscience_status = ?,
			utility_companies_status = ? WHERE id = ?`,
		statusArg(models.DepartmentFire),
		statusArg(models.DepartmentHealth),
		statusArg(models.DepartmentLawEnforcement),
		statusArg(models.DepartmentMeteorology),
		statusArg(models.DepartmentGeoscience),
		statusArg(models.DepartmentUtilityCompanies),
		id,
	)
	if err != nil {
		return fmt.Errorf("error updating department statuses for report %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteDB) UpdateDepartmentStatus(ctx context.Context, id int64, dept models.Department, status models.ResponseStatus) error {
	// The column name comes from the closed Department set, never from
	// user input.
	query := fmt.Sprintf(`UPDATE reports SET %s = ? WHERE id = ?`, dept.StatusColumn())
	_, err := s.db.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("error updating %s for report %d: %w", dept.StatusColumn(), id, err)
	}
	return nil
}

func (s *SQLiteDB) UpdateCommunicationLog(ctx context.Context, id int64, log string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE reports SET communication_log = ? WHERE id = ?`, log, id)
	if err != nil {
		return fmt.Errorf("error updating communication log for report %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteDB) UpdateResources(ctx context.Context, id int64, resources string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE reports SET resources_needed = ? WHERE id = ?`, resources, id)
	if err != nil {
		return fmt.Errorf("error updating resources for report %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteDB) UpdateCoordinates(ctx context.Context, id int64, lat, lon float64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE reports SET latitude = ?, longitude = ? WHERE id = ?`, lat, lon, id)
	if err != nil {
		return fmt.Errorf("error updating coordinates for report %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteDB) UpdatePriority(ctx context.Context, id int64, level models.PriorityLevel) error {
	_, err := s.db.ExecContext(ctx, `UPDATE reports SET priority_level = ? WHERE id = ?`, string(level), id)
	if err != nil {
		return fmt.Errorf("error updating priority for report %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteDB) UpdateResponseStatus(ctx context.Context, id int64, status models.ResponseStatus) error {
	_, err := s.db.ExecContext(ctx, `UPDATE reports SET response_status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("error updating response status for report %d: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*models.Report, error) {
	var (
		r            models.Report
		disasterType string
		overall      string
		priority     string
		deptStatuses [6]sql.NullString
		area         sql.NullString
	)

	err := row.Scan(
		&r.ID, &r.Reference, &disasterType, &r.Location, &r.Latitude, &r.Longitude,
		&r.OccurredAt, &r.ReporterName, &r.ContactInfo, &overall,
		&deptStatuses[0], &deptStatuses[1], &deptStatuses[2],
		&deptStatuses[3], &deptStatuses[4], &deptStatuses[5],
		&r.CommunicationLog, &r.ResourcesNeeded, &priority,
		&r.FireIntensity, &area, &r.NearbyInfrastructure,
		&r.WindSpeed, &r.FloodRisk, &r.EvacuationStatus,
		&r.Magnitude, &r.Depth, &r.AftershocksExpected,
		&r.WaterLevel, &r.FloodEvacuationStatus, &r.InfrastructureDamage,
		&r.SlopeStability, &r.BlockedRoads, &r.CasualtiesInjuries,
		&r.DisasterDescription, &r.EstimatedImpact, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.DisasterType = models.ParseDisasterType(disasterType)
	r.ResponseStatus = models.ParseResponseStatus(overall)
	r.PriorityLevel = models.PriorityLevel(priority)
	if area.Valid {
		v := area.String
		r.AffectedAreaSize = &v
	}

	// The status map is always total: NULL or unknown values resolve to
	// Not Responsible.
	r.DepartmentStatuses = models.DefaultDepartmentStatuses()
	for i, d := range models.Departments {
		if deptStatuses[i].Valid {
			r.DepartmentStatuses[d] = models.ParseResponseStatus(deptStatuses[i].String)
		}
	}

	return &r, nil
}
