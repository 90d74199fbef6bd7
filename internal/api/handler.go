package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reliefops/go-disaster-response/internal/coordinator"
	"github.com/reliefops/go-disaster-response/internal/department"
	"github.com/reliefops/go-disaster-response/internal/models"
	"github.com/reliefops/go-disaster-response/internal/repository"
)

type Handler struct {
	coord  *coordinator.Coordinator
	repo   repository.ReportRepository
	roster department.Roster
}

func NewHandler(coord *coordinator.Coordinator, repo repository.ReportRepository, roster department.Roster) *Handler {
	return &Handler{
		coord:  coord,
		repo:   repo,
		roster: roster,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/reports", h.createReport)
	r.GET("/api/reports", h.listReports)
	r.GET("/api/reports/geojson", h.listReportsGeoJSON)
	r.GET("/api/reports/:id", h.getReport)
	r.GET("/api/reports/:id/details", h.getReportDetails)
	r.POST("/api/reports/:id/log", h.appendLog)
	r.POST("/api/reports/:id/resources", h.addResource)
	r.PUT("/api/reports/:id/assignments", h.updateAssignments)
	r.PUT("/api/reports/:id/status", h.updateStatus)
	r.POST("/api/reports/:id/priority", h.recomputePriority)
	r.PUT("/api/reports/:id/coordinates", h.updateCoordinates)
	r.GET("/api/geocode", h.geocode)
	r.GET("/api/infrastructure", h.nearbyInfrastructure)
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

type createReportRequest struct {
	DisasterType string  `json:"disaster_type" binding:"required"`
	Location     string  `json:"location"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	OccurredAt   string  `json:"occurred_at" binding:"required"`
	ReporterName string  `json:"reporter_name"`
	ContactInfo  string  `json:"contact_info"`

	FireIntensity         string  `json:"fire_intensity"`
	AffectedAreaSize      *string `json:"affected_area_size"`
	NearbyInfrastructure  string  `json:"nearby_infrastructure"`
	WindSpeed             string  `json:"wind_speed"`
	FloodRisk             bool    `json:"flood_risk"`
	EvacuationStatus      string  `json:"evacuation_status"`
	Magnitude             string  `json:"magnitude"`
	Depth                 string  `json:"depth"`
	AftershocksExpected   bool    `json:"aftershocks_expected"`
	WaterLevel            string  `json:"water_level"`
	FloodEvacuationStatus string  `json:"flood_evacuation_status"`
	InfrastructureDamage  string  `json:"infrastructure_damage"`
	SlopeStability        string  `json:"slope_stability"`
	BlockedRoads          string  `json:"blocked_roads"`
	CasualtiesInjuries    string  `json:"casualties_injuries"`
	DisasterDescription   string  `json:"disaster_description"`
	EstimatedImpact       string  `json:"estimated_impact"`
}

func (h *Handler) createReport(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r := models.Report{
		DisasterType:          models.ParseDisasterType(req.DisasterType),
		Location:              req.Location,
		Latitude:              req.Latitude,
		Longitude:             req.Longitude,
		OccurredAt:            req.OccurredAt,
		ReporterName:          req.ReporterName,
		ContactInfo:           req.ContactInfo,
		FireIntensity:         req.FireIntensity,
		AffectedAreaSize:      req.AffectedAreaSize,
		NearbyInfrastructure:  req.NearbyInfrastructure,
		WindSpeed:             req.WindSpeed,
		FloodRisk:             req.FloodRisk,
		EvacuationStatus:      req.EvacuationStatus,
		Magnitude:             req.Magnitude,
		Depth:                 req.Depth,
		AftershocksExpected:   req.AftershocksExpected,
		WaterLevel:            req.WaterLevel,
		FloodEvacuationStatus: req.FloodEvacuationStatus,
		InfrastructureDamage:  req.InfrastructureDamage,
		SlopeStability:        req.SlopeStability,
		BlockedRoads:          req.BlockedRoads,
		CasualtiesInjuries:    req.CasualtiesInjuries,
		DisasterDescription:   req.DisasterDescription,
		EstimatedImpact:       req.EstimatedImpact,
	}

	if err := h.coord.Intake(c.Request.Context(), &r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toReportResponse(&r))
}

func (h *Handler) listReports(c *gin.Context) {
	reports, ok := h.listFiltered(c)
	if !ok {
		return
	}

	out := make([]reportResponse, 0, len(reports))
	for i := range reports {
		out = append(out, toReportResponse(&reports[i]))
	}
	c.JSON(http.StatusOK, gin.H{"reports": out, "count": len(out)})
}

func (h *Handler) listReportsGeoJSON(c *gin.Context) {
	reports, ok := h.listFiltered(c)
	if !ok {
		return
	}

	fc := toGeoJSON(reports)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

func (h *Handler) listFiltered(c *gin.Context) ([]models.Report, bool) {
	filter := repository.Filter{
		Limit: 50, // Default page size if limit param not supplied
	}

	if c.Query("open") == "true" {
		filter.OpenOnly = true
	}
	if t := c.Query("type"); t != "" {
		dt := models.ParseDisasterType(t)
		filter.Type = &dt
	}
	if d := c.Query("department"); d != "" {
		dept, ok := models.ParseDepartment(d)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown department"})
			return nil, false
		}
		filter.Department = &dept
	}
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= 500 {
			filter.Limit = lim
		}
	}
	if o := c.Query("offset"); o != "" {
		if off, err := strconv.Atoi(o); err == nil && off >= 0 {
			filter.Offset = off
		}
	}

	reports, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch reports"})
		return nil, false
	}
	return reports, true
}

func (h *Handler) getReport(c *gin.Context) {
	r, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toReportResponse(r))
}

func (h *Handler) getReportDetails(c *gin.Context) {
	r, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":      r.ID,
		"details": models.Details(r),
	})
}

type logRequest struct {
	Entry string `json:"entry" binding:"required"`
}

func (h *Handler) appendLog(c *gin.Context) {
	r, ok := h.lookup(c)
	if !ok {
		return
	}
	var req logRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.coord.AppendCommunicationLog(c.Request.Context(), r, req.Entry)
	c.JSON(http.StatusOK, gin.H{"communication_log": r.CommunicationLog})
}

type resourceRequest struct {
	Resource string `json:"resource" binding:"required"`
}

func (h *Handler) addResource(c *gin.Context) {
	r, ok := h.lookup(c)
	if !ok {
		return
	}
	var req resourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.coord.AddResourceNeeded(c.Request.Context(), r, req.Resource)
	c.JSON(http.StatusOK, gin.H{"resources_needed": r.ResourcesNeeded})
}

type assignmentsRequest struct {
	Assignments map[string]string `json:"assignments" binding:"required"`
}

func (h *Handler) updateAssignments(c *gin.Context) {
	r, ok := h.lookup(c)
	if !ok {
		return
	}
	var req assignmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignments := make(map[models.Department]models.ResponseStatus, len(req.Assignments))
	for name, status := range req.Assignments {
		dept, ok := models.ParseDepartment(name)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown department: " + name})
			return
		}
		assignments[dept] = models.ParseResponseStatus(status)
	}

	h.coord.UpdateAssignments(c.Request.Context(), r, assignments)
	c.JSON(http.StatusOK, toReportResponse(r))
}

type statusRequest struct {
	Status     string `json:"status" binding:"required"`
	Department string `json:"department"`
}

// updateStatus is the status surface for both scopes: with a department in
// the body it updates that department's own status through its actioner,
// without one it moves the overall lifecycle status.
func (h *Handler) updateStatus(c *gin.Context) {
	r, ok := h.lookup(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Department != "" {
		dept, ok := models.ParseDepartment(req.Department)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown department: " + req.Department})
			return
		}
		actioner, ok := h.roster[dept]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no actioner for department: " + req.Department})
			return
		}
		actioner.UpdateStatus(c.Request.Context(), r, models.ParseResponseStatus(req.Status))
		c.JSON(http.StatusOK, toReportResponse(r))
		return
	}

	r.ResponseStatus = models.ParseResponseStatus(req.Status)
	h.coord.UpdateReport(c.Request.Context(), r)
	c.JSON(http.StatusOK, toReportResponse(r))
}

func (h *Handler) recomputePriority(c *gin.Context) {
	r, ok := h.lookup(c)
	if !ok {
		return
	}

	result, err := h.coord.RecomputePriority(c.Request.Context(), r)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       r.ID,
		"priority": result.Level,
		"score":    result.Score,
		"trace":    result.Trace,
	})
}

type coordinatesRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (h *Handler) updateCoordinates(c *gin.Context) {
	r, ok := h.lookup(c)
	if !ok {
		return
	}
	var req coordinatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.coord.UpdateCoordinates(c.Request.Context(), r, req.Latitude, req.Longitude)
	c.JSON(http.StatusOK, toReportResponse(r))
}

func (h *Handler) geocode(c *gin.Context) {
	location := c.Query("location")
	if location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location is required"})
		return
	}

	p, err := h.coord.Geocode(c.Request.Context(), location)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"location":  location,
		"latitude":  p.Lat,
		"longitude": p.Lon,
	})
}

func (h *Handler) nearbyInfrastructure(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon are required"})
		return
	}

	radiusKm := 25.0
	if rq := c.Query("radius_km"); rq != "" {
		if r, err := strconv.ParseFloat(rq, 64); err == nil && r > 0 {
			radiusKm = r
		}
	}

	sites := h.coord.NearbyInfrastructure(lat, lon, radiusKm)
	out := make([]gin.H, 0, len(sites))
	for _, s := range sites {
		out = append(out, gin.H{
			"name":        s.Name,
			"kind":        s.Kind,
			"latitude":    s.Lat,
			"longitude":   s.Lon,
			"distance_km": s.DistanceKm,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sites": out, "count": len(out)})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) lookup(c *gin.Context) (*models.Report, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return nil, false
	}

	r, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch report"})
		return nil, false
	}
	return r, true
}

type reportResponse struct {
	ID                 int64             `json:"id"`
	Reference          string            `json:"reference"`
	DisasterType       string            `json:"disaster_type"`
	Location           string            `json:"location"`
	Latitude           float64           `json:"latitude"`
	Longitude          float64           `json:"longitude"`
	OccurredAt         string            `json:"occurred_at"`
	ReporterName       string            `json:"reporter_name"`
	ContactInfo        string            `json:"contact_info"`
	ResponseStatus     string            `json:"response_status"`
	DepartmentStatuses map[string]string `json:"department_statuses"`
	CommunicationLog   string            `json:"communication_log"`
	ResourcesNeeded    string            `json:"resources_needed"`
	PriorityLevel      string            `json:"priority_level"`
	AffectedAreaSize   *string           `json:"affected_area_size,omitempty"`
	NearbyInfra        string            `json:"nearby_infrastructure,omitempty"`
	CreatedAt          string            `json:"created_at"`
}

func toReportResponse(r *models.Report) reportResponse {
	statuses := make(map[string]string, len(models.Departments))
	for _, dept := range models.Departments {
		statuses[string(dept)] = r.StatusFor(dept).String()
	}

	return reportResponse{
		ID:                 r.ID,
		Reference:          r.Reference,
		DisasterType:       r.DisasterType.String(),
		Location:           r.Location,
		Latitude:           r.Latitude,
		Longitude:          r.Longitude,
		OccurredAt:         r.OccurredAt,
		ReporterName:       r.ReporterName,
		ContactInfo:        r.ContactInfo,
		ResponseStatus:     r.ResponseStatus.String(),
		DepartmentStatuses: statuses,
		CommunicationLog:   r.CommunicationLog,
		ResourcesNeeded:    r.ResourcesNeeded,
		PriorityLevel:      r.PriorityLevel.String(),
		AffectedAreaSize:   r.AffectedAreaSize,
		NearbyInfra:        r.NearbyInfrastructure,
		CreatedAt:          r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
