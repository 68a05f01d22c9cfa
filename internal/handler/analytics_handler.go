package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/internal/service"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
	"github.com/noah-isme/placement-portal-api/pkg/response"
)

type analyticsService interface {
	DepartmentStats(ctx context.Context, hodID string) (*models.DepartmentStats, error)
	DepartmentStudents(ctx context.Context, hodID string) ([]models.Student, error)
	DepartmentAnalytics(ctx context.Context, hodID string) (*models.DepartmentAnalytics, error)
	DepartmentOverview(ctx context.Context, hodID string) ([]models.AdvisorPerformance, error)
	AdvisorPerformance(ctx context.Context, hodID, advisorID string) (*models.AdvisorPerformance, error)
	AdvisorCohort(ctx context.Context, hodID, advisorID string) ([]models.Student, error)
	ClassAnalysis(ctx context.Context, hodID, advisorID string) (*models.ClassAnalysis, error)
	Compare(ctx context.Context, hodID, advisorA, advisorB string) (*models.AdvisorComparison, error)
	MyCohort(ctx context.Context, staffID string) (*models.ClassAnalysis, error)
}

type reportService interface {
	ClassReport(ctx context.Context, hodID, advisorID string, format service.ReportFormat) (*service.Report, error)
}

// CompareRequest selects the two advisors to compare. Missing sides are reported as INVALID_SELECTION.
type CompareRequest struct {
	ClassA string `json:"class_a"`
	ClassB string `json:"class_b"`
}

// AnalyticsHandler exposes HOD and staff cohort analytics.
type AnalyticsHandler struct {
	analytics analyticsService
	reports   reportService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics analyticsService, reports reportService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, reports: reports}
}

// Stats godoc
// @Summary Department statistics
// @Tags HOD
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /hod/stats [get]
func (h *AnalyticsHandler) Stats(c *gin.Context) {
	hodID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	stats, err := h.analytics.DepartmentStats(c.Request.Context(), hodID)
	if err != nil {
		response.Error(c, err)
		return
	}
	ok(c, http.StatusOK, stats)
}

// DepartmentStudents godoc
// @Summary Department roster ordered by registration number
// @Tags HOD
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /hod/students [get]
func (h *AnalyticsHandler) DepartmentStudents(c *gin.Context) {
	hodID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	students, err := h.analytics.DepartmentStudents(c.Request.Context(), hodID)
	if err != nil {
		response.Error(c, err)
		return
	}
	ok(c, http.StatusOK, students)
}

// DepartmentAnalytics godoc
// @Summary Metrics of the whole department taken as one cohort
// @Tags HOD
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /hod/analytics [get]
func (h *AnalyticsHandler) DepartmentAnalytics(c *gin.Context) {
	hodID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	analytics, err := h.analytics.DepartmentAnalytics(c.Request.Context(), hodID)
	if err != nil {
		response.Error(c, err)
		return
	}
	ok(c, http.StatusOK, analytics)
}

// Advisors godoc
// @Summary Performance of every advisor in the department
// @Tags HOD
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /hod/advisors [get]
func (h *AnalyticsHandler) Advisors(c *gin.Context) {
	hodID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	overview, err := h.analytics.DepartmentOverview(c.Request.Context(), hodID)
	if err != nil {
		response.Error(c, err)
		return
	}
	ok(c, http.StatusOK, overview)
}

// Performance godoc
// @Summary Cohort metrics of one advisor
// @Tags HOD
// @Produce json
// @Param id path string true "Advisor ID"
// @Success 200 {object} response.Envelope
// @Router /hod/advisors/{id}/performance [get]
func (h *AnalyticsHandler) Performance(c *gin.Context) {
	hodID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	perf, err := h.analytics.AdvisorPerformance(c.Request.Context(), hodID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	ok(c, http.StatusOK, perf)
}

// Students godoc
// @Summary Students resolved from an advisor's assignment
// @Tags HOD
// @Produce json
// @Param id path string true "Advisor ID"
// @Success 200 {object} response.Envelope
// @Router /hod/advisors/{id}/students [get]
func (h *AnalyticsHandler) Students(c *gin.Context) {
	hodID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	students, err := h.analytics.AdvisorCohort(c.Request.Context(), hodID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	ok(c, http.StatusOK, students)
}

// Analysis godoc
// @Summary Detailed class analysis of an advisor
// @Tags HOD
// @Produce json
// @Param id path string true "Advisor ID"
// @Success 200 {object} response.Envelope
// @Router /hod/advisors/{id}/analysis [get]
func (h *AnalyticsHandler) Analysis(c *gin.Context) {
	hodID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	analysis, err := h.analytics.ClassAnalysis(c.Request.Context(), hodID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	ok(c, http.StatusOK, analysis)
}

// Report godoc
// @Summary Download a class report
// @Tags HOD
// @Produce text/csv,application/pdf
// @Param id path string true "Advisor ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /hod/advisors/{id}/report [get]
func (h *AnalyticsHandler) Report(c *gin.Context) {
	hodID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.reports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "class reports are disabled"))
		return
	}
	report, err := h.reports.ClassReport(c.Request.Context(), hodID, c.Param("id"), service.ReportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, report.Filename, report.ContentType, report.Payload)
}

// Compare godoc
// @Summary Compare two advisors side by side
// @Tags HOD
// @Accept json
// @Produce json
// @Param payload body CompareRequest true "Advisors to compare"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /hod/compare [post]
func (h *AnalyticsHandler) Compare(c *gin.Context) {
	hodID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req CompareRequest
	// an empty body selects neither side
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comparison payload"))
		return
	}
	result, err := h.analytics.Compare(c.Request.Context(), hodID, req.ClassA, req.ClassB)
	if err != nil {
		response.Error(c, err)
		return
	}
	ok(c, http.StatusOK, result)
}

// StaffCohort godoc
// @Summary The caller's own class analysis
// @Tags Staff
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /staff/cohort [get]
func (h *AnalyticsHandler) StaffCohort(c *gin.Context) {
	staffID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	analysis, err := h.analytics.MyCohort(c.Request.Context(), staffID)
	if err != nil {
		response.Error(c, err)
		return
	}
	ok(c, http.StatusOK, analysis)
}
