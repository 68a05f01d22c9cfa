package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/internal/service"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
	"github.com/noah-isme/placement-portal-api/pkg/response"
)

type assignmentService interface {
	List(ctx context.Context, department string) ([]models.AdvisorAssignment, error)
	Assign(ctx context.Context, req service.AssignAdvisorRequest) (*models.AdvisorAssignment, error)
}

// AssignmentHandler manages advisor cohort assignments.
type AssignmentHandler struct {
	assignments assignmentService
}

// NewAssignmentHandler constructs the assignment handler.
func NewAssignmentHandler(assignments assignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// List godoc
// @Summary List advisors with their assignments
// @Tags Admin
// @Produce json
// @Param department query string false "Department filter"
// @Success 200 {object} response.Envelope
// @Router /admin/advisors [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	advisors, err := h.assignments.List(c.Request.Context(), c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	ok(c, http.StatusOK, advisors)
}

// Assign godoc
// @Summary Assign a registration number range and extras to an advisor
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Advisor ID"
// @Param payload body service.AssignAdvisorRequest true "Assignment"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/advisors/{id}/assignment [put]
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req service.AssignAdvisorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload"))
		return
	}
	req.AdvisorID = c.Param("id")
	result, err := h.assignments.Assign(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	ok(c, http.StatusOK, result)
}
