package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-portal-api/internal/models"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
)

type advisorStore interface {
	FindStaffByID(ctx context.Context, id string) (*models.Advisor, error)
	ListStaff(ctx context.Context, department string) ([]models.Advisor, error)
	UpdateAssignment(ctx context.Context, staffID, encoding string) error
}

// AssignAdvisorRequest describes a cohort assignment. Extras is a comma separated list.
type AssignAdvisorRequest struct {
	AdvisorID string `json:"advisor_id" validate:"required"`
	Start     string `json:"start" validate:"max=64"`
	End       string `json:"end" validate:"max=64"`
	Extras    string `json:"extras" validate:"max=4096"`
}

// AssignmentService validates and stores advisor cohort assignments.
type AssignmentService struct {
	store     advisorStore
	validator *validator.Validate
	compare   RegNoComparator
	logger    *zap.Logger
}

// NewAssignmentService constructs an AssignmentService. Bounds are ordered and overlap-checked with
// NumericAwareOrder so that "CS9" precedes "CS10" when an administrator enters them.
func NewAssignmentService(store advisorStore, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{store: store, validator: validate, compare: NumericAwareOrder, logger: logger}
}

// List returns every advisor with its decoded assignment. An empty department lists all advisors.
func (s *AssignmentService) List(ctx context.Context, department string) ([]models.AdvisorAssignment, error) {
	advisors, err := s.store.ListStaff(ctx, department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list advisors")
	}
	result := make([]models.AdvisorAssignment, 0, len(advisors))
	for _, advisor := range advisors {
		spec := ParseAssignment(advisor.Assignment)
		result = append(result, models.AdvisorAssignment{Advisor: advisor, Spec: spec, Summary: SummarizeAssignment(spec)})
	}
	return result, nil
}

// Assign validates the request against every other advisor's assignment and stores it.
func (s *AssignmentService) Assign(ctx context.Context, req AssignAdvisorRequest) (*models.AdvisorAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	spec := models.AssignmentSpec{
		Kind:   models.AssignmentRange,
		Start:  strings.TrimSpace(req.Start),
		End:    strings.TrimSpace(req.End),
		Extras: splitExtras(req.Extras),
	}
	hasRange := spec.Start != "" && spec.End != ""
	if !hasRange && len(spec.Extras) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "either a registration number range or additional registration numbers must be provided")
	}
	if hasRange && s.compare(spec.Start, spec.End) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start registration number must not be after end registration number")
	}

	advisor, err := s.store.FindStaffByID(ctx, req.AdvisorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "advisor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load advisor")
	}

	others, err := s.store.ListStaff(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list advisors")
	}
	for _, other := range others {
		if other.ID == advisor.ID {
			continue
		}
		if err := s.checkOverlap(spec, other); err != nil {
			return nil, err
		}
	}

	encoding := FormatAssignment(spec)
	if err := s.store.UpdateAssignment(ctx, advisor.ID, encoding); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "advisor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store assignment")
	}
	s.logger.Info("advisor assignment updated", zap.String("advisor_id", advisor.ID), zap.String("assignment", encoding))

	advisor.Assignment = encoding
	return &models.AdvisorAssignment{Advisor: *advisor, Spec: spec, Summary: SummarizeAssignment(spec)}, nil
}

func (s *AssignmentService) checkOverlap(spec models.AssignmentSpec, other models.Advisor) error {
	existing := ParseAssignment(other.Assignment)
	if existing.Kind != models.AssignmentRange {
		return nil
	}
	newRange := spec.Start != "" && spec.End != ""
	oldRange := existing.Start != "" && existing.End != ""

	if newRange && oldRange && s.compare(spec.Start, existing.End) <= 0 && s.compare(spec.End, existing.Start) >= 0 {
		return overlapError("range %s-%s overlaps with %s's range %s-%s", spec.Start, spec.End, other.Name, existing.Start, existing.End)
	}
	if oldRange {
		for _, extra := range spec.Extras {
			if s.within(extra, existing.Start, existing.End) {
				return overlapError("student %s falls in %s's range %s-%s", extra, other.Name, existing.Start, existing.End)
			}
		}
	}
	if newRange {
		for _, extra := range existing.Extras {
			if s.within(extra, spec.Start, spec.End) {
				return overlapError("range includes student %s who is already assigned to %s", extra, other.Name)
			}
		}
	}
	for _, extra := range spec.Extras {
		for _, taken := range existing.Extras {
			if extra == taken {
				return overlapError("student %s is already assigned to %s", extra, other.Name)
			}
		}
	}
	return nil
}

func (s *AssignmentService) within(regNo, start, end string) bool {
	return s.compare(regNo, start) >= 0 && s.compare(regNo, end) <= 0
}

func overlapError(format string, args ...interface{}) error {
	return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf(format, args...))
}
