package service

import (
	"strings"

	"github.com/noah-isme/placement-portal-api/internal/models"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
)

// ComparisonEngine puts two cohorts side by side.
type ComparisonEngine struct {
	resolver   *RosterResolver
	aggregator *PerformanceAggregator
}

// NewComparisonEngine constructs a ComparisonEngine.
func NewComparisonEngine(resolver *RosterResolver, aggregator *PerformanceAggregator) *ComparisonEngine {
	if resolver == nil {
		resolver = NewRosterResolver(nil)
	}
	if aggregator == nil {
		aggregator = NewPerformanceAggregator(PerformanceAggregatorConfig{})
	}
	return &ComparisonEngine{resolver: resolver, aggregator: aggregator}
}

// ValidateSelection fails with ErrInvalidSelection unless both advisor ids are chosen.
func ValidateSelection(advisorA, advisorB string) error {
	if strings.TrimSpace(advisorA) == "" || strings.TrimSpace(advisorB) == "" {
		return appErrors.ErrInvalidSelection
	}
	return nil
}

// Compare resolves and aggregates both sides independently. Cohorts may overlap.
func (e *ComparisonEngine) Compare(a, b models.ComparisonSide, students []models.Student, submissions []models.Submission) (*models.ComparisonResult, error) {
	if err := ValidateSelection(a.AdvisorID, b.AdvisorID); err != nil {
		return nil, err
	}
	return &models.ComparisonResult{
		A: e.side(a.Spec, students, submissions),
		B: e.side(b.Spec, students, submissions),
	}, nil
}

func (e *ComparisonEngine) side(spec models.AssignmentSpec, students []models.Student, submissions []models.Submission) models.CohortMetrics {
	cohort := e.resolver.Resolve(spec, students)
	return e.aggregator.CohortMetrics(cohort, submissions)
}
