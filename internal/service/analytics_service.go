package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-portal-api/internal/models"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
	"github.com/noah-isme/placement-portal-api/pkg/jobs"
)

// UserReader describes the user lookups required by AnalyticsService.
type UserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindStaffByID(ctx context.Context, id string) (*models.Advisor, error)
	ListStudents(ctx context.Context, department string) ([]models.Student, error)
	ListStaff(ctx context.Context, department string) ([]models.Advisor, error)
}

// SubmissionReader describes the submission lookups required by AnalyticsService.
type SubmissionReader interface {
	ListByStudents(ctx context.Context, studentIDs []string) ([]models.Submission, error)
	CountExams(ctx context.Context) (int, error)
}

// AnalyticsService serves HOD and staff views of advisor cohorts. Every view is recomputed from the
// current roster and submissions.
type AnalyticsService struct {
	users       UserReader
	submissions SubmissionReader
	resolver    *RosterResolver
	aggregator  *PerformanceAggregator
	engine      *ComparisonEngine
	metrics     *MetricsService
	workers     int
	logger      *zap.Logger
}

// NewAnalyticsService constructs an analytics service. workers bounds the department overview fan-out.
func NewAnalyticsService(users UserReader, submissions SubmissionReader, resolver *RosterResolver, aggregator *PerformanceAggregator, metrics *MetricsService, workers int, logger *zap.Logger) *AnalyticsService {
	if resolver == nil {
		resolver = NewRosterResolver(nil)
	}
	if aggregator == nil {
		aggregator = NewPerformanceAggregator(PerformanceAggregatorConfig{})
	}
	if workers <= 0 {
		workers = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		users:       users,
		submissions: submissions,
		resolver:    resolver,
		aggregator:  aggregator,
		engine:      NewComparisonEngine(resolver, aggregator),
		metrics:     metrics,
		workers:     workers,
		logger:      logger,
	}
}

// DepartmentStats counts the students, staff and batches of the HOD's department.
func (s *AnalyticsService) DepartmentStats(ctx context.Context, hodID string) (*models.DepartmentStats, error) {
	hod, err := s.loadHOD(ctx, hodID)
	if err != nil {
		return nil, err
	}
	students, err := s.listStudents(ctx, hod.Department)
	if err != nil {
		return nil, err
	}
	staff, err := s.listStaff(ctx, hod.Department)
	if err != nil {
		return nil, err
	}
	batches := make(map[string]struct{})
	for _, student := range students {
		if student.Batch != "" {
			batches[student.Batch] = struct{}{}
		}
	}
	return &models.DepartmentStats{
		Department:   hod.Department,
		StudentCount: len(students),
		StaffCount:   len(staff),
		ClassCount:   len(batches),
	}, nil
}

// DepartmentStudents lists the HOD's department roster ordered by registration number.
func (s *AnalyticsService) DepartmentStudents(ctx context.Context, hodID string) ([]models.Student, error) {
	hod, err := s.loadHOD(ctx, hodID)
	if err != nil {
		return nil, err
	}
	return s.listStudents(ctx, hod.Department)
}

// DepartmentAnalytics aggregates the whole department as a single cohort. TotalSubmissions counts every
// attempt, including those superseded by a later one.
func (s *AnalyticsService) DepartmentAnalytics(ctx context.Context, hodID string) (*models.DepartmentAnalytics, error) {
	defer s.observe("department_analytics", time.Now())
	hod, err := s.loadHOD(ctx, hodID)
	if err != nil {
		return nil, err
	}
	students, err := s.listStudents(ctx, hod.Department)
	if err != nil {
		return nil, err
	}
	subs, err := s.listSubmissions(ctx, students)
	if err != nil {
		return nil, err
	}
	return &models.DepartmentAnalytics{
		Department:       hod.Department,
		TotalSubmissions: len(subs),
		MetricSnapshot:   s.aggregator.Aggregate(students, subs),
	}, nil
}

// AdvisorPerformance aggregates one advisor's cohort.
func (s *AnalyticsService) AdvisorPerformance(ctx context.Context, hodID, advisorID string) (*models.AdvisorPerformance, error) {
	defer s.observe("advisor_performance", time.Now())
	advisor, err := s.advisorForHOD(ctx, hodID, advisorID)
	if err != nil {
		return nil, err
	}
	cohort, subs, err := s.cohortData(ctx, *advisor, nil)
	if err != nil {
		return nil, err
	}
	return &models.AdvisorPerformance{
		AdvisorID:     advisor.ID,
		AdvisorName:   advisor.Name,
		CohortMetrics: s.aggregator.CohortMetrics(cohort, subs),
	}, nil
}

// AdvisorCohort lists the students resolved from an advisor's assignment.
func (s *AnalyticsService) AdvisorCohort(ctx context.Context, hodID, advisorID string) ([]models.Student, error) {
	advisor, err := s.advisorForHOD(ctx, hodID, advisorID)
	if err != nil {
		return nil, err
	}
	students, err := s.listStudents(ctx, advisor.Department)
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ParseAssignment(advisor.Assignment), students), nil
}

// ClassAnalysis returns an advisor's cohort metrics with one row per student.
func (s *AnalyticsService) ClassAnalysis(ctx context.Context, hodID, advisorID string) (*models.ClassAnalysis, error) {
	advisor, err := s.advisorForHOD(ctx, hodID, advisorID)
	if err != nil {
		return nil, err
	}
	return s.classAnalysis(ctx, *advisor)
}

// MyCohort is the staff member's own class analysis.
func (s *AnalyticsService) MyCohort(ctx context.Context, staffID string) (*models.ClassAnalysis, error) {
	advisor, err := s.users.FindStaffByID(ctx, staffID)
	if err != nil {
		return nil, lookupError(err, "advisor not found", "failed to load advisor")
	}
	return s.classAnalysis(ctx, *advisor)
}

// Compare puts two advisors of the HOD's department side by side. The selection is validated before any
// lookup.
func (s *AnalyticsService) Compare(ctx context.Context, hodID, advisorA, advisorB string) (*models.AdvisorComparison, error) {
	if err := ValidateSelection(advisorA, advisorB); err != nil {
		return nil, err
	}
	defer s.observe("compare", time.Now())

	a, err := s.advisorForHOD(ctx, hodID, advisorA)
	if err != nil {
		return nil, err
	}
	b, err := s.advisorForHOD(ctx, hodID, advisorB)
	if err != nil {
		return nil, err
	}

	students, err := s.listStudents(ctx, a.Department)
	if err != nil {
		return nil, err
	}
	sideA := models.ComparisonSide{AdvisorID: a.ID, Spec: ParseAssignment(a.Assignment)}
	sideB := models.ComparisonSide{AdvisorID: b.ID, Spec: ParseAssignment(b.Assignment)}
	union := append(s.resolver.Resolve(sideA.Spec, students), s.resolver.Resolve(sideB.Spec, students)...)
	subs, err := s.listSubmissions(ctx, union)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Compare(sideA, sideB, students, subs)
	if err != nil {
		return nil, err
	}
	return &models.AdvisorComparison{
		ClassA: models.AdvisorPerformance{AdvisorID: a.ID, AdvisorName: a.Name, CohortMetrics: result.A},
		ClassB: models.AdvisorPerformance{AdvisorID: b.ID, AdvisorName: b.Name, CohortMetrics: result.B},
	}, nil
}

// DepartmentOverview aggregates every advisor of the HOD's department on a bounded worker pool.
// Advisors whose submissions cannot be retrieved are left out of the result.
func (s *AnalyticsService) DepartmentOverview(ctx context.Context, hodID string) ([]models.AdvisorPerformance, error) {
	defer s.observe("department_overview", time.Now())
	hod, err := s.loadHOD(ctx, hodID)
	if err != nil {
		return nil, err
	}
	advisors, err := s.listStaff(ctx, hod.Department)
	if err != nil {
		return nil, err
	}
	students, err := s.listStudents(ctx, hod.Department)
	if err != nil {
		return nil, err
	}

	tasks := make([]jobs.Task[models.AdvisorPerformance], 0, len(advisors))
	for _, advisor := range advisors {
		advisor := advisor
		tasks = append(tasks, jobs.Task[models.AdvisorPerformance]{
			Key: advisor.ID,
			Run: func(ctx context.Context) (models.AdvisorPerformance, error) {
				cohort, subs, err := s.cohortData(ctx, advisor, students)
				if err != nil {
					return models.AdvisorPerformance{}, err
				}
				return models.AdvisorPerformance{
					AdvisorID:     advisor.ID,
					AdvisorName:   advisor.Name,
					CohortMetrics: s.aggregator.CohortMetrics(cohort, subs),
				}, nil
			},
		})
	}

	return jobs.FanOut(ctx, tasks, jobs.FanOutConfig{
		Workers: s.workers,
		Logger:  s.logger.With(zap.String("operation", "department_overview"), zap.String("department", hod.Department)),
		OnOmit: func(string, error) {
			s.metrics.RecordFanOutOmission("department_overview")
		},
	}), nil
}

func (s *AnalyticsService) classAnalysis(ctx context.Context, advisor models.Advisor) (*models.ClassAnalysis, error) {
	defer s.observe("class_analysis", time.Now())
	cohort, subs, err := s.cohortData(ctx, advisor, nil)
	if err != nil {
		return nil, err
	}
	examCount, err := s.submissions.CountExams(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count assessments")
	}
	return &models.ClassAnalysis{
		AdvisorID:   advisor.ID,
		AdvisorName: advisor.Name,
		Summary:     s.aggregator.CohortMetrics(cohort, subs),
		Students:    s.aggregator.StudentBreakdown(cohort, subs, examCount),
	}, nil
}

// cohortData resolves the advisor's cohort from students, loading the department roster when students is
// nil, and fetches the cohort's submissions.
func (s *AnalyticsService) cohortData(ctx context.Context, advisor models.Advisor, students []models.Student) ([]models.Student, []models.Submission, error) {
	if students == nil {
		var err error
		if students, err = s.listStudents(ctx, advisor.Department); err != nil {
			return nil, nil, err
		}
	}
	cohort := s.resolver.Resolve(ParseAssignment(advisor.Assignment), students)
	subs, err := s.listSubmissions(ctx, cohort)
	if err != nil {
		return nil, nil, err
	}
	return cohort, subs, nil
}

func (s *AnalyticsService) loadHOD(ctx context.Context, hodID string) (*models.User, error) {
	hod, err := s.users.FindByID(ctx, hodID)
	if err != nil {
		return nil, lookupError(err, "user not found", "failed to load user")
	}
	if hod.Role != models.RoleHOD {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only a head of department can view department analytics")
	}
	return hod, nil
}

func (s *AnalyticsService) advisorForHOD(ctx context.Context, hodID, advisorID string) (*models.Advisor, error) {
	hod, err := s.loadHOD(ctx, hodID)
	if err != nil {
		return nil, err
	}
	advisor, err := s.users.FindStaffByID(ctx, advisorID)
	if err != nil {
		return nil, lookupError(err, "advisor not found", "failed to load advisor")
	}
	if advisor.Department != hod.Department {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "advisor belongs to another department")
	}
	return advisor, nil
}

func (s *AnalyticsService) listStudents(ctx context.Context, department string) ([]models.Student, error) {
	start := time.Now()
	students, err := s.users.ListStudents(ctx, department)
	s.metrics.ObserveDBQuery("list_students", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

func (s *AnalyticsService) listStaff(ctx context.Context, department string) ([]models.Advisor, error) {
	start := time.Now()
	staff, err := s.users.ListStaff(ctx, department)
	s.metrics.ObserveDBQuery("list_staff", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff")
	}
	return staff, nil
}

func (s *AnalyticsService) listSubmissions(ctx context.Context, students []models.Student) ([]models.Submission, error) {
	ids := make([]string, 0, len(students))
	seen := make(map[string]struct{}, len(students))
	for _, student := range students {
		if _, dup := seen[student.ID]; dup {
			continue
		}
		seen[student.ID] = struct{}{}
		ids = append(ids, student.ID)
	}
	start := time.Now()
	subs, err := s.submissions.ListByStudents(ctx, ids)
	s.metrics.ObserveDBQuery("list_submissions", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return subs, nil
}

func (s *AnalyticsService) observe(operation string, start time.Time) {
	s.metrics.ObserveAnalytics(operation, time.Since(start))
}

func lookupError(err error, notFound, internal string) error {
	if err == sql.ErrNoRows {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internal)
}
