package models

import "time"

// WeakestTopicNone labels a snapshot that has no submissions to rank.
const WeakestTopicNone = "N/A"

// MetricSnapshot summarises a cohort's performance. It is recomputed on every request.
type MetricSnapshot struct {
	CohortSize      int            `json:"cohort_size"`
	AverageScore    float64        `json:"average_score"`
	Participation   int            `json:"participation"`
	AssessmentCount int            `json:"assessment_count"`
	WeakestTopic    string         `json:"weakest_topic"`
	AttemptCounts   []AttemptCount `json:"attempt_counts"`
}

// TopicScore is the mean normalized score of one assessment title.
type TopicScore struct {
	Topic       string  `json:"topic"`
	MeanScore   float64 `json:"mean_score"`
	Submissions int     `json:"submissions"`
}

// CohortMetrics is a snapshot plus the ranked list of underperforming topics.
type CohortMetrics struct {
	MetricSnapshot
	WeakTopics []TopicScore `json:"weak_topics"`
}

// ComparisonSide names one advisor and its decoded assignment.
type ComparisonSide struct {
	AdvisorID string
	Spec      AssignmentSpec
}

// ComparisonResult is the side-by-side view of two cohorts.
type ComparisonResult struct {
	A CohortMetrics `json:"class_a"`
	B CohortMetrics `json:"class_b"`
}

// AdvisorPerformance attaches advisor identity to cohort metrics.
type AdvisorPerformance struct {
	AdvisorID   string `json:"advisor_id"`
	AdvisorName string `json:"advisor_name"`
	CohortMetrics
}

// AdvisorComparison is the HTTP-facing comparison payload.
type AdvisorComparison struct {
	ClassA AdvisorPerformance `json:"class_a"`
	ClassB AdvisorPerformance `json:"class_b"`
}

// StudentPerformance is one row of a class analysis.
type StudentPerformance struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	RegistrationNumber string  `json:"registration_number"`
	AverageScore       float64 `json:"average_score"`
	Participation      float64 `json:"participation"`
	LastAssessment     string  `json:"last_assessment"`
	SubmissionCount    int     `json:"submission_count"`
	Status             string  `json:"status"`
}

// Student status labels used by class analysis.
const (
	StudentStatusGood       = "Good"
	StudentStatusNeedsFocus = "Needs Focus"
)

// ClassAnalysis is the detailed per-advisor breakdown.
type ClassAnalysis struct {
	AdvisorID   string               `json:"advisor_id"`
	AdvisorName string               `json:"advisor_name"`
	Summary     CohortMetrics        `json:"summary"`
	Students    []StudentPerformance `json:"students"`
}

// DepartmentStats counts department members for the HOD dashboard.
type DepartmentStats struct {
	Department   string `json:"department"`
	StudentCount int    `json:"student_count"`
	StaffCount   int    `json:"staff_count"`
	ClassCount   int    `json:"class_count"`
}

// DepartmentAnalytics is the snapshot of every student in a department taken as one cohort.
type DepartmentAnalytics struct {
	Department       string `json:"department"`
	TotalSubmissions int    `json:"total_submissions"`
	MetricSnapshot
}

// SystemMetrics represents system level analytics captured from instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	FanOutOmitted            uint64    `json:"fan_out_omitted"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
