package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/placement-portal-api/internal/models"
)

const submissionSelect = `SELECT s.id, s.student_id, s.exam_id, COALESCE(e.title, '') AS exam_title, s.score,
        COALESCE(s.total, 0) AS total, s.submitted_at, s.violation_count
        FROM submissions s LEFT JOIN exams e ON e.id = s.exam_id`

// SubmissionRepository reads assessment submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs a SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// ListByStudents returns the submissions of the given students in submission order.
func (r *SubmissionRepository) ListByStudents(ctx context.Context, studentIDs []string) ([]models.Submission, error) {
	submissions := make([]models.Submission, 0)
	if len(studentIDs) == 0 {
		return submissions, nil
	}
	query := submissionSelect + " WHERE s.student_id = ANY($1) ORDER BY s.submitted_at, s.id"
	if err := r.db.SelectContext(ctx, &submissions, query, pq.Array(studentIDs)); err != nil {
		return nil, fmt.Errorf("list submissions by students: %w", err)
	}
	return submissions, nil
}

// ListAll returns every submission in submission order.
func (r *SubmissionRepository) ListAll(ctx context.Context) ([]models.Submission, error) {
	submissions := make([]models.Submission, 0)
	if err := r.db.SelectContext(ctx, &submissions, submissionSelect+" ORDER BY s.submitted_at, s.id"); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}

// CountExams returns the number of published assessments.
func (r *SubmissionRepository) CountExams(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM exams"); err != nil {
		return 0, fmt.Errorf("count exams: %w", err)
	}
	return total, nil
}
