package models

import "time"

// Submission is a single assessment attempt as read from the store.
// A zero Total means the maximum score was not recorded.
type Submission struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	ExamID      string    `db:"exam_id" json:"exam_id"`
	ExamTitle   string    `db:"exam_title" json:"exam_title"`
	Score       float64   `db:"score" json:"score"`
	Total       float64   `db:"total" json:"total"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
	Violations  *int      `db:"violation_count" json:"violation_count,omitempty"`
}

// AttemptKey identifies a (student, assessment) pair.
type AttemptKey struct {
	StudentID string
	ExamID    string
}

// AttemptCount reports how many submissions a student made for one assessment.
type AttemptCount struct {
	StudentID string `json:"student_id"`
	ExamID    string `json:"exam_id"`
	Attempts  int    `json:"attempts"`
}
