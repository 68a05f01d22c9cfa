package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-portal-api/internal/models"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func submission(student, exam, title string, score, total float64, offset time.Duration) models.Submission {
	return models.Submission{
		ID:          student + "-" + exam + "-" + offset.String(),
		StudentID:   student,
		ExamID:      exam,
		ExamTitle:   title,
		Score:       score,
		Total:       total,
		SubmittedAt: baseTime.Add(offset),
	}
}

func cohortOf(ids ...string) []models.Student {
	students := make([]models.Student, len(ids))
	for i, id := range ids {
		students[i] = models.Student{ID: id, RegistrationNumber: "R" + id, Name: "Student " + id}
	}
	return students
}

func TestAggregateKeepsLatestAttempt(t *testing.T) {
	aggregator := NewPerformanceAggregator(PerformanceAggregatorConfig{})
	subs := []models.Submission{
		submission("s1", "e1", "Arrays", 4, 5, time.Hour),
		submission("s1", "e1", "Arrays", 2, 5, 0),
	}

	snapshot := aggregator.Aggregate(cohortOf("s1"), subs)

	assert.Equal(t, 1, snapshot.AssessmentCount)
	assert.Equal(t, 80.0, snapshot.AverageScore)
	assert.Equal(t, 100, snapshot.Participation)
	require.Len(t, snapshot.AttemptCounts, 1)
	assert.Equal(t, models.AttemptCount{StudentID: "s1", ExamID: "e1", Attempts: 2}, snapshot.AttemptCounts[0])
}

func TestDeduplicateByLatestTieKeepsFirst(t *testing.T) {
	first := submission("s1", "e1", "Arrays", 1, 5, 0)
	second := submission("s1", "e1", "Arrays", 5, 5, 0)
	second.ID = "second"

	latest, counts := DeduplicateByLatest([]models.Submission{first, second})

	require.Len(t, latest, 1)
	assert.Equal(t, first.ID, latest[0].ID)
	assert.Equal(t, 2, counts[0].Attempts)
}

func TestAggregateEmptyCohort(t *testing.T) {
	aggregator := NewPerformanceAggregator(PerformanceAggregatorConfig{})

	snapshot := aggregator.Aggregate(nil, []models.Submission{submission("s1", "e1", "Arrays", 4, 5, 0)})

	assert.Equal(t, 0, snapshot.CohortSize)
	assert.Equal(t, 0.0, snapshot.AverageScore)
	assert.Equal(t, 0, snapshot.Participation)
	assert.Equal(t, 0, snapshot.AssessmentCount)
	assert.Equal(t, models.WeakestTopicNone, snapshot.WeakestTopic)
	assert.Empty(t, snapshot.AttemptCounts)
}

func TestAggregateCohortWithoutSubmissions(t *testing.T) {
	aggregator := NewPerformanceAggregator(PerformanceAggregatorConfig{})

	snapshot := aggregator.Aggregate(cohortOf("s1", "s2"), nil)

	assert.Equal(t, 2, snapshot.CohortSize)
	assert.Equal(t, 0, snapshot.Participation)
	assert.Equal(t, models.WeakestTopicNone, snapshot.WeakestTopic)
}

func TestAggregateParticipation(t *testing.T) {
	aggregator := NewPerformanceAggregator(PerformanceAggregatorConfig{})
	subs := []models.Submission{
		submission("s1", "e1", "Arrays", 3, 5, 0),
		submission("s2", "e1", "Arrays", 4, 5, 0),
		submission("s2", "e2", "Graphs", 4, 5, time.Hour),
	}

	snapshot := aggregator.Aggregate(cohortOf("s1", "s2", "s3", "s4"), subs)

	assert.Equal(t, 50, snapshot.Participation)
	assert.Equal(t, 3, snapshot.AssessmentCount)
}

func TestAggregateIgnoresSubmissionsOutsideCohort(t *testing.T) {
	aggregator := NewPerformanceAggregator(PerformanceAggregatorConfig{})
	subs := []models.Submission{
		submission("s1", "e1", "Arrays", 5, 5, 0),
		submission("outsider", "e1", "Arrays", 0, 5, 0),
	}

	snapshot := aggregator.Aggregate(cohortOf("s1"), subs)

	assert.Equal(t, 100.0, snapshot.AverageScore)
	assert.Equal(t, 1, snapshot.AssessmentCount)
	assert.Len(t, snapshot.AttemptCounts, 1)
}

func TestAggregateWeakestTopic(t *testing.T) {
	aggregator := NewPerformanceAggregator(PerformanceAggregatorConfig{})
	subs := []models.Submission{
		submission("s1", "e1", "Arrays", 2, 5, 0),
		submission("s1", "e2", "Graphs", 4, 5, time.Hour),
	}

	snapshot := aggregator.Aggregate(cohortOf("s1"), subs)

	assert.Equal(t, "Arrays", snapshot.WeakestTopic)
	assert.Equal(t, 60.0, snapshot.AverageScore)
}

func TestAggregateWeakestTopicTieKeepsFirstSeen(t *testing.T) {
	aggregator := NewPerformanceAggregator(PerformanceAggregatorConfig{})
	subs := []models.Submission{
		submission("s1", "e2", "Graphs", 3, 5, 0),
		submission("s1", "e1", "Arrays", 3, 5, time.Hour),
	}

	snapshot := aggregator.Aggregate(cohortOf("s1"), subs)

	assert.Equal(t, "Graphs", snapshot.WeakestTopic)
}

func TestNormalizeFallbackTotal(t *testing.T) {
	defaults := NewPerformanceAggregator(PerformanceAggregatorConfig{})
	assert.Equal(t, 80.0, defaults.Normalize(4, 0))
	assert.Equal(t, 80.0, defaults.Normalize(4, -1))
	assert.Equal(t, 40.0, defaults.Normalize(4, 10))

	custom := NewPerformanceAggregator(PerformanceAggregatorConfig{FallbackTotal: 10})
	assert.Equal(t, 40.0, custom.Normalize(4, 0))
}

func TestAggregateUntitledExamFallsBackToExamID(t *testing.T) {
	aggregator := NewPerformanceAggregator(PerformanceAggregatorConfig{})

	snapshot := aggregator.Aggregate(cohortOf("s1"), []models.Submission{submission("s1", "exam-7", "  ", 1, 5, 0)})

	assert.Equal(t, "exam-7", snapshot.WeakestTopic)
}

func TestWeakTopicsSortedBelowThreshold(t *testing.T) {
	aggregator := NewPerformanceAggregator(PerformanceAggregatorConfig{})
	subs := []models.Submission{
		submission("s1", "e1", "Trees", 2.5, 5, 0),
		submission("s1", "e2", "Graphs", 4, 5, 0),
		submission("s1", "e3", "Arrays", 2, 5, 0),
		submission("s2", "e3", "Arrays", 1, 3, 0),
	}

	weak := aggregator.WeakTopics(cohortOf("s1", "s2"), subs)

	require.Len(t, weak, 2)
	assert.Equal(t, "Arrays", weak[0].Topic)
	assert.Equal(t, 36.7, weak[0].MeanScore)
	assert.Equal(t, 2, weak[0].Submissions)
	assert.Equal(t, "Trees", weak[1].Topic)
	assert.Equal(t, 50.0, weak[1].MeanScore)
}

func TestWeakTopicsCustomThreshold(t *testing.T) {
	aggregator := NewPerformanceAggregator(PerformanceAggregatorConfig{WeakTopicThreshold: 90})
	subs := []models.Submission{submission("s1", "e2", "Graphs", 4, 5, 0)}

	weak := aggregator.WeakTopics(cohortOf("s1"), subs)

	require.Len(t, weak, 1)
	assert.Equal(t, "Graphs", weak[0].Topic)
}

func TestWeakTopicsEmpty(t *testing.T) {
	aggregator := NewPerformanceAggregator(PerformanceAggregatorConfig{})

	weak := aggregator.WeakTopics(cohortOf("s1"), nil)

	assert.NotNil(t, weak)
	assert.Empty(t, weak)
}

func TestStudentBreakdown(t *testing.T) {
	aggregator := NewPerformanceAggregator(PerformanceAggregatorConfig{})
	subs := []models.Submission{
		submission("s1", "e1", "Arrays", 3, 5, 0),
		submission("s1", "e1", "Arrays", 4, 5, time.Hour),
		submission("s1", "e2", "Graphs", 9, 10, 2*time.Hour),
		submission("s2", "e1", "Arrays", 1, 5, 0),
	}

	rows := aggregator.StudentBreakdown(cohortOf("s1", "s2", "s3"), subs, 4)

	require.Len(t, rows, 3)

	assert.Equal(t, "s1", rows[0].ID)
	assert.Equal(t, 85.0, rows[0].AverageScore)
	assert.Equal(t, 50.0, rows[0].Participation)
	assert.Equal(t, "Graphs", rows[0].LastAssessment)
	assert.Equal(t, 3, rows[0].SubmissionCount)
	assert.Equal(t, models.StudentStatusGood, rows[0].Status)

	assert.Equal(t, 20.0, rows[1].AverageScore)
	assert.Equal(t, 25.0, rows[1].Participation)
	assert.Equal(t, models.StudentStatusNeedsFocus, rows[1].Status)

	assert.Equal(t, "None", rows[2].LastAssessment)
	assert.Equal(t, 0.0, rows[2].Participation)
	assert.Equal(t, 0, rows[2].SubmissionCount)
	assert.Equal(t, models.StudentStatusNeedsFocus, rows[2].Status)
}

func TestStudentBreakdownCapsParticipation(t *testing.T) {
	aggregator := NewPerformanceAggregator(PerformanceAggregatorConfig{})
	subs := []models.Submission{
		submission("s1", "e1", "Arrays", 5, 5, 0),
		submission("s1", "e2", "Graphs", 5, 5, 0),
	}

	rows := aggregator.StudentBreakdown(cohortOf("s1"), subs, 1)

	require.Len(t, rows, 1)
	assert.Equal(t, 100.0, rows[0].Participation)
}
