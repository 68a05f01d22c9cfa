package service

import (
	"math"
	"sort"
	"strings"

	"github.com/noah-isme/placement-portal-api/internal/models"
)

// Defaults for PerformanceAggregatorConfig.
const (
	DefaultFallbackTotal      = 5.0
	DefaultWeakTopicThreshold = 60.0
	DefaultPassingScore       = 70.0
)

// PerformanceAggregatorConfig tunes metric computation.
type PerformanceAggregatorConfig struct {
	// FallbackTotal replaces a missing or zero submission total.
	FallbackTotal float64
	// WeakTopicThreshold is the mean normalized score below which a topic is underperforming.
	WeakTopicThreshold float64
	// PassingScore separates "Good" from "Needs Focus" students in class analysis.
	PassingScore float64
}

// PerformanceAggregator computes MetricSnapshots. It holds no mutable state.
type PerformanceAggregator struct {
	cfg PerformanceAggregatorConfig
}

// NewPerformanceAggregator constructs an aggregator with defaults filled in.
func NewPerformanceAggregator(cfg PerformanceAggregatorConfig) *PerformanceAggregator {
	if cfg.FallbackTotal <= 0 {
		cfg.FallbackTotal = DefaultFallbackTotal
	}
	if cfg.WeakTopicThreshold <= 0 {
		cfg.WeakTopicThreshold = DefaultWeakTopicThreshold
	}
	if cfg.PassingScore <= 0 {
		cfg.PassingScore = DefaultPassingScore
	}
	return &PerformanceAggregator{cfg: cfg}
}

// Normalize expresses a score as a percentage of its own total, or of the fallback total.
func (a *PerformanceAggregator) Normalize(score, total float64) float64 {
	if total <= 0 {
		total = a.cfg.FallbackTotal
	}
	return score / total * 100
}

// DeduplicateByLatest keeps the most recent submission of every (student, exam) pair.
// Ties keep the earliest record in input order. Groups are returned in first-seen order.
func DeduplicateByLatest(submissions []models.Submission) ([]models.Submission, []models.AttemptCount) {
	index := make(map[models.AttemptKey]int, len(submissions))
	latest := make([]models.Submission, 0, len(submissions))
	counts := make([]models.AttemptCount, 0, len(submissions))
	for _, sub := range submissions {
		key := models.AttemptKey{StudentID: sub.StudentID, ExamID: sub.ExamID}
		pos, seen := index[key]
		if !seen {
			index[key] = len(latest)
			latest = append(latest, sub)
			counts = append(counts, models.AttemptCount{StudentID: sub.StudentID, ExamID: sub.ExamID, Attempts: 1})
			continue
		}
		counts[pos].Attempts++
		if sub.SubmittedAt.After(latest[pos].SubmittedAt) {
			latest[pos] = sub
		}
	}
	return latest, counts
}

// Aggregate computes the snapshot of a cohort. Empty cohorts and cohorts without submissions yield
// zeroed fields and the "N/A" weakest topic.
func (a *PerformanceAggregator) Aggregate(cohort []models.Student, submissions []models.Submission) models.MetricSnapshot {
	members := memberSet(cohort)
	latest, counts := DeduplicateByLatest(restrictToMembers(submissions, members))

	snapshot := models.MetricSnapshot{
		CohortSize:      len(members),
		AssessmentCount: len(latest),
		WeakestTopic:    models.WeakestTopicNone,
		AttemptCounts:   counts,
	}
	if len(latest) == 0 {
		return snapshot
	}

	var sum float64
	submitters := make(map[string]struct{}, len(members))
	for _, sub := range latest {
		sum += a.Normalize(sub.Score, sub.Total)
		submitters[sub.StudentID] = struct{}{}
	}
	snapshot.AverageScore = roundTo(sum/float64(len(latest)), 1)
	snapshot.Participation = int(math.Round(float64(len(submitters)) / float64(max(len(members), 1)) * 100))

	topics := a.topicScores(latest)
	weakest := topics[0]
	for _, topic := range topics[1:] {
		if topic.MeanScore < weakest.MeanScore {
			weakest = topic
		}
	}
	snapshot.WeakestTopic = weakest.Topic
	return snapshot
}

// WeakTopics lists every topic of the cohort whose mean normalized score falls below the threshold,
// weakest first.
func (a *PerformanceAggregator) WeakTopics(cohort []models.Student, submissions []models.Submission) []models.TopicScore {
	latest, _ := DeduplicateByLatest(restrictToMembers(submissions, memberSet(cohort)))
	weak := make([]models.TopicScore, 0)
	for _, topic := range a.topicScores(latest) {
		if topic.MeanScore < a.cfg.WeakTopicThreshold {
			weak = append(weak, topic)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].MeanScore < weak[j].MeanScore })
	for i := range weak {
		weak[i].MeanScore = roundTo(weak[i].MeanScore, 1)
	}
	return weak
}

// CohortMetrics bundles Aggregate and WeakTopics.
func (a *PerformanceAggregator) CohortMetrics(cohort []models.Student, submissions []models.Submission) models.CohortMetrics {
	return models.CohortMetrics{
		MetricSnapshot: a.Aggregate(cohort, submissions),
		WeakTopics:     a.WeakTopics(cohort, submissions),
	}
}

// StudentBreakdown builds one row per cohort member. Participation is measured against examCount and
// capped at 100.
func (a *PerformanceAggregator) StudentBreakdown(cohort []models.Student, submissions []models.Submission, examCount int) []models.StudentPerformance {
	byStudent := make(map[string][]models.Submission, len(cohort))
	for _, sub := range submissions {
		byStudent[sub.StudentID] = append(byStudent[sub.StudentID], sub)
	}

	rows := make([]models.StudentPerformance, 0, len(cohort))
	for _, student := range cohort {
		raw := byStudent[student.ID]
		latest, _ := DeduplicateByLatest(raw)
		row := models.StudentPerformance{
			ID:                 student.ID,
			Name:               student.Name,
			RegistrationNumber: student.RegistrationNumber,
			SubmissionCount:    len(raw),
			LastAssessment:     "None",
			Status:             models.StudentStatusNeedsFocus,
		}
		if len(latest) > 0 {
			var sum float64
			last := latest[0]
			for _, sub := range latest {
				sum += a.Normalize(sub.Score, sub.Total)
				if sub.SubmittedAt.After(last.SubmittedAt) {
					last = sub
				}
			}
			row.AverageScore = roundTo(sum/float64(len(latest)), 1)
			row.LastAssessment = topicLabel(last)
		}
		if examCount > 0 {
			row.Participation = roundTo(math.Min(float64(len(latest))/float64(examCount)*100, 100), 1)
		}
		if row.AverageScore > a.cfg.PassingScore {
			row.Status = models.StudentStatusGood
		}
		rows = append(rows, row)
	}
	return rows
}

// topicScores groups submissions by title and returns unrounded means in first-seen order.
func (a *PerformanceAggregator) topicScores(submissions []models.Submission) []models.TopicScore {
	index := make(map[string]int)
	sums := make([]float64, 0)
	topics := make([]models.TopicScore, 0)
	for _, sub := range submissions {
		label := topicLabel(sub)
		pos, seen := index[label]
		if !seen {
			pos = len(topics)
			index[label] = pos
			topics = append(topics, models.TopicScore{Topic: label})
			sums = append(sums, 0)
		}
		sums[pos] += a.Normalize(sub.Score, sub.Total)
		topics[pos].Submissions++
	}
	for i := range topics {
		topics[i].MeanScore = sums[i] / float64(topics[i].Submissions)
	}
	return topics
}

func topicLabel(sub models.Submission) string {
	if title := strings.TrimSpace(sub.ExamTitle); title != "" {
		return title
	}
	return sub.ExamID
}

func memberSet(cohort []models.Student) map[string]struct{} {
	members := make(map[string]struct{}, len(cohort))
	for _, student := range cohort {
		members[student.ID] = struct{}{}
	}
	return members
}

func restrictToMembers(submissions []models.Submission, members map[string]struct{}) []models.Submission {
	filtered := make([]models.Submission, 0, len(submissions))
	for _, sub := range submissions {
		if _, ok := members[sub.StudentID]; ok {
			filtered = append(filtered, sub)
		}
	}
	return filtered
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
