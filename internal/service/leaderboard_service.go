package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-portal-api/internal/models"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
)

const (
	leaderboardCacheKey = "leaderboard:v1"
	leaderboardTrend    = "same"

	scoreWeight       = 0.7
	accuracyWeight    = 0.3
	accuracyPenalty   = 2.0
	violationPenalty  = 5.0
	unnamedStudent    = "Student"
	unknownBatch      = "N/A"
	unknownInitials   = "??"
	maxAvatarInitials = 2
)

type studentLister interface {
	ListStudents(ctx context.Context, department string) ([]models.Student, error)
}

type submissionLister interface {
	ListAll(ctx context.Context) ([]models.Submission, error)
}

// LeaderboardService ranks every student by their best attempt per assessment.
type LeaderboardService struct {
	students    studentLister
	submissions submissionLister
	aggregator  *PerformanceAggregator
	cache       *CacheService
	ttl         time.Duration
	logger      *zap.Logger
}

// NewLeaderboardService constructs a LeaderboardService. cache may be nil.
func NewLeaderboardService(students studentLister, submissions submissionLister, aggregator *PerformanceAggregator, cache *CacheService, ttl time.Duration, logger *zap.Logger) *LeaderboardService {
	if aggregator == nil {
		aggregator = NewPerformanceAggregator(PerformanceAggregatorConfig{})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaderboardService{students: students, submissions: submissions, aggregator: aggregator, cache: cache, ttl: ttl, logger: logger}
}

// Leaderboard returns the ranked entries. The boolean reports whether they came from cache.
func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, bool, error) {
	var cached []models.LeaderboardEntry
	if s.cache.Get(ctx, leaderboardCacheKey, &cached) {
		return cached, true, nil
	}

	students, err := s.students.ListStudents(ctx, "")
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	subs, err := s.submissions.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}

	entries := s.rank(students, subs)
	s.cache.Set(ctx, leaderboardCacheKey, entries, s.ttl)
	s.logger.Debug("leaderboard computed", zap.Int("students", len(students)), zap.Int("submissions", len(subs)))
	return entries, false, nil
}

// Invalidate drops the cached leaderboard.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, leaderboardCacheKey)
}

type bestAttempt struct {
	score       float64
	submittedAt time.Time
}

func (s *LeaderboardService) rank(students []models.Student, subs []models.Submission) []models.LeaderboardEntry {
	best := make(map[string]map[string]bestAttempt, len(students))
	for _, sub := range subs {
		score := s.attemptScore(sub)
		exams, ok := best[sub.StudentID]
		if !ok {
			exams = make(map[string]bestAttempt)
			best[sub.StudentID] = exams
		}
		if current, seen := exams[sub.ExamID]; !seen || current.score < score {
			exams[sub.ExamID] = bestAttempt{score: score, submittedAt: sub.SubmittedAt}
		}
	}

	entries := make([]models.LeaderboardEntry, 0, len(students))
	for _, student := range students {
		exams := best[student.ID]
		var total float64
		days := make([]time.Time, 0, len(exams))
		for _, attempt := range exams {
			total += attempt.score
			days = append(days, attempt.submittedAt)
		}
		name := strings.TrimSpace(student.Name)
		if name == "" {
			name = unnamedStudent
		}
		batch := student.Batch
		if batch == "" {
			batch = unknownBatch
		}
		entries = append(entries, models.LeaderboardEntry{
			ID:     student.ID,
			Name:   name,
			Batch:  batch,
			Score:  int(math.Round(total)),
			Tests:  len(exams),
			Streak: longestDailyStreak(days),
			Trend:  leaderboardTrend,
			Avatar: initials(student.Name),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// attemptScore weighs the raw score against accuracy, with violations penalising both.
func (s *LeaderboardService) attemptScore(sub models.Submission) float64 {
	var violations float64
	if sub.Violations != nil {
		violations = float64(*sub.Violations)
	}
	accuracy := math.Max(s.aggregator.Normalize(sub.Score, sub.Total)-violations*accuracyPenalty, 0)
	return math.Max(sub.Score*scoreWeight+accuracy*accuracyWeight-violations*violationPenalty, 0)
}

// longestDailyStreak counts the longest run of consecutive UTC calendar days.
func longestDailyStreak(times []time.Time) int {
	if len(times) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(times))
	days := make([]time.Time, 0, len(times))
	for _, t := range times {
		day := t.UTC().Truncate(24 * time.Hour)
		key := day.Format(time.DateOnly)
		if _, dup := unique[key]; dup {
			continue
		}
		unique[key] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, current := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

func initials(name string) string {
	var letters []rune
	for _, word := range strings.Fields(name) {
		first := []rune(word)[0]
		letters = append(letters, unicode.ToUpper(first))
		if len(letters) == maxAvatarInitials {
			break
		}
	}
	if len(letters) == 0 {
		return unknownInitials
	}
	return string(letters)
}
