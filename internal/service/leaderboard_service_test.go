package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-portal-api/internal/models"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
)

type stubCacheRepo struct {
	store map[string][]byte
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	delete(s.store, pattern)
	return nil
}

type fakeLeaderboardSource struct {
	students []models.Student
	subs     []models.Submission
	calls    int
	err      error
}

func (f *fakeLeaderboardSource) ListStudents(context.Context, string) ([]models.Student, error) {
	return f.students, nil
}

func (f *fakeLeaderboardSource) ListAll(context.Context) ([]models.Submission, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.subs, nil
}

func intPtr(v int) *int { return &v }

func leaderboardFixture() *fakeLeaderboardSource {
	day := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	return &fakeLeaderboardSource{
		students: []models.Student{
			{ID: "s1", Name: "asha rao kumar", Batch: "2021"},
			{ID: "s2", Name: "Bala", Batch: ""},
			{ID: "s3", Name: "  "},
		},
		subs: []models.Submission{
			// 10*0.7 + 100*0.3 = 37
			{StudentID: "s1", ExamID: "e1", Score: 10, Total: 10, SubmittedAt: day},
			// a weaker retake is ignored
			{StudentID: "s1", ExamID: "e1", Score: 5, Total: 10, SubmittedAt: day.Add(72 * time.Hour)},
			// 8*0.7 + 80*0.3 = 29.6
			{StudentID: "s1", ExamID: "e2", Score: 8, Total: 10, SubmittedAt: day.Add(24 * time.Hour)},
			// 4*0.7 + 80*0.3 = 26.8 using the fallback total
			{StudentID: "s2", ExamID: "e1", Score: 4, Total: 0, SubmittedAt: day},
			// one violation: accuracy 98, 10*0.7 + 98*0.3 - 5 = 31.4
			{StudentID: "s2", ExamID: "e2", Score: 10, Total: 10, SubmittedAt: day.Add(48 * time.Hour), Violations: intPtr(1)},
			// heavy violations clamp at zero
			{StudentID: "s3", ExamID: "e1", Score: 1, Total: 10, SubmittedAt: day, Violations: intPtr(20)},
		},
	}
}

func TestLeaderboardRanking(t *testing.T) {
	source := leaderboardFixture()
	svc := NewLeaderboardService(source, source, nil, nil, time.Minute, zap.NewNop())

	entries, cacheHit, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.False(t, cacheHit)
	require.Len(t, entries, 3)

	assert.Equal(t, models.LeaderboardEntry{Rank: 1, ID: "s1", Name: "asha rao kumar", Batch: "2021", Score: 67, Tests: 2, Streak: 2, Trend: "same", Avatar: "AR"}, entries[0])
	assert.Equal(t, models.LeaderboardEntry{Rank: 2, ID: "s2", Name: "Bala", Batch: "N/A", Score: 58, Tests: 2, Streak: 1, Trend: "same", Avatar: "B"}, entries[1])
	assert.Equal(t, models.LeaderboardEntry{Rank: 3, ID: "s3", Name: "Student", Batch: "N/A", Score: 0, Tests: 1, Streak: 1, Trend: "same", Avatar: "??"}, entries[2])
}

func TestLeaderboardUsesCache(t *testing.T) {
	source := leaderboardFixture()
	cache := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewLeaderboardService(source, source, nil, cache, time.Minute, zap.NewNop())

	first, hit, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, source.calls)

	svc.Invalidate(context.Background())
	_, hit, err = svc.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, source.calls)
}

func TestLeaderboardError(t *testing.T) {
	source := leaderboardFixture()
	source.err = assert.AnError
	svc := NewLeaderboardService(source, source, nil, nil, 0, zap.NewNop())

	_, _, err := svc.Leaderboard(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestLongestDailyStreak(t *testing.T) {
	day := time.Date(2024, 1, 30, 23, 0, 0, 0, time.UTC)
	times := []time.Time{
		day,
		day.Add(2 * time.Hour),
		day.Add(26 * time.Hour),
		day.Add(5 * time.Hour),
		day.Add(7 * 24 * time.Hour),
	}

	assert.Equal(t, 3, longestDailyStreak(times))
	assert.Equal(t, 0, longestDailyStreak(nil))
}
