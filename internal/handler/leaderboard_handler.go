package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-portal-api/internal/middleware"
	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/pkg/response"
)

type leaderboardService interface {
	Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, bool, error)
	Invalidate(ctx context.Context)
}

// LeaderboardHandler serves the student leaderboard.
type LeaderboardHandler struct {
	leaderboard leaderboardService
}

// NewLeaderboardHandler constructs the leaderboard handler.
func NewLeaderboardHandler(leaderboard leaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// Get godoc
// @Summary Ranked student leaderboard
// @Tags Leaderboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /leaderboard [get]
func (h *LeaderboardHandler) Get(c *gin.Context) {
	entries, cacheHit, err := h.leaderboard.Leaderboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	ok(c, http.StatusOK, entries)
}

// Invalidate godoc
// @Summary Drop the cached leaderboard so the next read recomputes it
// @Tags Admin
// @Success 204
// @Router /admin/leaderboard/cache [delete]
func (h *LeaderboardHandler) Invalidate(c *gin.Context) {
	h.leaderboard.Invalidate(c.Request.Context())
	c.Status(http.StatusNoContent)
}
