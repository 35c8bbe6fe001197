package handlers

import (
	"net/http"

	"github.com/RaysoLee/mindreshape/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StatsHandler struct {
	log *zap.Logger
}

func NewStatsHandler(log *zap.Logger) *StatsHandler {
	return &StatsHandler{log: log}
}

// Get returns the user's counters plus their latest assessment
// results, the dashboard payload.
func (h *StatsHandler) Get(c *gin.Context) {
	user := CurrentUser(c)

	stats, err := repository.GetUserStats(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("Failed to load user stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	recent, err := repository.GetRecentResults(c.Request.Context(), user.ID, 5)
	if err != nil {
		h.log.Error("Failed to load recent results", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats, "recent_results": recent})
}
