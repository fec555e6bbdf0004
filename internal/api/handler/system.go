package handler

import (
	"net/http"
	"time"

	"roomchat/backend/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "online",
		"timestamp":  time.Now().UTC(),
		"uptime":     h.uptime(),
		"statistics": h.Hub.Counters(),
	})
}

func (h *Handler) UserProfile(c *gin.Context) {
	profile, err := h.Hub.UserProfile(c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

type statisticsResponse struct {
	models.StatisticsReport
	ServerUptime float64 `json:"serverUptime"`
}

func (h *Handler) Statistics(c *gin.Context) {
	c.JSON(http.StatusOK, statisticsResponse{
		StatisticsReport: h.Hub.Statistics(),
		ServerUptime:     h.uptime(),
	})
}

// Cleanup runs the retention sweep on demand.
func (h *Handler) Cleanup(c *gin.Context) {
	res, err := h.Hub.Cleanup(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"removedCount":   res.RemovedCount,
		"remainingCount": res.RemainingCount,
		"cutoffDate":     res.CutoffDate,
	})
}
