// Package handler exposes the chat coordinator over HTTP with gin.
package handler

import (
	"time"

	"roomchat/backend/internal/chathub"
	"roomchat/backend/internal/config"
	"roomchat/backend/internal/localization"
	"roomchat/backend/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Handler holds the dependencies of the HTTP routes.
type Handler struct {
	Hub       *chathub.ManagerService
	Localizer *localization.Localizer
	Metrics   *metrics.Metrics
	limiter   *limiterPool
	startedAt time.Time
}

func NewHandler(hub *chathub.ManagerService, loc *localization.Localizer, m *metrics.Metrics, rl config.RateLimitConfig) *Handler {
	return &Handler{
		Hub:       hub,
		Localizer: loc,
		Metrics:   m,
		limiter:   newLimiterPool(rl.RPS, rl.Burst),
		startedAt: time.Now(),
	}
}

// RegisterRoutes mounts every endpoint on r under /api, plus /metrics.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")

	api.GET("/health", h.Health)
	api.GET("/rooms", h.ListRooms)
	api.POST("/rooms", h.CreateRoom)
	api.GET("/rooms/:roomId/messages", h.RoomMessages)
	api.GET("/rooms/:roomId/users", h.RoomUsers)

	api.POST("/messages", h.PostMessage)
	api.POST("/messages/:messageId/react", h.React)
	api.DELETE("/messages/:messageId", h.DeleteMessage)
	api.POST("/upload", h.Upload)

	api.GET("/search", h.Search)
	api.GET("/users/:userId", h.UserProfile)
	api.GET("/statistics", h.Statistics)
	api.POST("/cleanup", h.Cleanup)

	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}
}

func (h *Handler) uptime() float64 {
	return time.Since(h.startedAt).Seconds()
}
