package handler

import (
	"net/http"

	"roomchat/backend/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) PostMessage(c *gin.Context) {
	var req models.PostMessage
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if !h.allow(c, req.UserID) {
		return
	}

	msg, err := h.Hub.PostMessage(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    msg,
		"statistics": h.Hub.Counters(),
	})
}

func (h *Handler) React(c *gin.Context) {
	var req models.ReactToMessage
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	req.MessageID = c.Param("messageId")

	reactions, err := h.Hub.React(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reactions": reactions})
}

func (h *Handler) DeleteMessage(c *gin.Context) {
	var req models.DeleteMessage
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	req.MessageID = c.Param("messageId")

	if err := h.Hub.DeleteMessage(c.Request.Context(), req); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "message deleted"})
}

// Upload accepts a base64 file and posts it to the room as a media message.
func (h *Handler) Upload(c *gin.Context) {
	var req models.Upload
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if !h.allow(c, req.UserID) {
		return
	}

	msg, err := h.Hub.Upload(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": msg})
}

func (h *Handler) Search(c *gin.Context) {
	var q models.Search
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, err)
		return
	}
	results, err := h.Hub.Search(q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": q.Term, "results": results, "total": len(results)})
}
