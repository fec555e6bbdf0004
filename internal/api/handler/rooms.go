package handler

import (
	"net/http"

	"roomchat/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// ListRooms returns every room with its message and member counts.
func (h *Handler) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.Hub.ListRooms())
}

func (h *Handler) CreateRoom(c *gin.Context) {
	var req models.CreateRoom
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	room, err := h.Hub.CreateRoom(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "room": room})
}

// RoomMessages returns one page of a room. limit and offset count from the
// newest message; the page itself is oldest first.
func (h *Handler) RoomMessages(c *gin.Context) {
	var q models.QueryMessages
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, err)
		return
	}
	q.RoomID = c.Param("roomId")

	page, err := h.Hub.QueryMessages(q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// RoomUsers lists members seen in the last few minutes.
func (h *Handler) RoomUsers(c *gin.Context) {
	users, err := h.Hub.ListOnline(models.QueryUsers{RoomID: c.Param("roomId")})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(users), "users": users})
}
