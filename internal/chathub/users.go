package chathub

import (
	"slices"
	"time"

	"roomchat/backend/internal/apperr"
	"roomchat/backend/internal/config"
	"roomchat/backend/internal/models"
)

// User Directory operations.

// touch records activity by userID in roomID, creating the user on first
// sight. countMessage is set when the activity is a stored message. The
// username on record is last write wins; an empty username keeps the one on
// record, or the default name for a new user.
func (s *state) touch(userID, username, roomID string, now time.Time, countMessage bool) models.User {
	u, ok := s.users[userID]
	if !ok {
		name := username
		if name == "" {
			name = config.DefaultUsername
		}
		u = models.NewUser(userID, name, now)
		s.counters.TotalUsers++
	} else {
		u = u.Clone()
	}
	if username != "" {
		u.Username = username
	}
	u.Seen(now)
	if countMessage {
		u.MessageCount++
	}
	if roomID != "" {
		u.JoinRoom(roomID)
	}
	s.users[userID] = u
	return u
}

func (s *state) getUser(id string) (models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return models.User{}, apperr.NotFound("user %q not found", id)
	}
	return u.Clone(), nil
}

// listOnline returns members of roomID seen within onlineWindow of now,
// flagged online when seen within activeWindow, most recent first.
func (s *state) listOnline(roomID string, now time.Time, onlineWindow, activeWindow time.Duration) ([]models.OnlineUser, error) {
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, apperr.NotFound("room %q not found", roomID)
	}
	out := []models.OnlineUser{}
	for _, id := range room.Members {
		u, ok := s.users[id]
		if !ok || !u.IsOnline(now, onlineWindow) {
			continue
		}
		out = append(out, models.OnlineUser{
			ID:           u.ID,
			Username:     u.Username,
			LastSeenAt:   u.LastSeenAt,
			MessageCount: u.MessageCount,
			IsOnline:     u.IsOnline(now, activeWindow),
		})
	}
	slices.SortStableFunc(out, func(a, b models.OnlineUser) int {
		return b.LastSeenAt.Compare(a.LastSeenAt)
	})
	return out, nil
}
