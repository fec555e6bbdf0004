package chathub

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"roomchat/backend/internal/apperr"
	"roomchat/backend/internal/models"
)

// Room Directory operations.

func (s *state) createRoom(c models.CreateRoom, now time.Time) (models.Room, error) {
	name := strings.TrimSpace(c.Name)
	id := models.RoomIDFromName(name)
	if id == "" {
		return models.Room{}, apperr.InvalidInput("room name %q has no letters or digits", c.Name)
	}
	if _, exists := s.rooms[id]; exists {
		return models.Room{}, apperr.Conflict("room %q already exists", id)
	}

	desc := strings.TrimSpace(c.Description)
	if desc == "" {
		desc = name + " room"
	}
	room := models.Room{
		ID:          id,
		Name:        name,
		Description: desc,
		CreatedAt:   now,
		CreatedBy:   c.UserID,
		Members:     []string{},
	}
	if c.UserID != "" {
		room.AddMember(c.UserID)
		// The creator is recorded as a user so both membership sides agree.
		s.touch(c.UserID, "", id, now, false)
	}
	s.rooms[id] = room
	s.counters.RoomsCount++
	return room, nil
}

func (s *state) getRoom(id string) (models.Room, error) {
	room, ok := s.rooms[id]
	if !ok {
		return models.Room{}, apperr.NotFound("room %q not found", id)
	}
	return room.Clone(), nil
}

// listRooms returns every room with its live counts, oldest room first.
func (s *state) listRooms() []models.RoomSummary {
	counts := make(map[string]int, len(s.rooms))
	for _, m := range s.messages {
		if !m.Deleted {
			counts[m.RoomID]++
		}
	}
	out := make([]models.RoomSummary, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, models.RoomSummary{
			Room:         room.Clone(),
			MessageCount: counts[room.ID],
			MemberCount:  len(room.Members),
		})
	}
	slices.SortFunc(out, func(a, b models.RoomSummary) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// addMember is idempotent. The room value is cloned before it changes.
func (s *state) addMember(roomID, userID string) error {
	room, ok := s.rooms[roomID]
	if !ok {
		return apperr.NotFound("room %q not found", roomID)
	}
	if room.IsMember(userID) {
		return nil
	}
	room = room.Clone()
	room.AddMember(userID)
	s.rooms[roomID] = room
	return nil
}
