package chathub

import (
	"maps"
	"slices"
	"time"

	"roomchat/backend/internal/models"
)

// state is the whole in-memory store: message log, room map, user map and
// counters. A state reachable from the Coordinator is never modified; writers
// mutate a clone and swap it in after it has been persisted.
type state struct {
	messages []models.Message
	rooms    map[string]models.Room
	users    map[string]models.User
	counters models.Counters
}

func newState() *state {
	return &state{
		rooms: make(map[string]models.Room),
		users: make(map[string]models.User),
	}
}

func stateFromSnapshot(snap *models.Snapshot) *state {
	st := &state{
		messages: slices.Clone(snap.Messages),
		rooms:    maps.Clone(snap.Rooms),
		users:    maps.Clone(snap.Users),
		counters: snap.Statistics,
	}
	if st.rooms == nil {
		st.rooms = make(map[string]models.Room)
	}
	if st.users == nil {
		st.users = make(map[string]models.User)
	}
	return st
}

// clone copies the containers. Elements are values whose inner maps and
// slices are replaced, never written through, so sharing them is safe.
func (s *state) clone() *state {
	return &state{
		messages: slices.Clone(s.messages),
		rooms:    maps.Clone(s.rooms),
		users:    maps.Clone(s.users),
		counters: s.counters,
	}
}

func (s *state) snapshot(settings models.Settings, savedAt time.Time) *models.Snapshot {
	messages := s.messages
	if messages == nil {
		messages = []models.Message{}
	}
	return &models.Snapshot{
		Messages:   messages,
		Rooms:      s.rooms,
		Users:      s.users,
		Settings:   settings,
		Statistics: s.counters,
		SavedAt:    savedAt,
	}
}
