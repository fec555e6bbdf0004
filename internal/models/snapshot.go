package models

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Settings are process-wide limits, read-only while serving requests.
type Settings struct {
	MaxMessageLength    int   `json:"maxMessageLength"`
	MaxMessagesPerRoom  int   `json:"maxMessagesPerRoom"`
	MessageLifetimeDays int   `json:"messageLifetimeDays"`
	AllowMedia          bool  `json:"allowMedia"`
	MaxFileSize         int64 `json:"maxFileSize"`
}

// MessageLifetime returns the retention window as a duration.
func (s Settings) MessageLifetime() time.Duration {
	return time.Duration(s.MessageLifetimeDays) * 24 * time.Hour
}

// Counters are the running totals persisted with the document.
type Counters struct {
	TotalMessages int64 `json:"totalMessages"`
	TotalUsers    int64 `json:"totalUsers"`
	RoomsCount    int64 `json:"roomsCount"`
}

// Snapshot is the persisted document. It is always written and read as one
// unit.
type Snapshot struct {
	Messages   []Message       `json:"messages"`
	Rooms      map[string]Room `json:"rooms"`
	Users      map[string]User `json:"users"`
	Settings   Settings        `json:"settings"`
	Statistics Counters        `json:"statistics"`
	SavedAt    time.Time       `json:"savedAt"`
}

// Validate checks the structural invariants a loaded document must satisfy.
// A document failing these checks is corrupt.
func (s *Snapshot) Validate() error {
	if s.Rooms == nil {
		return fmt.Errorf("document has no rooms mapping")
	}
	for id, room := range s.Rooms {
		if room.ID != id {
			return fmt.Errorf("room key %q holds room %q", id, room.ID)
		}
		if hasDuplicates(room.Members) {
			return fmt.Errorf("room %q has duplicate members", id)
		}
	}
	for id, user := range s.Users {
		if user.ID != id {
			return fmt.Errorf("user key %q holds user %q", id, user.ID)
		}
		if user.MessageCount < 0 {
			return fmt.Errorf("user %q has negative message count", id)
		}
	}

	seen := make(map[string]struct{}, len(s.Messages))
	for i, m := range s.Messages {
		if m.ID == "" {
			return fmt.Errorf("message at %d has no id", i)
		}
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("duplicate message id %q", m.ID)
		}
		seen[m.ID] = struct{}{}
		if _, ok := s.Rooms[m.RoomID]; !ok {
			return fmt.Errorf("message %q references unknown room %q", m.ID, m.RoomID)
		}
		for emoji, users := range m.Reactions {
			if len(users) == 0 {
				return fmt.Errorf("message %q has empty reaction set %q", m.ID, emoji)
			}
		}
		if !m.Deleted && m.DeletedAt != nil {
			return fmt.Errorf("message %q has deletedAt but is not deleted", m.ID)
		}
	}
	return nil
}

// RoomIDs returns the sorted ids of all rooms in the document.
func (s *Snapshot) RoomIDs() []string {
	return slices.Sorted(maps.Keys(s.Rooms))
}
