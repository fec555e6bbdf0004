package models

import (
	"maps"
	"slices"
	"time"
)

// MessageKind is the kind of content a message carries.
type MessageKind string

const (
	KindText   MessageKind = "text"
	KindImage  MessageKind = "image"
	KindFile   MessageKind = "file"
	KindSystem MessageKind = "system"
)

// Valid reports whether k is one of the known kinds.
func (k MessageKind) Valid() bool {
	switch k {
	case KindText, KindImage, KindFile, KindSystem:
		return true
	}
	return false
}

// Message is one entry of the message log.
//
// Reactions maps an emoji key to the set of user ids that reacted with it.
// A key is present only while its set is non-empty. Once Deleted is set it
// is never cleared.
//
// Messages held by the store are treated as values: Metadata and Reactions
// are never mutated in place, a changed message gets fresh maps.
type Message struct {
	ID        string              `json:"id"`
	RoomID    string              `json:"roomId"`
	UserID    string              `json:"userId"`
	Username  string              `json:"username"`
	Body      string              `json:"body"`
	Kind      MessageKind         `json:"kind"`
	CreatedAt time.Time           `json:"createdAt"`
	Metadata  map[string]any      `json:"metadata"`
	Reactions map[string][]string `json:"reactions"`
	Deleted   bool                `json:"deleted"`
	DeletedAt *time.Time          `json:"deletedAt,omitempty"`
	DeletedBy string              `json:"deletedBy,omitempty"`
}

// HasReaction reports whether userID reacted to m with emoji.
func (m *Message) HasReaction(emoji, userID string) bool {
	return slices.Contains(m.Reactions[emoji], userID)
}

// ToggleReaction adds userID to the emoji set, or removes it when already
// present. The reaction map is replaced rather than modified. It returns true
// when the reaction was added.
func (m *Message) ToggleReaction(emoji, userID string) bool {
	next := make(map[string][]string, len(m.Reactions)+1)
	for k, v := range m.Reactions {
		next[k] = v
	}

	set, removed := removeFromSet(next[emoji], userID)
	if removed {
		if len(set) == 0 {
			delete(next, emoji)
		} else {
			next[emoji] = set
		}
		m.Reactions = next
		return false
	}

	next[emoji] = append(slices.Clone(next[emoji]), userID)
	m.Reactions = next
	return true
}

// MarkDeleted soft-deletes the message. It returns false if it was already
// deleted, in which case nothing changes.
func (m *Message) MarkDeleted(by string, at time.Time) bool {
	if m.Deleted {
		return false
	}
	m.Deleted = true
	m.DeletedAt = &at
	m.DeletedBy = by
	return true
}

// Clone returns a deep copy of m.
func (m Message) Clone() Message {
	out := m
	out.Metadata = maps.Clone(m.Metadata)
	if m.Reactions != nil {
		out.Reactions = make(map[string][]string, len(m.Reactions))
		for k, v := range m.Reactions {
			out.Reactions[k] = slices.Clone(v)
		}
	}
	if m.DeletedAt != nil {
		at := *m.DeletedAt
		out.DeletedAt = &at
	}
	return out
}
