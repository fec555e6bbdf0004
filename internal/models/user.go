package models

import (
	"slices"
	"time"
)

// User is a directory entry created on the first message from an id.
// Identity is caller-supplied: whoever posts with an id owns its username
// from then on.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	JoinedAt     time.Time `json:"joinedAt"`
	LastSeenAt   time.Time `json:"lastSeenAt"`
	MessageCount int       `json:"messageCount"`
	Rooms        []string  `json:"rooms"`
}

// NewUser returns a user first seen at now with no messages.
func NewUser(id, username string, now time.Time) User {
	return User{
		ID:         id,
		Username:   username,
		JoinedAt:   now,
		LastSeenAt: now,
		Rooms:      []string{},
	}
}

// Seen moves LastSeenAt forward to now. Earlier times are ignored.
func (u *User) Seen(now time.Time) {
	if now.After(u.LastSeenAt) {
		u.LastSeenAt = now
	}
}

// JoinRoom records roomID in the user's room set.
func (u *User) JoinRoom(roomID string) bool {
	var added bool
	u.Rooms, added = addToSet(u.Rooms, roomID)
	return added
}

// IsOnline reports whether the user was seen within window of now.
func (u *User) IsOnline(now time.Time, window time.Duration) bool {
	return now.Sub(u.LastSeenAt) < window
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	out := u
	out.Rooms = slices.Clone(u.Rooms)
	return out
}
