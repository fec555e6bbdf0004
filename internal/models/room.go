package models

import (
	"slices"
	"strings"
	"time"
)

// Room holds room metadata and its member set. Members only grow.
type Room struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	Members     []string  `json:"members"`
}

// AddMember adds userID to the member set. It returns false if the user was
// already a member.
func (r *Room) AddMember(userID string) bool {
	var added bool
	r.Members, added = addToSet(r.Members, userID)
	return added
}

// IsMember reports whether userID is in the member set.
func (r *Room) IsMember(userID string) bool {
	return slices.Contains(r.Members, userID)
}

// Clone returns a deep copy of r.
func (r Room) Clone() Room {
	out := r
	out.Members = slices.Clone(r.Members)
	return out
}

// RoomIDFromName derives a room id from its display name: the name is
// lowercased, every run of characters outside [a-z0-9] becomes a single '-',
// and leading or trailing dashes are dropped. "Tech  Talk!!" becomes
// "tech-talk".
func RoomIDFromName(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
