package chathub

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"roomchat/backend/internal/apperr"
	"roomchat/backend/internal/models"
)

// Message Store operations. They run on a state the caller owns: a clone
// under the write lock, or the current state under the read lock for the
// read-only ones.

func (s *state) messageIndex(id string) int {
	return slices.IndexFunc(s.messages, func(m models.Message) bool { return m.ID == id })
}

// appendMessage validates m against the document and settings and inserts it
// at the end of the log. Insertion order is chronological order.
func (s *state) appendMessage(m models.Message, settings models.Settings) (models.Message, error) {
	if _, ok := s.rooms[m.RoomID]; !ok {
		return models.Message{}, apperr.NotFound("room %q not found", m.RoomID)
	}
	if n := utf8.RuneCountInString(m.Body); n > settings.MaxMessageLength {
		return models.Message{}, apperr.InvalidInput("message is %d characters, the limit is %d", n, settings.MaxMessageLength)
	}
	if m.Reactions == nil {
		m.Reactions = map[string][]string{}
	}
	if m.Metadata == nil {
		m.Metadata = map[string]any{}
	}
	s.messages = append(s.messages, m)
	s.counters.TotalMessages++
	return m, nil
}

// roomMessages returns the room's messages in log order.
func (s *state) roomMessages(roomID string, includeDeleted bool) []models.Message {
	var out []models.Message
	for _, m := range s.messages {
		if m.RoomID != roomID || (m.Deleted && !includeDeleted) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// query pages over the newest-first ordering and returns the page oldest
// first. Offset past the end yields an empty page.
func (s *state) query(q models.QueryMessages) (models.MessagePage, error) {
	room, ok := s.rooms[q.RoomID]
	if !ok {
		return models.MessagePage{}, apperr.NotFound("room %q not found", q.RoomID)
	}
	limit := q.Limit
	asc := s.roomMessages(q.RoomID, q.IncludeDeleted)
	n := len(asc)

	page := []models.Message{}
	if q.Offset < n && limit > 0 {
		end := n - q.Offset
		start := max(0, end-limit)
		page = cloneMessages(asc[start:end])
	}
	return models.MessagePage{
		Room:     room.Clone(),
		Messages: page,
		Total:    n,
		Limit:    limit,
		Offset:   q.Offset,
	}, nil
}

// react toggles userID in the emoji set of the message and returns the
// message's reactions afterwards.
func (s *state) react(r models.ReactToMessage) (map[string][]string, bool, error) {
	i := s.messageIndex(r.MessageID)
	if i < 0 {
		return nil, false, apperr.NotFound("message %q not found", r.MessageID)
	}
	m := s.messages[i]
	added := m.ToggleReaction(r.Emoji, r.UserID)
	s.messages[i] = m
	return m.Reactions, added, nil
}

// softDelete marks the message deleted. It reports whether anything changed;
// deleting an already-deleted message is not an error.
func (s *state) softDelete(d models.DeleteMessage, now time.Time) (bool, error) {
	i := s.messageIndex(d.MessageID)
	if i < 0 {
		return false, apperr.NotFound("message %q not found", d.MessageID)
	}
	m := s.messages[i]
	if m.UserID != d.UserID && !d.IsAdmin {
		return false, apperr.PermissionDenied("user %q may not delete message %q", d.UserID, d.MessageID)
	}
	if !m.MarkDeleted(d.UserID, now) {
		return false, nil
	}
	s.messages[i] = m
	return true, nil
}

// search matches term case-insensitively against body or username. Deleted
// messages are skipped. Results are newest first.
func (s *state) search(q models.Search) []models.Message {
	term := strings.ToLower(strings.TrimSpace(q.Term))
	limit := min(q.Limit, models.MaxPageSize)
	out := []models.Message{}
	for i := len(s.messages) - 1; i >= 0 && len(out) < limit; i-- {
		m := s.messages[i]
		if m.Deleted {
			continue
		}
		if q.RoomID != "" && m.RoomID != q.RoomID {
			continue
		}
		if q.UserID != "" && m.UserID != q.UserID {
			continue
		}
		if strings.Contains(strings.ToLower(m.Body), term) || strings.Contains(strings.ToLower(m.Username), term) {
			out = append(out, m.Clone())
		}
	}
	return out
}

// evictExpired drops every message created at or before cutoff and returns
// how many were removed.
func (s *state) evictExpired(cutoff time.Time) int {
	before := len(s.messages)
	s.messages = slices.DeleteFunc(s.messages, func(m models.Message) bool {
		return !m.CreatedAt.After(cutoff)
	})
	return before - len(s.messages)
}

// evictOverCap drops the oldest messages of roomID until it holds at most
// limit. Deleted messages count toward the cap.
func (s *state) evictOverCap(roomID string, limit int) int {
	count := 0
	for _, m := range s.messages {
		if m.RoomID == roomID {
			count++
		}
	}
	excess := count - limit
	if excess <= 0 {
		return 0
	}
	removed := 0
	s.messages = slices.DeleteFunc(s.messages, func(m models.Message) bool {
		if removed < excess && m.RoomID == roomID {
			removed++
			return true
		}
		return false
	})
	return removed
}

func (s *state) roomMessageCount(roomID string) int {
	n := 0
	for _, m := range s.messages {
		if m.RoomID == roomID && !m.Deleted {
			n++
		}
	}
	return n
}

func cloneMessages(in []models.Message) []models.Message {
	out := make([]models.Message, len(in))
	for i, m := range in {
		out[i] = m.Clone()
	}
	return out
}
