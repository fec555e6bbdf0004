package models

import (
	"encoding/json"
	"strings"

	"roomchat/backend/internal/apperr"
)

// IntentKind tags the caller intents the coordinator understands.
type IntentKind string

const (
	IntentPostMessage    IntentKind = "post_message"
	IntentReactToMessage IntentKind = "react_to_message"
	IntentDeleteMessage  IntentKind = "delete_message"
	IntentCreateRoom     IntentKind = "create_room"
	IntentQueryMessages  IntentKind = "query_messages"
	IntentSearch         IntentKind = "search"
	IntentQueryUsers     IntentKind = "query_users"
)

// Intent is a decoded, explicitly typed caller request. Validate checks
// everything that does not depend on store state or settings.
type Intent interface {
	Kind() IntentKind
	Validate() error
}

const MaxPageSize = 500

// PostMessage asks to append a message to a room.
type PostMessage struct {
	RoomID   string         `json:"roomId" binding:"required"`
	UserID   string         `json:"userId" binding:"required"`
	Username string         `json:"username" binding:"required"`
	Body     string         `json:"body" binding:"required"`
	Type     MessageKind    `json:"kind"`
	Metadata map[string]any `json:"metadata"`
}

func (PostMessage) Kind() IntentKind { return IntentPostMessage }

func (p PostMessage) Validate() error {
	if strings.TrimSpace(p.RoomID) == "" {
		return apperr.InvalidInput("roomId is required")
	}
	if strings.TrimSpace(p.UserID) == "" {
		return apperr.InvalidInput("userId is required")
	}
	if strings.TrimSpace(p.Username) == "" {
		return apperr.InvalidInput("username is required")
	}
	if strings.TrimSpace(p.Body) == "" {
		return apperr.InvalidInput("message body is required")
	}
	if p.Type != "" && !p.Type.Valid() {
		return apperr.InvalidInput("unknown message kind %q", p.Type)
	}
	for k, v := range p.Metadata {
		if !isScalarMetadata(v) {
			return apperr.InvalidInput("metadata %q must be a string or a number", k)
		}
	}
	return nil
}

// MessageKind returns the requested kind, defaulting to text.
func (p PostMessage) MessageKind() MessageKind {
	if p.Type == "" {
		return KindText
	}
	return p.Type
}

func isScalarMetadata(v any) bool {
	switch v.(type) {
	case string, json.Number,
		float32, float64,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// ReactToMessage toggles a user's emoji reaction on a message.
type ReactToMessage struct {
	MessageID string `json:"-"`
	UserID    string `json:"userId" binding:"required"`
	Emoji     string `json:"emoji" binding:"required"`
}

func (ReactToMessage) Kind() IntentKind { return IntentReactToMessage }

func (r ReactToMessage) Validate() error {
	if r.MessageID == "" {
		return apperr.InvalidInput("message id is required")
	}
	if strings.TrimSpace(r.UserID) == "" {
		return apperr.InvalidInput("userId is required")
	}
	if strings.TrimSpace(r.Emoji) == "" {
		return apperr.InvalidInput("emoji is required")
	}
	return nil
}

// DeleteMessage soft-deletes a message on behalf of its author or an admin.
type DeleteMessage struct {
	MessageID string `json:"-"`
	UserID    string `json:"userId" binding:"required"`
	IsAdmin   bool   `json:"isAdmin"`
}

func (DeleteMessage) Kind() IntentKind { return IntentDeleteMessage }

func (d DeleteMessage) Validate() error {
	if d.MessageID == "" {
		return apperr.InvalidInput("message id is required")
	}
	if strings.TrimSpace(d.UserID) == "" {
		return apperr.InvalidInput("userId is required")
	}
	return nil
}

// CreateRoom asks for a new room. UserID is the creator and may be empty.
type CreateRoom struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	UserID      string `json:"userId"`
}

func (CreateRoom) Kind() IntentKind { return IntentCreateRoom }

func (c CreateRoom) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return apperr.InvalidInput("room name is required")
	}
	if RoomIDFromName(c.Name) == "" {
		return apperr.InvalidInput("room name %q has no letters or digits", c.Name)
	}
	return nil
}

// QueryMessages reads one page of a room's messages. Pages are counted from
// the newest message.
type QueryMessages struct {
	RoomID         string `form:"-"`
	Limit          int    `form:"limit,default=100"`
	Offset         int    `form:"offset,default=0"`
	IncludeDeleted bool   `form:"includeDeleted"`
}

func (QueryMessages) Kind() IntentKind { return IntentQueryMessages }

func (q QueryMessages) Validate() error {
	if q.RoomID == "" {
		return apperr.InvalidInput("room id is required")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return apperr.InvalidInput("limit and offset must not be negative")
	}
	if q.Limit > MaxPageSize {
		return apperr.InvalidInput("limit must not exceed %d", MaxPageSize)
	}
	return nil
}

// Search looks for messages whose body or username contains Term.
type Search struct {
	Term   string `form:"q" binding:"required"`
	RoomID string `form:"roomId"`
	UserID string `form:"userId"`
	Limit  int    `form:"limit,default=50"`
}

func (Search) Kind() IntentKind { return IntentSearch }

func (s Search) Validate() error {
	if strings.TrimSpace(s.Term) == "" {
		return apperr.InvalidInput("search term is required")
	}
	if s.Limit < 0 {
		return apperr.InvalidInput("limit must not be negative")
	}
	return nil
}

// QueryUsers lists the recently active members of a room.
type QueryUsers struct {
	RoomID string
}

func (QueryUsers) Kind() IntentKind { return IntentQueryUsers }

func (q QueryUsers) Validate() error {
	if q.RoomID == "" {
		return apperr.InvalidInput("room id is required")
	}
	return nil
}
