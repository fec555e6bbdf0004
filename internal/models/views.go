package models

import "time"

// Read-side shapes. None of these are stored; they are computed from a
// snapshot when a query runs.

// RoomSummary is a room enriched with live counts.
type RoomSummary struct {
	Room
	MessageCount int `json:"messageCount"`
	MemberCount  int `json:"memberCount"`
}

// MessagePage is one page of a room's messages, oldest first.
type MessagePage struct {
	Room     Room      `json:"room"`
	Messages []Message `json:"messages"`
	Total    int       `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

// OnlineUser is a room member seen recently.
type OnlineUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	LastSeenAt   time.Time `json:"lastSeenAt"`
	MessageCount int       `json:"messageCount"`
	IsOnline     bool      `json:"isOnline"`
}

// UserStats are derived from a user's non-deleted messages.
type UserStats struct {
	TotalMessages int        `json:"totalMessages"`
	FirstMessage  *time.Time `json:"firstMessage,omitempty"`
	LastMessage   *time.Time `json:"lastMessage,omitempty"`
	Rooms         int        `json:"rooms"`
}

// UserProfile is a user record with derived statistics.
type UserProfile struct {
	User           User      `json:"user"`
	IsOnline       bool      `json:"isOnline"`
	Statistics     UserStats `json:"statistics"`
	RecentMessages []Message `json:"recentMessages"`
}

// RoomActivity is a room with its message count over the last day.
type RoomActivity struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Activity int    `json:"activity"`
}

// TopUser is a user ranked by message count.
type TopUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	MessageCount int       `json:"messageCount"`
	LastSeenAt   time.Time `json:"lastSeenAt"`
	IsOnline     bool      `json:"isOnline"`
}

// StatisticsReport aggregates counters over the whole store.
type StatisticsReport struct {
	Counters
	TodayMessages int            `json:"todayMessages"`
	ActiveRooms   int            `json:"activeRooms"`
	TopRooms      []RoomActivity `json:"topRooms"`
	TopUsers      []TopUser      `json:"topUsers"`
}

// CleanupResult reports a retention sweep.
type CleanupResult struct {
	RemovedCount   int       `json:"removedCount"`
	RemainingCount int       `json:"remainingCount"`
	CutoffDate     time.Time `json:"cutoffDate"`
}
