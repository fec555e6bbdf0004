package config

import "time"

const (
	// Presence
	OnlineWindow = 5 * time.Minute
	ActiveWindow = 2 * time.Minute

	// Paging
	DefaultPageSize   = 100
	DefaultSearchSize = 50
	ProfileRecent     = 10

	// Statistics
	ActivityWindow = 24 * time.Hour
	TopRoomsCount  = 5
	TopUsersCount  = 10

	// Settings defaults
	DefaultMaxMessageLength    = 2000
	DefaultMaxMessagesPerRoom  = 1000
	DefaultMessageLifetimeDays = 30
	DefaultMaxFileSize         = 5 * 1024 * 1024

	DefaultRetentionCron = "0 3 * * *"
	DefaultUsername      = "User"
)

// DefaultRoom describes a room present in every freshly created store.
type DefaultRoom struct {
	Name        string
	Description string
}

var DefaultRooms = []DefaultRoom{
	{Name: "General", Description: "General chat open to everyone"},
	{Name: "Technology", Description: "Technology news and discussion"},
	{Name: "Gaming", Description: "Gaming talk"},
}
