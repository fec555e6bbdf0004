// Package analysis derives read-side reports from a chat document: the
// store-wide statistics and per-user profiles. Nothing here is persisted.
package analysis

import (
	"cmp"
	"slices"
	"time"

	"roomchat/backend/internal/apperr"
	"roomchat/backend/internal/config"
	"roomchat/backend/internal/models"
)

// Statistics aggregates the persisted counters with activity over the last
// day. Only rooms with activity are ranked. snap is only read.
func Statistics(snap *models.Snapshot, now time.Time) models.StatisticsReport {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	since := now.Add(-config.ActivityWindow)

	today := 0
	activity := make(map[string]int)
	for _, m := range snap.Messages {
		if m.Deleted {
			continue
		}
		if !m.CreatedAt.Before(midnight) {
			today++
		}
		if m.CreatedAt.After(since) {
			activity[m.RoomID]++
		}
	}

	return models.StatisticsReport{
		Counters:      snap.Statistics,
		TodayMessages: today,
		ActiveRooms:   len(activity),
		TopRooms:      topRooms(snap.Rooms, activity, config.TopRoomsCount),
		TopUsers:      topUsers(snap.Users, now, config.TopUsersCount),
	}
}

func topRooms(rooms map[string]models.Room, activity map[string]int, n int) []models.RoomActivity {
	out := make([]models.RoomActivity, 0, len(activity))
	for _, r := range rooms {
		if activity[r.ID] == 0 {
			continue
		}
		out = append(out, models.RoomActivity{ID: r.ID, Name: r.Name, Activity: activity[r.ID]})
	}
	slices.SortFunc(out, func(a, b models.RoomActivity) int {
		if c := cmp.Compare(b.Activity, a.Activity); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out[:min(n, len(out))]
}

func topUsers(users map[string]models.User, now time.Time, n int) []models.TopUser {
	out := make([]models.TopUser, 0, len(users))
	for _, u := range users {
		out = append(out, models.TopUser{
			ID:           u.ID,
			Username:     u.Username,
			MessageCount: u.MessageCount,
			LastSeenAt:   u.LastSeenAt,
			IsOnline:     u.IsOnline(now, config.ActiveWindow),
		})
	}
	slices.SortFunc(out, func(a, b models.TopUser) int {
		if c := cmp.Compare(b.MessageCount, a.MessageCount); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out[:min(n, len(out))]
}

// Profile returns the user with statistics over their non-deleted messages
// and the most recent of them, newest first.
func Profile(snap *models.Snapshot, userID string, now time.Time) (models.UserProfile, error) {
	u, ok := snap.Users[userID]
	if !ok {
		return models.UserProfile{}, apperr.NotFound("user %q not found", userID)
	}

	var stats models.UserStats
	recent := []models.Message{}
	for i := len(snap.Messages) - 1; i >= 0; i-- {
		m := snap.Messages[i]
		if m.UserID != userID || m.Deleted {
			continue
		}
		at := m.CreatedAt
		if stats.LastMessage == nil {
			stats.LastMessage = &at
		}
		stats.FirstMessage = &at
		stats.TotalMessages++
		if len(recent) < config.ProfileRecent {
			recent = append(recent, m.Clone())
		}
	}
	stats.Rooms = len(u.Rooms)

	return models.UserProfile{
		User:           u.Clone(),
		IsOnline:       u.IsOnline(now, config.ActiveWindow),
		Statistics:     stats,
		RecentMessages: recent,
	}, nil
}
