package chathub

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"roomchat/backend/internal/analysis"
	"roomchat/backend/internal/apperr"
	"roomchat/backend/internal/config"
	"roomchat/backend/internal/metrics"
	"roomchat/backend/internal/models"
	"roomchat/backend/internal/storage"

	"github.com/google/uuid"
)

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// ManagerService is the single entry point to the chat store. Mutating
// operations are serialized under one write lock, build the next state on a
// clone, persist it and only then publish it. Reads share the current state
// under the read lock and never see a partially applied operation.
type ManagerService struct {
	mu       sync.RWMutex
	current  *state
	settings models.Settings

	Storage storage.Storage
	Metrics *metrics.Metrics
	Now     Clock
	NewID   func() string
}

// NewManagerService returns a coordinator over an empty store. Use Restore
// to load a persisted document before serving.
func NewManagerService(s storage.Storage, settings models.Settings) *ManagerService {
	return &ManagerService{
		current:  newState(),
		settings: settings,
		Storage:  s,
		Now:      time.Now,
		NewID:    uuid.NewString,
	}
}

func (m *ManagerService) Settings() models.Settings { return m.settings }

// Restore loads the persisted document. An absent document is bootstrapped
// with the default rooms and saved. A corrupt or unreadable one is returned
// as an error and must stop startup.
func (m *ManagerService) Restore(ctx context.Context) error {
	snap, err := m.Storage.Load(ctx)
	if errors.Is(err, storage.ErrNotExist) {
		log.Println("INFO: no chat document found, creating default rooms")
		return m.bootstrap(ctx)
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.current = stateFromSnapshot(snap)
	m.mu.Unlock()
	log.Printf("INFO: restored %d messages in %d rooms for %d users",
		len(snap.Messages), len(snap.Rooms), len(snap.Users))
	return nil
}

func (m *ManagerService) bootstrap(ctx context.Context) error {
	return m.commit(ctx, "bootstrap", func(st *state, now time.Time) error {
		for _, r := range config.DefaultRooms {
			if _, err := st.createRoom(models.CreateRoom{Name: r.Name, Description: r.Description}, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// commit runs fn against a clone of the current state under the write lock.
// When fn succeeds the clone is saved and becomes current; otherwise the
// current state is left as it was. The save is not abandoned if ctx is
// canceled once it has started.
func (m *ManagerService) commit(ctx context.Context, op string, fn func(st *state, now time.Time) error) (err error) {
	defer func() {
		if errors.Is(err, errNoChange) {
			m.Metrics.Commit(op, nil)
			return
		}
		m.Metrics.Commit(op, err)
	}()

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Now()
	next := m.current.clone()
	if err := fn(next, now); err != nil {
		return err
	}

	started := time.Now()
	err = m.Storage.Save(context.WithoutCancel(ctx), next.snapshot(m.settings, now))
	m.Metrics.ObserveSave(time.Since(started))
	if err != nil {
		log.Printf("ERROR: %s not committed: %v", op, err)
		if apperr.CodeOf(err) != apperr.CodeStoreUnavailable {
			err = apperr.StoreUnavailable("save document", err)
		}
		return err
	}
	m.current = next
	return nil
}

// read runs fn against the current state under the read lock.
func (m *ManagerService) read(fn func(st *state)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn(m.current)
}

// PostMessage validates the intent, appends the message, applies the room
// cap and records the author's activity and membership as one unit.
func (m *ManagerService) PostMessage(ctx context.Context, p models.PostMessage) (models.Message, error) {
	if err := p.Validate(); err != nil {
		return models.Message{}, err
	}
	kind := p.MessageKind()
	if (kind == models.KindImage || kind == models.KindFile) && !m.settings.AllowMedia {
		return models.Message{}, apperr.InvalidInput("media messages are disabled")
	}

	var stored models.Message
	var evicted int
	err := m.commit(ctx, "post_message", func(st *state, now time.Time) error {
		msg, err := st.appendMessage(models.Message{
			ID:        m.NewID(),
			RoomID:    p.RoomID,
			UserID:    p.UserID,
			Username:  strings.TrimSpace(p.Username),
			Body:      p.Body,
			Kind:      kind,
			CreatedAt: now,
			Metadata:  p.Metadata,
		}, m.settings)
		if err != nil {
			return err
		}
		evicted = st.evictOverCap(p.RoomID, m.settings.MaxMessagesPerRoom)
		st.touch(p.UserID, msg.Username, p.RoomID, now, true)
		if err := st.addMember(p.RoomID, p.UserID); err != nil {
			return err
		}
		stored = msg
		return nil
	})
	if err != nil {
		return models.Message{}, err
	}
	m.Metrics.Posted(string(kind))
	m.Metrics.Evicted("cap", evicted)
	return stored.Clone(), nil
}

// CreateRoom derives the room id from its name and inserts the room. The
// creator, when given, becomes its first member.
func (m *ManagerService) CreateRoom(ctx context.Context, c models.CreateRoom) (models.Room, error) {
	if err := c.Validate(); err != nil {
		return models.Room{}, err
	}
	var room models.Room
	err := m.commit(ctx, "create_room", func(st *state, now time.Time) error {
		var err error
		room, err = st.createRoom(c, now)
		return err
	})
	if err != nil {
		return models.Room{}, err
	}
	log.Printf("INFO: room %s created by %q", room.ID, room.CreatedBy)
	return room.Clone(), nil
}

// React toggles a reaction and returns the message's reaction sets
// afterwards. The reacting user counts as seen.
func (m *ManagerService) React(ctx context.Context, r models.ReactToMessage) (map[string][]string, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	var reactions map[string][]string
	err := m.commit(ctx, "react", func(st *state, now time.Time) error {
		var err error
		reactions, _, err = st.react(r)
		if err != nil {
			return err
		}
		if u, ok := st.users[r.UserID]; ok {
			u = u.Clone()
			u.Seen(now)
			st.users[r.UserID] = u
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reactions, nil
}

// DeleteMessage soft-deletes a message for its author or an admin. Deleting
// twice succeeds without writing anything the second time.
func (m *ManagerService) DeleteMessage(ctx context.Context, d models.DeleteMessage) error {
	if err := d.Validate(); err != nil {
		return err
	}
	err := m.commit(ctx, "delete_message", func(st *state, now time.Time) error {
		changed, err := st.softDelete(d, now)
		if err != nil {
			return err
		}
		if !changed {
			return errNoChange
		}
		return nil
	})
	if errors.Is(err, errNoChange) {
		return nil
	}
	return err
}

// errNoChange aborts a commit without saving when fn found nothing to do.
var errNoChange = errors.New("no change")

// Cleanup runs the retention sweep: messages older than the configured
// lifetime are removed.
func (m *ManagerService) Cleanup(ctx context.Context) (models.CleanupResult, error) {
	var res models.CleanupResult
	err := m.commit(ctx, "cleanup", func(st *state, now time.Time) error {
		cutoff := now.Add(-m.settings.MessageLifetime())
		res = models.CleanupResult{
			RemovedCount: st.evictExpired(cutoff),
			CutoffDate:   cutoff,
		}
		res.RemainingCount = len(st.messages)
		if res.RemovedCount == 0 {
			return errNoChange
		}
		return nil
	})
	if err != nil && !errors.Is(err, errNoChange) {
		return models.CleanupResult{}, err
	}
	m.Metrics.Evicted("expired", res.RemovedCount)
	if res.RemovedCount > 0 {
		log.Printf("INFO: cleanup removed %d messages older than %s", res.RemovedCount, res.CutoffDate.Format(time.RFC3339))
	}
	return res, nil
}

// QueryMessages returns one page of a room's messages.
func (m *ManagerService) QueryMessages(q models.QueryMessages) (models.MessagePage, error) {
	if err := q.Validate(); err != nil {
		return models.MessagePage{}, err
	}
	var page models.MessagePage
	var err error
	m.read(func(st *state) { page, err = st.query(q) })
	return page, err
}

func (m *ManagerService) ListRooms() []models.RoomSummary {
	var rooms []models.RoomSummary
	m.read(func(st *state) { rooms = st.listRooms() })
	return rooms
}

func (m *ManagerService) GetRoom(id string) (models.Room, error) {
	var room models.Room
	var err error
	m.read(func(st *state) { room, err = st.getRoom(id) })
	return room, err
}

func (m *ManagerService) GetUser(id string) (models.User, error) {
	var u models.User
	var err error
	m.read(func(st *state) { u, err = st.getUser(id) })
	return u, err
}

func (m *ManagerService) Search(q models.Search) ([]models.Message, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	var out []models.Message
	m.read(func(st *state) { out = st.search(q) })
	return out, nil
}

// ListOnline returns the recently active members of a room.
func (m *ManagerService) ListOnline(q models.QueryUsers) ([]models.OnlineUser, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	var out []models.OnlineUser
	var err error
	m.read(func(st *state) {
		out, err = st.listOnline(q.RoomID, m.Now(), config.OnlineWindow, config.ActiveWindow)
	})
	return out, err
}

func (m *ManagerService) UserProfile(id string) (models.UserProfile, error) {
	var p models.UserProfile
	var err error
	m.read(func(st *state) {
		p, err = analysis.Profile(st.snapshot(m.settings, time.Time{}), id, m.Now())
	})
	return p, err
}

func (m *ManagerService) Statistics() models.StatisticsReport {
	var r models.StatisticsReport
	m.read(func(st *state) {
		r = analysis.Statistics(st.snapshot(m.settings, time.Time{}), m.Now())
	})
	return r
}

// Counters returns the persisted running totals.
func (m *ManagerService) Counters() models.Counters {
	var c models.Counters
	m.read(func(st *state) { c = st.counters })
	return c
}
