package handler_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"roomchat/backend/internal/api/handler"
	"roomchat/backend/internal/chathub"
	"roomchat/backend/internal/config"
	"roomchat/backend/internal/localization"
	"roomchat/backend/internal/metrics"
	"roomchat/backend/internal/models"
	"roomchat/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Load(ctx context.Context) (*models.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Snapshot), args.Error(1)
}

func (m *MockStorage) Save(ctx context.Context, snap *models.Snapshot) error {
	return m.Called(ctx, snap).Error(0)
}

func (m *MockStorage) Close() error { return m.Called().Error(0) }

func settings() models.Settings {
	return models.Settings{
		MaxMessageLength:    2000,
		MaxMessagesPerRoom:  1000,
		MessageLifetimeDays: 30,
		AllowMedia:          true,
		MaxFileSize:         1 << 20,
	}
}

func newRouter(t *testing.T, s storage.Storage, rl config.RateLimitConfig) *gin.Engine {
	t.Helper()
	hub := chathub.NewManagerService(s, settings())
	m := metrics.New()
	hub.Metrics = m
	require.NoError(t, hub.Restore(context.Background()))

	r := gin.New()
	handler.NewHandler(hub, localization.Bundled(), m, rl).RegisterRoutes(r)
	return r
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "database.json")
	return newRouter(t, storage.NewFileStorage(path), config.RateLimitConfig{RPS: 1000, Burst: 1000})
}

func do(r http.Handler, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

type postResponse struct {
	Success bool           `json:"success"`
	Message models.Message `json:"message"`
}

func postMessage(t *testing.T, r http.Handler, roomID, userID, body string) models.Message {
	t.Helper()
	w := do(r, http.MethodPost, "/api/messages", gin.H{"roomId": roomID, "userId": userID, "username": "n-" + userID, "body": body})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[postResponse](t, w).Message
}

func TestListRooms(t *testing.T) {
	r := setupRouter(t)
	postMessage(t, r, "general", "u1", "hi")

	w := do(r, http.MethodGet, "/api/rooms", nil)

	require.Equal(t, http.StatusOK, w.Code)
	rooms := decode[[]models.RoomSummary](t, w)
	require.Len(t, rooms, 3)
	for _, room := range rooms {
		if room.ID == "general" {
			assert.Equal(t, 1, room.MessageCount)
			assert.Equal(t, 1, room.MemberCount)
		}
	}
}

func TestPostAndQueryMessages(t *testing.T) {
	// Arrange
	r := setupRouter(t)
	for _, body := range []string{"one", "two", "three"} {
		postMessage(t, r, "general", "u1", body)
	}

	// Act
	w := do(r, http.MethodGet, "/api/rooms/general/messages?limit=2&offset=0", nil)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[models.MessagePage](t, w)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Limit)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "two", page.Messages[0].Body)
	assert.Equal(t, "three", page.Messages[1].Body)
	assert.Equal(t, "general", page.Room.ID)
}

func TestQueryMessages_DefaultsAndErrors(t *testing.T) {
	r := setupRouter(t)

	w := do(r, http.MethodGet, "/api/rooms/general/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100, decode[models.MessagePage](t, w).Limit)

	w = do(r, http.MethodGet, "/api/rooms/ghost/messages", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/rooms/general/messages?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/rooms/general/messages?offset=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/rooms/general/messages?limit=501", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostMessage_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   gin.H
		status int
		code   string
	}{
		{"missing body", gin.H{"roomId": "general", "userId": "u1", "username": "a"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"too long", gin.H{"roomId": "general", "userId": "u1", "username": "a", "body": strings.Repeat("x", 2001)}, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown room", gin.H{"roomId": "ghost", "userId": "u1", "username": "a", "body": "x"}, http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(t)

			w := do(r, http.MethodPost, "/api/messages", tt.body)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode[errorBody](t, w).Code)
		})
	}
}

func TestReact(t *testing.T) {
	r := setupRouter(t)
	msg := postMessage(t, r, "general", "u1", "hi")

	w := do(r, http.MethodPost, "/api/messages/"+msg.ID+"/react", gin.H{"userId": "u2", "emoji": "❤️"})

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Reactions map[string][]string `json:"reactions"`
	}](t, w)
	assert.Equal(t, map[string][]string{"❤️": {"u2"}}, resp.Reactions)

	w = do(r, http.MethodPost, "/api/messages/missing/react", gin.H{"userId": "u2", "emoji": "❤️"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteMessage_PermissionAndLocalization(t *testing.T) {
	// Arrange
	r := setupRouter(t)
	msg := postMessage(t, r, "general", "alice", "mine")

	// Act
	denied := do(r, http.MethodDelete, "/api/messages/"+msg.ID, gin.H{"userId": "bob"}, "Accept-Language", "tr-TR,tr;q=0.9")
	ok := do(r, http.MethodDelete, "/api/messages/"+msg.ID, gin.H{"userId": "alice"})
	again := do(r, http.MethodDelete, "/api/messages/"+msg.ID, gin.H{"userId": "alice"})

	// Assert
	require.Equal(t, http.StatusForbidden, denied.Code)
	body := decode[errorBody](t, denied)
	assert.Equal(t, "PERMISSION_DENIED", body.Code)
	assert.Equal(t, localization.Bundled().GetString("tr", "PERMISSION_DENIED"), body.Error)
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Equal(t, http.StatusOK, again.Code)

	page := do(r, http.MethodGet, "/api/rooms/general/messages", nil)
	assert.Zero(t, decode[models.MessagePage](t, page).Total)
}

func TestCreateRoom(t *testing.T) {
	r := setupRouter(t)

	w := do(r, http.MethodPost, "/api/rooms", gin.H{"name": "Tech Talk", "userId": "u1"})
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode[struct {
		Room models.Room `json:"room"`
	}](t, w)
	assert.Equal(t, "tech-talk", resp.Room.ID)

	w = do(r, http.MethodPost, "/api/rooms", gin.H{"name": "Tech  Talk!!", "userId": "u2"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", decode[errorBody](t, w).Code)

	w = do(r, http.MethodPost, "/api/rooms", gin.H{"description": "no name"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoomUsers(t *testing.T) {
	r := setupRouter(t)
	postMessage(t, r, "general", "u1", "hi")

	w := do(r, http.MethodGet, "/api/rooms/general/users", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Total int                 `json:"total"`
		Users []models.OnlineUser `json:"users"`
	}](t, w)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "u1", resp.Users[0].ID)
	assert.True(t, resp.Users[0].IsOnline)
}

func TestSearch(t *testing.T) {
	r := setupRouter(t)
	postMessage(t, r, "general", "u1", "Golang rocks")
	postMessage(t, r, "gaming", "u2", "nothing here")

	w := do(r, http.MethodGet, "/api/search?q=golang", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Query   string           `json:"query"`
		Results []models.Message `json:"results"`
		Total   int              `json:"total"`
	}](t, w)
	assert.Equal(t, "golang", resp.Query)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "Golang rocks", resp.Results[0].Body)

	w = do(r, http.MethodGet, "/api/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserProfileAndStatistics(t *testing.T) {
	r := setupRouter(t)
	postMessage(t, r, "general", "u1", "hi")

	w := do(r, http.MethodGet, "/api/users/u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode[models.UserProfile](t, w)
	assert.Equal(t, 1, profile.Statistics.TotalMessages)

	w = do(r, http.MethodGet, "/api/users/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/statistics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, stats["totalMessages"])
	assert.EqualValues(t, 3, stats["roomsCount"])
	assert.Contains(t, stats, "serverUptime")
	assert.Contains(t, stats, "topUsers")
}

func TestCleanupAndHealth(t *testing.T) {
	r := setupRouter(t)
	postMessage(t, r, "general", "u1", "fresh")

	w := do(r, http.MethodPost, "/api/cleanup", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[map[string]any](t, w)
	assert.EqualValues(t, 0, res["removedCount"])
	assert.EqualValues(t, 1, res["remainingCount"])

	w = do(r, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[map[string]any](t, w)
	assert.Equal(t, "online", health["status"])
}

func TestUpload(t *testing.T) {
	r := setupRouter(t)
	file := base64.StdEncoding.EncodeToString([]byte("GIF89a"))

	w := do(r, http.MethodPost, "/api/upload", gin.H{
		"file": file, "filename": "x.gif", "fileType": "image/gif", "userId": "u1", "roomId": "general",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	msg := decode[postResponse](t, w).Message
	assert.Equal(t, models.KindImage, msg.Kind)
	assert.Equal(t, "x.gif", msg.Metadata["filename"])
}

func TestRateLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	r := newRouter(t, storage.NewFileStorage(path), config.RateLimitConfig{RPS: 0.001, Burst: 1})
	body := gin.H{"roomId": "general", "userId": "spammer", "username": "s", "body": "x"}

	first := do(r, http.MethodPost, "/api/messages", body)
	second := do(r, http.MethodPost, "/api/messages", body)
	other := do(r, http.MethodPost, "/api/messages", gin.H{"roomId": "general", "userId": "calm", "username": "c", "body": "x"})

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "RATE_LIMITED", decode[errorBody](t, second).Code)
	assert.Equal(t, http.StatusCreated, other.Code)
}

func TestStoreUnavailable(t *testing.T) {
	// Arrange
	storageMock := new(MockStorage)
	storageMock.On("Load", mock.Anything).Return(nil, storage.ErrNotExist)
	storageMock.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
	storageMock.On("Save", mock.Anything, mock.Anything).Return(errors.New("connection reset"))
	r := newRouter(t, storageMock, config.RateLimitConfig{RPS: 100, Burst: 100})

	// Act
	w := do(r, http.MethodPost, "/api/messages", gin.H{"roomId": "general", "userId": "u1", "username": "a", "body": "x"})

	// Assert
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "STORE_UNAVAILABLE", body.Code)
	assert.NotContains(t, body.Detail, "connection reset")
}

func TestMetricsEndpoint(t *testing.T) {
	r := setupRouter(t)
	postMessage(t, r, "general", "u1", "count me")

	w := do(r, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "roomchat_messages_posted_total")
	assert.Contains(t, w.Body.String(), `roomchat_commits_total{op="post_message",result="ok"} 1`)
}
