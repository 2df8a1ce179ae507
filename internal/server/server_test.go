package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-assistant/internal/api"
	"task-assistant/internal/chat"
	"task-assistant/internal/classifier"
	"task-assistant/internal/config"
	"task-assistant/internal/domain"
	"task-assistant/internal/notify"
	"task-assistant/internal/observability"
	"task-assistant/internal/repository/sqlstore"
	"task-assistant/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	*Server
	hub *notify.Hub
}

func setupTestServer(t *testing.T, cfg config.ServerConfig) *testServer {
	t.Helper()
	repo, err := sqlstore.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	reg := prometheus.NewRegistry()
	metrics := observability.MustNewMetrics(reg)
	hub := notify.NewHub(notify.WithMetrics(metrics))
	t.Cleanup(hub.Close)

	tasks := services.NewTaskService(repo, services.NewTaskResolver())
	orch := chat.New(tasks, classifier.Echo{}, chat.WithNotifier(hub), chat.WithMetrics(metrics))
	srv := New(api.NewBusinessAPI(tasks, orch), hub, cfg, WithGatherer(reg))
	return &testServer{Server: srv, hub: hub}
}

func (s *testServer) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRootAndHealth(t *testing.T) {
	s := setupTestServer(t, config.ServerConfig{})

	rec := s.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "running")
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	rec = s.do(t, http.MethodGet, "/health", nil, headerRequestID, "abc")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])
	assert.Equal(t, "abc", rec.Header().Get(headerRequestID))
}

func TestTaskCRUD(t *testing.T) {
	s := setupTestServer(t, config.ServerConfig{})

	rec := s.do(t, http.MethodPost, "/tasks", map[string]any{"title": "write report", "priority": "high"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[domain.TaskSnapshot](t, rec)
	assert.Equal(t, "write report", created.Title)
	assert.Equal(t, "pending", created.Status)

	path := "/tasks/" + strconv.FormatInt(created.ID, 10)
	rec = s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[domain.TaskSnapshot](t, rec))

	rec = s.do(t, http.MethodPut, path, map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "completed", decode[domain.TaskSnapshot](t, rec).Status)

	rec = s.do(t, http.MethodGet, "/tasks/filter/status/completed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.TaskSnapshot](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/tasks/filter/priority/low", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = s.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task deleted successfully", decode[map[string]string](t, rec)["message"])

	rec = s.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", decode[map[string]string](t, rec)["detail"])
}

func TestTaskErrors(t *testing.T) {
	s := setupTestServer(t, config.ServerConfig{})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"non-numeric id", http.MethodGet, "/tasks/abc", nil, http.StatusBadRequest},
		{"bad priority", http.MethodPost, "/tasks", map[string]any{"title": "x", "priority": "extreme"}, http.StatusBadRequest},
		{"empty title", http.MethodPost, "/tasks", map[string]any{"title": ""}, http.StatusBadRequest},
		{"bad status filter", http.MethodGet, "/tasks/filter/status/archived", nil, http.StatusBadRequest},
		{"bad skip", http.MethodGet, "/tasks?skip=x", nil, http.StatusBadRequest},
		{"negative limit", http.MethodGet, "/tasks?limit=-1", nil, http.StatusBadRequest},
		{"missing update target", http.MethodPut, "/tasks/77", map[string]any{"status": "completed"}, http.StatusNotFound},
		{"missing delete target", http.MethodDelete, "/tasks/77", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[map[string]string](t, rec)["detail"])
		})
	}
}

func TestTaskMutationZeroIDNamesTheID(t *testing.T) {
	s := setupTestServer(t, config.ServerConfig{})

	tests := []struct {
		name   string
		method string
		body   any
		detail string
	}{
		{"update", http.MethodPut, map[string]any{"status": "completed"}, `Error updating task: invalid task_id "0": must be a positive integer`},
		{"delete", http.MethodDelete, nil, `Error deleting task: invalid task_id "0": must be a positive integer`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, "/tasks/0", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, tt.detail, decode[map[string]string](t, rec)["detail"])
		})
	}
}

func TestListTasksPaging(t *testing.T) {
	s := setupTestServer(t, config.ServerConfig{})
	for _, title := range []string{"a", "b", "c"} {
		require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/tasks", map[string]any{"title": title}).Code)
	}

	rec := s.do(t, http.MethodGet, "/tasks?skip=1&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decode[[]domain.TaskSnapshot](t, rec)
	require.Len(t, tasks, 1)
	assert.Equal(t, "b", tasks[0].Title)
}

func TestChatEndpoint(t *testing.T) {
	s := setupTestServer(t, config.ServerConfig{})

	rec := s.do(t, http.MethodPost, "/chat", api.ChatRequest{Message: "Create a task to buy milk tomorrow"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[api.ChatResponse](t, rec)
	assert.True(t, resp.TasksUpdated)
	assert.Equal(t, "Task 'buy milk tomorrow' created successfully", resp.Response)
	assert.False(t, resp.Timestamp.IsZero())

	rec = s.do(t, http.MethodPost, "/chat", api.ChatRequest{Message: "Show me all high priority tasks"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[api.ChatResponse](t, rec)
	assert.False(t, resp.TasksUpdated)
	assert.Equal(t, chat.NoTasksText, resp.Response)

	rec = s.do(t, http.MethodPost, "/chat", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupTestServer(t, config.ServerConfig{})
	s.do(t, http.MethodPost, "/chat", api.ChatRequest{Message: "hello"})

	rec := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "task_assistant_chat_messages_total")
}

func TestAuthentication(t *testing.T) {
	secret := "s3cret"
	s := setupTestServer(t, config.ServerConfig{AuthSecret: secret})

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/tasks", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/tasks", nil, "Authorization", "Bearer nope").Code)

	token, err := GenerateToken([]byte(secret), "alice", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/tasks", nil, "Authorization", "Bearer "+token).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/tasks?token="+token, nil).Code)

	expired, err := GenerateToken([]byte(secret), "alice", -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/tasks", nil, "Authorization", "Bearer "+expired).Code)

	other, err := GenerateToken([]byte("different"), "alice", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/tasks", nil, "Authorization", "Bearer "+other).Code)
}

func TestParseToken(t *testing.T) {
	token, err := GenerateToken([]byte("k"), "bob", time.Minute)
	require.NoError(t, err)

	subject, err := ParseToken([]byte("k"), token)
	require.NoError(t, err)
	assert.Equal(t, "bob", subject)
}

func TestWebSocketChatAndBroadcast(t *testing.T) {
	s := setupTestServer(t, config.ServerConfig{AllowedOrigins: []string{"*"}})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	sender, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer sender.Close()
	listener, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer listener.Close()

	require.Eventually(t, func() bool { return s.hub.Len() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, sender.WriteJSON(wsInbound{Type: wsTypeChat, Message: "Create a task to call mom"}))

	seen := map[string]map[string]any{}
	require.NoError(t, sender.SetReadDeadline(time.Now().Add(2*time.Second)))
	for len(seen) < 2 {
		var msg map[string]any
		require.NoError(t, sender.ReadJSON(&msg))
		seen[msg["type"].(string)] = msg
	}
	assert.Equal(t, "Task 'call mom' created successfully", seen[wsTypeAgentResponse]["response"])
	assert.Equal(t, true, seen[wsTypeAgentResponse]["tasks_updated"])
	assert.Contains(t, seen, notify.EventTasksUpdated)

	var pushed map[string]any
	require.NoError(t, listener.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, listener.ReadJSON(&pushed))
	assert.Equal(t, notify.EventTasksUpdated, pushed["type"])

	require.NoError(t, sender.WriteMessage(websocket.TextMessage, []byte("{not json")))
	var errMsg map[string]any
	require.NoError(t, sender.ReadJSON(&errMsg))
	assert.Equal(t, wsTypeError, errMsg["type"])

	listener.Close()
	require.Eventually(t, func() bool { return s.hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestCheckOrigin(t *testing.T) {
	s := setupTestServer(t, config.ServerConfig{AllowedOrigins: []string{"http://app.example"}})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, s.checkOrigin(req))

	req.Header.Set("Origin", "http://app.example")
	assert.True(t, s.checkOrigin(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, s.checkOrigin(req))
}
