package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"task-assistant/internal/api"
	"task-assistant/internal/logging"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "AI Task Management API is running"})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": s.now().Format(time.RFC3339)})
}

// writeError maps an operation failure onto an HTTP status.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch api.KindOf(err) {
	case api.KindInvalid:
		status = http.StatusBadRequest
	case api.KindNotFound:
		status = http.StatusNotFound
	case api.KindUnauthorized:
		status = http.StatusUnauthorized
	}
	c.JSON(status, gin.H{"detail": err.Error()})
}

func badRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": detail})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "task id must be an integer")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, fallback int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, key+" must be an integer")
		return 0, false
	}
	return n, true
}

func (s *Server) handleChat(c *gin.Context) {
	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	reply := s.api.Chat(c.Request.Context(), req.Message)
	c.JSON(http.StatusOK, api.ChatResponse{
		Response:     reply.Response,
		TasksUpdated: reply.TasksUpdated,
		Timestamp:    s.now().UTC(),
	})
}

func (s *Server) handleListTasks(c *gin.Context) {
	skip, ok := queryInt(c, "skip", 0)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 100)
	if !ok {
		return
	}

	tasks, err := s.api.PageTasks(c.Request.Context(), skip, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var in api.TaskCreate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	task, err := s.api.CreateTask(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	task, err := s.api.GetTask(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in api.TaskUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	task, err := s.api.UpdateTask(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.api.DeleteTask(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (s *Server) handleFilterByPriority(c *gin.Context) {
	tasks, err := s.api.TasksByPriority(c.Request.Context(), c.Param("priority"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleFilterByStatus(c *gin.Context) {
	tasks, err := s.api.TasksByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// WebSocket message types.
const (
	wsTypeChat          = "chat"
	wsTypeAgentResponse = "agent_response"
	wsTypeError         = "error"
)

type wsInbound struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type wsAgentResponse struct {
	Type         string    `json:"type"`
	Response     string    `json:"response"`
	TasksUpdated bool      `json:"tasks_updated"`
	Timestamp    time.Time `json:"timestamp"`
}

type wsError struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// handleWebSocket registers the connection with the hub, which owns all
// writes, and processes chat messages until the client goes away.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	sub := s.hub.Register(conn)
	defer s.hub.Unregister(sub)

	ctx := c.Request.Context()
	logger := logging.FromContext(ctx, s.logger)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("websocket closed unexpectedly", "subscriber_id", sub.ID(), "error", err)
			}
			return
		}

		var msg wsInbound
		if err := json.Unmarshal(data, &msg); err != nil {
			if !sub.Send(wsError{Type: wsTypeError, Message: "invalid message", Timestamp: s.now().UTC()}) {
				return
			}
			continue
		}
		if msg.Type != wsTypeChat {
			continue
		}

		reply := s.api.Chat(ctx, msg.Message)
		var out any = wsAgentResponse{
			Type:         wsTypeAgentResponse,
			Response:     reply.Response,
			TasksUpdated: reply.TasksUpdated,
			Timestamp:    s.now().UTC(),
		}
		if !reply.Success {
			out = wsError{
				Type:      wsTypeError,
				Message:   "Error processing message: " + reply.Response,
				Timestamp: s.now().UTC(),
			}
		}
		if !sub.Send(out) {
			return
		}
	}
}
