package live

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Reese0301/careerinfinance/internal/model/mode"
	"github.com/Reese0301/careerinfinance/internal/service/advisor"
	chatservice "github.com/Reese0301/careerinfinance/internal/service/chat"
	"github.com/Reese0301/careerinfinance/internal/session"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
)

// WebSocketHandler drives a session over a single WebSocket connection.
type WebSocketHandler struct {
	advisorSvc *advisor.Service
	chatSvc    *chatservice.Service
	upgrader   websocket.Upgrader
}

// NewWebSocketHandler creates the WebSocket handler.
func NewWebSocketHandler(advisorSvc *advisor.Service, chatSvc *chatservice.Service) *WebSocketHandler {
	return &WebSocketHandler{
		advisorSvc: advisorSvc,
		chatSvc:    chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the WebSocket route.
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// TextMessage carries a user turn or a resume upload.
type TextMessage struct {
	Text string `json:"text"`
}

// ModeMessage carries a mode selection.
type ModeMessage struct {
	Model         string `json:"model"`
	Outlook       string `json:"outlook"`
	CoachingStyle string `json:"coachingStyle"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// conn serializes writes; gorilla allows one concurrent writer.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second))
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	state, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer ws.Close()
	c := &conn{ws: ws}

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ws.SetReadDeadline(time.Now().Add(readTimeout))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go h.pingLoop(ctx, c)

	h.sendInfo(c, sessionID, map[string]any{
		"type":     "connected",
		"session":  state.Snapshot(),
		"messages": state.Messages(),
	})

	for {
		var msg inboundMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}

		if msg.SessionID != "" && msg.SessionID != sessionID {
			h.sendError(c, "session mismatch")
		} else {
			h.handleMessage(ctx, c, state, &msg)
		}
		// A turn can outlast the read deadline.
		ws.SetReadDeadline(time.Now().Add(readTimeout))
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, c *conn, state *session.State, msg *inboundMessage) {
	switch msg.Type {
	case "turn":
		h.handleTurn(ctx, c, state, msg.Data)
	case "mode":
		h.handleMode(c, state, msg.Data)
	case "resume":
		h.handleResume(c, state, msg.Data)
	case "history":
		h.handleHistory(ctx, c, state.ID())
	default:
		h.sendError(c, "unsupported message type: "+msg.Type)
	}
}

func (h *WebSocketHandler) handleHistory(ctx context.Context, c *conn, sessionID string) {
	messages, err := h.chatSvc.LoadTranscript(ctx, sessionID)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}
	h.sendInfo(c, sessionID, map[string]any{"type": "history", "messages": messages})
}

func (h *WebSocketHandler) handleTurn(ctx context.Context, c *conn, state *session.State, raw json.RawMessage) {
	var text TextMessage
	if err := json.Unmarshal(raw, &text); err != nil {
		h.sendError(c, "invalid turn payload")
		return
	}

	h.sendInfo(c, state.ID(), map[string]any{"type": "thinking"})

	result, err := h.advisorSvc.SubmitTurn(ctx, state, text.Text)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}

	h.sendInfo(c, state.ID(), map[string]any{
		"type":        "reply",
		"userMessage": result.UserMessage,
		"reply":       result.Reply,
		"model":       result.Model,
		"statusCode":  result.StatusCode,
		"elapsedMs":   result.ElapsedMS,
	})
}

func (h *WebSocketHandler) handleMode(c *conn, state *session.State, raw json.RawMessage) {
	var cfg ModeMessage
	if err := json.Unmarshal(raw, &cfg); err != nil {
		h.sendError(c, "invalid mode payload")
		return
	}

	if err := h.applyMode(state, cfg); err != nil {
		h.sendError(c, err.Error())
		return
	}

	h.sendInfo(c, state.ID(), map[string]any{"type": "mode", "session": state.Snapshot()})
}

func (h *WebSocketHandler) applyMode(state *session.State, cfg ModeMessage) error {
	sel, err := mode.ParseSelection(cfg.Model, cfg.Outlook, cfg.CoachingStyle)
	if err != nil {
		return err
	}
	return state.SelectMode(sel)
}

func (h *WebSocketHandler) handleResume(c *conn, state *session.State, raw json.RawMessage) {
	var text TextMessage
	if err := json.Unmarshal(raw, &text); err != nil {
		h.sendError(c, "invalid resume payload")
		return
	}

	note, err := state.UploadResume(text.Text)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}

	h.sendInfo(c, state.ID(), map[string]any{"type": "resume", "message": note, "session": state.Snapshot()})
}

func (h *WebSocketHandler) sendInfo(c *conn, sessionID string, data map[string]any) {
	msg := outgoingMessage{
		Type:      "result",
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := c.writeJSON(msg); err != nil {
		log.Printf("[websocket] write info failed: %v", err)
	}
}

func (h *WebSocketHandler) sendError(c *conn, message string) {
	msg := outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
	if err := c.writeJSON(msg); err != nil {
		log.Printf("[websocket] write error failed: %v", err)
	}
}

func (h *WebSocketHandler) pingLoop(ctx context.Context, c *conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}
