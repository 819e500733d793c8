package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Reese0301/careerinfinance/internal/config"
	"github.com/Reese0301/careerinfinance/internal/model/mode"
	"github.com/Reese0301/careerinfinance/internal/service/advisor"
	chatservice "github.com/Reese0301/careerinfinance/internal/service/chat"
	"github.com/Reese0301/careerinfinance/internal/service/prediction"
	"github.com/Reese0301/careerinfinance/internal/session"
)

type received struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func newServer(t *testing.T) (*httptest.Server, *chatservice.Service) {
	t.Helper()
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"Network early."}`))
	}))
	t.Cleanup(endpoint.Close)

	cfg := config.AdvisorConfig{
		Endpoints: map[mode.Model]config.Endpoint{
			mode.Mentor: {URL: endpoint.URL},
			mode.Expert: {URL: endpoint.URL},
		},
		ContextLimit: 5,
	}
	advisorSvc, err := advisor.NewService(context.Background(), prediction.NewClient(nil), cfg)
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	chatSvc := chatservice.NewService(session.DefaultWelcome)

	r := chi.NewRouter()
	NewWebSocketHandler(advisorSvc, chatSvc).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, chatSvc
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + sessionID
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readMessage(t *testing.T, ws *websocket.Conn) received {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg received
	if err := ws.ReadJSON(&msg); err != nil {
		t.Fatalf("read err: %v", err)
	}
	return msg
}

func send(t *testing.T, ws *websocket.Conn, typ string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	if err := ws.WriteJSON(inboundMessage{Type: typ, Data: raw}); err != nil {
		t.Fatalf("write err: %v", err)
	}
}

func TestWebSocketTurn(t *testing.T) {
	srv, chatSvc := newServer(t)
	state, _ := chatSvc.CreateSession(context.Background())
	ws := dial(t, srv, state.ID())

	if msg := readMessage(t, ws); msg.Data["type"] != "connected" {
		t.Fatalf("expected connected, got %+v", msg)
	}

	send(t, ws, "turn", TextMessage{Text: "How do I break into banking?"})

	if msg := readMessage(t, ws); msg.Data["type"] != "thinking" {
		t.Fatalf("expected thinking, got %+v", msg)
	}
	msg := readMessage(t, ws)
	if msg.Type != "result" || msg.Data["type"] != "reply" {
		t.Fatalf("expected reply, got %+v", msg)
	}
	reply, _ := msg.Data["reply"].(map[string]any)
	if reply["content"] != "Network early." {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if state.Len() != 3 {
		t.Fatalf("expected 3 messages in log, got %d", state.Len())
	}
}

func TestWebSocketModeAndResume(t *testing.T) {
	srv, chatSvc := newServer(t)
	state, _ := chatSvc.CreateSession(context.Background())
	ws := dial(t, srv, state.ID())
	readMessage(t, ws)

	send(t, ws, "resume", TextMessage{Text: "CFA Level II candidate"})
	if msg := readMessage(t, ws); msg.Data["type"] != "resume" {
		t.Fatalf("expected resume ack, got %+v", msg)
	}
	if state.Resume() != "CFA Level II candidate" {
		t.Fatalf("resume not stored")
	}

	send(t, ws, "mode", ModeMessage{Model: "expert"})
	if msg := readMessage(t, ws); msg.Data["type"] != "mode" {
		t.Fatalf("expected mode ack, got %+v", msg)
	}
	if state.Selection().Model != mode.Expert {
		t.Fatalf("expected expert model, got %s", state.Selection().Model)
	}
	if state.Resume() != "" {
		t.Fatalf("resume should be cleared for expert")
	}
}

func TestWebSocketRejectsBadInput(t *testing.T) {
	srv, chatSvc := newServer(t)
	state, _ := chatSvc.CreateSession(context.Background())
	ws := dial(t, srv, state.ID())
	readMessage(t, ws)

	send(t, ws, "resume", TextMessage{Text: "   "})
	if msg := readMessage(t, ws); msg.Type != "error" {
		t.Fatalf("expected error for blank resume, got %+v", msg)
	}

	send(t, ws, "mode", ModeMessage{Model: "oracle"})
	if msg := readMessage(t, ws); msg.Type != "error" {
		t.Fatalf("expected error for unknown model, got %+v", msg)
	}

	send(t, ws, "dance", TextMessage{})
	if msg := readMessage(t, ws); msg.Type != "error" {
		t.Fatalf("expected error for unknown type, got %+v", msg)
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	srv, _ := newServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/missing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %+v", resp)
	}
}

func TestWebSocketHistory(t *testing.T) {
	srv, chatSvc := newServer(t)
	state, _ := chatSvc.CreateSession(context.Background())
	ws := dial(t, srv, state.ID())
	readMessage(t, ws)

	send(t, ws, "history", struct{}{})
	msg := readMessage(t, ws)
	if msg.Data["type"] != "history" {
		t.Fatalf("expected history, got %+v", msg)
	}
	messages, _ := msg.Data["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("expected the welcome message only, got %v", messages)
	}
}
