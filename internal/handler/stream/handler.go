package stream

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/Reese0301/careerinfinance/internal/service/advisor"
	chatService "github.com/Reese0301/careerinfinance/internal/service/chat"
	"github.com/Reese0301/careerinfinance/pkg/utils"
)

// ErrStreamingUnsupported is returned when the writer cannot flush.
var ErrStreamingUnsupported = errors.New("streaming unsupported")

// Handler runs a turn and reports its progress as Server-Sent Events.
type Handler struct {
	advisorSvc *advisor.Service
	chatSvc    *chatService.Service
}

// New creates a stream handler.
func New(advisorSvc *advisor.Service, chatSvc *chatService.Service) *Handler {
	return &Handler{
		advisorSvc: advisorSvc,
		chatSvc:    chatSvc,
	}
}

// Event is the data carried by every SSE frame.
type Event struct {
	SessionID  string `json:"sessionId,omitempty"`
	Model      string `json:"model,omitempty"`
	Content    string `json:"content,omitempty"`
	MessageID  string `json:"messageId,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
	ElapsedMS  int64  `json:"elapsedMs,omitempty"`
	Finished   bool   `json:"finished,omitempty"`
	Error      string `json:"error,omitempty"`
}

// HandleStreamRequest submits userMessage and emits start, message and end
// events. The turn blocks between start and message while the endpoint answers.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return ErrStreamingUnsupported
	}

	state, err := h.chatSvc.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	utils.SetupSSEHeaders(w)

	sel := state.Selection()
	utils.SendSSEEvent(w, flusher, "start", Event{
		SessionID: sessionID,
		Model:     string(sel.Model),
	})

	result, err := h.advisorSvc.SubmitTurn(ctx, state, userMessage)
	if err != nil {
		utils.SendSSEEvent(w, flusher, "error", Event{SessionID: sessionID, Error: err.Error()})
		log.Printf("[stream] turn rejected for session=%s: %v", sessionID, err)
		return nil
	}

	utils.SendSSEEvent(w, flusher, "message", Event{
		SessionID:  sessionID,
		Model:      string(result.Model),
		Content:    result.Reply.Content,
		MessageID:  result.Reply.ID,
		StatusCode: result.StatusCode,
		ElapsedMS:  result.ElapsedMS,
	})

	utils.SendSSEEvent(w, flusher, "end", Event{
		SessionID: sessionID,
		Finished:  true,
	})

	log.Printf("[stream] completed turn for session=%s, model=%s", sessionID, result.Model)
	return nil
}
