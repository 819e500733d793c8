package chat

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Reese0301/careerinfinance/internal/model/chat"
	"github.com/Reese0301/careerinfinance/internal/model/mode"
	"github.com/Reese0301/careerinfinance/internal/service/advisor"
	chatService "github.com/Reese0301/careerinfinance/internal/service/chat"
	"github.com/Reese0301/careerinfinance/internal/session"
	"github.com/Reese0301/careerinfinance/pkg/utils"
)

// Handler serves the session lifecycle and the three session operations:
// submitting a turn, selecting a mode and uploading a resume.
type Handler struct {
	chatSvc    *chatService.Service
	advisorSvc *advisor.Service
}

// New creates the chat handler.
func New(chatSvc *chatService.Service, advisorSvc *advisor.Service) *Handler {
	return &Handler{
		chatSvc:    chatSvc,
		advisorSvc: advisorSvc,
	}
}

// RegisterRoutes registers the session routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Delete("/", h.handleEndSession)
		r.Post("/turns", h.handleSubmitTurn)
		r.Post("/preview", h.handlePreview)
		r.Put("/mode", h.handleSelectMode)
		r.Put("/resume", h.handleUploadResume)
	})
}

type sessionResponse struct {
	Session  chat.Session   `json:"session"`
	Messages []chat.Message `json:"messages"`
}

type textRequest struct {
	Text string `json:"text"`
}

type modeRequest struct {
	Model         string `json:"model"`
	Outlook       string `json:"outlook"`
	CoachingStyle string `json:"coachingStyle"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, sessionResponse{
		Session:  state.Snapshot(),
		Messages: state.Messages(),
	})
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	state, ok := h.lookup(w, r)
	if !ok {
		return
	}

	messages, err := h.chatSvc.LoadTranscript(r.Context(), state.ID())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, sessionResponse{
		Session:  state.Snapshot(),
		Messages: messages,
	})
}

func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.EndSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSubmitTurn(w http.ResponseWriter, r *http.Request) {
	state, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var payload textRequest
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.advisorSvc.SubmitTurn(r.Context(), state, payload.Text)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	state, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var payload textRequest
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	question, err := h.advisorSvc.Preview(r.Context(), state, payload.Text)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"question": question})
}

func (h *Handler) handleSelectMode(w http.ResponseWriter, r *http.Request) {
	state, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var payload modeRequest
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sel, err := mode.ParseSelection(payload.Model, payload.Outlook, payload.CoachingStyle)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := state.SelectMode(sel); err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, state.Snapshot())
}

func (h *Handler) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	state, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var payload textRequest
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := state.UploadResume(payload.Text)
	if err != nil {
		log.Printf("[chat] rejected resume upload for session=%s: %v", state.ID(), err)
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"session": state.Snapshot(),
		"message": note,
	})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*session.State, bool) {
	state, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return nil, false
	}
	return state, true
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, advisor.ErrEmptyInput),
		errors.Is(err, session.ErrEmptyResume),
		errors.Is(err, mode.ErrInvalidMode):
		return http.StatusBadRequest
	case errors.Is(err, advisor.ErrEndpointUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(w http.ResponseWriter, err error) {
	utils.RespondError(w, StatusFor(err), err.Error())
}
