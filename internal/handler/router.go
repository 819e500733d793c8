package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Reese0301/careerinfinance/internal/auth"
	"github.com/Reese0301/careerinfinance/internal/handler/chat"
	"github.com/Reese0301/careerinfinance/internal/handler/live"
	modeHandler "github.com/Reese0301/careerinfinance/internal/handler/mode"
	"github.com/Reese0301/careerinfinance/internal/handler/stream"
	middlewarePkg "github.com/Reese0301/careerinfinance/internal/middleware"
	"github.com/Reese0301/careerinfinance/internal/model/mode"
	"github.com/Reese0301/careerinfinance/internal/service/advisor"
	chatService "github.com/Reese0301/careerinfinance/internal/service/chat"
	"github.com/Reese0301/careerinfinance/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatService.Service, advisorSvc *advisor.Service, gate *auth.Gate) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	modes := modeHandler.New(mode.NewCatalog(), mode.Suggestions())
	chatHandler := chat.New(chatSvc, advisorSvc)
	streamHandler := stream.New(advisorSvc, chatSvc)
	liveHandler := live.NewWebSocketHandler(advisorSvc, chatSvc)

	r.Route("/api", func(api chi.Router) {
		api.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"status":   "ok",
				"sessions": chatSvc.Count(),
			})
		})

		api.Group(func(gated chi.Router) {
			gated.Use(gate.Middleware)

			modes.RegisterRoutes(gated)
			chatHandler.RegisterRoutes(gated)
			liveHandler.RegisterRoutes(gated)

			gated.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
				sessionID := chi.URLParam(r, "sessionID")
				userMessage := r.URL.Query().Get("message")

				if userMessage == "" {
					utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
					return
				}

				if err := streamHandler.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
					if errors.Is(err, chatService.ErrSessionNotFound) {
						utils.RespondError(w, http.StatusNotFound, "session not found")
						return
					}
					log.Printf("[stream] error handling request: %v", err)
					utils.RespondError(w, http.StatusInternalServerError, "streaming failed")
				}
			})
		})
	})

	return r
}
