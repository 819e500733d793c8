package mode

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Reese0301/careerinfinance/internal/model/mode"
	"github.com/Reese0301/careerinfinance/pkg/utils"
)

// Handler serves the selectable options and starter prompts.
type Handler struct {
	catalog     mode.Catalog
	suggestions []string
}

// New creates the mode handler.
func New(catalog mode.Catalog, suggestions []string) *Handler {
	return &Handler{
		catalog:     catalog,
		suggestions: append([]string(nil), suggestions...),
	}
}

// RegisterRoutes registers the catalogue routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/modes", h.handleListModes)
	r.Get("/suggestions", h.handleListSuggestions)
}

func (h *Handler) handleListModes(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.catalog)
}

func (h *Handler) handleListSuggestions(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.suggestions)
}
