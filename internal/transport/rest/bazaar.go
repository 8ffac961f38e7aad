package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

type bazaarService interface {
	Search(ctx context.Context, query string, accepting bool) ([]domain.Bazaar, error)
	Get(ctx context.Context, id string) (domain.Bazaar, error)
	SetAccepting(ctx context.Context, actor domain.Actor, id string, accepting bool) (domain.Bazaar, error)
}

// BazaarHandler serves bazaar directory endpoints.
type BazaarHandler struct {
	svc bazaarService
	log *slog.Logger
}

// NewBazaarHandler creates a BazaarHandler.
func NewBazaarHandler(svc bazaarService, logger *slog.Logger) *BazaarHandler {
	return &BazaarHandler{svc: svc, log: logger.With("handler", "bazaar")}
}

type acceptingRequest struct {
	Accepting *bool `json:"accepting"`
}

// List handles GET /bazaars?q=&accepting=true.
func (h *BazaarHandler) List(w http.ResponseWriter, r *http.Request) {
	accepting := false
	if v := r.URL.Query().Get("accepting"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeBadRequest(w, r, "accepting", "must be true or false")
			return
		}
		accepting = b
	}

	items, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"), accepting)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]bazaarResponse{"items": toBazaarList(items)})
}

// Get handles GET /bazaars/{id}.
func (h *BazaarHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toBazaarResponse(b))
}

// SetAccepting handles PUT /bazaars/{id}/accepting.
func (h *BazaarHandler) SetAccepting(w http.ResponseWriter, r *http.Request) {
	var req acceptingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Accepting == nil {
		writeError(w, r, h.log, domain.NewValidationError("accepting", "required"))
		return
	}

	b, err := h.svc.SetAccepting(r.Context(), actorFrom(r), chi.URLParam(r, "id"), *req.Accepting)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toBazaarResponse(b))
}
