package rnc

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ncrtrack/ncrtrack/internal/platform/httpx"
	"github.com/ncrtrack/ncrtrack/internal/shared"
)

// Handler exposes record operations over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the records handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches record routes. shareRoutes, when non-nil, is mounted
// under each record's /shares path.
func (h *Handler) MountRoutes(r chi.Router, shareRoutes func(chi.Router)) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Route("/{rncID}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Put("/", h.update)
		r.Delete("/", h.softDelete)
		r.Post("/restore", h.restore)
		r.Post("/finalize", h.finalize)
		if shareRoutes != nil {
			r.Route("/shares", shareRoutes)
		}
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principalID := shared.PrincipalIDFromContext(r.Context())
	q := r.URL.Query()
	filters := Filters{
		Status:     q.Get("status"),
		Department: q.Get("department"),
		Search:     q.Get("q"),
	}
	res, err := h.service.List(r.Context(), principalID, q.Get("tab"), q.Get("cursor"), q.Get("limit"), filters)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principalID := shared.PrincipalIDFromContext(r.Context())
	id, err := recordID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.service.Get(r.Context(), principalID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principalID := shared.PrincipalIDFromContext(r.Context())
	var form map[string]string
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	rec, err := h.service.Create(r.Context(), principalID, form)
	if err != nil {
		h.logger.Error("create record", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	principalID := shared.PrincipalIDFromContext(r.Context())
	id, err := recordID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var form map[string]string
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	rec, err := h.service.Update(r.Context(), principalID, id, form)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, h.service.SoftDelete, "deleted")
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, h.service.Restore, "restored")
}

func (h *Handler) finalize(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, h.service.Finalize, "finalized")
}

func (h *Handler) runTransition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, principalID, id int64) error, status string) {
	principalID := shared.PrincipalIDFromContext(r.Context())
	id, err := recordID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := op(r.Context(), principalID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": status})
}

func recordID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "rncID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.ErrNotFound
	}
	return id, nil
}
