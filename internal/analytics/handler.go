package analytics

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ncrtrack/ncrtrack/internal/platform/httpx"
	"github.com/ncrtrack/ncrtrack/internal/shared"
)

// Handler exposes the dashboard.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authz   func(r *http.Request, perm string) bool
}

// NewHandler constructs the analytics handler.
func NewHandler(logger *slog.Logger, service *Service, authz func(r *http.Request, perm string) bool) *Handler {
	return &Handler{logger: logger, service: service, authz: authz}
}

// MountRoutes attaches dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/summary", h.summary)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	if !h.authz(r, shared.PermViewCharts) {
		httpx.RespondError(w, shared.ErrForbidden)
		return
	}
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("dashboard summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
