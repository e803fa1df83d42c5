package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ncrtrack/ncrtrack/internal/platform/httpx"
	"github.com/ncrtrack/ncrtrack/internal/shared"
)

// Handler exposes user listing for the share and assignment pickers.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authz   func(r *http.Request, perm string) bool
}

// NewHandler constructs the users handler. authz decides whether the request
// principal holds a permission.
func NewHandler(logger *slog.Logger, service *Service, authz func(r *http.Request, perm string) bool) *Handler {
	return &Handler{logger: logger, service: service, authz: authz}
}

// MountRoutes attaches user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
}

type userJSON struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if !h.authz(r, shared.PermAssignRNC) {
		httpx.RespondError(w, shared.ErrForbidden)
		return
	}
	list, err := h.service.ListActive(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]userJSON, 0, len(list))
	for _, u := range list {
		out = append(out, userJSON{ID: u.ID, Name: u.Name, Email: u.Email, Department: u.Department})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": out})
}
