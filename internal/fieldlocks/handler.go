package fieldlocks

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ncrtrack/ncrtrack/internal/platform/httpx"
	"github.com/ncrtrack/ncrtrack/internal/shared"
)

// Handler exposes the per-group field lock configuration to administrators.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	authz    func(r *http.Request, perm string) bool
}

// NewHandler constructs the field locks handler.
func NewHandler(logger *slog.Logger, service *Service, authz func(r *http.Request, perm string) bool) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), authz: authz}
}

// MountRoutes attaches the admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/fields", h.fields)
	r.Get("/{groupID}", h.list)
	r.Put("/{groupID}", h.update)
	r.Delete("/{groupID}", h.reset)
}

type lockJSON struct {
	FieldName  string `json:"field_name"`
	IsLocked   bool   `json:"is_locked"`
	IsRequired bool   `json:"is_required"`
}

type updateLocksRequest struct {
	Locks map[string]bool `json:"locks" validate:"required,min=1"`
}

// fields lists the editable field registry so the admin screen can render
// one toggle per field.
func (h *Handler) fields(w http.ResponseWriter, r *http.Request) {
	if !h.authz(r, shared.PermAdminAccess) {
		httpx.RespondError(w, shared.ErrForbidden)
		return
	}
	names := make([]string, 0, len(AvailableFields))
	for name := range AvailableFields {
		names = append(names, name)
	}
	sort.Strings(names)
	httpx.JSON(w, http.StatusOK, map[string]any{"fields": names})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if !h.authz(r, shared.PermAdminAccess) {
		httpx.RespondError(w, shared.ErrForbidden)
		return
	}
	groupID, err := groupIDParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	locks, err := h.service.ListLocks(r.Context(), groupID)
	if err != nil {
		h.logger.Error("list field locks", slog.Int64("group_id", groupID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]lockJSON, 0, len(locks))
	for _, l := range locks {
		out = append(out, lockJSON{FieldName: l.FieldName, IsLocked: l.IsLocked, IsRequired: l.IsRequired})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"group_id": groupID, "locks": out})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if !h.authz(r, shared.PermAdminAccess) {
		httpx.RespondError(w, shared.ErrForbidden)
		return
	}
	groupID, err := groupIDParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updateLocksRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	written, err := h.service.UpdateLocks(r.Context(), groupID, req.Locks)
	if err != nil {
		h.logger.Error("update field locks", slog.Int64("group_id", groupID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": written})
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	if !h.authz(r, shared.PermAdminAccess) {
		httpx.RespondError(w, shared.ErrForbidden)
		return
	}
	groupID, err := groupIDParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	removed, err := h.service.Reset(r.Context(), groupID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"removed": removed})
}

func groupIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.ErrNotFound
	}
	return id, nil
}
