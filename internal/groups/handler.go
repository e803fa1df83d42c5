package groups

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ncrtrack/ncrtrack/internal/platform/httpx"
	"github.com/ncrtrack/ncrtrack/internal/shared"
)

// Handler exposes group permission administration.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	authz    func(r *http.Request, perm string) bool
}

// NewHandler constructs the groups handler.
func NewHandler(logger *slog.Logger, service *Service, authz func(r *http.Request, perm string) bool) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), authz: authz}
}

// MountRoutes attaches group routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/permissions", h.vocabulary)
	r.Get("/{groupID}/permissions", h.grants)
	r.Put("/{groupID}/permissions", h.setGrant)
	r.Delete("/{groupID}/permissions/{permission}", h.clearGrant)
}

func (h *Handler) allowed(w http.ResponseWriter, r *http.Request) bool {
	if h.authz(r, shared.PermManageUsers) {
		return true
	}
	httpx.RespondError(w, shared.ErrForbidden)
	return false
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(w, r) {
		return
	}
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list groups", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"groups": list})
}

// vocabulary lists every known permission name so the admin screen can
// render the grant matrix.
func (h *Handler) vocabulary(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(w, r) {
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": shared.AllPermissions()})
}

func (h *Handler) grants(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(w, r) {
		return
	}
	groupID, err := groupIDParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	grants, err := h.service.Grants(r.Context(), groupID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"group_id": groupID, "grants": grants})
}

type setGrantRequest struct {
	Permission string `json:"permission" validate:"required"`
	Value      bool   `json:"value"`
}

func (h *Handler) setGrant(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(w, r) {
		return
	}
	groupID, err := groupIDParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req setGrantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.SetGrant(r.Context(), groupID, req.Permission, req.Value); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "saved"})
}

func (h *Handler) clearGrant(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(w, r) {
		return
	}
	groupID, err := groupIDParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.ClearGrant(r.Context(), groupID, chi.URLParam(r, "permission")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "cleared"})
}

func groupIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.ErrNotFound
	}
	return id, nil
}
