package shares

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ncrtrack/ncrtrack/internal/platform/httpx"
	"github.com/ncrtrack/ncrtrack/internal/shared"
)

// Handler exposes record sharing over HTTP. Routes are mounted under a
// record-scoped path, so every request carries an rncID parameter.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the shares handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes attaches share routes to a record-scoped router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/{granteeID}", h.revoke)
}

type createShareRequest struct {
	GranteeID int64  `json:"grantee_id" validate:"required,gt=0"`
	Level     string `json:"level" validate:"required,oneof=view edit"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principalID := shared.PrincipalIDFromContext(r.Context())
	recordID, err := recordIDParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createShareRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.Share(r.Context(), recordID, principalID, req.GranteeID, req.Level); err != nil {
		h.logger.Error("share record", slog.Int64("record_id", recordID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "shared"})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principalID := shared.PrincipalIDFromContext(r.Context())
	recordID, err := recordIDParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	res, err := h.service.ListShares(r.Context(), principalID, recordID,
		r.URL.Query().Get("cursor"), r.URL.Query().Get("limit"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	principalID := shared.PrincipalIDFromContext(r.Context())
	recordID, err := recordIDParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	granteeID, err := strconv.ParseInt(chi.URLParam(r, "granteeID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "grantee id must be numeric")
		return
	}
	if err := h.service.Revoke(r.Context(), recordID, principalID, granteeID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "revoked"})
}

func recordIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "rncID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.ErrNotFound
	}
	return id, nil
}
