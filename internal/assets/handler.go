package assets

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/voli-hq/voli/internal/auth"
	"github.com/voli-hq/voli/internal/platform/httpx"
	"github.com/voli-hq/voli/internal/rbac"
	"github.com/voli-hq/voli/internal/shared"
)

// Handler exposes asset endpoints, all admin only.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      auth.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate auth.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, gate: gate, validator: validator.New()}
}

// MountRoutes registers asset routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.gate.RequireRole(rbac.AdminRole))
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/assign/{userID}", h.assign)
}

type assetPayload struct {
	Name         string     `json:"name" validate:"required"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	SerialNumber string     `json:"serial_number"`
	PurchaseDate *time.Time `json:"purchase_date"`
}

type assetPatchPayload struct {
	Name         *string    `json:"name"`
	Description  *string    `json:"description"`
	Status       *string    `json:"status"`
	SerialNumber *string    `json:"serial_number"`
	PurchaseDate *time.Time `json:"purchase_date"`
	AssigneeID   *int64     `json:"assignee_id"`
}

type assetResponse struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	SerialNumber string     `json:"serial_number,omitempty"`
	PurchaseDate *time.Time `json:"purchase_date"`
	AssigneeID   *int64     `json:"assignee_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload assetPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	asset, err := h.service.Create(r.Context(), Asset{
		Name:         payload.Name,
		Description:  payload.Description,
		Status:       Status(payload.Status),
		SerialNumber: payload.SerialNumber,
		PurchaseDate: payload.PurchaseDate,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAssetResponse(asset))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	list, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list assets", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]assetResponse, len(list))
	for i, a := range list {
		out[i] = toAssetResponse(a)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	asset, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAssetResponse(asset))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var payload assetPatchPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	patch := Patch{
		Name:         payload.Name,
		Description:  payload.Description,
		SerialNumber: payload.SerialNumber,
		PurchaseDate: payload.PurchaseDate,
		AssigneeID:   payload.AssigneeID,
	}
	if payload.Status != nil {
		status := Status(*payload.Status)
		patch.Status = &status
	}
	asset, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAssetResponse(asset))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	asset, err := h.service.Assign(r.Context(), id, userID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAssetResponse(asset))
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid "+name)
		return 0, false
	}
	return id, true
}

func toAssetResponse(a Asset) assetResponse {
	return assetResponse{
		ID:           a.ID,
		Name:         a.Name,
		Description:  a.Description,
		Status:       string(a.Status),
		SerialNumber: a.SerialNumber,
		PurchaseDate: a.PurchaseDate,
		AssigneeID:   a.AssigneeID,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}
