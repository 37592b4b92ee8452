package tasks

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/voli-hq/voli/internal/auth"
	"github.com/voli-hq/voli/internal/platform/httpx"
	"github.com/voli-hq/voli/internal/rbac"
	"github.com/voli-hq/voli/internal/shared"
)

// Handler exposes task endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	roles     auth.RoleSource
	gate      auth.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, roles auth.RoleSource, gate auth.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, roles: roles, gate: gate, validator: validator.New()}
}

// MountRoutes registers task routes. Every route requires authentication;
// /all additionally requires the administrator role.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.gate.RequireAuth)
	r.Post("/", h.create)
	r.Get("/", h.listOwn)
	r.With(h.gate.RequireRole(rbac.AdminRole)).Get("/all", h.listAll)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type taskPayload struct {
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	DueDate     *time.Time     `json:"due_date"`
	TemplateID  *int64         `json:"template_id"`
	CustomData  map[string]any `json:"custom_data"`
}

type taskPatchPayload struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Status      *string        `json:"status"`
	DueDate     *time.Time     `json:"due_date"`
	CustomData  map[string]any `json:"custom_data"`
}

type taskResponse struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	DueDate     *time.Time     `json:"due_date"`
	OwnerID     int64          `json:"owner_id"`
	TemplateID  *int64         `json:"template_id"`
	CustomData  map[string]any `json:"custom_data"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	var payload taskPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	task, err := h.service.Create(r.Context(), Task{
		Title:       payload.Title,
		Description: payload.Description,
		Status:      Status(payload.Status),
		DueDate:     payload.DueDate,
		OwnerID:     user.ID,
		TemplateID:  payload.TemplateID,
		CustomData:  payload.CustomData,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toTaskResponse(task))
}

func (h *Handler) listOwn(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	limit, offset := pageParams(r)
	list, err := h.service.ListOwn(r.Context(), user.ID, limit, offset)
	if err != nil {
		h.logger.Error("list tasks", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTaskResponses(list))
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	list, err := h.service.ListAll(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list all tasks", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTaskResponses(list))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	actor, err := h.actor(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	task, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTaskResponse(task))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	actor, err := h.actor(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var payload taskPatchPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	patch := Patch{
		Title:       payload.Title,
		Description: payload.Description,
		DueDate:     payload.DueDate,
		CustomData:  payload.CustomData,
	}
	if payload.Status != nil {
		status := Status(*payload.Status)
		patch.Status = &status
	}
	task, err := h.service.Update(r.Context(), actor, id, patch)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTaskResponse(task))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	actor, err := h.actor(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// actor resolves the requesting user's current roles so that ownership checks
// honour a live administrator grant.
func (h *Handler) actor(r *http.Request) (Actor, error) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		return Actor{}, shared.ErrUnauthenticated
	}
	names, err := h.roles.RoleNamesForUser(r.Context(), user.ID)
	if err != nil {
		return Actor{}, err
	}
	return Actor{ID: user.ID, Admin: slices.Contains(names, rbac.AdminRole)}, nil
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid task id")
		return 0, false
	}
	return id, true
}

func pageParams(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("skip"))
	return limit, offset
}

func toTaskResponse(t Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		DueDate:     t.DueDate,
		OwnerID:     t.OwnerID,
		TemplateID:  t.TemplateID,
		CustomData:  t.CustomData,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskResponses(list []Task) []taskResponse {
	out := make([]taskResponse, len(list))
	for i, t := range list {
		out[i] = toTaskResponse(t)
	}
	return out
}
