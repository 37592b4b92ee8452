package templates

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/voli-hq/voli/internal/auth"
	"github.com/voli-hq/voli/internal/platform/httpx"
	"github.com/voli-hq/voli/internal/rbac"
	"github.com/voli-hq/voli/internal/shared"
)

// Handler exposes task template endpoints, all admin only.
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

// MountRoutes registers template routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.gate.RequireRole(rbac.AdminRole))
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type templatePayload struct {
	Name         string      `json:"name" validate:"required"`
	Description  string      `json:"description"`
	FieldsSchema []FieldSpec `json:"fields_schema"`
}

type templateResponse struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	FieldsSchema []FieldSpec `json:"fields_schema"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}
	tpl, err := h.service.Create(r.Context(), TaskTemplate{
		Name:         payload.Name,
		Description:  payload.Description,
		FieldsSchema: payload.FieldsSchema,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(tpl))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tpls, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list templates", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]templateResponse, len(tpls))
	for i, tpl := range tpls {
		out[i] = toResponse(tpl)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	tpl, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(tpl))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}
	tpl, err := h.service.Update(r.Context(), TaskTemplate{
		ID:           id,
		Name:         payload.Name,
		Description:  payload.Description,
		FieldsSchema: payload.FieldsSchema,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(tpl))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (templatePayload, bool) {
	var payload templatePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return payload, false
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return payload, false
	}
	return payload, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid template id")
		return 0, false
	}
	return id, true
}

func toResponse(tpl TaskTemplate) templateResponse {
	schema := tpl.FieldsSchema
	if schema == nil {
		schema = []FieldSpec{}
	}
	return templateResponse{
		ID:           tpl.ID,
		Name:         tpl.Name,
		Description:  tpl.Description,
		FieldsSchema: schema,
	}
}
