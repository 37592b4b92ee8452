package rbac

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/voli-hq/voli/internal/auth"
	"github.com/voli-hq/voli/internal/platform/httpx"
	"github.com/voli-hq/voli/internal/shared"
)

// AdminRole guards role management endpoints. Administrator elevation is
// itself just a role grant of this name.
const AdminRole = "administrator"

// Handler manages role registry and assignment endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	users     auth.Repository
	gate      auth.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, users auth.Repository, gate auth.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, users: users, gate: gate, validator: validator.New()}
}

// MountRoutes registers role routes. Everything here is admin only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.gate.RequireRole(AdminRole))
	r.Post("/", h.createRole)
	r.Get("/", h.listRoles)
	r.Post("/users/{userID}/assign/{roleID}", h.assignRole)
	r.Delete("/users/{userID}/revoke/{roleID}", h.revokeRole)
}

type roleRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type roleResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type userWithRolesResponse struct {
	ID       int64          `json:"id"`
	Email    string         `json:"email"`
	IsActive bool           `json:"is_active"`
	Roles    []roleResponse `json:"roles"`
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	role, err := h.service.CreateRole(r.Context(), req.Name, req.Description)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toRoleResponse(role))
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]roleResponse, len(roles))
	for i, role := range roles {
		out[i] = toRoleResponse(role)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	userID, roleID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	roles, err := h.service.GrantRole(r.Context(), userID, roleID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.respondUserWithRoles(w, r, userID, roles)
}

func (h *Handler) revokeRole(w http.ResponseWriter, r *http.Request) {
	userID, roleID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	roles, err := h.service.RevokeRole(r.Context(), userID, roleID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.respondUserWithRoles(w, r, userID, roles)
}

func (h *Handler) respondUserWithRoles(w http.ResponseWriter, r *http.Request, userID int64, roles []Role) {
	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	resp := userWithRolesResponse{
		ID:       user.ID,
		Email:    user.Email,
		IsActive: user.IsActive,
		Roles:    make([]roleResponse, len(roles)),
	}
	for i, role := range roles {
		resp.Roles[i] = toRoleResponse(role)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) pathIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return 0, 0, false
	}
	roleID, err := strconv.ParseInt(chi.URLParam(r, "roleID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid role id")
		return 0, 0, false
	}
	return userID, roleID, true
}

func toRoleResponse(role Role) roleResponse {
	return roleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		CreatedAt:   role.CreatedAt,
	}
}
