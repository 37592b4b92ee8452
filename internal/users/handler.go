package users

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/voli-hq/voli/internal/auth"
	"github.com/voli-hq/voli/internal/contacts"
	"github.com/voli-hq/voli/internal/platform/httpx"
	"github.com/voli-hq/voli/internal/rbac"
	"github.com/voli-hq/voli/internal/shared"
)

// Handler exposes user management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	contacts  *contacts.Service
	gate      auth.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, contactsSvc *contacts.Service, gate auth.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, contacts: contactsSvc, gate: gate, validator: validator.New()}
}

// MountRoutes registers user routes. Registration is public; everything else
// requires a token, and the management surface requires the administrator role.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.register)
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAuth)
		r.Get("/me", h.me)
		r.Get("/me/contact", h.meContact)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRole(rbac.AdminRole))
		r.Get("/", h.list)
		r.Delete("/", h.deleteUsers)
		r.Post("/assign-admin", h.assignAdmin)
	})
}

type registerRequest struct {
	Email    string                  `json:"email" validate:"required,email"`
	Password string                  `json:"password" validate:"required,min=8"`
	Contact  contacts.ContactPayload `json:"contact" validate:"required"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	Roles     []RoleRef `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

type idsRequest struct {
	UserIDs []int64 `json:"user_ids" validate:"required,min=1"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	contact := req.Contact
	if contact.Email == "" {
		contact.Email = req.Email
	}
	user, err := h.service.Register(r.Context(), req.Email, req.Password, contact.ToDomain())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toUserResponse(*user))
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	current := auth.UserFromContext(r.Context())
	if current == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	user, err := h.service.GetUser(r.Context(), current.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(*user))
}

func (h *Handler) meContact(w http.ResponseWriter, r *http.Request) {
	current := auth.UserFromContext(r.Context())
	if current == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	contact, err := h.contacts.GetForUser(r.Context(), current.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, contacts.ToResponse(contact))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]userResponse, len(users))
	for i, user := range users {
		out[i] = toUserResponse(user)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) deleteUsers(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeIDs(w, r)
	if !ok {
		return
	}
	deleted, err := h.service.DeleteUsers(r.Context(), req.UserIDs)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Successfully deleted %d user(s)", deleted),
	})
}

func (h *Handler) assignAdmin(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeIDs(w, r)
	if !ok {
		return
	}
	updated, err := h.service.AssignAdmin(r.Context(), req.UserIDs)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Successfully assigned administrator role to %d user(s)", updated),
	})
}

func (h *Handler) decodeIDs(w http.ResponseWriter, r *http.Request) (idsRequest, bool) {
	var req idsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return req, false
	}
	return req, true
}

func toUserResponse(user User) userResponse {
	roles := user.Roles
	if roles == nil {
		roles = []RoleRef{}
	}
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		IsActive:  user.IsActive,
		Roles:     roles,
		CreatedAt: user.CreatedAt,
	}
}

