package contacts

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

// Handler exposes contact profile endpoints.
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

// MountRoutes registers contact routes. Listing and mutation are admin only;
// a user reads their own profile through /users/me/contact.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRole("administrator"))
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

// ContactPayload is the transport shape shared by create and update.
type ContactPayload struct {
	FirstName              string     `json:"first_name" validate:"required"`
	MiddleName             string     `json:"middle_name"`
	LastName               string     `json:"last_name" validate:"required"`
	PreferredName          string     `json:"preferred_name"`
	Email                  string     `json:"email" validate:"required,email"`
	PersonalEmail          string     `json:"personal_email" validate:"omitempty,email"`
	PhoneNumber            string     `json:"phone_number"`
	SecondaryPhoneNumber   string     `json:"secondary_phone_number"`
	DateOfBirth            *time.Time `json:"date_of_birth"`
	Gender                 string     `json:"gender"`
	PostalAddress          string     `json:"postal_address"`
	MembershipID           string     `json:"membership_id"`
	OrganizationalUnit     string     `json:"organizational_unit"`
	Region                 string     `json:"region"`
	USINumber              string     `json:"usi_number"`
	PreferredContactMethod string     `json:"preferred_contact_method"`
	BlueCardNumber         string     `json:"blue_card_number"`
	LicenseNumber          string     `json:"license_number"`
	Notes                  string     `json:"notes"`
}

// ContactResponse is the transport shape returned to callers.
type ContactResponse struct {
	ID int64 `json:"id"`
	ContactPayload
	UserID *int64 `json:"user_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload ContactPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	contact, err := h.service.Create(r.Context(), payload.ToDomain())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ToResponse(contact))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list contacts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]ContactResponse, len(contacts))
	for i, c := range contacts {
		out[i] = ToResponse(c)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	contact, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ToResponse(contact))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var payload ContactPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	contact, err := h.service.Update(r.Context(), id, payload.ToDomain())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ToResponse(contact))
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

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid contact id")
		return 0, false
	}
	return id, true
}

// ToDomain converts the payload to the domain shape.
func (p ContactPayload) ToDomain() Contact {
	return Contact{
		FirstName:              p.FirstName,
		MiddleName:             p.MiddleName,
		LastName:               p.LastName,
		PreferredName:          p.PreferredName,
		Email:                  p.Email,
		PersonalEmail:          p.PersonalEmail,
		PhoneNumber:            p.PhoneNumber,
		SecondaryPhoneNumber:   p.SecondaryPhoneNumber,
		DateOfBirth:            p.DateOfBirth,
		Gender:                 p.Gender,
		PostalAddress:          p.PostalAddress,
		MembershipID:           p.MembershipID,
		OrganizationalUnit:     p.OrganizationalUnit,
		Region:                 p.Region,
		USINumber:              p.USINumber,
		PreferredContactMethod: p.PreferredContactMethod,
		BlueCardNumber:         p.BlueCardNumber,
		LicenseNumber:          p.LicenseNumber,
		Notes:                  p.Notes,
	}
}

// ToResponse converts a domain contact to its transport shape. Exported so the
// users handler can serve /users/me/contact with the same representation.
func ToResponse(c Contact) ContactResponse {
	return ContactResponse{
		ID: c.ID,
		ContactPayload: ContactPayload{
			FirstName:              c.FirstName,
			MiddleName:             c.MiddleName,
			LastName:               c.LastName,
			PreferredName:          c.PreferredName,
			Email:                  c.Email,
			PersonalEmail:          c.PersonalEmail,
			PhoneNumber:            c.PhoneNumber,
			SecondaryPhoneNumber:   c.SecondaryPhoneNumber,
			DateOfBirth:            c.DateOfBirth,
			Gender:                 c.Gender,
			PostalAddress:          c.PostalAddress,
			MembershipID:           c.MembershipID,
			OrganizationalUnit:     c.OrganizationalUnit,
			Region:                 c.Region,
			USINumber:              c.USINumber,
			PreferredContactMethod: c.PreferredContactMethod,
			BlueCardNumber:         c.BlueCardNumber,
			LicenseNumber:          c.LicenseNumber,
			Notes:                  c.Notes,
		},
		UserID: c.UserID,
	}
}
