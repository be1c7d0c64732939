package admin

import (
	"net/http"

	"github.com/designcode/backoffice/internal/auth"
	"github.com/designcode/backoffice/internal/handler"
	"github.com/designcode/backoffice/internal/service"
)

// ProfileHandler serves the signed-in admin's own account.
type ProfileHandler struct {
	admins *service.AdminService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(admins *service.AdminService) *ProfileHandler {
	return &ProfileHandler{admins: admins}
}

// Get handles GET /admin/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	admin, err := h.admins.GetProfile(r.Context(), auth.ActorFromContext(r.Context()))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, viewOf(admin))
}

// Update handles PATCH /admin/profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateProfileInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondBadBody(w)
		return
	}

	admin, err := h.admins.UpdateProfile(r.Context(), auth.ActorFromContext(r.Context()), input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, viewOf(admin))
}

// ChangePassword handles POST /admin/change-password.
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var input service.ChangePasswordInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondBadBody(w)
		return
	}

	if err := h.admins.ChangeOwnPassword(r.Context(), auth.ActorFromContext(r.Context()), input); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}
