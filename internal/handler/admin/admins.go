package admin

import (
	"net/http"

	"github.com/designcode/backoffice/internal/auth"
	"github.com/designcode/backoffice/internal/domain"
	"github.com/designcode/backoffice/internal/handler"
	"github.com/designcode/backoffice/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// adminView is the wire form of an account: the stored fields plus the
// derived status. The password hash is never serialized.
type adminView struct {
	*domain.AdminAccount
	Status domain.AccountStatus `json:"status"`
}

func viewOf(a *domain.AdminAccount) adminView {
	return adminView{AdminAccount: a, Status: a.Status()}
}

// AdminsHandler handles super-admin management of admin accounts.
type AdminsHandler struct {
	admins *service.AdminService
}

// NewAdminsHandler creates a new AdminsHandler.
func NewAdminsHandler(admins *service.AdminService) *AdminsHandler {
	return &AdminsHandler{admins: admins}
}

func parseAdminID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, domain.ErrValidation("invalid admin id")
	}
	return id, nil
}

// List handles GET /admin/admins.
func (h *AdminsHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.admins.List(r.Context(), auth.ActorFromContext(r.Context()))
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	views := make([]adminView, 0, len(admins))
	for i := range admins {
		views = append(views, viewOf(&admins[i]))
	}
	handler.RespondJSON(w, http.StatusOK, views)
}

// Create handles POST /admin/admins.
func (h *AdminsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateAdminInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondBadBody(w)
		return
	}

	admin, err := h.admins.Create(r.Context(), auth.ActorFromContext(r.Context()), input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, viewOf(admin))
}

// Get handles GET /admin/admins/{id}.
func (h *AdminsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseAdminID(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	admin, err := h.admins.Get(r.Context(), auth.ActorFromContext(r.Context()), id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, viewOf(admin))
}

// Update handles PATCH /admin/admins/{id}.
func (h *AdminsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseAdminID(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	var input service.UpdateAdminInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondBadBody(w)
		return
	}

	admin, err := h.admins.Update(r.Context(), auth.ActorFromContext(r.Context()), id, input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, viewOf(admin))
}

// Delete handles DELETE /admin/admins/{id}.
func (h *AdminsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseAdminID(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	if err := h.admins.Delete(r.Context(), auth.ActorFromContext(r.Context()), id); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusNoContent, nil)
}

// ResetPassword handles POST /admin/admins/{id}/reset-password. The generated
// password appears in this response only.
func (h *AdminsHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := parseAdminID(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	reset, err := h.admins.ResetPassword(r.Context(), auth.ActorFromContext(r.Context()), id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"password": reset.Password,
		"admin":    viewOf(reset.Admin),
	})
}
