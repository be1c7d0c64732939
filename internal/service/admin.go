package service

import (
	"context"
	"log/slog"

	"github.com/designcode/backoffice/internal/credential"
	"github.com/designcode/backoffice/internal/domain"
	"github.com/designcode/backoffice/internal/policy"
	"github.com/designcode/backoffice/internal/repository"
	"github.com/google/uuid"
)

// AdminService manages the administrator lifecycle. Every operation takes the
// acting admin explicitly and asks the policy package before touching storage.
type AdminService struct {
	admins   repository.AdminRepository
	hasher   credential.Hasher
	logger   *slog.Logger
	generate func(length int) (string, error)
}

// NewAdminService creates a new AdminService.
func NewAdminService(admins repository.AdminRepository, hasher credential.Hasher, logger *slog.Logger) *AdminService {
	return &AdminService{
		admins:   admins,
		hasher:   hasher,
		logger:   logger,
		generate: credential.GeneratePassword,
	}
}

// CreateAdminInput holds the fields for a new admin. Role defaults to ADMIN
// and IsActive to true.
type CreateAdminInput struct {
	Email    string  `json:"email" validate:"required,max=254"`
	Name     string  `json:"name" validate:"required"`
	Password string  `json:"password" validate:"required"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// UpdateAdminInput is a partial update; nil fields are left untouched.
type UpdateAdminInput struct {
	Name     *string `json:"name,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	Password *string `json:"password,omitempty"`
}

// ChangePasswordInput holds the fields of a self-service password change.
// Confirm is optional; when present it must equal New.
type ChangePasswordInput struct {
	Current string `json:"current_password" validate:"required"`
	New     string `json:"new_password" validate:"required"`
	Confirm string `json:"confirm_password,omitempty"`
}

// UpdateProfileInput holds the fields an admin may change on their own account.
type UpdateProfileInput struct {
	Name string `json:"name" validate:"required"`
}

// PasswordReset carries a freshly generated password. It is shown once and
// never stored in plaintext.
type PasswordReset struct {
	Password string               `json:"password"`
	Admin    *domain.AdminAccount `json:"admin"`
}

func authorize(actor *domain.Actor, op policy.Operation, target uuid.UUID) error {
	return policy.CanPerform(actor, op, target).Err()
}

// storageErr passes domain errors through and wraps everything else once.
func (s *AdminService) storageErr(op string, err error, attrs ...any) error {
	if appErr, ok := domain.AsAppError(err); ok {
		return appErr
	}
	s.logger.Error("admin storage failure", append([]any{"op", op, "error", err}, attrs...)...)
	return domain.ErrStorage(op, err)
}

func notFound(id uuid.UUID) error {
	return domain.ErrNotFound("admin", id.String())
}

// Create validates and stores a new admin account.
func (s *AdminService) Create(ctx context.Context, actor *domain.Actor, input CreateAdminInput) (*domain.AdminAccount, error) {
	if err := authorize(actor, policy.OpCreateAdmin, uuid.Nil); err != nil {
		return nil, err
	}
	if err := domain.ValidateStruct(input); err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(input.Email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	name, err := domain.NormalizeName(input.Name)
	if err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	role := domain.DefaultRole
	if input.Role != nil {
		if role, err = domain.ParseRole(*input.Role); err != nil {
			return nil, err
		}
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	admin, err := s.admins.Insert(ctx, domain.NewAdmin{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
	})
	if err != nil {
		return nil, s.storageErr("create admin", err, "actor_id", actor.ID)
	}

	s.logger.Info("admin created", "admin_id", admin.ID, "role", admin.Role, "actor_id", actor.ID)
	return admin, nil
}

// Update applies the supplied fields to an admin. An empty patch still
// refreshes updated_at.
func (s *AdminService) Update(ctx context.Context, actor *domain.Actor, id uuid.UUID, input UpdateAdminInput) (*domain.AdminAccount, error) {
	if err := authorize(actor, policy.OpUpdateAdmin, id); err != nil {
		return nil, err
	}

	var update domain.AdminUpdate
	if input.Name != nil {
		name, err := domain.NormalizeName(*input.Name)
		if err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
		update.Name = &name
	}
	if input.Role != nil {
		role, err := domain.ParseRole(*input.Role)
		if err != nil {
			return nil, err
		}
		update.Role = &role
	}
	update.IsActive = input.IsActive
	if input.Password != nil {
		if err := domain.ValidatePassword(*input.Password); err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, domain.ErrInternal("hash password", err)
		}
		update.PasswordHash = &hash
	}

	admin, err := s.admins.UpdateFields(ctx, id, update)
	if err != nil {
		return nil, s.storageErr("update admin", err, "admin_id", id, "actor_id", actor.ID)
	}
	if admin == nil {
		return nil, notFound(id)
	}

	s.logger.Info("admin updated", "admin_id", id, "actor_id", actor.ID, "password_changed", update.PasswordHash != nil)
	return admin, nil
}

// Delete removes an admin. Admins can never delete themselves.
func (s *AdminService) Delete(ctx context.Context, actor *domain.Actor, id uuid.UUID) error {
	if err := authorize(actor, policy.OpDeleteAdmin, id); err != nil {
		return err
	}

	removed, err := s.admins.Delete(ctx, id)
	if err != nil {
		return s.storageErr("delete admin", err, "admin_id", id, "actor_id", actor.ID)
	}
	if !removed {
		return notFound(id)
	}

	s.logger.Info("admin deleted", "admin_id", id, "actor_id", actor.ID)
	return nil
}

// ResetPassword replaces an admin's password with a generated one and
// returns the plaintext once. Any earlier password stops working.
func (s *AdminService) ResetPassword(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*PasswordReset, error) {
	if err := authorize(actor, policy.OpResetPassword, id); err != nil {
		return nil, err
	}

	password, err := s.generate(credential.DefaultGeneratedLength)
	if err != nil {
		return nil, domain.ErrInternal("generate password", err)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	admin, err := s.admins.UpdateFields(ctx, id, domain.AdminUpdate{PasswordHash: &hash})
	if err != nil {
		return nil, s.storageErr("reset password", err, "admin_id", id, "actor_id", actor.ID)
	}
	if admin == nil {
		return nil, notFound(id)
	}

	s.logger.Info("admin password reset", "admin_id", id, "actor_id", actor.ID)
	return &PasswordReset{Password: password, Admin: admin}, nil
}

// ChangeOwnPassword lets an admin replace their own password after proving
// they know the current one.
func (s *AdminService) ChangeOwnPassword(ctx context.Context, actor *domain.Actor, input ChangePasswordInput) error {
	if actor == nil {
		return domain.ErrUnauthorized("authentication required")
	}
	if err := authorize(actor, policy.OpChangeOwnPassword, actor.ID); err != nil {
		return err
	}
	if err := domain.ValidateStruct(input); err != nil {
		return err
	}
	if err := domain.ValidatePassword(input.New); err != nil {
		return domain.ErrValidation(err.Error())
	}
	if input.Confirm != "" && input.Confirm != input.New {
		return domain.ErrValidation("new password and confirmation do not match")
	}

	admin, err := s.admins.FindByID(ctx, actor.ID)
	if err != nil {
		return s.storageErr("find admin", err, "admin_id", actor.ID)
	}
	if admin == nil {
		return notFound(actor.ID)
	}
	if !admin.IsActive {
		return domain.ErrForbidden("account is disabled")
	}
	if !admin.HasCredential() || !s.hasher.Verify(input.Current, *admin.PasswordHash) {
		return domain.ErrValidation("current password is incorrect")
	}

	hash, err := s.hasher.Hash(input.New)
	if err != nil {
		return domain.ErrInternal("hash password", err)
	}
	updated, err := s.admins.UpdateFields(ctx, actor.ID, domain.AdminUpdate{PasswordHash: &hash})
	if err != nil {
		return s.storageErr("change password", err, "admin_id", actor.ID)
	}
	if updated == nil {
		return notFound(actor.ID)
	}

	s.logger.Info("admin changed own password", "admin_id", actor.ID)
	return nil
}

// List returns every admin, newest first.
func (s *AdminService) List(ctx context.Context, actor *domain.Actor) ([]domain.AdminAccount, error) {
	if err := authorize(actor, policy.OpListAdmins, uuid.Nil); err != nil {
		return nil, err
	}
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, s.storageErr("list admins", err, "actor_id", actor.ID)
	}
	if admins == nil {
		admins = []domain.AdminAccount{}
	}
	return admins, nil
}

// Get returns a single admin.
func (s *AdminService) Get(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.AdminAccount, error) {
	if err := authorize(actor, policy.OpViewAdmin, id); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

// GetByEmail returns the admin with the given email. Used by the operator CLI.
func (s *AdminService) GetByEmail(ctx context.Context, actor *domain.Actor, email string) (*domain.AdminAccount, error) {
	if err := authorize(actor, policy.OpViewAdmin, uuid.Nil); err != nil {
		return nil, err
	}
	email = domain.NormalizeEmail(email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		return nil, s.storageErr("find admin", err)
	}
	if admin == nil {
		return nil, domain.ErrNotFound("admin", email)
	}
	return admin, nil
}

// GetProfile returns the actor's own account.
func (s *AdminService) GetProfile(ctx context.Context, actor *domain.Actor) (*domain.AdminAccount, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized("authentication required")
	}
	if err := authorize(actor, policy.OpViewOwnProfile, actor.ID); err != nil {
		return nil, err
	}
	return s.find(ctx, actor.ID)
}

// UpdateProfile changes the actor's own display name.
func (s *AdminService) UpdateProfile(ctx context.Context, actor *domain.Actor, input UpdateProfileInput) (*domain.AdminAccount, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized("authentication required")
	}
	if err := authorize(actor, policy.OpUpdateOwnProfile, actor.ID); err != nil {
		return nil, err
	}
	name, err := domain.NormalizeName(input.Name)
	if err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	admin, err := s.admins.UpdateFields(ctx, actor.ID, domain.AdminUpdate{Name: &name})
	if err != nil {
		return nil, s.storageErr("update profile", err, "admin_id", actor.ID)
	}
	if admin == nil {
		return nil, notFound(actor.ID)
	}
	return admin, nil
}

func (s *AdminService) find(ctx context.Context, id uuid.UUID) (*domain.AdminAccount, error) {
	admin, err := s.admins.FindByID(ctx, id)
	if err != nil {
		return nil, s.storageErr("find admin", err, "admin_id", id)
	}
	if admin == nil {
		return nil, notFound(id)
	}
	return admin, nil
}
