package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the privilege tier of an administrator account.
type Role string

const (
	RoleSupport    Role = "SUPPORT"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// DefaultRole is assigned when a create request omits the role.
const DefaultRole = RoleAdmin

// AllRoles returns every recognized role, lowest privilege first.
func AllRoles() []Role {
	return []Role{RoleSupport, RoleAdmin, RoleSuperAdmin}
}

// Valid reports whether r is one of the recognized roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSupport, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// ParseRole converts a raw string (case-insensitive) into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrValidation("invalid role: " + s)
	}
	return r, nil
}

// AccountStatus is derived from is_active and password_hash. The two columns
// stay independent; Status only names their combination.
type AccountStatus string

const (
	StatusActive       AccountStatus = "ACTIVE"
	StatusDisabled     AccountStatus = "DISABLED"
	StatusNoCredential AccountStatus = "NO_CREDENTIAL"
)

// AdminAccount represents an admins row.
type AdminAccount struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash *string    `json:"-"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// HasCredential reports whether a non-empty password hash is stored.
func (a *AdminAccount) HasCredential() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

// Status returns the derived account status. A disabled account is reported
// as DISABLED even when it also lacks a credential.
func (a *AdminAccount) Status() AccountStatus {
	switch {
	case !a.IsActive:
		return StatusDisabled
	case !a.HasCredential():
		return StatusNoCredential
	default:
		return StatusActive
	}
}

// CanAuthenticate reports whether the account may log in at all.
func (a *AdminAccount) CanAuthenticate() bool {
	return a.Status() == StatusActive
}

// Identity returns the public projection of the account.
func (a *AdminAccount) Identity() Identity {
	return Identity{ID: a.ID, Email: a.Email, Name: a.Name, Role: a.Role}
}

// Identity is the minimal projection returned by a successful login.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  Role      `json:"role"`
}

// NewAdmin holds the fields for an admins insert. Email must already be
// normalized and PasswordHash produced by the hashing service.
type NewAdmin struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	IsActive     bool
}

// AdminUpdate is a partial update. Nil fields are left untouched; updated_at
// is always refreshed.
type AdminUpdate struct {
	Name         *string
	Role         *Role
	IsActive     *bool
	PasswordHash *string
}

// Empty reports whether no field is set.
func (u AdminUpdate) Empty() bool {
	return u.Name == nil && u.Role == nil && u.IsActive == nil && u.PasswordHash == nil
}

// Actor is the authenticated identity performing an operation. It is passed
// explicitly into every lifecycle and authorization call.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
}

// SystemActor is the bootstrap actor used by the operator CLI. Its nil ID
// never matches a stored account, so the self-deletion guard cannot trip.
func SystemActor() *Actor {
	return &Actor{ID: uuid.Nil, Role: RoleSuperAdmin}
}
