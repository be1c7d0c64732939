package policy

import (
	"github.com/designcode/backoffice/internal/domain"
	"github.com/google/uuid"
)

// Operation names an action on administrator accounts.
type Operation string

const (
	OpCreateAdmin   Operation = "admin.create"
	OpUpdateAdmin   Operation = "admin.update"
	OpDeleteAdmin   Operation = "admin.delete"
	OpResetPassword Operation = "admin.reset_password"
	OpListAdmins    Operation = "admin.list"
	OpViewAdmin     Operation = "admin.view"

	OpViewOwnProfile    Operation = "self.view_profile"
	OpUpdateOwnProfile  Operation = "self.update_profile"
	OpChangeOwnPassword Operation = "self.change_password"
)

// Denial reasons. They go to logs and tests, never into API responses.
const (
	ReasonNoActor          = "no_actor"
	ReasonUnknownRole      = "unknown_role"
	ReasonUnknownOperation = "unknown_operation"
	ReasonInsufficientRole = "insufficient_role"
	ReasonNotSelf          = "not_self"
	ReasonSelfDeletion     = "self_deletion"
)

// Decision is the result of an authorization check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// Err converts a denial into the domain error a caller should see. It returns
// nil for an allowed decision.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonNoActor:
		return domain.ErrUnauthorized("authentication required")
	case ReasonSelfDeletion:
		return domain.ErrSelfDeletion()
	case ReasonNotSelf:
		return domain.ErrForbidden("you can only perform this action on your own account")
	default:
		return domain.ErrForbidden("insufficient role")
	}
}

// kind groups operations by who may perform them.
type kind int

const (
	kindUnknown kind = iota
	kindSuperAdmin
	kindSelf
)

var operationKinds = map[Operation]kind{
	OpCreateAdmin:       kindSuperAdmin,
	OpUpdateAdmin:       kindSuperAdmin,
	OpDeleteAdmin:       kindSuperAdmin,
	OpResetPassword:     kindSuperAdmin,
	OpListAdmins:        kindSuperAdmin,
	OpViewAdmin:         kindSuperAdmin,
	OpViewOwnProfile:    kindSelf,
	OpUpdateOwnProfile:  kindSelf,
	OpChangeOwnPassword: kindSelf,
}

// Operations returns every operation CanPerform recognizes.
func Operations() []Operation {
	return []Operation{
		OpCreateAdmin, OpUpdateAdmin, OpDeleteAdmin, OpResetPassword, OpListAdmins, OpViewAdmin,
		OpViewOwnProfile, OpUpdateOwnProfile, OpChangeOwnPassword,
	}
}

// CanPerform decides whether actor may perform op on the account target.
// Target is ignored for operations that do not address a single account
// (create, list). It has no side effects.
//
// Rules, in order:
//   - a missing actor, or an actor with an unrecognized role, is denied;
//   - deleting oneself is denied for every role, super admins included;
//   - self operations require actor.ID == target, independent of role;
//   - every other operation requires SUPER_ADMIN.
func CanPerform(actor *domain.Actor, op Operation, target uuid.UUID) Decision {
	if actor == nil {
		return deny(ReasonNoActor)
	}
	if !actor.Role.Valid() {
		return deny(ReasonUnknownRole)
	}

	k, ok := operationKinds[op]
	if !ok {
		return deny(ReasonUnknownOperation)
	}

	if op == OpDeleteAdmin && actor.ID == target {
		return deny(ReasonSelfDeletion)
	}

	switch k {
	case kindSelf:
		if actor.ID == uuid.Nil || actor.ID != target {
			return deny(ReasonNotSelf)
		}
		return allow()
	case kindSuperAdmin:
		if actor.Role != domain.RoleSuperAdmin {
			return deny(ReasonInsufficientRole)
		}
		return allow()
	default:
		return deny(ReasonUnknownOperation)
	}
}
