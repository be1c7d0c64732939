package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Validator Tests ---

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
		errMsg  string
	}{
		{"valid email", "user@example.com", false, ""},
		{"valid email with dots", "first.last@example.co.uk", false, ""},
		{"valid email with plus", "user+tag@example.com", false, ""},
		{"valid email with dash", "user-name@exam-ple.com", false, ""},
		{"empty string", "", true, "email is required"},
		{"no at sign", "userexample.com", true, "invalid email format"},
		{"no domain", "user@", true, "invalid email format"},
		{"no user", "@example.com", true, "invalid email format"},
		{"double at", "user@@example.com", true, "invalid email format"},
		{"no tld", "user@example", true, "invalid email format"},
		{"single char tld", "user@example.c", true, "invalid email format"},
		{"spaces", "user @example.com", true, "invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com\t"))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"exactly minimum", "12345678", false},
		{"one short", "1234567", true},
		{"empty", "", true},
		{"at bcrypt limit", strings.Repeat("a", MaxPasswordLength), false},
		{"over bcrypt limit", strings.Repeat("a", MaxPasswordLength+1), true},
		{"four two-byte characters", "éééé", true},
		{"eight two-byte characters", "éééééééé", false},
		{"multi-byte over bcrypt limit", strings.Repeat("é", 37), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	name, err := NormalizeName("  Ana Souza ")
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", name)

	_, err = NormalizeName("   ")
	assert.EqualError(t, err, "name is required")

	_, err = NormalizeName(strings.Repeat("x", MaxNameLength+1))
	assert.Error(t, err)
}

func TestValidateStruct(t *testing.T) {
	type input struct {
		Email string `json:"email" validate:"required,email"`
		Role  Role   `json:"role" validate:"omitempty,oneof=SUPPORT ADMIN SUPER_ADMIN"`
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(input{Email: "a@x.com", Role: RoleAdmin}))
	})

	t.Run("missing field uses json name", func(t *testing.T) {
		err := ValidateStruct(input{})
		require.Error(t, err)
		assert.True(t, HasCode(err, CodeValidation))
		assert.Contains(t, err.Error(), "email")
	})

	t.Run("unknown role", func(t *testing.T) {
		err := ValidateStruct(input{Email: "a@x.com", Role: "OWNER"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "role")
	})
}

// --- Role Tests ---

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"SUPPORT", "admin", " Super_Admin "} {
		r, err := ParseRole(raw)
		require.NoError(t, err, raw)
		assert.True(t, r.Valid())
	}

	_, err := ParseRole("viewer")
	assert.True(t, HasCode(err, CodeValidation))
}

func TestAllRoles(t *testing.T) {
	assert.Equal(t, []Role{RoleSupport, RoleAdmin, RoleSuperAdmin}, AllRoles())
	assert.Equal(t, RoleAdmin, DefaultRole)
}

// --- AdminAccount Tests ---

func TestAdminAccount_Status(t *testing.T) {
	hash := "$2a$10$abcdefghijklmnopqrstuv"
	empty := ""

	tests := []struct {
		name    string
		account AdminAccount
		want    AccountStatus
	}{
		{"active with hash", AdminAccount{IsActive: true, PasswordHash: &hash}, StatusActive},
		{"active without hash", AdminAccount{IsActive: true}, StatusNoCredential},
		{"active with empty hash", AdminAccount{IsActive: true, PasswordHash: &empty}, StatusNoCredential},
		{"disabled with hash", AdminAccount{IsActive: false, PasswordHash: &hash}, StatusDisabled},
		{"disabled without hash", AdminAccount{IsActive: false}, StatusDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.account.Status())
			assert.Equal(t, tt.want == StatusActive, tt.account.CanAuthenticate())
		})
	}
}

func TestAdminAccount_IdentityOmitsHash(t *testing.T) {
	hash := "secret-hash"
	a := AdminAccount{ID: uuid.New(), Email: "a@x.com", Name: "A", PasswordHash: &hash, Role: RoleAdmin}

	id := a.Identity()
	assert.Equal(t, a.ID, id.ID)
	assert.Equal(t, RoleAdmin, id.Role)
	assert.NotContains(t, fmt.Sprintf("%+v", id), hash)
}

func TestAdminUpdate_Empty(t *testing.T) {
	assert.True(t, AdminUpdate{}.Empty())
	name := "x"
	assert.False(t, AdminUpdate{Name: &name}.Empty())
}

func TestSystemActor(t *testing.T) {
	a := SystemActor()
	assert.Equal(t, uuid.Nil, a.ID)
	assert.Equal(t, RoleSuperAdmin, a.Role)
}

// --- AppError Tests ---

func TestAppError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := ErrNotFound("admin", "abc-123")
		assert.Equal(t, "NOT_FOUND: admin abc-123 not found", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := ErrStorage("find admin", cause)
		assert.Contains(t, err.Error(), "STORAGE_ERROR")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrStorage("wrapped", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrSelfDeletion())
	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeSelfDeletion, appErr.Code)
	assert.True(t, HasCode(wrapped, CodeSelfDeletion))

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)
}

func TestErrorFactories(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"ErrInvalidCredentials", ErrInvalidCredentials(), "INVALID_CREDENTIALS", 401},
		{"ErrDuplicateEmail", ErrDuplicateEmail("a@x.com"), "DUPLICATE_EMAIL", 409},
		{"ErrNotFound", ErrNotFound("admin", "123"), "NOT_FOUND", 404},
		{"ErrSelfDeletion", ErrSelfDeletion(), "SELF_DELETION", 400},
		{"ErrValidation", ErrValidation("bad input"), "VALIDATION_ERROR", 400},
		{"ErrUnauthorized", ErrUnauthorized("no token"), "UNAUTHORIZED", 401},
		{"ErrForbidden", ErrForbidden("not allowed"), "FORBIDDEN", 403},
		{"ErrAccountLocked", ErrAccountLocked("too many attempts"), "ACCOUNT_LOCKED", 429},
		{"ErrStorage", ErrStorage("insert admin", nil), "STORAGE_ERROR", 500},
		{"ErrInternal", ErrInternal("oops", nil), "INTERNAL_ERROR", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.Status)
			assert.NotEmpty(t, tt.err.Message)
			assert.Equal(t, tt.wantStatus < 500, tt.err.Expected())
		})
	}
}

func TestInvalidCredentialsIsIdentical(t *testing.T) {
	assert.Equal(t, ErrInvalidCredentials(), ErrInvalidCredentials())
}
