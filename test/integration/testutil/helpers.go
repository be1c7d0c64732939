//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/designcode/backoffice/internal/domain"
	"github.com/google/uuid"
)

// SeedAdmin inserts an active admin through the repository and returns it.
func (env *TestEnv) SeedAdmin(email, password string, role domain.Role) *domain.AdminAccount {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hash, err := env.Hasher.Hash(password)
	if err != nil {
		env.t.Fatalf("SeedAdmin: hash: %v", err)
	}
	admin, err := env.Admins.Insert(ctx, domain.NewAdmin{
		Email:        domain.NormalizeEmail(email),
		Name:         "Test Admin",
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	})
	if err != nil {
		env.t.Fatalf("SeedAdmin: insert: %v", err)
	}
	return admin
}

// Login authenticates and returns the bearer token.
func (env *TestEnv) Login(email, password string) string {
	env.t.Helper()
	resp := env.POST("/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		env.t.Fatalf("Login: expected 200, got %d: %s", resp.StatusCode, body)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("Login: decode: %v", err)
	}
	return result.Token
}

// SeedSuperAdmin inserts a super admin and logs it in.
func (env *TestEnv) SeedSuperAdmin(email, password string) (token string, id uuid.UUID) {
	env.t.Helper()
	admin := env.SeedAdmin(email, password, domain.RoleSuperAdmin)
	return env.Login(email, password), admin.ID
}

func (env *TestEnv) do(method, path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodGet, path, nil, "")
}

// POST performs a POST request with optional auth token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPost, path, body, token)
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodGet, path, nil, token)
}

// AuthPOST performs an authenticated POST request.
func (env *TestEnv) AuthPOST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPost, path, body, token)
}

// AuthPATCH performs an authenticated PATCH request.
func (env *TestEnv) AuthPATCH(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPatch, path, body, token)
}

// AuthDELETE performs an authenticated DELETE request.
func (env *TestEnv) AuthDELETE(path, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodDelete, path, nil, token)
}
