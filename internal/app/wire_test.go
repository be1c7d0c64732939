package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/designcode/backoffice/internal/auth"
	"github.com/designcode/backoffice/internal/credential"
	"github.com/designcode/backoffice/internal/domain"
	"github.com/designcode/backoffice/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type testServer struct {
	*httptest.Server
	repo *repository.MemoryAdminRepository
}

func newTestServer(t *testing.T, loginLimit int) *testServer {
	t.Helper()
	repo := repository.NewMemoryAdminRepository()
	hasher := credential.NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("root-password")
	require.NoError(t, err)
	_, err = repo.Insert(context.Background(), domain.NewAdmin{
		Email: "root@x.com", Name: "Root", PasswordHash: hash, Role: domain.RoleSuperAdmin, IsActive: true,
	})
	require.NoError(t, err)

	r := NewRouter(RouterDeps{
		Admins:             repo,
		Attempts:           repository.NewMemoryLoginAttemptRepository(),
		DB:                 okPinger{},
		Hasher:             hasher,
		JWTMgr:             auth.NewJWTManager("router-test-secret-0123456789abcdef", time.Hour),
		Logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		CORSAllowedOrigins: "*",
		LoginRateLimit:     loginLimit,
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, repo: repo}
}

func (s *testServer) call(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var m map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &m))
	}
	return resp, m
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	resp, body := s.call(t, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Bearer", body["token_type"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t, 20)
	resp, body := s.call(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestRouter_AdminRoutesNeedToken(t *testing.T) {
	s := newTestServer(t, 20)
	for _, path := range []string{"/admin/profile", "/admin/admins"} {
		resp, body := s.call(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, "UNAUTHORIZED", body["code"], path)
	}
}

// TestRouter_AdminLifecycle drives the whole lifecycle over HTTP.
func TestRouter_AdminLifecycle(t *testing.T) {
	s := newTestServer(t, 20)
	root := s.login(t, "root@x.com", "root-password")

	resp, body := s.call(t, http.MethodPost, "/admin/admins", root, map[string]string{
		"email": "a@x.com", "name": "A", "password": "password1", "role": "ADMIN",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	id, _ := body["id"].(string)

	tokenA := s.login(t, "a@x.com", "password1")

	resp, body = s.call(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", body["code"])

	resp, body = s.call(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "nobody@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", body["code"])

	// A plain admin cannot manage admins, not even delete itself.
	resp, _ = s.call(t, http.MethodGet, "/admin/admins", tokenA, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, body = s.call(t, http.MethodDelete, "/admin/admins/"+id, tokenA, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "SELF_DELETION", body["code"])

	resp, body = s.call(t, http.MethodGet, "/admin/profile", tokenA, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "a@x.com", body["email"])
	assert.NotNil(t, body["last_login_at"])

	resp, body = s.call(t, http.MethodPost, "/admin/admins/"+id+"/reset-password", root, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	generated, _ := body["password"].(string)
	require.Len(t, generated, credential.DefaultGeneratedLength)
	s.login(t, "a@x.com", generated)

	resp, _ = s.call(t, http.MethodDelete, "/admin/admins/"+id, root, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The deleted admin's token stops working immediately.
	resp, _ = s.call(t, http.MethodGet, "/admin/profile", tokenA, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = s.call(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.com", "password": generated})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", body["code"])
}

func TestRouter_DisabledAdminLosesSession(t *testing.T) {
	s := newTestServer(t, 20)
	root := s.login(t, "root@x.com", "root-password")

	_, body := s.call(t, http.MethodPost, "/admin/admins", root, map[string]string{
		"email": "b@x.com", "name": "B", "password": "password1",
	})
	id, _ := body["id"].(string)
	tokenB := s.login(t, "b@x.com", "password1")

	resp, _ := s.call(t, http.MethodPatch, "/admin/admins/"+id, root, map[string]interface{}{"is_active": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.call(t, http.MethodGet, "/admin/profile", tokenB, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_LoginRateLimitedPerIP(t *testing.T) {
	s := newTestServer(t, 2)
	for i := 0; i < 2; i++ {
		s.call(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "x@x.com", "password": "wrong"})
	}
	resp, body := s.call(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "y@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "ACCOUNT_LOCKED", body["code"])
}
