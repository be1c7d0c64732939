package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/designcode/backoffice/internal/domain"
	"github.com/google/uuid"
)

type contextKey string

const (
	claimsKey contextKey = "auth_claims"
	actorKey  contextKey = "auth_actor"
)

// ActorResolver reloads the actor behind a token so that deleted, disabled
// or re-roled admins lose access before their token expires. A nil actor
// means the session is no longer valid.
type ActorResolver func(ctx context.Context, id uuid.UUID) (*domain.Actor, error)

// ClaimsFromContext extracts JWT claims from request context.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// ActorFromContext extracts the authenticated actor from request context.
func ActorFromContext(ctx context.Context) *domain.Actor {
	actor, _ := ctx.Value(actorKey).(*domain.Actor)
	return actor
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor *domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// AuthenticateAdmin returns middleware that validates admin JWT tokens. When
// resolve is non-nil the stored account is consulted on every request and
// its current role replaces the role in the token.
func AuthenticateAdmin(jwtMgr *JWTManager, resolve ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractAndValidate(r, jwtMgr)
			if err != nil {
				writeUnauthorized(w, "invalid or missing token")
				return
			}

			actor, err := claims.Actor()
			if err != nil {
				writeUnauthorized(w, "invalid or missing token")
				return
			}

			if resolve != nil {
				current, err := resolve(r.Context(), actor.ID)
				if err != nil {
					if appErr, ok := domain.AsAppError(err); ok && appErr.Expected() {
						writeUnauthorized(w, "session is no longer valid")
						return
					}
					writeError(w, http.StatusInternalServerError, domain.CodeInternal, "internal server error")
					return
				}
				if current == nil {
					writeUnauthorized(w, "session is no longer valid")
					return
				}
				actor = current
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = WithActor(ctx, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusUnauthorized, domain.CodeUnauthorized, msg)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"code": code, "message": msg})
}

func extractAndValidate(r *http.Request, jwtMgr *JWTManager) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, fmt.Errorf("invalid Authorization format")
	}

	return jwtMgr.ValidateToken(strings.TrimSpace(parts[1]))
}
