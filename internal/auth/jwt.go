package auth

import (
	"fmt"
	"time"

	"github.com/designcode/backoffice/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is the iss claim of every session token.
const Issuer = "backoffice"

// Claims holds the custom JWT claims of an admin session.
type Claims struct {
	jwt.RegisteredClaims
	Email string      `json:"email,omitempty"`
	Name  string      `json:"name,omitempty"`
	Role  domain.Role `json:"role"`
}

// Actor converts the claims into the actor passed to services.
func (c *Claims) Actor() (*domain.Actor, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}
	return &domain.Actor{ID: id, Role: c.Role}, nil
}

// JWTManager handles admin session token generation and validation.
type JWTManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewJWTManager creates a JWT manager whose tokens live for expiry.
func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// Expiry returns the token lifetime.
func (m *JWTManager) Expiry() time.Duration { return m.expiry }

// GenerateToken creates a signed JWT for the given identity.
func (m *JWTManager) GenerateToken(identity domain.Identity) (string, error) {
	if !identity.Role.Valid() {
		return "", fmt.Errorf("unknown role: %s", identity.Role)
	}

	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   identity.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			ID:        uuid.New().String(),
		},
		Email: identity.Email,
		Name:  identity.Name,
		Role:  identity.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates a JWT, returning claims if valid.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("unknown role: %s", claims.Role)
	}

	return claims, nil
}
