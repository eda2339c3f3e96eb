// Package auth resolves the caller of a request and checks ownership
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrUnauthorized is returned when no valid credentials were presented
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the caller does not own the resource
	ErrForbidden = errors.New("forbidden")
)

// Principal is the resolved caller of a request
type Principal struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	// Internal is set for callers presenting the shared cron secret
	Internal bool `json:"internal"`
}

// Internal returns the principal used by in-process callers such as the scheduler
func Internal() *Principal {
	return &Principal{Internal: true}
}

// Claims represents JWT claims. The subject is the user ID.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator validates session tokens and the cron secret
type Authenticator struct {
	jwtSecret  []byte
	cronSecret string
}

// NewAuthenticator creates a new authenticator. An empty jwtSecret disables
// user tokens, leaving only the cron secret.
func NewAuthenticator(jwtSecret, cronSecret string) *Authenticator {
	return &Authenticator{
		jwtSecret:  []byte(jwtSecret),
		cronSecret: cronSecret,
	}
}

// Resolve builds the principal from the Authorization header value and the
// X-Cron-Secret header value.
func (a *Authenticator) Resolve(authorization, cronHeader string) (*Principal, error) {
	if cronHeader != "" {
		if a.isCronSecret(cronHeader) {
			return &Principal{Internal: true}, nil
		}
		return nil, fmt.Errorf("%w: invalid cron secret", ErrUnauthorized)
	}

	token, ok := bearerToken(authorization)
	if !ok {
		return nil, fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	}
	if a.isCronSecret(token) {
		return &Principal{Internal: true}, nil
	}

	claims, err := a.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return &Principal{UserID: claims.Subject, Email: claims.Email}, nil
}

// ValidateToken validates a JWT token and returns the claims
func (a *Authenticator) ValidateToken(tokenString string) (*Claims, error) {
	if len(a.jwtSecret) == 0 {
		return nil, errors.New("session tokens are disabled")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// MintToken signs a session token for a user. It is meant for development
// and tooling; production tokens come from the identity provider.
func (a *Authenticator) MintToken(userID, email string, ttl time.Duration) (string, error) {
	if len(a.jwtSecret) == 0 {
		return "", errors.New("session tokens are disabled")
	}
	now := time.Now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// Authorize checks that the principal may act on a resource owned by ownerUserID.
// Resources without an owner are reserved to internal callers.
func Authorize(p *Principal, ownerUserID string) error {
	if p == nil {
		return ErrUnauthorized
	}
	if p.Internal {
		return nil
	}
	if ownerUserID == "" || p.UserID != ownerUserID {
		return ErrForbidden
	}
	return nil
}

func (a *Authenticator) isCronSecret(candidate string) bool {
	if a.cronSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(a.cronSecret)) == 1
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
