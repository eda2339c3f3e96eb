package auth

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testJWTSecret  = "jwt-secret"
	testCronSecret = "cron-secret"
)

func TestResolve(t *testing.T) {
	a := NewAuthenticator(testJWTSecret, testCronSecret)
	token, err := a.MintToken("user-1", "editor@example.com", time.Hour)
	require.NoError(t, err)

	expired, err := a.MintToken("user-1", "editor@example.com", -time.Hour)
	require.NoError(t, err)

	foreign, err := NewAuthenticator("other-secret", "").MintToken("user-1", "", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
		cronHeader    string
		want          *Principal
		wantErr       bool
	}{
		{name: "cron header", cronHeader: testCronSecret, want: &Principal{Internal: true}},
		{name: "cron bearer", authorization: "Bearer " + testCronSecret, want: &Principal{Internal: true}},
		{name: "wrong cron header", cronHeader: "nope", wantErr: true},
		{name: "user token", authorization: "Bearer " + token, want: &Principal{UserID: "user-1", Email: "editor@example.com"}},
		{name: "lowercase scheme", authorization: "bearer " + token, want: &Principal{UserID: "user-1", Email: "editor@example.com"}},
		{name: "expired token", authorization: "Bearer " + expired, wantErr: true},
		{name: "foreign token", authorization: "Bearer " + foreign, wantErr: true},
		{name: "basic scheme", authorization: "Basic abc", wantErr: true},
		{name: "no credentials", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := a.Resolve(tt.authorization, tt.cronHeader)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnauthorized))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	a := NewAuthenticator(testJWTSecret, testCronSecret)
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = a.ValidateToken(signed)
	assert.Error(t, err)
}

func TestTokensDisabledWithoutSecret(t *testing.T) {
	a := NewAuthenticator("", testCronSecret)
	_, err := a.MintToken("user-1", "", time.Hour)
	assert.Error(t, err)

	p, err := a.Resolve("Bearer "+testCronSecret, "")
	require.NoError(t, err)
	assert.True(t, p.Internal)
}

func TestAuthorize(t *testing.T) {
	assert.ErrorIs(t, Authorize(nil, "user-1"), ErrUnauthorized)
	assert.NoError(t, Authorize(&Principal{Internal: true}, ""))
	assert.NoError(t, Authorize(&Principal{UserID: "user-1"}, "user-1"))
	assert.ErrorIs(t, Authorize(&Principal{UserID: "user-2"}, "user-1"), ErrForbidden)
	assert.ErrorIs(t, Authorize(&Principal{UserID: "user-1"}, ""), ErrForbidden)
}

func TestMiddlewares(t *testing.T) {
	a := NewAuthenticator(testJWTSecret, testCronSecret)
	token, err := a.MintToken("user-1", "", time.Hour)
	require.NoError(t, err)

	app := fiber.New()
	whoami := func(c *fiber.Ctx) error {
		p := PrincipalFrom(c)
		if p.Internal {
			return c.SendString("internal")
		}
		return c.SendString(p.UserID)
	}
	app.Get("/user", a.Required(), whoami)
	app.Get("/cron", a.CronOnly(), whoami)

	tests := []struct {
		name       string
		path       string
		header     string
		value      string
		wantStatus int
		wantBody   string
	}{
		{"user with token", "/user", fiber.HeaderAuthorization, "Bearer " + token, fiber.StatusOK, "user-1"},
		{"user with cron secret", "/user", CronSecretHeader, testCronSecret, fiber.StatusOK, "internal"},
		{"user without credentials", "/user", "", "", fiber.StatusUnauthorized, ""},
		{"cron with secret", "/cron", fiber.HeaderAuthorization, "Bearer " + testCronSecret, fiber.StatusOK, "internal"},
		{"cron with user token", "/cron", fiber.HeaderAuthorization, "Bearer " + token, fiber.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, tt.wantBody, string(body))
			}
		})
	}
}
