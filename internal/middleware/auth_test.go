package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/huzidev/dev-forum-api/internal/config"
	"github.com/huzidev/dev-forum-api/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type userResolverStub map[string]*models.User

func (s userResolverStub) GetByExternalID(_ context.Context, externalID string) (*models.User, error) {
	if u, ok := s[externalID]; ok {
		return u, nil
	}
	return nil, models.NewNotFoundError("User", externalID)
}

func signHS(t *testing.T, sub string, exp time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(exp)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestAuthenticate(t *testing.T) {
	verifier, err := NewTokenVerifier(&config.Config{ClerkJWTSecret: testSecret})
	require.NoError(t, err)

	users := userResolverStub{
		"user_123":    {ID: 123, ExternalID: "user_123", Username: "alice"},
		"user_banned": {ID: 9, ExternalID: "user_banned", IsBan: true},
	}

	app := fiber.New()
	app.Get("/test", Authenticate(verifier, users), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": c.Locals("userID"), "username": CurrentUser(c).Username})
	})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"Happy Path", "Bearer " + signHS(t, "user_123", time.Hour), http.StatusOK},
		{"Missing Header", "", http.StatusUnauthorized},
		{"Invalid Format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"Expired Token", "Bearer " + signHS(t, "user_123", -time.Hour), http.StatusUnauthorized},
		{"Unknown User", "Bearer " + signHS(t, "user_404", time.Hour), http.StatusNotFound},
		{"Banned User", "Bearer " + signHS(t, "user_banned", time.Hour), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, float64(123), body["userID"])
				assert.Equal(t, "alice", body["username"])
			}
		})
	}
}

func TestAuthenticateSessionCookie(t *testing.T) {
	verifier, err := NewTokenVerifier(&config.Config{ClerkJWTSecret: testSecret})
	require.NoError(t, err)
	users := userResolverStub{"user_1": {ID: 1, ExternalID: "user_1"}}

	app := fiber.New()
	app.Get("/test", Authenticate(verifier, users), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: "__session", Value: signHS(t, "user_1", time.Minute)})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestVerifyRSAKeyByOrigin(t *testing.T) {
	userPriv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	adminPriv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pemFor := func(k *rsa.PrivateKey) string {
		der, err := x509.MarshalPKIXPublicKey(&k.PublicKey)
		require.NoError(t, err)
		return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	}

	verifier, err := NewTokenVerifier(&config.Config{
		ClerkJWTPublicKey:      pemFor(userPriv),
		ClerkAdminJWTPublicKey: pemFor(adminPriv),
		AdminOrigins:           "admin.forum.test",
	})
	require.NoError(t, err)

	sign := func(k *rsa.PrivateKey) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
			Subject:   "user_rsa",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(k)
		require.NoError(t, err)
		return s
	}

	sub, err := verifier.Verify(sign(userPriv), "https://forum.test")
	require.NoError(t, err)
	assert.Equal(t, "user_rsa", sub)

	sub, err = verifier.Verify(sign(adminPriv), "https://admin.forum.test")
	require.NoError(t, err)
	assert.Equal(t, "user_rsa", sub)

	_, err = verifier.Verify(sign(adminPriv), "https://forum.test")
	assert.Error(t, err)

	// HS256 is refused when no shared secret is configured
	_, err = verifier.Verify(signHS(t, "user_rsa", time.Hour), "")
	assert.Error(t, err)
}

func TestAdminRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", func(c *fiber.Ctx) error {
		if c.Get("X-Role") == "ADMIN" {
			c.Locals("user", &models.User{ID: 1, Role: models.RoleAdmin})
		} else {
			c.Locals("user", &models.User{ID: 2, Role: models.RoleUser})
		}
		return c.Next()
	}, AdminRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-Role", "ADMIN")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
