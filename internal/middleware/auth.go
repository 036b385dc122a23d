// Package middleware provides authentication, logging, tracing and rate limiting for the HTTP layer.
package middleware

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huzidev/dev-forum-api/internal/config"
	"github.com/huzidev/dev-forum-api/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// UserResolver maps an identity-provider user id to the local user row.
type UserResolver interface {
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
}

// TokenVerifier validates identity-provider session tokens. RS256 tokens are
// checked against the user or admin instance key depending on the request
// origin; HS256 tokens are accepted when a shared secret is configured.
type TokenVerifier struct {
	secret   []byte
	userKey  *rsa.PublicKey
	adminKey *rsa.PublicKey
	issuer   string
	cfg      *config.Config
}

// NewTokenVerifier builds a verifier from the identity settings in cfg.
func NewTokenVerifier(cfg *config.Config) (*TokenVerifier, error) {
	v := &TokenVerifier{issuer: cfg.ClerkIssuer, cfg: cfg}
	if cfg.ClerkJWTSecret != "" {
		v.secret = []byte(cfg.ClerkJWTSecret)
	}
	if cfg.ClerkJWTPublicKey != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.ClerkJWTPublicKey))
		if err != nil {
			return nil, fmt.Errorf("parse CLERK_JWT_PUBLIC_KEY: %w", err)
		}
		v.userKey = key
	}
	if cfg.ClerkAdminJWTPublicKey != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.ClerkAdminJWTPublicKey))
		if err != nil {
			return nil, fmt.Errorf("parse CLERK_ADMIN_JWT_PUBLIC_KEY: %w", err)
		}
		v.adminKey = key
	}
	return v, nil
}

// Verify parses tokenString and returns its subject (the external user id).
func (v *TokenVerifier) Verify(tokenString, origin string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "HS256"}),
		jwt.WithLeeway(5 * time.Second),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		switch t.Method.(type) {
		case *jwt.SigningMethodRSA:
			if v.adminKey != nil && v.cfg != nil && v.cfg.IsAdminOrigin(origin) {
				return v.adminKey, nil
			}
			if v.userKey != nil {
				return v.userKey, nil
			}
		case *jwt.SigningMethodHMAC:
			if len(v.secret) > 0 {
				return v.secret, nil
			}
		}
		return nil, errors.New("no key for signing method")
	}, opts...)
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired token")
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		// browser clients send the session cookie instead
		if cookie := c.Cookies("__session"); cookie != "" {
			return cookie, nil
		}
		return "", errors.New("Authorization header required")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("Invalid authorization header format")
	}
	return parts[1], nil
}

func requestOrigin(c *fiber.Ctx) string {
	if origin := c.Get(fiber.HeaderOrigin); origin != "" {
		return origin
	}
	return c.Get(fiber.HeaderXForwardedHost)
}

// Authenticate resolves the caller from the bearer token and stores the user
// in Locals "user" and its id in Locals "userID".
func Authenticate(v *TokenVerifier, users UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		return authenticateToken(c, v, users, token)
	}
}

// WebSocketAuthenticate is Authenticate for upgrade requests, which carry the
// token in the "token" query parameter.
func WebSocketAuthenticate(v *TokenVerifier, users UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			var err error
			if token, err = bearerToken(c); err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token required"})
			}
		}
		return authenticateToken(c, v, users, token)
	}
}

func authenticateToken(c *fiber.Ctx, v *TokenVerifier, users UserResolver, token string) error {
	externalID, err := v.Verify(token, requestOrigin(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	user, err := users.GetByExternalID(c.UserContext(), externalID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not registered in DB"})
		}
		Logger.ErrorContext(c.UserContext(), "auth user lookup failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	if user.IsBan {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "User is banned"})
	}

	c.Locals("userID", user.ID)
	c.Locals("user", user)
	c.SetUserContext(WithUserID(c.UserContext(), user.ID))
	return c.Next()
}

// CurrentUser returns the authenticated user, or nil on public routes.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

// AdminRequired rejects callers without the admin role. It must run after Authenticate.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CurrentUser(c).IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Admin access required"})
		}
		return c.Next()
	}
}
