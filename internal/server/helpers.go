package server

import (
	"errors"
	"strings"
	"unicode"

	"github.com/huzidev/dev-forum-api/internal/middleware"
	"github.com/huzidev/dev-forum-api/internal/models"
	"github.com/huzidev/dev-forum-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	headerWebhookSignature = "clerk-signature"
	headerWebhookOrigin    = "x-clerk-origin"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed page/limit query parameters.
type Pagination struct {
	Page  int
	Limit int
}

// parsePagination reads page and limit, applying the service defaults and caps.
func parsePagination(c *fiber.Ctx) Pagination {
	page, limit := service.Page(c.QueryInt("page", 1), c.QueryInt("limit", 0))
	return Pagination{Page: page, Limit: limit}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "userId" -> "Invalid user ID", "commentId" -> "Invalid comment ID").
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "commentId" -> "comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// bindJSON parses the body into dst, writing a 400 on malformed input.
func bindJSON(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// requireBodyID writes a 400 unless id is a positive id named field.
func requireBodyID(c *fiber.Ctx, id uint, field string) error {
	if id == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(field+" is required"))
		return errResponseWritten
	}
	return nil
}

// respondServiceError writes err with the status of its AppError code.
// Anything that is not an AppError is logged and reported as internal.
func respondServiceError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError(err)
	}
	status := models.StatusFor(appErr.Code)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"error", err, "method", c.Method(), "path", c.Path())
	}
	return models.RespondWithError(c, status, appErr)
}

// requireSelfOrAdmin writes a 403 unless the caller is userID or an admin.
func requireSelfOrAdmin(c *fiber.Ctx, userID uint) error {
	caller := middleware.CurrentUser(c)
	if caller == nil || (caller.ID != userID && !caller.IsAdmin()) {
		_ = models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only access your own data"))
		return errResponseWritten
	}
	return nil
}

// userByExternalParam resolves the :userId route parameter (an identity
// provider id) to a local user.
func (s *Server) userByExternalParam(c *fiber.Ctx) (*models.User, error) {
	externalID := strings.TrimSpace(c.Params("userId"))
	if externalID == "" {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid user ID"))
		return nil, errResponseWritten
	}
	user, err := s.users.GetByExternalID(c.UserContext(), externalID)
	if err != nil {
		_ = respondServiceError(c, err)
		return nil, errResponseWritten
	}
	return user, nil
}

// userIDParam accepts both numeric ids and identity-provider ids for :userId.
func (s *Server) userIDParam(c *fiber.Ctx) (uint, error) {
	if id, err := c.ParamsInt("userId"); err == nil && id > 0 {
		return uint(id), nil
	}
	user, err := s.userByExternalParam(c)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}
