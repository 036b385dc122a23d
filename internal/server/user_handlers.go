package server

import (
	"github.com/huzidev/dev-forum-api/internal/middleware"
	"github.com/huzidev/dev-forum-api/internal/models"
	"github.com/huzidev/dev-forum-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

func webhookOrigin(c *fiber.Ctx) string {
	if origin := c.Get(headerWebhookOrigin); origin != "" {
		return origin
	}
	return c.Get(fiber.HeaderOrigin)
}

// IdentityWebhook handles POST /api/auth/create-user
// @Summary Apply an identity provider webhook
// @Tags users
// @Accept json
// @Produce json
// @Param clerk-signature header string true "hex HMAC-SHA256 of the body"
// @Success 200 {object} service.WebhookResult
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/create-user [post]
func (s *Server) IdentityWebhook(c *fiber.Ctx) error {
	result, err := s.identity.HandleWebhook(c.UserContext(), c.Body(), c.Get(headerWebhookSignature), webhookOrigin(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	status := fiber.StatusOK
	if result.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(result)
}

// CreateUserIfNotExists handles POST /api/users/create
func (s *Server) CreateUserIfNotExists(c *fiber.Ctx) error {
	body := c.Body()
	admin, err := s.identity.Verify(body, c.Get(headerWebhookSignature), webhookOrigin(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	var in service.UserInput
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	in.Role = models.RoleUser
	if admin {
		in.Role = models.RoleAdmin
	}

	user, created, err := s.users.CreateIfNotExists(c.UserContext(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"user": user, "created": created})
}

// ListUsers handles GET /api/users
func (s *Server) ListUsers(c *fiber.Ctx) error {
	users, err := s.users.ListWithStats(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// ListEnrolledUsers handles GET /api/users/enrolled
func (s *Server) ListEnrolledUsers(c *fiber.Ctx) error {
	users, err := s.users.ListEnrolled(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// GetUserByExternalID handles GET /api/users/clerk/:userId
func (s *Server) GetUserByExternalID(c *fiber.Ctx) error {
	user, err := s.userByExternalParam(c)
	if err != nil {
		return nil
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get a user with posts, questions and points
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.UserProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	profile, err := s.users.GetProfile(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// GetUserPoints handles GET /api/users/:id/points
func (s *Server) GetUserPoints(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	points, err := s.points.UserPoints(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(points)
}

// GetUserFriends handles GET /api/users/:id/friends
func (s *Server) GetUserFriends(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	friends, err := s.users.Friends(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(friends)
}

// UpdateUser handles PUT /api/users/:userId
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	caller := middleware.CurrentUser(c)
	externalID := c.Params("userId")
	if caller.ExternalID != externalID && !caller.IsAdmin() {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only update your own profile"))
	}

	var in service.UserInput
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	in.ExternalID = externalID
	if !caller.IsAdmin() {
		in.Role = ""
	}

	user, err := s.users.UpdateByExternalID(c.UserContext(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/users/:userId
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	caller := middleware.CurrentUser(c)
	externalID := c.Params("userId")
	if caller.ExternalID != externalID && !caller.IsAdmin() {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only delete your own account"))
	}
	if err := s.users.DeleteByExternalID(c.UserContext(), externalID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// ToggleEnrollment handles PUT /api/users/:id/enrollment
func (s *Server) ToggleEnrollment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	state, err := s.users.ToggleEnrollment(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"state": state})
}

// ToggleBan handles PUT /api/users/:id/ban
func (s *Server) ToggleBan(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	state, err := s.users.ToggleBan(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"state": state})
}
