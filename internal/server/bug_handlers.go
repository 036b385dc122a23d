package server

import (
	"github.com/huzidev/dev-forum-api/internal/middleware"
	"github.com/huzidev/dev-forum-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ReportBug handles POST /api/bugs/report
func (s *Server) ReportBug(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	bug, err := s.bugs.Report(c.UserContext(), middleware.CurrentUser(c), service.BugInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(bug)
}

// GetUserBugs handles GET /api/bugs/user/:userId
func (s *Server) GetUserBugs(c *fiber.Ctx) error {
	userID, err := s.userIDParam(c)
	if err != nil {
		return nil
	}
	if err := requireSelfOrAdmin(c, userID); err != nil {
		return nil
	}
	bugs, err := s.bugs.ListByUser(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(bugs)
}

// ListBugs handles GET /api/bugs/get-reported-bugs
func (s *Server) ListBugs(c *fiber.Ctx) error {
	bugs, err := s.bugs.ListAll(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(bugs)
}

// GetBug handles GET /api/bugs/:id
func (s *Server) GetBug(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	bug, err := s.bugs.Get(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(bug)
}

// UpdateBugStatus handles PUT /api/bugs/update-status
func (s *Server) UpdateBugStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	if err := requireBodyID(c, req.ID, "id"); err != nil {
		return nil
	}
	bug, err := s.moderation.UpdateBugStatus(c.UserContext(), middleware.CurrentUser(c), req.ID, req.Status, req.Comment)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(bug)
}
