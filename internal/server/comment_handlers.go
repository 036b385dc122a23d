package server

import (
	"github.com/huzidev/dev-forum-api/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Content string `json:"content"`
}

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	comments, err := s.comments.ListComments(c.UserContext(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 201 {object} models.Comment
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	comment, err := s.comments.AddComment(c.UserContext(), middleware.CurrentUser(c), postID, req.Content)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT /api/posts/comments/:commentId
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	comment, err := s.comments.UpdateComment(c.UserContext(), middleware.CurrentUser(c), id, req.Content)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/posts/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	comment, err := s.comments.DeleteComment(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// UpdateCommentStatus handles PUT /api/posts/comments/:commentId/status
func (s *Server) UpdateCommentStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	var req statusRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	comment, err := s.moderation.UpdateCommentStatus(c.UserContext(), middleware.CurrentUser(c), id, req.Status, req.Comment)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}
