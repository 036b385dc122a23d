package server

import (
	"strings"

	"github.com/huzidev/dev-forum-api/internal/featureflags"
	"github.com/huzidev/dev-forum-api/internal/middleware"
	"github.com/huzidev/dev-forum-api/internal/models"
	"github.com/huzidev/dev-forum-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Content *string  `json:"content"`
	Type    string   `json:"type"`
	Options []string `json:"options"`
}

type statusRequest struct {
	ID      uint   `json:"id"`
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// GetPosts handles GET /api/posts
// @Summary Paginated feed, newest first, without deleted posts
// @Tags posts
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} service.PostPage
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c)
	posts, err := s.posts.ListPosts(c.UserContext(), page.Page, page.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.posts.GetPost(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts/create-post
// @Summary Create a TEXT, POLL or IMAGE post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/create-post [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	caller := middleware.CurrentUser(c)
	if strings.EqualFold(strings.TrimSpace(req.Type), string(models.PostTypePoll)) &&
		!s.featureFlags.Enabled(featureflags.PollPosts, caller.ID) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Polls are not available for your account yet"))
	}
	in := service.CreatePostInput{Type: req.Type, Options: req.Options}
	if req.Content != nil {
		in.Content = *req.Content
	}
	post, err := s.posts.CreatePost(c.UserContext(), caller, in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req postRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	post, err := s.posts.UpdatePost(c.UserContext(), middleware.CurrentUser(c), service.UpdatePostInput{
		PostID:  id,
		Content: req.Content,
		Options: req.Options,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.posts.DeletePost(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// UpdatePostStatus handles PUT /api/posts/:id/status
func (s *Server) UpdatePostStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req statusRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	post, err := s.moderation.UpdatePostStatus(c.UserContext(), middleware.CurrentUser(c), id, req.Status, req.Comment)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// GetLikes handles GET /api/posts/:id/likes
func (s *Server) GetLikes(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	likes, err := s.engagement.ListLikes(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(likes)
}

// LikePost handles POST /api/posts/:id/like. Liking twice is a no-op.
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	like, err := s.engagement.LikePost(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	if like == nil {
		return c.JSON(fiber.Map{"message": "Post already liked"})
	}
	return c.JSON(like)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.engagement.UnlikePost(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post unliked"})
}

// GetPoll handles GET /api/posts/:id/poll
func (s *Server) GetPoll(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	tally, err := s.engagement.Poll(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(tally)
}

// VotePoll handles POST /api/posts/:id/poll/vote
func (s *Server) VotePoll(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		PollOptionID uint `json:"pollOptionId"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	if err := requireBodyID(c, req.PollOptionID, "pollOptionId"); err != nil {
		return nil
	}
	tally, err := s.engagement.Vote(c.UserContext(), middleware.CurrentUser(c), id, req.PollOptionID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(tally)
}
