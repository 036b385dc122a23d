package server

import (
	"github.com/huzidev/dev-forum-api/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type friendTargetRequest struct {
	ReceiverID uint `json:"receiverId"`
	SenderID   uint `json:"senderId"`
	UserID     uint `json:"userId"`
}

// GetFriends handles GET /api/friends/:userId
func (s *Server) GetFriends(c *fiber.Ctx) error {
	userID, err := s.userIDParam(c)
	if err != nil {
		return nil
	}
	overview, err := s.friends.ListFriends(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(overview)
}

// GetSentRequests handles GET /api/friends/sent/:userId
func (s *Server) GetSentRequests(c *fiber.Ctx) error {
	user, err := s.userByExternalParam(c)
	if err != nil {
		return nil
	}
	requests, err := s.friends.ListSentRequests(c.UserContext(), user.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(requests)
}

// GetReceivedRequests handles GET /api/friends/received/:userId
func (s *Server) GetReceivedRequests(c *fiber.Ctx) error {
	user, err := s.userByExternalParam(c)
	if err != nil {
		return nil
	}
	requests, err := s.friends.ListReceivedRequests(c.UserContext(), user.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(requests)
}

// GetRelationship handles POST /api/friends/is-friend
// @Summary Relationship between the caller and another user
// @Tags friends
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.RelationshipView
// @Router /friends/is-friend [post]
func (s *Server) GetRelationship(c *fiber.Ctx) error {
	var req friendTargetRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	if err := requireBodyID(c, req.ReceiverID, "receiverId"); err != nil {
		return nil
	}
	view, err := s.friends.QueryRelationship(c.UserContext(), middleware.CurrentUser(c).ID, req.ReceiverID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// SendFriendRequest handles POST /api/friends/sent-request
func (s *Server) SendFriendRequest(c *fiber.Ctx) error {
	var req friendTargetRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	if err := requireBodyID(c, req.ReceiverID, "receiverId"); err != nil {
		return nil
	}
	request, err := s.friends.SendRequest(c.UserContext(), middleware.CurrentUser(c), req.ReceiverID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(request)
}

// AcceptFriendRequest handles POST /api/friends/accept-request
func (s *Server) AcceptFriendRequest(c *fiber.Ctx) error {
	var req friendTargetRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	if err := requireBodyID(c, req.SenderID, "senderId"); err != nil {
		return nil
	}
	request, err := s.friends.AcceptRequest(c.UserContext(), middleware.CurrentUser(c), req.SenderID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(request)
}

// CancelFriendRequest handles DELETE /api/friends/cancel-request. It declines
// an incoming request, withdraws an outgoing one, or ends a friendship.
func (s *Server) CancelFriendRequest(c *fiber.Ctx) error {
	var req friendTargetRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	if err := requireBodyID(c, req.UserID, "userId"); err != nil {
		return nil
	}
	status, err := s.friends.CancelRequest(c.UserContext(), middleware.CurrentUser(c), req.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"status": status})
}

// DeleteFriendRequest handles DELETE /api/friends/request/:id
func (s *Server) DeleteFriendRequest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	request, err := s.friends.DeleteRequest(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(request)
}
