package server

import (
	"context"
	"encoding/json"

	"github.com/huzidev/dev-forum-api/internal/middleware"
	"github.com/huzidev/dev-forum-api/internal/models"
	"github.com/huzidev/dev-forum-api/internal/notifications"
	"github.com/huzidev/dev-forum-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// GetNotifications handles GET /api/notifications/:userId
// @Summary Paginated inbox, newest first
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} models.NotificationPage
// @Router /notifications/{userId} [get]
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	userID, err := s.userIDParam(c)
	if err != nil {
		return nil
	}
	if err := requireSelfOrAdmin(c, userID); err != nil {
		return nil
	}
	page := parsePagination(c)
	inbox, err := s.notifications.Inbox(c.UserContext(), userID, page.Page, page.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(inbox)
}

// CreateNotification handles POST /api/notifications
func (s *Server) CreateNotification(c *fiber.Ctx) error {
	var in service.NotificationInput
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	n, err := s.notifications.Create(c.UserContext(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(n)
}

// MarkNotificationRead handles PUT /api/notifications/:id/mark-as-read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	n, err := s.notifications.MarkRead(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(n)
}

// DeleteNotifications handles DELETE /api/notifications
func (s *Server) DeleteNotifications(c *fiber.Ctx) error {
	var req struct {
		IDs json.RawMessage `json:"ids"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	var ids []uint
	if len(req.IDs) == 0 || json.Unmarshal(req.IDs, &ids) != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("ids must be an array of notification ids"))
	}

	deleted, err := s.notifications.Delete(c.UserContext(), middleware.CurrentUser(c), ids)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

// WebsocketHandler handles GET /api/ws/notifications. The connection receives
// every notification addressed to the authenticated user.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(uint)
		if !ok {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket register failed", "user_id", userID, "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		if inbox, err := s.notifications.Inbox(context.Background(), userID, 1, 1); err == nil {
			hello, _ := json.Marshal(notifications.Event{
				Type:    "connected",
				Payload: fiber.Map{"unread": inbox.Unread},
			})
			client.TrySend(hello)
		}

		go client.WritePump()
		client.ReadPump()
	})
}
