package service

import (
	"context"
	"strings"

	"github.com/huzidev/dev-forum-api/internal/models"
)

// NotificationService serves user inboxes.
type NotificationService struct {
	core
}

func NewNotificationService(d Deps) *NotificationService {
	return &NotificationService{core: newCore(d, "notifications")}
}

// Inbox returns a page of a user's notifications, newest first.
func (s *NotificationService) Inbox(ctx context.Context, userID uint, page, limit int) (*models.NotificationPage, error) {
	page, limit = Page(page, limit)
	items, total, err := s.repos.Notifications.ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.repos.Notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Notification{}
	}
	return &models.NotificationPage{Notifications: items, Page: page, Limit: limit, Total: total, Unread: unread}, nil
}

type NotificationInput struct {
	UserID  uint   `json:"userId"`
	Type    string `json:"type"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Create stores a notification for an existing user and pushes it in realtime.
func (s *NotificationService) Create(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	content, err := requireText(in.Content, "Content")
	if err != nil {
		return nil, err
	}
	if in.Type == "" {
		return nil, models.NewValidationError("Type is required")
	}
	if _, err := s.repos.Users.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	n := models.Notification{
		UserID:  in.UserID,
		Type:    models.NotificationType(strings.ToUpper(strings.TrimSpace(in.Type))),
		URL:     strings.TrimSpace(in.URL),
		Content: content,
	}
	created, err := createNotifications(ctx, s.repos.Notifications, n)
	if err != nil {
		return nil, err
	}
	countNotifications(created)
	s.publish(ctx, created)
	return &created[0], nil
}

// MarkRead flags one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, caller *models.User, id uint) (*models.Notification, error) {
	n, err := s.repos.Notifications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(caller, n.UserID, "You can only update your own notifications"); err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}
	if err := s.repos.Notifications.MarkRead(ctx, id); err != nil {
		return nil, err
	}
	n.IsRead = true
	return n, nil
}

// Delete removes the listed notifications. Non-admin callers only remove
// their own rows; ids of other users are skipped. It returns the count removed.
func (s *NotificationService) Delete(ctx context.Context, caller *models.User, ids []uint) (int64, error) {
	if err := requireUser(caller); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, models.NewValidationError("ids must be a non-empty array of notification ids")
	}
	var owner *uint
	if !caller.IsAdmin() {
		owner = &caller.ID
	}
	deleted, err := s.repos.Notifications.DeleteIDs(ctx, ids, owner)
	if err != nil {
		return 0, err
	}
	s.log.InfoContext(ctx, "notifications deleted", "requested", len(ids), "deleted", deleted)
	return deleted, nil
}
