package models

import (
	"fmt"
	"time"
)

// NotificationType tags what a notification refers to.
type NotificationType string

const (
	NotificationFriendRequest         NotificationType = "FRIEND_REQUEST"
	NotificationFriendRequestAccepted NotificationType = "FRIEND_REQUEST_ACCEPTED"
	NotificationComment               NotificationType = "COMMENT"
	NotificationLikePost              NotificationType = "LIKE_POST"
)

// Notification is a single inbox entry.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index:idx_notifications_user_created" json:"userId"`
	Type      NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	URL       string           `gorm:"column:url" json:"url"`
	Content   string           `gorm:"type:text;not null" json:"content"`
	IsRead    bool             `gorm:"default:false" json:"isRead"`
	CreatedAt time.Time        `gorm:"index:idx_notifications_user_created" json:"createdAt"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// UserURL is the client route of a user profile.
func UserURL(userID uint) string {
	return fmt.Sprintf("/user/%d", userID)
}

// PostURL is the client route of a post.
func PostURL(postID uint) string {
	return fmt.Sprintf("/post/%d", postID)
}

// FriendRequestNotification is addressed to the receiver of a new request.
func FriendRequestNotification(sender User, receiverID uint) Notification {
	return Notification{
		UserID:  receiverID,
		Type:    NotificationFriendRequest,
		URL:     UserURL(receiverID),
		Content: fmt.Sprintf("%s has sent you a friend request", sender.Username),
	}
}

// AcceptedNotifications returns the pair sent when a request is accepted:
// the first to the original sender, the second to the original receiver.
func AcceptedNotifications(sender, receiver User) (Notification, Notification) {
	toSender := Notification{
		UserID:  sender.ID,
		Type:    NotificationFriendRequestAccepted,
		URL:     UserURL(receiver.ID),
		Content: fmt.Sprintf("%s has accepted your friend request", receiver.Username),
	}
	toReceiver := Notification{
		UserID:  receiver.ID,
		Type:    NotificationFriendRequestAccepted,
		URL:     UserURL(sender.ID),
		Content: fmt.Sprintf("you are now friend with %s", sender.Username),
	}
	return toSender, toReceiver
}

// CommentNotification is addressed to the author of the commented post.
func CommentNotification(commenter User, post Post) Notification {
	return Notification{
		UserID:  post.UserID,
		Type:    NotificationComment,
		URL:     PostURL(post.ID),
		Content: fmt.Sprintf("%s commented on your post", commenter.Username),
	}
}

// LikeNotification is addressed to the author of the liked post.
func LikeNotification(liker User, post Post) Notification {
	return Notification{
		UserID:  post.UserID,
		Type:    NotificationLikePost,
		URL:     PostURL(post.ID),
		Content: fmt.Sprintf("%s liked your post", liker.Username),
	}
}

// NotificationPage is one page of a user's inbox.
type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	Page          int            `json:"page"`
	Limit         int            `json:"limit"`
	Total         int64          `json:"total"`
	Unread        int64          `json:"unread"`
}
