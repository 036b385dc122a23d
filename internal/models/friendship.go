package models

import (
	"time"
)

// FriendRequestStatus represents the lifecycle state of a friend request.
type FriendRequestStatus string

const (
	// FriendRequestPending is the only state a request is created in.
	FriendRequestPending FriendRequestStatus = "PENDING"
	// FriendRequestAccepted is terminal; the row is kept as proof of friendship.
	FriendRequestAccepted FriendRequestStatus = "ACCEPTED"
	// FriendRequestDeclined is terminal and covers decline, cancel and unfriend.
	FriendRequestDeclined FriendRequestStatus = "DECLINED"
)

// CanTransition reports whether a request may move from s to next.
// PENDING may become ACCEPTED or DECLINED; ACCEPTED may only become DECLINED (unfriend).
func (s FriendRequestStatus) CanTransition(next FriendRequestStatus) bool {
	switch s {
	case FriendRequestPending:
		return next == FriendRequestAccepted || next == FriendRequestDeclined
	case FriendRequestAccepted:
		return next == FriendRequestDeclined
	default:
		return false
	}
}

// Active reports whether the request still counts toward the one-per-pair limit.
func (s FriendRequestStatus) Active() bool {
	return s == FriendRequestPending || s == FriendRequestAccepted
}

// FriendRequest is a directed request from Sender to Receiver.
type FriendRequest struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	SenderID       uint                `gorm:"not null;index:idx_friend_requests_pair" json:"senderId"`
	ReceiverID     uint                `gorm:"not null;index:idx_friend_requests_pair" json:"receiverId"`
	Status         FriendRequestStatus `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"status"`
	NotificationID *uint               `json:"notificationId"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`

	Sender   User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	Receiver User `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"receiver,omitempty"`
}

// TableName specifies the table name for GORM
func (FriendRequest) TableName() string {
	return "friend_requests"
}

// Friendship is one directed edge of a friendship; every friendship has two.
type Friendship struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_friendship_users" json:"userId"`
	FriendID  uint      `gorm:"not null;uniqueIndex:idx_friendship_users" json:"friendId"`
	CreatedAt time.Time `json:"createdAt"`

	Friend *User `gorm:"foreignKey:FriendID;constraint:OnDelete:CASCADE" json:"friend,omitempty"`
}

// TableName specifies the table name for GORM
func (Friendship) TableName() string {
	return "friendships"
}

// FriendshipPair returns both directed rows for the unordered pair (a, b).
func FriendshipPair(a, b uint) []Friendship {
	return []Friendship{
		{UserID: a, FriendID: b},
		{UserID: b, FriendID: a},
	}
}

// Relationship is the state of a pair of users as seen from one side.
type Relationship string

const (
	RelationshipNone     Relationship = "NONE"
	RelationshipSent     Relationship = "SENT"
	RelationshipReceived Relationship = "RECEIVED"
	RelationshipFriends  Relationship = "FRIENDS"
)

// ResolveRelationship derives the relationship between viewer and other from
// the requests exchanged between them. ACCEPTED in either direction wins over
// any PENDING request; direction of a PENDING request decides SENT vs RECEIVED.
func ResolveRelationship(viewer, other uint, requests []FriendRequest) (Relationship, *FriendRequest) {
	var sent, received *FriendRequest
	for i := range requests {
		r := &requests[i]
		switch r.Status {
		case FriendRequestAccepted:
			if (r.SenderID == viewer && r.ReceiverID == other) || (r.SenderID == other && r.ReceiverID == viewer) {
				return RelationshipFriends, r
			}
		case FriendRequestPending:
			if r.SenderID == viewer && r.ReceiverID == other && sent == nil {
				sent = r
			} else if r.SenderID == other && r.ReceiverID == viewer && received == nil {
				received = r
			}
		}
	}
	if sent != nil {
		return RelationshipSent, sent
	}
	if received != nil {
		return RelationshipReceived, received
	}
	return RelationshipNone, nil
}

// RelationshipView is returned by the is-friend query.
type RelationshipView struct {
	Status           Relationship `json:"status"`
	RequestID        uint         `json:"requestId,omitempty"`
	SenderUsername   string       `json:"senderUsername"`
	ReceiverUsername string       `json:"receiverUsername"`
}

// FriendRequestView projects a request with the counterpart's public profile.
type FriendRequestView struct {
	ID        uint                `json:"id"`
	Status    FriendRequestStatus `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
	User      UserSummary         `json:"user"`
}

// FriendsOverview is the aggregate returned for a user's friends page.
type FriendsOverview struct {
	Friends          []UserSummary       `json:"friends"`
	ReceivedRequests []FriendRequestView `json:"receivedRequests"`
	SentRequests     []FriendRequestView `json:"sentRequests"`
}
