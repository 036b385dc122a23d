package repository

import (
	"context"

	"github.com/huzidev/dev-forum-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendRepository covers friend requests and the symmetric friendship edges.
type FriendRepository interface {
	CreateRequest(ctx context.Context, req *models.FriendRequest) error
	GetRequest(ctx context.Context, id uint) (*models.FriendRequest, error)
	// RequestsBetween returns the PENDING and ACCEPTED requests between a and b in either direction.
	RequestsBetween(ctx context.Context, a, b uint) ([]models.FriendRequest, error)
	LinkNotification(ctx context.Context, requestID, notificationID uint) error
	UpdateRequestStatus(ctx context.Context, id uint, status models.FriendRequestStatus) error
	ListPendingSent(ctx context.Context, userID uint) ([]models.FriendRequest, error)
	ListPendingReceived(ctx context.Context, userID uint) ([]models.FriendRequest, error)

	CreateFriendship(ctx context.Context, a, b uint) error
	DeleteFriendship(ctx context.Context, a, b uint) error
	ListFriends(ctx context.Context, userID uint) ([]models.User, error)
	CountFriends(ctx context.Context, userIDs []uint) (map[uint]int64, error)
}

type friendRepository struct {
	base
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{base{db: db}}
}

func (r *friendRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	return writeErr(r.write(ctx).Omit(clause.Associations).Create(req).Error)
}

func (r *friendRepository) GetRequest(ctx context.Context, id uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := r.read(ctx).First(&req, id).Error; err != nil {
		return nil, lookupErr(err, "Friend request", id)
	}
	return &req, nil
}

func (r *friendRepository) RequestsBetween(ctx context.Context, a, b uint) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := r.read(ctx).
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND status IN ?",
			a, b, b, a, []models.FriendRequestStatus{models.FriendRequestPending, models.FriendRequestAccepted}).
		Preload("Sender").
		Preload("Receiver").
		Order("id ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *friendRepository) LinkNotification(ctx context.Context, requestID, notificationID uint) error {
	err := r.write(ctx).Model(&models.FriendRequest{}).
		Where("id = ?", requestID).
		Update("notification_id", notificationID).Error
	return writeErr(err)
}

func (r *friendRepository) UpdateRequestStatus(ctx context.Context, id uint, status models.FriendRequestStatus) error {
	err := r.write(ctx).Model(&models.FriendRequest{}).
		Where("id = ?", id).
		Update("status", status).Error
	return writeErr(err)
}

func (r *friendRepository) ListPendingSent(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := r.read(ctx).
		Where("sender_id = ? AND status = ?", userID, models.FriendRequestPending).
		Preload("Receiver").
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *friendRepository) ListPendingReceived(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := r.read(ctx).
		Where("receiver_id = ? AND status = ?", userID, models.FriendRequestPending).
		Preload("Sender").
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

// CreateFriendship inserts both directed edges. Edges that already exist are left alone.
func (r *friendRepository) CreateFriendship(ctx context.Context, a, b uint) error {
	pair := models.FriendshipPair(a, b)
	err := r.write(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&pair).Error
	return writeErr(err)
}

// DeleteFriendship removes both directed edges if present.
func (r *friendRepository) DeleteFriendship(ctx context.Context, a, b uint) error {
	err := r.write(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a).
		Delete(&models.Friendship{}).Error
	return writeErr(err)
}

func (r *friendRepository) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.read(ctx).
		Joins("JOIN friendships f ON f.friend_id = users.id").
		Where("f.user_id = ?", userID).
		Order("users.username ASC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *friendRepository) CountFriends(ctx context.Context, userIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		UserID uint
		Total  int64
	}
	err := r.read(ctx).Model(&models.Friendship{}).
		Select("user_id, COUNT(*) AS total").
		Where("user_id IN ?", userIDs).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		out[row.UserID] = row.Total
	}
	return out, nil
}
