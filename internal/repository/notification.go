package repository

import (
	"context"

	"github.com/huzidev/dev-forum-api/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines the interface for inbox operations.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	Delete(ctx context.Context, id uint) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, id uint) error
	// DeleteIDs removes the given rows. When ownerID is non-nil only that user's rows are removed.
	DeleteIDs(ctx context.Context, ids []uint, ownerID *uint) (int64, error)
}

type notificationRepository struct {
	base
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{base{db: db}}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return writeErr(r.write(ctx).Create(n).Error)
}

func (r *notificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.read(ctx).First(&n, id).Error; err != nil {
		return nil, lookupErr(err, "Notification", id)
	}
	return &n, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id uint) error {
	return writeErr(r.write(ctx).Delete(&models.Notification{}, id).Error)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, int64, error) {
	var total int64
	q := r.read(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var items []models.Notification
	err := r.read(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return items, total, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.read(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&total).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uint) error {
	err := r.write(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
	return writeErr(err)
}

func (r *notificationRepository) DeleteIDs(ctx context.Context, ids []uint, ownerID *uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := r.write(ctx).Where("id IN ?", ids)
	if ownerID != nil {
		q = q.Where("user_id = ?", *ownerID)
	}
	res := q.Delete(&models.Notification{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
