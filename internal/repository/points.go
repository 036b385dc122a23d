package repository

import (
	"context"

	"github.com/huzidev/dev-forum-api/internal/models"

	"gorm.io/gorm"
)

// PointRepository is the append-only points ledger.
type PointRepository interface {
	Append(ctx context.Context, entries ...models.PointHistory) error
	Total(ctx context.Context, userID uint) (int64, error)
	Totals(ctx context.Context, userIDs []uint) (map[uint]int64, error)
	ListByUser(ctx context.Context, userID uint) ([]models.PointHistory, error)
}

type pointRepository struct {
	base
}

// NewPointRepository creates a new ledger repository
func NewPointRepository(db *gorm.DB) PointRepository {
	return &pointRepository{base{db: db}}
}

func (r *pointRepository) Append(ctx context.Context, entries ...models.PointHistory) error {
	if len(entries) == 0 {
		return nil
	}
	return writeErr(r.write(ctx).Create(&entries).Error)
}

// Total is the sum of a user's entries, 0 when there are none.
func (r *pointRepository) Total(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.read(ctx).Model(&models.PointHistory{}).
		Select("COALESCE(SUM(points), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

func (r *pointRepository) Totals(ctx context.Context, userIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		UserID uint
		Total  int64
	}
	err := r.read(ctx).Model(&models.PointHistory{}).
		Select("user_id, COALESCE(SUM(points), 0) AS total").
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

func (r *pointRepository) ListByUser(ctx context.Context, userID uint) ([]models.PointHistory, error) {
	var entries []models.PointHistory
	err := r.read(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").Find(&entries).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}
