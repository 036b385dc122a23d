package repository

import (
	"context"

	"github.com/huzidev/dev-forum-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BugRepository defines the interface for bug report data operations
type BugRepository interface {
	Create(ctx context.Context, bug *models.BugReport) error
	GetByID(ctx context.Context, id uint) (*models.BugReport, error)
	ListByUser(ctx context.Context, userID uint) ([]models.BugReport, error)
	ListAll(ctx context.Context) ([]models.BugReport, error)
	UpdateStatus(ctx context.Context, id uint, status models.BugStatus, comment string) error
}

type bugRepository struct {
	base
}

// NewBugRepository creates a new bug report repository
func NewBugRepository(db *gorm.DB) BugRepository {
	return &bugRepository{base{db: db}}
}

func (r *bugRepository) Create(ctx context.Context, bug *models.BugReport) error {
	return writeErr(r.write(ctx).Omit(clause.Associations).Create(bug).Error)
}

func (r *bugRepository) GetByID(ctx context.Context, id uint) (*models.BugReport, error) {
	var bug models.BugReport
	if err := r.read(ctx).Preload("User").First(&bug, id).Error; err != nil {
		return nil, lookupErr(err, "Bug report", id)
	}
	return &bug, nil
}

func (r *bugRepository) ListByUser(ctx context.Context, userID uint) ([]models.BugReport, error) {
	var bugs []models.BugReport
	if err := r.read(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&bugs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return bugs, nil
}

func (r *bugRepository) ListAll(ctx context.Context) ([]models.BugReport, error) {
	var bugs []models.BugReport
	if err := r.read(ctx).Preload("User").Order("created_at DESC").Find(&bugs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return bugs, nil
}

func (r *bugRepository) UpdateStatus(ctx context.Context, id uint, status models.BugStatus, comment string) error {
	err := r.write(ctx).Model(&models.BugReport{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "comment": comment}).Error
	return writeErr(err)
}
