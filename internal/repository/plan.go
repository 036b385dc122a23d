package repository

import (
	"context"

	"github.com/huzidev/dev-forum-api/internal/models"

	"gorm.io/gorm"
)

// PlanRepository defines the interface for subscription plan data operations
type PlanRepository interface {
	List(ctx context.Context) ([]models.Plan, error)
	GetByID(ctx context.Context, id uint) (*models.Plan, error)
	// GetByTitle returns nil when no plan has the title.
	GetByTitle(ctx context.Context, title string) (*models.Plan, error)
	Create(ctx context.Context, plan *models.Plan) error
	UpdateFields(ctx context.Context, id uint, title, info string, price float64) error
	ApplyBenefitDiff(ctx context.Context, diff models.BenefitDiff) error
	Delete(ctx context.Context, id uint) error
}

type planRepository struct {
	base
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{base{db: db}}
}

func benefitsByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (r *planRepository) List(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	if err := r.read(ctx).Preload("Benefits", benefitsByID).Order("price ASC").Order("id ASC").Find(&plans).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return plans, nil
}

func (r *planRepository) GetByID(ctx context.Context, id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := r.read(ctx).Preload("Benefits", benefitsByID).First(&plan, id).Error; err != nil {
		return nil, lookupErr(err, "Plan", id)
	}
	return &plan, nil
}

func (r *planRepository) GetByTitle(ctx context.Context, title string) (*models.Plan, error) {
	var plans []models.Plan
	if err := r.read(ctx).Preload("Benefits", benefitsByID).Where("title = ?", title).Limit(1).Find(&plans).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(plans) == 0 {
		return nil, nil
	}
	return &plans[0], nil
}

// Create inserts the plan and its benefits.
func (r *planRepository) Create(ctx context.Context, plan *models.Plan) error {
	return writeErr(r.write(ctx).Create(plan).Error)
}

func (r *planRepository) UpdateFields(ctx context.Context, id uint, title, info string, price float64) error {
	err := r.write(ctx).Model(&models.Plan{}).Where("id = ?", id).
		Updates(map[string]interface{}{"title": title, "info": info, "price": price}).Error
	return writeErr(err)
}

func (r *planRepository) ApplyBenefitDiff(ctx context.Context, diff models.BenefitDiff) error {
	db := r.write(ctx)
	if len(diff.Delete) > 0 {
		if err := db.Delete(&models.Benefit{}, diff.Delete).Error; err != nil {
			return models.NewInternalError(err)
		}
	}
	for _, b := range diff.Update {
		if err := db.Model(&models.Benefit{}).Where("id = ?", b.ID).Update("description", b.Description).Error; err != nil {
			return models.NewInternalError(err)
		}
	}
	if len(diff.Create) > 0 {
		if err := db.Create(&diff.Create).Error; err != nil {
			return models.NewInternalError(err)
		}
	}
	return nil
}

// Delete removes the plan and its benefits and clears it from subscribed users.
func (r *planRepository) Delete(ctx context.Context, id uint) error {
	db := r.write(ctx)
	if err := db.Model(&models.User{}).Where("plan_id = ?", id).Update("plan_id", nil).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := db.Where("plan_id = ?", id).Delete(&models.Benefit{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	res := db.Delete(&models.Plan{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Plan", id)
	}
	return nil
}
