package repository

import (
	"context"

	"github.com/huzidev/dev-forum-api/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	GetProfile(ctx context.Context, id uint) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	DeleteByExternalID(ctx context.Context, externalID string) error
	List(ctx context.Context) ([]models.User, error)
	ListEnrolled(ctx context.Context) ([]models.User, error)
	SetEnrolled(ctx context.Context, id uint, enrolled bool) error
	SetBanned(ctx context.Context, id uint, banned bool) error
	SetRole(ctx context.Context, id uint, role models.Role) error
	SetPlan(ctx context.Context, id uint, planID uint) error
}

type userRepository struct {
	base
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{base{db: db}}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return writeErr(r.write(ctx).Create(user).Error)
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.read(ctx).First(&user, id).Error; err != nil {
		return nil, lookupErr(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	if err := r.read(ctx).Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, lookupErr(err, "User", externalID)
	}
	return &user, nil
}

// GetProfile loads the user with friends, ledger, posts and questions.
func (r *userRepository) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.read(ctx).
		Preload("Friends.Friend").
		Preload("PointHistory", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Posts", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		First(&user, id).Error
	if err != nil {
		return nil, lookupErr(err, "User", id)
	}
	return &user, nil
}

// Update writes the profile columns of user.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	err := r.write(ctx).Model(user).Select(
		"email", "first_name", "last_name", "username", "profile_picture", "role",
	).Updates(user).Error
	return writeErr(err)
}

func (r *userRepository) DeleteByExternalID(ctx context.Context, externalID string) error {
	res := r.write(ctx).Where("external_id = ?", externalID).Delete(&models.User{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", externalID)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.read(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) ListEnrolled(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.read(ctx).Where("is_enrolled = ?", true).Order("id ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) setColumn(ctx context.Context, id uint, column string, value interface{}) error {
	res := r.write(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) SetEnrolled(ctx context.Context, id uint, enrolled bool) error {
	return r.setColumn(ctx, id, "is_enrolled", enrolled)
}

func (r *userRepository) SetBanned(ctx context.Context, id uint, banned bool) error {
	return r.setColumn(ctx, id, "is_ban", banned)
}

func (r *userRepository) SetRole(ctx context.Context, id uint, role models.Role) error {
	return r.setColumn(ctx, id, "role", role)
}

func (r *userRepository) SetPlan(ctx context.Context, id uint, planID uint) error {
	return r.setColumn(ctx, id, "plan_id", planID)
}
