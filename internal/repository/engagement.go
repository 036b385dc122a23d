package repository

import (
	"context"
	"errors"

	"github.com/huzidev/dev-forum-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngagementRepository covers likes and poll votes, both unique per (user, post).
type EngagementRepository interface {
	// GetLike returns nil when the user has not liked the post.
	GetLike(ctx context.Context, userID, postID uint) (*models.Like, error)
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, id uint) error
	ListLikes(ctx context.Context, postID uint) ([]models.Like, error)

	// GetVote returns nil when the user has not voted on the poll.
	GetVote(ctx context.Context, userID, postID uint) (*models.PollVote, error)
	CreateVote(ctx context.Context, vote *models.PollVote) error
	DeleteVote(ctx context.Context, id uint) error
}

type engagementRepository struct {
	base
}

// NewEngagementRepository creates a new like/vote repository
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{base{db: db}}
}

func (r *engagementRepository) GetLike(ctx context.Context, userID, postID uint) (*models.Like, error) {
	var like models.Like
	err := r.read(ctx).Where("user_id = ? AND post_id = ?", userID, postID).First(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &like, nil
}

// CreateLike fails with a Conflict AppError when the pair already exists.
func (r *engagementRepository) CreateLike(ctx context.Context, like *models.Like) error {
	return writeErr(r.write(ctx).Omit(clause.Associations).Create(like).Error)
}

func (r *engagementRepository) DeleteLike(ctx context.Context, id uint) error {
	return writeErr(r.write(ctx).Delete(&models.Like{}, id).Error)
}

func (r *engagementRepository) ListLikes(ctx context.Context, postID uint) ([]models.Like, error) {
	var likes []models.Like
	err := r.read(ctx).Where("post_id = ?", postID).Preload("User").Order("created_at DESC").Find(&likes).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return likes, nil
}

func (r *engagementRepository) GetVote(ctx context.Context, userID, postID uint) (*models.PollVote, error) {
	var vote models.PollVote
	err := r.read(ctx).Where("user_id = ? AND post_id = ?", userID, postID).First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &vote, nil
}

// CreateVote fails with a Conflict AppError when the user already voted on the poll.
func (r *engagementRepository) CreateVote(ctx context.Context, vote *models.PollVote) error {
	return writeErr(r.write(ctx).Omit(clause.Associations).Create(vote).Error)
}

func (r *engagementRepository) DeleteVote(ctx context.Context, id uint) error {
	return writeErr(r.write(ctx).Delete(&models.PollVote{}, id).Error)
}
