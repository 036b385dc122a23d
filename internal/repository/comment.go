package repository

import (
	"context"

	"github.com/huzidev/dev-forum-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
	UpdateContent(ctx context.Context, id uint, content string) error
	UpdateStatus(ctx context.Context, id uint, status models.ContentStatus, reason string) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	base
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{base{db: db}}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return writeErr(r.write(ctx).Omit(clause.Associations).Create(comment).Error)
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.read(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, lookupErr(err, "Comment", id)
	}
	return &comment, nil
}

// ListByPost returns the visible comments of a post, oldest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.read(ctx).
		Where("post_id = ? AND status <> ?", postID, models.ContentDeleted).
		Preload("User").
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	err := r.write(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("content", content).Error
	return writeErr(err)
}

func (r *commentRepository) UpdateStatus(ctx context.Context, id uint, status models.ContentStatus, reason string) error {
	err := r.write(ctx).Model(&models.Comment{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "reason": reason}).Error
	return writeErr(err)
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return writeErr(r.write(ctx).Delete(&models.Comment{}, id).Error)
}
