package repository

import (
	"context"
	"errors"

	"github.com/huzidev/dev-forum-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImageRepository stores uploaded image metadata and post attachments.
type ImageRepository interface {
	Create(ctx context.Context, image *models.Image) error
	// GetPostImage returns nil when the post has no image.
	GetPostImage(ctx context.Context, postID uint) (*models.PostImage, error)
	Attach(ctx context.Context, postID, imageID uint) (*models.PostImage, error)
	// Detach removes the attachment row and the image row it points at.
	Detach(ctx context.Context, pi *models.PostImage) error
}

type imageRepository struct {
	base
}

// NewImageRepository returns a repository implementation for image metadata.
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{base{db: db}}
}

func (r *imageRepository) Create(ctx context.Context, image *models.Image) error {
	return writeErr(r.write(ctx).Create(image).Error)
}

func (r *imageRepository) GetPostImage(ctx context.Context, postID uint) (*models.PostImage, error) {
	var pi models.PostImage
	err := r.read(ctx).Preload("Image").Where("post_id = ?", postID).First(&pi).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &pi, nil
}

func (r *imageRepository) Attach(ctx context.Context, postID, imageID uint) (*models.PostImage, error) {
	pi := &models.PostImage{PostID: postID, ImageID: imageID}
	if err := r.write(ctx).Omit(clause.Associations).Create(pi).Error; err != nil {
		return nil, writeErr(err)
	}
	return pi, nil
}

func (r *imageRepository) Detach(ctx context.Context, pi *models.PostImage) error {
	db := r.write(ctx)
	if err := db.Delete(&models.PostImage{}, pi.ID).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := db.Delete(&models.Image{}, pi.ImageID).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
