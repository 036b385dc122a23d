package repository

import (
	"context"

	"github.com/huzidev/dev-forum-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post and poll option data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetDetailed(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]models.Post, int64, error)
	UpdateContent(ctx context.Context, id uint, content string) error
	UpdateStatus(ctx context.Context, id uint, status models.ContentStatus, comment string) error
	Delete(ctx context.Context, id uint) error

	ReplacePollOptions(ctx context.Context, postID uint, texts []string) ([]models.PollOption, error)
	GetPollOption(ctx context.Context, id uint) (*models.PollOption, error)
	PollTally(ctx context.Context, postID uint) ([]models.PollOption, error)
	OptionTally(ctx context.Context, optionID uint) (*models.PollOption, error)
}

type postRepository struct {
	base
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{base{db: db}}
}

// Create inserts the post together with its poll options.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.write(ctx).Omit("Author", "Likes", "Comments", "PostImage").Create(post).Error
	return writeErr(err)
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.read(ctx).First(&post, id).Error; err != nil {
		return nil, lookupErr(err, "Post", id)
	}
	return &post, nil
}

func withPostDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Likes").
		Preload("PollOptions", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("PollOptions.Votes").
		Preload("PostImage.Image").
		Preload("Comments", "status <> ?", models.ContentDeleted).
		Preload("Comments.User")
}

func (r *postRepository) GetDetailed(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := withPostDetails(r.read(ctx)).First(&post, id).Error; err != nil {
		return nil, lookupErr(err, "Post", id)
	}
	return &post, nil
}

// List returns non-deleted posts, newest first.
func (r *postRepository) List(ctx context.Context, limit, offset int) ([]models.Post, int64, error) {
	var total int64
	if err := r.read(ctx).Model(&models.Post{}).Where("status <> ?", models.ContentDeleted).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var posts []models.Post
	err := withPostDetails(r.read(ctx)).
		Where("status <> ?", models.ContentDeleted).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

func (r *postRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	err := r.write(ctx).Model(&models.Post{}).Where("id = ?", id).Update("content", content).Error
	return writeErr(err)
}

func (r *postRepository) UpdateStatus(ctx context.Context, id uint, status models.ContentStatus, comment string) error {
	err := r.write(ctx).Model(&models.Post{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "comment": comment}).Error
	return writeErr(err)
}

// Delete removes the post and its dependent rows.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	db := r.write(ctx)
	steps := []func() error{
		func() error { return db.Where("post_id = ?", id).Delete(&models.PollVote{}).Error },
		func() error { return db.Where("post_id = ?", id).Delete(&models.PollOption{}).Error },
		func() error { return db.Where("post_id = ?", id).Delete(&models.Like{}).Error },
		func() error { return db.Where("post_id = ?", id).Delete(&models.Comment{}).Error },
		func() error { return db.Where("post_id = ?", id).Delete(&models.PostImage{}).Error },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return models.NewInternalError(err)
		}
	}
	res := db.Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// ReplacePollOptions drops every option (and its votes) of the post and inserts texts.
func (r *postRepository) ReplacePollOptions(ctx context.Context, postID uint, texts []string) ([]models.PollOption, error) {
	db := r.write(ctx)
	if err := db.Where("post_id = ?", postID).Delete(&models.PollVote{}).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Where("post_id = ?", postID).Delete(&models.PollOption{}).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(texts) == 0 {
		return nil, nil
	}
	options := make([]models.PollOption, 0, len(texts))
	for _, text := range texts {
		options = append(options, models.PollOption{PostID: postID, Text: text})
	}
	if err := db.Omit(clause.Associations).Create(&options).Error; err != nil {
		return nil, writeErr(err)
	}
	return options, nil
}

func (r *postRepository) GetPollOption(ctx context.Context, id uint) (*models.PollOption, error) {
	var option models.PollOption
	if err := r.read(ctx).First(&option, id).Error; err != nil {
		return nil, lookupErr(err, "Poll option", id)
	}
	return &option, nil
}

// PollTally loads the options of a post with their votes and voters.
func (r *postRepository) PollTally(ctx context.Context, postID uint) ([]models.PollOption, error) {
	var options []models.PollOption
	err := r.read(ctx).
		Where("post_id = ?", postID).
		Preload("Votes.User").
		Order("id ASC").
		Find(&options).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return options, nil
}

// OptionTally loads one poll option with its votes and voters.
func (r *postRepository) OptionTally(ctx context.Context, optionID uint) (*models.PollOption, error) {
	var option models.PollOption
	if err := r.read(ctx).Preload("Votes.User").First(&option, optionID).Error; err != nil {
		return nil, lookupErr(err, "Poll option", optionID)
	}
	return &option, nil
}
