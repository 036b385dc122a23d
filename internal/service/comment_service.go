package service

import (
	"context"

	"github.com/huzidev/dev-forum-api/internal/models"
	"github.com/huzidev/dev-forum-api/internal/observability"
	"github.com/huzidev/dev-forum-api/internal/repository"
)

const maxCommentLen = 10000

type CommentService struct {
	core
}

func NewCommentService(d Deps) *CommentService {
	return &CommentService{core: newCore(d, "comments")}
}

func validComment(content string) (string, error) {
	content, err := requireText(content, "Content")
	if err != nil {
		return "", err
	}
	if len(content) > maxCommentLen {
		return "", models.NewValidationError("Comment too long (max 10000 characters)")
	}
	return content, nil
}

// AddComment comments on a post, awards both the commenter and the post
// author and notifies the author.
func (s *CommentService) AddComment(ctx context.Context, commenter *models.User, postID uint, content string) (comment *models.Comment, err error) {
	ctx, done := traced(ctx, "comments", "AddComment")
	defer done(&err)

	if err := requireUser(commenter); err != nil {
		return nil, err
	}
	if content, err = validComment(content); err != nil {
		return nil, err
	}

	var created []models.Notification
	err = s.tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		post, err := tx.Posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		if post.Status == models.ContentDeleted {
			return models.NewNotFoundError("Post", postID)
		}
		comment = &models.Comment{PostID: postID, UserID: commenter.ID, Content: content, Status: models.ContentActive}
		if err := tx.Comments.Create(ctx, comment); err != nil {
			return err
		}
		if err := award(ctx, tx.Points, models.PointsReceiveComment.Entry(post.UserID), models.PointsComment.Entry(commenter.ID)); err != nil {
			return err
		}
		created, err = createNotifications(ctx, tx.Notifications, models.CommentNotification(*commenter, *post))
		return err
	})
	if err != nil {
		return nil, err
	}

	observability.EngagementEvents.WithLabelValues("comment").Inc()
	countNotifications(created)
	s.publish(ctx, created)
	comment.User = commenter
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	if _, err := s.repos.Posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.repos.Comments.ListByPost(ctx, postID)
}

// UpdateComment edits a comment. Only its author may.
func (s *CommentService) UpdateComment(ctx context.Context, caller *models.User, id uint, content string) (*models.Comment, error) {
	content, err := validComment(content)
	if err != nil {
		return nil, err
	}
	comment, err := s.repos.Comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor(caller, comment.UserID, "You can only edit your own comments"); err != nil {
		return nil, err
	}
	if err := s.repos.Comments.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}
	return s.repos.Comments.GetByID(ctx, id)
}

// DeleteComment removes a comment. The author or an admin may delete.
// Points awarded for the comment are kept.
func (s *CommentService) DeleteComment(ctx context.Context, caller *models.User, id uint) (*models.Comment, error) {
	comment, err := s.repos.Comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAuthorOrAdmin(caller, comment.UserID, "You can only delete your own comments"); err != nil {
		return nil, err
	}
	if err := s.repos.Comments.Delete(ctx, id); err != nil {
		return nil, err
	}
	return comment, nil
}
