package service

import (
	"context"
	"strings"

	"github.com/huzidev/dev-forum-api/internal/models"
	"github.com/huzidev/dev-forum-api/internal/observability"
	"github.com/huzidev/dev-forum-api/internal/repository"
	"github.com/huzidev/dev-forum-api/internal/storage"
)

const maxContentLen = 50000

// PostService manages posts and their poll options.
type PostService struct {
	core
	store storage.ObjectStore
}

type CreatePostInput struct {
	Content string
	Type    string
	Options []string
}

type UpdatePostInput struct {
	PostID  uint
	Content *string
	// Options replaces the poll options when the set of texts differs.
	Options []string
}

// PostPage is one page of the post feed.
type PostPage struct {
	Posts []models.Post `json:"posts"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Total int64         `json:"total"`
}

func NewPostService(d Deps) *PostService {
	return &PostService{core: newCore(d, "posts"), store: d.Store}
}

func cleanOptions(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, o := range raw {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// CreatePost stores the post with its poll options and awards the author.
func (s *PostService) CreatePost(ctx context.Context, author *models.User, in CreatePostInput) (post *models.Post, err error) {
	ctx, done := traced(ctx, "posts", "CreatePost")
	defer done(&err)

	if err := requireUser(author); err != nil {
		return nil, err
	}
	postType, err := models.ParsePostType(in.Type)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(in.Content)
	if content == "" && postType != models.PostTypeImage {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	post = &models.Post{UserID: author.ID, Content: content, Type: postType, Status: models.ContentActive}
	// a poll may start without options
	if postType == models.PostTypePoll {
		for _, text := range cleanOptions(in.Options) {
			post.PollOptions = append(post.PollOptions, models.PollOption{Text: text})
		}
	}

	err = s.tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Posts.Create(ctx, post); err != nil {
			return err
		}
		return award(ctx, tx.Points, models.PointsCreatePost.Entry(author.ID))
	})
	if err != nil {
		return nil, err
	}
	observability.EngagementEvents.WithLabelValues("post").Inc()
	return s.repos.Posts.GetDetailed(ctx, post.ID)
}

// UpdatePost edits the content of a post. For polls a changed option set
// replaces every option, which discards the votes; an empty set clears them.
func (s *PostService) UpdatePost(ctx context.Context, caller *models.User, in UpdatePostInput) (*models.Post, error) {
	err := s.tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		post, err := tx.Posts.GetDetailed(ctx, in.PostID)
		if err != nil {
			return err
		}
		if err := requireAuthor(caller, post.UserID, "You can only edit your own posts"); err != nil {
			return err
		}

		if in.Content != nil {
			content := strings.TrimSpace(*in.Content)
			if content == "" && post.Type != models.PostTypeImage {
				return models.NewValidationError("Content is required")
			}
			if len(content) > maxContentLen {
				return models.NewValidationError("Content too long (max 50000 characters)")
			}
			if err := tx.Posts.UpdateContent(ctx, post.ID, content); err != nil {
				return err
			}
		}

		if post.Type == models.PostTypePoll && in.Options != nil {
			options := cleanOptions(in.Options)
			if !models.SameOptionSet(post.OptionTexts(), options) {
				if _, err := tx.Posts.ReplacePollOptions(ctx, post.ID, options); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repos.Posts.GetDetailed(ctx, in.PostID)
}

// DeletePost removes a post with its children. The author or an admin may delete.
func (s *PostService) DeletePost(ctx context.Context, caller *models.User, id uint) error {
	var image *models.PostImage
	err := s.tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		post, err := tx.Posts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := requireAuthorOrAdmin(caller, post.UserID, "You can only delete your own posts"); err != nil {
			return err
		}
		if image, err = tx.Images.GetPostImage(ctx, id); err != nil {
			return err
		}
		if image != nil {
			if err := tx.Images.Detach(ctx, image); err != nil {
				return err
			}
		}
		return tx.Posts.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	if image != nil && image.Image != nil {
		removeObject(ctx, s.store, s.log, image.Image.Key)
	}
	return nil
}

// ListPosts returns the feed, newest first, without DELETED posts.
func (s *PostService) ListPosts(ctx context.Context, page, limit int) (*PostPage, error) {
	page, limit = Page(page, limit)
	posts, total, err := s.repos.Posts.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, Page: page, Limit: limit, Total: total}, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.repos.Posts.GetDetailed(ctx, id)
}
