// Package seed creates demo data and the built-in plan catalog. The factories
// write through GORM directly and keep the points ledger consistent with
// what the engagement workflows would have written.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/huzidev/dev-forum-api/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a Factory. A zero opts.Seed seeds from the clock.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	//nolint:gosec // demo data
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(seed))}
}

// createdAt spreads timestamps over the last MaxDays days.
func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

func (f *Factory) award(rules ...ruleFor) error {
	entries := make([]models.PointHistory, 0, len(rules))
	for _, r := range rules {
		entries = append(entries, r.rule.Entry(r.userID))
	}
	return f.db.Create(&entries).Error
}

type ruleFor struct {
	rule   models.PointRule
	userID uint
}

// CreateUser persists a member with a fake profile.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	first, last := gofakeit.FirstName(), gofakeit.LastName()
	username := strings.ToLower(fmt.Sprintf("%s_%s%d", first, last, gofakeit.Number(10, 999)))
	user := &models.User{
		ExternalID:     "seed_" + uuid.NewString(),
		Email:          username + "@example.com",
		FirstName:      first,
		LastName:       last,
		Username:       username,
		ProfilePicture: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		Role:           models.RoleUser,
		IsEnrolled:     f.rng.Float32() < 0.3,
		CreatedAt:      f.createdAt(),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return user, nil
}

// BuildPost returns an unsaved post of the given type.
func (f *Factory) BuildPost(author *models.User, postType models.PostType) *models.Post {
	post := &models.Post{
		UserID:    author.ID,
		Type:      postType,
		Status:    models.ContentActive,
		Content:   gofakeit.HackerPhrase() + " " + gofakeit.Sentence(12),
		CreatedAt: f.createdAt(),
	}
	if postType == models.PostTypePoll {
		post.Content = strings.TrimSuffix(gofakeit.Question(), "?") + "?"
		n := 2 + f.rng.Intn(3)
		for i := 0; i < n; i++ {
			post.PollOptions = append(post.PollOptions, models.PollOption{Text: gofakeit.HackerNoun()})
		}
	}
	return post
}

// CreatePost persists a post, attaching an image to IMAGE posts, and awards
// the author CREATE_POST points.
func (f *Factory) CreatePost(author *models.User, postType models.PostType) (*models.Post, error) {
	post := f.BuildPost(author, postType)
	if err := f.db.Create(post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	if postType == models.PostTypeImage {
		img := &models.Image{URL: fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())}
		if err := f.db.Create(img).Error; err != nil {
			return nil, err
		}
		post.PostImage = &models.PostImage{PostID: post.ID, ImageID: img.ID, Image: img}
		if err := f.db.Create(post.PostImage).Error; err != nil {
			return nil, err
		}
	}
	return post, f.award(ruleFor{models.PointsCreatePost, author.ID})
}

// CreateComment persists a comment and awards both sides.
func (f *Factory) CreateComment(commenter *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:    post.ID,
		UserID:    commenter.ID,
		Content:   gofakeit.Sentence(8),
		Status:    models.ContentActive,
		CreatedAt: post.CreatedAt.Add(time.Duration(1+f.rng.Intn(600)) * time.Minute),
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	n := models.CommentNotification(*commenter, *post)
	if err := f.db.Create(&n).Error; err != nil {
		return nil, err
	}
	return comment, f.award(
		ruleFor{models.PointsComment, commenter.ID},
		ruleFor{models.PointsReceiveComment, post.UserID},
	)
}

// CreateLike persists a like and awards both sides.
func (f *Factory) CreateLike(liker *models.User, post *models.Post) error {
	like := &models.Like{UserID: liker.ID, PostID: post.ID}
	if err := f.db.Create(like).Error; err != nil {
		return fmt.Errorf("create like: %w", err)
	}
	n := models.LikeNotification(*liker, *post)
	if err := f.db.Create(&n).Error; err != nil {
		return err
	}
	return f.award(
		ruleFor{models.PointsLike, liker.ID},
		ruleFor{models.PointsReceiveLike, post.UserID},
	)
}

// CreateVote records voter's choice on a poll post.
func (f *Factory) CreateVote(voter *models.User, post *models.Post) error {
	if len(post.PollOptions) == 0 {
		return nil
	}
	option := post.PollOptions[f.rng.Intn(len(post.PollOptions))]
	return f.db.Create(&models.PollVote{UserID: voter.ID, PostID: post.ID, PollOptionID: option.ID}).Error
}

// CreateQuestion persists an OPEN question.
func (f *Factory) CreateQuestion(author *models.User) (*models.Question, error) {
	q := &models.Question{
		UserID:    author.ID,
		Title:     gofakeit.Question(),
		Content:   gofakeit.Paragraph(1, 3, 10, "\n"),
		Status:    models.QuestionOpen,
		CreatedAt: f.createdAt(),
	}
	if err := f.db.Create(q).Error; err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// CreateThread persists an OPEN reply to q.
func (f *Factory) CreateThread(author *models.User, q *models.Question) (*models.Thread, error) {
	t := &models.Thread{
		QuestionID: q.ID,
		UserID:     author.ID,
		Content:    gofakeit.Sentence(15),
		Status:     models.ThreadOpen,
	}
	if err := f.db.Create(t).Error; err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}
	return t, nil
}

// MarkSolved flags t as the solution and q as ANSWERED.
func (f *Factory) MarkSolved(q *models.Question, t *models.Thread) error {
	return f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(t).Update("status", models.ThreadSolution).Error; err != nil {
			return err
		}
		return tx.Model(q).Update("status", models.QuestionAnswered).Error
	})
}

// CreateFriendship stores an ACCEPTED request from a to b and both edges.
func (f *Factory) CreateFriendship(a, b *models.User) error {
	return f.db.Transaction(func(tx *gorm.DB) error {
		req := &models.FriendRequest{SenderID: a.ID, ReceiverID: b.ID, Status: models.FriendRequestAccepted}
		if err := tx.Create(req).Error; err != nil {
			return err
		}
		pair := models.FriendshipPair(a.ID, b.ID)
		return tx.Create(&pair).Error
	})
}

// CreatePendingRequest stores a PENDING request from a to b and its notification.
func (f *Factory) CreatePendingRequest(a, b *models.User) error {
	return f.db.Transaction(func(tx *gorm.DB) error {
		n := models.FriendRequestNotification(*a, b.ID)
		if err := tx.Create(&n).Error; err != nil {
			return err
		}
		req := &models.FriendRequest{SenderID: a.ID, ReceiverID: b.ID, Status: models.FriendRequestPending, NotificationID: &n.ID}
		return tx.Create(req).Error
	})
}

// CreateBug persists a bug report with a random status.
func (f *Factory) CreateBug(reporter *models.User) (*models.BugReport, error) {
	statuses := []models.BugStatus{models.BugOpen, models.BugOpen, models.BugInProgress, models.BugResolved, models.BugClosed}
	bug := &models.BugReport{
		UserID:      reporter.ID,
		Title:       gofakeit.HackerPhrase(),
		Description: gofakeit.Paragraph(1, 2, 12, "\n"),
		Status:      statuses[f.rng.Intn(len(statuses))],
		CreatedAt:   f.createdAt(),
	}
	if err := f.db.Create(bug).Error; err != nil {
		return nil, fmt.Errorf("create bug: %w", err)
	}
	return bug, nil
}
