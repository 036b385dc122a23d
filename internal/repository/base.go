// Package repository provides the gorm-backed data access layer.
package repository

import (
	"context"
	"errors"

	"github.com/huzidev/dev-forum-api/internal/database"
	"github.com/huzidev/dev-forum-api/internal/models"

	"gorm.io/gorm"
)

// base carries the handle a repository writes through. Repositories bound to
// a transaction read through it too so they see their own writes.
type base struct {
	db   *gorm.DB
	inTx bool
}

func (b base) write(ctx context.Context) *gorm.DB {
	return b.db.WithContext(ctx)
}

func (b base) read(ctx context.Context) *gorm.DB {
	if !b.inTx && database.ReadDB != nil {
		return database.ReadDB.WithContext(ctx)
	}
	return b.db.WithContext(ctx)
}

// lookupErr maps a single-row lookup failure to NotFound or Internal.
func lookupErr(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// writeErr maps a write failure; unique violations become Conflict.
func writeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &models.AppError{Code: models.CodeConflict, Message: "Resource already exists", Err: err}
	}
	return models.NewInternalError(err)
}

// IsDuplicate reports whether err came from a unique index violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// Repositories bundles every repository over one handle.
type Repositories struct {
	Users         UserRepository
	Friends       FriendRepository
	Notifications NotificationRepository
	Points        PointRepository
	Posts         PostRepository
	Comments      CommentRepository
	Engagement    EngagementRepository
	Images        ImageRepository
	Questions     QuestionRepository
	Bugs          BugRepository
	Plans         PlanRepository
}

// New builds the repositories over db.
func New(db *gorm.DB) *Repositories {
	return build(base{db: db})
}

func build(b base) *Repositories {
	return &Repositories{
		Users:         &userRepository{b},
		Friends:       &friendRepository{b},
		Notifications: &notificationRepository{b},
		Points:        &pointRepository{b},
		Posts:         &postRepository{b},
		Comments:      &commentRepository{b},
		Engagement:    &engagementRepository{b},
		Images:        &imageRepository{b},
		Questions:     &questionRepository{b},
		Bugs:          &bugRepository{b},
		Plans:         &planRepository{b},
	}
}

// Transactor runs a unit of work atomically.
type Transactor interface {
	// WithinTx calls fn with repositories bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx *Repositories) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor returns a Transactor over db.
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) WithinTx(ctx context.Context, fn func(tx *Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(build(base{db: tx, inTx: true}))
	})
}
