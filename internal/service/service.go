// Package service implements the forum workflows on top of the repositories.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/huzidev/dev-forum-api/internal/middleware"
	"github.com/huzidev/dev-forum-api/internal/models"
	"github.com/huzidev/dev-forum-api/internal/observability"
	"github.com/huzidev/dev-forum-api/internal/repository"
	"github.com/huzidev/dev-forum-api/internal/storage"
)

// NotificationPublisher pushes a committed notification to its recipient in realtime.
type NotificationPublisher interface {
	Publish(ctx context.Context, n models.Notification) error
}

// Deps are the collaborators shared by the services.
type Deps struct {
	Repos     *repository.Repositories
	Tx        repository.Transactor
	Publisher NotificationPublisher
	Store     storage.ObjectStore
}

type core struct {
	repos *repository.Repositories
	tx    repository.Transactor
	pub   NotificationPublisher
	log   *slog.Logger
}

func newCore(d Deps, name string) core {
	return core{repos: d.Repos, tx: d.Tx, pub: d.Publisher, log: middleware.ServiceLogger(name)}
}

// publish delivers notifications after their transaction committed. Delivery
// failures are logged; the inbox row is the source of truth.
func (c core) publish(ctx context.Context, ns []models.Notification) {
	if c.pub == nil {
		return
	}
	for _, n := range ns {
		if err := c.pub.Publish(ctx, n); err != nil {
			c.log.WarnContext(ctx, "realtime publish failed", "notification_id", n.ID, "error", err)
		}
	}
}

// traced starts a span for a service method and returns a func ending it
// that records err when non-nil.
func traced(ctx context.Context, service, method string) (context.Context, func(*error)) {
	ctx, span := observability.StartService(ctx, service, method)
	return ctx, func(errp *error) {
		if errp != nil && *errp != nil {
			observability.RecordErrorInContext(ctx, *errp)
		}
		span.End()
	}
}

func createNotifications(ctx context.Context, repo repository.NotificationRepository, ns ...models.Notification) ([]models.Notification, error) {
	for i := range ns {
		if err := repo.Create(ctx, &ns[i]); err != nil {
			return nil, err
		}
	}
	return ns, nil
}

func countNotifications(ns []models.Notification) {
	for _, n := range ns {
		observability.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()
	}
}

// award appends ledger entries.
func award(ctx context.Context, points repository.PointRepository, entries ...models.PointHistory) error {
	if err := points.Append(ctx, entries...); err != nil {
		return err
	}
	for _, e := range entries {
		observability.PointsAwarded.WithLabelValues(string(e.Type)).Inc()
	}
	return nil
}

func requireUser(user *models.User) error {
	if user == nil || user.ID == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	return nil
}

// requireAuthor allows only the owner of a resource.
func requireAuthor(user *models.User, ownerID uint, message string) error {
	if err := requireUser(user); err != nil {
		return err
	}
	if user.ID != ownerID {
		return models.NewForbiddenError(message)
	}
	return nil
}

// requireAuthorOrAdmin allows the owner of a resource or an administrator.
func requireAuthorOrAdmin(user *models.User, ownerID uint, message string) error {
	if err := requireUser(user); err != nil {
		return err
	}
	if user.ID != ownerID && !user.IsAdmin() {
		return models.NewForbiddenError(message)
	}
	return nil
}

func requireText(value, field string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", models.NewValidationError(field + " is required")
	}
	return v, nil
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page normalizes 1-based pagination parameters.
func Page(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// errNoop aborts a transaction whose outcome is a documented no-op.
var errNoop = errors.New("no-op")

// isNoop reports whether err is errNoop or a unique violation, which a
// concurrent duplicate write produces.
func isNoop(err error) bool {
	return errors.Is(err, errNoop) || repository.IsDuplicate(err)
}
