package service

import (
	"context"

	"github.com/huzidev/dev-forum-api/internal/models"
)

// BugService collects bug reports from users.
type BugService struct {
	core
}

func NewBugService(d Deps) *BugService {
	return &BugService{core: newCore(d, "bugs")}
}

type BugInput struct {
	Title       string
	Description string
}

func (s *BugService) Report(ctx context.Context, reporter *models.User, in BugInput) (*models.BugReport, error) {
	if err := requireUser(reporter); err != nil {
		return nil, err
	}
	title, err := requireText(in.Title, "Title")
	if err != nil {
		return nil, err
	}
	description, err := requireText(in.Description, "Description")
	if err != nil {
		return nil, err
	}
	bug := &models.BugReport{UserID: reporter.ID, Title: title, Description: description, Status: models.BugOpen}
	if err := s.repos.Bugs.Create(ctx, bug); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "bug reported", "bug_id", bug.ID)
	return bug, nil
}

// ListByUser returns a user's reports, newest first.
func (s *BugService) ListByUser(ctx context.Context, userID uint) ([]models.BugReport, error) {
	if _, err := s.repos.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repos.Bugs.ListByUser(ctx, userID)
}

func (s *BugService) ListAll(ctx context.Context) ([]models.BugReport, error) {
	return s.repos.Bugs.ListAll(ctx)
}

// Get returns a report. Reporters see their own reports; admins see all.
func (s *BugService) Get(ctx context.Context, caller *models.User, id uint) (*models.BugReport, error) {
	bug, err := s.repos.Bugs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAuthorOrAdmin(caller, bug.UserID, "You can only view your own bug reports"); err != nil {
		return nil, err
	}
	return bug, nil
}
