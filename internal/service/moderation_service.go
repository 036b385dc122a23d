package service

import (
	"context"
	"strings"

	"github.com/huzidev/dev-forum-api/internal/models"
)

// ModerationService lets admins set the moderation status of content.
// Status changes have no side effects on points or notifications.
type ModerationService struct {
	core
}

// NewModerationService returns a new ModerationService.
func NewModerationService(d Deps) *ModerationService {
	return &ModerationService{core: newCore(d, "moderation")}
}

func (s *ModerationService) audit(ctx context.Context, admin *models.User, kind string, id uint, status string) {
	var adminID uint
	if admin != nil {
		adminID = admin.ID
	}
	s.log.InfoContext(ctx, "moderation status changed", "kind", kind, "id", id, "status", status, "admin_id", adminID)
}

// UpdatePostStatus sets the status of a post and the moderator's comment.
func (s *ModerationService) UpdatePostStatus(ctx context.Context, admin *models.User, id uint, rawStatus, comment string) (*models.Post, error) {
	status, err := models.ParseContentStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Posts.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repos.Posts.UpdateStatus(ctx, id, status, strings.TrimSpace(comment)); err != nil {
		return nil, err
	}
	s.audit(ctx, admin, "post", id, string(status))
	return s.repos.Posts.GetByID(ctx, id)
}

// UpdateCommentStatus sets the status of a comment and the reason for it.
func (s *ModerationService) UpdateCommentStatus(ctx context.Context, admin *models.User, id uint, rawStatus, reason string) (*models.Comment, error) {
	status, err := models.ParseContentStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Comments.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repos.Comments.UpdateStatus(ctx, id, status, strings.TrimSpace(reason)); err != nil {
		return nil, err
	}
	s.audit(ctx, admin, "comment", id, string(status))
	return s.repos.Comments.GetByID(ctx, id)
}

// UpdateQuestionStatus sets the status of a question. ANSWERED is refused;
// it is only reachable by marking a solution.
func (s *ModerationService) UpdateQuestionStatus(ctx context.Context, admin *models.User, id uint, rawStatus, comment string) (*models.Question, error) {
	status, err := models.ParseQuestionModerationStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Questions.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repos.Questions.UpdateStatus(ctx, id, status, strings.TrimSpace(comment)); err != nil {
		return nil, err
	}
	s.audit(ctx, admin, "question", id, string(status))
	return s.repos.Questions.GetByID(ctx, id)
}

// UpdateBugStatus moves a bug report through triage.
func (s *ModerationService) UpdateBugStatus(ctx context.Context, admin *models.User, id uint, rawStatus, comment string) (*models.BugReport, error) {
	status, err := models.ParseBugStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Bugs.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repos.Bugs.UpdateStatus(ctx, id, status, strings.TrimSpace(comment)); err != nil {
		return nil, err
	}
	s.audit(ctx, admin, "bug", id, string(status))
	return s.repos.Bugs.GetByID(ctx, id)
}
