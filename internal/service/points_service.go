package service

import (
	"context"
	"strings"

	"github.com/huzidev/dev-forum-api/internal/models"
)

// PointService reads the ledger and lets admins append manual entries.
type PointService struct {
	core
}

func NewPointService(d Deps) *PointService {
	return &PointService{core: newCore(d, "points")}
}

// Total returns the sum of a user's entries, 0 when there are none.
func (s *PointService) Total(ctx context.Context, userID uint) (int64, error) {
	if _, err := s.repos.Users.GetByID(ctx, userID); err != nil {
		return 0, err
	}
	return s.repos.Points.Total(ctx, userID)
}

// UserPoints returns a user's entries, newest first, with their total.
func (s *PointService) UserPoints(ctx context.Context, userID uint) (*models.UserPoints, error) {
	if _, err := s.repos.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	history, err := s.repos.Points.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.Points.Total(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.UserPoints{Points: history, TotalPoints: total}, nil
}

type PointEntryInput struct {
	UserID      uint   `json:"userId"`
	Points      int    `json:"points"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Append writes a manual ledger entry and returns the user's new total.
func (s *PointService) Append(ctx context.Context, in PointEntryInput) (*models.PointHistory, int64, error) {
	if in.Points == 0 {
		return nil, 0, models.NewValidationError("Points must be non-zero")
	}
	if _, err := s.repos.Users.GetByID(ctx, in.UserID); err != nil {
		return nil, 0, err
	}
	pointType := models.PointType(strings.ToUpper(strings.TrimSpace(in.Type)))
	if pointType == "" {
		pointType = models.PointTypeManual
	}
	entry := models.PointHistory{
		UserID:      in.UserID,
		Points:      in.Points,
		Type:        pointType,
		Description: strings.TrimSpace(in.Description),
	}
	if err := award(ctx, s.repos.Points, entry); err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Points.Total(ctx, in.UserID)
	if err != nil {
		return nil, 0, err
	}
	return &entry, total, nil
}
