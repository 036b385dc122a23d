package service

import (
	"context"
	"strings"

	"github.com/huzidev/dev-forum-api/internal/models"
	"github.com/huzidev/dev-forum-api/internal/repository"
)

// UserService mirrors identity-provider accounts locally and serves user views.
type UserService struct {
	core
}

func NewUserService(d Deps) *UserService {
	return &UserService{core: newCore(d, "users")}
}

// UserInput carries the profile fields the identity provider owns.
type UserInput struct {
	ExternalID     string      `json:"userId"`
	Email          string      `json:"email"`
	FirstName      string      `json:"firstName"`
	LastName       string      `json:"lastName"`
	Username       string      `json:"username"`
	ProfilePicture string      `json:"profilePicture"`
	Role           models.Role `json:"role"`
}

func (in UserInput) apply(u *models.User) {
	u.ExternalID = strings.TrimSpace(in.ExternalID)
	u.Email = strings.TrimSpace(in.Email)
	u.FirstName = strings.TrimSpace(in.FirstName)
	u.LastName = strings.TrimSpace(in.LastName)
	u.Username = strings.TrimSpace(in.Username)
	u.ProfilePicture = strings.TrimSpace(in.ProfilePicture)
	if in.Role.Valid() {
		u.Role = in.Role
	} else if u.Role == "" {
		u.Role = models.RoleUser
	}
}

func (in UserInput) validate() error {
	if strings.TrimSpace(in.ExternalID) == "" {
		return models.NewValidationError("userId is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return models.NewValidationError("email is required")
	}
	return nil
}

// CreateIfNotExists returns the user for in.ExternalID, creating it when
// missing. created reports whether a row was inserted.
func (s *UserService) CreateIfNotExists(ctx context.Context, in UserInput) (user *models.User, created bool, err error) {
	if err := in.validate(); err != nil {
		return nil, false, err
	}
	existing, err := s.repos.Users.GetByExternalID(ctx, strings.TrimSpace(in.ExternalID))
	if err == nil {
		return existing, false, nil
	}
	if !models.HasCode(err, models.CodeNotFound) {
		return nil, false, err
	}

	user = &models.User{}
	in.apply(user)
	if err := s.repos.Users.Create(ctx, user); err != nil {
		if repository.IsDuplicate(err) {
			// lost a race with a concurrent webhook delivery
			existing, getErr := s.repos.Users.GetByExternalID(ctx, user.ExternalID)
			return existing, false, getErr
		}
		return nil, false, err
	}
	s.log.InfoContext(ctx, "user created", "external_id", user.ExternalID, "role", user.Role)
	return user, true, nil
}

// UpdateByExternalID overwrites the profile fields of a user, creating the
// user when it does not exist yet.
func (s *UserService) UpdateByExternalID(ctx context.Context, in UserInput) (*models.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	user, err := s.repos.Users.GetByExternalID(ctx, strings.TrimSpace(in.ExternalID))
	if models.HasCode(err, models.CodeNotFound) {
		user, _, err = s.CreateIfNotExists(ctx, in)
		return user, err
	}
	if err != nil {
		return nil, err
	}
	in.apply(user)
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteByExternalID(ctx context.Context, externalID string) error {
	if err := s.repos.Users.DeleteByExternalID(ctx, externalID); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "user deleted", "external_id", externalID)
	return nil
}

func (s *UserService) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return s.repos.Users.GetByExternalID(ctx, externalID)
}

// GetProfile returns a user with friends, ledger, posts, questions and total points.
func (s *UserService) GetProfile(ctx context.Context, id uint) (*models.UserProfile, error) {
	user, err := s.repos.Users.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.Points.Total(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.UserProfile{User: *user, TotalPoints: total}, nil
}

// ListWithStats returns every user with friend and point totals.
func (s *UserService) ListWithStats(ctx context.Context) ([]models.UserWithStats, error) {
	users, err := s.repos.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.withStats(ctx, users, false)
}

// ListEnrolled returns enrolled users with their solved question counts.
func (s *UserService) ListEnrolled(ctx context.Context) ([]models.UserWithStats, error) {
	users, err := s.repos.Users.ListEnrolled(ctx)
	if err != nil {
		return nil, err
	}
	return s.withStats(ctx, users, true)
}

func (s *UserService) withStats(ctx context.Context, users []models.User, solved bool) ([]models.UserWithStats, error) {
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	friends, err := s.repos.Friends.CountFriends(ctx, ids)
	if err != nil {
		return nil, err
	}
	points, err := s.repos.Points.Totals(ctx, ids)
	if err != nil {
		return nil, err
	}
	var solvedCounts map[uint]int64
	if solved {
		if solvedCounts, err = s.repos.Questions.CountSolved(ctx, ids); err != nil {
			return nil, err
		}
	}

	out := make([]models.UserWithStats, 0, len(users))
	for _, u := range users {
		row := models.UserWithStats{User: u, TotalFriends: friends[u.ID], TotalPoints: points[u.ID]}
		if solved {
			n := solvedCounts[u.ID]
			row.SolvedQuestions = &n
		}
		out = append(out, row)
	}
	return out, nil
}

// UserFriends is a user with the public profiles of its friends.
type UserFriends struct {
	User    models.User          `json:"user"`
	Friends []models.UserSummary `json:"friends"`
}

func (s *UserService) Friends(ctx context.Context, id uint) (*UserFriends, error) {
	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	friends, err := s.repos.Friends.ListFriends(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &UserFriends{User: *user, Friends: make([]models.UserSummary, 0, len(friends))}
	for _, f := range friends {
		out.Friends = append(out.Friends, f.Summary())
	}
	return out, nil
}

// ToggleEnrollment flips the enrollment flag and returns the new state.
func (s *UserService) ToggleEnrollment(ctx context.Context, id uint) (bool, error) {
	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	state := !user.IsEnrolled
	if err := s.repos.Users.SetEnrolled(ctx, id, state); err != nil {
		return false, err
	}
	return state, nil
}

// ToggleBan flips the ban flag and returns the new state. Admins cannot ban themselves.
func (s *UserService) ToggleBan(ctx context.Context, admin *models.User, id uint) (bool, error) {
	if admin != nil && admin.ID == id {
		return false, models.NewValidationError("You cannot ban yourself")
	}
	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	state := !user.IsBan
	if err := s.repos.Users.SetBanned(ctx, id, state); err != nil {
		return false, err
	}
	s.log.InfoContext(ctx, "user ban toggled", "target_id", id, "banned", state)
	return state, nil
}

// SetRoleByExternalID changes a user's role.
func (s *UserService) SetRoleByExternalID(ctx context.Context, externalID string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, models.NewValidationError("Invalid role: " + string(role))
	}
	user, err := s.repos.Users.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Users.SetRole(ctx, user.ID, role); err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}

// SetBanByExternalID bans or unbans a user.
func (s *UserService) SetBanByExternalID(ctx context.Context, externalID string, banned bool) (*models.User, error) {
	user, err := s.repos.Users.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Users.SetBanned(ctx, user.ID, banned); err != nil {
		return nil, err
	}
	user.IsBan = banned
	return user, nil
}
