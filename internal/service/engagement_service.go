package service

import (
	"context"

	"github.com/huzidev/dev-forum-api/internal/models"
	"github.com/huzidev/dev-forum-api/internal/observability"
	"github.com/huzidev/dev-forum-api/internal/repository"
)

// EngagementService handles likes and poll votes. Each like or unlike writes
// the matching ledger entries in the same transaction.
type EngagementService struct {
	core
}

func NewEngagementService(d Deps) *EngagementService {
	return &EngagementService{core: newCore(d, "engagement")}
}

// LikePost likes a post. A second like by the same user is a no-op and
// returns a nil like.
func (s *EngagementService) LikePost(ctx context.Context, liker *models.User, postID uint) (like *models.Like, err error) {
	ctx, done := traced(ctx, "engagement", "LikePost")
	defer done(&err)

	if err := requireUser(liker); err != nil {
		return nil, err
	}

	var created []models.Notification
	err = s.tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		post, err := tx.Posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		existing, err := tx.Engagement.GetLike(ctx, liker.ID, postID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errNoop
		}

		like = &models.Like{UserID: liker.ID, PostID: postID}
		if err := tx.Engagement.CreateLike(ctx, like); err != nil {
			return err
		}
		if err := award(ctx, tx.Points, models.PointsLike.Entry(liker.ID), models.PointsReceiveLike.Entry(post.UserID)); err != nil {
			return err
		}
		created, err = createNotifications(ctx, tx.Notifications, models.LikeNotification(*liker, *post))
		return err
	})
	if isNoop(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	observability.EngagementEvents.WithLabelValues("like").Inc()
	countNotifications(created)
	s.publish(ctx, created)
	return like, nil
}

// UnlikePost removes the caller's like and reverses the points it awarded.
// The like notification is kept.
func (s *EngagementService) UnlikePost(ctx context.Context, liker *models.User, postID uint) error {
	if err := requireUser(liker); err != nil {
		return err
	}
	err := s.tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		post, err := tx.Posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		like, err := tx.Engagement.GetLike(ctx, liker.ID, postID)
		if err != nil {
			return err
		}
		if like == nil {
			return models.NewNotFoundError("Like", nil)
		}
		if err := tx.Engagement.DeleteLike(ctx, like.ID); err != nil {
			return err
		}
		return award(ctx, tx.Points, models.PointsRemoveLike.Entry(liker.ID), models.PointsLoseLike.Entry(post.UserID))
	})
	if err != nil {
		return err
	}
	observability.EngagementEvents.WithLabelValues("unlike").Inc()
	return nil
}

// ListLikes returns the likes of a post with the liking users.
func (s *EngagementService) ListLikes(ctx context.Context, postID uint) ([]models.Like, error) {
	if _, err := s.repos.Posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.repos.Engagement.ListLikes(ctx, postID)
}

// Vote records the caller's choice on a poll, replacing an earlier vote for a
// different option. It returns the chosen option with its voters. Voting for
// the already chosen option is a no-op and returns a nil tally.
func (s *EngagementService) Vote(ctx context.Context, voter *models.User, postID, optionID uint) (tally *models.PollTally, err error) {
	ctx, done := traced(ctx, "engagement", "Vote")
	defer done(&err)

	if err := requireUser(voter); err != nil {
		return nil, err
	}
	err = s.tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		post, err := tx.Posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		if post.Type != models.PostTypePoll {
			return models.NewValidationError("Post is not a poll")
		}
		option, err := tx.Posts.GetPollOption(ctx, optionID)
		if err != nil {
			return err
		}
		if option.PostID != postID {
			return models.NewValidationError("Poll option does not belong to this post")
		}

		existing, err := tx.Engagement.GetVote(ctx, voter.ID, postID)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.PollOptionID == optionID {
				return errNoop
			}
			if err := tx.Engagement.DeleteVote(ctx, existing.ID); err != nil {
				return err
			}
		}
		return tx.Engagement.CreateVote(ctx, &models.PollVote{UserID: voter.ID, PostID: postID, PollOptionID: optionID})
	})
	if isNoop(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	observability.EngagementEvents.WithLabelValues("vote").Inc()
	option, err := s.repos.Posts.OptionTally(ctx, optionID)
	if err != nil {
		return nil, err
	}
	return &models.PollTally{PollOption: *option, VoteCount: len(option.Votes)}, nil
}

// Poll returns each option of a poll post with its votes and voters.
func (s *EngagementService) Poll(ctx context.Context, postID uint) ([]models.PollTally, error) {
	post, err := s.repos.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Type != models.PostTypePoll {
		return nil, models.NewValidationError("Post is not a poll")
	}
	options, err := s.repos.Posts.PollTally(ctx, postID)
	if err != nil {
		return nil, err
	}
	tally := make([]models.PollTally, 0, len(options))
	for _, o := range options {
		tally = append(tally, models.PollTally{PollOption: o, VoteCount: len(o.Votes)})
	}
	return tally, nil
}
