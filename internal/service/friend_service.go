package service

import (
	"context"

	"github.com/huzidev/dev-forum-api/internal/models"
	"github.com/huzidev/dev-forum-api/internal/repository"
)

// FriendService runs the friend request lifecycle and keeps the symmetric
// friendship rows and request notifications consistent with it.
type FriendService struct {
	core
}

// NewFriendService returns a new FriendService.
func NewFriendService(d Deps) *FriendService {
	return &FriendService{core: newCore(d, "friends")}
}

// SendRequest creates a PENDING request from sender to receiverID and
// notifies the receiver. Any existing relationship between the pair is a conflict.
func (s *FriendService) SendRequest(ctx context.Context, sender *models.User, receiverID uint) (req *models.FriendRequest, err error) {
	ctx, done := traced(ctx, "friends", "SendRequest")
	defer done(&err)

	if err := requireUser(sender); err != nil {
		return nil, err
	}
	if sender.ID == receiverID {
		return nil, models.NewValidationError("Cannot send friend request to yourself")
	}

	var created []models.Notification
	err = s.tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.Users.GetByID(ctx, receiverID); err != nil {
			return err
		}
		existing, err := tx.Friends.RequestsBetween(ctx, sender.ID, receiverID)
		if err != nil {
			return err
		}
		switch rel, _ := models.ResolveRelationship(sender.ID, receiverID, existing); rel {
		case models.RelationshipFriends:
			return models.NewConflictError("You are already friends")
		case models.RelationshipSent:
			return models.NewConflictError("Friend request already sent")
		case models.RelationshipReceived:
			return models.NewConflictError("You already have a pending friend request from this user")
		}

		req = &models.FriendRequest{SenderID: sender.ID, ReceiverID: receiverID, Status: models.FriendRequestPending}
		if err := tx.Friends.CreateRequest(ctx, req); err != nil {
			return err
		}
		created, err = createNotifications(ctx, tx.Notifications, models.FriendRequestNotification(*sender, receiverID))
		if err != nil {
			return err
		}
		if err := tx.Friends.LinkNotification(ctx, req.ID, created[0].ID); err != nil {
			return err
		}
		req.NotificationID = &created[0].ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	countNotifications(created)
	s.publish(ctx, created)
	return req, nil
}

// QueryRelationship reports how viewerID relates to otherID.
func (s *FriendService) QueryRelationship(ctx context.Context, viewerID, otherID uint) (*models.RelationshipView, error) {
	viewer, err := s.repos.Users.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	other, err := s.repos.Users.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}
	requests, err := s.repos.Friends.RequestsBetween(ctx, viewerID, otherID)
	if err != nil {
		return nil, err
	}

	rel, req := models.ResolveRelationship(viewerID, otherID, requests)
	view := &models.RelationshipView{
		Status:           rel,
		SenderUsername:   viewer.Username,
		ReceiverUsername: other.Username,
	}
	if req != nil {
		view.RequestID = req.ID
		if req.SenderID == otherID {
			view.SenderUsername, view.ReceiverUsername = other.Username, viewer.Username
		}
	}
	return view, nil
}

// AcceptRequest accepts the PENDING request between the caller and otherID,
// whichever direction it was sent in.
func (s *FriendService) AcceptRequest(ctx context.Context, caller *models.User, otherID uint) (req *models.FriendRequest, err error) {
	ctx, done := traced(ctx, "friends", "AcceptRequest")
	defer done(&err)

	if err := requireUser(caller); err != nil {
		return nil, err
	}

	var created []models.Notification
	err = s.tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		requests, err := tx.Friends.RequestsBetween(ctx, caller.ID, otherID)
		if err != nil {
			return err
		}
		for i := range requests {
			if requests[i].Status == models.FriendRequestPending {
				req = &requests[i]
				break
			}
		}
		if req == nil {
			return models.NewNotFoundError("Friend request", nil)
		}

		if err := tx.Friends.UpdateRequestStatus(ctx, req.ID, models.FriendRequestAccepted); err != nil {
			return err
		}
		req.Status = models.FriendRequestAccepted
		if err := tx.Friends.CreateFriendship(ctx, req.SenderID, req.ReceiverID); err != nil {
			return err
		}

		toSender, toReceiver := models.AcceptedNotifications(req.Sender, req.Receiver)
		created, err = createNotifications(ctx, tx.Notifications, toSender, toReceiver)
		return err
	})
	if err != nil {
		return nil, err
	}

	countNotifications(created)
	s.publish(ctx, created)
	return req, nil
}

// CancelRequest declines, cancels or unfriends: every active request between
// the pair becomes DECLINED, its notification is removed and the friendship
// rows are deleted.
func (s *FriendService) CancelRequest(ctx context.Context, caller *models.User, otherID uint) (status models.FriendRequestStatus, err error) {
	ctx, done := traced(ctx, "friends", "CancelRequest")
	defer done(&err)

	if err := requireUser(caller); err != nil {
		return "", err
	}

	err = s.tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		requests, err := tx.Friends.RequestsBetween(ctx, caller.ID, otherID)
		if err != nil {
			return err
		}
		if len(requests) == 0 {
			return models.NewNotFoundError("Friend request", nil)
		}
		for i := range requests {
			if err := declineRequest(ctx, tx, &requests[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return models.FriendRequestDeclined, nil
}

// DeleteRequest declines a request by id. Only the two parties or an admin may
// do so. A request that is already DECLINED is a conflict and changes nothing.
func (s *FriendService) DeleteRequest(ctx context.Context, caller *models.User, id uint) (req *models.FriendRequest, err error) {
	ctx, done := traced(ctx, "friends", "DeleteRequest")
	defer done(&err)

	if err := requireUser(caller); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		req, err = tx.Friends.GetRequest(ctx, id)
		if err != nil {
			return err
		}
		if req.SenderID != caller.ID && req.ReceiverID != caller.ID && !caller.IsAdmin() {
			return models.NewForbiddenError("You can only delete your own friend requests")
		}
		return declineRequest(ctx, tx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// declineRequest moves an active request to DECLINED and drops its
// notification. The friendship rows belong to the ACCEPTED request, so they
// are removed only when that is the request being declined.
func declineRequest(ctx context.Context, tx *repository.Repositories, req *models.FriendRequest) error {
	if req.Status == models.FriendRequestDeclined {
		return models.NewConflictError("Friend request already declined")
	}
	if !req.Status.CanTransition(models.FriendRequestDeclined) {
		return models.NewConflictError("Friend request cannot be declined")
	}
	wasAccepted := req.Status == models.FriendRequestAccepted

	if err := tx.Friends.UpdateRequestStatus(ctx, req.ID, models.FriendRequestDeclined); err != nil {
		return err
	}
	req.Status = models.FriendRequestDeclined
	if req.NotificationID != nil {
		if err := tx.Notifications.Delete(ctx, *req.NotificationID); err != nil {
			return err
		}
		req.NotificationID = nil
	}
	if !wasAccepted {
		return nil
	}
	return tx.Friends.DeleteFriendship(ctx, req.SenderID, req.ReceiverID)
}

// ListFriends returns the user's friends with their point totals and the
// user's pending requests in both directions.
func (s *FriendService) ListFriends(ctx context.Context, userID uint) (*models.FriendsOverview, error) {
	if _, err := s.repos.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	friends, err := s.repos.Friends.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(friends))
	for _, f := range friends {
		ids = append(ids, f.ID)
	}
	totals, err := s.repos.Points.Totals(ctx, ids)
	if err != nil {
		return nil, err
	}

	overview := &models.FriendsOverview{Friends: make([]models.UserSummary, 0, len(friends))}
	for _, f := range friends {
		summary := f.Summary()
		total := totals[f.ID]
		summary.TotalPoints = &total
		overview.Friends = append(overview.Friends, summary)
	}

	if overview.SentRequests, err = s.ListSentRequests(ctx, userID); err != nil {
		return nil, err
	}
	if overview.ReceivedRequests, err = s.ListReceivedRequests(ctx, userID); err != nil {
		return nil, err
	}
	return overview, nil
}

// ListSentRequests returns the user's PENDING outgoing requests with the receiver's profile.
func (s *FriendService) ListSentRequests(ctx context.Context, userID uint) ([]models.FriendRequestView, error) {
	requests, err := s.repos.Friends.ListPendingSent(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]models.FriendRequestView, 0, len(requests))
	for _, r := range requests {
		views = append(views, models.FriendRequestView{ID: r.ID, Status: r.Status, CreatedAt: r.CreatedAt, User: r.Receiver.Summary()})
	}
	return views, nil
}

// ListReceivedRequests returns the user's PENDING incoming requests with the sender's profile.
func (s *FriendService) ListReceivedRequests(ctx context.Context, userID uint) ([]models.FriendRequestView, error) {
	requests, err := s.repos.Friends.ListPendingReceived(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]models.FriendRequestView, 0, len(requests))
	for _, r := range requests {
		views = append(views, models.FriendRequestView{ID: r.ID, Status: r.Status, CreatedAt: r.CreatedAt, User: r.Sender.Summary()})
	}
	return views, nil
}
