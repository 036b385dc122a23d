package service

import (
	"context"
	"testing"

	"github.com/huzidev/dev-forum-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relationship(t *testing.T, svc *FriendService, viewer, other uint) models.Relationship {
	t.Helper()
	view, err := svc.QueryRelationship(context.Background(), viewer, other)
	require.NoError(t, err)
	return view.Status
}

func TestFriendService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	svc := NewFriendService(env.deps)
	ctx := context.Background()
	alice, bob := env.user(t, "alice"), env.user(t, "bob")

	req, err := svc.SendRequest(ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestPending, req.Status)
	require.NotNil(t, req.NotificationID)

	assert.Equal(t, models.RelationshipSent, relationship(t, svc, alice.ID, bob.ID))
	assert.Equal(t, models.RelationshipReceived, relationship(t, svc, bob.ID, alice.ID))

	_, err = svc.SendRequest(ctx, alice, bob.ID)
	assertCode(t, err, models.CodeConflict)
	_, err = svc.SendRequest(ctx, bob, alice.ID)
	assertCode(t, err, models.CodeConflict)

	accepted, err := svc.AcceptRequest(ctx, bob, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, accepted.ID)
	assert.Equal(t, models.FriendRequestAccepted, accepted.Status)
	assert.Equal(t, models.RelationshipFriends, relationship(t, svc, alice.ID, bob.ID))
	assert.Equal(t, models.RelationshipFriends, relationship(t, svc, bob.ID, alice.ID))
	assert.Equal(t, int64(2), env.count(t, &models.Friendship{}, "1 = 1"))

	assert.Equal(t, []models.NotificationType{
		models.NotificationFriendRequest,
		models.NotificationFriendRequestAccepted,
		models.NotificationFriendRequestAccepted,
	}, env.pub.types())
	assert.Equal(t, int64(1), env.count(t, &models.Notification{}, "user_id = ?", alice.ID))
	assert.Equal(t, int64(2), env.count(t, &models.Notification{}, "user_id = ?", bob.ID))

	_, err = svc.SendRequest(ctx, alice, bob.ID)
	assertCode(t, err, models.CodeConflict)

	status, err := svc.CancelRequest(ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestDeclined, status)
	assert.Equal(t, models.RelationshipNone, relationship(t, svc, alice.ID, bob.ID))
	assert.Equal(t, int64(0), env.count(t, &models.Friendship{}, "1 = 1"))
	// the request notification goes with the request
	assert.Equal(t, int64(1), env.count(t, &models.Notification{}, "user_id = ?", bob.ID))

	_, err = svc.CancelRequest(ctx, alice, bob.ID)
	assertCode(t, err, models.CodeNotFound)

	_, err = svc.SendRequest(ctx, bob, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RelationshipReceived, relationship(t, svc, alice.ID, bob.ID))
}

func TestFriendService_SendRequestValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := NewFriendService(env.deps)
	ctx := context.Background()
	alice := env.user(t, "alice")

	_, err := svc.SendRequest(ctx, alice, alice.ID)
	assertCode(t, err, models.CodeValidation)

	_, err = svc.SendRequest(ctx, alice, 999)
	assertCode(t, err, models.CodeNotFound)

	_, err = svc.SendRequest(ctx, nil, alice.ID)
	assertCode(t, err, models.CodeUnauthorized)

	assert.Empty(t, env.pub.types())
}

func TestFriendService_AcceptWithoutPendingRequest(t *testing.T) {
	env := newTestEnv(t)
	svc := NewFriendService(env.deps)
	alice, bob := env.user(t, "alice"), env.user(t, "bob")

	_, err := svc.AcceptRequest(context.Background(), alice, bob.ID)
	assertCode(t, err, models.CodeNotFound)
	assert.Equal(t, int64(0), env.count(t, &models.Friendship{}, "1 = 1"))
}

func TestFriendService_DeleteRequest(t *testing.T) {
	env := newTestEnv(t)
	svc := NewFriendService(env.deps)
	ctx := context.Background()
	alice, bob, carol := env.user(t, "alice"), env.user(t, "bob"), env.user(t, "carol")
	admin := env.admin(t, "root")

	req, err := svc.SendRequest(ctx, alice, bob.ID)
	require.NoError(t, err)

	_, err = svc.DeleteRequest(ctx, carol, req.ID)
	assertCode(t, err, models.CodeForbidden)

	deleted, err := svc.DeleteRequest(ctx, admin, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestDeclined, deleted.Status)
	assert.Equal(t, models.RelationshipNone, relationship(t, svc, bob.ID, alice.ID))

	_, err = svc.DeleteRequest(ctx, alice, 12345)
	assertCode(t, err, models.CodeNotFound)
}

func TestFriendService_DeleteRequestAccepted(t *testing.T) {
	env := newTestEnv(t)
	svc := NewFriendService(env.deps)
	ctx := context.Background()
	alice, bob := env.user(t, "alice"), env.user(t, "bob")

	req, err := svc.SendRequest(ctx, alice, bob.ID)
	require.NoError(t, err)
	_, err = svc.AcceptRequest(ctx, bob, alice.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), env.count(t, &models.Friendship{}, "1 = 1"))

	deleted, err := svc.DeleteRequest(ctx, bob, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestDeclined, deleted.Status)
	assert.Equal(t, int64(0), env.count(t, &models.Friendship{}, "1 = 1"))
	assert.Equal(t, models.RelationshipNone, relationship(t, svc, alice.ID, bob.ID))
	assert.Equal(t, models.RelationshipNone, relationship(t, svc, bob.ID, alice.ID))

	_, err = svc.DeleteRequest(ctx, bob, req.ID)
	assertCode(t, err, models.CodeConflict)
}

func TestFriendService_StaleRequestLeavesNewFriendship(t *testing.T) {
	env := newTestEnv(t)
	svc := NewFriendService(env.deps)
	ctx := context.Background()
	alice, bob := env.user(t, "alice"), env.user(t, "bob")

	old, err := svc.SendRequest(ctx, alice, bob.ID)
	require.NoError(t, err)
	_, err = svc.CancelRequest(ctx, bob, alice.ID)
	require.NoError(t, err)

	_, err = svc.SendRequest(ctx, alice, bob.ID)
	require.NoError(t, err)
	_, err = svc.AcceptRequest(ctx, bob, alice.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), env.count(t, &models.Friendship{}, "1 = 1"))

	_, err = svc.DeleteRequest(ctx, alice, old.ID)
	assertCode(t, err, models.CodeConflict)

	assert.Equal(t, int64(2), env.count(t, &models.Friendship{}, "1 = 1"))
	assert.Equal(t, models.RelationshipFriends, relationship(t, svc, alice.ID, bob.ID))
	assert.Equal(t, models.RelationshipFriends, relationship(t, svc, bob.ID, alice.ID))

	// unfriending through the pair only touches the live request
	status, err := svc.CancelRequest(ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestDeclined, status)
	assert.Equal(t, int64(0), env.count(t, &models.Friendship{}, "1 = 1"))
	assert.Equal(t, models.RelationshipNone, relationship(t, svc, bob.ID, alice.ID))
	assert.Equal(t, int64(2), env.count(t, &models.FriendRequest{}, "status = ?", models.FriendRequestDeclined))
}

func TestFriendService_CancelPendingKeepsOtherFriendships(t *testing.T) {
	env := newTestEnv(t)
	svc := NewFriendService(env.deps)
	ctx := context.Background()
	alice, bob, carol := env.user(t, "alice"), env.user(t, "bob"), env.user(t, "carol")

	_, err := svc.SendRequest(ctx, alice, bob.ID)
	require.NoError(t, err)
	_, err = svc.AcceptRequest(ctx, bob, alice.ID)
	require.NoError(t, err)
	_, err = svc.SendRequest(ctx, carol, alice.ID)
	require.NoError(t, err)

	status, err := svc.CancelRequest(ctx, alice, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestDeclined, status)
	assert.Equal(t, int64(2), env.count(t, &models.Friendship{}, "1 = 1"))
	assert.Equal(t, models.RelationshipFriends, relationship(t, svc, alice.ID, bob.ID))
	assert.Equal(t, models.RelationshipNone, relationship(t, svc, carol.ID, alice.ID))
}

func TestFriendService_ListFriends(t *testing.T) {
	env := newTestEnv(t)
	svc := NewFriendService(env.deps)
	ctx := context.Background()
	alice, bob, carol := env.user(t, "alice"), env.user(t, "bob"), env.user(t, "carol")

	_, err := svc.SendRequest(ctx, alice, bob.ID)
	require.NoError(t, err)
	_, err = svc.AcceptRequest(ctx, bob, alice.ID)
	require.NoError(t, err)
	_, err = svc.SendRequest(ctx, carol, alice.ID)
	require.NoError(t, err)
	require.NoError(t, env.deps.Repos.Points.Append(ctx, models.PointsCreatePost.Entry(bob.ID)))

	overview, err := svc.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, overview.Friends, 1)
	assert.Equal(t, "bob", overview.Friends[0].Username)
	require.NotNil(t, overview.Friends[0].TotalPoints)
	assert.Equal(t, int64(10), *overview.Friends[0].TotalPoints)
	require.Len(t, overview.ReceivedRequests, 1)
	assert.Equal(t, "carol", overview.ReceivedRequests[0].User.Username)
	assert.Empty(t, overview.SentRequests)
}
