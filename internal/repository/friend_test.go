package repository

import (
	"context"
	"testing"

	"github.com/huzidev/dev-forum-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendRepository(t *testing.T) {
	db := setupSQLite(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	t.Run("requests between a pair", func(t *testing.T) {
		declined := &models.FriendRequest{SenderID: alice.ID, ReceiverID: bob.ID, Status: models.FriendRequestDeclined}
		pending := &models.FriendRequest{SenderID: bob.ID, ReceiverID: alice.ID, Status: models.FriendRequestPending}
		other := &models.FriendRequest{SenderID: alice.ID, ReceiverID: carol.ID, Status: models.FriendRequestPending}
		for _, r := range []*models.FriendRequest{declined, pending, other} {
			require.NoError(t, repo.CreateRequest(ctx, r))
		}

		reqs, err := repo.RequestsBetween(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		require.Len(t, reqs, 1)
		assert.Equal(t, pending.ID, reqs[0].ID)
		assert.Equal(t, "bob", reqs[0].Sender.Username)

		sent, err := repo.ListPendingSent(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, sent, 1)
		assert.Equal(t, "carol", sent[0].Receiver.Username)

		received, err := repo.ListPendingReceived(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, "bob", received[0].Sender.Username)

		require.NoError(t, repo.UpdateRequestStatus(ctx, pending.ID, models.FriendRequestAccepted))
		got, err := repo.GetRequest(ctx, pending.ID)
		require.NoError(t, err)
		assert.Equal(t, models.FriendRequestAccepted, got.Status)

		_, err = repo.GetRequest(ctx, 9999)
		assert.True(t, models.HasCode(err, models.CodeNotFound))
	})

	t.Run("friendship edges are symmetric", func(t *testing.T) {
		require.NoError(t, repo.CreateFriendship(ctx, alice.ID, bob.ID))
		// a second insert of the same pair is ignored
		require.NoError(t, repo.CreateFriendship(ctx, bob.ID, alice.ID))

		var count int64
		require.NoError(t, db.Model(&models.Friendship{}).Count(&count).Error)
		assert.Equal(t, int64(2), count)

		friends, err := repo.ListFriends(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, friends, 1)
		assert.Equal(t, alice.ID, friends[0].ID)

		counts, err := repo.CountFriends(ctx, []uint{alice.ID, bob.ID, carol.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[alice.ID])
		assert.Equal(t, int64(1), counts[bob.ID])
		assert.Zero(t, counts[carol.ID])

		require.NoError(t, repo.DeleteFriendship(ctx, bob.ID, alice.ID))
		require.NoError(t, db.Model(&models.Friendship{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}
