package service

import (
	"context"
	"testing"

	"github.com/huzidev/dev-forum-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPost(t *testing.T, env *testEnv, author *models.User, in CreatePostInput) *models.Post {
	t.Helper()
	post, err := NewPostService(env.deps).CreatePost(context.Background(), author, in)
	require.NoError(t, err)
	return post
}

func TestEngagementService_LikeIsIdempotentAndReversible(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEngagementService(env.deps)
	ctx := context.Background()
	author, fan := env.user(t, "author"), env.user(t, "fan")
	post := createPost(t, env, author, CreatePostInput{Content: "hello", Type: "TEXT"})
	require.Equal(t, int64(10), env.total(t, author.ID))

	like, err := svc.LikePost(ctx, fan, post.ID)
	require.NoError(t, err)
	require.NotNil(t, like)
	assert.Equal(t, int64(2), env.total(t, fan.ID))
	assert.Equal(t, int64(11), env.total(t, author.ID))

	again, err := svc.LikePost(ctx, fan, post.ID)
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.Equal(t, int64(2), env.total(t, fan.ID))
	assert.Equal(t, int64(11), env.total(t, author.ID))
	assert.Equal(t, []models.NotificationType{models.NotificationLikePost}, env.pub.types())

	require.NoError(t, svc.UnlikePost(ctx, fan, post.ID))
	assert.Equal(t, int64(0), env.total(t, fan.ID))
	assert.Equal(t, int64(10), env.total(t, author.ID))

	likes, err := svc.ListLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, likes)

	assertCode(t, svc.UnlikePost(ctx, fan, post.ID), models.CodeNotFound)
	_, err = svc.LikePost(ctx, fan, 999)
	assertCode(t, err, models.CodeNotFound)
}

func TestEngagementService_VoteReplacesEarlierVote(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEngagementService(env.deps)
	ctx := context.Background()
	author, voter := env.user(t, "author"), env.user(t, "voter")
	poll := createPost(t, env, author, CreatePostInput{Content: "tabs or spaces", Type: "POLL", Options: []string{"tabs", "spaces"}})
	require.Len(t, poll.PollOptions, 2)
	tabs, spaces := poll.PollOptions[0], poll.PollOptions[1]

	tally, err := svc.Vote(ctx, voter, poll.ID, tabs.ID)
	require.NoError(t, err)
	require.NotNil(t, tally)
	assert.Equal(t, tabs.ID, tally.ID)
	assert.Equal(t, 1, tally.VoteCount)
	require.Len(t, tally.Votes, 1)
	assert.Equal(t, voter.ID, tally.Votes[0].User.ID)

	tally, err = svc.Vote(ctx, voter, poll.ID, tabs.ID)
	require.NoError(t, err)
	assert.Nil(t, tally)

	tally, err = svc.Vote(ctx, voter, poll.ID, spaces.ID)
	require.NoError(t, err)
	require.NotNil(t, tally)
	assert.Equal(t, spaces.ID, tally.ID)
	assert.Equal(t, 1, tally.VoteCount)
	assert.Equal(t, int64(1), env.count(t, &models.PollVote{}, "user_id = ? AND post_id = ?", voter.ID, poll.ID))
	assert.Equal(t, int64(1), env.count(t, &models.PollVote{}, "poll_option_id = ?", spaces.ID))

	text := createPost(t, env, author, CreatePostInput{Content: "plain", Type: "TEXT"})
	_, err = svc.Vote(ctx, voter, text.ID, tabs.ID)
	assertCode(t, err, models.CodeValidation)

	other := createPost(t, env, author, CreatePostInput{Content: "other", Type: "POLL", Options: []string{"x"}})
	_, err = svc.Vote(ctx, voter, poll.ID, other.PollOptions[0].ID)
	assertCode(t, err, models.CodeValidation)
}

func TestCommentService_AwardsBothParties(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCommentService(env.deps)
	ctx := context.Background()
	author, commenter := env.user(t, "author"), env.user(t, "commenter")
	post := createPost(t, env, author, CreatePostInput{Content: "hello", Type: "TEXT"})

	comment, err := svc.AddComment(ctx, commenter, post.ID, "  nice post  ")
	require.NoError(t, err)
	assert.Equal(t, "nice post", comment.Content)
	assert.Equal(t, int64(13), env.total(t, author.ID))
	assert.Equal(t, int64(5), env.total(t, commenter.ID))
	assert.Equal(t, []models.NotificationType{models.NotificationComment}, env.pub.types())

	_, err = svc.AddComment(ctx, commenter, post.ID, "   ")
	assertCode(t, err, models.CodeValidation)

	_, err = svc.UpdateComment(ctx, author, comment.ID, "hijack")
	assertCode(t, err, models.CodeForbidden)
	updated, err := svc.UpdateComment(ctx, commenter, comment.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	_, err = svc.DeleteComment(ctx, author, comment.ID)
	assertCode(t, err, models.CodeForbidden)
	_, err = svc.DeleteComment(ctx, commenter, comment.ID)
	require.NoError(t, err)
	// points are kept after deletion
	assert.Equal(t, int64(5), env.total(t, commenter.ID))

	comments, err := svc.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCommentService_RejectsDeletedPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author, admin := env.user(t, "author"), env.admin(t, "root")
	post := createPost(t, env, author, CreatePostInput{Content: "hello", Type: "TEXT"})

	_, err := NewModerationService(env.deps).UpdatePostStatus(ctx, admin, post.ID, "deleted", "spam")
	require.NoError(t, err)

	_, err = NewCommentService(env.deps).AddComment(ctx, author, post.ID, "still here?")
	assertCode(t, err, models.CodeNotFound)
}
