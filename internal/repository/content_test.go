package repository

import (
	"context"
	"testing"

	"github.com/huzidev/dev-forum-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_PagingAndOwnership(t *testing.T) {
	db := setupSQLite(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	var ids []uint
	for i := 0; i < 3; i++ {
		n := models.FriendRequestNotification(*bob, alice.ID)
		require.NoError(t, repo.Create(ctx, &n))
		ids = append(ids, n.ID)
	}
	other := models.FriendRequestNotification(*alice, bob.ID)
	require.NoError(t, repo.Create(ctx, &other))

	page, total, err := repo.ListByUser(ctx, alice.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID, "newest first")

	require.NoError(t, repo.MarkRead(ctx, ids[0]))
	unread, err := repo.CountUnread(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	// bob cannot remove alice's rows
	deleted, err := repo.DeleteIDs(ctx, []uint{ids[0], other.ID}, &bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	deleted, err = repo.DeleteIDs(ctx, ids, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	_, err = repo.GetByID(ctx, ids[1])
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestPointRepository_Totals(t *testing.T) {
	db := setupSQLite(t)
	repo := NewPointRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	total, err := repo.Total(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, total)

	require.NoError(t, repo.Append(ctx,
		models.PointsCreatePost.Entry(alice.ID),
		models.PointsLike.Entry(bob.ID),
		models.PointsReceiveLike.Entry(alice.ID),
	))
	require.NoError(t, repo.Append(ctx, models.PointsRemoveLike.Entry(bob.ID), models.PointsLoseLike.Entry(alice.ID)))

	total, err = repo.Total(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)

	totals, err := repo.Totals(ctx, []uint{alice.ID, bob.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(10), totals[alice.ID])
	assert.Equal(t, int64(0), totals[bob.ID])

	history, err := repo.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestQuestionRepository_CountSolved(t *testing.T) {
	db := setupSQLite(t)
	repo := NewQuestionRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	solved := &models.Question{UserID: alice.ID, Title: "How?", Content: "...", Status: models.QuestionAnswered}
	answeredNoThread := &models.Question{UserID: alice.ID, Title: "Why?", Content: "...", Status: models.QuestionAnswered}
	open := &models.Question{UserID: alice.ID, Title: "When?", Content: "...", Status: models.QuestionOpen}
	for _, q := range []*models.Question{solved, answeredNoThread, open} {
		require.NoError(t, repo.Create(ctx, q))
	}
	require.NoError(t, repo.CreateThread(ctx, &models.Thread{QuestionID: solved.ID, UserID: bob.ID, Content: "like this", Status: models.ThreadSolution}))
	require.NoError(t, repo.CreateThread(ctx, &models.Thread{QuestionID: open.ID, UserID: bob.ID, Content: "maybe", Status: models.ThreadOpen}))

	counts, err := repo.CountSolved(ctx, []uint{alice.ID, bob.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[alice.ID])
	assert.Zero(t, counts[bob.ID])

	detailed, err := repo.GetDetailed(ctx, solved.ID)
	require.NoError(t, err)
	require.Len(t, detailed.Threads, 1)
	assert.Equal(t, "bob", detailed.Threads[0].User.Username)
	assert.True(t, detailed.Solved())

	require.NoError(t, repo.Delete(ctx, open.ID))
	var threads int64
	require.NoError(t, db.Model(&models.Thread{}).Count(&threads).Error)
	assert.Equal(t, int64(1), threads)
}

func TestPlanRepository_BenefitsAndDelete(t *testing.T) {
	db := setupSQLite(t)
	plans := NewPlanRepository(db)
	users := NewUserRepository(db)
	ctx := context.Background()

	plan := &models.Plan{
		Title:    "Pro",
		Price:    9.99,
		Benefits: []models.Benefit{{Description: "Ad free"}, {Description: "Badge"}},
	}
	require.NoError(t, plans.Create(ctx, plan))

	err := plans.Create(ctx, &models.Plan{Title: "Pro"})
	assert.True(t, models.HasCode(err, models.CodeConflict))

	found, err := plans.GetByTitle(ctx, "Pro")
	require.NoError(t, err)
	require.NotNil(t, found)
	missing, err := plans.GetByTitle(ctx, "Gold")
	require.NoError(t, err)
	assert.Nil(t, missing)

	diff := models.DiffBenefits(plan.ID, found.Benefits, []models.BenefitInput{
		{ID: found.Benefits[0].ID, Description: "No ads"},
		{Description: "Priority support"},
	})
	require.NoError(t, plans.ApplyBenefitDiff(ctx, diff))

	got, err := plans.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	var descriptions []string
	for _, b := range got.Benefits {
		descriptions = append(descriptions, b.Description)
	}
	assert.Equal(t, []string{"No ads", "Priority support"}, descriptions)

	alice := seedUser(t, db, "alice")
	require.NoError(t, users.SetPlan(ctx, alice.ID, plan.ID))

	require.NoError(t, plans.Delete(ctx, plan.ID))
	reloaded, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.PlanID)

	assert.True(t, models.HasCode(plans.Delete(ctx, plan.ID), models.CodeNotFound))
}

func TestBugRepository(t *testing.T) {
	db := setupSQLite(t)
	repo := NewBugRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bug := &models.BugReport{UserID: alice.ID, Title: "Crash", Description: "on save", Status: models.BugOpen}
	require.NoError(t, repo.Create(ctx, bug))
	require.NoError(t, repo.UpdateStatus(ctx, bug.ID, models.BugResolved, "fixed in 1.2"))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.BugResolved, all[0].Status)
	assert.Equal(t, "fixed in 1.2", all[0].Comment)
	assert.Equal(t, "alice", all[0].User.Username)

	mine, err := repo.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
