package service

import (
	"context"
	"testing"

	"github.com/huzidev/dev-forum-api/internal/config"
	"github.com/huzidev/dev-forum-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateIfNotExists(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.deps)
	ctx := context.Background()

	in := UserInput{ExternalID: "user_abc", Email: "abc@forum.test", Username: "abc"}
	user, created, err := svc.CreateIfNotExists(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleUser, user.Role)

	again, created, err := svc.CreateIfNotExists(ctx, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)

	_, _, err = svc.CreateIfNotExists(ctx, UserInput{Email: "x@forum.test"})
	assertCode(t, err, models.CodeValidation)
}

func TestUserService_UpdateByExternalIDCreatesMissing(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.deps)
	ctx := context.Background()

	user, err := svc.UpdateByExternalID(ctx, UserInput{ExternalID: "user_new", Email: "new@forum.test", Username: "new"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	updated, err := svc.UpdateByExternalID(ctx, UserInput{ExternalID: "user_new", Email: "new@forum.test", Username: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, updated.ID)
	assert.Equal(t, "renamed", updated.Username)
	assert.Equal(t, models.RoleUser, updated.Role)

	require.NoError(t, svc.DeleteByExternalID(ctx, "user_new"))
	assertCode(t, svc.DeleteByExternalID(ctx, "user_new"), models.CodeNotFound)
}

func TestUserService_StatsAndToggles(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.deps)
	ctx := context.Background()
	alice, bob := env.user(t, "alice"), env.user(t, "bob")
	admin := env.admin(t, "root")

	friends := NewFriendService(env.deps)
	_, err := friends.SendRequest(ctx, alice, bob.ID)
	require.NoError(t, err)
	_, err = friends.AcceptRequest(ctx, bob, alice.ID)
	require.NoError(t, err)
	createPost(t, env, alice, CreatePostInput{Content: "hi", Type: "TEXT"})

	rows, err := svc.ListWithStats(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(1), rows[0].TotalFriends)
	assert.Equal(t, int64(10), rows[0].TotalPoints)
	assert.Nil(t, rows[0].SolvedQuestions)
	assert.Equal(t, int64(0), rows[2].TotalFriends)

	enrolled, err := svc.ToggleEnrollment(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, enrolled)
	list, err := svc.ListEnrolled(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].SolvedQuestions)
	assert.Equal(t, int64(0), *list[0].SolvedQuestions)

	banned, err := svc.ToggleBan(ctx, admin, bob.ID)
	require.NoError(t, err)
	assert.True(t, banned)
	banned, err = svc.ToggleBan(ctx, admin, bob.ID)
	require.NoError(t, err)
	assert.False(t, banned)
	_, err = svc.ToggleBan(ctx, admin, admin.ID)
	assertCode(t, err, models.CodeValidation)

	profile, err := svc.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), profile.TotalPoints)
	assert.Len(t, profile.Posts, 1)
	assert.Len(t, profile.Friends, 1)

	uf, err := svc.Friends(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, uf.Friends, 1)
	assert.Equal(t, "alice", uf.Friends[0].Username)

	promoted, err := svc.SetRoleByExternalID(ctx, bob.ExternalID, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin())
	_, err = svc.SetRoleByExternalID(ctx, bob.ExternalID, "OWNER")
	assertCode(t, err, models.CodeValidation)
}

func identityConfig() *config.Config {
	return &config.Config{
		UserClerkWebhookSecret:  "user-secret",
		AdminClerkWebhookSecret: "admin-secret",
		AdminOrigins:            "admin.forum.test",
	}
}

func TestIdentityService_Webhook(t *testing.T) {
	env := newTestEnv(t)
	users := NewUserService(env.deps)
	svc := NewIdentityService(env.deps, users, identityConfig())
	ctx := context.Background()

	flat := []byte(`{"userId":"user_flat","email":"flat@forum.test","username":"flat"}`)
	_, err := svc.HandleWebhook(ctx, flat, "deadbeef", "https://forum.test")
	assertCode(t, err, models.CodeUnauthorized)
	_, err = svc.HandleWebhook(ctx, flat, Sign(flat, "admin-secret"), "https://forum.test")
	assertCode(t, err, models.CodeUnauthorized)

	res, err := svc.HandleWebhook(ctx, flat, Sign(flat, "user-secret"), "https://forum.test")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, EventUserCreated, res.Event)
	assert.Equal(t, models.RoleUser, res.User.Role)

	created := []byte(`{"type":"user.created","data":{"id":"user_env","first_name":"Ada","username":"ada",
		"primary_email_address_id":"idn_2","image_url":"https://img.test/ada.png",
		"email_addresses":[{"id":"idn_1","email_address":"old@forum.test"},{"id":"idn_2","email_address":"ada@forum.test"}]}}`)
	res, err = svc.HandleWebhook(ctx, created, Sign(created, "admin-secret"), "https://admin.forum.test")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "ada@forum.test", res.User.Email)
	assert.Equal(t, "Ada", res.User.FirstName)
	assert.Equal(t, "https://img.test/ada.png", res.User.ProfilePicture)
	assert.Equal(t, models.RoleAdmin, res.User.Role)

	updated := []byte(`{"type":"user.updated","data":{"id":"user_flat","username":"flatter","email_addresses":[{"email_address":"flat@forum.test"}]}}`)
	res, err = svc.HandleWebhook(ctx, updated, Sign(updated, "user-secret"), "")
	require.NoError(t, err)
	assert.Equal(t, "flatter", res.User.Username)
	assert.Equal(t, models.RoleUser, res.User.Role)

	deleted := []byte(`{"type":"user.deleted","data":{"id":"user_flat"}}`)
	res, err = svc.HandleWebhook(ctx, deleted, Sign(deleted, "user-secret"), "")
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	_, err = users.GetByExternalID(ctx, "user_flat")
	assertCode(t, err, models.CodeNotFound)

	garbage := []byte(`{not json`)
	_, err = svc.HandleWebhook(ctx, garbage, Sign(garbage, "user-secret"), "")
	assertCode(t, err, models.CodeValidation)
}

func TestPlanService_CreateUpdateBuy(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPlanService(env.deps)
	ctx := context.Background()
	buyer := env.user(t, "buyer")

	plan, err := svc.Create(ctx, PlanInput{
		Title:    "Pro",
		Price:    9.99,
		Benefits: []models.BenefitInput{{Description: "Ad free"}, {Description: "Badge"}, {Description: " "}},
	})
	require.NoError(t, err)
	require.Len(t, plan.Benefits, 2)

	_, err = svc.Create(ctx, PlanInput{Title: "Pro"})
	assertCode(t, err, models.CodeConflict)
	_, err = svc.Create(ctx, PlanInput{Title: "Cheap", Price: -1})
	assertCode(t, err, models.CodeValidation)

	adFree := plan.Benefits[0]
	updated, err := svc.Update(ctx, plan.ID, PlanInput{
		Title: "Pro+",
		Price: 12,
		Benefits: []models.BenefitInput{
			{ID: adFree.ID, Description: "No ads"},
			{Description: "Priority support"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Pro+", updated.Title)
	require.Len(t, updated.Benefits, 2)
	assert.Equal(t, adFree.ID, updated.Benefits[0].ID)
	assert.Equal(t, "No ads", updated.Benefits[0].Description)
	assert.Equal(t, "Priority support", updated.Benefits[1].Description)

	user, err := svc.Buy(ctx, buyer, plan.ID)
	require.NoError(t, err)
	require.NotNil(t, user.PlanID)
	assert.Equal(t, plan.ID, *user.PlanID)
	_, err = svc.Buy(ctx, buyer, 999)
	assertCode(t, err, models.CodeNotFound)

	require.NoError(t, svc.Delete(ctx, plan.ID))
	after, err := env.deps.Repos.Users.GetByID(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Nil(t, after.PlanID)
	assert.Equal(t, int64(0), env.count(t, &models.Benefit{}, "1 = 1"))

	n, err := svc.EnsureCatalog(ctx, []models.Plan{{Title: "Free"}, {Title: "Team", Price: 30}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = svc.EnsureCatalog(ctx, []models.Plan{{Title: "Free"}})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPointService(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPointService(env.deps)
	ctx := context.Background()
	user := env.user(t, "user")

	total, err := svc.Total(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	entry, total, err := svc.Append(ctx, PointEntryInput{UserID: user.ID, Points: 25, Description: "event winner"})
	require.NoError(t, err)
	assert.Equal(t, models.PointTypeManual, entry.Type)
	assert.Equal(t, int64(25), total)

	_, _, err = svc.Append(ctx, PointEntryInput{UserID: user.ID, Points: -5, Type: "penalty"})
	require.NoError(t, err)

	view, err := svc.UserPoints(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), view.TotalPoints)
	assert.Len(t, view.Points, 2)

	_, _, err = svc.Append(ctx, PointEntryInput{UserID: user.ID})
	assertCode(t, err, models.CodeValidation)
	_, _, err = svc.Append(ctx, PointEntryInput{UserID: 999, Points: 1})
	assertCode(t, err, models.CodeNotFound)
	_, err = svc.Total(ctx, 999)
	assertCode(t, err, models.CodeNotFound)
}

func TestNotificationService(t *testing.T) {
	env := newTestEnv(t)
	svc := NewNotificationService(env.deps)
	ctx := context.Background()
	alice, bob := env.user(t, "alice"), env.user(t, "bob")
	admin := env.admin(t, "root")

	var ids []uint
	for i := 0; i < 3; i++ {
		n, err := svc.Create(ctx, NotificationInput{UserID: alice.ID, Type: "comment", Content: "hello"})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}
	assert.Len(t, env.pub.types(), 3)
	_, err := svc.Create(ctx, NotificationInput{UserID: 999, Type: "COMMENT", Content: "x"})
	assertCode(t, err, models.CodeNotFound)

	page, err := svc.Inbox(ctx, alice.ID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 2)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, int64(3), page.Unread)
	assert.Equal(t, ids[2], page.Notifications[0].ID)

	_, err = svc.MarkRead(ctx, bob, ids[0])
	assertCode(t, err, models.CodeForbidden)
	read, err := svc.MarkRead(ctx, alice, ids[0])
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	deleted, err := svc.Delete(ctx, bob, ids)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
	deleted, err = svc.Delete(ctx, alice, ids[:1])
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	deleted, err = svc.Delete(ctx, admin, ids[1:])
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = svc.Delete(ctx, alice, nil)
	assertCode(t, err, models.CodeValidation)
}

func TestBugService(t *testing.T) {
	env := newTestEnv(t)
	svc := NewBugService(env.deps)
	ctx := context.Background()
	reporter, other := env.user(t, "reporter"), env.user(t, "other")
	admin := env.admin(t, "root")

	bug, err := svc.Report(ctx, reporter, BugInput{Title: "broken", Description: "it broke"})
	require.NoError(t, err)
	assert.Equal(t, models.BugOpen, bug.Status)
	_, err = svc.Report(ctx, reporter, BugInput{Title: "no description"})
	assertCode(t, err, models.CodeValidation)

	_, err = svc.Get(ctx, other, bug.ID)
	assertCode(t, err, models.CodeForbidden)
	got, err := svc.Get(ctx, admin, bug.ID)
	require.NoError(t, err)
	assert.Equal(t, "broken", got.Title)

	mine, err := svc.ListByUser(ctx, reporter.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
