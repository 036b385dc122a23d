package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/huzidev/dev-forum-api/internal/database"
	"github.com/huzidev/dev-forum-api/internal/models"

	"gorm.io/gorm"
)

// Options control the size and shape of a demo data run.
type Options struct {
	NumUsers     int
	NumPosts     int
	NumQuestions int
	NumBugs      int
	Clean        bool
	MaxDays      int
	Seed         int64
}

// Summary counts what a run created.
type Summary struct {
	Users       int
	Friendships int
	Posts       int
	Comments    int
	Likes       int
	Votes       int
	Questions   int
	Threads     int
	Solved      int
	Bugs        int
}

// Seeder populates a database with a connected demo community.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
	log     *slog.Logger
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.NumUsers < 2 {
		opts.NumUsers = 2
	}
	return &Seeder{db: db, factory: NewFactory(db, opts), opts: opts, log: slog.Default().With("component", "seed")}
}

// ClearAll deletes every row except the plan catalog, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tables := database.PersistentModels()
	for i := len(tables) - 1; i >= 0; i-- {
		switch tables[i].(type) {
		case *models.Plan, *models.Benefit:
			continue
		}
		if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(tables[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", tables[i], err)
		}
	}
	return nil
}

// Run creates users, a friend graph, posts with engagement, Q&A and bug
// reports. The first user is an admin.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	if s.opts.Clean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	sum := &Summary{}
	users, err := s.seedUsers(ctx)
	if err != nil {
		return nil, err
	}
	sum.Users = len(users)

	if sum.Friendships, err = s.seedFriends(users); err != nil {
		return nil, err
	}
	if err := s.seedPosts(users, sum); err != nil {
		return nil, err
	}
	if err := s.seedQuestions(users, sum); err != nil {
		return nil, err
	}
	for i := 0; i < s.opts.NumBugs; i++ {
		if _, err := s.factory.CreateBug(users[s.factory.rng.Intn(len(users))]); err != nil {
			return nil, err
		}
		sum.Bugs++
	}

	s.log.InfoContext(ctx, "seed completed",
		"users", sum.Users, "posts", sum.Posts, "questions", sum.Questions, "solved", sum.Solved)
	return sum, nil
}

func (s *Seeder) seedUsers(ctx context.Context) ([]*models.User, error) {
	var plans []models.Plan
	if err := s.db.WithContext(ctx).Find(&plans).Error; err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		var opts []func(*models.User)
		if i == 0 {
			opts = append(opts, func(u *models.User) { u.Role = models.RoleAdmin })
		}
		if len(plans) > 0 && s.factory.rng.Float32() < 0.3 {
			planID := plans[s.factory.rng.Intn(len(plans))].ID
			opts = append(opts, func(u *models.User) { u.PlanID = &planID })
		}
		u, err := s.factory.CreateUser(opts...)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// seedFriends links each user to the next in a ring and leaves a pending
// request to the one after that.
func (s *Seeder) seedFriends(users []*models.User) (int, error) {
	n := len(users)
	friends := 0
	for i := 0; i < n; i++ {
		next := users[(i+1)%n]
		if n == 2 && i == 1 {
			break
		}
		if err := s.factory.CreateFriendship(users[i], next); err != nil {
			return friends, err
		}
		friends++
		if j := (i + 2) % n; n > 3 && i%2 == 0 && j > i {
			if err := s.factory.CreatePendingRequest(users[i], users[j]); err != nil {
				return friends, err
			}
		}
	}
	return friends, nil
}

func (s *Seeder) pickType() models.PostType {
	switch r := s.factory.rng.Float32(); {
	case r < 0.6:
		return models.PostTypeText
	case r < 0.85:
		return models.PostTypePoll
	default:
		return models.PostTypeImage
	}
}

// others returns up to limit users other than skip, in random order.
func (s *Seeder) others(users []*models.User, skip uint, limit int) []*models.User {
	out := make([]*models.User, 0, limit)
	for _, i := range s.factory.rng.Perm(len(users)) {
		if len(out) == limit {
			break
		}
		if users[i].ID != skip {
			out = append(out, users[i])
		}
	}
	return out
}

func (s *Seeder) seedPosts(users []*models.User, sum *Summary) error {
	for i := 0; i < s.opts.NumPosts; i++ {
		author := users[s.factory.rng.Intn(len(users))]
		post, err := s.factory.CreatePost(author, s.pickType())
		if err != nil {
			return err
		}
		sum.Posts++

		for _, liker := range s.others(users, author.ID, s.factory.rng.Intn(5)) {
			if err := s.factory.CreateLike(liker, post); err != nil {
				return err
			}
			sum.Likes++
		}
		for _, commenter := range s.others(users, author.ID, s.factory.rng.Intn(4)) {
			if _, err := s.factory.CreateComment(commenter, post); err != nil {
				return err
			}
			sum.Comments++
		}
		if post.Type == models.PostTypePoll {
			for _, voter := range s.others(users, 0, s.factory.rng.Intn(len(users)+1)) {
				if err := s.factory.CreateVote(voter, post); err != nil {
					return err
				}
				sum.Votes++
			}
		}
	}
	return nil
}

func (s *Seeder) seedQuestions(users []*models.User, sum *Summary) error {
	for i := 0; i < s.opts.NumQuestions; i++ {
		author := users[s.factory.rng.Intn(len(users))]
		q, err := s.factory.CreateQuestion(author)
		if err != nil {
			return err
		}
		sum.Questions++

		var threads []*models.Thread
		for _, replier := range s.others(users, author.ID, 1+s.factory.rng.Intn(3)) {
			t, err := s.factory.CreateThread(replier, q)
			if err != nil {
				return err
			}
			threads = append(threads, t)
			sum.Threads++
		}
		if len(threads) > 0 && s.factory.rng.Float32() < 0.4 {
			if err := s.factory.MarkSolved(q, threads[s.factory.rng.Intn(len(threads))]); err != nil {
				return err
			}
			sum.Solved++
		}
	}
	return nil
}
