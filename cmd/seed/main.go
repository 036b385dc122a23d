// Command seed loads the plan catalog and fills the database with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/huzidev/dev-forum-api/internal/bootstrap"
	"github.com/huzidev/dev-forum-api/internal/config"
	"github.com/huzidev/dev-forum-api/internal/database"
	"github.com/huzidev/dev-forum-api/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	numQuestions := flag.Int("questions", 40, "Number of questions to create")
	numBugs := flag.Int("bugs", 10, "Number of bug reports to create")
	maxDays := flag.Int("days", 90, "Spread creation dates over this many days")
	shouldClean := flag.Bool("clean", true, "Delete existing data (plans excepted) before seeding")
	catalogOnly := flag.Bool("catalog-only", false, "Only ensure the built-in plans exist")
	rngSeed := flag.Int64("seed", 0, "Random seed; 0 uses the clock")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	created, err := bootstrap.SeedPlanCatalog(ctx, db)
	if err != nil {
		log.Fatalf("Plan catalog failed: %v", err)
	}
	log.Printf("plan catalog: %d created", created)
	if *catalogOnly {
		return
	}

	log.Printf("seeding %d users, %d posts, %d questions, %d bugs (clean=%v)",
		*numUsers, *numPosts, *numQuestions, *numBugs, *shouldClean)

	s := seed.NewSeeder(db, seed.Options{
		NumUsers:     *numUsers,
		NumPosts:     *numPosts,
		NumQuestions: *numQuestions,
		NumBugs:      *numBugs,
		Clean:        *shouldClean,
		MaxDays:      *maxDays,
		Seed:         *rngSeed,
	})
	sum, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("users=%d friendships=%d posts=%d comments=%d likes=%d votes=%d questions=%d threads=%d solved=%d bugs=%d",
		sum.Users, sum.Friendships, sum.Posts, sum.Comments, sum.Likes, sum.Votes,
		sum.Questions, sum.Threads, sum.Solved, sum.Bugs)
	log.Println("seeded users have no credentials; sign in through the identity provider and promote with cmd/admin")
}
