// Command admin manages roles and bans by identity provider user id.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/huzidev/dev-forum-api/internal/config"
	"github.com/huzidev/dev-forum-api/internal/database"
	"github.com/huzidev/dev-forum-api/internal/models"
	"github.com/huzidev/dev-forum-api/internal/repository"
	"github.com/huzidev/dev-forum-api/internal/service"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin promote <external_id>   - Grant the ADMIN role")
	fmt.Println("  go run ./cmd/admin demote <external_id>    - Revert to the USER role")
	fmt.Println("  go run ./cmd/admin ban <external_id>       - Ban a user")
	fmt.Println("  go run ./cmd/admin unban <external_id>     - Lift a ban")
	fmt.Println("  go run ./cmd/admin list-admins             - List all admins")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	repos := repository.New(db)
	users := service.NewUserService(service.Deps{Repos: repos, Tx: repository.NewTransactor(db)})
	ctx := context.Background()

	command := os.Args[1]
	if command == "list-admins" {
		listAdmins(ctx, repos)
		return
	}
	if len(os.Args) < 3 {
		usage()
	}
	externalID := os.Args[2]

	var user *models.User
	switch command {
	case "promote":
		user, err = users.SetRoleByExternalID(ctx, externalID, models.RoleAdmin)
	case "demote":
		user, err = users.SetRoleByExternalID(ctx, externalID, models.RoleUser)
	case "ban":
		user, err = users.SetBanByExternalID(ctx, externalID, true)
	case "unban":
		user, err = users.SetBanByExternalID(ctx, externalID, false)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
	}
	if err != nil {
		log.Fatalf("%s %s: %v", command, externalID, err)
	}

	fmt.Printf("%s (ID: %d) role=%s banned=%v\n", user.Username, user.ID, user.Role, user.IsBan)
}

func listAdmins(ctx context.Context, repos *repository.Repositories) {
	all, err := repos.Users.List(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch users: %v", err)
	}

	found := 0
	for _, u := range all {
		if !u.IsAdmin() {
			continue
		}
		found++
		fmt.Printf("ID: %d | External: %s | Username: %s | Email: %s\n", u.ID, u.ExternalID, u.Username, u.Email)
	}
	if found == 0 {
		fmt.Println("No admins found")
	}
}
