package database

import "github.com/huzidev/dev-forum-api/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Plan{},
		&models.Benefit{},
		&models.User{},
		&models.Notification{},
		&models.FriendRequest{},
		&models.Friendship{},
		&models.PointHistory{},
		&models.Post{},
		&models.PollOption{},
		&models.PollVote{},
		&models.Like{},
		&models.Comment{},
		&models.Image{},
		&models.PostImage{},
		&models.Question{},
		&models.Thread{},
		&models.BugReport{},
	}
}
