// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Role distinguishes forum members from administrators.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a forum member. ExternalID is the identity provider's user id.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ExternalID     string    `gorm:"column:external_id;uniqueIndex;not null" json:"userId"`
	Email          string    `gorm:"not null" json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Username       string    `gorm:"index" json:"username"`
	ProfilePicture string    `json:"profilePicture"`
	Role           Role      `gorm:"type:varchar(16);default:'USER'" json:"role"`
	IsEnrolled     bool      `gorm:"default:false" json:"isEnrolled"`
	IsBan          bool      `gorm:"default:false" json:"isBan"`
	PlanID         *uint     `gorm:"index" json:"planId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	Friends      []Friendship   `gorm:"foreignKey:UserID" json:"friends,omitempty"`
	PointHistory []PointHistory `gorm:"foreignKey:UserID" json:"pointHistory,omitempty"`
	Posts        []Post         `gorm:"foreignKey:UserID" json:"posts,omitempty"`
	Questions    []Question     `gorm:"foreignKey:UserID" json:"questions,omitempty"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserSummary is the public projection embedded in friend lists and requests.
type UserSummary struct {
	ID             uint   `json:"id"`
	ExternalID     string `json:"userId,omitempty"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
	TotalPoints    *int64 `json:"totalPoints,omitempty"`
}

// Summary projects u into a UserSummary.
func (u User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		ExternalID:     u.ExternalID,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
	}
}

// UserWithStats decorates a user with read-time aggregates.
type UserWithStats struct {
	User
	TotalFriends    int64  `json:"totalFriends"`
	TotalPoints     int64  `json:"totalPoints"`
	SolvedQuestions *int64 `json:"solvedQuestions,omitempty"`
}

// UserProfile is the detailed user view with computed totalPoints.
type UserProfile struct {
	User
	TotalPoints int64 `json:"totalPoints"`
}
