package models

import (
	"strings"
	"time"
)

// PostType selects how a post renders.
type PostType string

const (
	PostTypeText  PostType = "TEXT"
	PostTypePoll  PostType = "POLL"
	PostTypeImage PostType = "IMAGE"
)

// ParsePostType validates a post type, defaulting to TEXT.
func ParsePostType(raw string) (PostType, error) {
	t := PostType(strings.ToUpper(strings.TrimSpace(raw)))
	switch t {
	case "":
		return PostTypeText, nil
	case PostTypeText, PostTypePoll, PostTypeImage:
		return t, nil
	}
	return "", NewValidationError("Invalid post type: " + raw)
}

// Post represents a forum post.
type Post struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	UserID      uint          `gorm:"not null;index" json:"userId"`
	Author      *User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Content     string        `gorm:"type:text;not null" json:"content"`
	Type        PostType      `gorm:"type:varchar(16);not null;default:'TEXT'" json:"type"`
	Status      ContentStatus `gorm:"type:varchar(16);not null;default:'ACTIVE';index" json:"status"`
	Comment     string        `json:"comment"`
	Likes       []Like        `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"likes,omitempty"`
	Comments    []Comment     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	PollOptions []PollOption  `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"pollOptions,omitempty"`
	PostImage   *PostImage    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"postImage,omitempty"`
	CreatedAt   time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// OptionTexts returns the text of each poll option in order.
func (p Post) OptionTexts() []string {
	out := make([]string, 0, len(p.PollOptions))
	for _, o := range p.PollOptions {
		out = append(out, o.Text)
	}
	return out
}

// SameOptionSet reports whether a and b contain the same option texts,
// ignoring order and duplicates.
func SameOptionSet(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = false
	}
	for _, s := range b {
		if _, ok := set[s]; !ok {
			return false
		}
		set[s] = true
	}
	for _, seen := range set {
		if !seen {
			return false
		}
	}
	return true
}

// PollOption is one choice on a POLL post.
type PollOption struct {
	ID     uint       `gorm:"primaryKey" json:"id"`
	PostID uint       `gorm:"not null;index" json:"postId"`
	Text   string     `gorm:"not null" json:"text"`
	Votes  []PollVote `gorm:"foreignKey:PollOptionID;constraint:OnDelete:CASCADE" json:"votes"`
}

// TableName specifies the table name for GORM
func (PollOption) TableName() string {
	return "poll_options"
}

// PollVote is a user's single vote on a poll post.
type PollVote struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_poll_votes_user_post" json:"userId"`
	PostID       uint      `gorm:"not null;uniqueIndex:idx_poll_votes_user_post" json:"postId"`
	PollOptionID uint      `gorm:"not null;index" json:"pollOptionId"`
	User         *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM
func (PollVote) TableName() string {
	return "poll_votes"
}

// Like marks that a user liked a post.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"userId"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post;index" json:"postId"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM
func (Like) TableName() string {
	return "likes"
}

// Comment is a reply on a post.
type Comment struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	PostID    uint          `gorm:"not null;index" json:"postId"`
	UserID    uint          `gorm:"not null;index" json:"userId"`
	User      *User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Content   string        `gorm:"type:text;not null" json:"content"`
	Status    ContentStatus `gorm:"type:varchar(16);not null;default:'ACTIVE'" json:"status"`
	Reason    string        `json:"reason"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Comment) TableName() string {
	return "comments"
}

// Image is an uploaded object in storage.
type Image struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	URL       string    `gorm:"column:url;not null" json:"url"`
	Key       string    `json:"key,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM
func (Image) TableName() string {
	return "images"
}

// PostImage attaches at most one image to a post.
type PostImage struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	PostID  uint   `gorm:"not null;uniqueIndex" json:"postId"`
	ImageID uint   `gorm:"not null" json:"imageId"`
	Image   *Image `gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE" json:"image,omitempty"`
}

// TableName specifies the table name for GORM
func (PostImage) TableName() string {
	return "post_images"
}

// PollTally is a poll option with its votes and voters.
type PollTally struct {
	PollOption
	VoteCount int `json:"voteCount"`
}
