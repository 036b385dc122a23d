package models

import "time"

// PointType tags a ledger entry.
type PointType string

const (
	PointTypeComment      PointType = "COMMENT"
	PointTypeUpvote       PointType = "UPVOTE"
	PointTypeRemoveUpvote PointType = "REMOVE_UPVOTE"
	PointTypeCreatePost   PointType = "CREATE_POST"
	PointTypeManual       PointType = "MANUAL"
)

// PointHistory is an immutable ledger entry. A user's total is the sum of entries.
type PointHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"userId"`
	Points      int       `gorm:"not null" json:"points"`
	Type        PointType `gorm:"type:varchar(32);not null" json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM
func (PointHistory) TableName() string {
	return "point_histories"
}

// PointRule is a fixed award applied by the engagement workflows.
type PointRule struct {
	Points      int
	Type        PointType
	Description string
}

// Entry builds the ledger row awarding r to userID.
func (r PointRule) Entry(userID uint) PointHistory {
	return PointHistory{
		UserID:      userID,
		Points:      r.Points,
		Type:        r.Type,
		Description: r.Description,
	}
}

var (
	PointsComment        = PointRule{Points: 5, Type: PointTypeComment, Description: "Added a comment"}
	PointsReceiveComment = PointRule{Points: 3, Type: PointTypeComment, Description: "Received a comment on your post"}
	PointsLike           = PointRule{Points: 2, Type: PointTypeUpvote, Description: "Liked a post"}
	PointsReceiveLike    = PointRule{Points: 1, Type: PointTypeUpvote, Description: "Received a like on your post"}
	PointsRemoveLike     = PointRule{Points: -PointsLike.Points, Type: PointTypeRemoveUpvote, Description: "Removed a like"}
	PointsLoseLike       = PointRule{Points: -PointsReceiveLike.Points, Type: PointTypeRemoveUpvote, Description: "Removed a like"}
	PointsCreatePost     = PointRule{Points: 10, Type: PointTypeCreatePost, Description: "Created a new post"}
)

// UserPoints is the ledger view of one user.
type UserPoints struct {
	Points      []PointHistory `json:"points"`
	TotalPoints int64          `json:"totalPoints"`
}
