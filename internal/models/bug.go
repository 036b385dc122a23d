package models

import (
	"strings"
	"time"
)

// BugStatus is the triage state of a bug report.
type BugStatus string

const (
	BugOpen       BugStatus = "OPEN"
	BugInProgress BugStatus = "IN_PROGRESS"
	BugResolved   BugStatus = "RESOLVED"
	BugClosed     BugStatus = "CLOSED"
)

// ParseBugStatus validates a bug status.
func ParseBugStatus(raw string) (BugStatus, error) {
	s := BugStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case BugOpen, BugInProgress, BugResolved, BugClosed:
		return s, nil
	}
	return "", NewValidationError("Invalid status: " + raw)
}

// BugReport is a user-submitted defect report.
type BugReport struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"userId"`
	User        *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Status      BugStatus `gorm:"type:varchar(16);not null;default:'OPEN'" json:"status"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (BugReport) TableName() string {
	return "bug_reports"
}
