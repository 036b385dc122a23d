package models

import (
	"strings"
	"time"
)

// QuestionStatus covers the solve lifecycle plus the moderation warning states.
type QuestionStatus string

const (
	QuestionOpen     QuestionStatus = "OPEN"
	QuestionUpdated  QuestionStatus = "UPDATED"
	QuestionAnswered QuestionStatus = "ANSWERED"
)

// ParseQuestionModerationStatus validates a status an admin may assign.
// ANSWERED is reachable only through marking a thread as the solution.
func ParseQuestionModerationStatus(raw string) (QuestionStatus, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case s == string(QuestionOpen), s == string(QuestionUpdated), isWarning(s):
		return QuestionStatus(s), nil
	case s == string(QuestionAnswered):
		return "", NewValidationError("ANSWERED is set by marking a thread as the solution")
	default:
		return "", NewValidationError("Invalid status: " + raw)
	}
}

// AfterEdit returns the status a question takes when its author edits it.
func (s QuestionStatus) AfterEdit() QuestionStatus {
	if s == QuestionOpen || s == QuestionUpdated || s == "" {
		return QuestionUpdated
	}
	return s
}

// ThreadStatus is the state of a reply to a question.
type ThreadStatus string

const (
	ThreadOpen     ThreadStatus = "OPEN"
	ThreadSolution ThreadStatus = "SOLUTION"
)

// Question is a Q&A entry.
type Question struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"userId"`
	User      *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Title     string         `gorm:"not null" json:"title"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Status    QuestionStatus `gorm:"type:varchar(16);not null;default:'OPEN';index" json:"status"`
	Comment   string         `json:"comment"`
	Threads   []Thread       `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"threads,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Question) TableName() string {
	return "questions"
}

// Solved reports whether the question is ANSWERED and has a SOLUTION thread loaded.
func (q Question) Solved() bool {
	if q.Status != QuestionAnswered {
		return false
	}
	for _, t := range q.Threads {
		if t.Status == ThreadSolution {
			return true
		}
	}
	return false
}

// Thread is a reply to a question.
type Thread struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	QuestionID uint         `gorm:"not null;index" json:"questionId"`
	Question   *Question    `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	UserID     uint         `gorm:"not null;index" json:"userId"`
	User       *User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Content    string       `gorm:"type:text;not null" json:"content"`
	Status     ThreadStatus `gorm:"type:varchar(16);not null;default:'OPEN'" json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Thread) TableName() string {
	return "threads"
}

// CanMarkSolved checks the solve preconditions on a thread and its question.
func CanMarkSolved(thread Thread, question Question) error {
	if thread.Status == ThreadSolution {
		return NewConflictError("Thread is already marked as the solution")
	}
	if question.Status == QuestionAnswered {
		return NewConflictError("Question is already answered")
	}
	return nil
}
