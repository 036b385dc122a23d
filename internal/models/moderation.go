package models

import "strings"

// ContentStatus is the moderation state of a post or comment.
type ContentStatus string

const (
	ContentActive      ContentStatus = "ACTIVE"
	ContentDeleted     ContentStatus = "DELETED"
	ContentBanned      ContentStatus = "BANNED"
	ContentSuspended   ContentStatus = "SUSPENDED"
	ContentFlagged     ContentStatus = "FLAGGED"
	ContentUnderReview ContentStatus = "UNDER_REVIEW"
)

var contentStatuses = map[ContentStatus]struct{}{
	ContentActive:      {},
	ContentDeleted:     {},
	ContentBanned:      {},
	ContentSuspended:   {},
	ContentFlagged:     {},
	ContentUnderReview: {},
}

// ParseContentStatus normalizes and validates a moderation status.
func ParseContentStatus(raw string) (ContentStatus, error) {
	s := ContentStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := contentStatuses[s]; !ok {
		return "", NewValidationError("Invalid status: " + raw)
	}
	return s, nil
}

// Hidden reports whether content in this state is left out of public listings.
func (s ContentStatus) Hidden() bool {
	return s == ContentDeleted
}

// WarningStatuses are the moderation states hidden from public question listings.
var WarningStatuses = []string{
	string(ContentDeleted),
	string(ContentBanned),
	string(ContentSuspended),
	string(ContentFlagged),
	string(ContentUnderReview),
}

func isWarning(s string) bool {
	for _, w := range WarningStatuses {
		if w == s {
			return true
		}
	}
	return false
}
