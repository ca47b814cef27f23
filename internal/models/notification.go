package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification kinds
const (
	NotifySuggestionApproved = "suggestion_approved"
	NotifySuggestionRejected = "suggestion_rejected"
	NotifyCommentReported    = "comment_reported"
	NotifyPenaltyApplied     = "penalty_applied"
)

// Notification is an in-app message shown to a user on their next refresh.
type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Kind      string     `json:"kind"`
	CommentID *uuid.UUID `json:"comment_id"`
	Message   string     `json:"message"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}
