package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment kinds
const (
	KindComment    = "comment"
	KindSuggestion = "suggestion"
)

// Suggestion status constants. Plain comments carry StatusNone.
const (
	StatusNone     = "none"
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Comment is a user-authored text attached to a list. Comments of kind
// "suggestion" propose a new list item and go through moderator review.
type Comment struct {
	ID                uuid.UUID  `json:"id"`
	ListID            uuid.UUID  `json:"list_id"`
	AuthorID          uuid.UUID  `json:"author_id"`
	Content           string     `json:"content"`
	NormalizedContent string     `json:"-"`
	Kind              string     `json:"kind"`
	SuggestionStatus  string     `json:"suggestion_status"`
	ApprovedItemID    *uuid.UUID `json:"approved_item_id"`
	IsFiltered        bool       `json:"is_filtered"`
	HelpfulUp         int        `json:"helpful_up"`
	HelpfulDown       int        `json:"helpful_down"`
	ReportCount       int        `json:"report_count"`
	ReviewedBy        *uuid.UUID `json:"reviewed_by"`
	ReviewedAt        *time.Time `json:"reviewed_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// Optional fields copied onto the item when a suggestion is promoted.
	Description string `json:"description,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// IsSuggestion returns true if the comment takes part in the approval flow.
func (c *Comment) IsSuggestion() bool {
	return c.Kind == KindSuggestion
}

// IsPending returns true for suggestions awaiting review.
func (c *Comment) IsPending() bool {
	return c.Kind == KindSuggestion && c.SuggestionStatus == StatusPending
}

// NeedsModeration returns true if the comment was caught by the content
// filter or has open reports against it.
func (c *Comment) NeedsModeration() bool {
	return c.IsFiltered || c.ReportCount > 0
}

// ValidKind returns true if kind is a known comment kind.
func ValidKind(kind string) bool {
	return kind == KindComment || kind == KindSuggestion
}
