package models

import (
	"time"

	"github.com/google/uuid"
)

// List is a curated, shareable list of items.
type List struct {
	ID                 uuid.UUID  `json:"id"`
	OwnerID            *uuid.UUID `json:"owner_id"`
	Title              string     `json:"title"`
	ItemCount          int        `json:"item_count"`
	SuggestionsEnabled bool       `json:"suggestions_enabled"`
	CreatedAt          time.Time  `json:"created_at"`
}

// IsOwner returns true if userID owns the list.
func (l *List) IsOwner(userID uuid.UUID) bool {
	return l.OwnerID != nil && *l.OwnerID == userID
}

// Item is a permanent entry on a list.
type Item struct {
	ID              uuid.UUID  `json:"id"`
	ListID          uuid.UUID  `json:"list_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	ExternalURL     string     `json:"external_url"`
	ImageURL        string     `json:"image_url"`
	SourceCommentID *uuid.UUID `json:"source_comment_id"`
	CreatedBy       *uuid.UUID `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ItemFields are the caller-supplied fields of a new item.
type ItemFields struct {
	Title           string
	NormalizedTitle string
	Description     string
	ExternalURL     string
	ImageURL        string
	SourceCommentID *uuid.UUID
	CreatedBy       *uuid.UUID
}
