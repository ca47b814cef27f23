package models

import (
	"time"

	"github.com/google/uuid"
)

// Report resolution outcomes
const (
	ResolutionDismiss  = "dismiss"
	ResolutionPenalize = "penalize"
	ResolutionRemove   = "remove"
)

// Report is a user's complaint about a comment. A reporter has at most one
// unresolved report per comment.
type Report struct {
	ID         uuid.UUID  `json:"id"`
	CommentID  uuid.UUID  `json:"comment_id"`
	ReporterID uuid.UUID  `json:"reporter_id"`
	Reason     string     `json:"reason"`
	Resolved   bool       `json:"resolved"`
	Resolution string     `json:"resolution,omitempty"`
	ResolvedBy *uuid.UUID `json:"resolved_by"`
	ResolvedAt *time.Time `json:"resolved_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ValidResolution returns true if r is a known resolution outcome.
func ValidResolution(r string) bool {
	switch r {
	case ResolutionDismiss, ResolutionPenalize, ResolutionRemove:
		return true
	}
	return false
}
