package models

import (
	"time"

	"github.com/google/uuid"
)

// Penalty actions: the moderator action that triggered the penalty.
const (
	PenaltyDelete = "delete"
	PenaltyEdit   = "edit"
	PenaltyReport = "report"
)

// PenaltyRecord is an append-only trust score deduction. Every record names
// exactly one triggering comment and one acting moderator.
type PenaltyRecord struct {
	ID               uuid.UUID `json:"id"`
	TargetUserID     uuid.UUID `json:"target_user_id"`
	ModeratorID      uuid.UUID `json:"moderator_id"`
	Score            int       `json:"score"`
	RelatedCommentID uuid.UUID `json:"related_comment_id"`
	Action           string    `json:"action"`
	CreatedAt        time.Time `json:"created_at"`
}

// ValidPenaltyAction returns true if action is a known penalty action.
func ValidPenaltyAction(action string) bool {
	switch action {
	case PenaltyDelete, PenaltyEdit, PenaltyReport:
		return true
	}
	return false
}

// TrustScore is a user's accumulated penalty total, clamped at a floor.
type TrustScore struct {
	UserID    uuid.UUID `json:"user_id"`
	Score     int       `json:"score"`
	Penalties int       `json:"penalties"`
}
