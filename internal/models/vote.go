package models

import (
	"time"

	"github.com/google/uuid"
)

// Vote values
const (
	VoteUp   = 1
	VoteDown = -1
)

// Vote is a single user's helpfulness vote on a comment. There is at most
// one vote per (user, comment).
type Vote struct {
	UserID    uuid.UUID `json:"user_id"`
	CommentID uuid.UUID `json:"comment_id"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VoteTally is the result of a vote: the comment's counters after the write
// and the caller's current vote.
type VoteTally struct {
	HelpfulUp   int `json:"helpful_up"`
	HelpfulDown int `json:"helpful_down"`
	UserVote    int `json:"user_vote"`
}

// ValidVote returns true if value is +1 or -1.
func ValidVote(value int) bool {
	return value == VoteUp || value == VoteDown
}
