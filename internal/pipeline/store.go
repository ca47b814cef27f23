package pipeline

import (
	"context"

	"github.com/google/uuid"

	"golists/internal/catalog"
	"golists/internal/dedup"
	"golists/internal/filter"
	"golists/internal/models"
	"golists/internal/ratelimit"
)

// Store is the durable state the pipeline drives. *db.DB implements it.
type Store interface {
	ratelimit.History
	dedup.Finder

	GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	// InsertComment runs admit and the insert as one atomic unit.
	InsertComment(ctx context.Context, c *models.Comment, admit ratelimit.Admit) error
	// ReviewSuggestion compare-and-sets a pending suggestion to decision,
	// running promote in the same unit of work when approving.
	ReviewSuggestion(ctx context.Context, id, reviewerID uuid.UUID, decision string, promote catalog.PromoteFunc) (*models.Comment, error)
	UpdateCommentContent(ctx context.Context, id uuid.UUID, content, normalized string, filtered bool) (*models.Comment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) error

	CastVote(ctx context.Context, commentID, userID uuid.UUID, value int) (models.VoteTally, error)

	CreateReport(ctx context.Context, r *models.Report) (bool, error)
	GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ResolveReport(ctx context.Context, id, resolverID uuid.UUID, resolution string) (*models.Report, bool, error)

	InsertPenalty(ctx context.Context, p *models.PenaltyRecord) (bool, error)
}

// WordSource supplies the current bad-word snapshot. *filter.Cache implements it.
type WordSource interface {
	Snapshot(ctx context.Context) (*filter.BadWordSet, error)
}

// Notifier is told about outcomes users should hear about. Implementations
// must not block the caller for long and must not fail the operation.
type Notifier interface {
	SuggestionReviewed(ctx context.Context, c *models.Comment, reviewer *models.User)
	CommentReported(ctx context.Context, c *models.Comment, r *models.Report)
	PenaltyApplied(ctx context.Context, p *models.PenaltyRecord)
}

// Observer counts pipeline outcomes. The metrics package implements it.
type Observer interface {
	Submission(kind, outcome string)
	Review(decision, outcome string)
	Vote()
	Report(outcome string)
	Penalty(action string)
}

// Outcome labels passed to an Observer.
const (
	OutcomeCreated     = "created"
	OutcomeDuplicate   = "duplicate"
	OutcomeRateLimited = "rate_limited"
	OutcomeInvalid     = "invalid"
	OutcomeRejected    = "rejected"
	OutcomeOK          = "ok"
	OutcomeConflict    = "already_processed"
	OutcomeError       = "error"
	OutcomeFiled       = "filed"
	OutcomeRepeat      = "repeat"
)

type nopNotifier struct{}

func (nopNotifier) SuggestionReviewed(context.Context, *models.Comment, *models.User) {}
func (nopNotifier) CommentReported(context.Context, *models.Comment, *models.Report)  {}
func (nopNotifier) PenaltyApplied(context.Context, *models.PenaltyRecord)             {}

type nopObserver struct{}

func (nopObserver) Submission(string, string) {}
func (nopObserver) Review(string, string)     {}
func (nopObserver) Vote()                     {}
func (nopObserver) Report(string)             {}
func (nopObserver) Penalty(string)            {}
