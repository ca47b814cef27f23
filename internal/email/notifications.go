package email

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"golists/internal/config"
	"golists/internal/models"
)

// Store persists in-app notifications and resolves recipients. *db.DB
// implements it.
type Store interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetModerators(ctx context.Context) ([]models.User, error)
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// Mailer sends rendered messages. *Service implements it.
type Mailer interface {
	IsEnabled() bool
	SendAsync(to []string, m Message)
}

// Notifier records in-app notifications for pipeline events and mirrors
// them by email when SMTP is configured. It implements pipeline.Notifier.
// Failures are logged and never fail the operation that raised the event.
type Notifier struct {
	mailer    Mailer
	templates *Templates
	cfg       *config.Config
	store     Store
	log       zerolog.Logger
}

// NewNotifier creates a new notifier.
func NewNotifier(cfg *config.Config, store Store, log zerolog.Logger) *Notifier {
	return &Notifier{
		mailer:    NewService(cfg, log),
		templates: NewTemplates(cfg),
		cfg:       cfg,
		store:     store,
		log:       log,
	}
}

// SuggestionReviewed tells the author their suggestion was approved or
// rejected. Reviewing one's own suggestion raises nothing.
func (n *Notifier) SuggestionReviewed(ctx context.Context, c *models.Comment, reviewer *models.User) {
	if reviewer != nil && reviewer.ID == c.AuthorID {
		return
	}

	kind, msg := models.NotifySuggestionApproved, n.templates.SuggestionApproved(c, reviewer)
	if c.SuggestionStatus == models.StatusRejected {
		kind, msg = models.NotifySuggestionRejected, n.templates.SuggestionRejected(c, reviewer)
	}

	commentID := c.ID
	n.record(ctx, c.AuthorID, kind, &commentID, msg.Summary)
	if n.cfg.EmailNotifyAuthors {
		n.mailUser(ctx, c.AuthorID, msg)
	}
}

// CommentReported alerts moderators the first time a comment is reported.
func (n *Notifier) CommentReported(ctx context.Context, c *models.Comment, r *models.Report) {
	if c.ReportCount > 1 {
		return
	}

	moderators, err := n.store.GetModerators(ctx)
	if err != nil {
		n.log.Error().Err(err).Msg("failed to get moderators for report notification")
		return
	}
	if len(moderators) == 0 {
		n.log.Warn().Stringer("comment_id", c.ID).Msg("no moderators to notify about report")
		return
	}

	msg := n.templates.CommentReported(c, r)
	commentID := c.ID
	emails := make([]string, 0, len(moderators))
	for _, m := range moderators {
		n.record(ctx, m.ID, models.NotifyCommentReported, &commentID, msg.Summary)
		if m.Email != "" {
			emails = append(emails, m.Email)
		}
	}

	if n.cfg.EmailNotifyModerators && n.mailer.IsEnabled() {
		n.mailer.SendAsync(emails, msg)
	}
}

// PenaltyApplied tells the author a penalty was recorded against them.
func (n *Notifier) PenaltyApplied(ctx context.Context, p *models.PenaltyRecord) {
	msg := n.templates.PenaltyApplied(p)
	commentID := p.RelatedCommentID
	n.record(ctx, p.TargetUserID, models.NotifyPenaltyApplied, &commentID, msg.Summary)
	if n.cfg.EmailNotifyAuthors {
		n.mailUser(ctx, p.TargetUserID, msg)
	}
}

func (n *Notifier) record(ctx context.Context, userID uuid.UUID, kind string, commentID *uuid.UUID, message string) {
	err := n.store.CreateNotification(ctx, &models.Notification{
		UserID:    userID,
		Kind:      kind,
		CommentID: commentID,
		Message:   message,
	})
	if err != nil {
		n.log.Error().Err(err).Stringer("user_id", userID).Str("kind", kind).Msg("failed to record notification")
	}
}

func (n *Notifier) mailUser(ctx context.Context, userID uuid.UUID, msg Message) {
	if !n.mailer.IsEnabled() {
		return
	}

	user, err := n.store.GetUserByID(ctx, userID)
	if err != nil {
		n.log.Error().Err(err).Stringer("user_id", userID).Msg("failed to get notification recipient")
		return
	}
	if user.Email == "" {
		return
	}
	n.mailer.SendAsync([]string{user.Email}, msg)
}
