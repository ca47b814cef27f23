// Package pipeline decides what happens to user-submitted text on a list:
// whether it is stored, merged into an existing suggestion, promoted to an
// item, or removed with a penalty against its author.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"golists/internal/catalog"
	"golists/internal/dedup"
	"golists/internal/models"
	"golists/internal/ratelimit"
)

// Deps are the collaborators a Pipeline composes.
type Deps struct {
	Store    Store
	Catalog  catalog.Catalog
	Words    WordSource
	Settings ratelimit.Settings

	Notifier Notifier         // optional
	Observer Observer         // optional
	Logger   zerolog.Logger   // optional
	Clock    func() time.Time // optional
}

// Config holds tunables.
type Config struct {
	MaxCommentLength    int
	MaxSuggestionLength int
	// Penalties maps a penalty action to its default score. A missing or
	// zero entry means the action carries no penalty unless the moderator
	// supplies a score.
	Penalties map[string]int
}

// Pipeline is the single entry point for callers. It authorizes the actor,
// orders the component calls, and reports outcomes.
type Pipeline struct {
	store       Store
	catalog     catalog.Catalog
	machine     *Machine
	coordinator *Coordinator
	notifier    Notifier
	observer    Observer
	log         zerolog.Logger
	penalties   map[string]int
}

// New wires a Pipeline.
func New(deps Deps, cfg Config) *Pipeline {
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	return &Pipeline{
		store:   deps.Store,
		catalog: deps.Catalog,
		machine: &Machine{
			store:         deps.Store,
			catalog:       deps.Catalog,
			words:         deps.Words,
			limiter:       ratelimit.New(deps.Settings),
			dedup:         dedup.New(deps.Store),
			maxComment:    cfg.MaxCommentLength,
			maxSuggestion: cfg.MaxSuggestionLength,
			now:           deps.Clock,
		},
		coordinator: &Coordinator{store: deps.Store},
		notifier:    deps.Notifier,
		observer:    deps.Observer,
		log:         deps.Logger,
		penalties:   cfg.Penalties,
	}
}

// event picks a log level by outcome: expected outcomes are debug, only
// infrastructure failures are errors.
func (p *Pipeline) event(err error) *zerolog.Event {
	switch {
	case err == nil:
		return p.log.Info()
	case IsExpected(err):
		return p.log.Debug().Err(err)
	default:
		return p.log.Error().Err(err)
	}
}

func outcome(err error) string {
	var (
		verr *ValidationError
		rerr *RateLimitedError
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &rerr):
		return OutcomeRateLimited
	case errors.As(err, &verr):
		return OutcomeInvalid
	case errors.Is(err, ErrAlreadyProcessed):
		return OutcomeConflict
	case IsExpected(err):
		return OutcomeRejected
	}
	return OutcomeError
}

// Submit creates a comment or suggestion by actor.
func (p *Pipeline) Submit(ctx context.Context, actor *models.User, req SubmitRequest) (*SubmitResult, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	req.AuthorID = actor.ID

	res, err := p.machine.Submit(ctx, req)

	result := outcome(err)
	if err == nil {
		result = OutcomeCreated
		if res.Duplicate {
			result = OutcomeDuplicate
		}
	}
	p.observer.Submission(req.Kind, result)

	ev := p.event(err).
		Str("kind", req.Kind).
		Stringer("list_id", req.ListID).
		Stringer("author_id", actor.ID).
		Str("outcome", result)
	if res != nil {
		ev = ev.Stringer("comment_id", res.Comment.ID).Bool("filtered", res.Comment.IsFiltered)
	}
	ev.Msg("comment submitted")

	return res, err
}

// Vote records actor's helpful vote on a comment.
func (p *Pipeline) Vote(ctx context.Context, actor *models.User, commentID uuid.UUID, value int) (models.VoteTally, error) {
	if actor == nil {
		return models.VoteTally{}, ErrForbidden
	}

	tally, err := p.machine.Vote(ctx, commentID, actor.ID, value)
	if err == nil {
		p.observer.Vote()
	}
	p.event(err).Stringer("comment_id", commentID).Stringer("user_id", actor.ID).Int("value", value).Msg("vote cast")
	return tally, err
}

// authorizeReview loads the comment and checks actor may review suggestions
// on its list.
func (p *Pipeline) authorizeReview(ctx context.Context, actor *models.User, commentID uuid.UUID) (*models.Comment, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	c, err := p.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	list, err := p.catalog.GetList(ctx, c.ListID)
	if errors.Is(err, catalog.ErrListNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get list", err)
	}
	if !actor.CanReview(list) {
		return nil, ErrForbidden
	}
	return c, nil
}

// Approve promotes a pending suggestion to an item on its list.
func (p *Pipeline) Approve(ctx context.Context, actor *models.User, commentID uuid.UUID) (*models.Comment, error) {
	return p.review(ctx, actor, commentID, models.StatusApproved)
}

// Reject closes a pending suggestion without promoting it.
func (p *Pipeline) Reject(ctx context.Context, actor *models.User, commentID uuid.UUID) (*models.Comment, error) {
	return p.review(ctx, actor, commentID, models.StatusRejected)
}

func (p *Pipeline) review(ctx context.Context, actor *models.User, commentID uuid.UUID, decision string) (*models.Comment, error) {
	_, err := p.authorizeReview(ctx, actor, commentID)

	var reviewed *models.Comment
	if err == nil {
		if decision == models.StatusApproved {
			reviewed, err = p.machine.Approve(ctx, commentID, actor.ID)
		} else {
			reviewed, err = p.machine.Reject(ctx, commentID, actor.ID)
		}
	}

	p.observer.Review(decision, outcome(err))
	ev := p.event(err).Str("decision", decision).Stringer("comment_id", commentID)
	if reviewed != nil && reviewed.ApprovedItemID != nil {
		ev = ev.Stringer("item_id", *reviewed.ApprovedItemID)
	}
	ev.Msg("suggestion reviewed")

	if err != nil {
		return nil, err
	}
	p.notifier.SuggestionReviewed(ctx, reviewed, actor)
	return reviewed, nil
}

// Report files actor's complaint about a comment. It returns whether this
// was a new report; a repeat while the first is open is accepted silently.
func (p *Pipeline) Report(ctx context.Context, actor *models.User, commentID uuid.UUID, reason string) (*models.Report, bool, error) {
	if actor == nil {
		return nil, false, ErrForbidden
	}

	r, created, err := p.coordinator.FileReport(ctx, commentID, actor.ID, reason)

	result := outcome(err)
	if err == nil {
		result = OutcomeRepeat
		if created {
			result = OutcomeFiled
		}
	}
	p.observer.Report(result)
	p.event(err).Stringer("comment_id", commentID).Stringer("reporter_id", actor.ID).Str("outcome", result).Msg("comment reported")

	if err != nil {
		return nil, false, err
	}
	if created {
		if c, gerr := p.store.GetComment(ctx, commentID); gerr == nil {
			p.notifier.CommentReported(ctx, c, r)
		}
	}
	return r, created, nil
}

// ResolveResult is the outcome of resolving a report.
type ResolveResult struct {
	Report  *models.Report
	Penalty *models.PenaltyRecord
	Removed bool
}

// ResolveReport closes a report. "penalize" and "remove" record a penalty
// against the comment's author; "remove" then deletes the comment. The
// penalty and the delete are independent: a failed delete leaves the
// penalty in place and the call can be repeated with the same resolution.
func (p *Pipeline) ResolveReport(ctx context.Context, actor *models.User, reportID uuid.UUID, resolution string, score *int) (*ResolveResult, error) {
	if actor == nil || !actor.IsModerator() {
		return nil, ErrForbidden
	}

	res, err := p.resolveReport(ctx, actor, reportID, resolution, score)
	p.event(err).Stringer("report_id", reportID).Str("resolution", resolution).Msg("report resolved")
	return res, err
}

func (p *Pipeline) resolveReport(ctx context.Context, actor *models.User, reportID uuid.UUID, resolution string, score *int) (*ResolveResult, error) {
	report, err := p.store.GetReport(ctx, reportID)
	if errors.Is(err, models.ErrReportNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get report", err)
	}
	c, err := p.getComment(ctx, report.CommentID)
	if errors.Is(err, ErrNotFound) && report.Resolved {
		// The comment is gone and its reports were kept. Only a replay of
		// the recorded resolution succeeds; its penalty preceded the delete.
		if report.Resolution != resolution {
			return nil, ErrAlreadyProcessed
		}
		return &ResolveResult{Report: report, Removed: resolution == models.ResolutionRemove}, nil
	}
	if err != nil {
		return nil, err
	}

	report, _, err = p.coordinator.ResolveReport(ctx, reportID, actor.ID, resolution)
	if err != nil {
		return nil, err
	}
	res := &ResolveResult{Report: report}

	if resolution == models.ResolutionDismiss {
		return res, nil
	}

	res.Penalty, err = p.penalize(ctx, actor, c, models.PenaltyReport, score)
	if err != nil {
		return res, err
	}

	if resolution == models.ResolutionRemove {
		err = p.machine.Delete(ctx, c.ID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return res, err
		}
		res.Removed = true
	}
	return res, nil
}

// ModerationResult is the outcome of an edit or delete that may have
// carried a penalty.
type ModerationResult struct {
	Comment *models.Comment
	Penalty *models.PenaltyRecord
}

// authorizeModify checks actor is a moderator. Content is immutable for its
// author once posted. The returned flag reports whether a penalty applies:
// the comment belongs to someone else and is filtered or reported.
func (p *Pipeline) authorizeModify(ctx context.Context, actor *models.User, commentID uuid.UUID) (*models.Comment, bool, error) {
	if actor == nil || !actor.IsModerator() {
		return nil, false, ErrForbidden
	}
	c, err := p.getComment(ctx, commentID)
	if err != nil {
		return nil, false, err
	}
	return c, c.AuthorID != actor.ID && c.NeedsModeration(), nil
}

// Edit replaces a comment's text on a moderator's behalf.
func (p *Pipeline) Edit(ctx context.Context, actor *models.User, commentID uuid.UUID, content string, score *int) (*ModerationResult, error) {
	res, err := p.edit(ctx, actor, commentID, content, score)
	p.event(err).Stringer("comment_id", commentID).Msg("comment edited")
	return res, err
}

func (p *Pipeline) edit(ctx context.Context, actor *models.User, commentID uuid.UUID, content string, score *int) (*ModerationResult, error) {
	c, moderated, err := p.authorizeModify(ctx, actor, commentID)
	if err != nil {
		return nil, err
	}

	res := &ModerationResult{}
	if moderated {
		if res.Penalty, err = p.penalize(ctx, actor, c, models.PenaltyEdit, score); err != nil {
			return res, err
		}
	}

	res.Comment, err = p.machine.Edit(ctx, c, content)
	return res, err
}

// Delete removes a comment on a moderator's behalf. Deleting someone
// else's filtered or reported comment records a penalty first.
func (p *Pipeline) Delete(ctx context.Context, actor *models.User, commentID uuid.UUID, score *int) (*ModerationResult, error) {
	res, err := p.remove(ctx, actor, commentID, score)
	p.event(err).Stringer("comment_id", commentID).Msg("comment deleted")
	return res, err
}

func (p *Pipeline) remove(ctx context.Context, actor *models.User, commentID uuid.UUID, score *int) (*ModerationResult, error) {
	c, moderated, err := p.authorizeModify(ctx, actor, commentID)
	if err != nil {
		return nil, err
	}

	res := &ModerationResult{Comment: c}
	if moderated {
		if res.Penalty, err = p.penalize(ctx, actor, c, models.PenaltyDelete, score); err != nil {
			return res, err
		}
	}

	return res, p.machine.Delete(ctx, c.ID)
}

// penalize records a penalty against c's author for action. The score is
// the override when given, else the configured default; zero skips it.
func (p *Pipeline) penalize(ctx context.Context, moderator *models.User, c *models.Comment, action string, override *int) (*models.PenaltyRecord, error) {
	score := p.penalties[action]
	if override != nil {
		score = *override
	}
	if score == 0 {
		return nil, nil
	}

	rec, created, err := p.coordinator.ApplyPenalty(ctx, PenaltyRequest{
		TargetUserID:     c.AuthorID,
		ModeratorID:      moderator.ID,
		Score:            score,
		RelatedCommentID: c.ID,
		Action:           action,
	})
	if err != nil {
		return nil, err
	}
	if created {
		p.observer.Penalty(action)
		p.notifier.PenaltyApplied(ctx, rec)
		p.log.Info().
			Stringer("target_user_id", rec.TargetUserID).
			Stringer("moderator_id", rec.ModeratorID).
			Stringer("comment_id", rec.RelatedCommentID).
			Str("action", action).
			Int("score", score).
			Msg("penalty applied")
	}
	return rec, nil
}

func (p *Pipeline) getComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c, err := p.store.GetComment(ctx, id)
	if errors.Is(err, models.ErrCommentNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get comment", err)
	}
	return c, nil
}
