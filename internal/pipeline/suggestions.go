package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"golists/internal/catalog"
	"golists/internal/dedup"
	"golists/internal/filter"
	"golists/internal/models"
	"golists/internal/ratelimit"
	"golists/internal/validation"
)

// insertAttempts bounds retries when a colliding pending suggestion is
// reviewed between our insert and our lookup of it.
const insertAttempts = 3

// SubmitRequest is a new comment or suggestion.
type SubmitRequest struct {
	ListID   uuid.UUID
	AuthorID uuid.UUID
	Content  string
	Kind     string

	// Suggestion-only fields carried onto the item on approval.
	Description string
	ExternalURL string
	ImageURL    string
}

// SubmitResult is either a new record or, when Duplicate is set, the
// existing pending suggestion the caller should redirect to.
type SubmitResult struct {
	Comment    *models.Comment
	Duplicate  bool
	ExistingID uuid.UUID
	Masked     string
}

// Machine owns the comment lifecycle: submit, vote, edit, delete, and the
// pending -> approved | rejected transitions of suggestions. It performs
// no authorization; the Pipeline does that.
type Machine struct {
	store    Store
	catalog  catalog.Catalog
	words    WordSource
	limiter  *ratelimit.Limiter
	dedup    *dedup.Deduplicator
	promoter Promoter

	maxComment    int
	maxSuggestion int
	now           func() time.Time
}

// Submit runs filter, rate limiter and deduplicator, then inserts.
func (m *Machine) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	content := strings.TrimSpace(req.Content)
	if err := m.validateSubmit(req, content); err != nil {
		return nil, err
	}
	suggestion := req.Kind == models.KindSuggestion

	list, err := m.catalog.GetList(ctx, req.ListID)
	if errors.Is(err, catalog.ErrListNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get list", err)
	}
	if suggestion && !list.SuggestionsEnabled {
		return nil, ErrForbidden
	}

	scan, err := m.scan(ctx, content)
	if err != nil {
		return nil, err
	}

	limits, err := m.limiter.Limits(ctx)
	if err != nil {
		return nil, storageErr("load rate limits", err)
	}
	now := m.now()
	if err := m.checkRate(ctx, m.store, limits, req.AuthorID, req.ListID, now); err != nil {
		return nil, err
	}

	c := &models.Comment{
		ListID:           req.ListID,
		AuthorID:         req.AuthorID,
		Content:          content,
		Kind:             req.Kind,
		SuggestionStatus: models.StatusNone,
		IsFiltered:       scan.Flagged,
		CreatedAt:        now,
	}

	admit := func(ctx context.Context, h ratelimit.History) error {
		return m.checkRate(ctx, h, limits, req.AuthorID, req.ListID, now)
	}

	if !suggestion {
		if err := m.store.InsertComment(ctx, c, admit); err != nil {
			return nil, insertErr(err)
		}
		return &SubmitResult{Comment: c, Masked: scan.Masked}, nil
	}

	c.NormalizedContent = dedup.Normalize(content)
	c.SuggestionStatus = models.StatusPending
	c.Description = strings.TrimSpace(req.Description)
	c.ExternalURL = strings.TrimSpace(req.ExternalURL)
	c.ImageURL = strings.TrimSpace(req.ImageURL)
	if c.NormalizedContent == "" {
		return nil, invalid("content", "Suggestion must contain more than punctuation")
	}

	dup, err := m.existingDuplicate(ctx, req.ListID, content)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		dup.Masked = scan.Masked
		return dup, nil
	}

	exists, err := m.catalog.ItemExists(ctx, req.ListID, c.NormalizedContent)
	if err != nil {
		return nil, storageErr("check item exists", err)
	}
	if exists {
		return nil, ErrItemExists
	}

	if cooldown, ok := limits.RejectedCooldown(); ok {
		wait, err := m.dedup.RejectedCooldown(ctx, req.ListID, content, cooldown, now)
		if err != nil {
			return nil, storageErr("check rejected cooldown", err)
		}
		if wait > 0 {
			return nil, &RateLimitedError{RetryAfter: wait, Scope: ScopeRejected}
		}
	}

	for attempt := 0; attempt < insertAttempts; attempt++ {
		err = m.store.InsertComment(ctx, c, admit)
		if err == nil {
			return &SubmitResult{Comment: c, Masked: scan.Masked}, nil
		}
		if !errors.Is(err, models.ErrDuplicatePendingSuggestion) {
			return nil, insertErr(err)
		}

		// Lost the race to an identical submission: hand back the winner.
		existing, ferr := m.store.FindPendingSuggestion(ctx, req.ListID, c.NormalizedContent)
		if ferr == nil {
			return &SubmitResult{Comment: existing, Duplicate: true, ExistingID: existing.ID, Masked: scan.Masked}, nil
		}
		if !errors.Is(ferr, dedup.ErrNoMatch) {
			return nil, storageErr("find pending suggestion", ferr)
		}
	}
	return nil, storageErr("insert suggestion", err)
}

func (m *Machine) validateSubmit(req SubmitRequest, content string) error {
	if !models.ValidKind(req.Kind) {
		return invalid("kind", "Kind must be comment or suggestion")
	}
	max := m.maxComment
	if req.Kind == models.KindSuggestion {
		max = m.maxSuggestion
	}
	if ok, msg := validation.ValidateContent(content, max); !ok {
		return invalid("content", msg)
	}
	if ok, msg := validation.ValidateOptionalURL(strings.TrimSpace(req.ExternalURL)); !ok {
		return invalid("external_url", msg)
	}
	if ok, msg := validation.ValidateOptionalURL(strings.TrimSpace(req.ImageURL)); !ok {
		return invalid("image_url", msg)
	}
	return nil
}

func (m *Machine) scan(ctx context.Context, content string) (filter.Result, error) {
	set, err := m.words.Snapshot(ctx)
	if err != nil {
		return filter.Result{}, storageErr("load bad words", err)
	}
	return filter.Scan(content, set), nil
}

func (m *Machine) checkRate(ctx context.Context, h ratelimit.History, limits models.RateLimits, userID, listID uuid.UUID, now time.Time) error {
	d, err := m.limiter.Check(ctx, h, limits, userID, listID, now)
	if err != nil {
		return storageErr("check rate limit", err)
	}
	if !d.Allowed {
		return &RateLimitedError{RetryAfter: d.RetryAfter, Scope: d.Scope}
	}
	return nil
}

// existingDuplicate returns a duplicate result if a pending suggestion
// with the same normalized text is already on the list.
func (m *Machine) existingDuplicate(ctx context.Context, listID uuid.UUID, content string) (*SubmitResult, error) {
	id, found, err := m.dedup.FindDuplicate(ctx, listID, content)
	if err != nil {
		return nil, storageErr("find duplicate", err)
	}
	if !found {
		return nil, nil
	}

	existing, err := m.store.GetComment(ctx, id)
	if errors.Is(err, models.ErrCommentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get duplicate", err)
	}
	return &SubmitResult{Comment: existing, Duplicate: true, ExistingID: id}, nil
}

func insertErr(err error) error {
	var rerr *RateLimitedError
	var serr *StorageError
	if errors.As(err, &rerr) || errors.As(err, &serr) {
		return err
	}
	return storageErr("insert comment", err)
}

// Vote records a helpful vote. Legal on any comment in any state.
func (m *Machine) Vote(ctx context.Context, commentID, userID uuid.UUID, value int) (models.VoteTally, error) {
	if ok, msg := validation.ValidateVote(value); !ok {
		return models.VoteTally{}, invalid("value", msg)
	}

	tally, err := m.store.CastVote(ctx, commentID, userID, value)
	if errors.Is(err, models.ErrCommentNotFound) {
		return models.VoteTally{}, ErrNotFound
	}
	if err != nil {
		return models.VoteTally{}, storageErr("cast vote", err)
	}
	return tally, nil
}

// Approve moves a pending suggestion to approved and promotes it. Exactly
// one of any number of concurrent approvals succeeds; the rest get
// ErrAlreadyProcessed.
func (m *Machine) Approve(ctx context.Context, commentID, reviewerID uuid.UUID) (*models.Comment, error) {
	c, err := m.store.ReviewSuggestion(ctx, commentID, reviewerID, models.StatusApproved, m.promoter.Promote)
	if err != nil {
		return nil, reviewErr(err)
	}
	return c, nil
}

// Reject moves a pending suggestion to rejected.
func (m *Machine) Reject(ctx context.Context, commentID, reviewerID uuid.UUID) (*models.Comment, error) {
	c, err := m.store.ReviewSuggestion(ctx, commentID, reviewerID, models.StatusRejected, nil)
	if err != nil {
		return nil, reviewErr(err)
	}
	return c, nil
}

func reviewErr(err error) error {
	switch {
	case errors.Is(err, models.ErrCommentNotFound), errors.Is(err, catalog.ErrListNotFound):
		return ErrNotFound
	case errors.Is(err, models.ErrNotPending):
		return ErrAlreadyProcessed
	case errors.Is(err, models.ErrNotSuggestion):
		return invalid("comment_id", "Comment is not a suggestion")
	case errors.Is(err, catalog.ErrItemExists):
		return ErrItemExists
	}
	return storageErr("review suggestion", err)
}

// Edit replaces a comment's text, re-running the filter. The suggestion
// status is untouched.
func (m *Machine) Edit(ctx context.Context, c *models.Comment, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	max := m.maxComment
	if c.IsSuggestion() {
		max = m.maxSuggestion
	}
	if ok, msg := validation.ValidateContent(content, max); !ok {
		return nil, invalid("content", msg)
	}

	var normalized string
	if c.IsSuggestion() {
		normalized = dedup.Normalize(content)
		if normalized == "" {
			return nil, invalid("content", "Suggestion must contain more than punctuation")
		}
	}

	scan, err := m.scan(ctx, content)
	if err != nil {
		return nil, err
	}

	updated, err := m.store.UpdateCommentContent(ctx, c.ID, content, normalized, scan.Flagged)
	switch {
	case errors.Is(err, models.ErrCommentNotFound):
		return nil, ErrNotFound
	case errors.Is(err, models.ErrDuplicatePendingSuggestion):
		return nil, invalid("content", "A pending suggestion with this text already exists")
	case err != nil:
		return nil, storageErr("update comment", err)
	}
	return updated, nil
}

// Delete removes a comment permanently.
func (m *Machine) Delete(ctx context.Context, commentID uuid.UUID) error {
	err := m.store.DeleteComment(ctx, commentID)
	if errors.Is(err, models.ErrCommentNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return storageErr("delete comment", err)
	}
	return nil
}
