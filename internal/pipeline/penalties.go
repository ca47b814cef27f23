package pipeline

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"golists/internal/models"
	"golists/internal/validation"
)

// PenaltyRequest describes a trust deduction a moderator action triggers.
type PenaltyRequest struct {
	TargetUserID     uuid.UUID
	ModeratorID      uuid.UUID
	Score            int
	RelatedCommentID uuid.UUID
	Action           string
}

// Coordinator records reports and penalties. Penalties are append-only;
// nothing here rewrites a prior record.
type Coordinator struct {
	store Store
}

// FileReport records reporterID's complaint about a comment. Filing again
// while the first report is open returns that report with created false.
func (c *Coordinator) FileReport(ctx context.Context, commentID, reporterID uuid.UUID, reason string) (*models.Report, bool, error) {
	if ok, msg := validation.ValidateReason(reason); !ok {
		return nil, false, invalid("reason", msg)
	}

	r := &models.Report{CommentID: commentID, ReporterID: reporterID, Reason: reason}
	created, err := c.store.CreateReport(ctx, r)
	if errors.Is(err, models.ErrCommentNotFound) {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, storageErr("create report", err)
	}
	return r, created, nil
}

// ResolveReport closes a report with resolution. Resolving a closed report
// again with the same resolution returns it with changed false so the
// caller can finish the follow-up effects of an interrupted attempt; a
// different resolution is ErrAlreadyProcessed.
func (c *Coordinator) ResolveReport(ctx context.Context, reportID, resolverID uuid.UUID, resolution string) (*models.Report, bool, error) {
	if !models.ValidResolution(resolution) {
		return nil, false, invalid("resolution", "Resolution must be dismiss, penalize or remove")
	}

	r, changed, err := c.store.ResolveReport(ctx, reportID, resolverID, resolution)
	if errors.Is(err, models.ErrReportNotFound) {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, storageErr("resolve report", err)
	}
	if !changed && r.Resolution != resolution {
		return nil, false, ErrAlreadyProcessed
	}
	return r, changed, nil
}

// ApplyPenalty appends a penalty record. A repeat for the same comment and
// action returns the original record with created false.
func (c *Coordinator) ApplyPenalty(ctx context.Context, req PenaltyRequest) (*models.PenaltyRecord, bool, error) {
	switch {
	case !models.ValidPenaltyAction(req.Action):
		return nil, false, invalid("action", "Unknown penalty action")
	case req.Score == 0:
		return nil, false, invalid("score", "Penalty score must be non-zero")
	case req.TargetUserID == uuid.Nil, req.ModeratorID == uuid.Nil, req.RelatedCommentID == uuid.Nil:
		return nil, false, invalid("", "Penalty needs a target, a moderator and a comment")
	}

	p := &models.PenaltyRecord{
		TargetUserID:     req.TargetUserID,
		ModeratorID:      req.ModeratorID,
		Score:            req.Score,
		RelatedCommentID: req.RelatedCommentID,
		Action:           req.Action,
	}
	created, err := c.store.InsertPenalty(ctx, p)
	if err != nil {
		return nil, false, storageErr("insert penalty", err)
	}
	return p, created, nil
}
