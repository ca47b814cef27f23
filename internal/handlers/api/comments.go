package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"golists/internal/catalog"
	"golists/internal/models"
	"golists/internal/pipeline"
)

// CommentHandler handles comments and suggestions via JSON API.
type CommentHandler struct {
	pipeline *pipeline.Pipeline
	store    Store
}

// NewCommentHandler creates a new API comment handler.
func NewCommentHandler(p *pipeline.Pipeline, store Store) *CommentHandler {
	return &CommentHandler{pipeline: p, store: store}
}

// Submit creates a comment or suggestion on a list.
func (h *CommentHandler) Submit(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	listID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid list id")
	}

	var body struct {
		Content     string `json:"content"`
		Kind        string `json:"kind"`
		Description string `json:"description"`
		ExternalURL string `json:"external_url"`
		ImageURL    string `json:"image_url"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.Kind == "" {
		body.Kind = models.KindComment
	}

	res, err := h.pipeline.Submit(c.Context(), user, pipeline.SubmitRequest{
		ListID:      listID,
		Content:     body.Content,
		Kind:        body.Kind,
		Description: body.Description,
		ExternalURL: body.ExternalURL,
		ImageURL:    body.ImageURL,
	})
	if err != nil {
		return pipelineError(c, err)
	}

	if res.Duplicate {
		return jsonSuccess(c, fiber.Map{
			"comment_id":  res.ExistingID,
			"duplicate":   true,
			"existing_id": res.ExistingID,
			"message":     "this has already been suggested",
		})
	}

	return jsonCreated(c, fiber.Map{
		"comment_id": res.Comment.ID,
		"duplicate":  false,
		"filtered":   res.Comment.IsFiltered,
		"masked":     res.Masked,
		"comment":    res.Comment,
	})
}

// ListSuggestions returns a list's comments, optionally only suggestions in
// the given status.
func (h *CommentHandler) ListSuggestions(c fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid list id")
	}

	status := c.Query("status", "")
	switch status {
	case "", models.StatusPending, models.StatusApproved, models.StatusRejected:
	default:
		return jsonError(c, fiber.StatusBadRequest, "invalid status")
	}

	if _, err := h.store.GetList(c.Context(), listID); err != nil {
		if errors.Is(err, catalog.ErrListNotFound) {
			return jsonError(c, fiber.StatusNotFound, "list not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch list")
	}

	comments, err := h.store.ListComments(c.Context(), listID, status, queryLimit(c))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch comments")
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return jsonSuccess(c, comments)
}

// Vote records a helpful vote.
func (h *CommentHandler) Vote(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	commentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid comment id")
	}

	var body struct {
		Value int `json:"value"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	tally, err := h.pipeline.Vote(c.Context(), user, commentID, body.Value)
	if err != nil {
		return pipelineError(c, err)
	}
	return jsonSuccess(c, tally)
}

// Edit replaces a comment's text.
func (h *CommentHandler) Edit(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	commentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid comment id")
	}

	var body struct {
		Content string `json:"content"`
		Score   *int   `json:"score"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	res, err := h.pipeline.Edit(c.Context(), user, commentID, body.Content, body.Score)
	if err != nil {
		return pipelineError(c, err)
	}
	return jsonSuccess(c, fiber.Map{
		"comment": res.Comment,
		"penalty": res.Penalty,
	})
}

// Delete removes a comment. Moderators may pass a penalty score override.
func (h *CommentHandler) Delete(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	commentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid comment id")
	}

	var body struct {
		Score *int `json:"score"`
	}
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	res, err := h.pipeline.Delete(c.Context(), user, commentID, body.Score)
	if err != nil {
		return pipelineError(c, err)
	}
	return jsonSuccess(c, fiber.Map{
		"message": "comment deleted",
		"penalty": res.Penalty,
	})
}

// Report files a report against a comment. Repeats are accepted silently.
func (h *CommentHandler) Report(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	commentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid comment id")
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	report, _, err := h.pipeline.Report(c.Context(), user, commentID, body.Reason)
	if err != nil {
		return pipelineError(c, err)
	}
	return jsonSuccess(c, fiber.Map{
		"accepted":  true,
		"report_id": report.ID,
	})
}

// Approve promotes a pending suggestion to a list item.
func (h *CommentHandler) Approve(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	commentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid comment id")
	}

	reviewed, err := h.pipeline.Approve(c.Context(), user, commentID)
	if err != nil {
		return pipelineError(c, err)
	}
	return jsonSuccess(c, fiber.Map{
		"status":  reviewed.SuggestionStatus,
		"item_id": reviewed.ApprovedItemID,
	})
}

// Reject closes a pending suggestion.
func (h *CommentHandler) Reject(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	commentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid comment id")
	}

	reviewed, err := h.pipeline.Reject(c.Context(), user, commentID)
	if err != nil {
		return pipelineError(c, err)
	}
	return jsonSuccess(c, fiber.Map{
		"status": reviewed.SuggestionStatus,
	})
}
