package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"golists/internal/models"
	"golists/internal/pipeline"
)

// ModerationHandler serves the moderator queues and report resolution.
type ModerationHandler struct {
	pipeline *pipeline.Pipeline
	store    Store
}

// NewModerationHandler creates a new API moderation handler.
func NewModerationHandler(p *pipeline.Pipeline, store Store) *ModerationHandler {
	return &ModerationHandler{pipeline: p, store: store}
}

// requireModerator returns the current user if they are a moderator, or
// writes the error response.
func requireModerator(c fiber.Ctx) (*models.User, error) {
	user, ok := currentUser(c)
	if !ok {
		return nil, jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !user.IsModerator() {
		return nil, jsonError(c, fiber.StatusForbidden, "moderator access required")
	}
	return user, nil
}

// ListPending returns pending suggestions across all lists, oldest first.
func (h *ModerationHandler) ListPending(c fiber.Ctx) error {
	if user, err := requireModerator(c); user == nil {
		return err
	}

	pending, err := h.store.ListPendingSuggestions(c.Context(), queryLimit(c))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch pending suggestions")
	}
	if pending == nil {
		pending = []models.Comment{}
	}
	return jsonSuccess(c, pending)
}

// ListFlagged returns comments caught by the filter or carrying open reports.
func (h *ModerationHandler) ListFlagged(c fiber.Ctx) error {
	if user, err := requireModerator(c); user == nil {
		return err
	}

	flagged, err := h.store.ListFlaggedComments(c.Context(), queryLimit(c))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch flagged comments")
	}
	if flagged == nil {
		flagged = []models.Comment{}
	}
	return jsonSuccess(c, flagged)
}

// ListReports returns unresolved reports, oldest first.
func (h *ModerationHandler) ListReports(c fiber.Ctx) error {
	if user, err := requireModerator(c); user == nil {
		return err
	}

	reports, err := h.store.ListOpenReports(c.Context(), queryLimit(c))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch reports")
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return jsonSuccess(c, reports)
}

// ResolveReport closes a report as dismiss, penalize or remove.
func (h *ModerationHandler) ResolveReport(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid report id")
	}

	var body struct {
		Resolution string `json:"resolution"`
		Score      *int   `json:"score"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	res, err := h.pipeline.ResolveReport(c.Context(), user, reportID, body.Resolution, body.Score)
	if err != nil {
		return pipelineError(c, err)
	}
	return jsonSuccess(c, fiber.Map{
		"report":  res.Report,
		"penalty": res.Penalty,
		"removed": res.Removed,
	})
}
