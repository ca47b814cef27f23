package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"golists/internal/config"
	"golists/internal/models"
)

// UserHandler handles user-related API operations.
type UserHandler struct {
	store Store
	cfg   *config.Config
}

// NewUserHandler creates a new API user handler.
func NewUserHandler(store Store, cfg *config.Config) *UserHandler {
	return &UserHandler{store: store, cfg: cfg}
}

// Me returns the authenticated user.
func (h *UserHandler) Me(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return jsonSuccess(c, user)
}

// subjectID parses :id and checks the current user may see that user's
// moderation history: themselves or a moderator.
func (h *UserHandler) subjectID(c fiber.Ctx) (uuid.UUID, bool, error) {
	user, ok := currentUser(c)
	if !ok {
		return uuid.Nil, false, jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, false, jsonError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if userID != user.ID && !user.IsModerator() {
		return uuid.Nil, false, jsonError(c, fiber.StatusForbidden, "you may only view your own trust score")
	}
	return userID, true, nil
}

// Trust returns a user's trust score.
func (h *UserHandler) Trust(c fiber.Ctx) error {
	userID, ok, err := h.subjectID(c)
	if !ok {
		return err
	}

	score, err := h.store.GetTrustScore(c.Context(), userID, h.cfg.TrustScoreFloor)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch trust score")
	}
	return jsonSuccess(c, score)
}

// Penalties returns a user's penalty ledger, newest first.
func (h *UserHandler) Penalties(c fiber.Ctx) error {
	userID, ok, err := h.subjectID(c)
	if !ok {
		return err
	}

	penalties, err := h.store.ListPenalties(c.Context(), userID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch penalties")
	}
	if penalties == nil {
		penalties = []models.PenaltyRecord{}
	}
	return jsonSuccess(c, penalties)
}

// UpdateRole updates a user's role (admin only).
func (h *UserHandler) UpdateRole(c fiber.Ctx) error {
	admin, ok := currentUser(c)
	if !ok || !admin.IsAdmin() {
		return jsonError(c, fiber.StatusForbidden, "admin access required")
	}

	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid user id")
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if body.Role == "" {
		return jsonError(c, fiber.StatusBadRequest, "role is required")
	}
	if !models.ValidRole(body.Role) {
		return jsonError(c, fiber.StatusBadRequest, "invalid role")
	}

	if userID == admin.ID && body.Role != models.RoleAdmin {
		return jsonError(c, fiber.StatusBadRequest, "cannot change your own role")
	}

	if err := h.store.UpdateUserRole(c.Context(), userID, body.Role); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return jsonError(c, fiber.StatusNotFound, "user not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to update role")
	}

	return jsonSuccess(c, fiber.Map{
		"message": "role updated successfully",
	})
}
