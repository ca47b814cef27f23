package api

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"golists/internal/models"
)

// AdminHandler manages the moderation configuration: bad words and rate
// limits. Admin only.
type AdminHandler struct {
	store Store
	words WordRefresher
	log   zerolog.Logger
}

// NewAdminHandler creates a new API admin handler.
func NewAdminHandler(store Store, words WordRefresher, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{store: store, words: words, log: log}
}

func requireAdmin(c fiber.Ctx) (*models.User, error) {
	user, ok := currentUser(c)
	if !ok {
		return nil, jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !user.IsAdmin() {
		return nil, jsonError(c, fiber.StatusForbidden, "admin access required")
	}
	return user, nil
}

// refresh reloads the filter snapshot so the change applies to the next
// submission rather than after the cache expires.
func (h *AdminHandler) refresh(c fiber.Ctx) {
	if h.words == nil {
		return
	}
	if _, err := h.words.Refresh(c.Context()); err != nil {
		h.log.Warn().Err(err).Msg("bad word refresh after admin change failed")
	}
}

// ListBadWords returns the configured bad words.
func (h *AdminHandler) ListBadWords(c fiber.Ctx) error {
	if user, err := requireAdmin(c); user == nil {
		return err
	}

	words, err := h.store.GetBadWords(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch bad words")
	}
	if words == nil {
		words = []string{}
	}
	return jsonSuccess(c, words)
}

// AddBadWord adds a word to the filter.
func (h *AdminHandler) AddBadWord(c fiber.Ctx) error {
	user, err := requireAdmin(c)
	if user == nil {
		return err
	}

	var body struct {
		Word string `json:"word"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.store.AddBadWord(c.Context(), body.Word); err != nil {
		if errors.Is(err, models.ErrInvalidBadWord) {
			return jsonError(c, fiber.StatusBadRequest, "word is required")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to add bad word")
	}
	h.refresh(c)

	h.log.Info().Stringer("admin_id", user.ID).Msg("bad word added")
	return jsonCreated(c, fiber.Map{"word": strings.ToLower(strings.TrimSpace(body.Word))})
}

// RemoveBadWord removes a word from the filter.
func (h *AdminHandler) RemoveBadWord(c fiber.Ctx) error {
	user, err := requireAdmin(c)
	if user == nil {
		return err
	}

	word := strings.TrimSpace(c.Params("word"))
	if word == "" {
		return jsonError(c, fiber.StatusBadRequest, "word is required")
	}

	removed, err := h.store.RemoveBadWord(c.Context(), word)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to remove bad word")
	}
	if !removed {
		return jsonError(c, fiber.StatusNotFound, "bad word not found")
	}
	h.refresh(c)

	h.log.Info().Stringer("admin_id", user.ID).Msg("bad word removed")
	return jsonSuccess(c, fiber.Map{"message": "bad word removed"})
}

// GetRateLimits returns the current cooldowns.
func (h *AdminHandler) GetRateLimits(c fiber.Ctx) error {
	if user, err := requireAdmin(c); user == nil {
		return err
	}

	limits, err := h.store.GetRateLimits(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch rate limits")
	}
	return jsonSuccess(c, limits)
}

// UpdateRateLimits replaces the cooldowns. Omitted optional limits are
// cleared.
func (h *AdminHandler) UpdateRateLimits(c fiber.Ctx) error {
	user, err := requireAdmin(c)
	if user == nil {
		return err
	}

	var limits models.RateLimits
	if err := json.Unmarshal(c.Body(), &limits); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if limits.PerTargetMinutes < 0 {
		return jsonError(c, fiber.StatusBadRequest, "per_target_minutes must not be negative")
	}
	if limits.GlobalMinutes != nil && *limits.GlobalMinutes < 0 {
		return jsonError(c, fiber.StatusBadRequest, "global_minutes must not be negative")
	}
	if limits.RejectedCooldownMinutes != nil && *limits.RejectedCooldownMinutes < 0 {
		return jsonError(c, fiber.StatusBadRequest, "rejected_cooldown_minutes must not be negative")
	}

	if err := h.store.SetRateLimits(c.Context(), limits); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to update rate limits")
	}

	h.log.Info().
		Stringer("admin_id", user.ID).
		Int("per_target_minutes", limits.PerTargetMinutes).
		Msg("rate limits updated")
	return jsonSuccess(c, limits)
}
