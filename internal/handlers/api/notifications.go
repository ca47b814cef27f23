package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"golists/internal/models"
)

// NotificationHandler serves the current user's in-app notifications.
type NotificationHandler struct {
	store Store
}

// NewNotificationHandler creates a new API notification handler.
func NewNotificationHandler(store Store) *NotificationHandler {
	return &NotificationHandler{store: store}
}

// List returns the current user's notifications, newest first. Pass
// ?unread=true for unread ones only.
func (h *NotificationHandler) List(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	unread := c.Query("unread") == "true"
	notifications, err := h.store.ListNotifications(c.Context(), user.ID, unread, queryLimit(c))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch notifications")
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return jsonSuccess(c, notifications)
}

// MarkRead marks one of the current user's notifications read.
func (h *NotificationHandler) MarkRead(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid notification id")
	}

	if err := h.store.MarkNotificationRead(c.Context(), id, user.ID); err != nil {
		if errors.Is(err, models.ErrNotificationNotFound) {
			return jsonError(c, fiber.StatusNotFound, "notification not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to update notification")
	}
	return jsonSuccess(c, fiber.Map{"message": "notification marked read"})
}
