package api

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"golists/internal/filter"
	"golists/internal/models"
)

// Store is what the API reads directly, outside the pipeline. *db.DB
// implements it.
type Store interface {
	GetList(ctx context.Context, listID uuid.UUID) (*models.List, error)
	ListComments(ctx context.Context, listID uuid.UUID, status string, limit int) ([]models.Comment, error)
	ListPendingSuggestions(ctx context.Context, limit int) ([]models.Comment, error)
	ListFlaggedComments(ctx context.Context, limit int) ([]models.Comment, error)
	ListOpenReports(ctx context.Context, limit int) ([]models.Report, error)

	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUserRole(ctx context.Context, userID uuid.UUID, role string) error
	GetTrustScore(ctx context.Context, userID uuid.UUID, floor int) (models.TrustScore, error)
	ListPenalties(ctx context.Context, userID uuid.UUID) ([]models.PenaltyRecord, error)

	ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error

	GetBadWords(ctx context.Context) ([]string, error)
	AddBadWord(ctx context.Context, word string) error
	RemoveBadWord(ctx context.Context, word string) (bool, error)
	GetRateLimits(ctx context.Context) (models.RateLimits, error)
	SetRateLimits(ctx context.Context, limits models.RateLimits) error
}

// WordRefresher reloads the bad-word snapshot after an admin change.
// *filter.Cache implements it.
type WordRefresher interface {
	Refresh(ctx context.Context) (*filter.BadWordSet, error)
}

const (
	defaultLimit = 50
	maxLimit     = 200
)

// queryLimit reads ?limit=, clamped to [1, maxLimit].
func queryLimit(c fiber.Ctx) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

// currentUser returns the authenticated user stored by the auth middleware.
func currentUser(c fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals("user").(*models.User)
	return user, ok && user != nil
}
