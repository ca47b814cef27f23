// Package catalog defines the contract between the suggestion pipeline and
// the list/item store it promotes suggestions into.
package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"golists/internal/models"
)

var (
	ErrListNotFound = errors.New("list not found")
	ErrItemExists   = errors.New("an item with this title already exists on the list")
)

// Catalog owns lists and their items.
type Catalog interface {
	GetList(ctx context.Context, listID uuid.UUID) (*models.List, error)
	// ItemExists reports whether listID already has an item whose
	// normalized title equals normalizedTitle.
	ItemExists(ctx context.Context, listID uuid.UUID, normalizedTitle string) (bool, error)
	// CreateItem returns ErrItemExists when the normalized title is taken.
	CreateItem(ctx context.Context, listID uuid.UUID, fields models.ItemFields) (uuid.UUID, error)
	IncrementItemCount(ctx context.Context, listID uuid.UUID) error
}

// PromoteFunc turns an approved suggestion into an item using cat. Stores
// call it inside the unit of work that flips the suggestion's status, so
// every catalog write it makes commits or rolls back with that flip.
type PromoteFunc func(ctx context.Context, c *models.Comment, cat Catalog) (uuid.UUID, error)
