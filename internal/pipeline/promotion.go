package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"golists/internal/catalog"
	"golists/internal/dedup"
	"golists/internal/models"
)

// Promoter maps an approved suggestion onto a new catalog item. It runs
// at most once per suggestion because the store only calls it from the
// single pending-to-approved transition.
type Promoter struct{}

// ItemFields returns the item a suggestion becomes: its text as the title
// and its optional fields copied verbatim.
func (Promoter) ItemFields(c *models.Comment) models.ItemFields {
	normalized := c.NormalizedContent
	if normalized == "" {
		normalized = dedup.Normalize(c.Content)
	}
	source, author := c.ID, c.AuthorID
	return models.ItemFields{
		Title:           strings.TrimSpace(c.Content),
		NormalizedTitle: normalized,
		Description:     c.Description,
		ExternalURL:     c.ExternalURL,
		ImageURL:        c.ImageURL,
		SourceCommentID: &source,
		CreatedBy:       &author,
	}
}

// Promote creates the item and bumps the list's item count. It satisfies
// catalog.PromoteFunc.
func (p Promoter) Promote(ctx context.Context, c *models.Comment, cat catalog.Catalog) (uuid.UUID, error) {
	itemID, err := cat.CreateItem(ctx, c.ListID, p.ItemFields(c))
	if err != nil {
		return uuid.Nil, fmt.Errorf("create item: %w", err)
	}
	if err := cat.IncrementItemCount(ctx, c.ListID); err != nil {
		return uuid.Nil, fmt.Errorf("increment item count: %w", err)
	}
	return itemID, nil
}
