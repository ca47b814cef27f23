package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"golists/internal/catalog"
	"golists/internal/models"
)

// listCatalog implements catalog.Catalog against q.
type listCatalog struct {
	q querier
}

// Catalog returns the pool-backed catalog.
func (d *DB) Catalog() catalog.Catalog {
	return listCatalog{d.Pool}
}

func (c listCatalog) GetList(ctx context.Context, listID uuid.UUID) (*models.List, error) {
	var l models.List
	err := c.q.QueryRow(ctx, `
		SELECT id, owner_id, title, item_count, suggestions_enabled, created_at
		FROM lists WHERE id = $1
	`, listID).Scan(&l.ID, &l.OwnerID, &l.Title, &l.ItemCount, &l.SuggestionsEnabled, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, catalog.ErrListNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (c listCatalog) ItemExists(ctx context.Context, listID uuid.UUID, normalizedTitle string) (bool, error) {
	var exists bool
	err := c.q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM items WHERE list_id = $1 AND normalized_title = $2)
	`, listID, normalizedTitle).Scan(&exists)
	return exists, err
}

func (c listCatalog) CreateItem(ctx context.Context, listID uuid.UUID, f models.ItemFields) (uuid.UUID, error) {
	query := `
		INSERT INTO items (list_id, title, normalized_title, description, external_url,
			image_url, source_comment_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	var id uuid.UUID
	err := c.q.QueryRow(ctx, query,
		listID,
		f.Title,
		f.NormalizedTitle,
		f.Description,
		f.ExternalURL,
		f.ImageURL,
		f.SourceCommentID,
		f.CreatedBy,
	).Scan(&id)
	if isUniqueViolation(err, "items_list_title_key") {
		return uuid.Nil, catalog.ErrItemExists
	}
	if isForeignKeyViolation(err) {
		return uuid.Nil, catalog.ErrListNotFound
	}
	return id, err
}

func (c listCatalog) IncrementItemCount(ctx context.Context, listID uuid.UUID) error {
	result, err := c.q.Exec(ctx, `UPDATE lists SET item_count = item_count + 1 WHERE id = $1`, listID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return catalog.ErrListNotFound
	}
	return nil
}

// GetList retrieves a list by ID.
func (d *DB) GetList(ctx context.Context, listID uuid.UUID) (*models.List, error) {
	return listCatalog{d.Pool}.GetList(ctx, listID)
}

// ItemExists reports whether listID has an item with the normalized title.
func (d *DB) ItemExists(ctx context.Context, listID uuid.UUID, normalizedTitle string) (bool, error) {
	return listCatalog{d.Pool}.ItemExists(ctx, listID, normalizedTitle)
}

// CreateList inserts a new list.
func (d *DB) CreateList(ctx context.Context, l *models.List) error {
	return d.Pool.QueryRow(ctx, `
		INSERT INTO lists (owner_id, title, suggestions_enabled)
		VALUES ($1, $2, $3)
		RETURNING id, item_count, created_at
	`, l.OwnerID, l.Title, l.SuggestionsEnabled).Scan(&l.ID, &l.ItemCount, &l.CreatedAt)
}

// SetSuggestionsEnabled toggles whether a list accepts suggestions.
func (d *DB) SetSuggestionsEnabled(ctx context.Context, listID uuid.UUID, enabled bool) error {
	result, err := d.Pool.Exec(ctx, `UPDATE lists SET suggestions_enabled = $1 WHERE id = $2`, enabled, listID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return catalog.ErrListNotFound
	}
	return nil
}

// ListItems returns a list's items in insertion order.
func (d *DB) ListItems(ctx context.Context, listID uuid.UUID) ([]models.Item, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, list_id, title, description, external_url, image_url,
			source_comment_id, created_by, created_at
		FROM items WHERE list_id = $1
		ORDER BY created_at ASC
	`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.ID, &it.ListID, &it.Title, &it.Description, &it.ExternalURL,
			&it.ImageURL, &it.SourceCommentID, &it.CreatedBy, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	return items, rows.Err()
}
