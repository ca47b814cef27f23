package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"golists/internal/catalog"
	"golists/internal/dedup"
	"golists/internal/models"
	"golists/internal/ratelimit"
)

// commentColumns is the standard column list for comment queries.
const commentColumns = `id, list_id, author_id, content, normalized_content, kind,
	suggestion_status, approved_item_id, description, external_url, image_url,
	is_filtered, helpful_up, helpful_down, report_count, reviewed_by, reviewed_at,
	created_at, updated_at`

// scanComment scans a row into a Comment struct.
func scanComment(row pgx.Row) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(
		&c.ID,
		&c.ListID,
		&c.AuthorID,
		&c.Content,
		&c.NormalizedContent,
		&c.Kind,
		&c.SuggestionStatus,
		&c.ApprovedItemID,
		&c.Description,
		&c.ExternalURL,
		&c.ImageURL,
		&c.IsFiltered,
		&c.HelpfulUp,
		&c.HelpfulDown,
		&c.ReportCount,
		&c.ReviewedBy,
		&c.ReviewedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// scanComments scans multiple rows into a slice of Comments.
func scanComments(rows pgx.Rows) ([]models.Comment, error) {
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}

	return comments, rows.Err()
}

// GetComment retrieves a comment by ID.
func (d *DB) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`
	return scanComment(d.Pool.QueryRow(ctx, query, id))
}

// history answers rate-limit lookups against q.
type history struct {
	q querier
}

func (h history) LastCommentAt(ctx context.Context, userID, listID uuid.UUID) (time.Time, bool, error) {
	return lastCreatedAt(ctx, h.q, `
		SELECT created_at FROM comments
		WHERE author_id = $1 AND list_id = $2
		ORDER BY created_at DESC LIMIT 1
	`, userID, listID)
}

func (h history) LastCommentAtAny(ctx context.Context, userID uuid.UUID) (time.Time, bool, error) {
	return lastCreatedAt(ctx, h.q, `
		SELECT created_at FROM comments
		WHERE author_id = $1
		ORDER BY created_at DESC LIMIT 1
	`, userID)
}

func lastCreatedAt(ctx context.Context, q querier, query string, args ...any) (time.Time, bool, error) {
	var at time.Time
	err := q.QueryRow(ctx, query, args...).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}

// LastCommentAt returns when userID last commented on listID.
func (d *DB) LastCommentAt(ctx context.Context, userID, listID uuid.UUID) (time.Time, bool, error) {
	return history{d.Pool}.LastCommentAt(ctx, userID, listID)
}

// LastCommentAtAny returns when userID last commented anywhere.
func (d *DB) LastCommentAtAny(ctx context.Context, userID uuid.UUID) (time.Time, bool, error) {
	return history{d.Pool}.LastCommentAtAny(ctx, userID)
}

// InsertComment stores a new comment. The author's inserts are serialized
// with an advisory lock so admit sees every earlier comment by that author
// and the rate-limit check and the insert form one atomic unit. A pending
// suggestion colliding with another on the same list returns
// models.ErrDuplicatePendingSuggestion.
func (d *DB) InsertComment(ctx context.Context, c *models.Comment, admit ratelimit.Admit) error {
	return d.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, c.AuthorID); err != nil {
			return fmt.Errorf("lock author: %w", err)
		}

		if admit != nil {
			if err := admit(ctx, history{tx}); err != nil {
				return err
			}
		}

		query := `
			INSERT INTO comments (list_id, author_id, content, normalized_content, kind,
				suggestion_status, description, external_url, image_url, is_filtered,
				created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRow(ctx, query,
			c.ListID,
			c.AuthorID,
			c.Content,
			c.NormalizedContent,
			c.Kind,
			c.SuggestionStatus,
			c.Description,
			c.ExternalURL,
			c.ImageURL,
			c.IsFiltered,
			c.CreatedAt,
		).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
		if isUniqueViolation(err, "comments_pending_suggestion_key") {
			return models.ErrDuplicatePendingSuggestion
		}
		return err
	})
}

// FindPendingSuggestion returns the pending suggestion on listID with the
// given normalized content.
func (d *DB) FindPendingSuggestion(ctx context.Context, listID uuid.UUID, normalized string) (*models.Comment, error) {
	query := `
		SELECT ` + commentColumns + ` FROM comments
		WHERE list_id = $1 AND normalized_content = $2
		  AND kind = 'suggestion' AND suggestion_status = 'pending'
	`
	c, err := scanComment(d.Pool.QueryRow(ctx, query, listID, normalized))
	if errors.Is(err, models.ErrCommentNotFound) {
		return nil, dedup.ErrNoMatch
	}
	return c, err
}

// LastRejectedAt returns the latest rejection time of a suggestion with the
// given normalized content on listID.
func (d *DB) LastRejectedAt(ctx context.Context, listID uuid.UUID, normalized string) (time.Time, bool, error) {
	var at *time.Time
	err := d.Pool.QueryRow(ctx, `
		SELECT MAX(reviewed_at) FROM comments
		WHERE list_id = $1 AND normalized_content = $2 AND suggestion_status = 'rejected'
	`, listID, normalized).Scan(&at)
	if err != nil {
		return time.Time{}, false, err
	}
	if at == nil {
		return time.Time{}, false, nil
	}
	return *at, true, nil
}

// ReviewSuggestion moves a pending suggestion to decision. The row is
// locked for the duration, so concurrent reviews of one suggestion
// serialize and only the first succeeds; the rest get models.ErrNotPending. On
// approval promote runs against a catalog bound to the same transaction.
func (d *DB) ReviewSuggestion(ctx context.Context, id, reviewerID uuid.UUID, decision string, promote catalog.PromoteFunc) (*models.Comment, error) {
	var reviewed *models.Comment

	err := d.inTx(ctx, func(tx pgx.Tx) error {
		c, err := scanComment(tx.QueryRow(ctx,
			`SELECT `+commentColumns+` FROM comments WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if !c.IsSuggestion() {
			return models.ErrNotSuggestion
		}
		if !c.IsPending() {
			return models.ErrNotPending
		}

		var itemID *uuid.UUID
		if decision == models.StatusApproved {
			if promote == nil {
				return errors.New("approval requires a promote function")
			}
			created, err := promote(ctx, c, listCatalog{tx})
			if err != nil {
				return err
			}
			itemID = &created
		}

		query := `
			UPDATE comments
			SET suggestion_status = $1, approved_item_id = $2, reviewed_by = $3,
				reviewed_at = NOW(), updated_at = NOW()
			WHERE id = $4 AND suggestion_status = 'pending'
			RETURNING ` + commentColumns
		reviewed, err = scanComment(tx.QueryRow(ctx, query, decision, itemID, reviewerID, id))
		if errors.Is(err, models.ErrCommentNotFound) {
			return models.ErrNotPending
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}

// UpdateCommentContent replaces a comment's text and filter flag.
func (d *DB) UpdateCommentContent(ctx context.Context, id uuid.UUID, content, normalized string, filtered bool) (*models.Comment, error) {
	query := `
		UPDATE comments
		SET content = $1, normalized_content = $2, is_filtered = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING ` + commentColumns
	c, err := scanComment(d.Pool.QueryRow(ctx, query, content, normalized, filtered, id))
	if isUniqueViolation(err, "comments_pending_suggestion_key") {
		return nil, models.ErrDuplicatePendingSuggestion
	}
	return c, err
}

// DeleteComment removes a comment and its votes. Reports outlive the
// comment: any still open are closed with the remove resolution.
func (d *DB) DeleteComment(ctx context.Context, id uuid.UUID) error {
	return d.inTx(ctx, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return models.ErrCommentNotFound
		}

		_, err = tx.Exec(ctx, `
			UPDATE comment_reports
			SET resolved = TRUE, resolution = $1, resolved_at = NOW()
			WHERE comment_id = $2 AND NOT resolved
		`, models.ResolutionRemove, id)
		return err
	})
}

// ListComments returns a list's comments, newest first. An empty status
// returns every kind; otherwise only suggestions in that status.
func (d *DB) ListComments(ctx context.Context, listID uuid.UUID, status string, limit int) ([]models.Comment, error) {
	query := `
		SELECT ` + commentColumns + ` FROM comments
		WHERE list_id = $1 AND ($2 = '' OR suggestion_status = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := d.Pool.Query(ctx, query, listID, status, limit)
	if err != nil {
		return nil, err
	}
	return scanComments(rows)
}

// ListPendingSuggestions returns the review queue across all lists, oldest first.
func (d *DB) ListPendingSuggestions(ctx context.Context, limit int) ([]models.Comment, error) {
	query := `
		SELECT ` + commentColumns + ` FROM comments
		WHERE kind = 'suggestion' AND suggestion_status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := d.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return scanComments(rows)
}

// ListFlaggedComments returns comments needing moderation: filtered or reported.
func (d *DB) ListFlaggedComments(ctx context.Context, limit int) ([]models.Comment, error) {
	query := `
		SELECT ` + commentColumns + ` FROM comments
		WHERE is_filtered OR report_count > 0
		ORDER BY report_count DESC, created_at DESC
		LIMIT $1
	`
	rows, err := d.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return scanComments(rows)
}
