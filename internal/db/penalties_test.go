package db

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"golists/internal/models"
)

func TestInsertPenalty_OncePerCommentAndAction(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	alice := createUser(t, db, "alice", models.RoleUser)
	mod := createUser(t, db, "mod", models.RoleModerator)
	commentID := uuid.New()

	p := &models.PenaltyRecord{TargetUserID: alice.ID, ModeratorID: mod.ID, Score: -10, RelatedCommentID: commentID, Action: models.PenaltyDelete}
	created, err := db.InsertPenalty(ctx, p)
	if err != nil || !created {
		t.Fatalf("InsertPenalty() = %v, %v, want true, nil", created, err)
	}

	retry := &models.PenaltyRecord{TargetUserID: alice.ID, ModeratorID: mod.ID, Score: -10, RelatedCommentID: commentID, Action: models.PenaltyDelete}
	created, err = db.InsertPenalty(ctx, retry)
	if err != nil || created {
		t.Fatalf("InsertPenalty() retry = %v, %v, want false, nil", created, err)
	}
	if retry.ID != p.ID {
		t.Errorf("retry ID = %v, want %v", retry.ID, p.ID)
	}

	records, err := db.ListPenalties(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListPenalties() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("ListPenalties() returned %d records, want 1", len(records))
	}
}

func TestGetTrustScore_Floor(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	alice := createUser(t, db, "alice", models.RoleUser)
	mod := createUser(t, db, "mod", models.RoleModerator)

	for i := 0; i < 3; i++ {
		p := &models.PenaltyRecord{TargetUserID: alice.ID, ModeratorID: mod.ID, Score: -40, RelatedCommentID: uuid.New(), Action: models.PenaltyReport}
		if _, err := db.InsertPenalty(ctx, p); err != nil {
			t.Fatalf("InsertPenalty() error = %v", err)
		}
	}

	score, err := db.GetTrustScore(ctx, alice.ID, -100)
	if err != nil {
		t.Fatalf("GetTrustScore() error = %v", err)
	}
	if score.Score != -100 {
		t.Errorf("Score = %d, want -100", score.Score)
	}
	if score.Penalties != 3 {
		t.Errorf("Penalties = %d, want 3", score.Penalties)
	}

	clean, err := db.GetTrustScore(ctx, mod.ID, -100)
	if err != nil {
		t.Fatalf("GetTrustScore() error = %v", err)
	}
	if clean.Score != 0 {
		t.Errorf("Score = %d, want 0", clean.Score)
	}
}
