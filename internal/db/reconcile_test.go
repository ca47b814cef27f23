package db

import (
	"context"
	"testing"

	"golists/internal/models"
)

func TestReconcileCounters(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	alice := createUser(t, db, "alice", models.RoleUser)
	bob := createUser(t, db, "bob", models.RoleUser)
	list := createList(t, db, nil)
	s := createSuggestion(t, db, list.ID, alice.ID, "Dune", "dune")

	if _, err := db.CastVote(ctx, s.ID, bob.ID, models.VoteUp); err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}
	if _, err := db.CreateReport(ctx, &models.Report{CommentID: s.ID, ReporterID: bob.ID, Reason: "spam"}); err != nil {
		t.Fatalf("CreateReport() error = %v", err)
	}

	// Simulate drift.
	if _, err := db.Pool.Exec(ctx, `UPDATE comments SET helpful_up = 7, report_count = 3 WHERE id = $1`, s.ID); err != nil {
		t.Fatalf("drift update error = %v", err)
	}

	result, err := db.ReconcileCounters(ctx)
	if err != nil {
		t.Fatalf("ReconcileCounters() error = %v", err)
	}
	if result.VoteCounters != 1 || result.ReportCounters != 1 {
		t.Errorf("ReconcileCounters() = %+v, want 1 and 1", result)
	}

	c, err := db.GetComment(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetComment() error = %v", err)
	}
	if c.HelpfulUp != 1 || c.ReportCount != 1 {
		t.Errorf("counters = up %d reports %d, want 1 and 1", c.HelpfulUp, c.ReportCount)
	}

	stats, err := db.GetModerationStats(ctx)
	if err != nil {
		t.Fatalf("GetModerationStats() error = %v", err)
	}
	if stats.PendingSuggestions != 1 || stats.OpenReports != 1 || stats.FlaggedComments != 1 {
		t.Errorf("GetModerationStats() = %+v", stats)
	}
}
