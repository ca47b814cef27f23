package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"golists/internal/filter"
	"golists/internal/models"
	"golists/internal/testutil"
)

type recordingNotifier struct {
	mu        sync.Mutex
	reviewed  []string
	reported  int
	penalties []string
}

func (n *recordingNotifier) SuggestionReviewed(_ context.Context, c *models.Comment, _ *models.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reviewed = append(n.reviewed, c.SuggestionStatus)
}

func (n *recordingNotifier) CommentReported(context.Context, *models.Comment, *models.Report) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reported++
}

func (n *recordingNotifier) PenaltyApplied(_ context.Context, p *models.PenaltyRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.penalties = append(n.penalties, p.Action)
}

type countingObserver struct {
	mu          sync.Mutex
	submissions map[string]int
	reviews     map[string]int
}

func (o *countingObserver) Submission(kind, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.submissions[kind+"/"+outcome]++
}

func (o *countingObserver) Review(decision, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reviews[decision+"/"+outcome]++
}

func (o *countingObserver) Vote()          {}
func (o *countingObserver) Report(string)  {}
func (o *countingObserver) Penalty(string) {}

type fixture struct {
	store    *testutil.MemStore
	clock    *testutil.Clock
	notifier *recordingNotifier
	observer *countingObserver
	p        *Pipeline

	owner *models.User
	mod   *models.User
	alice *models.User
	bob   *models.User
	list  *models.List
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := testutil.NewMemStore()
	clock := testutil.NewClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	store.Now = clock.Now
	if err := store.AddBadWord(context.Background(), "darn"); err != nil {
		t.Fatalf("AddBadWord() error = %v", err)
	}

	f := &fixture{
		store:    store,
		clock:    clock,
		notifier: &recordingNotifier{},
		observer: &countingObserver{submissions: map[string]int{}, reviews: map[string]int{}},
	}
	f.p = New(Deps{
		Store:    store,
		Catalog:  store,
		Words:    filter.NewCache(store, time.Minute, zerolog.Nop()),
		Settings: store,
		Notifier: f.notifier,
		Observer: f.observer,
		Logger:   zerolog.Nop(),
		Clock:    clock.Now,
	}, Config{
		MaxCommentLength:    2000,
		MaxSuggestionLength: 200,
		Penalties: map[string]int{
			models.PenaltyDelete: -10,
			models.PenaltyEdit:   -5,
			models.PenaltyReport: -10,
		},
	})

	f.owner = store.AddUser("owner", models.RoleUser)
	f.mod = store.AddUser("mod", models.RoleModerator)
	f.alice = store.AddUser("alice", models.RoleUser)
	f.bob = store.AddUser("bob", models.RoleUser)
	f.list = store.AddList("Tehran cafés", f.owner, true)
	return f
}

func (f *fixture) suggest(t *testing.T, author *models.User, title string) *models.Comment {
	t.Helper()
	res, err := f.p.Submit(context.Background(), author, SubmitRequest{ListID: f.list.ID, Content: title, Kind: models.KindSuggestion})
	if err != nil {
		t.Fatalf("Submit(%q) error = %v", title, err)
	}
	if res.Duplicate {
		t.Fatalf("Submit(%q) returned a duplicate", title)
	}
	return res.Comment
}

func (f *fixture) comment(t *testing.T, author *models.User, text string) *models.Comment {
	t.Helper()
	res, err := f.p.Submit(context.Background(), author, SubmitRequest{ListID: f.list.ID, Content: text, Kind: models.KindComment})
	if err != nil {
		t.Fatalf("Submit(%q) error = %v", text, err)
	}
	return res.Comment
}

func TestSubmit_CommentIsFilteredAndMasked(t *testing.T) {
	f := newFixture(t)

	res, err := f.p.Submit(context.Background(), f.alice, SubmitRequest{
		ListID:  f.list.ID,
		Content: "  This is DARN good coffee  ",
		Kind:    models.KindComment,
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if !res.Comment.IsFiltered {
		t.Error("Submit() comment should be filtered")
	}
	if res.Comment.Content != "This is DARN good coffee" {
		t.Errorf("Content = %q, want trimmed original", res.Comment.Content)
	}
	if res.Masked != "This is **** good coffee" {
		t.Errorf("Masked = %q, want %q", res.Masked, "This is **** good coffee")
	}
	if res.Comment.SuggestionStatus != models.StatusNone {
		t.Errorf("SuggestionStatus = %q, want %q", res.Comment.SuggestionStatus, models.StatusNone)
	}
	if got := f.observer.submissions["comment/created"]; got != 1 {
		t.Errorf("observed created comments = %d, want 1", got)
	}
}

func TestSubmit_Validation(t *testing.T) {
	long := make([]rune, 201)
	for i := range long {
		long[i] = 'é'
	}

	tests := []struct {
		name  string
		req   SubmitRequest
		field string
	}{
		{name: "empty content", req: SubmitRequest{Content: "   ", Kind: models.KindComment}, field: "content"},
		{name: "unknown kind", req: SubmitRequest{Content: "hello", Kind: "review"}, field: "kind"},
		{name: "suggestion too long", req: SubmitRequest{Content: string(long), Kind: models.KindSuggestion}, field: "content"},
		{name: "punctuation only suggestion", req: SubmitRequest{Content: "?!...", Kind: models.KindSuggestion}, field: "content"},
		{name: "bad external url", req: SubmitRequest{Content: "Cafe", Kind: models.KindSuggestion, ExternalURL: "ftp://x"}, field: "external_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.req.ListID = f.list.ID

			_, err := f.p.Submit(context.Background(), f.alice, tt.req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Submit() error = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestSubmit_ListChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.p.Submit(ctx, f.alice, SubmitRequest{ListID: uuid.New(), Content: "hi", Kind: models.KindComment})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Submit() on missing list error = %v, want ErrNotFound", err)
	}

	closed := f.store.AddList("Closed", f.owner, false)
	_, err = f.p.Submit(ctx, f.alice, SubmitRequest{ListID: closed.ID, Content: "Cafe Naderi", Kind: models.KindSuggestion})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("Submit() suggestion on closed list error = %v, want ErrForbidden", err)
	}

	// Plain comments are still accepted.
	if _, err := f.p.Submit(ctx, f.alice, SubmitRequest{ListID: closed.ID, Content: "nice", Kind: models.KindComment}); err != nil {
		t.Errorf("Submit() comment on closed list error = %v", err)
	}

	if _, err := f.p.Submit(ctx, nil, SubmitRequest{ListID: f.list.ID, Content: "hi", Kind: models.KindComment}); !errors.Is(err, ErrForbidden) {
		t.Errorf("Submit() without actor error = %v, want ErrForbidden", err)
	}
}

func TestSubmit_PerListCooldownBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.store.SetRateLimits(ctx, models.RateLimits{PerTargetMinutes: 5}); err != nil {
		t.Fatalf("SetRateLimits() error = %v", err)
	}

	f.comment(t, f.alice, "first")

	f.clock.Advance(4*time.Minute + 59*time.Second)
	_, err := f.p.Submit(ctx, f.alice, SubmitRequest{ListID: f.list.ID, Content: "second", Kind: models.KindComment})
	var rerr *RateLimitedError
	if !errors.As(err, &rerr) {
		t.Fatalf("Submit() at 4m59s error = %v, want RateLimitedError", err)
	}
	if rerr.RetryAfter != time.Second {
		t.Errorf("RetryAfter = %v, want 1s", rerr.RetryAfter)
	}
	if rerr.Scope != "target" {
		t.Errorf("Scope = %q, want target", rerr.Scope)
	}

	// Another user is unaffected.
	f.comment(t, f.bob, "also here")

	f.clock.Advance(time.Second)
	f.comment(t, f.alice, "second")
}

func TestSubmit_GlobalCooldownAcrossLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	global := 2
	if err := f.store.SetRateLimits(ctx, models.RateLimits{PerTargetMinutes: 1, GlobalMinutes: &global}); err != nil {
		t.Fatalf("SetRateLimits() error = %v", err)
	}
	other := f.store.AddList("Tabriz bazaars", f.owner, true)

	f.comment(t, f.alice, "on the first list")

	f.clock.Advance(90 * time.Second)
	_, err := f.p.Submit(ctx, f.alice, SubmitRequest{ListID: other.ID, Content: "on the second", Kind: models.KindComment})
	var rerr *RateLimitedError
	if !errors.As(err, &rerr) {
		t.Fatalf("Submit() on other list error = %v, want RateLimitedError", err)
	}
	if rerr.Scope != "global" || rerr.RetryAfter != 30*time.Second {
		t.Errorf("RateLimitedError = {%s %v}, want {global 30s}", rerr.Scope, rerr.RetryAfter)
	}

	f.clock.Advance(30 * time.Second)
	if _, err := f.p.Submit(ctx, f.alice, SubmitRequest{ListID: other.ID, Content: "on the second", Kind: models.KindComment}); err != nil {
		t.Errorf("Submit() after global cooldown error = %v", err)
	}
}

func TestSubmit_DuplicateSuggestionConverges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.suggest(t, f.alice, "Café Azadi")

	res, err := f.p.Submit(ctx, f.bob, SubmitRequest{ListID: f.list.ID, Content: "  café   azadi  ", Kind: models.KindSuggestion})
	if err != nil {
		t.Fatalf("Submit() duplicate error = %v", err)
	}
	if !res.Duplicate {
		t.Fatal("Submit() duplicate: Duplicate = false, want true")
	}
	if res.ExistingID != first.ID {
		t.Errorf("ExistingID = %v, want %v", res.ExistingID, first.ID)
	}

	pending, _ := f.store.ListPendingSuggestions(ctx, 10)
	if len(pending) != 1 {
		t.Errorf("pending suggestions = %d, want 1", len(pending))
	}

	// The duplicate did not store anything, so bob can still post at once.
	f.comment(t, f.bob, "looking forward to it")
}

func TestSubmit_ConcurrentDuplicatesYieldOneRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 10
	users := make([]*models.User, n)
	for i := range users {
		users[i] = f.store.AddUser("user"+string(rune('a'+i)), models.RoleUser)
	}

	results := make([]*SubmitResult, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.p.Submit(ctx, users[i], SubmitRequest{ListID: f.list.ID, Content: "Lamiz Coffee", Kind: models.KindSuggestion})
		}(i)
	}
	wg.Wait()

	created := 0
	var id uuid.UUID
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("Submit() #%d error = %v", i, errs[i])
		}
		if !results[i].Duplicate {
			created++
			id = results[i].Comment.ID
		}
	}
	if created != 1 {
		t.Fatalf("created = %d, want exactly 1", created)
	}
	for i, r := range results {
		if r.Duplicate && r.ExistingID != id {
			t.Errorf("result #%d ExistingID = %v, want %v", i, r.ExistingID, id)
		}
	}
}

func TestSubmit_ItemAlreadyOnList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s := f.suggest(t, f.alice, "Cafe Naderi")
	if _, err := f.p.Approve(ctx, f.mod, s.ID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	_, err := f.p.Submit(ctx, f.bob, SubmitRequest{ListID: f.list.ID, Content: "cafe naderi!", Kind: models.KindSuggestion})
	if !errors.Is(err, ErrItemExists) {
		t.Errorf("Submit() error = %v, want ErrItemExists", err)
	}
}

func TestSubmit_RejectedCooldown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cooldown := 60
	if err := f.store.SetRateLimits(ctx, models.RateLimits{PerTargetMinutes: 1, RejectedCooldownMinutes: &cooldown}); err != nil {
		t.Fatalf("SetRateLimits() error = %v", err)
	}

	s := f.suggest(t, f.alice, "Vanak Square")
	if _, err := f.p.Reject(ctx, f.mod, s.ID); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}

	f.clock.Advance(10 * time.Minute)
	_, err := f.p.Submit(ctx, f.bob, SubmitRequest{ListID: f.list.ID, Content: "vanak square", Kind: models.KindSuggestion})
	var rerr *RateLimitedError
	if !errors.As(err, &rerr) {
		t.Fatalf("Submit() error = %v, want RateLimitedError", err)
	}
	if rerr.Scope != ScopeRejected || rerr.RetryAfter != 50*time.Minute {
		t.Errorf("RateLimitedError = {%s %v}, want {%s 50m0s}", rerr.Scope, rerr.RetryAfter, ScopeRejected)
	}

	f.clock.Advance(50 * time.Minute)
	f.suggest(t, f.bob, "vanak square")
}

func TestApprove_PromotesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.p.Submit(ctx, f.alice, SubmitRequest{
		ListID:      f.list.ID,
		Content:     "Café Lorca",
		Kind:        models.KindSuggestion,
		Description: "Hidden courtyard",
		ExternalURL: "https://example.com/lorca",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	mods := make([]*models.User, 8)
	for i := range mods {
		mods[i] = f.store.AddUser("mod"+string(rune('a'+i)), models.RoleModerator)
	}

	errs := make([]error, len(mods))
	var wg sync.WaitGroup
	for i := range mods {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.p.Approve(ctx, mods[i], res.Comment.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrAlreadyProcessed):
		default:
			t.Errorf("Approve() unexpected error = %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("successful approvals = %d, want 1", succeeded)
	}

	items := f.store.Items(f.list.ID)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].Title != "Café Lorca" || items[0].Description != "Hidden courtyard" {
		t.Errorf("item = %+v, want title and description copied", items[0])
	}
	if items[0].SourceCommentID == nil || *items[0].SourceCommentID != res.Comment.ID {
		t.Errorf("item SourceCommentID = %v, want %v", items[0].SourceCommentID, res.Comment.ID)
	}

	list, _ := f.store.GetList(ctx, f.list.ID)
	if list.ItemCount != 1 {
		t.Errorf("ItemCount = %d, want 1", list.ItemCount)
	}

	c, _ := f.store.GetComment(ctx, res.Comment.ID)
	if c.SuggestionStatus != models.StatusApproved || c.ApprovedItemID == nil || *c.ApprovedItemID != items[0].ID {
		t.Errorf("comment = {%s %v}, want approved with item %v", c.SuggestionStatus, c.ApprovedItemID, items[0].ID)
	}
	if got := f.observer.reviews["approved/already_processed"]; got != len(mods)-1 {
		t.Errorf("observed conflicts = %d, want %d", got, len(mods)-1)
	}
	if len(f.notifier.reviewed) != 1 {
		t.Errorf("review notifications = %d, want 1", len(f.notifier.reviewed))
	}
}

func TestReview_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s := f.suggest(t, f.alice, "Gandom Bakery")
	plain := f.comment(t, f.bob, "just a comment")

	if _, err := f.p.Approve(ctx, f.bob, s.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Approve() by user error = %v, want ErrForbidden", err)
	}
	if _, err := f.p.Approve(ctx, f.alice, s.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Approve() by author error = %v, want ErrForbidden", err)
	}
	if _, err := f.p.Approve(ctx, f.mod, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Approve() missing error = %v, want ErrNotFound", err)
	}

	var verr *ValidationError
	if _, err := f.p.Approve(ctx, f.mod, plain.ID); !errors.As(err, &verr) {
		t.Errorf("Approve() plain comment error = %v, want ValidationError", err)
	}

	// List owners review their own lists.
	if _, err := f.p.Reject(ctx, f.owner, s.ID); err != nil {
		t.Fatalf("Reject() by owner error = %v", err)
	}
	if _, err := f.p.Approve(ctx, f.mod, s.ID); !errors.Is(err, ErrAlreadyProcessed) {
		t.Errorf("Approve() after reject error = %v, want ErrAlreadyProcessed", err)
	}
	if n := len(f.store.Items(f.list.ID)); n != 0 {
		t.Errorf("items = %d, want 0", n)
	}
}

func TestVote_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.comment(t, f.alice, "try the saffron ice cream")

	steps := []struct {
		value    int
		wantUp   int
		wantDown int
	}{
		{value: models.VoteUp, wantUp: 1, wantDown: 0},
		{value: models.VoteUp, wantUp: 1, wantDown: 0},
		{value: models.VoteDown, wantUp: 0, wantDown: 1},
		{value: models.VoteDown, wantUp: 0, wantDown: 1},
		{value: models.VoteUp, wantUp: 1, wantDown: 0},
	}
	for i, s := range steps {
		tally, err := f.p.Vote(ctx, f.bob, c.ID, s.value)
		if err != nil {
			t.Fatalf("step %d: Vote() error = %v", i, err)
		}
		if tally.HelpfulUp != s.wantUp || tally.HelpfulDown != s.wantDown || tally.UserVote != s.value {
			t.Errorf("step %d: Vote() = %+v, want up=%d down=%d vote=%d", i, tally, s.wantUp, s.wantDown, s.value)
		}
	}

	var verr *ValidationError
	if _, err := f.p.Vote(ctx, f.bob, c.ID, 0); !errors.As(err, &verr) {
		t.Errorf("Vote(0) error = %v, want ValidationError", err)
	}
	if _, err := f.p.Vote(ctx, f.bob, uuid.New(), models.VoteUp); !errors.Is(err, ErrNotFound) {
		t.Errorf("Vote() missing comment error = %v, want ErrNotFound", err)
	}
}

func TestDelete_Penalties(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		report      bool
		actor       func(f *fixture) *models.User
		wantErr     error
		wantPenalty bool
	}{
		{name: "moderator deletes filtered comment", text: "darn slow service", actor: func(f *fixture) *models.User { return f.mod }, wantPenalty: true},
		{name: "moderator deletes reported comment", text: "meh", report: true, actor: func(f *fixture) *models.User { return f.mod }, wantPenalty: true},
		{name: "moderator deletes clean comment", text: "lovely", actor: func(f *fixture) *models.User { return f.mod }},
		{name: "author cannot delete own comment", text: "lovely", actor: func(f *fixture) *models.User { return f.alice }, wantErr: ErrForbidden},
		{name: "author cannot delete own reported comment", text: "meh", report: true, actor: func(f *fixture) *models.User { return f.alice }, wantErr: ErrForbidden},
		{name: "other user cannot delete", text: "lovely", actor: func(f *fixture) *models.User { return f.bob }, wantErr: ErrForbidden},
		{name: "list owner cannot delete", text: "lovely", actor: func(f *fixture) *models.User { return f.owner }, wantErr: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			c := f.comment(t, f.alice, tt.text)
			if tt.report {
				if _, _, err := f.p.Report(ctx, f.bob, c.ID, "rude"); err != nil {
					t.Fatalf("Report() error = %v", err)
				}
			}

			res, err := f.p.Delete(ctx, tt.actor(f), c.ID, nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Delete() error = %v, want %v", err, tt.wantErr)
				}
				if _, err := f.store.GetComment(ctx, c.ID); err != nil {
					t.Errorf("GetComment() after refused Delete() error = %v", err)
				}
				if n := len(f.store.Penalties()); n != 0 {
					t.Errorf("penalties after refused Delete() = %d, want 0", n)
				}
				return
			}
			if err != nil {
				t.Fatalf("Delete() error = %v", err)
			}

			if _, err := f.store.GetComment(ctx, c.ID); err == nil {
				t.Error("comment still exists after Delete()")
			}
			penalties := f.store.Penalties()
			if tt.wantPenalty {
				if len(penalties) != 1 || res.Penalty == nil {
					t.Fatalf("penalties = %d, want 1", len(penalties))
				}
				p := penalties[0]
				if p.TargetUserID != f.alice.ID || p.ModeratorID != f.mod.ID || p.Score != -10 || p.Action != models.PenaltyDelete || p.RelatedCommentID != c.ID {
					t.Errorf("penalty = %+v, want -10 delete against alice", p)
				}
			} else if len(penalties) != 0 {
				t.Errorf("penalties = %d, want 0", len(penalties))
			}
		})
	}
}

func TestDelete_PenaltySurvivesFailedDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.comment(t, f.alice, "darn awful")

	f.store.DeleteErr = errors.New("connection reset")
	_, err := f.p.Delete(ctx, f.mod, c.ID, nil)
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("Delete() error = %v, want StorageError", err)
	}
	if n := len(f.store.Penalties()); n != 1 {
		t.Fatalf("penalties after failed delete = %d, want 1", n)
	}

	f.store.DeleteErr = nil
	if _, err := f.p.Delete(ctx, f.mod, c.ID, nil); err != nil {
		t.Fatalf("Delete() retry error = %v", err)
	}
	if n := len(f.store.Penalties()); n != 1 {
		t.Errorf("penalties after retry = %d, want 1", n)
	}
	if n := len(f.notifier.penalties); n != 1 {
		t.Errorf("penalty notifications = %d, want 1", n)
	}
}

func TestDelete_StoreSentinelMapsToNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.comment(t, f.alice, "gone already")

	// A concurrent delete surfaces as the shared store sentinel, wrapped.
	f.store.DeleteErr = fmt.Errorf("delete comment: %w", models.ErrCommentNotFound)
	_, err := f.p.Delete(ctx, f.mod, c.ID, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete() error = %v, want ErrNotFound", err)
	}
	var serr *StorageError
	if errors.As(err, &serr) {
		t.Errorf("Delete() error = %v, want no StorageError", err)
	}
}

func TestEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.comment(t, f.alice, "darn noisy")
	res, err := f.p.Edit(ctx, f.mod, c.ID, "noisy", nil)
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if res.Comment.Content != "noisy" || res.Comment.IsFiltered {
		t.Errorf("Edit() comment = {%q filtered=%v}, want clean text", res.Comment.Content, res.Comment.IsFiltered)
	}
	if res.Penalty == nil || res.Penalty.Score != -5 || res.Penalty.Action != models.PenaltyEdit {
		t.Errorf("Edit() penalty = %+v, want -5 edit", res.Penalty)
	}

	// A zero override waives the penalty.
	f.clock.Advance(time.Minute)
	other := f.comment(t, f.alice, "darn loud")
	zero := 0
	res, err = f.p.Edit(ctx, f.mod, other.ID, "loud", &zero)
	if err != nil {
		t.Fatalf("Edit() with zero score error = %v", err)
	}
	if res.Penalty != nil {
		t.Errorf("Edit() with zero score penalty = %+v, want nil", res.Penalty)
	}

	// A moderator editing their own flagged comment is not penalized.
	own := f.comment(t, f.mod, "darn typo")
	res, err = f.p.Edit(ctx, f.mod, own.ID, "typo", nil)
	if err != nil {
		t.Fatalf("Edit() own comment error = %v", err)
	}
	if res.Penalty != nil {
		t.Errorf("Edit() own comment penalty = %+v, want nil", res.Penalty)
	}
}

func TestEdit_OnlyModerators(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.suggest(t, f.bob, "Roof Cafe")

	for _, actor := range []*models.User{nil, f.bob, f.alice, f.owner} {
		if _, err := f.p.Edit(ctx, actor, s.ID, "rewritten", nil); !errors.Is(err, ErrForbidden) {
			t.Errorf("Edit() by %v error = %v, want ErrForbidden", actor, err)
		}
	}

	got, err := f.store.GetComment(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetComment() error = %v", err)
	}
	if got.Content != "Roof Cafe" {
		t.Errorf("Content = %q, want unchanged", got.Content)
	}
	if n := len(f.store.Penalties()); n != 0 {
		t.Errorf("penalties = %d, want 0", n)
	}
}

func TestReport_RepeatIsAbsorbed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.comment(t, f.alice, "spam spam")

	first, created, err := f.p.Report(ctx, f.bob, c.ID, "spam")
	if err != nil || !created {
		t.Fatalf("Report() = %v, %v; want created", created, err)
	}
	again, created, err := f.p.Report(ctx, f.bob, c.ID, "still spam")
	if err != nil {
		t.Fatalf("Report() repeat error = %v", err)
	}
	if created || again.ID != first.ID {
		t.Errorf("Report() repeat = {%v created=%v}, want original report", again.ID, created)
	}

	got, _ := f.store.GetComment(ctx, c.ID)
	if got.ReportCount != 1 {
		t.Errorf("ReportCount = %d, want 1", got.ReportCount)
	}
	if f.notifier.reported != 1 {
		t.Errorf("report notifications = %d, want 1", f.notifier.reported)
	}

	var verr *ValidationError
	if _, _, err := f.p.Report(ctx, f.bob, c.ID, "  "); !errors.As(err, &verr) {
		t.Errorf("Report() blank reason error = %v, want ValidationError", err)
	}
	if _, _, err := f.p.Report(ctx, f.bob, uuid.New(), "spam"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Report() missing comment error = %v, want ErrNotFound", err)
	}
}

func TestResolveReport(t *testing.T) {
	t.Run("dismiss", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		c := f.comment(t, f.alice, "fine comment")
		r, _, _ := f.p.Report(ctx, f.bob, c.ID, "i disagree")

		if _, err := f.p.ResolveReport(ctx, f.bob, r.ID, models.ResolutionDismiss, nil); !errors.Is(err, ErrForbidden) {
			t.Errorf("ResolveReport() by user error = %v, want ErrForbidden", err)
		}

		res, err := f.p.ResolveReport(ctx, f.mod, r.ID, models.ResolutionDismiss, nil)
		if err != nil {
			t.Fatalf("ResolveReport() error = %v", err)
		}
		if !res.Report.Resolved || res.Penalty != nil || res.Removed {
			t.Errorf("ResolveReport() = %+v, want resolved with no effects", res)
		}
		got, _ := f.store.GetComment(ctx, c.ID)
		if got.ReportCount != 0 {
			t.Errorf("ReportCount = %d, want 0", got.ReportCount)
		}

		if _, err := f.p.ResolveReport(ctx, f.mod, r.ID, models.ResolutionRemove, nil); !errors.Is(err, ErrAlreadyProcessed) {
			t.Errorf("ResolveReport() with new resolution error = %v, want ErrAlreadyProcessed", err)
		}
	})

	t.Run("remove is retryable", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		c := f.comment(t, f.alice, "rude remark")
		r, _, _ := f.p.Report(ctx, f.bob, c.ID, "rude")

		f.store.DeleteErr = errors.New("timeout")
		res, err := f.p.ResolveReport(ctx, f.mod, r.ID, models.ResolutionRemove, nil)
		if err == nil {
			t.Fatal("ResolveReport() with failing delete should error")
		}
		if res == nil || res.Penalty == nil {
			t.Fatalf("ResolveReport() = %+v, want penalty recorded", res)
		}

		f.store.DeleteErr = nil
		res, err = f.p.ResolveReport(ctx, f.mod, r.ID, models.ResolutionRemove, nil)
		if err != nil {
			t.Fatalf("ResolveReport() retry error = %v", err)
		}
		if !res.Removed {
			t.Error("ResolveReport() retry Removed = false, want true")
		}

		// Once the comment is gone a further retry is still a success.
		res, err = f.p.ResolveReport(ctx, f.mod, r.ID, models.ResolutionRemove, nil)
		if err != nil {
			t.Fatalf("ResolveReport() after removal error = %v", err)
		}
		if !res.Removed || res.Report.Resolution != models.ResolutionRemove {
			t.Errorf("ResolveReport() after removal = %+v, want removed replay", res)
		}
		if _, err := f.p.ResolveReport(ctx, f.mod, r.ID, models.ResolutionDismiss, nil); !errors.Is(err, ErrAlreadyProcessed) {
			t.Errorf("ResolveReport() new resolution after removal error = %v, want ErrAlreadyProcessed", err)
		}
		kept, err := f.store.GetReport(ctx, r.ID)
		if err != nil {
			t.Fatalf("GetReport() after removal error = %v", err)
		}
		if !kept.Resolved || kept.Resolution != models.ResolutionRemove || kept.ResolvedBy == nil || *kept.ResolvedBy != f.mod.ID {
			t.Errorf("report after removal = %+v, want resolved by mod", kept)
		}

		penalties := f.store.Penalties()
		if len(penalties) != 1 || penalties[0].Action != models.PenaltyReport {
			t.Errorf("penalties = %+v, want one report penalty", penalties)
		}
		ts, _ := f.store.GetTrustScore(ctx, f.alice.ID, -100)
		if ts.Score != -10 || ts.Penalties != 1 {
			t.Errorf("trust score = %+v, want -10 from 1 penalty", ts)
		}
	})

	t.Run("removal closes other open reports", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		c := f.comment(t, f.alice, "rude remark")
		first, _, _ := f.p.Report(ctx, f.bob, c.ID, "rude")
		second, _, _ := f.p.Report(ctx, f.owner, c.ID, "offensive")

		if _, err := f.p.ResolveReport(ctx, f.mod, first.ID, models.ResolutionRemove, nil); err != nil {
			t.Fatalf("ResolveReport() error = %v", err)
		}

		open, err := f.store.ListOpenReports(ctx, 10)
		if err != nil {
			t.Fatalf("ListOpenReports() error = %v", err)
		}
		if len(open) != 0 {
			t.Errorf("open reports = %d, want 0", len(open))
		}
		other, err := f.store.GetReport(ctx, second.ID)
		if err != nil {
			t.Fatalf("GetReport() error = %v", err)
		}
		if !other.Resolved || other.Resolution != models.ResolutionRemove {
			t.Errorf("second report = %+v, want closed as removed", other)
		}
		if _, err := f.p.ResolveReport(ctx, f.mod, second.ID, models.ResolutionPenalize, nil); !errors.Is(err, ErrAlreadyProcessed) {
			t.Errorf("ResolveReport() closed report error = %v, want ErrAlreadyProcessed", err)
		}
		if n := len(f.store.Penalties()); n != 1 {
			t.Errorf("penalties = %d, want 1", n)
		}
	})

	t.Run("unknown report", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.p.ResolveReport(context.Background(), f.mod, uuid.New(), models.ResolutionDismiss, nil); !errors.Is(err, ErrNotFound) {
			t.Errorf("ResolveReport() error = %v, want ErrNotFound", err)
		}
	})
}

func TestIsExpected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "not found", err: ErrNotFound, want: true},
		{name: "already processed", err: ErrAlreadyProcessed, want: true},
		{name: "validation", err: invalid("content", "bad"), want: true},
		{name: "rate limited", err: &RateLimitedError{RetryAfter: time.Second}, want: true},
		{name: "storage", err: storageErr("insert", errors.New("down")), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExpected(tt.err); got != tt.want {
				t.Errorf("IsExpected(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
