package testutil

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"golists/internal/catalog"
	"golists/internal/db"
	"golists/internal/dedup"
	"golists/internal/models"
	"golists/internal/ratelimit"
)

type voteKey struct {
	userID    uuid.UUID
	commentID uuid.UUID
}

type penaltyKey struct {
	commentID uuid.UUID
	action    string
}

// MemStore is an in-memory stand-in for *db.DB. It keeps the same atomicity
// contracts as the Postgres store: admit and promote run under the store
// lock, and a failed promote leaves no catalog writes behind. It returns
// the db package's sentinel errors.
type MemStore struct {
	// Now stamps reviews, reports and penalties. Defaults to time.Now.
	Now func() time.Time
	// DeleteErr, when set, is returned by DeleteComment without deleting.
	DeleteErr error

	mu            sync.Mutex
	users         map[uuid.UUID]*models.User
	lists         map[uuid.UUID]*models.List
	items         map[uuid.UUID]*models.Item
	itemTitles    map[uuid.UUID]map[string]uuid.UUID
	comments      map[uuid.UUID]*models.Comment
	votes         map[voteKey]int
	reports       map[uuid.UUID]*models.Report
	penalties     []models.PenaltyRecord
	penaltyIndex  map[penaltyKey]int
	badWords      map[string]struct{}
	limits        models.RateLimits
	notifications []models.Notification
}

// NewMemStore returns an empty store with the default one-minute per-list
// cooldown.
func NewMemStore() *MemStore {
	return &MemStore{
		Now:          time.Now,
		users:        make(map[uuid.UUID]*models.User),
		lists:        make(map[uuid.UUID]*models.List),
		items:        make(map[uuid.UUID]*models.Item),
		itemTitles:   make(map[uuid.UUID]map[string]uuid.UUID),
		comments:     make(map[uuid.UUID]*models.Comment),
		votes:        make(map[voteKey]int),
		reports:      make(map[uuid.UUID]*models.Report),
		penaltyIndex: make(map[penaltyKey]int),
		badWords:     make(map[string]struct{}),
		limits:       models.RateLimits{PerTargetMinutes: 1},
	}
}

// AddUser creates a user with role and returns it.
func (s *MemStore) AddUser(username, role string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := &models.User{
		ID:        uuid.New(),
		Sub:       "sub-" + username,
		Username:  username,
		Email:     username + "@example.com",
		Name:      username,
		Role:      role,
		CreatedAt: s.Now(),
		UpdatedAt: s.Now(),
	}
	s.users[u.ID] = u
	cp := *u
	return &cp
}

// AddList creates a list owned by owner (may be nil) and returns it.
func (s *MemStore) AddList(title string, owner *models.User, suggestionsEnabled bool) *models.List {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := &models.List{
		ID:                 uuid.New(),
		Title:              title,
		SuggestionsEnabled: suggestionsEnabled,
		CreatedAt:          s.Now(),
	}
	if owner != nil {
		id := owner.ID
		l.OwnerID = &id
	}
	s.lists[l.ID] = l
	cp := *l
	return &cp
}

// Items returns the items on a list.
func (s *MemStore) Items(listID uuid.UUID) []models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Item
	for _, it := range s.items {
		if it.ListID == listID {
			out = append(out, *it)
		}
	}
	return out
}

// Penalties returns every penalty record in insertion order.
func (s *MemStore) Penalties() []models.PenaltyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.PenaltyRecord(nil), s.penalties...)
}

// Notifications returns every stored notification.
func (s *MemStore) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.notifications...)
}

// SetCounters overwrites a comment's denormalized counters, simulating drift.
func (s *MemStore) SetCounters(commentID uuid.UUID, up, down, reports int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.comments[commentID]; ok {
		c.HelpfulUp, c.HelpfulDown, c.ReportCount = up, down, reports
	}
}

// Users

func (s *MemStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemStore) GetUserBySub(ctx context.Context, sub string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Sub == sub {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (s *MemStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (s *MemStore) UpsertUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Sub == user.Sub {
			u.Username, u.Email, u.Name = user.Username, user.Email, user.Name
			u.UpdatedAt = s.Now()
			*user = *u
			return nil
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.CreatedAt, user.UpdatedAt = s.Now(), s.Now()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *MemStore) UpdateUserRole(ctx context.Context, userID uuid.UUID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	u.Role = role
	u.UpdatedAt = s.Now()
	return nil
}

func (s *MemStore) GetModerators(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if u.IsModerator() {
			out = append(out, *u)
		}
	}
	return out, nil
}

// Catalog

func (s *MemStore) GetList(ctx context.Context, listID uuid.UUID) (*models.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getList(listID)
}

func (s *MemStore) getList(listID uuid.UUID) (*models.List, error) {
	l, ok := s.lists[listID]
	if !ok {
		return nil, catalog.ErrListNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *MemStore) ItemExists(ctx context.Context, listID uuid.UUID, normalizedTitle string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.itemTitles[listID][normalizedTitle]
	return ok, nil
}

func (s *MemStore) CreateItem(ctx context.Context, listID uuid.UUID, f models.ItemFields) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.begin()
	id, err := tx.CreateItem(ctx, listID, f)
	if err != nil {
		return uuid.Nil, err
	}
	tx.commit()
	return id, nil
}

func (s *MemStore) IncrementItemCount(ctx context.Context, listID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[listID]
	if !ok {
		return catalog.ErrListNotFound
	}
	l.ItemCount++
	return nil
}

// Catalog returns the store itself, mirroring (*db.DB).Catalog.
func (s *MemStore) Catalog() catalog.Catalog {
	return s
}

// memTx stages catalog writes made by a promote function. The store lock
// is held for its whole life.
type memTx struct {
	s      *MemStore
	items  []*models.Item
	titles map[uuid.UUID]map[string]uuid.UUID
	counts map[uuid.UUID]int
}

func (s *MemStore) begin() *memTx {
	return &memTx{
		s:      s,
		titles: make(map[uuid.UUID]map[string]uuid.UUID),
		counts: make(map[uuid.UUID]int),
	}
}

func (t *memTx) GetList(ctx context.Context, listID uuid.UUID) (*models.List, error) {
	l, err := t.s.getList(listID)
	if err != nil {
		return nil, err
	}
	l.ItemCount += t.counts[listID]
	return l, nil
}

func (t *memTx) ItemExists(ctx context.Context, listID uuid.UUID, normalizedTitle string) (bool, error) {
	if _, ok := t.s.itemTitles[listID][normalizedTitle]; ok {
		return true, nil
	}
	_, ok := t.titles[listID][normalizedTitle]
	return ok, nil
}

func (t *memTx) CreateItem(ctx context.Context, listID uuid.UUID, f models.ItemFields) (uuid.UUID, error) {
	if _, ok := t.s.lists[listID]; !ok {
		return uuid.Nil, catalog.ErrListNotFound
	}
	if exists, _ := t.ItemExists(ctx, listID, f.NormalizedTitle); exists {
		return uuid.Nil, catalog.ErrItemExists
	}
	it := &models.Item{
		ID:              uuid.New(),
		ListID:          listID,
		Title:           f.Title,
		Description:     f.Description,
		ExternalURL:     f.ExternalURL,
		ImageURL:        f.ImageURL,
		SourceCommentID: f.SourceCommentID,
		CreatedBy:       f.CreatedBy,
		CreatedAt:       t.s.Now(),
	}
	t.items = append(t.items, it)
	if t.titles[listID] == nil {
		t.titles[listID] = make(map[string]uuid.UUID)
	}
	t.titles[listID][f.NormalizedTitle] = it.ID
	return it.ID, nil
}

func (t *memTx) IncrementItemCount(ctx context.Context, listID uuid.UUID) error {
	if _, ok := t.s.lists[listID]; !ok {
		return catalog.ErrListNotFound
	}
	t.counts[listID]++
	return nil
}

func (t *memTx) commit() {
	for _, it := range t.items {
		t.s.items[it.ID] = it
	}
	for listID, titles := range t.titles {
		if t.s.itemTitles[listID] == nil {
			t.s.itemTitles[listID] = make(map[string]uuid.UUID)
		}
		for title, id := range titles {
			t.s.itemTitles[listID][title] = id
		}
	}
	for listID, n := range t.counts {
		t.s.lists[listID].ItemCount += n
	}
}

// Comments

// memHistory reads comment history without taking the lock.
type memHistory struct{ s *MemStore }

func (h memHistory) LastCommentAt(ctx context.Context, userID, listID uuid.UUID) (time.Time, bool, error) {
	return h.s.lastCommentAt(func(c *models.Comment) bool {
		return c.AuthorID == userID && c.ListID == listID
	})
}

func (h memHistory) LastCommentAtAny(ctx context.Context, userID uuid.UUID) (time.Time, bool, error) {
	return h.s.lastCommentAt(func(c *models.Comment) bool {
		return c.AuthorID == userID
	})
}

func (s *MemStore) lastCommentAt(match func(*models.Comment) bool) (time.Time, bool, error) {
	var (
		last  time.Time
		found bool
	)
	for _, c := range s.comments {
		if match(c) && (!found || c.CreatedAt.After(last)) {
			last, found = c.CreatedAt, true
		}
	}
	return last, found, nil
}

func (s *MemStore) LastCommentAt(ctx context.Context, userID, listID uuid.UUID) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memHistory{s}.LastCommentAt(ctx, userID, listID)
}

func (s *MemStore) LastCommentAtAny(ctx context.Context, userID uuid.UUID) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memHistory{s}.LastCommentAtAny(ctx, userID)
}

func (s *MemStore) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, models.ErrCommentNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *MemStore) pendingConflict(listID uuid.UUID, normalized string, except uuid.UUID) bool {
	for _, other := range s.comments {
		if other.ID != except && other.ListID == listID && other.IsPending() && other.NormalizedContent == normalized {
			return true
		}
	}
	return false
}

func (s *MemStore) InsertComment(ctx context.Context, c *models.Comment, admit ratelimit.Admit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[c.ListID]; !ok {
		return catalog.ErrListNotFound
	}
	if admit != nil {
		if err := admit(ctx, memHistory{s}); err != nil {
			return err
		}
	}
	if c.IsPending() && s.pendingConflict(c.ListID, c.NormalizedContent, uuid.Nil) {
		return models.ErrDuplicatePendingSuggestion
	}

	c.ID = uuid.New()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.Now()
	}
	c.UpdatedAt = c.CreatedAt
	cp := *c
	s.comments[c.ID] = &cp
	return nil
}

func (s *MemStore) FindPendingSuggestion(ctx context.Context, listID uuid.UUID, normalized string) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.comments {
		if c.ListID == listID && c.IsPending() && c.NormalizedContent == normalized {
			cp := *c
			return &cp, nil
		}
	}
	return nil, dedup.ErrNoMatch
}

func (s *MemStore) LastRejectedAt(ctx context.Context, listID uuid.UUID, normalized string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		last  time.Time
		found bool
	)
	for _, c := range s.comments {
		if c.ListID != listID || c.NormalizedContent != normalized || c.SuggestionStatus != models.StatusRejected || c.ReviewedAt == nil {
			continue
		}
		if !found || c.ReviewedAt.After(last) {
			last, found = *c.ReviewedAt, true
		}
	}
	return last, found, nil
}

func (s *MemStore) ReviewSuggestion(ctx context.Context, id, reviewerID uuid.UUID, decision string, promote catalog.PromoteFunc) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, models.ErrCommentNotFound
	}
	if !c.IsSuggestion() {
		return nil, models.ErrNotSuggestion
	}
	if !c.IsPending() {
		return nil, models.ErrNotPending
	}

	var itemID *uuid.UUID
	if decision == models.StatusApproved {
		if promote == nil {
			return nil, errors.New("approval requires a promote function")
		}
		tx := s.begin()
		snapshot := *c
		created, err := promote(ctx, &snapshot, tx)
		if err != nil {
			return nil, err
		}
		tx.commit()
		itemID = &created
	}

	now := s.Now()
	reviewer := reviewerID
	c.SuggestionStatus = decision
	c.ApprovedItemID = itemID
	c.ReviewedBy = &reviewer
	c.ReviewedAt = &now
	c.UpdatedAt = now
	cp := *c
	return &cp, nil
}

func (s *MemStore) UpdateCommentContent(ctx context.Context, id uuid.UUID, content, normalized string, filtered bool) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, models.ErrCommentNotFound
	}
	if c.IsPending() && s.pendingConflict(c.ListID, normalized, c.ID) {
		return nil, models.ErrDuplicatePendingSuggestion
	}
	c.Content = content
	c.NormalizedContent = normalized
	c.IsFiltered = filtered
	c.UpdatedAt = s.Now()
	cp := *c
	return &cp, nil
}

func (s *MemStore) DeleteComment(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if _, ok := s.comments[id]; !ok {
		return models.ErrCommentNotFound
	}
	delete(s.comments, id)
	for k := range s.votes {
		if k.commentID == id {
			delete(s.votes, k)
		}
	}
	now := s.Now()
	for _, r := range s.reports {
		if r.CommentID == id && !r.Resolved {
			at := now
			r.Resolved = true
			r.Resolution = models.ResolutionRemove
			r.ResolvedAt = &at
		}
	}
	return nil
}

func (s *MemStore) ListComments(ctx context.Context, listID uuid.UUID, status string, limit int) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.filterComments(func(c *models.Comment) bool {
		return c.ListID == listID && (status == "" || c.SuggestionStatus == status)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return limitSlice(out, limit), nil
}

func (s *MemStore) ListPendingSuggestions(ctx context.Context, limit int) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.filterComments(func(c *models.Comment) bool { return c.IsPending() })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return limitSlice(out, limit), nil
}

func (s *MemStore) ListFlaggedComments(ctx context.Context, limit int) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.filterComments(func(c *models.Comment) bool { return c.NeedsModeration() })
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReportCount != out[j].ReportCount {
			return out[i].ReportCount > out[j].ReportCount
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return limitSlice(out, limit), nil
}

func (s *MemStore) filterComments(match func(*models.Comment) bool) []models.Comment {
	var out []models.Comment
	for _, c := range s.comments {
		if match(c) {
			out = append(out, *c)
		}
	}
	return out
}

func limitSlice[T any](in []T, limit int) []T {
	if limit > 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}

// Votes

func (s *MemStore) CastVote(ctx context.Context, commentID, userID uuid.UUID, value int) (models.VoteTally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[commentID]
	if !ok {
		return models.VoteTally{}, models.ErrCommentNotFound
	}
	key := voteKey{userID: userID, commentID: commentID}
	prior := s.votes[key]
	if prior != value {
		switch prior {
		case models.VoteUp:
			c.HelpfulUp--
		case models.VoteDown:
			c.HelpfulDown--
		}
		switch value {
		case models.VoteUp:
			c.HelpfulUp++
		case models.VoteDown:
			c.HelpfulDown++
		}
		s.votes[key] = value
	}
	return models.VoteTally{HelpfulUp: c.HelpfulUp, HelpfulDown: c.HelpfulDown, UserVote: value}, nil
}

func (s *MemStore) GetUserVote(ctx context.Context, commentID, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.votes[voteKey{userID: userID, commentID: commentID}], nil
}

// Reports

func (s *MemStore) CreateReport(ctx context.Context, r *models.Report) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[r.CommentID]
	if !ok {
		return false, models.ErrCommentNotFound
	}
	for _, existing := range s.reports {
		if existing.CommentID == r.CommentID && existing.ReporterID == r.ReporterID && !existing.Resolved {
			*r = *existing
			return false, nil
		}
	}
	r.ID = uuid.New()
	r.CreatedAt = s.Now()
	cp := *r
	s.reports[r.ID] = &cp
	c.ReportCount++
	return true, nil
}

func (s *MemStore) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, models.ErrReportNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemStore) ResolveReport(ctx context.Context, id, resolverID uuid.UUID, resolution string) (*models.Report, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reports[id]
	if !ok {
		return nil, false, models.ErrReportNotFound
	}
	if r.Resolved {
		cp := *r
		return &cp, false, nil
	}
	now := s.Now()
	resolver := resolverID
	r.Resolved = true
	r.Resolution = resolution
	r.ResolvedBy = &resolver
	r.ResolvedAt = &now
	if c, ok := s.comments[r.CommentID]; ok && c.ReportCount > 0 {
		c.ReportCount--
	}
	cp := *r
	return &cp, true, nil
}

func (s *MemStore) ListOpenReports(ctx context.Context, limit int) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Report
	for _, r := range s.reports {
		if !r.Resolved {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return limitSlice(out, limit), nil
}

// Penalties

func (s *MemStore) InsertPenalty(ctx context.Context, p *models.PenaltyRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := penaltyKey{commentID: p.RelatedCommentID, action: p.Action}
	if i, ok := s.penaltyIndex[key]; ok {
		*p = s.penalties[i]
		return false, nil
	}
	p.ID = uuid.New()
	p.CreatedAt = s.Now()
	s.penaltyIndex[key] = len(s.penalties)
	s.penalties = append(s.penalties, *p)
	return true, nil
}

func (s *MemStore) ListPenalties(ctx context.Context, userID uuid.UUID) ([]models.PenaltyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PenaltyRecord
	for i := len(s.penalties) - 1; i >= 0; i-- {
		if s.penalties[i].TargetUserID == userID {
			out = append(out, s.penalties[i])
		}
	}
	return out, nil
}

func (s *MemStore) GetTrustScore(ctx context.Context, userID uuid.UUID, floor int) (models.TrustScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := models.TrustScore{UserID: userID}
	for _, p := range s.penalties {
		if p.TargetUserID == userID {
			ts.Score += p.Score
			ts.Penalties++
		}
	}
	if ts.Score < floor {
		ts.Score = floor
	}
	return ts, nil
}

// Settings

func (s *MemStore) GetRateLimits(ctx context.Context) (models.RateLimits, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limits, nil
}

func (s *MemStore) SetRateLimits(ctx context.Context, limits models.RateLimits) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits = limits
	return nil
}

func (s *MemStore) GetBadWords(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.badWords))
	for w := range s.badWords {
		out = append(out, w)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemStore) AddBadWord(ctx context.Context, word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return models.ErrInvalidBadWord
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.badWords[word] = struct{}{}
	return nil
}

func (s *MemStore) RemoveBadWord(ctx context.Context, word string) (bool, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.badWords[word]; !ok {
		return false, nil
	}
	delete(s.badWords, word)
	return true, nil
}

// Notifications

func (s *MemStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = s.Now()
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *MemStore) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for i := len(s.notifications) - 1; i >= 0; i-- {
		n := s.notifications[i]
		if n.UserID == userID && (!unreadOnly || n.ReadAt == nil) {
			out = append(out, n)
		}
	}
	return limitSlice(out, limit), nil
}

func (s *MemStore) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		n := &s.notifications[i]
		if n.ID == id && n.UserID == userID {
			if n.ReadAt == nil {
				now := s.Now()
				n.ReadAt = &now
			}
			return nil
		}
	}
	return models.ErrNotificationNotFound
}

// Maintenance

// Ping always succeeds.
func (s *MemStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemStore) GetModerationStats(ctx context.Context) (db.ModerationStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stats db.ModerationStats
	for _, c := range s.comments {
		if c.IsPending() {
			stats.PendingSuggestions++
		}
		if c.NeedsModeration() {
			stats.FlaggedComments++
		}
	}
	for _, r := range s.reports {
		if !r.Resolved {
			stats.OpenReports++
		}
	}
	return stats, nil
}

func (s *MemStore) ReconcileCounters(ctx context.Context) (db.ReconcileResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result db.ReconcileResult
	for id, c := range s.comments {
		var up, down, open int
		for k, v := range s.votes {
			if k.commentID != id {
				continue
			}
			if v == models.VoteUp {
				up++
			} else if v == models.VoteDown {
				down++
			}
		}
		for _, r := range s.reports {
			if r.CommentID == id && !r.Resolved {
				open++
			}
		}
		if c.HelpfulUp != up || c.HelpfulDown != down {
			c.HelpfulUp, c.HelpfulDown = up, down
			result.VoteCounters++
		}
		if c.ReportCount != open {
			c.ReportCount = open
			result.ReportCounters++
		}
	}
	return result, nil
}
