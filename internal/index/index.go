// Package index serves memo queries from an in-memory cache of the journal
// folder, rebuilt on demand after every invalidation.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/starford/memos/internal/apperr"
	"github.com/starford/memos/internal/journal"
	"github.com/starford/memos/internal/models"
)

// Source is the journal data the index is built from.
type Source interface {
	ParseAll(ctx context.Context) ([]journal.FileMemos, error)
	IsJournalPath(p string) bool
	Location() *time.Location
}

// MemoIndex defines the query operations consumers depend on.
type MemoIndex interface {
	All(ctx context.Context) ([]models.Memo, error)
	ByTag(ctx context.Context, tag string) ([]models.Memo, error)
	ByTags(ctx context.Context, tags []string) ([]models.Memo, error)
	Search(ctx context.Context, query string) ([]models.Memo, error)
	Get(ctx context.Context, id string) (models.Memo, error)
	ByDate(ctx context.Context) ([]DateGroup, error)
	Tags(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (Stats, error)
	Invalidate()
	HandleChange(kind, path string) bool
}

// Verify *Index satisfies MemoIndex at compile time.
var _ MemoIndex = (*Index)(nil)

// DateGroup holds the memos of one journal date.
type DateGroup struct {
	Date  string        `json:"date"`
	Memos []models.Memo `json:"memos"`
}

// Stats summarizes the journal.
type Stats struct {
	Total    int `json:"total"`
	Tags     int `json:"tags"`
	Today    int `json:"today"`
	ThisWeek int `json:"this_week"`
}

// Option configures an Index.
type Option func(*Index)

// WithClock overrides time.Now for Stats.
func WithClock(now func() time.Time) Option {
	return func(ix *Index) { ix.now = now }
}

// Index is safe for concurrent use.
type Index struct {
	src    Source
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	cache cache
}

// New creates an index over src. The cache starts invalid.
func New(src Source, logger *slog.Logger, opts ...Option) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	ix := &Index{src: src, logger: logger, now: time.Now}
	for _, o := range opts {
		o(ix)
	}
	return ix
}

// load returns the valid cache, populating it first if needed. A failed
// parse leaves the cache invalid. Callers hold ix.mu.
func (ix *Index) load(ctx context.Context) (*cache, error) {
	if ix.cache.valid() {
		return &ix.cache, nil
	}
	files, err := ix.src.ParseAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("index: load: %w", err)
	}
	ix.cache.fill(files)
	ix.logger.Debug("index: cache rebuilt",
		slog.Int("files", len(files)),
		slog.Int("memos", len(ix.cache.flat)))
	return &ix.cache, nil
}

// filter returns copies of the cached memos accepted by keep, newest first.
func (ix *Index) filter(ctx context.Context, keep func(models.Memo) bool) ([]models.Memo, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	c, err := ix.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Memo, 0, len(c.flat))
	for _, m := range c.flat {
		if keep == nil || keep(m) {
			out = append(out, m.Clone())
		}
	}
	return out, nil
}

// All returns every memo sorted by timestamp descending.
func (ix *Index) All(ctx context.Context) ([]models.Memo, error) {
	return ix.filter(ctx, nil)
}

// ByTag returns the memos carrying tag.
func (ix *Index) ByTag(ctx context.Context, tag string) ([]models.Memo, error) {
	return ix.filter(ctx, func(m models.Memo) bool { return m.HasTag(tag) })
}

// ByTags returns the memos carrying any of tags. No tags yields no memos.
func (ix *Index) ByTags(ctx context.Context, tags []string) ([]models.Memo, error) {
	if len(tags) == 0 {
		return []models.Memo{}, nil
	}
	return ix.filter(ctx, func(m models.Memo) bool {
		for _, t := range tags {
			if m.HasTag(t) {
				return true
			}
		}
		return false
	})
}

// Search matches query case-insensitively against content and tags.
func (ix *Index) Search(ctx context.Context, query string) ([]models.Memo, error) {
	return ix.filter(ctx, func(m models.Memo) bool { return Matches(m, query) })
}

// Matches reports whether query occurs, ignoring case, in m's content or in
// any of its tags.
func Matches(m models.Memo, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(m.Content), q) {
		return true
	}
	for _, t := range m.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// Get returns the memo with id from the current cache generation.
func (ix *Index) Get(ctx context.Context, id string) (models.Memo, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	c, err := ix.load(ctx)
	if err != nil {
		return models.Memo{}, err
	}
	i, ok := c.byID[id]
	if !ok {
		return models.Memo{}, fmt.Errorf("index: memo %s: %w", id, apperr.ErrNotFound)
	}
	return c.flat[i].Clone(), nil
}

// ByDate groups memos by journal date, newest date first. Within a date the
// memos keep their line order.
func (ix *Index) ByDate(ctx context.Context) ([]DateGroup, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	c, err := ix.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]DateGroup, 0, len(c.byDate))
	for date, memos := range c.byDate {
		if len(memos) == 0 {
			continue
		}
		g := DateGroup{Date: date, Memos: make([]models.Memo, len(memos))}
		for i, m := range memos {
			g.Memos[i] = m.Clone()
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// Tags returns every distinct tag, sorted.
func (ix *Index) Tags(ctx context.Context) ([]string, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	c, err := ix.load(ctx)
	if err != nil {
		return nil, err
	}
	return distinctTags(c.flat), nil
}

// Stats counts all memos, distinct tags, memos dated today and memos from
// the last seven days.
func (ix *Index) Stats(ctx context.Context) (Stats, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	c, err := ix.load(ctx)
	if err != nil {
		return Stats{}, err
	}
	now := ix.now().In(ix.src.Location())
	today := now.Format(journal.CanonicalDateLayout)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	st := Stats{Total: len(c.flat), Tags: len(distinctTags(c.flat))}
	for _, m := range c.flat {
		if m.DateString == today {
			st.Today++
		}
		if !m.Timestamp.Before(weekAgo) {
			st.ThisWeek++
		}
	}
	return st, nil
}

// Invalidate drops the cache; the next query re-reads the journal folder.
func (ix *Index) Invalidate() {
	ix.mu.Lock()
	ix.cache.reset()
	ix.mu.Unlock()
}

// Valid reports whether the cache is populated.
func (ix *Index) Valid() bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.cache.valid()
}

// HandleChange invalidates the cache when path is a journal file and reports
// whether it did. kind is one of "created", "modified", "deleted".
func (ix *Index) HandleChange(kind, path string) bool {
	if !ix.src.IsJournalPath(path) {
		return false
	}
	ix.Invalidate()
	ix.logger.Debug("index: invalidated",
		slog.String("op", kind),
		slog.String("path", path))
	return true
}

func distinctTags(memos []models.Memo) []string {
	seen := make(map[string]struct{})
	for _, m := range memos {
		for _, t := range m.Tags {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
