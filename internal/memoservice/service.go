// Package memoservice coordinates the journal repository, the query index
// and the classification engine behind one API used by every adapter.
package memoservice

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/starford/memos/internal/apperr"
	"github.com/starford/memos/internal/classify"
	"github.com/starford/memos/internal/index"
	"github.com/starford/memos/internal/journal"
	"github.com/starford/memos/internal/models"
	"github.com/starford/memos/internal/tagconfig"
)

// Event kinds passed to Publisher.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Publisher receives memo mutations, e.g. to push them to SSE clients.
type Publisher interface {
	PublishMemoEvent(kind string, memo models.Memo)
}

// DefaultPageSize is used when neither the caller nor WithPageSize sets one.
const DefaultPageSize = 50

// CreateInput describes a new memo.
type CreateInput struct {
	Content string
	Tags    []string
	// Group names an active quick-tag group by keyword or label.
	Group string
	// AutoTag enables keyword classification of Content.
	AutoTag bool
}

// Filter selects memos for List. Tags takes precedence over Tag, and Tag over
// Group; Query narrows any of them.
type Filter struct {
	Tag    string
	Tags   []string
	Group  string
	Query  string
	Limit  int
	Offset int
}

// Page is one page of a List result.
type Page struct {
	Items  []models.Memo `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the publisher notified after successful writes.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.pub = p }
}

// WithPageSize sets the default List page size.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithClock overrides time.Now for new memos.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service is the memo API shared by the HTTP, MCP and CLI surfaces.
type Service struct {
	repo     *journal.Repository
	idx      index.MemoIndex
	engine   *classify.Engine
	pub      Publisher
	pageSize int
	now      func() time.Time
	logger   *slog.Logger
}

// NewService creates a new memo service.
func NewService(repo *journal.Repository, idx index.MemoIndex, engine *classify.Engine, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		idx:      idx,
		engine:   engine,
		pageSize: DefaultPageSize,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create saves a new memo to today's journal. Classified tags follow the
// caller's tags and never repeat them.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.Memo, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return models.Memo{}, fmt.Errorf("memoservice: content is required: %w", apperr.ErrInvalid)
	}
	group, err := s.group(in.Group)
	if err != nil {
		return models.Memo{}, err
	}

	tags := normalizeTags(in.Tags)
	var auto []string
	if in.AutoTag {
		auto = s.engine.AutoTags(content, group)
	} else if kw, ok := s.engine.GroupKeyword(content, group, nil); ok {
		auto = []string{kw}
	}
	for _, t := range auto {
		if !slices.Contains(tags, t) {
			tags = append(tags, t)
		}
	}

	memo, err := s.repo.Save(ctx, content, tags, s.now())
	s.idx.Invalidate()
	if err != nil {
		return models.Memo{}, err
	}
	s.publish(EventCreated, memo)
	return memo, nil
}

// Update replaces the content and tags of the memo with id.
func (s *Service) Update(ctx context.Context, id, content string, tags []string) (models.Memo, error) {
	memo, err := s.idx.Get(ctx, id)
	if err != nil {
		return models.Memo{}, err
	}
	return s.UpdateMemo(ctx, memo, content, tags)
}

// UpdateMemo replaces the content and tags of memo, keeping its time.
func (s *Service) UpdateMemo(ctx context.Context, memo models.Memo, content string, tags []string) (models.Memo, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Memo{}, fmt.Errorf("memoservice: content is required: %w", apperr.ErrInvalid)
	}
	tags = normalizeTags(tags)

	updated, err := s.repo.Update(ctx, memo, content, tags)
	s.idx.Invalidate()
	if err != nil {
		return models.Memo{}, err
	}
	s.publish(EventUpdated, updated)
	return updated, nil
}

// Delete removes the memo with id.
func (s *Service) Delete(ctx context.Context, id string) error {
	memo, err := s.idx.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.DeleteMemo(ctx, memo)
}

// DeleteMemo removes memo's line from its journal file.
func (s *Service) DeleteMemo(ctx context.Context, memo models.Memo) error {
	err := s.repo.Delete(ctx, memo)
	s.idx.Invalidate()
	if err != nil {
		return err
	}
	s.publish(EventDeleted, memo)
	return nil
}

// List returns one page of the memos selected by f, newest first.
func (s *Service) List(ctx context.Context, f Filter) (Page, error) {
	var (
		memos []models.Memo
		err   error
	)
	switch {
	case len(f.Tags) > 0:
		memos, err = s.idx.ByTags(ctx, normalizeTags(f.Tags))
	case f.Tag != "":
		memos, err = s.idx.ByTag(ctx, strings.TrimPrefix(f.Tag, "#"))
	case f.Group != "":
		group, gerr := s.group(f.Group)
		if gerr != nil {
			return Page{}, gerr
		}
		memos, err = s.idx.ByTags(ctx, group.Keywords)
	default:
		memos, err = s.idx.All(ctx)
	}
	if err != nil {
		return Page{}, err
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		memos = slices.DeleteFunc(memos, func(m models.Memo) bool { return !index.Matches(m, q) })
	}

	limit, offset := f.Limit, f.Offset
	if limit <= 0 {
		limit = s.pageSize
	}
	if offset < 0 {
		offset = 0
	}
	total := len(memos)
	start := min(offset, total)
	end := min(start+limit, total)
	return Page{
		Items:  memos[start:end],
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// Stats returns journal statistics.
func (s *Service) Stats(ctx context.Context) (index.Stats, error) {
	return s.idx.Stats(ctx)
}

// Tags returns every distinct tag, sorted.
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	return s.idx.Tags(ctx)
}

// ByDate returns memos grouped by journal date, newest first.
func (s *Service) ByDate(ctx context.Context) ([]index.DateGroup, error) {
	return s.idx.ByDate(ctx)
}

// QuickTags returns the configured quick-tag groups.
func (s *Service) QuickTags() []tagconfig.QuickTag {
	return nonNilSlice(s.engine.Groups)
}

// Classify previews the tags Create would add for text with AutoTag set.
func (s *Service) Classify(text, groupName string) ([]string, error) {
	group, err := s.group(groupName)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(s.engine.AutoTags(strings.TrimSpace(text), group)), nil
}

func (s *Service) group(name string) (*tagconfig.QuickTag, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	g, ok := s.engine.GroupFor(name)
	if !ok {
		return nil, fmt.Errorf("memoservice: unknown quick-tag group %q: %w", name, apperr.ErrInvalid)
	}
	return g, nil
}

func (s *Service) publish(kind string, memo models.Memo) {
	s.logger.Debug("memoservice: memo "+kind,
		slog.String("path", memo.FilePath),
		slog.String("id", memo.ID))
	if s.pub != nil {
		s.pub.PublishMemoEvent(kind, memo)
	}
}

// normalizeTags strips leading "#" and drops blanks and repeats.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		if t == "" || strings.ContainsFunc(t, unicode.IsSpace) || strings.Contains(t, "#") || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
