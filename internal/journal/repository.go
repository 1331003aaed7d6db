// Package journal maps memos onto daily Markdown journal files: one file per
// date, one memo per line.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/starford/memos/internal/apperr"
	"github.com/starford/memos/internal/models"
	"github.com/starford/memos/internal/parser"
	"github.com/starford/memos/internal/storage"
	"github.com/starford/memos/internal/tagconfig"
)

// Options configures a Repository.
type Options struct {
	// Folder is the journal folder relative to the store root.
	Folder string
	// DateFormat is the moment-style file name format, e.g. "YYYY-MM-DD".
	DateFormat  string
	DefaultTags []string
	QuickTags   []tagconfig.QuickTag
	// Location for timestamps; nil means time.Local.
	Location *time.Location
}

// FileMemos holds the memos decoded from one journal file, in line order.
type FileMemos struct {
	Path       string
	DateString string
	Memos      []models.Memo
}

// Repository owns all journal file I/O.
type Repository struct {
	store    storage.Provider
	opts     Options
	layout   string
	keywords map[string]struct{}
	logger   *slog.Logger
}

// NewRepository creates a repository over store.
func NewRepository(store storage.Provider, opts Options, logger *slog.Logger) *Repository {
	if opts.Folder == "" {
		opts.Folder = "journals"
	}
	opts.Folder = strings.Trim(path.Clean(opts.Folder), "/")
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		store:    store,
		opts:     opts,
		layout:   GoLayout(opts.DateFormat),
		keywords: tagconfig.KeywordSet(opts.QuickTags),
		logger:   logger,
	}
}

// Folder returns the journal folder relative to the store root.
func (r *Repository) Folder() string { return r.opts.Folder }

// Location returns the time zone used for memo timestamps.
func (r *Repository) Location() *time.Location { return r.opts.Location }

// IsJournalPath reports whether p names a journal file of this repository.
func (r *Repository) IsJournalPath(p string) bool {
	return IsJournalPath(r.opts.Folder, p)
}

// PathFor returns the journal file path for date.
func (r *Repository) PathFor(date time.Time) string {
	return path.Join(r.opts.Folder, date.In(r.opts.Location).Format(r.layout)+".md")
}

// Save appends a new memo to the journal file of now's date, creating the
// folder and file when needed. The returned memo has LineNumber -1.
func (r *Repository) Save(_ context.Context, content string, tags []string, now time.Time) (models.Memo, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Memo{}, fmt.Errorf("journal: empty content: %w", apperr.ErrInvalid)
	}

	now = now.In(r.opts.Location)
	timeString := now.Format("15:04")
	allTags := make([]string, 0, len(r.opts.DefaultTags)+len(tags))
	allTags = append(allTags, r.opts.DefaultTags...)
	allTags = append(allTags, tags...)
	if err := checkLine(content, allTags); err != nil {
		return models.Memo{}, err
	}

	line := parser.Encode(timeString, allTags, content)
	filePath := r.PathFor(now)
	memo, ok := r.decode(line, filePath, canonicalDate(now), -1)
	if !ok {
		return models.Memo{}, fmt.Errorf("journal: save %q: not a memo line: %w", line, apperr.ErrInvalid)
	}

	if err := r.appendLine(filePath, line); err != nil {
		r.logger.Error("journal: save failed",
			slog.String("path", filePath),
			slog.String("error", err.Error()))
		return models.Memo{}, fmt.Errorf("journal: save %s: %w: %w", filePath, apperr.ErrStorage, err)
	}

	r.logger.Debug("journal: memo saved", slog.String("path", filePath))
	return memo, nil
}

// checkLine rejects content and tags that would not survive as one memo line.
func checkLine(content string, tags []string) error {
	if strings.ContainsAny(content, "\r\n") {
		return fmt.Errorf("journal: content spans several lines: %w", apperr.ErrInvalid)
	}
	for _, t := range tags {
		if t == "" || strings.ContainsFunc(t, unicode.IsSpace) || strings.Contains(t, "#") {
			return fmt.Errorf("journal: malformed tag %q: %w", t, apperr.ErrInvalid)
		}
	}
	return nil
}

// decode parses line the way ParseAll would, so returned records always
// match what a later read produces.
func (r *Repository) decode(line, filePath, dateString string, lineNumber int) (models.Memo, bool) {
	return parser.Decode(line, parser.LineContext{
		FilePath:   filePath,
		LineNumber: lineNumber,
		DateString: dateString,
		Keywords:   r.keywords,
		Location:   r.opts.Location,
	})
}

func (r *Repository) appendLine(filePath, line string) error {
	exists, err := r.store.Exists(filePath)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.store.CreateFolder(r.opts.Folder); err != nil {
			return err
		}
		err := r.store.Create(filePath, []byte(line+"\n"))
		if !errors.Is(err, apperr.ErrAlreadyExists) {
			return err
		}
		// Created concurrently by another writer; fall through and append.
	}

	existing, err := r.store.Read(filePath)
	if err != nil {
		return err
	}
	return r.store.Write(filePath, []byte(appendContent(string(existing), line)))
}

// appendContent normalizes the end of existing to a single newline and adds
// line. A trailing empty "-" bullet placeholder is replaced by the new line.
func appendContent(existing, line string) string {
	body := strings.TrimRight(existing, " \t\r\n")
	if last := strings.LastIndex(body, "\n"); strings.TrimSpace(body[last+1:]) == "-" {
		body = strings.TrimRight(body[:last+1], " \t\r\n")
	}
	if body == "" {
		return line + "\n"
	}
	return body + "\n" + line + "\n"
}

// Update rewrites memo's line with new content and tags and returns the
// rewritten record. The original time is kept. A tag-only memo keeps its first
// quick-tag keyword when the new tags drop every keyword, since the line would
// otherwise stop being a memo.
func (r *Repository) Update(_ context.Context, memo models.Memo, content string, tags []string) (models.Memo, error) {
	content = strings.TrimSpace(content)
	if err := checkLine(content, tags); err != nil {
		return models.Memo{}, err
	}

	dateString := memo.DateString
	if dateString == "" {
		dateString, _ = ParseDateFromFileName(path.Base(memo.FilePath))
	}

	newLine := parser.Encode(memo.TimeString, tags, content)
	updated, ok := r.decode(newLine, memo.FilePath, dateString, -1)
	if !ok && memo.TimeString == "" {
		if kw, found := r.firstKeyword(memo.Tags); found {
			newLine = parser.Encode("", append([]string{kw}, tags...), content)
			updated, ok = r.decode(newLine, memo.FilePath, dateString, -1)
		}
	}
	if !ok {
		return models.Memo{}, fmt.Errorf("journal: update %s: %q is not a memo line: %w", memo.FilePath, newLine, apperr.ErrInvalid)
	}

	i, err := r.rewrite(memo, "update", func(lines []string, i int) []string {
		lines[i] = newLine
		return lines
	})
	if err != nil {
		return models.Memo{}, err
	}
	updated.ID = memo.ID
	updated.LineNumber = i + 1
	return updated, nil
}

func (r *Repository) firstKeyword(tags []string) (string, bool) {
	for _, t := range tags {
		if _, ok := r.keywords[t]; ok {
			return t, true
		}
	}
	return "", false
}

// Delete removes memo's line from its journal file.
func (r *Repository) Delete(_ context.Context, memo models.Memo) error {
	_, err := r.rewrite(memo, "delete", func(lines []string, i int) []string {
		return append(lines[:i], lines[i+1:]...)
	})
	return err
}

// rewrite applies edit to the located line of memo and returns its index.
func (r *Repository) rewrite(memo models.Memo, op string, edit func(lines []string, i int) []string) (int, error) {
	data, err := r.store.Read(memo.FilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return -1, fmt.Errorf("journal: %s %s: %w", op, memo.FilePath, apperr.ErrNotFound)
		}
		r.logger.Error("journal: "+op+" read failed",
			slog.String("path", memo.FilePath),
			slog.String("error", err.Error()))
		return -1, fmt.Errorf("journal: %s %s: %w: %w", op, memo.FilePath, apperr.ErrStorage, err)
	}

	lines := strings.Split(string(data), "\n")
	i := locateLine(lines, memo)
	if i < 0 {
		return -1, fmt.Errorf("journal: %s %s: memo line: %w", op, memo.FilePath, apperr.ErrNotFound)
	}

	lines = edit(lines, i)
	if err := r.store.Write(memo.FilePath, []byte(strings.Join(lines, "\n"))); err != nil {
		r.logger.Error("journal: "+op+" write failed",
			slog.String("path", memo.FilePath),
			slog.String("error", err.Error()))
		return -1, fmt.Errorf("journal: %s %s: %w: %w", op, memo.FilePath, apperr.ErrStorage, err)
	}
	r.logger.Debug("journal: memo "+op+"d",
		slog.String("path", memo.FilePath),
		slog.Int("line", i+1))
	return i, nil
}

// locateLine finds the index of memo's line. The recorded line number is
// tried first; when the file has shifted, the identical line nearest to the
// recorded position wins, and a memo not yet located on disk (-1) takes the
// last identical line.
func locateLine(lines []string, memo models.Memo) int {
	want := strings.TrimSpace(memo.RawText)
	if n := memo.LineNumber; n >= 1 && n <= len(lines) && strings.TrimSpace(lines[n-1]) == want {
		return n - 1
	}

	best, bestDist := -1, 0
	for i, l := range lines {
		if strings.TrimSpace(l) != want {
			continue
		}
		if memo.LineNumber < 1 {
			best = i
			continue
		}
		dist := i + 1 - memo.LineNumber
		if dist < 0 {
			dist = -dist
		}
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

// ParseAll decodes every journal file directly inside the folder. Files whose
// name is not a date are skipped, as are files that cannot be read.
func (r *Repository) ParseAll(ctx context.Context) ([]FileMemos, error) {
	entries, err := r.store.List(r.opts.Folder)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		r.logger.Error("journal: list failed",
			slog.String("folder", r.opts.Folder),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("journal: list %s: %w: %w", r.opts.Folder, apperr.ErrStorage, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	var out []FileMemos
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir {
			continue
		}
		dateString, ok := ParseDateFromFileName(e.Name)
		if !ok {
			continue
		}
		data, err := r.store.Read(e.Path)
		if err != nil {
			r.logger.Warn("journal: read failed",
				slog.String("path", e.Path),
				slog.String("error", err.Error()))
			continue
		}
		out = append(out, FileMemos{
			Path:       e.Path,
			DateString: dateString,
			Memos: parser.DecodeDocument(data, parser.LineContext{
				FilePath:   e.Path,
				DateString: dateString,
				Keywords:   r.keywords,
				Location:   r.opts.Location,
			}),
		})
	}
	return out, nil
}
