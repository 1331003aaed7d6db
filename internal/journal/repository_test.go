package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/starford/memos/internal/apperr"
	"github.com/starford/memos/internal/models"
	"github.com/starford/memos/internal/storage"
	"github.com/starford/memos/internal/tagconfig"
)

var testLogger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func testRepo(t *testing.T, opts Options) (*Repository, *storage.FS) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return NewRepository(store, opts, testLogger), store
}

func readFile(t *testing.T, store storage.Provider, p string) string {
	t.Helper()
	data, err := store.Read(p)
	if err != nil {
		t.Fatalf("Read %s: %v", p, err)
	}
	return string(data)
}

var jan5 = time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)

func TestPathFor(t *testing.T) {
	r, _ := testRepo(t, Options{})
	if got := r.PathFor(jan5); got != "journals/2024-01-05.md" {
		t.Errorf("PathFor = %q", got)
	}

	r, _ = testRepo(t, Options{Folder: "daily/", DateFormat: "YYYY_MM_DD"})
	if got := r.PathFor(jan5); got != "daily/2024_01_05.md" {
		t.Errorf("PathFor = %q", got)
	}
}

func TestSave_CreatesFolderAndFile(t *testing.T) {
	r, store := testRepo(t, Options{DefaultTags: []string{"memo"}})

	m, err := r.Save(context.Background(), "  first thought  ", []string{"idea"}, jan5)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if m.LineNumber != -1 {
		t.Errorf("line = %d, want -1", m.LineNumber)
	}
	if !reflect.DeepEqual(m.Tags, []string{"memo", "idea"}) {
		t.Errorf("tags = %v, default tags must come first", m.Tags)
	}
	if m.TimeString != "08:00" || m.DateString != "2024-01-05" || m.Content != "first thought" {
		t.Errorf("memo = %+v", m)
	}
	if got := readFile(t, store, "journals/2024-01-05.md"); got != "- 08:00 #memo #idea first thought\n" {
		t.Errorf("file = %q", got)
	}
}

func TestSave_AppendsWithSingleNewline(t *testing.T) {
	r, store := testRepo(t, Options{})
	_ = store.Write("journals/2024-01-05.md", []byte("# Friday\nprose line\n\n\n"))

	if _, err := r.Save(context.Background(), "later", nil, jan5.Add(90*time.Minute)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := "# Friday\nprose line\n- 09:30 later\n"
	if got := readFile(t, store, "journals/2024-01-05.md"); got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestSave_ReplacesEmptyBulletPlaceholder(t *testing.T) {
	r, store := testRepo(t, Options{})
	_ = store.Write("journals/2024-01-05.md", []byte("- 07:00 early\n-\n"))

	if _, err := r.Save(context.Background(), "next", nil, jan5); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := readFile(t, store, "journals/2024-01-05.md"); got != "- 07:00 early\n- 08:00 next\n" {
		t.Errorf("file = %q", got)
	}
}

func TestSave_BlankFile(t *testing.T) {
	r, store := testRepo(t, Options{})
	_ = store.Write("journals/2024-01-05.md", []byte("  \n"))

	if _, err := r.Save(context.Background(), "only", nil, jan5); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := readFile(t, store, "journals/2024-01-05.md"); got != "- 08:00 only\n" {
		t.Errorf("file = %q", got)
	}
}

func TestSave_EmptyContent(t *testing.T) {
	r, _ := testRepo(t, Options{})
	_, err := r.Save(context.Background(), "   ", nil, jan5)
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

// failingStore fails every write after delegating reads.
type failingStore struct {
	storage.Provider
}

func (failingStore) Write(string, []byte) error  { return fmt.Errorf("disk full") }
func (failingStore) Create(string, []byte) error { return fmt.Errorf("disk full") }

func TestSave_StorageFailure(t *testing.T) {
	_, store := testRepo(t, Options{})
	r := NewRepository(failingStore{store}, Options{Location: time.UTC}, testLogger)

	_, err := r.Save(context.Background(), "lost", nil, jan5)
	if !errors.Is(err, apperr.ErrStorage) {
		t.Fatalf("err = %v, want ErrStorage", err)
	}
	if ok, _ := store.Exists("journals/2024-01-05.md"); ok {
		t.Error("no file should have been written")
	}
}

func parsedMemos(t *testing.T, r *Repository) []models.Memo {
	t.Helper()
	files, err := r.ParseAll(context.Background())
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}
	var out []models.Memo
	for _, f := range files {
		out = append(out, f.Memos...)
	}
	return out
}

func TestUpdate_PreservesTime(t *testing.T) {
	r, store := testRepo(t, Options{})
	_ = store.Write("journals/2024-01-05.md", []byte("intro\n- 08:00 #old text\noutro\n"))

	memos := parsedMemos(t, r)
	if len(memos) != 1 {
		t.Fatalf("len = %d", len(memos))
	}
	updated, err := r.Update(context.Background(), memos[0], "new text", []string{"new"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != memos[0].ID || updated.LineNumber != 2 || updated.TimeString != "08:00" ||
		updated.Content != "new text" || !reflect.DeepEqual(updated.Tags, []string{"new"}) {
		t.Errorf("updated = %+v", updated)
	}
	want := "intro\n- 08:00 #new new text\noutro\n"
	if got := readFile(t, store, "journals/2024-01-05.md"); got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestUpdate_AfterSave(t *testing.T) {
	r, store := testRepo(t, Options{})
	ctx := context.Background()
	_ = store.Write("journals/2024-01-05.md", []byte("- 08:00 same\n"))

	m, err := r.Save(ctx, "same", nil, jan5)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := r.Update(ctx, m, "changed", nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	// The freshly appended line is the one edited, not the older twin.
	if got := readFile(t, store, "journals/2024-01-05.md"); got != "- 08:00 same\n- 08:00 changed\n" {
		t.Errorf("file = %q", got)
	}
}

func TestUpdate_NoMatch(t *testing.T) {
	r, store := testRepo(t, Options{})
	_ = store.Write("journals/2024-01-05.md", []byte("- 08:00 text\n"))
	m := models.Memo{FilePath: "journals/2024-01-05.md", LineNumber: 1, RawText: "- 08:00 gone", TimeString: "08:00"}

	if _, err := r.Update(context.Background(), m, "x", nil); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	m.FilePath = "journals/2023-01-01.md"
	if err := r.Delete(context.Background(), m); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing file err = %v, want ErrNotFound", err)
	}
}

func TestDelete_ByLineNumber(t *testing.T) {
	r, store := testRepo(t, Options{})
	_ = store.Write("journals/2024-01-05.md", []byte("- 08:00 a\n- 09:00 b\n- 10:00 c\n"))

	memos := parsedMemos(t, r)
	if err := r.Delete(context.Background(), memos[1]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := readFile(t, store, "journals/2024-01-05.md"); got != "- 08:00 a\n- 10:00 c\n" {
		t.Errorf("file = %q", got)
	}
}

func TestDelete_FallsBackToText(t *testing.T) {
	r, store := testRepo(t, Options{})
	_ = store.Write("journals/2024-01-05.md", []byte("- 08:00 a\n- 09:00 b\n"))
	memos := parsedMemos(t, r)
	target := memos[1] // "- 09:00 b" at line 2

	// External edit shifts every line down.
	_ = store.Write("journals/2024-01-05.md", []byte("new heading\n\n- 08:00 a\n- 09:00 b\n"))

	if err := r.Delete(context.Background(), target); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := readFile(t, store, "journals/2024-01-05.md"); got != "new heading\n\n- 08:00 a\n" {
		t.Errorf("file = %q", got)
	}
}

func TestDelete_DuplicateLinesPicksNearest(t *testing.T) {
	r, store := testRepo(t, Options{})
	_ = store.Write("journals/2024-01-05.md", []byte("- 08:00 dup\nx\nx\nx\n- 08:00 dup\n"))
	memos := parsedMemos(t, r)
	target := memos[1] // line 5

	// One line inserted above the second twin: it moves to line 6.
	_ = store.Write("journals/2024-01-05.md", []byte("- 08:00 dup\nx\nx\nx\ninserted\n- 08:00 dup\n"))

	if err := r.Delete(context.Background(), target); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	want := "- 08:00 dup\nx\nx\nx\ninserted\n"
	if got := readFile(t, store, "journals/2024-01-05.md"); got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestParseAll(t *testing.T) {
	r, store := testRepo(t, Options{QuickTags: tagconfig.ParseQuickTags("cy+jf|记账")})
	_ = store.Write("journals/2024-01-05.md", []byte("- 09:15 #idea #work some text\n- #jf 房租 3000\n- #random skipped\nprose\n"))
	_ = store.Write("journals/2024_01_06.md", []byte("- 10:00 underscore\n"))
	_ = store.Write("journals/20240107.md", []byte("- 11:00 compact\n"))
	_ = store.Write("journals/notes.md", []byte("- 12:00 not a journal\n"))
	_ = store.Write("journals/archive/2024-01-08.md", []byte("- 13:00 nested\n"))

	files, err := r.ParseAll(context.Background())
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("files = %d, want 3", len(files))
	}

	dates := map[string]int{}
	for _, f := range files {
		dates[f.DateString] = len(f.Memos)
		for _, m := range f.Memos {
			if m.FilePath != f.Path || m.DateString != f.DateString {
				t.Errorf("provenance mismatch: %+v in %s", m, f.Path)
			}
		}
	}
	want := map[string]int{"2024-01-05": 2, "2024-01-06": 1, "2024-01-07": 1}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("dates = %v, want %v", dates, want)
	}
}

func TestParseAll_MissingFolder(t *testing.T) {
	r, _ := testRepo(t, Options{})
	files, err := r.ParseAll(context.Background())
	if err != nil || len(files) != 0 {
		t.Errorf("ParseAll = %v, %v; want empty", files, err)
	}
}

func TestParseAll_RoundTripsSavedMemo(t *testing.T) {
	r, _ := testRepo(t, Options{})
	saved, err := r.Save(context.Background(), "午餐10元", []string{"cy", "日常"}, jan5)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	memos := parsedMemos(t, r)
	if len(memos) != 1 {
		t.Fatalf("len = %d", len(memos))
	}
	got := memos[0]
	if got.RawText != saved.RawText || got.Content != saved.Content ||
		!reflect.DeepEqual(got.Tags, saved.Tags) || !got.Timestamp.Equal(saved.Timestamp) {
		t.Errorf("parsed %+v\nsaved  %+v", got, saved)
	}
	if !strings.HasSuffix(got.FilePath, "2024-01-05.md") || got.LineNumber != 1 {
		t.Errorf("provenance = %s:%d", got.FilePath, got.LineNumber)
	}
}

func TestSave_RejectsLineBreaks(t *testing.T) {
	r, store := testRepo(t, Options{})
	ctx := context.Background()

	for _, content := range []string{"lunch\n- 09:00 #cy injected 99", "a\rb"} {
		if _, err := r.Save(ctx, content, nil, jan5); !errors.Is(err, apperr.ErrInvalid) {
			t.Errorf("Save(%q) err = %v, want ErrInvalid", content, err)
		}
	}
	if _, err := r.Save(ctx, "ok", []string{"two\nlines"}, jan5); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("tag with newline err = %v, want ErrInvalid", err)
	}
	if exists, _ := store.Exists("journals/2024-01-05.md"); exists {
		t.Error("rejected memos must not touch the journal")
	}
}

func TestUpdate_RejectsLineBreaks(t *testing.T) {
	r, store := testRepo(t, Options{})
	_ = store.Write("journals/2024-01-05.md", []byte("- 08:00 text\n"))

	memos := parsedMemos(t, r)
	if _, err := r.Update(context.Background(), memos[0], "one\n- 09:00 two", nil); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
	if got := readFile(t, store, "journals/2024-01-05.md"); got != "- 08:00 text\n" {
		t.Errorf("file = %q, want unchanged", got)
	}
}

func TestSave_ReturnsDecodedRecord(t *testing.T) {
	r, _ := testRepo(t, Options{})

	saved, err := r.Save(context.Background(), "coffee #idea later", []string{"work"}, jan5)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Content != "coffee later" || !reflect.DeepEqual(saved.Tags, []string{"work", "idea"}) {
		t.Errorf("saved = %q %v, want inline tags moved out of content", saved.Content, saved.Tags)
	}

	memos := parsedMemos(t, r)
	if len(memos) != 1 {
		t.Fatalf("len = %d", len(memos))
	}
	got := memos[0]
	if got.Content != saved.Content || !reflect.DeepEqual(got.Tags, saved.Tags) ||
		got.TimeString != saved.TimeString || got.RawText != saved.RawText {
		t.Errorf("re-decoded %+v\nsaved      %+v", got, saved)
	}

	if err := r.Delete(context.Background(), saved); err != nil {
		t.Errorf("Delete(saved): %v", err)
	}
}

func TestUpdate_TagOnlyKeepsQuickTagKeyword(t *testing.T) {
	r, store := testRepo(t, Options{QuickTags: tagconfig.ParseQuickTags("cy+jf|记账")})
	_ = store.Write("journals/2024-01-05.md", []byte("- #cy lunch 28\n"))

	memos := parsedMemos(t, r)
	if len(memos) != 1 {
		t.Fatalf("len = %d", len(memos))
	}
	updated, err := r.Update(context.Background(), memos[0], "lunch 30", []string{"food"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := readFile(t, store, "journals/2024-01-05.md"); got != "- #cy #food lunch 30\n" {
		t.Errorf("file = %q", got)
	}
	if !reflect.DeepEqual(updated.Tags, []string{"cy", "food"}) {
		t.Errorf("tags = %v", updated.Tags)
	}
	if memos := parsedMemos(t, r); len(memos) != 1 || memos[0].Content != "lunch 30" {
		t.Errorf("memos after update = %+v", memos)
	}
}
