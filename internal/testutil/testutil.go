// Package testutil provides shared test helpers for setting up vaults and
// memo services.
package testutil

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/starford/memos/internal/classify"
	"github.com/starford/memos/internal/index"
	"github.com/starford/memos/internal/journal"
	"github.com/starford/memos/internal/memoservice"
	"github.com/starford/memos/internal/storage"
	"github.com/starford/memos/internal/tagconfig"
)

// Now is the fixed clock used by TestService.
var Now = time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)

// Logger only reports errors.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// TestService builds a memo service over a fresh vault with the default
// keyword tables, quick tags "记账+消费|记账,idea" and the clock fixed at Now.
func TestService(t *testing.T, opts ...memoservice.Option) (*memoservice.Service, storage.Provider) {
	t.Helper()
	_, store := TestVault(t)
	logger := Logger()

	groups := tagconfig.ParseQuickTags("记账+消费|记账,idea")
	repo := journal.NewRepository(store, journal.Options{
		Location:  time.UTC,
		QuickTags: groups,
	}, logger)
	idx := index.New(repo, logger, index.WithClock(func() time.Time { return Now }))
	engine := classify.New(
		tagconfig.ParseKeywordTable(classify.DefaultSmartKeywords),
		tagconfig.ParseKeywordTable(classify.DefaultHabitKeywords),
		groups,
	)

	base := []memoservice.Option{
		memoservice.WithClock(func() time.Time { return Now }),
		memoservice.WithLogger(logger),
	}
	return memoservice.NewService(repo, idx, engine, append(base, opts...)...), store
}
