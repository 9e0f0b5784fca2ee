package services

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/wadjakorntonsri/ctrltab/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9]+`)

func newTestRepo(t *testing.T) *sqlite.SQLiteRepository {
	t.Helper()
	dsn := "file:" + unsafeName.ReplaceAllString(t.Name(), "_") + "?mode=memory&cache=shared"
	repo, err := sqlite.NewSQLiteRepository(dsn)
	if err != nil {
		t.Fatalf("Failed to init db: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedUser(t *testing.T, repo *sqlite.SQLiteRepository, username string, isAdmin bool) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, PasswordHash: "x", IsAdmin: isAdmin, CreatedAt: time.Now()}
	if err := repo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

// stubResolver resolves every url to "icon:<url>" and records the lookups.
type stubResolver struct {
	mu    sync.Mutex
	calls []string
}

func (s *stubResolver) Resolve(_ context.Context, siteURL, explicit string) *string {
	if explicit != "" {
		return &explicit
	}
	s.mu.Lock()
	s.calls = append(s.calls, siteURL)
	s.mu.Unlock()
	ref := "icon:" + siteURL
	return &ref
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }
