package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gugverein/portal/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing store: %v", err)
		}
	})
	return s
}

func TestMigrationVersionRecordedByRunner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	if err := s.SetNumber(ctx, KeyLastSeenChat, 7); err != nil {
		t.Fatalf("SetNumber: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("closing store: %v", err)
	}

	// Reopening applies nothing: every version is on record.
	s, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer s.Close()

	var rows int
	if err := s.db.Get(&rows, "SELECT COUNT(*) FROM schema_version"); err != nil {
		t.Fatalf("reading schema_version: %v", err)
	}
	if rows != len(migrations) {
		t.Fatalf("schema_version rows = %d, want %d", rows, len(migrations))
	}
	if got := s.GetNumber(ctx, KeyLastSeenChat); got != 7 {
		t.Fatalf("watermark after reopen = %d, want 7", got)
	}
}

func TestGetNumberDefaultsToZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if got := s.GetNumber(ctx, KeyLastSeenChat); got != 0 {
		t.Fatalf("missing key = %d, want 0", got)
	}

	if err := s.SetString(ctx, KeyLastSeenChat, "not a number"); err != nil {
		t.Fatalf("seeding corrupt value: %v", err)
	}
	if got := s.GetNumber(ctx, KeyLastSeenChat); got != 0 {
		t.Fatalf("corrupt value = %d, want 0", got)
	}

	if err := s.SetNumber(ctx, KeyLastSeenChat, -3); err != nil {
		t.Fatalf("seeding negative value: %v", err)
	}
	if got := s.GetNumber(ctx, KeyLastSeenChat); got != 0 {
		t.Fatalf("negative value = %d, want 0", got)
	}
}

func TestNumberRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetNumber(ctx, KeyLastSeenPolls, 17); err != nil {
		t.Fatalf("SetNumber: %v", err)
	}
	if got := s.GetNumber(ctx, KeyLastSeenPolls); got != 17 {
		t.Fatalf("GetNumber = %d, want 17", got)
	}

	if err := s.SetNumber(ctx, KeyLastSeenPolls, 18); err != nil {
		t.Fatalf("SetNumber overwrite: %v", err)
	}
	if got := s.GetNumber(ctx, KeyLastSeenPolls); got != 18 {
		t.Fatalf("GetNumber after overwrite = %d, want 18", got)
	}
}

func TestStringDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if got := s.GetString(ctx, KeyTheme, "dark"); got != "dark" {
		t.Fatalf("missing key = %q, want default", got)
	}
	if err := s.SetString(ctx, KeyTheme, "light"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	if got := s.GetString(ctx, KeyTheme, "dark"); got != "light" {
		t.Fatalf("GetString = %q, want light", got)
	}
}

func TestPreferencesFallBackToDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got := s.GetPreferences(ctx)
	if got != model.DefaultPreferences() {
		t.Fatalf("missing blob = %+v, want defaults", got)
	}

	if err := s.SetString(ctx, KeyPreferences, "{broken"); err != nil {
		t.Fatalf("seeding corrupt blob: %v", err)
	}
	got = s.GetPreferences(ctx)
	if got != model.DefaultPreferences() {
		t.Fatalf("corrupt blob = %+v, want defaults", got)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	prefs := model.DefaultPreferences()
	prefs.Chat.Enabled = false
	prefs.Polls.PreviewEnabled = false

	if err := s.SetPreferences(ctx, prefs); err != nil {
		t.Fatalf("SetPreferences: %v", err)
	}
	if got := s.GetPreferences(ctx); got != prefs {
		t.Fatalf("GetPreferences = %+v, want %+v", got, prefs)
	}
}

func TestProfileCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.GetProfile(ctx)
	if err != nil {
		t.Fatalf("GetProfile on empty cache: %v", err)
	}
	if got != nil {
		t.Fatalf("empty cache returned %+v", got)
	}

	p := &model.Profile{
		ID:          7,
		Username:    "robin",
		DisplayName: "Robin",
		Email:       "robin@example.org",
		Roles:       []string{"member", "board"},
	}
	if err := s.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	got, err = s.GetProfile(ctx)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got == nil || got.ID != 7 || got.DisplayName != "Robin" || len(got.Roles) != 2 {
		t.Fatalf("GetProfile = %+v", got)
	}

	if err := s.ClearProfile(ctx); err != nil {
		t.Fatalf("ClearProfile: %v", err)
	}
	got, err = s.GetProfile(ctx)
	if err != nil {
		t.Fatalf("GetProfile after clear: %v", err)
	}
	if got != nil {
		t.Fatalf("cache not cleared, got %+v", got)
	}

	// Clearing twice must not fail.
	if err := s.ClearProfile(ctx); err != nil {
		t.Fatalf("second ClearProfile: %v", err)
	}
}

func TestReplacePollsSwapsCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := []model.Poll{
		{ID: 1, Question: "pizza or pasta?"},
		{ID: 2, Question: "next meetup date?"},
	}
	if err := s.ReplacePolls(ctx, first); err != nil {
		t.Fatalf("ReplacePolls: %v", err)
	}

	second := []model.Poll{
		{ID: 2, Question: "next meetup date?"},
		{ID: 3, Question: "new logo?"},
	}
	if err := s.ReplacePolls(ctx, second); err != nil {
		t.Fatalf("ReplacePolls swap: %v", err)
	}

	got, err := s.GetPolls(ctx)
	if err != nil {
		t.Fatalf("GetPolls: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("cached polls = %d, want 2", len(got))
	}
	// Newest first, and poll 1 replaced away.
	if got[0].ID != 3 || got[1].ID != 2 {
		t.Fatalf("poll order = [%d %d], want [3 2]", got[0].ID, got[1].ID)
	}
}

func TestGetPollsEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetPolls(context.Background())
	if err != nil {
		t.Fatalf("GetPolls: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("empty cache returned %d polls", len(got))
	}
}
