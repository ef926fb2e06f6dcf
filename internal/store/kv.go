package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gugverein/portal/internal/model"
)

// Persisted key names. Watermark keys are written only by the update
// watcher; the preference blob only by the settings view.
const (
	KeyLastSeenChat  = "last_seen_chat_id"
	KeyLastSeenPolls = "last_seen_poll_id"
	KeyPreferences   = "notification_prefs"
	KeyTheme         = "theme"
)

// GetNumber returns the integer stored under key. Missing, corrupted, or
// negative values all resolve to 0 so callers can treat the result as a
// valid watermark unconditionally.
func (s *SQLiteStore) GetNumber(ctx context.Context, key string) int64 {
	var raw string
	err := s.db.GetContext(ctx, &raw, "SELECT value FROM kv WHERE key = ?", key)
	if err != nil {
		return 0
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// SetNumber stores an integer under key.
func (s *SQLiteStore) SetNumber(ctx context.Context, key string, value int64) error {
	return s.setRaw(ctx, key, strconv.FormatInt(value, 10))
}

// GetString returns the string stored under key, or def when unset.
func (s *SQLiteStore) GetString(ctx context.Context, key, def string) string {
	var raw string
	err := s.db.GetContext(ctx, &raw, "SELECT value FROM kv WHERE key = ?", key)
	if err != nil {
		return def
	}
	return raw
}

// SetString stores a string under key.
func (s *SQLiteStore) SetString(ctx context.Context, key, value string) error {
	return s.setRaw(ctx, key, value)
}

// GetPreferences returns the persisted notification preferences. An
// absent or unparsable blob falls back to the all-enabled defaults.
func (s *SQLiteStore) GetPreferences(ctx context.Context) model.Preferences {
	var raw string
	err := s.db.GetContext(ctx, &raw, "SELECT value FROM kv WHERE key = ?", KeyPreferences)
	if err != nil {
		return model.DefaultPreferences()
	}

	var prefs model.Preferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return model.DefaultPreferences()
	}
	return prefs
}

// SetPreferences persists the notification preferences.
func (s *SQLiteStore) SetPreferences(ctx context.Context, prefs model.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshaling preferences: %w", err)
	}
	return s.setRaw(ctx, KeyPreferences, string(data))
}

// SaveProfile caches the authenticated member's profile locally so the
// UI can render identity before the first network round trip.
func (s *SQLiteStore) SaveProfile(ctx context.Context, p *model.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO profile_cache (id, data) VALUES (1, ?)`,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// GetProfile returns the cached profile, or nil when none is stored.
func (s *SQLiteStore) GetProfile(ctx context.Context) (*model.Profile, error) {
	var raw string
	err := s.db.GetContext(ctx, &raw, "SELECT data FROM profile_cache WHERE id = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading profile cache: %w", err)
	}

	var p model.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		// A corrupted cache is treated as absent.
		return nil, nil
	}
	return &p, nil
}

// ClearProfile removes the cached profile. Idempotent.
func (s *SQLiteStore) ClearProfile(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM profile_cache")
	if err != nil {
		return fmt.Errorf("clearing profile cache: %w", err)
	}
	return nil
}

// ReplacePolls swaps the cached poll list for the freshly fetched one.
// The watcher calls this on every successful non-empty poll fetch so
// poll views stay current even when no notification fires.
func (s *SQLiteStore) ReplacePolls(ctx context.Context, polls []model.Poll) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM poll_cache"); err != nil {
		return fmt.Errorf("clearing poll cache: %w", err)
	}

	for _, p := range polls {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshaling poll %d: %w", p.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO poll_cache (id, data) VALUES (?, ?)",
			p.ID, string(data),
		)
		if err != nil {
			return fmt.Errorf("caching poll %d: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// GetPolls returns the cached poll list, newest first.
func (s *SQLiteStore) GetPolls(ctx context.Context) ([]model.Poll, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT data FROM poll_cache ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("querying poll cache: %w", err)
	}
	defer rows.Close()

	var polls []model.Poll
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning poll cache row: %w", err)
		}
		var p model.Poll
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			continue
		}
		polls = append(polls, p)
	}

	return polls, rows.Err()
}

func (s *SQLiteStore) setRaw(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing kv %q: %w", key, err)
	}
	return nil
}
