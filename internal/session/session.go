package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gugverein/portal/internal/api"
	"github.com/gugverein/portal/internal/credential"
	"github.com/gugverein/portal/internal/model"
	"github.com/gugverein/portal/internal/store"
)

// Store owns the bearer credential and the authenticated member's
// profile. The credential lives in the system keyring, the profile in
// the local cache; both are cleared together on logout or when the
// gateway reports an authorization failure.
//
// Store implements api.TokenSource.
type Store struct {
	mu      sync.Mutex
	token   string
	profile *model.Profile

	local  *store.SQLiteStore
	client *api.Client
}

// New creates a session store backed by the given local store.
func New(local *store.SQLiteStore) *Store {
	return &Store{local: local}
}

// Bind wires the store to the gateway client and subscribes it to the
// invalidation broadcaster. Must be called once before Login/Restore.
func (s *Store) Bind(client *api.Client, unauthorized *api.Broadcaster) {
	s.client = client
	unauthorized.Subscribe(s.Invalidate)
}

// Token returns the current bearer credential, or "" when signed out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Profile returns the current member profile, or nil when signed out.
func (s *Store) Profile() *model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Authenticated reports whether a credential is present.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Restore loads the persisted credential and cached profile without a
// network round trip. A token whose JWT expiry has already passed is
// discarded instead of restored. Returns the restored profile, or nil
// when there is no usable session.
func (s *Store) Restore(ctx context.Context) *model.Profile {
	token, err := credential.Get(credential.TokenKey)
	if err != nil {
		if !errors.Is(err, credential.ErrNotFound) {
			log.Printf("session: reading stored credential: %v", err)
		}
		return nil
	}
	if token == "" {
		return nil
	}

	if expired(token) {
		_ = credential.Delete(credential.TokenKey)
		_ = s.local.ClearProfile(ctx)
		return nil
	}

	profile, err := s.local.GetProfile(ctx)
	if err != nil {
		log.Printf("session: reading cached profile: %v", err)
	}

	s.mu.Lock()
	s.token = token
	s.profile = profile
	s.mu.Unlock()

	return profile
}

// Login authenticates against the portal, persists the returned
// credential, then fetches and caches the member profile.
func (s *Store) Login(ctx context.Context, username, password string) (*model.Profile, error) {
	token, err := s.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := credential.Set(credential.TokenKey, token); err != nil {
		log.Printf("session: persisting credential: %v", err)
	}

	profile, err := s.client.Me(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()

	if err := s.local.SaveProfile(ctx, profile); err != nil {
		log.Printf("session: caching profile: %v", err)
	}

	return profile, nil
}

// RefreshProfile re-fetches the member profile with the current
// credential and updates the cache.
func (s *Store) RefreshProfile(ctx context.Context) (*model.Profile, error) {
	profile, err := s.client.Me(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()

	if err := s.local.SaveProfile(ctx, profile); err != nil {
		log.Printf("session: caching profile: %v", err)
	}
	return profile, nil
}

// Invalidate clears the credential and profile. It only mutates local
// state and issues no requests, so it is safe to call from within an
// in-flight gateway error handler. Idempotent.
func (s *Store) Invalidate() {
	s.mu.Lock()
	alreadyClear := s.token == "" && s.profile == nil
	s.token = ""
	s.profile = nil
	s.mu.Unlock()

	if alreadyClear {
		return
	}

	if err := credential.Delete(credential.TokenKey); err != nil {
		log.Printf("session: deleting stored credential: %v", err)
	}
	if err := s.local.ClearProfile(context.Background()); err != nil {
		log.Printf("session: clearing profile cache: %v", err)
	}
}

// expired reports whether the JWT's exp claim has passed. Tokens that
// cannot be parsed or carry no expiry are kept; the server remains the
// authority and will reject them with a 401 if they are stale.
func expired(token string) bool {
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
