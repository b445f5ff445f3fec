// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"eduautismo/cli/internal/broadcast"
	"eduautismo/cli/internal/keychain"
)

// Storage item names.
const (
	KeyAccessToken = "access_token"
	KeyUser        = "user"
)

// Storage is the durable key/value layer under the token store.
// *keychain.Manager implements it.
type Storage interface {
	Set(name string, value []byte) error
	Get(name string) ([]byte, error)
	Delete(name string) error
}

// storedProfile is the JSON kept under KeyUser. TokenSum binds the profile
// to the token written with it, so a reader in another process that runs
// between the two writes sees a mismatch instead of a foreign pair.
type storedProfile struct {
	Profile
	TokenSum string `json:"token_sha256"`
}

func tokenSum(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// TokenStore persists the session credential and its profile as a pair.
// A token is never readable without a matching profile.
type TokenStore struct {
	mu  sync.RWMutex
	kv  Storage
	pub broadcast.Publisher
	now func() time.Time
	log *slog.Logger
}

// StoreOption configures a TokenStore.
type StoreOption func(*TokenStore)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) StoreOption {
	return func(s *TokenStore) { s.now = now }
}

// WithPublisher announces every write and clear.
func WithPublisher(p broadcast.Publisher) StoreOption {
	return func(s *TokenStore) { s.pub = p }
}

// WithStoreLogger sets the logger.
func WithStoreLogger(l *slog.Logger) StoreOption {
	return func(s *TokenStore) { s.log = l }
}

// NewTokenStore creates a store over kv.
func NewTokenStore(kv Storage, opts ...StoreOption) *TokenStore {
	s := &TokenStore{
		kv:  kv,
		now: time.Now,
		log: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Read returns the persisted token. ok is false when no complete session is stored.
func (s *TokenStore) Read() (token string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.load()
	return sess.Token, ok
}

// Profile returns the persisted profile. A corrupt value, or one that does
// not belong to the stored token, counts as absent.
func (s *TokenStore) Profile() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.load()
	return sess.User, ok
}

// Load returns token and profile together.
func (s *TokenStore) Load() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

func (s *TokenStore) load() (Session, bool) {
	b, err := s.kv.Get(KeyAccessToken)
	if err != nil {
		if !errors.Is(err, keychain.ErrNotFound) {
			s.log.Warn("reading stored token failed", "error", err)
		}
		return Session{}, false
	}
	token := string(b)
	sp, ok := s.profile()
	if !ok {
		s.log.Warn("stored token has no readable profile; treating session as absent")
		return Session{}, false
	}
	if sp.TokenSum != tokenSum(token) {
		// another process is halfway through a write or clear
		s.log.Debug("stored profile belongs to another token; treating session as absent")
		return Session{}, false
	}
	return Session{Token: token, TokenType: "bearer", User: sp.Profile}, true
}

func (s *TokenStore) profile() (storedProfile, bool) {
	b, err := s.kv.Get(KeyUser)
	if err != nil {
		return storedProfile{}, false
	}
	var sp storedProfile
	if err := json.Unmarshal(b, &sp); err != nil {
		s.log.Debug("stored profile is corrupt", "error", err)
		return storedProfile{}, false
	}
	return sp, true
}

// Write persists token and profile. The profile goes first and is restored
// to its previous value when the token write fails. Readers in other
// processes see no session until both items match.
func (s *TokenStore) Write(token string, p Profile) error {
	if token == "" {
		return errors.New("auth: empty token")
	}
	b, err := json.Marshal(storedProfile{Profile: p, TokenSum: tokenSum(token)})
	if err != nil {
		return err
	}

	s.mu.Lock()
	prev, prevErr := s.kv.Get(KeyUser)
	if err := s.kv.Set(KeyUser, b); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.kv.Set(KeyAccessToken, []byte(token)); err != nil {
		var rbErr error
		if prevErr == nil {
			rbErr = s.kv.Set(KeyUser, prev)
		} else {
			rbErr = s.kv.Delete(KeyUser)
		}
		if rbErr != nil {
			s.log.Error("rolling back profile failed", "error", rbErr)
		}
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.publish(broadcast.KindWritten)
	return nil
}

// Clear removes the token, then the profile. It is safe to call when empty.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	errTok := s.kv.Delete(KeyAccessToken)
	errUser := s.kv.Delete(KeyUser)
	s.mu.Unlock()

	if err := errors.Join(errTok, errUser); err != nil {
		return err
	}
	s.publish(broadcast.KindCleared)
	return nil
}

// IsExpired reports whether the stored token is expired. No token counts as expired.
func (s *TokenStore) IsExpired() bool {
	tok, ok := s.Read()
	if !ok {
		return true
	}
	return TokenExpired(tok, s.now())
}

// ExpiresAt returns the stored token's expiry claim, when it has one.
func (s *TokenStore) ExpiresAt() (time.Time, bool) {
	tok, ok := s.Read()
	if !ok {
		return time.Time{}, false
	}
	exp, ok, err := TokenExpiry(tok)
	if err != nil {
		return time.Time{}, false
	}
	return exp, ok
}

func (s *TokenStore) publish(kind broadcast.Kind) {
	if s.pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.pub.Publish(ctx, broadcast.Event{Kind: kind}); err != nil {
		s.log.Warn("publishing session change failed", "kind", kind, "error", err)
	}
}
