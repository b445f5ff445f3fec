// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"log/slog"
	"sync"

	"eduautismo/cli/internal/backend"
	"eduautismo/cli/internal/broadcast"
	apperrors "eduautismo/cli/internal/errors"
)

// Phase is the position of the container in the session state machine.
type Phase int

const (
	PhaseAnonymous Phase = iota
	PhaseAuthenticating
	PhaseAuthenticated
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseAnonymous:
		return "anonymous"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is a view of the session state. State and listeners each get their
// own copy, so changing one never alters the container.
type Snapshot struct {
	Phase           Phase
	User            *Profile
	IsAuthenticated bool
	IsLoading       bool
	// Error is the user-facing message of the last failure, empty when none.
	Error     string
	ErrorKind apperrors.Kind
}

// clone gives the snapshot its own copy of the profile.
func (s Snapshot) clone() Snapshot {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func (s Snapshot) equal(o Snapshot) bool {
	if (s.User == nil) != (o.User == nil) || (s.User != nil && *s.User != *o.User) {
		return false
	}
	s.User, o.User = nil, nil
	return s == o
}

// Listener receives every new snapshot. Listeners run synchronously while the
// mutation that produced the snapshot is still in progress, so they must not
// call Login, Register, Logout or any other mutating method of the container.
type Listener func(Snapshot)

// Subscriber is the receive half of a broadcast.Broadcaster.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan broadcast.Event, error)
}

// Container is the in-memory projection of the stored session that the CLI
// observes. Mutations are serialized; every change is delivered to all
// listeners before the mutating call returns.
type Container struct {
	svc   *Service
	store *TokenStore
	log   *slog.Logger

	// op serializes mutations together with their notifications.
	op sync.Mutex

	mu      sync.RWMutex
	state   Snapshot
	gen     uint64
	cancel  context.CancelFunc
	subs    map[uint64]Listener
	nextSub uint64
}

// NewContainer builds a container whose initial state is read from the
// service's token store. An expired stored token is cleared.
func NewContainer(svc *Service) *Container {
	c := &Container{
		svc:   svc,
		store: svc.Store(),
		log:   svc.log,
		subs:  make(map[uint64]Listener),
	}
	c.state = c.derive()
	return c
}

// State returns the current snapshot. Changing it does not affect the container.
func (c *Container) State() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

// Subscribe registers l and returns a function that removes it.
func (c *Container) Subscribe(l Listener) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = l
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// Login authenticates and, unless superseded, commits the session.
func (c *Container) Login(ctx context.Context, email, password string) error {
	return c.run(ctx, apperrors.OpLogin, func(ctx context.Context) (Session, error) {
		return c.svc.Authenticate(ctx, email, password)
	})
}

// Register creates the account and, unless superseded, commits the session.
func (c *Container) Register(ctx context.Context, req backend.RegisterRequest) error {
	return c.run(ctx, apperrors.OpRegister, func(ctx context.Context) (Session, error) {
		return c.svc.Enroll(ctx, req)
	})
}

func (c *Container) run(ctx context.Context, op apperrors.Operation, fn func(context.Context) (Session, error)) error {
	c.op.Lock()
	gen, rctx := c.begin(ctx)
	c.op.Unlock()

	sess, err := fn(rctx)

	c.op.Lock()
	defer c.op.Unlock()
	if !c.finish(gen) {
		c.log.Debug("discarding superseded response", "op", op)
		return ErrSuperseded
	}
	if err == nil {
		err = c.svc.Commit(sess, op)
	}
	if apperrors.KindOf(err) == apperrors.Canceled {
		// the caller gave up; nothing went wrong with the session
		c.set(c.derive())
		return err
	}
	if err != nil {
		c.fail(err)
		return err
	}
	u := sess.User
	c.set(Snapshot{Phase: PhaseAuthenticated, User: &u, IsAuthenticated: true})
	return nil
}

// begin starts a new request generation, cancelling the one in flight.
func (c *Container) begin(ctx context.Context) (uint64, context.Context) {
	c.mu.Lock()
	c.gen++
	if c.cancel != nil {
		c.cancel()
	}
	rctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	gen := c.gen

	st := c.state
	st.Phase = PhaseAuthenticating
	st.IsLoading = true
	st.Error = ""
	st.ErrorKind = ""
	c.state = st
	c.mu.Unlock()

	c.notify(st)
	return gen, rctx
}

// finish reports whether gen is still current and releases its context.
func (c *Container) finish(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	return true
}

// supersede invalidates any request in flight.
func (c *Container) supersede() {
	c.mu.Lock()
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
}

func (c *Container) fail(err error) {
	st := c.State()
	st.Phase = PhaseError
	st.IsLoading = false
	st.Error = apperrors.MessageOf(err)
	st.ErrorKind = apperrors.KindOf(err)
	c.set(st)
}

// Logout ends the session. Any login or registration in flight is
// discarded. The server is told to revoke the token after the local state
// is already anonymous.
func (c *Container) Logout(ctx context.Context) error {
	c.op.Lock()
	c.supersede()
	tok, had := c.store.Read()
	c.set(Snapshot{Phase: PhaseAnonymous})
	err := c.svc.EndSession()
	c.op.Unlock()

	if had {
		c.svc.Revoke(ctx, tok)
	}
	return err
}

// ClearError leaves the error phase without starting a new attempt.
func (c *Container) ClearError() {
	c.op.Lock()
	defer c.op.Unlock()

	st := c.State()
	if st.Phase != PhaseError {
		return
	}
	st.Phase = PhaseAnonymous
	if st.IsAuthenticated {
		st.Phase = PhaseAuthenticated
	}
	st.Error = ""
	st.ErrorKind = ""
	c.set(st)
}

// Reload re-reads the token store, for example after another process changed it.
func (c *Container) Reload() {
	c.op.Lock()
	defer c.op.Unlock()
	c.reload()
}

// CheckExpiry clears an expired stored token and reports whether the
// container lost its authenticated state as a result of re-reading the store.
func (c *Container) CheckExpiry() bool {
	c.op.Lock()
	defer c.op.Unlock()
	was := c.State().IsAuthenticated
	c.reload()
	return was && !c.State().IsAuthenticated
}

func (c *Container) reload() {
	cur := c.State()
	next := c.derive()
	switch {
	case cur.Phase == PhaseAuthenticating:
		next.Phase = cur.Phase
		next.IsLoading = true
	case cur.Phase == PhaseError && !next.IsAuthenticated:
		next.Phase = cur.Phase
		next.Error = cur.Error
		next.ErrorKind = cur.ErrorKind
	}
	if next.equal(cur) {
		return
	}
	c.set(next)
}

// derive computes the settled state implied by the store.
func (c *Container) derive() Snapshot {
	sess, ok := c.store.Load()
	if !ok {
		return Snapshot{Phase: PhaseAnonymous}
	}
	if TokenExpired(sess.Token, c.store.now()) {
		c.log.Info("stored session expired")
		if err := c.store.Clear(); err != nil {
			c.log.Warn("clearing expired session failed", "error", err)
		}
		return Snapshot{Phase: PhaseAnonymous}
	}
	u := sess.User
	return Snapshot{Phase: PhaseAuthenticated, User: &u, IsAuthenticated: true}
}

// Verify asks the server who owns the stored token. A rejected token ends
// the session; an accepted one refreshes the stored profile.
func (c *Container) Verify(ctx context.Context) (Profile, error) {
	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	p, err := c.svc.Me(ctx)

	c.op.Lock()
	defer c.op.Unlock()
	c.mu.RLock()
	current := gen == c.gen
	c.mu.RUnlock()
	if !current {
		return Profile{}, ErrSuperseded
	}

	if err != nil {
		if apperrors.KindOf(err) == apperrors.InvalidCredentials && c.State().IsAuthenticated {
			c.set(Snapshot{Phase: PhaseAnonymous})
			_ = c.svc.EndSession()
		}
		return Profile{}, err
	}

	sess, ok := c.store.Load()
	if !ok || sess.User == p {
		return p, nil
	}
	if err := c.store.Write(sess.Token, p); err != nil {
		c.log.Warn("updating stored profile failed", "error", err)
		return p, nil
	}
	st := c.State()
	u := p
	st.User = &u
	c.set(st)
	return p, nil
}

// Watch reloads the state on every foreign session event until ctx is done.
func (c *Container) Watch(ctx context.Context, sub Subscriber) error {
	events, err := sub.Subscribe(ctx)
	if err != nil {
		return err
	}
	for ev := range events {
		c.log.Debug("session changed elsewhere", "kind", ev.Kind, "origin", ev.Origin)
		c.Reload()
	}
	return nil
}

func (c *Container) set(st Snapshot) {
	st = st.clone()
	c.mu.Lock()
	c.state = st
	c.mu.Unlock()
	c.notify(st)
}

func (c *Container) notify(st Snapshot) {
	c.mu.RLock()
	ls := make([]Listener, 0, len(c.subs))
	for _, l := range c.subs {
		ls = append(ls, l)
	}
	c.mu.RUnlock()
	for _, l := range ls {
		l(st.clone())
	}
}
