// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package guard

import (
	"sync"

	"eduautismo/cli/internal/auth"
)

// StateSource supplies the session snapshot the router checks against.
type StateSource interface {
	State() auth.Snapshot
}

// Router tracks the current location and applies the guard on every navigation.
// It implements auth.Navigator.
type Router struct {
	guard *Guard
	state StateSource

	mu      sync.Mutex
	current string
	history []string
	onReset func(path string)
}

// NewRouter creates a router positioned at the login entry point.
func NewRouter(g *Guard, state StateSource) *Router {
	return &Router{guard: g, state: state, current: LoginPath}
}

// OnReset registers a hook called after every navigation reset.
func (r *Router) OnReset(fn func(path string)) {
	r.mu.Lock()
	r.onReset = fn
	r.mu.Unlock()
}

// Navigate moves to target if the guard allows it, otherwise to the redirect.
// It returns the decision and the location actually reached.
func (r *Router) Navigate(target string) (Decision, string) {
	d := r.guard.Decide(r.state.State(), target)
	to := target
	if !d.Allow {
		to = d.Redirect
	}
	r.mu.Lock()
	r.current = to
	r.history = append(r.history, to)
	r.mu.Unlock()
	return d, to
}

// Reset discards the history and lands on path.
func (r *Router) Reset(path string) {
	r.mu.Lock()
	r.current = path
	r.history = []string{path}
	fn := r.onReset
	r.mu.Unlock()
	if fn != nil {
		fn(path)
	}
}

// Current returns the current location.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns the locations visited since the last reset.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}

var _ auth.Navigator = (*Router)(nil)
