// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package broadcast propagates session changes between processes sharing one
// credential store. A process that writes or clears the session publishes an
// Event; every other process subscribed to the same namespace receives it and
// reloads its state. Events are hints only: receivers always re-read the store.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"eduautismo/cli/internal/config"

	"github.com/google/uuid"
)

// Kind says what happened to the stored session.
type Kind string

const (
	KindWritten Kind = "written"
	KindCleared Kind = "cleared"
)

// Event is one session change notification.
type Event struct {
	Kind Kind `json:"kind"`
	// Origin identifies the publishing instance. Subscribers never see their own events.
	Origin string `json:"origin"`
	// Namespace is the credential store namespace the change applies to.
	Namespace string    `json:"namespace"`
	At        time.Time `json:"at"`
}

// Publisher is the write half of a Broadcaster.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Broadcaster publishes and receives session events.
type Broadcaster interface {
	Publisher
	// Subscribe delivers foreign events for the broadcaster's namespace until
	// ctx is done, then closes the channel.
	Subscribe(ctx context.Context) (<-chan Event, error)
	// ID is the origin stamped on published events.
	ID() string
	Close() error
}

// Options configures Open.
type Options struct {
	// Namespace scopes events, normally the keychain namespace of the API origin.
	Namespace string
	// Dir is the directory of the file driver.
	Dir    string
	Logger *slog.Logger
}

// Open creates the broadcaster selected by cfg.Driver.
func Open(ctx context.Context, cfg config.BroadcastConfig, opts Options) (Broadcaster, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	switch cfg.Driver {
	case config.BroadcastFile, "":
		return NewFile(opts.Dir, opts.Namespace, opts.Logger)
	case config.BroadcastRedis:
		return DialRedis(ctx, cfg.RedisURL, cfg.Channel, opts.Namespace, opts.Logger)
	case config.BroadcastNone:
		return NewNop(), nil
	default:
		return nil, fmt.Errorf("unknown broadcast driver %q", cfg.Driver)
	}
}

func newID() string {
	return uuid.NewString()
}

// stamp fills the fields a publisher owns.
func stamp(ev Event, id, ns string) Event {
	ev.Origin = id
	ev.Namespace = ns
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	return ev
}

// decode parses an event and reports whether a subscriber with id and ns should receive it.
func decode(b []byte, id, ns string) (Event, bool) {
	var ev Event
	if err := json.Unmarshal(b, &ev); err != nil {
		return Event{}, false
	}
	if ev.Origin == id || ev.Namespace != ns {
		return Event{}, false
	}
	return ev, true
}

// Nop discards events and never delivers any.
type Nop struct{ id string }

// NewNop returns a disabled broadcaster.
func NewNop() *Nop { return &Nop{id: newID()} }

func (n *Nop) Publish(context.Context, Event) error { return nil }

func (n *Nop) Subscribe(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (n *Nop) ID() string   { return n.id }
func (n *Nop) Close() error { return nil }
