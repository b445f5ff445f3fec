// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// EventFile is the marker file replaced on every publish.
const EventFile = "event.json"

// File publishes by atomically replacing a marker file and subscribes by
// watching its directory. It works for any processes on one machine.
type File struct {
	id  string
	ns  string
	dir string
	log *slog.Logger
}

// NewFile creates a file broadcaster rooted at dir.
func NewFile(dir, namespace string, log *slog.Logger) (*File, error) {
	if dir == "" {
		return nil, errors.New("broadcast directory not configured")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &File{id: newID(), ns: namespace, dir: dir, log: log}, nil
}

func (f *File) ID() string { return f.id }

// Publish writes the event to a temp file and renames it over the marker.
func (f *File) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(stamp(ev, f.id, f.ns))
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, ".event-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(f.dir, EventFile)); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// Subscribe watches the marker file until ctx is done.
func (f *File) Subscribe(ctx context.Context) (<-chan Event, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(f.dir); err != nil {
		w.Close()
		return nil, err
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		defer w.Close()

		target := filepath.Join(f.dir, EventFile)
		var last Event
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				f.log.Warn("broadcast watcher error", "error", err)
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(e.Name) != target || !e.Has(fsnotify.Create|fsnotify.Write) {
					continue
				}
				b, err := os.ReadFile(target)
				if err != nil {
					continue
				}
				ev, ok := decode(b, f.id, f.ns)
				// one rename can surface as several fs events
				if !ok || (ev.Origin == last.Origin && ev.At.Equal(last.At)) {
					continue
				}
				last = ev
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (f *File) Close() error { return nil }
