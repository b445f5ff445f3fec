// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "eduautismo:session"

// Redis publishes events on a pub/sub channel, reaching processes on other machines.
type Redis struct {
	id      string
	ns      string
	channel string
	client  *redis.Client
	log     *slog.Logger
}

// DialRedis connects to redisURL (e.g., redis://localhost:6379/0) and pings it.
func DialRedis(ctx context.Context, redisURL, channel, namespace string, log *slog.Logger) (*Redis, error) {
	if redisURL == "" {
		return nil, errors.New("empty redis url")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return NewRedis(client, channel, namespace, log), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, channel, namespace string, log *slog.Logger) *Redis {
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Redis{id: newID(), ns: namespace, channel: channel, client: client, log: log}
}

func (r *Redis) ID() string { return r.id }

// Publish sends the event as JSON.
func (r *Redis) Publish(ctx context.Context, ev Event) error {
	b, err := json.Marshal(stamp(ev, r.id, r.ns))
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, b).Err()
}

// Subscribe returns once the subscription is confirmed by the server.
func (r *Redis) Subscribe(ctx context.Context) (<-chan Event, error) {
	ps := r.client.Subscribe(ctx, r.channel)
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, err
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		defer ps.Close()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				ev, ok := decode([]byte(m.Payload), r.id, r.ns)
				if !ok {
					continue
				}
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

func (r *Redis) Close() error { return r.client.Close() }
