package broadcast

import (
	"context"
	"testing"
	"time"

	"eduautismo/cli/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func requireSilent(t *testing.T, ch <-chan Event) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFileBroadcast(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFile(dir, "localhost_8000", nil)
	require.NoError(t, err)
	b, err := NewFile(dir, "localhost_8000", nil)
	require.NoError(t, err)
	other, err := NewFile(dir, "api.escola.example", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fromB, err := b.Subscribe(ctx)
	require.NoError(t, err)
	fromA, err := a.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, a.Publish(ctx, Event{Kind: KindCleared}))
	ev := receive(t, fromB)
	require.Equal(t, KindCleared, ev.Kind)
	require.Equal(t, a.ID(), ev.Origin)
	require.Equal(t, "localhost_8000", ev.Namespace)
	requireSilent(t, fromA)

	require.NoError(t, other.Publish(ctx, Event{Kind: KindWritten}))
	requireSilent(t, fromB)

	cancel()
	for range fromB {
	}
}

func TestRedisBroadcast(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := DialRedis(ctx, "redis://"+mr.Addr(), "", "localhost_8000", nil)
	require.NoError(t, err)
	defer a.Close()
	b := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), DefaultChannel, "localhost_8000", nil)
	defer b.Close()

	fromA, err := a.Subscribe(ctx)
	require.NoError(t, err)
	fromB, err := b.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, Event{Kind: KindWritten}))
	ev := receive(t, fromA)
	require.Equal(t, KindWritten, ev.Kind)
	require.Equal(t, b.ID(), ev.Origin)
	requireSilent(t, fromB)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	br, err := Open(ctx, config.BroadcastConfig{Driver: config.BroadcastNone}, Options{})
	require.NoError(t, err)
	require.IsType(t, &Nop{}, br)

	br, err = Open(ctx, config.BroadcastConfig{Driver: config.BroadcastFile}, Options{Dir: t.TempDir()})
	require.NoError(t, err)
	require.IsType(t, &File{}, br)

	_, err = Open(ctx, config.BroadcastConfig{Driver: config.BroadcastRedis}, Options{})
	require.Error(t, err)

	_, err = Open(ctx, config.BroadcastConfig{Driver: "carrier-pigeon"}, Options{})
	require.Error(t, err)
}

func TestNopClosesOnCancel(t *testing.T) {
	n := NewNop()
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := n.Subscribe(ctx)
	require.NoError(t, err)
	require.NoError(t, n.Publish(ctx, Event{Kind: KindWritten}))
	cancel()
	_, ok := <-ch
	require.False(t, ok)
}
