package auth

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"eduautismo/cli/internal/backend"
	"eduautismo/cli/internal/broadcast"
	apperrors "eduautismo/cli/internal/errors"

	"github.com/stretchr/testify/require"
)

func TestContainerStartsFromStore(t *testing.T) {
	tests := []struct {
		name      string
		token     func(t *testing.T) string
		wantAuth  bool
		wantStore bool
	}{
		{"empty", nil, false, false},
		{"valid", func(t *testing.T) string { return signToken(t, at(testNow.Add(time.Hour))) }, true, true},
		{"no expiry", func(t *testing.T) string { return signToken(t, nil) }, true, true},
		{"expired", func(t *testing.T) string { return signToken(t, at(testNow.Add(-time.Hour))) }, false, false},
		{"undecodable", func(t *testing.T) string { return "abc.def.ghi" }, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(newKV())
			if tt.token != nil {
				require.NoError(t, store.Write(tt.token(t), Profile{Name: "Ana"}))
			}
			c := NewContainer(NewService(&fakeAPI{}, store))

			st := c.State()
			require.Equal(t, tt.wantAuth, st.IsAuthenticated)
			require.False(t, st.IsLoading)
			if tt.wantAuth {
				require.Equal(t, PhaseAuthenticated, st.Phase)
				require.Equal(t, "Ana", st.User.Name)
			} else {
				require.Equal(t, PhaseAnonymous, st.Phase)
				require.Nil(t, st.User)
			}
			_, ok := store.Read()
			require.Equal(t, tt.wantStore, ok)
		})
	}
}

func TestListenersSeeEveryTransitionBeforeReturn(t *testing.T) {
	api := &fakeAPI{login: func(ctx context.Context, email, password string) (*backend.TokenResponse, error) {
		if password == "wrong" {
			return nil, &backend.StatusError{StatusCode: http.StatusUnauthorized}
		}
		return tokenFor("tok", backend.User{Name: "Ana"}), nil
	}}
	c := NewContainer(NewService(api, newStore(newKV())))

	var seen []Snapshot
	unsubscribe := c.Subscribe(func(s Snapshot) { seen = append(seen, s) })

	require.Error(t, c.Login(context.Background(), "a@b.co", "wrong"))
	require.NoError(t, c.Login(context.Background(), "a@b.co", "secret1"))
	unsubscribe()
	require.NoError(t, c.Logout(context.Background()))

	phases := make([]Phase, len(seen))
	for i, s := range seen {
		phases[i] = s.Phase
	}
	require.Equal(t, []Phase{PhaseAuthenticating, PhaseError, PhaseAuthenticating, PhaseAuthenticated}, phases)

	require.True(t, seen[0].IsLoading)
	require.NotEmpty(t, seen[1].Error)
	require.Equal(t, apperrors.InvalidCredentials, seen[1].ErrorKind)
	require.Empty(t, seen[2].Error, "error is cleared when a new attempt starts")
	require.True(t, seen[2].IsLoading)
	require.True(t, seen[3].IsAuthenticated)
}

func TestFailedLoginKeepsExistingUser(t *testing.T) {
	api := &fakeAPI{login: func(ctx context.Context, email, password string) (*backend.TokenResponse, error) {
		return nil, &backend.StatusError{StatusCode: http.StatusInternalServerError}
	}}
	store := newStore(newKV())
	require.NoError(t, store.Write(signToken(t, nil), Profile{Name: "Ana"}))
	c := NewContainer(NewService(api, store))

	err := c.Login(context.Background(), "b@b.co", "secret1")
	require.Equal(t, apperrors.ServerUnavailable, apperrors.KindOf(err))

	st := c.State()
	require.Equal(t, PhaseError, st.Phase)
	require.True(t, st.IsAuthenticated)
	require.Equal(t, "Ana", st.User.Name)

	c.ClearError()
	st = c.State()
	require.Equal(t, PhaseAuthenticated, st.Phase)
	require.Empty(t, st.Error)
	require.Empty(t, st.ErrorKind)
}

// blockingLogin returns a login func that signals start and waits for release,
// ignoring cancellation so the response always arrives late.
func blockingLogin(started chan<- string, release <-chan struct{}) func(context.Context, string, string) (*backend.TokenResponse, error) {
	return func(ctx context.Context, email, password string) (*backend.TokenResponse, error) {
		started <- email
		<-release
		return tokenFor("tok-"+email, backend.User{Email: email}), nil
	}
}

func TestLogoutWinsOverInFlightLogin(t *testing.T) {
	started := make(chan string, 1)
	release := make(chan struct{})
	api := &fakeAPI{login: blockingLogin(started, release)}
	nav := &recordingNavigator{}
	store := newStore(newKV())
	c := NewContainer(NewService(api, store, WithNavigator(nav)))

	done := make(chan error, 1)
	go func() { done <- c.Login(context.Background(), "slow@b.co", "secret1") }()
	<-started
	require.True(t, c.State().IsLoading)

	require.NoError(t, c.Logout(context.Background()))
	close(release)

	require.ErrorIs(t, <-done, ErrSuperseded)
	_, ok := store.Read()
	require.False(t, ok)
	st := c.State()
	require.Equal(t, PhaseAnonymous, st.Phase)
	require.False(t, st.IsAuthenticated)
	require.False(t, st.IsLoading)
	require.Equal(t, []string{LoginPath}, nav.Paths())
}

func TestLaterLoginSupersedesEarlier(t *testing.T) {
	started := make(chan string, 2)
	releaseFirst := make(chan struct{})
	api := &fakeAPI{}
	var calls int
	var mu sync.Mutex
	api.login = func(ctx context.Context, email, password string) (*backend.TokenResponse, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			started <- email
			<-releaseFirst
		}
		return tokenFor("tok-"+email, backend.User{Email: email}), nil
	}
	store := newStore(newKV())
	c := NewContainer(NewService(api, store))

	first := make(chan error, 1)
	go func() { first <- c.Login(context.Background(), "first@b.co", "secret1") }()
	<-started

	require.NoError(t, c.Login(context.Background(), "second@b.co", "secret1"))
	close(releaseFirst)
	require.ErrorIs(t, <-first, ErrSuperseded)

	tok, ok := store.Read()
	require.True(t, ok)
	require.Equal(t, "tok-second@b.co", tok)
	require.Equal(t, "second@b.co", c.State().User.Email)
}

func TestCancelledRequestContext(t *testing.T) {
	started := make(chan struct{})
	api := &fakeAPI{login: func(ctx context.Context, email, password string) (*backend.TokenResponse, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	c := NewContainer(NewService(api, newStore(newKV())))

	done := make(chan error, 1)
	go func() { done <- c.Login(context.Background(), "a@b.co", "secret1") }()
	<-started
	require.NoError(t, c.Logout(context.Background()))
	require.ErrorIs(t, <-done, ErrSuperseded)
}

func TestCheckExpiry(t *testing.T) {
	now := testNow
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	store := NewTokenStore(newKV(), WithClock(clock))
	require.NoError(t, store.Write(signToken(t, at(testNow.Add(time.Minute))), Profile{Name: "Ana"}))
	c := NewContainer(NewService(&fakeAPI{}, store))
	require.True(t, c.State().IsAuthenticated)
	require.False(t, c.CheckExpiry())

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	require.True(t, c.CheckExpiry())
	require.False(t, c.State().IsAuthenticated)
	_, ok := store.Read()
	require.False(t, ok)
	require.False(t, c.CheckExpiry())
}

func TestVerify(t *testing.T) {
	store := newStore(newKV())
	require.NoError(t, store.Write(signToken(t, nil), Profile{Name: "Ana"}))
	api := &fakeAPI{me: func(ctx context.Context, token string) (*backend.User, error) {
		return &backend.User{ID: "1", Name: "Ana", FullName: "Ana Souza", Email: "ana@escola.br"}, nil
	}}
	nav := &recordingNavigator{}
	c := NewContainer(NewService(api, store, WithNavigator(nav)))

	p, err := c.Verify(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Ana Souza", p.FullName)
	require.Equal(t, "Ana Souza", c.State().User.FullName)
	stored, _ := store.Profile()
	require.Equal(t, p, stored)

	api.me = func(ctx context.Context, token string) (*backend.User, error) {
		return nil, &backend.StatusError{StatusCode: http.StatusUnauthorized}
	}
	_, err = c.Verify(context.Background())
	require.Equal(t, apperrors.InvalidCredentials, apperrors.KindOf(err))
	require.False(t, c.State().IsAuthenticated)
	_, ok := store.Read()
	require.False(t, ok)
	require.Equal(t, []string{LoginPath}, nav.Paths())
}

func TestForeignBroadcastReloads(t *testing.T) {
	dir := t.TempDir()
	kv := newKV()
	brA, err := broadcast.NewFile(dir, "test", nil)
	require.NoError(t, err)
	brB, err := broadcast.NewFile(dir, "test", nil)
	require.NoError(t, err)

	storeA := newStore(kv, WithPublisher(brA))
	storeB := newStore(kv, WithPublisher(brB))
	require.NoError(t, storeB.Write(signToken(t, nil), Profile{Name: "Ana"}))

	a := NewContainer(NewService(&fakeAPI{}, storeA))
	b := NewContainer(NewService(&fakeAPI{}, storeB))
	require.True(t, a.State().IsAuthenticated)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watching := make(chan error, 1)
	events, err := brA.Subscribe(ctx)
	require.NoError(t, err)
	go func() { watching <- a.Watch(ctx, chanSubscriber(events)) }()

	var reloads int
	var mu sync.Mutex
	a.Subscribe(func(Snapshot) {
		mu.Lock()
		reloads++
		mu.Unlock()
	})

	require.NoError(t, b.Logout(context.Background()))
	require.Eventually(t, func() bool { return !a.State().IsAuthenticated }, 3*time.Second, 20*time.Millisecond)

	// own writes never come back as events
	require.NoError(t, storeA.Write(signToken(t, nil), Profile{Name: "Bia"}))
	time.Sleep(200 * time.Millisecond)
	require.False(t, a.State().IsAuthenticated, "no reload on own event")
	mu.Lock()
	require.Equal(t, 1, reloads)
	mu.Unlock()

	cancel()
	require.NoError(t, <-watching)
}

// chanSubscriber hands out an already open subscription.
type chanSubscriber <-chan broadcast.Event

func (c chanSubscriber) Subscribe(context.Context) (<-chan broadcast.Event, error) {
	return c, nil
}

func TestLogoutFromEveryPhase(t *testing.T) {
	unauthorized := func(ctx context.Context, email, password string) (*backend.TokenResponse, error) {
		return nil, &backend.StatusError{StatusCode: http.StatusUnauthorized}
	}
	tests := []struct {
		name  string
		phase Phase
		// setup returns the container in phase and a func that waits for
		// any request it left in flight.
		setup func(t *testing.T) (*Container, *TokenStore, func())
	}{
		{"anonymous", PhaseAnonymous, func(t *testing.T) (*Container, *TokenStore, func()) {
			store := newStore(newKV())
			return NewContainer(NewService(&fakeAPI{}, store)), store, func() {}
		}},
		{"authenticated", PhaseAuthenticated, func(t *testing.T) (*Container, *TokenStore, func()) {
			store := newStore(newKV())
			require.NoError(t, store.Write(signToken(t, nil), Profile{Name: "Ana"}))
			return NewContainer(NewService(&fakeAPI{}, store)), store, func() {}
		}},
		{"error", PhaseError, func(t *testing.T) (*Container, *TokenStore, func()) {
			store := newStore(newKV())
			c := NewContainer(NewService(&fakeAPI{login: unauthorized}, store))
			require.Error(t, c.Login(context.Background(), "a@b.co", "wrong"))
			return c, store, func() {}
		}},
		{"error with session", PhaseError, func(t *testing.T) (*Container, *TokenStore, func()) {
			store := newStore(newKV())
			require.NoError(t, store.Write(signToken(t, nil), Profile{Name: "Ana"}))
			c := NewContainer(NewService(&fakeAPI{login: unauthorized}, store))
			require.Error(t, c.Login(context.Background(), "a@b.co", "wrong"))
			return c, store, func() {}
		}},
		{"authenticating", PhaseAuthenticating, func(t *testing.T) (*Container, *TokenStore, func()) {
			started := make(chan string, 1)
			release := make(chan struct{})
			store := newStore(newKV())
			c := NewContainer(NewService(&fakeAPI{login: blockingLogin(started, release)}, store))
			done := make(chan error, 1)
			go func() { done <- c.Login(context.Background(), "slow@b.co", "secret1") }()
			<-started
			return c, store, func() {
				close(release)
				require.ErrorIs(t, <-done, ErrSuperseded)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, store, wait := tt.setup(t)
			require.Equal(t, tt.phase, c.State().Phase)

			for i := range 2 {
				require.NoError(t, c.Logout(context.Background()), "logout #%d", i+1)
				if i == 0 {
					wait()
				}

				st := c.State()
				require.Equal(t, PhaseAnonymous, st.Phase)
				require.False(t, st.IsAuthenticated)
				require.False(t, st.IsLoading)
				require.Nil(t, st.User)
				require.Empty(t, st.Error)
				require.Empty(t, st.ErrorKind)
				_, ok := store.Read()
				require.False(t, ok)
				_, ok = store.Profile()
				require.False(t, ok)
			}
		})
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	store := newStore(newKV())
	require.NoError(t, store.Write(signToken(t, nil), Profile{Name: "Ana"}))
	c := NewContainer(NewService(&fakeAPI{
		login: func(ctx context.Context, email, password string) (*backend.TokenResponse, error) {
			return tokenFor("tok", backend.User{Name: "Bia"}), nil
		},
	}, store))

	st := c.State()
	st.User.Name = "Mallory"
	require.Equal(t, "Ana", c.State().User.Name)

	c.Subscribe(func(s Snapshot) {
		if s.User != nil {
			s.User.Name = "Mallory"
		}
	})
	require.NoError(t, c.Login(context.Background(), "b@b.co", "secret1"))
	require.Equal(t, "Bia", c.State().User.Name)
}

func TestCallerCancelRestoresPriorState(t *testing.T) {
	store := newStore(newKV())
	require.NoError(t, store.Write(signToken(t, nil), Profile{Name: "Ana"}))
	started := make(chan struct{})
	api := &fakeAPI{login: func(ctx context.Context, email, password string) (*backend.TokenResponse, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	c := NewContainer(NewService(api, store))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()
	err := c.Login(ctx, "b@b.co", "secret1")
	require.Equal(t, apperrors.Canceled, apperrors.KindOf(err))

	st := c.State()
	require.Equal(t, PhaseAuthenticated, st.Phase)
	require.False(t, st.IsLoading)
	require.Empty(t, st.Error)
	require.Equal(t, "Ana", st.User.Name)
}
