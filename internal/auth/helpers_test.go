package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"eduautismo/cli/internal/backend"
	"eduautismo/cli/internal/broadcast"
	"eduautismo/cli/internal/config"
	"eduautismo/cli/internal/keychain"
	"eduautismo/cli/internal/manifest"

	"github.com/99designs/keyring"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newKV() *keychain.Manager {
	return keychain.NewWithKeyring(keyring.NewArrayKeyring(nil), "test")
}

func newStore(kv Storage, opts ...StoreOption) *TokenStore {
	return NewTokenStore(kv, append([]StoreOption{WithClock(fixedClock)}, opts...)...)
}

// signToken returns an HS256 token; a nil exp leaves the claim out.
func signToken(t *testing.T, exp *time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "42"}
	if exp != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*exp)
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return tok
}

func at(t time.Time) *time.Time { return &t }

func httpAPI(t *testing.T, h http.HandlerFunc) backend.API {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	m, err := manifest.Resolve(srv.URL, config.Endpoints{})
	require.NoError(t, err)
	return backend.New(m, 2*time.Second, "test")
}

// flakyKV fails Set for one key.
type flakyKV struct {
	Storage
	failKey string
}

var errDisk = errors.New("disk full")

func (f *flakyKV) Set(name string, v []byte) error {
	if name == f.failKey {
		return errDisk
	}
	return f.Storage.Set(name, v)
}

type recordingPublisher struct {
	mu    sync.Mutex
	kinds []broadcast.Kind
}

func (p *recordingPublisher) Publish(_ context.Context, ev broadcast.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kinds = append(p.kinds, ev.Kind)
	return nil
}

func (p *recordingPublisher) Kinds() []broadcast.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]broadcast.Kind(nil), p.kinds...)
}

type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) Reset(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *recordingNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

// fakeAPI is a scriptable backend.API.
type fakeAPI struct {
	login    func(ctx context.Context, email, password string) (*backend.TokenResponse, error)
	register func(ctx context.Context, req backend.RegisterRequest) (*backend.TokenResponse, error)
	me       func(ctx context.Context, token string) (*backend.User, error)

	logouts atomic.Int32
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*backend.TokenResponse, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAPI) Register(ctx context.Context, req backend.RegisterRequest) (*backend.TokenResponse, error) {
	return f.register(ctx, req)
}

func (f *fakeAPI) ForgotPassword(context.Context, string) error        { return nil }
func (f *fakeAPI) ResetPassword(context.Context, string, string) error { return nil }

func (f *fakeAPI) Logout(context.Context, string) error {
	f.logouts.Add(1)
	return nil
}

func (f *fakeAPI) GetMe(ctx context.Context, token string) (*backend.User, error) {
	if f.me == nil {
		return nil, &backend.StatusError{StatusCode: http.StatusNotFound}
	}
	return f.me(ctx, token)
}

func (f *fakeAPI) GetVersion(context.Context) (string, error) { return "test", nil }

func tokenFor(token string, u backend.User) *backend.TokenResponse {
	return &backend.TokenResponse{AccessToken: token, TokenType: "bearer", User: &u}
}
