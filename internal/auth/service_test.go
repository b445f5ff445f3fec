package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"eduautismo/cli/internal/backend"
	apperrors "eduautismo/cli/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginScenarioSuccess(t *testing.T) {
	api := httpAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "teacher@school.com", r.PostForm.Get("username"))
		assert.Equal(t, "secret1", r.PostForm.Get("password"))
		_, _ = w.Write([]byte(`{"access_token":"abc.def.ghi","user":{"name":"Ana"}}`))
	})
	store := newStore(newKV())
	c := NewContainer(NewService(api, store))

	require.NoError(t, c.Login(context.Background(), "teacher@school.com", "secret1"))

	tok, ok := store.Read()
	require.True(t, ok)
	require.Equal(t, "abc.def.ghi", tok)

	st := c.State()
	require.NotNil(t, st.User)
	require.Equal(t, "Ana", st.User.Name)
	require.True(t, st.IsAuthenticated)
	require.False(t, st.IsLoading)
	require.Equal(t, PhaseAuthenticated, st.Phase)
}

func TestLoginScenarioUnauthorized(t *testing.T) {
	api := httpAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Incorrect email or password"}`))
	})
	store := newStore(newKV())
	c := NewContainer(NewService(api, store))

	err := c.Login(context.Background(), "teacher@school.com", "secret1")
	require.Error(t, err)
	require.Equal(t, apperrors.InvalidCredentials, apperrors.KindOf(err))

	st := c.State()
	require.NotEmpty(t, st.Error)
	require.Equal(t, apperrors.MessageOf(err), st.Error)
	require.Equal(t, PhaseError, st.Phase)
	require.False(t, st.IsAuthenticated)
	require.Nil(t, st.User)

	_, ok := store.Read()
	require.False(t, ok)
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		op     string
		status int
		body   string
		want   apperrors.Kind
	}{
		{"login 401", "login", 401, "", apperrors.InvalidCredentials},
		{"login 400", "login", 400, "", apperrors.ValidationFailed},
		{"login 422", "login", 422, `{"detail":[{"msg":"bad"}]}`, apperrors.ValidationFailed},
		{"login 500", "login", 500, "", apperrors.ServerUnavailable},
		{"login 503", "login", 503, "", apperrors.ServerUnavailable},
		{"login 418", "login", 418, "", apperrors.Unknown},
		{"register 409", "register", 409, "", apperrors.Conflict},
		{"register already registered", "register", 400, `{"detail":"Email already registered"}`, apperrors.Conflict},
		{"register 400", "register", 400, `{"detail":"Weak password"}`, apperrors.ValidationFailed},
		{"reset 400", "reset", 400, "", apperrors.InvalidResetToken},
		{"reset 422", "reset", 422, "", apperrors.ValidationFailed},
		{"forgot 500", "forgot", 500, "", apperrors.ServerUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := httpAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			store := newStore(newKV())
			svc := NewService(api, store)
			ctx := context.Background()

			var err error
			switch tt.op {
			case "login":
				_, err = svc.Login(ctx, "a@b.co", "secret1")
			case "register":
				_, err = svc.Register(ctx, backend.RegisterRequest{Name: "Ana", Email: "a@b.co", Password: "Str0ng!pw"})
			case "reset":
				err = svc.ResetPassword(ctx, "reset-token", "Str0ng!pw")
			case "forgot":
				err = svc.ForgotPassword(ctx, "a@b.co")
			}
			require.Error(t, err)
			require.Equal(t, tt.want, apperrors.KindOf(err))
			require.NotEmpty(t, apperrors.MessageOf(err))
			_, ok := store.Read()
			require.False(t, ok)
		})
	}
}

func TestNetworkUnreachable(t *testing.T) {
	api := httpAPI(t, func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !assert.True(t, ok) {
			return
		}
		conn, _, err := hj.Hijack()
		if assert.NoError(t, err) {
			conn.Close()
		}
	})
	_, err := NewService(api, newStore(newKV())).Login(context.Background(), "a@b.co", "secret1")
	require.Equal(t, apperrors.NetworkUnreachable, apperrors.KindOf(err))
	require.Equal(t, "No connection to the server. Check your internet connection", apperrors.MessageOf(err))
}

func TestLocalizedMessages(t *testing.T) {
	api := httpAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	svc := NewService(api, newStore(newKV()), WithCatalog(apperrors.CatalogFor("pt-BR")))
	_, err := svc.Register(context.Background(), backend.RegisterRequest{Email: "a@b.co"})
	require.Equal(t, "E-mail já cadastrado", apperrors.MessageOf(err))
}

func TestRegisterWithoutTokenLogsIn(t *testing.T) {
	var calls []string
	api := httpAPI(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		switch r.URL.Path {
		case "/api/v1/auth/register":
			var req backend.RegisterRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":1,"email":"bia@escola.br","name":"Bia"}`))
		case "/api/v1/auth/login":
			_, _ = w.Write([]byte(`{"access_token":"tok-bia","token_type":"bearer","user":{"id":1,"email":"bia@escola.br","name":"Bia"}}`))
		}
	})
	store := newStore(newKV())
	sess, err := NewService(api, store).Register(context.Background(), backend.RegisterRequest{
		Name: "Bia", Email: "bia@escola.br", Password: "Str0ng!pw",
	})
	require.NoError(t, err)
	require.Equal(t, "tok-bia", sess.Token)
	require.Equal(t, []string{"/api/v1/auth/register", "/api/v1/auth/login"}, calls)

	p, ok := store.Profile()
	require.True(t, ok)
	require.Equal(t, "Bia", p.Name)
}

func TestLoginFetchesMissingProfile(t *testing.T) {
	api := httpAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			_, _ = w.Write([]byte(`{"access_token":"tok"}`))
		case "/api/v1/auth/me":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"id":"u1","email":"a@b.co","full_name":"Ana Souza"}`))
		}
	})
	sess, err := NewService(api, newStore(newKV())).Login(context.Background(), "a@b.co", "secret1")
	require.NoError(t, err)
	require.Equal(t, "Ana Souza", sess.User.DisplayName())
}

func TestPasswordFlowsLeaveStoreAlone(t *testing.T) {
	api := httpAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	store := newStore(newKV())
	require.NoError(t, store.Write("tok", Profile{Name: "Ana"}))
	svc := NewService(api, store)

	require.NoError(t, svc.ForgotPassword(context.Background(), "a@b.co"))
	require.NoError(t, svc.ResetPassword(context.Background(), "reset", "Str0ng!pw"))

	tok, ok := store.Read()
	require.True(t, ok)
	require.Equal(t, "tok", tok)
}

func TestServiceLogoutIsIdempotent(t *testing.T) {
	api := &fakeAPI{}
	nav := &recordingNavigator{}
	store := newStore(newKV())
	require.NoError(t, store.Write("tok", Profile{Name: "Ana"}))
	svc := NewService(api, store, WithNavigator(nav))

	require.NoError(t, svc.Logout(context.Background()))
	require.NoError(t, svc.Logout(context.Background()))

	_, ok := store.Read()
	require.False(t, ok)
	require.Equal(t, []string{LoginPath, LoginPath}, nav.Paths())
	require.Equal(t, int32(1), api.logouts.Load(), "remote logout only with a token")
}

func TestMeWithoutSession(t *testing.T) {
	_, err := NewService(&fakeAPI{}, newStore(newKV())).Me(context.Background())
	require.Equal(t, apperrors.InvalidCredentials, apperrors.KindOf(err))
}

func TestCallerCancelIsNotANetworkError(t *testing.T) {
	started := make(chan struct{})
	api := httpAPI(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := NewService(api, newStore(newKV())).Login(ctx, "a@b.co", "secret1")
	require.Equal(t, apperrors.Canceled, apperrors.KindOf(err))
	require.False(t, apperrors.KindOf(err).Retryable())
	require.Equal(t, "Request cancelled", apperrors.MessageOf(err))
}
