package guard

import (
	"testing"

	"eduautismo/cli/internal/auth"

	"github.com/stretchr/testify/require"
)

var (
	anonymous     = auth.Snapshot{Phase: auth.PhaseAnonymous}
	authenticated = auth.Snapshot{Phase: auth.PhaseAuthenticated, IsAuthenticated: true, User: &auth.Profile{Name: "Ana"}}
	loading       = auth.Snapshot{Phase: auth.PhaseAuthenticating, IsLoading: true}
)

func TestDecide(t *testing.T) {
	g := New(nil, false)
	tests := []struct {
		name   string
		state  auth.Snapshot
		target string
		want   Decision
	}{
		{"anonymous protected", anonymous, "/dashboard", Decision{Redirect: "/login"}},
		{"anonymous nested protected", anonymous, "/students/12", Decision{Redirect: "/login"}},
		{"anonymous unknown", anonymous, "/nowhere", Decision{Redirect: "/login"}},
		{"anonymous root", anonymous, "/", Decision{Redirect: "/login"}},
		{"loading protected", loading, "/activities", Decision{Redirect: "/login"}},
		{"anonymous login", anonymous, "/login", Decision{Allow: true}},
		{"anonymous register", anonymous, "/register", Decision{Allow: true}},
		{"anonymous forgot", anonymous, "/forgot-password", Decision{Allow: true}},
		{"anonymous reset with token", anonymous, "/reset-password?token=abc", Decision{Allow: true}},
		{"anonymous trailing slash", anonymous, "/login/", Decision{Allow: true}},
		{"authenticated protected", authenticated, "/assessments", Decision{Allow: true}},
		{"authenticated public", authenticated, "/login", Decision{Allow: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, g.Decide(tt.state, tt.target))
		})
	}
}

func TestDecidePreservesTarget(t *testing.T) {
	g := New(nil, true)
	d := g.Decide(anonymous, "/students/12")
	require.False(t, d.Allow)
	require.Equal(t, "/login?next=%2Fstudents%2F12", d.Redirect)

	next, ok := NextTarget(d.Redirect)
	require.True(t, ok)
	require.Equal(t, "/students/12", next)

	_, ok = NextTarget("/login?next=https://evil.example")
	require.False(t, ok)
	_, ok = NextTarget("/login?next=//evil.example")
	require.False(t, ok)
	_, ok = NextTarget("/login")
	require.False(t, ok)
}

func TestDecideIsPure(t *testing.T) {
	g := New(nil, false)
	first := g.Decide(anonymous, "/dashboard")
	for i := 0; i < 10; i++ {
		require.Equal(t, first, g.Decide(anonymous, "/dashboard"))
	}
}

func TestCustomRoutes(t *testing.T) {
	g := New(Routes{"/about": Public}, false)
	require.True(t, g.Decide(anonymous, "/about/team").Allow)
	require.False(t, g.Decide(anonymous, "/login").Allow)
}

type staticState auth.Snapshot

func (s staticState) State() auth.Snapshot { return auth.Snapshot(s) }

func TestRouter(t *testing.T) {
	r := NewRouter(New(nil, false), staticState(anonymous))
	require.Equal(t, LoginPath, r.Current())

	d, to := r.Navigate("/dashboard")
	require.False(t, d.Allow)
	require.Equal(t, LoginPath, to)

	_, to = r.Navigate("/register")
	require.Equal(t, "/register", to)
	require.Equal(t, []string{LoginPath, "/register"}, r.History())

	var resets []string
	r.OnReset(func(p string) { resets = append(resets, p) })
	r.Reset(LoginPath)
	require.Equal(t, []string{LoginPath}, r.History())
	require.Equal(t, []string{LoginPath}, resets)
}
