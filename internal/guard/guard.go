// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package guard decides whether a navigation target may be shown for the
// current session state, and keeps track of the current location.
package guard

import (
	"net/url"
	"strings"

	"eduautismo/cli/internal/auth"
)

// Entry points.
const (
	LoginPath          = auth.LoginPath
	RegisterPath       = "/register"
	ForgotPasswordPath = "/forgot-password"
	ResetPasswordPath  = "/reset-password"
	DashboardPath      = "/dashboard"
)

// Access classifies a route.
type Access int

const (
	// Protected routes require an authenticated session.
	Protected Access = iota
	// Public routes are reachable by anyone.
	Public
)

// Routes maps path prefixes to their access level. Paths not listed are protected.
type Routes map[string]Access

// DefaultRoutes lists the public entry points. Everything else, such as
// /dashboard, /students, /activities and /assessments, is protected.
func DefaultRoutes() Routes {
	return Routes{
		LoginPath:          Public,
		RegisterPath:       Public,
		ForgotPasswordPath: Public,
		ResetPasswordPath:  Public,
	}
}

// AccessOf returns the access level of target. A route matches its own
// path and every path below it.
func (r Routes) AccessOf(target string) Access {
	p := normalize(target)
	for {
		if a, ok := r[p]; ok {
			return a
		}
		i := strings.LastIndex(p, "/")
		if i <= 0 {
			return Protected
		}
		p = p[:i]
	}
}

// Decision is the outcome of Decide. Exactly one of Allow and Redirect is meaningful:
// when Allow is false, Redirect holds the path to navigate to instead.
type Decision struct {
	Allow    bool
	Redirect string
}

// Guard evaluates navigation targets.
type Guard struct {
	routes Routes
	// preserveTarget appends ?next=<target> to login redirects.
	preserveTarget bool
}

// New creates a Guard. A nil routes table means DefaultRoutes.
func New(routes Routes, preserveTarget bool) *Guard {
	if routes == nil {
		routes = DefaultRoutes()
	}
	return &Guard{routes: routes, preserveTarget: preserveTarget}
}

// Decide is pure: the same snapshot and target always give the same decision.
func (g *Guard) Decide(s auth.Snapshot, target string) Decision {
	if g.routes.AccessOf(target) == Public || s.IsAuthenticated {
		return Decision{Allow: true}
	}
	if !g.preserveTarget {
		return Decision{Redirect: LoginPath}
	}
	return Decision{Redirect: LoginPath + "?next=" + url.QueryEscape(target)}
}

// NextTarget extracts the preserved target from a login redirect. It only
// returns local protected paths, never another origin.
func NextTarget(redirect string) (string, bool) {
	u, err := url.Parse(redirect)
	if err != nil {
		return "", false
	}
	next := u.Query().Get("next")
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "", false
	}
	return next, true
}

func normalize(target string) string {
	p := target
	if u, err := url.Parse(target); err == nil {
		p = u.Path
	}
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}
