// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package manifest resolves the REST endpoint table of the EduAutismo API.
package manifest

import (
	"net/url"
	"strings"
)

// Manifest is the resolved endpoint configuration for one API origin.
type Manifest struct {
	BaseURL string        `json:"base_url"`
	HTTP    HTTPEndpoints `json:"http"`
}

// HTTPEndpoints contains REST API endpoint paths.
type HTTPEndpoints struct {
	Login          string `json:"login"`           // e.g., "/api/v1/auth/login"
	Register       string `json:"register"`        // e.g., "/api/v1/auth/register"
	ForgotPassword string `json:"forgot_password"` // e.g., "/api/v1/auth/forgot-password"
	ResetPassword  string `json:"reset_password"`  // e.g., "/api/v1/auth/reset-password"
	Logout         string `json:"logout"`          // e.g., "/api/v1/auth/logout"
	Me             string `json:"me"`              // e.g., "/api/v1/auth/me"
	Health         string `json:"health"`          // e.g., "/health"
}

// DefaultEndpoints returns the paths served by the EduAutismo backend.
func DefaultEndpoints() HTTPEndpoints {
	return HTTPEndpoints{
		Login:          "/api/v1/auth/login",
		Register:       "/api/v1/auth/register",
		ForgotPassword: "/api/v1/auth/forgot-password",
		ResetPassword:  "/api/v1/auth/reset-password",
		Logout:         "/api/v1/auth/logout",
		Me:             "/api/v1/auth/me",
		Health:         "/health",
	}
}

// Origin returns scheme://host of the base URL.
func (m *Manifest) Origin() string {
	u, err := url.Parse(m.BaseURL)
	if err != nil || u.Host == "" {
		return strings.TrimRight(m.BaseURL, "/")
	}
	return u.Scheme + "://" + u.Host
}

// URL joins the base URL and an endpoint path.
func (m *Manifest) URL(path string) string {
	return m.BaseURL + "/" + strings.TrimLeft(path, "/")
}
