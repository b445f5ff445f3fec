// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package manifest

import (
	"fmt"
	"net/url"
	"strings"

	"eduautismo/cli/internal/config"
)

// Resolve builds the manifest for baseURL, applying non-empty overrides on top
// of DefaultEndpoints. The result is cached for the process when no override is given.
func Resolve(baseURL string, overrides config.Endpoints) (*Manifest, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid api url %q", baseURL)
	}

	if overrides == (config.Endpoints{}) {
		if cached := GetCached(base); cached != nil {
			return cached, nil
		}
	}

	ep := DefaultEndpoints()
	override(&ep.Login, overrides.Login)
	override(&ep.Register, overrides.Register)
	override(&ep.ForgotPassword, overrides.ForgotPassword)
	override(&ep.ResetPassword, overrides.ResetPassword)
	override(&ep.Logout, overrides.Logout)
	override(&ep.Me, overrides.Me)
	override(&ep.Health, overrides.Health)

	m := &Manifest{BaseURL: base, HTTP: ep}
	if overrides == (config.Endpoints{}) {
		SetCached(m)
	}
	return m, nil
}

func override(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		if !strings.HasPrefix(v, "/") {
			v = "/" + v
		}
		*dst = v
	}
}
