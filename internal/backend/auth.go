// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
)

// ErrNoToken is returned when a successful login answer carries no access token.
var ErrNoToken = errors.New("no access_token in response")

// Login posts the credentials form-urlencoded, as OAuth2 password flow expects.
func (h *HTTP) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var raw map[string]any
	hdr, err := h.postForm(ctx, h.m.HTTP.Login, form, &raw)
	if err != nil {
		return nil, err
	}
	tr, err := parseTokenResponse(raw, hdr)
	if err != nil {
		return nil, err
	}
	if tr.AccessToken == "" {
		return nil, ErrNoToken
	}
	return tr, nil
}

// Register posts the new account as JSON. Servers answering 201 with only the
// created user yield a TokenResponse with an empty AccessToken.
func (h *HTTP) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	var raw map[string]any
	hdr, err := h.postJSON(ctx, h.m.HTTP.Register, req, "", &raw)
	if err != nil {
		return nil, err
	}
	return parseTokenResponse(raw, hdr)
}

// ForgotPassword posts {email}. The answer body is ignored.
func (h *HTTP) ForgotPassword(ctx context.Context, email string) error {
	_, err := h.postJSON(ctx, h.m.HTTP.ForgotPassword, map[string]string{"email": email}, "", nil)
	return err
}

// ResetPassword posts {token, new_password}. The answer body is ignored.
func (h *HTTP) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	body := map[string]string{
		"token":        resetToken,
		"new_password": newPassword,
	}
	_, err := h.postJSON(ctx, h.m.HTTP.ResetPassword, body, "", nil)
	return err
}

// Logout calls POST /api/v1/auth/logout with Authorization header.
// It invalidates the current access token on the server.
func (h *HTTP) Logout(ctx context.Context, accessToken string) error {
	_, err := h.postJSON(ctx, h.m.HTTP.Logout, nil, accessToken, nil)
	return err
}

// parseTokenResponse reads the token and the optional user from a liberal payload.
// The user may be nested under "user" or be the payload itself.
func parseTokenResponse(raw map[string]any, hdr map[string][]string) (*TokenResponse, error) {
	tr := &TokenResponse{
		AccessToken: extractAccessToken(raw),
		TokenType:   extractTokenType(raw),
	}
	if tr.AccessToken == "" {
		tr.AccessToken = findBearerTokenInHeaders(hdr)
	}

	var userNode any
	if u, ok := raw["user"].(map[string]any); ok {
		userNode = u
	} else if _, ok := raw["email"]; ok {
		userNode = raw
	}
	if userNode != nil {
		b, err := json.Marshal(userNode)
		if err != nil {
			return nil, err
		}
		var u User
		if err := json.Unmarshal(b, &u); err != nil {
			return nil, err
		}
		tr.User = &u
	}
	return tr, nil
}
