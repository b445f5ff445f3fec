// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth owns the client side of the session lifecycle: the token store
// that persists the credential, the service that talks to the API, and the
// state container the rest of the CLI observes.
package auth

import (
	"errors"
	"time"

	"eduautismo/cli/internal/backend"

	"github.com/golang-jwt/jwt/v5"
)

// Profile is the identity record persisted next to the token.
type Profile = backend.User

// Session is a credential token together with its owner's profile.
type Session struct {
	Token     string
	TokenType string
	User      Profile
}

// ErrSuperseded is returned by a login or registration whose result arrived
// after a newer login, registration or logout had started. Such a result is
// discarded without touching the store or the state.
var ErrSuperseded = errors.New("auth: request superseded by a newer one")

// TokenExpiry decodes the token's claims without verifying the signature.
// ok is false when the token carries no expiry claim.
func TokenExpiry(token string) (exp time.Time, ok bool, err error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false, nil
	}
	return claims.ExpiresAt.Time, true, nil
}

// TokenExpired reports whether token is expired at now. Tokens that cannot be
// decoded count as expired; tokens without an expiry claim never expire.
func TokenExpired(token string, now time.Time) bool {
	exp, ok, err := TokenExpiry(token)
	if err != nil {
		return true
	}
	if !ok {
		return false
	}
	return exp.Unix() < now.Unix()
}
