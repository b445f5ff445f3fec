// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure the session layer surfaces carries a machine-readable Kind and a
// localized, user-facing Message; the underlying transport error is kept for
// logging but never shown as-is.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// InvalidCredentials maps from unauthorized responses. Not retryable as-is.
	InvalidCredentials Kind = "invalid_credentials"
	// ValidationFailed maps from malformed-request responses. Retry with corrected input.
	ValidationFailed Kind = "validation_failed"
	// Conflict signals a duplicate identity on registration.
	Conflict Kind = "conflict"
	// ServerUnavailable maps from server-side failures. Retry later.
	ServerUnavailable Kind = "server_unavailable"
	// NetworkUnreachable means no response was received at all.
	NetworkUnreachable Kind = "network_unreachable"
	// InvalidResetToken means the password-reset token was rejected.
	InvalidResetToken Kind = "invalid_reset_token"
	// Canceled means the caller gave up before a response arrived.
	Canceled Kind = "canceled"
	// Unknown is the catch-all fallback.
	Unknown Kind = "unknown"
)

// Retryable reports whether repeating the same request may succeed.
func (k Kind) Retryable() bool {
	return k == ServerUnavailable || k == NetworkUnreachable
}

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

// Is matches another *E by kind, so errors.Is(err, &E{Kind: Conflict}) works.
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	return ok && t.Kind == e.Kind
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }

// KindOf returns the Kind of the first *E in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// MessageOf returns the user-facing message of the first *E in err's chain.
// For foreign errors it returns err.Error().
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var e *E
	if stderrors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
