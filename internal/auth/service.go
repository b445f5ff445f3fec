// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eduautismo/cli/internal/backend"
	apperrors "eduautismo/cli/internal/errors"
	"eduautismo/cli/internal/httperrors"
	"eduautismo/cli/internal/logging"
)

// Navigator performs a full navigation reset to path.
type Navigator interface {
	Reset(path string)
}

// LoginPath is the entry point a logout navigates to.
const LoginPath = "/login"

// revokeTimeout bounds the best-effort remote logout.
const revokeTimeout = 3 * time.Second

// Service centralizes authentication-related operations against the backend
// and the token store. Every error it returns is an *errors.E with a
// user-facing message; raw transport errors never escape.
type Service struct {
	be    backend.API
	store *TokenStore
	nav   Navigator
	msgs  *apperrors.Catalog
	log   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithNavigator sets the navigator reset on logout.
func WithNavigator(n Navigator) ServiceOption {
	return func(s *Service) { s.nav = n }
}

// WithCatalog selects the message catalog.
func WithCatalog(c *apperrors.Catalog) ServiceOption {
	return func(s *Service) { s.msgs = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = l }
}

// NewService constructs an auth Service.
func NewService(be backend.API, store *TokenStore, opts ...ServiceOption) *Service {
	s := &Service{
		be:    be,
		store: store,
		msgs:  apperrors.CatalogFor("en"),
		log:   slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Store returns the token store the service persists to.
func (s *Service) Store() *TokenStore { return s.store }

// Login authenticates and persists the session.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	sess, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	if err := s.Commit(sess, apperrors.OpLogin); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Register creates the account and persists the resulting session.
func (s *Service) Register(ctx context.Context, req backend.RegisterRequest) (Session, error) {
	sess, err := s.Enroll(ctx, req)
	if err != nil {
		return Session{}, err
	}
	if err := s.Commit(sess, apperrors.OpRegister); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Authenticate exchanges credentials for a session without persisting it.
// When the server omits the profile it is fetched from the me endpoint.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Session, error) {
	tr, err := s.be.Login(ctx, email, password)
	if err != nil {
		return Session{}, s.classify(apperrors.OpLogin, err)
	}
	return s.session(ctx, tr, email), nil
}

// Enroll registers without persisting. A registration answer without a
// token is followed by a login with the same credentials.
func (s *Service) Enroll(ctx context.Context, req backend.RegisterRequest) (Session, error) {
	tr, err := s.be.Register(ctx, req)
	if err != nil {
		return Session{}, s.classify(apperrors.OpRegister, err)
	}
	if tr.AccessToken == "" {
		s.log.Debug("register returned no token, logging in", "email", req.Email)
		return s.Authenticate(ctx, req.Email, req.Password)
	}
	return s.session(ctx, tr, req.Email), nil
}

func (s *Service) session(ctx context.Context, tr *backend.TokenResponse, email string) Session {
	sess := Session{Token: tr.AccessToken, TokenType: tr.TokenType}
	switch {
	case tr.User != nil:
		sess.User = *tr.User
	default:
		if u, err := s.be.GetMe(ctx, tr.AccessToken); err == nil {
			sess.User = *u
		} else {
			s.log.Debug("profile lookup after login failed", "error", logging.Mask(err.Error()))
			sess.User = Profile{Email: email}
		}
	}
	return sess
}

// Commit persists sess. op selects the failure message.
func (s *Service) Commit(sess Session, op apperrors.Operation) error {
	if err := s.store.Write(sess.Token, sess.User); err != nil {
		s.log.Error("persisting session failed", "error", err)
		return s.msgs.Errorf(apperrors.Unknown, op, err)
	}
	return nil
}

// Logout revokes the token remotely (best effort), clears the store and
// resets navigation to the login entry point. Calling it when already
// logged out is harmless.
func (s *Service) Logout(ctx context.Context) error {
	tok, ok := s.store.Read()
	err := s.EndSession()
	if ok {
		s.Revoke(ctx, tok)
	}
	return err
}

// EndSession clears the store and resets navigation without network calls.
func (s *Service) EndSession() error {
	err := s.store.Clear()
	if err != nil {
		s.log.Error("clearing session failed", "error", err)
	}
	if s.nav != nil {
		s.nav.Reset(LoginPath)
	}
	return err
}

// Revoke asks the server to invalidate token. Failures are only logged.
func (s *Service) Revoke(ctx context.Context, token string) {
	ctx, cancel := context.WithTimeout(ctx, revokeTimeout)
	defer cancel()
	if err := s.be.Logout(ctx, token); err != nil {
		s.log.Debug("remote logout failed", "error", logging.Mask(err.Error()))
	}
}

// ForgotPassword asks the server to email a reset link. It never touches the store.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if err := s.be.ForgotPassword(ctx, email); err != nil {
		return s.classify(apperrors.OpForgotPassword, err)
	}
	return nil
}

// ResetPassword sets a new password with an emailed reset token. It never touches the store.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if err := s.be.ResetPassword(ctx, resetToken, newPassword); err != nil {
		return s.classify(apperrors.OpResetPassword, err)
	}
	return nil
}

// Me fetches the profile of the stored session from the server.
func (s *Service) Me(ctx context.Context) (Profile, error) {
	tok, ok := s.store.Read()
	if !ok {
		return Profile{}, s.msgs.Errorf(apperrors.InvalidCredentials, apperrors.OpMe, nil)
	}
	u, err := s.be.GetMe(ctx, tok)
	if err != nil {
		return Profile{}, s.classify(apperrors.OpMe, err)
	}
	return *u, nil
}

// Health returns the server version.
func (s *Service) Health(ctx context.Context) (string, error) {
	v, err := s.be.GetVersion(ctx)
	if err != nil {
		return "", s.classify(apperrors.OpHealth, err)
	}
	return v, nil
}

// classify maps a backend failure to a kind and localized message.
func (s *Service) classify(op apperrors.Operation, err error) *apperrors.E {
	kind := kindFor(op, err)
	attrs := []any{"op", op, "kind", kind, "error", logging.Mask(err.Error())}
	if kind == apperrors.NetworkUnreachable {
		attrs = append(attrs, "cause", httperrors.Classify(err))
	}
	s.log.Debug("request failed", attrs...)
	return s.msgs.Errorf(kind, op, err)
}

func kindFor(op apperrors.Operation, err error) apperrors.Kind {
	if errors.Is(err, context.Canceled) {
		return apperrors.Canceled
	}
	var se *backend.StatusError
	if !errors.As(err, &se) {
		var ue *url.Error
		if errors.As(err, &ue) {
			return apperrors.NetworkUnreachable
		}
		return apperrors.Unknown
	}

	switch code := se.StatusCode; {
	case code == http.StatusUnauthorized:
		return apperrors.InvalidCredentials
	case code == http.StatusBadRequest && op == apperrors.OpResetPassword:
		return apperrors.InvalidResetToken
	case code == http.StatusBadRequest && op == apperrors.OpRegister &&
		strings.Contains(strings.ToLower(se.Detail), "already registered"):
		return apperrors.Conflict
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		return apperrors.ValidationFailed
	case code == http.StatusConflict:
		return apperrors.Conflict
	case code >= 500:
		return apperrors.ServerUnavailable
	default:
		return apperrors.Unknown
	}
}
