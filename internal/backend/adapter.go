// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides interfaces and implementations for communicating with the EduAutismo API.
// It defines the API contract for authentication, profile lookup and health checking.
// The package includes both interface definitions and HTTP-based implementations.
package backend

import "context"

// API defines backend operations the CLI depends on.
// Implementations may call real HTTP endpoints or provide mocks for tests.
//
// Non-2xx answers are returned as *StatusError; failures without any
// response (DNS, refused, timeout) are returned unchanged.
type API interface {
	// Login exchanges credentials for a token. The body is form-urlencoded
	// with the email in the "username" field.
	Login(ctx context.Context, email, password string) (*TokenResponse, error)
	// Register creates an account. The response may lack a token.
	Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error)
	// ForgotPassword asks the server to email a reset link.
	ForgotPassword(ctx context.Context, email string) error
	// ResetPassword sets a new password using an emailed reset token.
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	// Logout invalidates the access token on the backend.
	Logout(ctx context.Context, accessToken string) error
	// GetMe retrieves the profile that owns accessToken.
	GetMe(ctx context.Context, accessToken string) (*User, error)
	// GetVersion calls the health endpoint and returns the server version when available.
	GetVersion(ctx context.Context) (string, error)
}

// TokenResponse is the answer of the login and register endpoints.
type TokenResponse struct {
	AccessToken string
	TokenType   string
	// User is nil when the server did not include a profile.
	User *User
}

// RegisterRequest is the JSON body of the register endpoint.
type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name,omitempty"`
	Role        string `json:"role,omitempty"`
	Institution string `json:"institution,omitempty"`
}
