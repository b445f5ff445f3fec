// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package forms validates user input before it reaches the session service.
package forms

// LoginForm contains the fields required for user login.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email,min=5,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// RegisterForm contains the fields required for user registration.
type RegisterForm struct {
	Name            string `json:"name" validate:"required,min=3,max=255"`
	Email           string `json:"email" validate:"required,email,min=5,max=255"`
	Password        string `json:"password" validate:"required,min=8,max=128,strongpassword"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
}

// ForgotPasswordForm asks for the account email.
type ForgotPasswordForm struct {
	Email string `json:"email" validate:"required,email,min=5,max=255"`
}

// ResetPasswordForm carries the emailed token and the new password.
type ResetPasswordForm struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=128,strongpassword"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
}
