// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"eduautismo/cli/internal/forms"
	"eduautismo/cli/internal/guard"
	"eduautismo/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	forgotEmail string
	resetToken  string
)

// forgotPasswordCmd asks the server to email a password reset link.
var forgotPasswordCmd = &cobra.Command{
	Use:         "forgot-password",
	Short:       "Email yourself a password reset link",
	Annotations: map[string]string{routeAnnotation: guard.ForgotPasswordPath},
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		email, err := promptIfEmpty(forgotEmail, "Email: ")
		if err != nil {
			return err
		}
		if errs := a.forms.Validate(forms.ForgotPasswordForm{Email: email}); errs != nil {
			return printFieldErrors(errs)
		}

		err = withSpinner("Requesting reset link", func() error {
			return a.svc.ForgotPassword(cmd.Context(), email)
		})
		if err != nil {
			return a.report("Password recovery failed", err)
		}
		pterm.Success.Printf("If %s has an account, a reset link is on its way.\n", email)
		fmt.Println("   Then run 'eduautismo reset-password --token <token>'.")
		return nil
	},
}

// resetPasswordCmd sets a new password with the emailed token.
var resetPasswordCmd = &cobra.Command{
	Use:         "reset-password",
	Short:       "Set a new password with an emailed reset token",
	Annotations: map[string]string{routeAnnotation: guard.ResetPasswordPath},
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		token := resetToken
		if token == "" {
			const prompt = "Reset token: "
			var err error
			if token, err = terminal.ReadLine(prompt); err != nil {
				return err
			}
			// hide the token once entered
			terminal.ClearPreviousLines(len(prompt) + len(token))
		}
		password, confirm, err := readNewPassword()
		if err != nil {
			return err
		}
		form := forms.ResetPasswordForm{Token: token, Password: password, ConfirmPassword: confirm}
		if errs := a.forms.Validate(form); errs != nil {
			return printFieldErrors(errs)
		}

		err = withSpinner("Updating password", func() error {
			return a.svc.ResetPassword(cmd.Context(), token, password)
		})
		if err != nil {
			return a.report("Password reset failed", err)
		}
		pterm.Success.Println("Password updated.")
		fmt.Println("   Run 'eduautismo login' to sign in with it.")
		return nil
	},
}

func init() {
	forgotPasswordCmd.Flags().StringVarP(&forgotEmail, "email", "e", "", "Account email (prompted when omitted)")
	resetPasswordCmd.Flags().StringVarP(&resetToken, "token", "t", "", "Reset token from the email (prompted when omitted)")
	rootCmd.AddCommand(forgotPasswordCmd, resetPasswordCmd)
}
