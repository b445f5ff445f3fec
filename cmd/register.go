// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"eduautismo/cli/internal/backend"
	"eduautismo/cli/internal/forms"
	"eduautismo/cli/internal/guard"

	"github.com/spf13/cobra"
)

var (
	registerName        string
	registerEmail       string
	registerInstitution string
)

// registerCmd creates an account and signs in with it.
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Long: `The register command creates a new dashboard account. When the server answers
with a token the session starts right away; otherwise the CLI signs in with the
new credentials.

Passwords need at least 8 characters with an uppercase letter, a lowercase
letter, a digit and a special character.`,
	Annotations: map[string]string{routeAnnotation: guard.RegisterPath},
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		if st := a.state.State(); st.IsAuthenticated {
			fmt.Printf("Already logged in as %s\n", st.User.DisplayName())
			fmt.Println("   Run 'eduautismo logout' first to create another account.")
			return nil
		}

		name, err := promptIfEmpty(registerName, "Name: ")
		if err != nil {
			return err
		}
		email, err := promptIfEmpty(registerEmail, "Email: ")
		if err != nil {
			return err
		}
		password, confirm, err := readNewPassword()
		if err != nil {
			return err
		}
		form := forms.RegisterForm{Name: name, Email: email, Password: password, ConfirmPassword: confirm}
		if errs := a.forms.Validate(form); errs != nil {
			return printFieldErrors(errs)
		}

		stop := spinWhileLoading(a.state, "Creating your account")
		err = a.state.Register(cmd.Context(), backend.RegisterRequest{
			Name:        name,
			FullName:    name,
			Email:       email,
			Password:    password,
			Institution: registerInstitution,
		})
		stop()
		if err != nil {
			return a.report("Registration failed", err)
		}

		a.router.Navigate(guard.DashboardPath)
		showLoginGreeting(a.state.State())
		return nil
	},
}

func init() {
	f := registerCmd.Flags()
	f.StringVarP(&registerName, "name", "n", "", "Your full name (prompted when omitted)")
	f.StringVarP(&registerEmail, "email", "e", "", "Account email (prompted when omitted)")
	f.StringVar(&registerInstitution, "institution", "", "School or clinic you work for")
	rootCmd.AddCommand(registerCmd)
}
