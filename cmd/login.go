// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"eduautismo/cli/internal/forms"
	"eduautismo/cli/internal/guard"
	"eduautismo/cli/internal/terminal"

	"github.com/spf13/cobra"
)

var loginEmail string

// loginCmd signs in with email and password and stores the session in the
// credential store.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Sign in with your email and password",
	Long: `The login command exchanges your email and password for an access token and
keeps it, together with your profile, in the OS credential store. The password is
read without echo; it can also be piped on stdin.

If already logged in, it will skip the authentication flow.`,
	Annotations: map[string]string{routeAnnotation: guard.LoginPath},
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		if st := a.state.State(); st.IsAuthenticated {
			fmt.Printf("Already logged in as %s\n", st.User.DisplayName())
			return nil
		}

		email, err := promptIfEmpty(loginEmail, "Email: ")
		if err != nil {
			return err
		}
		password, err := terminal.ReadSecret("Password: ")
		if err != nil {
			return err
		}
		if errs := a.forms.Validate(forms.LoginForm{Email: email, Password: password}); errs != nil {
			return printFieldErrors(errs)
		}

		stop := spinWhileLoading(a.state, "Signing in")
		err = a.state.Login(cmd.Context(), email, password)
		stop()
		if err != nil {
			return a.report("Login failed", err)
		}

		a.router.Navigate(guard.DashboardPath)
		showLoginGreeting(a.state.State())
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}
