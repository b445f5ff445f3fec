// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"eduautismo/cli/internal/auth"
	apperrors "eduautismo/cli/internal/errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var whoamiOffline bool

// whoamiCmd represents the whoami command for displaying current authentication state.
// It validates the stored session with the backend and shows the account it belongs to.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show current authenticated account",
	Long: `The whoami command displays the account of the current session. It validates
the token with the server; a token the server rejects ends the session. When the
server cannot be reached, the profile saved at login is shown instead.`,
	Annotations: map[string]string{routeAnnotation: "/profile"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		if whoamiOffline {
			printProfile(*a.state.State().User)
			return nil
		}

		var p auth.Profile
		err := withSpinner("Checking session", func() error {
			var err error
			p, err = a.state.Verify(cmd.Context())
			return err
		})
		switch {
		case err == nil:
			printProfile(p)
			return nil
		case apperrors.KindOf(err) == apperrors.InvalidCredentials:
			pterm.Warning.Println("The server no longer accepts your session.")
			printNotLoggedIn()
			return errReported
		case apperrors.KindOf(err).Retryable():
			// Final fallback to the profile saved at login
			if st := a.state.State(); st.User != nil {
				pterm.Warning.Println("Server unreachable, showing the saved profile.")
				printProfile(*st.User)
				return nil
			}
		}
		return a.report("Could not load your profile", err)
	},
}

func init() {
	whoamiCmd.Flags().BoolVar(&whoamiOffline, "offline", false, "Show the saved profile without asking the server")
	rootCmd.AddCommand(whoamiCmd)
}

func printProfile(p auth.Profile) {
	fmt.Println(getWhoAmIPhrase(p.DisplayName()))
	if p.Email != "" && p.Email != p.DisplayName() {
		fmt.Printf("   Email: %s\n", p.Email)
	}
	if p.Role != "" {
		fmt.Printf("   Role: %s\n", p.Role)
	}
	if p.Institution != "" {
		fmt.Printf("   Institution: %s\n", p.Institution)
	}
}

// getWhoAmIPhrase returns a friendly phrase with the user's identifier
func getWhoAmIPhrase(identifier string) string {
	return fmt.Sprintf("👤 Current user: %s", identifier)
}
