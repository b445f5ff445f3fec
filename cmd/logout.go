// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// logoutCmd represents the logout command for clearing authentication state.
// It removes the stored session and notifies the backend (best-effort remote logout).
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved session",
	Long: `The logout command clears the session from the local credential store and asks
the server to invalidate the token (best-effort). Any sign-in still in progress in
this process is abandoned, and other terminals watching the session are notified.

Running it while logged out is harmless.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		wasIn := a.state.State().IsAuthenticated
		if err := a.state.Logout(cmd.Context()); err != nil {
			return a.report("Logout failed", err)
		}
		if !wasIn {
			fmt.Println("You were not logged in; nothing to remove.")
			return nil
		}
		fmt.Println("✅ Your session has been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
