// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eduautismo/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statusSkipServer bool

// statusCmd summarizes the session and where it is kept.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session, storage and server status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		st := a.state.State()

		var b strings.Builder
		fmt.Fprintf(&b, "State:     %s\n", st.Phase)
		if st.User != nil {
			fmt.Fprintf(&b, "User:      %s\n", st.User.DisplayName())
		}
		if exp, ok := a.store.ExpiresAt(); ok {
			fmt.Fprintf(&b, "Expires:   %s\n", exp.Local().Format(time.RFC1123))
		} else if st.IsAuthenticated {
			b.WriteString("Expires:   never\n")
		}
		fmt.Fprintf(&b, "API:       %s\n", a.manifest.BaseURL)
		fmt.Fprintf(&b, "Storage:   %s (%s)\n", a.cfg.Storage.Backend, a.keys.Namespace())
		fmt.Fprintf(&b, "Broadcast: %s\n", a.cfg.Broadcast.Driver)
		fmt.Fprintf(&b, "Locale:    %s", a.msgs.Locale())
		pterm.Println(pterm.DefaultBox.WithTitle("Session").WithPadding(1).Sprint(b.String()))

		if statusSkipServer {
			return nil
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		var version string
		err := withSpinner("Contacting server", func() error {
			var err error
			version, err = a.svc.Health(ctx)
			return err
		})
		if err != nil {
			pterm.Warning.Println(logging.PresentError("Server", err))
			return nil
		}
		if version == "" {
			version = "unknown version"
		}
		pterm.Success.Printf("Server reachable (%s)\n", version)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusSkipServer, "offline", false, "Do not contact the server")
	rootCmd.AddCommand(statusCmd)
}
