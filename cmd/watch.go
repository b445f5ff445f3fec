// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eduautismo/cli/internal/auth"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// watchCmd follows the session as other terminals log in and out.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow session changes made by other terminals",
	Long: `The watch command prints the session state and then a new line every time
another eduautismo process on this machine (or, with the redis broadcast driver,
anywhere sharing the channel) logs in or out against the same API. Stop it with
Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		printSnapshot(a.state.State())
		unsubscribe := a.state.Subscribe(printSnapshot)
		defer unsubscribe()

		pterm.Info.Printf("Watching %s via %s broadcast (Ctrl-C to stop)\n", a.keys.Namespace(), a.cfg.Broadcast.Driver)
		err := a.state.Watch(cmd.Context(), a.bus)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func printSnapshot(s auth.Snapshot) {
	ts := time.Now().Format(time.TimeOnly)
	if s.IsAuthenticated && s.User != nil {
		fmt.Printf("%s  %s as %s\n", ts, s.Phase, s.User.DisplayName())
		return
	}
	fmt.Printf("%s  %s\n", ts, s.Phase)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
