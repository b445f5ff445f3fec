// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var tokenShowExpiry bool

// tokenCmd prints the stored access token for use with other HTTP tools.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print the access token of the current session",
	Long: `The token command prints the stored access token so it can be passed to other
tools, for example: curl -H "Authorization: Bearer $(eduautismo token)" ...`,
	Annotations: map[string]string{routeAnnotation: "/settings/token"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		tok, ok := a.store.Read()
		if !ok {
			printNotLoggedIn()
			return errReported
		}
		fmt.Println(tok)
		if tokenShowExpiry {
			exp, ok := a.store.ExpiresAt()
			if !ok {
				fmt.Println("expires: never")
				return nil
			}
			fmt.Printf("expires: %s (in %s)\n", exp.Local().Format(time.RFC1123), time.Until(exp).Round(time.Second))
		}
		return nil
	},
}

func init() {
	tokenCmd.Flags().BoolVar(&tokenShowExpiry, "expiry", false, "Also print when the token expires")
	rootCmd.AddCommand(tokenCmd)
}
