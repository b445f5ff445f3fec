// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"time"

	"eduautismo/cli/internal/backend"
	"eduautismo/cli/internal/manifest"

	"github.com/spf13/cobra"
)

var (
	// Version holds the CLI version information.
	// This value is typically set at build time using -ldflags.
	Version = "0.0.0-dev"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Show CLI and backend version information",
	Annotations: map[string]string{standaloneAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return printVersion(cmd)
	},
}

// printVersion prints the CLI version and asks the configured server for its own.
func printVersion(cmd *cobra.Command) error {
	backendVersion := "unknown"
	if cfg, err := loadConfig(); err == nil {
		if m, err := manifest.Resolve(cfg.APIURL, cfg.Endpoints); err == nil {
			ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
			defer cancel()
			be := backend.New(m, cfg.RequestTimeout.Duration, "eduautismo-cli/"+Version)
			if v, err := be.GetVersion(ctx); err == nil && v != "" {
				backendVersion = v
			}
		}
	}
	fmt.Printf("eduautismo %s\nbackend %s\n", Version, backendVersion)
	return nil
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
