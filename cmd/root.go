// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the EduAutismo dashboard.
// It implements the account commands (login, register, password recovery,
// logout) and the session inspection commands on top of the session layer,
// using the Cobra CLI framework and a pterm based terminal UI.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"eduautismo/cli/internal/config"
	"eduautismo/cli/internal/guard"
	"eduautismo/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// Command annotations read by the root hooks.
const (
	// routeAnnotation names the dashboard route a command opens. The route
	// guard runs before the command and may refuse it.
	routeAnnotation = "route"
	// standaloneAnnotation marks commands that work without the session layer.
	standaloneAnnotation = "standalone"
)

// errReported is returned by commands that already printed their failure.
var errReported = errors.New("reported")

var (
	flagAPIURL  string
	flagLocale  string
	flagStorage string
	flagVerbose bool
	showVersion bool

	// current is the app of the running command.
	current *app
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "eduautismo",
	Short: "EduAutismo dashboard from the command line",
	Long: `eduautismo signs you in to the EduAutismo dashboard API and keeps the session
in your OS credential store. Commands that open dashboard pages require an
active session; the others work signed out.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !needsSession(cmd) {
			return nil
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logging.New(os.Stderr, cfg.LogLevel, flagVerbose || logging.Verbose())
		a, err := newApp(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		current = a
		if route := cmd.Annotations[routeAnnotation]; route != "" {
			return a.enter(route)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeApp()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			return printVersion(cmd)
		}
		return cmd.Help()
	},
}

// needsSession reports whether cmd runs on top of the session layer.
func needsSession(cmd *cobra.Command) bool {
	if cmd == cmd.Root() || cmd.Name() == "help" {
		return false
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[standaloneAnnotation] != "" || c.Name() == "completion" {
			return false
		}
	}
	return true
}

// loadConfig reads the layered configuration and applies the global flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagAPIURL != "" {
		cfg.APIURL = strings.TrimSpace(flagAPIURL)
	}
	if flagLocale != "" {
		cfg.Locale = flagLocale
	}
	if flagStorage != "" {
		cfg.Storage.Backend = flagStorage
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// enter runs the route guard for route. An expired session is dropped first
// so the guard sees the real state.
func (a *app) enter(route string) error {
	if a.state.CheckExpiry() {
		pterm.Warning.Println("Your session has expired.")
	}
	d, _ := a.router.Navigate(route)
	if d.Allow {
		return nil
	}
	printNotLoggedIn()
	if next, ok := guard.NextTarget(d.Redirect); ok {
		fmt.Printf("   You'll be taken back to %s afterwards.\n", next)
	}
	return errReported
}

func printNotLoggedIn() {
	fmt.Println("🔒 You're not logged in yet!")
	fmt.Println("   Run 'eduautismo login' to get started.")
}

func closeApp() error {
	err := current.Close()
	current = nil
	return err
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during execution.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	// PersistentPostRunE is skipped when the command fails
	_ = closeApp()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI and backend version information")
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagAPIURL, "api-url", "", "API base URL (overrides config)")
	pf.StringVar(&flagLocale, "locale", "", "Message language: en or pt-BR")
	pf.StringVar(&flagStorage, "storage", "", "Credential store: auto, keychain, file or memory")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Log requests and session events to stderr")
}
