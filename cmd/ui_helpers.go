// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sort"
	"sync"
	"time"

	"eduautismo/cli/internal/auth"
	apperrors "eduautismo/cli/internal/errors"
	"eduautismo/cli/internal/forms"
	"eduautismo/cli/internal/httperrors"
	"eduautismo/cli/internal/logging"
	"eduautismo/cli/internal/terminal"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// startInlineSpinner starts a simple inline spinner animation on a single line.
// It displays rotating animation frames followed by the provided text, updating
// the same line in the terminal until the returned function is called, which
// clears the line again.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	cursor.Hide()
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
			select {
			case <-stop:
				// Clear the spinner line completely, then return
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s", line)
				i++
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
			cursor.Show()
		})
	}
}

// spinWhileLoading shows a spinner with text for as long as the container
// reports a request in flight. The returned function detaches it.
func spinWhileLoading(c *auth.Container, text string) func() {
	if !terminal.IsInteractive() {
		return func() {}
	}
	var (
		mu   sync.Mutex
		stop func()
	)
	halt := func() {
		if stop != nil {
			stop()
			stop = nil
		}
	}
	unsubscribe := c.Subscribe(func(s auth.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case s.IsLoading && stop == nil:
			stop = startInlineSpinner(os.Stdout, text, spinnerFrames, 120*time.Millisecond)
		case !s.IsLoading:
			halt()
		}
	})
	return func() {
		unsubscribe()
		mu.Lock()
		halt()
		mu.Unlock()
	}
}

// withSpinner runs fn behind an inline spinner when attached to a terminal.
func withSpinner(text string, fn func() error) error {
	if !terminal.IsInteractive() {
		return fn()
	}
	stop := startInlineSpinner(os.Stdout, text, spinnerFrames, 120*time.Millisecond)
	err := fn()
	stop()
	return err
}

// report prints a failed operation with its localized message, plus
// troubleshooting hints when the server was unreachable.
func (a *app) report(context string, err error) error {
	if apperrors.KindOf(err) == apperrors.Canceled {
		pterm.Warning.Println(apperrors.MessageOf(err))
		return errReported
	}
	pterm.Error.Println(logging.PresentError(context, err))
	if apperrors.KindOf(err) == apperrors.NetworkUnreachable {
		httperrors.Present(err, a.cfg.APIURL)
	}
	if apperrors.KindOf(err).Retryable() {
		pterm.Info.Println("This may be temporary, try again in a moment.")
	}
	return errReported
}

// printFieldErrors renders validation failures as a bullet list.
func printFieldErrors(errs forms.FieldErrors) error {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var items []pterm.BulletListItem
	for _, f := range fields {
		for _, msg := range errs[f] {
			items = append(items, pterm.BulletListItem{Level: 0, Text: fieldLabel(f) + ": " + msg})
		}
	}
	pterm.Error.Println("Please fix the following:")
	_ = pterm.DefaultBulletList.WithItems(items).Render()
	return errReported
}

func fieldLabel(field string) string {
	switch field {
	case "confirm_password":
		return "Confirm password"
	case "email":
		return "Email"
	case "name":
		return "Name"
	case "password":
		return "Password"
	case "token":
		return "Reset token"
	case forms.FormField:
		return "Form"
	default:
		return field
	}
}

// promptIfEmpty returns v, or asks for it when empty.
func promptIfEmpty(v, prompt string) (string, error) {
	if v != "" {
		return v, nil
	}
	return terminal.ReadLine(prompt)
}

// readNewPassword asks for a password and its confirmation.
func readNewPassword() (password, confirm string, err error) {
	if password, err = terminal.ReadSecret("New password: "); err != nil {
		return "", "", err
	}
	if confirm, err = terminal.ReadSecret("Confirm password: "); err != nil {
		return "", "", err
	}
	return password, confirm, nil
}

// showLoginGreeting displays a friendly greeting with the user's name after login.
func showLoginGreeting(s auth.Snapshot) {
	if s.User == nil {
		fmt.Println("✅ Login successful!")
		return
	}
	fmt.Println(getRandomLoginGreeting(s.User.DisplayName()))
}

// getRandomLoginGreeting returns a random greeting phrase with the user's identifier
func getRandomLoginGreeting(identifier string) string {
	greetings := []string{
		"🎉 Welcome back, %s!",
		"✨ Great to see you, %s!",
		"🚀 You're all set, %s!",
		"👋 Hello %s! Your students are waiting.",
		"💫 Successfully authenticated as %s",
		"🌟 Welcome aboard, %s!",
		"✅ Authentication complete! Hi %s!",
		"🎯 You're in, %s!",
		"🔓 Access granted! Welcome %s!",
	}
	return fmt.Sprintf(greetings[rand.IntN(len(greetings))], identifier)
}
