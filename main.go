// Package main is the entry point for the EduAutismo CLI application.
// It signs users in to the EduAutismo dashboard API and manages their session.
package main

import (
	"eduautismo/cli/cmd"
)

// main is the entry point for the EduAutismo CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
