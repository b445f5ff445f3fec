// Package xdg provides helpers to resolve XDG Base Directory paths for eduautismo.
// Configuration lives under the config directory; the file keyring backend and
// the session broadcast marker live under the state directory.
//
// Directories are created with private permissions (0700) since both may hold
// material derived from the user's session.
package xdg

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used below every XDG base directory.
const AppName = "eduautismo"

// ConfigDir returns the XDG config directory for eduautismo.
// It falls back to ~/.config/eduautismo when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for eduautismo.
// It falls back to ~/.local/state/eduautismo when XDG_STATE_HOME is unset.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

// SubDir returns a private directory below the state directory, creating it if missing.
func SubDir(name string) (string, error) {
	base, err := StateDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

func resolve(env, homeRel string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, homeRel)
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
