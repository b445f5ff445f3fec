// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides thread-safe access to the OS credential store.
// It is the durable, origin-scoped storage under the session token store:
// every item name is prefixed with a namespace derived from the API origin,
// so sessions against different servers never see each other.
//
// Supported backends are macOS Keychain (through the `security` command, with
// the keyring library as fallback), Windows Credential Manager, Secret Service,
// KWallet and pass on Linux, an encrypted file store, and an in-memory store.
package keychain

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "eduautismo"

// PasswordEnv supplies the passphrase of the encrypted file backend.
const PasswordEnv = "EDUAUTISMO_KEYRING_PASSWORD"

// Backends accepted by Options.Backend.
const (
	BackendAuto     = "auto"
	BackendKeychain = "keychain"
	BackendFile     = "file"
	BackendMemory   = "memory"
)

// ErrNotFound is returned by Get for a missing item.
var ErrNotFound = errors.New("keychain: item not found")

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu        sync.RWMutex
	ring      keyring.Keyring
	backend   keychainBackend
	namespace string
}

// keychainBackend defines the interface for native keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// Options selects and configures the storage backend.
type Options struct {
	Backend string
	// Origin is the API base URL; it scopes every item.
	Origin string
	// FileDir is where the file backend keeps its encrypted items.
	FileDir string
	// Prompt asks for the file backend passphrase. Defaults to PasswordEnv, then the terminal.
	Prompt keyring.PromptFunc
}

// Open creates a Manager for opts.
func Open(opts Options) (*Manager, error) {
	ns := Namespace(opts.Origin)
	switch opts.Backend {
	case BackendMemory:
		return NewWithKeyring(keyring.NewArrayKeyring(nil), ns), nil
	case BackendFile:
		ring, err := openFileRing(opts)
		if err != nil {
			return nil, err
		}
		return NewWithKeyring(ring, ns), nil
	case BackendKeychain:
		return openNative(ns)
	case BackendAuto, "":
		if m, err := openNative(ns); err == nil {
			return m, nil
		}
		ring, err := openFileRing(opts)
		if err != nil {
			return nil, fmt.Errorf("no credential store available: %w", err)
		}
		return NewWithKeyring(ring, ns), nil
	default:
		return nil, fmt.Errorf("unknown keychain backend %q", opts.Backend)
	}
}

// NewWithKeyring wraps an already opened keyring.
func NewWithKeyring(ring keyring.Keyring, namespace string) *Manager {
	return &Manager{ring: ring, namespace: namespace}
}

// Namespace turns an API origin into a key prefix safe for every backend
// (including file names): "https://api.example:8443/x" becomes "api.example_8443".
func Namespace(origin string) string {
	host := origin
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return "default"
	}
	var b strings.Builder
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func openNative(ns string) (*Manager, error) {
	// Native security backend first on macOS
	if runtime.GOOS == "darwin" {
		if backend, err := newSecurityBackend(); err == nil {
			return &Manager{backend: backend, namespace: ns}, nil
		}
	}

	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	default:
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowed,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
	}
	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithKeyring(ring, ns), nil
}

func openFileRing(opts Options) (keyring.Keyring, error) {
	if opts.FileDir == "" {
		return nil, errors.New("file keyring directory not configured")
	}
	prompt := opts.Prompt
	if prompt == nil {
		if pw := os.Getenv(PasswordEnv); pw != "" {
			prompt = keyring.FixedStringPrompt(pw)
		} else {
			prompt = keyring.TerminalPrompt
		}
	}
	return keyring.Open(keyring.Config{
		ServiceName:      ServiceName,
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          opts.FileDir,
		FilePasswordFunc: prompt,
	})
}

// Namespace returns the prefix applied to every key.
func (m *Manager) Namespace() string { return m.namespace }

func (m *Manager) key(name string) string {
	return m.namespace + "." + name
}

// Set stores value under name. This method is thread-safe.
func (m *Manager) Set(name string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Set(m.key(name), string(value))
	}
	return m.ring.Set(keyring.Item{Key: m.key(name), Data: value, Label: ServiceName + " " + name})
}

// Get retrieves the value stored under name, or ErrNotFound.
// This method is thread-safe.
func (m *Manager) Get(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.backend != nil {
		v, err := m.backend.Get(m.key(name))
		if err != nil {
			return nil, err
		}
		if v == "" {
			return nil, ErrNotFound
		}
		return []byte(v), nil
	}

	it, err := m.ring.Get(m.key(name))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(it.Data) == 0 {
		return nil, ErrNotFound
	}
	return it.Data, nil
}

// Delete removes name. Removing a missing item is not an error.
// This method is thread-safe.
func (m *Manager) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Delete(m.key(name))
	}
	if err := m.ring.Remove(m.key(name)); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !os.IsNotExist(err) {
		return err
	}
	return nil
}
