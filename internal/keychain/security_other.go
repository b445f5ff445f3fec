// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build !darwin

package keychain

import (
	"errors"
	"runtime"
)

// errNoSecurityCLI is returned off macOS, where openNative goes straight to
// keyring's WinCred, Secret Service, KWallet or pass backends, and auto mode
// then falls back to the encrypted file keyring.
var errNoSecurityCLI = errors.New("keychain: the security CLI exists only on macOS, not " + runtime.GOOS)

type securityBackend struct{}

func newSecurityBackend() (*securityBackend, error) { return nil, errNoSecurityCLI }

func (*securityBackend) Set(string, string) error   { return errNoSecurityCLI }
func (*securityBackend) Get(string) (string, error) { return "", errNoSecurityCLI }
func (*securityBackend) Delete(string) error        { return errNoSecurityCLI }
