// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"time"

	"eduautismo/cli/internal/manifest"
)

// New creates a backend API implementation for the resolved manifest.
// Returns HTTP client (real backend).
func New(m *manifest.Manifest, timeout time.Duration, userAgent string) API {
	return newHTTP(m, timeout, userAgent)
}
