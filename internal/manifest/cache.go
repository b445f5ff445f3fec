// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package manifest

import "sync"

var (
	// Resolved manifests keyed by base URL.
	// Lives only in process memory and is cleared when CLI exits.
	cache     = map[string]*Manifest{}
	cacheLock sync.RWMutex
)

// GetCached returns the cached manifest for baseURL, or nil if not cached.
func GetCached(baseURL string) *Manifest {
	cacheLock.RLock()
	defer cacheLock.RUnlock()
	return cache[baseURL]
}

// SetCached stores the manifest in RAM.
func SetCached(m *Manifest) {
	cacheLock.Lock()
	defer cacheLock.Unlock()
	cache[m.BaseURL] = m
}

