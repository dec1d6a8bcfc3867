// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package statedir locates the directory holding novactl's local state:
// the embedded store and the API log when no other location is configured.
package statedir

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir resolves the base state directory.
// Precedence:
//  1. NOVACTL_STATE_DIR, if set and non-empty
//  2. os.UserCacheDir()/novactl
//
// Returns ("", false) if a base cannot be resolved.
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("NOVACTL_STATE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "novactl"), true
	}
	return "", false
}

// Path joins elem beneath the state directory, falling back to the
// working directory when no base resolves.
func Path(elem ...string) string {
	base, ok := Dir()
	if !ok {
		base = "."
	}
	return filepath.Join(append([]string{base}, elem...)...)
}

// EnsureParent creates the directory that will hold path.
func EnsureParent(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}
	return nil
}
