// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package store persists control plane records as JSON values keyed by
// (kind, key). The Badger implementation is the only backend; tests open it
// in memory.
package store
