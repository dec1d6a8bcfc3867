// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package resolver maps abbreviated, case-insensitive operator input onto
// exactly one entry of a named candidate set. The same algorithm serves both
// category and action lookups.
package resolver
