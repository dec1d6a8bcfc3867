// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// SchemaVersion is written by Sync and checked before any command other
// than the db group touches the store.
const SchemaVersion = 1

var (
	ErrNotFound      = errors.New("not found")
	ErrExists        = errors.New("already exists")
	ErrUninitialized = errors.New("store not initialized")
)

// Entry is one raw record returned by List.
type Entry struct {
	Key   string
	Value []byte
}

// Store is kept minimal so implementations can be swapped.
type Store interface {
	Get(ctx context.Context, kind, key string) ([]byte, error)
	// List returns every record of kind ordered by key.
	List(ctx context.Context, kind string) ([]Entry, error)
	// Create fails with ErrExists when the key is taken.
	Create(ctx context.Context, kind, key string, value []byte) error
	// Update fails with ErrNotFound when the key is absent.
	Update(ctx context.Context, kind, key string, value []byte) error
	// Destroy fails with ErrNotFound when the key is absent.
	Destroy(ctx context.Context, kind, key string) error
	// Version reports the schema version or ErrUninitialized.
	Version(ctx context.Context) (int, error)
	// Sync brings the schema marker up to SchemaVersion and returns it.
	Sync(ctx context.Context) (int, error)
	Close() error
}

// Get loads and decodes a single record.
func Get[T any](ctx context.Context, s Store, kind, key string) (*T, error) {
	raw, err := s.Get(ctx, kind, key)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", kind, key, err)
	}
	return &out, nil
}

// List decodes every record of kind, keeping those for which keep returns
// true. A nil keep retains everything.
func List[T any](ctx context.Context, s Store, kind string, keep func(*T) bool) ([]*T, error) {
	entries, err := s.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(entries))
	for _, e := range entries {
		var v T
		if err := json.Unmarshal(e.Value, &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s %s: %w", kind, e.Key, err)
		}
		if keep == nil || keep(&v) {
			out = append(out, &v)
		}
	}
	return out, nil
}

func Create[T any](ctx context.Context, s Store, kind, key string, v *T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", kind, key, err)
	}
	return s.Create(ctx, kind, key, raw)
}

func Update[T any](ctx context.Context, s Store, kind, key string, v *T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", kind, key, err)
	}
	return s.Update(ctx, kind, key, raw)
}
