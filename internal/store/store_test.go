// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID    string `json:"id"`
	Color string `json:"color"`
}

func openTest(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateGetUpdateDestroy(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	require.NoError(t, Create(ctx, s, "widget", "w1", &widget{ID: "w1", Color: "red"}))

	got, err := Get[widget](ctx, s, "widget", "w1")
	require.NoError(t, err)
	assert.Equal(t, "red", got.Color)

	got.Color = "blue"
	require.NoError(t, Update(ctx, s, "widget", "w1", got))

	got, err = Get[widget](ctx, s, "widget", "w1")
	require.NoError(t, err)
	assert.Equal(t, "blue", got.Color)

	require.NoError(t, s.Destroy(ctx, "widget", "w1"))
	_, err = Get[widget](ctx, s, "widget", "w1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_Exists(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	require.NoError(t, Create(ctx, s, "widget", "w1", &widget{ID: "w1"}))
	err := Create(ctx, s, "widget", "w1", &widget{ID: "w1"})
	assert.ErrorIs(t, err, ErrExists)
}

func TestUpdateDestroy_Missing(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	assert.ErrorIs(t, Update(ctx, s, "widget", "nope", &widget{}), ErrNotFound)
	assert.ErrorIs(t, s.Destroy(ctx, "widget", "nope"), ErrNotFound)
}

func TestList_OrderedAndScopedToKind(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	for _, id := range []string{"b", "c", "a"} {
		require.NoError(t, Create(ctx, s, "widget", id, &widget{ID: id, Color: "red"}))
	}
	require.NoError(t, Create(ctx, s, "widgetx", "z", &widget{ID: "z"}))
	require.NoError(t, Create(ctx, s, "gadget", "a", &widget{ID: "g"}))

	all, err := List[widget](ctx, s, "widget", nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
	assert.Equal(t, "c", all[2].ID)

	some, err := List(ctx, s, "widget", func(w *widget) bool { return w.ID != "b" })
	require.NoError(t, err)
	assert.Len(t, some, 2)
}

func TestVersionAndSync(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	_, err := s.Version(ctx)
	assert.ErrorIs(t, err, ErrUninitialized)

	v, err := s.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)

	v, err = s.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)

	// Repeated sync is a no-op.
	v, err = s.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)

	entries, err := s.List(ctx, "widget")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
