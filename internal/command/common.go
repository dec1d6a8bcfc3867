// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/novactl/internal/attrs"
	"github.com/staranto/novactl/internal/fault"
	"github.com/staranto/novactl/internal/meta"
	"github.com/staranto/novactl/internal/output"
	"github.com/staranto/novactl/internal/store"
)

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// BuildAttrs constructs the default column list of a list action.
func BuildAttrs(defaults ...string) attrs.AttrList {
	return attrs.MustParse(strings.Join(defaults, ","))
}

// Emit renders records through the default columns, honoring the root
// output flags.
func Emit(cmd *cli.Command, env *Env, records any, defaults ...string) error {
	cols := BuildAttrs(defaults...)
	log.Debugf("attrs: %v", cols.String())
	return output.SliceDiceSpit(records, cols, output.OptionsFromCommand(cmd), env.Stdout)
}

// CategoryBuilder collects the actions of one category into a cli.Command.
type CategoryBuilder struct {
	Name    string
	Usage   string
	Meta    meta.Meta
	Actions []*cli.Command
}

// Build returns a configured cli.Command from the builder.
func (b *CategoryBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      b.Name,
		Usage:     b.Usage,
		UsageText: fmt.Sprintf("novactl %s <action> [args...]", b.Name),
		Metadata: map[string]any{
			"meta": b.Meta,
		},
		HideHelpCommand: true,
		Commands:        b.Actions,
	}
}

// lookup loads one record and turns a missing key into a NotFound fault
// naming what was looked for.
func lookup[T any](ctx context.Context, s store.Store, kind, key, what string) (*T, error) {
	v, err := store.Get[T](ctx, s, kind, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fault.NotFoundf("%s %s not found", what, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s: %w", what, key, err)
	}
	return v, nil
}
