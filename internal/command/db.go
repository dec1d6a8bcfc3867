// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/novactl/internal/fault"
	"github.com/staranto/novactl/internal/meta"
	"github.com/staranto/novactl/internal/store"
)

// The db group works on the raw store so it can bring an uninitialized
// or outdated one up to date.
func DbCommandBuilder(meta meta.Meta, env *Env) *cli.Command {
	b := CategoryBuilder{
		Name:  "db",
		Usage: "initialize and inspect the state store",
		Meta:  meta,
		Actions: []*cli.Command{
			Action[none]{
				Name:  "sync",
				Usage: "bring the store schema up to date",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, _ *none) error {
					s, err := env.RawStore()
					if err != nil {
						return err
					}
					v, err := s.Sync(ctx)
					if err != nil {
						return fault.CollaboratorError("store sync failed", "", err)
					}
					fmt.Fprintln(env.Stdout, v)
					return nil
				},
			}.Build("db", env),
			Action[none]{
				Name:  "version",
				Usage: "print the store schema version",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, _ *none) error {
					s, err := env.RawStore()
					if err != nil {
						return err
					}
					v, err := s.Version(ctx)
					if errors.Is(err, store.ErrUninitialized) {
						return fault.CollaboratorError("store is not initialized", syncHint, err)
					}
					if err != nil {
						return fault.CollaboratorError("cannot read store version", "", err)
					}
					fmt.Fprintln(env.Stdout, v)
					return nil
				},
			}.Build("db", env),
		},
	}
	return b.Build()
}
