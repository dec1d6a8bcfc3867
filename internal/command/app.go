// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"sort"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/staranto/novactl/internal/config"
	mylog "github.com/staranto/novactl/internal/log"
	"github.com/staranto/novactl/internal/meta"
	"github.com/staranto/novactl/internal/rpc"
)

// InitApp builds the command tree. Categories appear in the order below,
// which is also the order candidates are listed in diagnostics.
func InitApp(ctx context.Context, args []string, cfg config.Type, env *Env) *cli.Command {
	meta := meta.Meta{
		Args:     args,
		Config:   cfg,
		Settings: env.Settings,
		Context:  ctx,
		Stdout:   env.Stdout,
		Stderr:   env.Stderr,
	}

	app := &cli.Command{
		Name:            "novactl",
		Usage:           "cloud administration",
		UsageText:       "novactl [flags] <category> <action> [args...]",
		Flags:           NewRootFlags(cfg, env.Settings),
		HideHelpCommand: true,
		Writer:          env.Stdout,
		ErrWriter:       env.Stderr,
		Metadata: map[string]any{
			"meta": meta,
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				mylog.Verbose()
			}
			env.Settings.StorePath = cmd.String("store")
			env.Settings.BusURL = cmd.String("bus")

			if rpc.RequestID(ctx) == "" {
				ctx = rpc.WithRequestID(ctx, "req-"+uuid.NewString())
			}
			log.WithFields(log.Fields{
				"request_id": rpc.RequestID(ctx),
				"store":      env.Settings.StorePath,
			}).Debug("starting")
			return ctx, nil
		},
	}

	app.Commands = append(app.Commands,
		UserCommandBuilder(meta, env),
		ProjectCommandBuilder(meta, env),
		RoleCommandBuilder(meta, env),
		ShellCommandBuilder(meta, env),
		VpnCommandBuilder(meta, env),
		FixedCommandBuilder(meta, env),
		FloatingCommandBuilder(meta, env),
		NetworkCommandBuilder(meta, env),
		ServiceCommandBuilder(meta, env),
		LogCommandBuilder(meta, env),
		DbCommandBuilder(meta, env),
		VolumeCommandBuilder(meta, env),
	)

	// Make sure flags are sorted for the --help text.
	sort.Slice(app.Flags, func(i, j int) bool {
		return app.Flags[i].Names()[0] < app.Flags[j].Names()[0]
	})

	// Faults carry their own exit codes; main reports them and exits, so
	// urfave must not.
	quiet := func(context.Context, *cli.Command, error) {}
	var walk func(*cli.Command)
	walk = func(c *cli.Command) {
		c.ExitErrHandler = quiet
		for _, sub := range c.Commands {
			walk(sub)
		}
	}
	walk(app)

	return app
}
