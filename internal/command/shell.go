// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/novactl/internal/meta"
)

type shellScriptParams struct {
	Path string   `arg:"path" validate:"required"`
	Args []string `arg:"args,rest"`
}

type shellCompletionParams struct {
	Shell string `arg:"shell,optional" validate:"omitempty,oneof=bash zsh"`
}

func ShellCommandBuilder(meta meta.Meta, env *Env) *cli.Command {
	b := CategoryBuilder{
		Name:  "shell",
		Usage: "run admin scripts and set up the shell",
		Meta:  meta,
		Actions: []*cli.Command{
			Action[shellScriptParams]{
				Name:        "script",
				Usage:       "run a trusted script with arguments",
				Description: "The script runs with the operator's privileges and environment. Only run scripts you trust.",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *shellScriptParams) error {
					return env.Scripts.Run(ctx, p.Path, p.Args)
				},
			}.Build("shell", env),
			Action[shellCompletionParams]{
				Name:        "completion",
				Usage:       "print the shell completion script",
				Description: "SHELL defaults to the one named by $SHELL.",
				Run: func(_ context.Context, cmd *cli.Command, env *Env, p *shellCompletionParams) error {
					return WriteCompletion(env.Stdout, cmd.Root(), p.Shell)
				},
			}.Build("shell", env),
		},
	}
	return b.Build()
}
