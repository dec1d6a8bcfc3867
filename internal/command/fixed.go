// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/novactl/internal/meta"
	"github.com/staranto/novactl/internal/network"
)

type hostParams struct {
	Host string `arg:"host,optional"`
}

func FixedCommandBuilder(meta meta.Meta, env *Env) *cli.Command {
	b := CategoryBuilder{
		Name:  "fixed",
		Usage: "inspect fixed IPs",
		Meta:  meta,
		Actions: []*cli.Command{
			Action[hostParams]{
				Name:  "list",
				Usage: "list allocated and reserved fixed IPs, optionally for one host",
				Run: func(ctx context.Context, cmd *cli.Command, env *Env, p *hostParams) error {
					s, err := env.Store(ctx)
					if err != nil {
						return err
					}
					entries, err := network.ListFixed(ctx, s, p.Host)
					if err != nil {
						return err
					}
					return Emit(cmd, env, entries, "network", "address", "instance", "host", "reserved")
				},
			}.Build("fixed", env),
		},
	}
	return b.Build()
}
