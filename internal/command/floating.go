// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/urfave/cli/v3"

	"github.com/staranto/novactl/internal/meta"
	"github.com/staranto/novactl/internal/network"
)

type floatingCreateParams struct {
	Range netip.Prefix `arg:"range"`
	Host  string       `arg:"host" validate:"required"`
}

type floatingDeleteParams struct {
	Range netip.Prefix `arg:"range"`
}

func FloatingCommandBuilder(meta meta.Meta, env *Env) *cli.Command {
	b := CategoryBuilder{
		Name:  "floating",
		Usage: "manage floating IP ranges",
		Meta:  meta,
		Actions: []*cli.Command{
			Action[floatingCreateParams]{
				Name:        "create",
				Usage:       "bind every address of a range to a host",
				Description: "Network and broadcast addresses are included. A range holding any allocated address is refused whole.",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *floatingCreateParams) error {
					s, err := env.Store(ctx)
					if err != nil {
						return err
					}
					a := &network.Allocator{Store: s}
					n, err := a.Allocate(ctx, p.Range, p.Host)
					if err != nil {
						return err
					}
					fmt.Fprintf(env.Stdout, "created %d floating ip(s) on %s\n", n, p.Host)
					return nil
				},
			}.Build("floating", env),
			Action[floatingDeleteParams]{
				Name:  "delete",
				Usage: "remove every address of a range, whatever host holds it",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *floatingDeleteParams) error {
					s, err := env.Store(ctx)
					if err != nil {
						return err
					}
					a := &network.Allocator{Store: s}
					n, err := a.Deallocate(ctx, p.Range)
					if err != nil {
						return err
					}
					fmt.Fprintf(env.Stdout, "deleted %d floating ip(s)\n", n)
					return nil
				},
			}.Build("floating", env),
			Action[hostParams]{
				Name:  "list",
				Usage: "list floating IPs, optionally for one host",
				Run: func(ctx context.Context, cmd *cli.Command, env *Env, p *hostParams) error {
					s, err := env.Store(ctx)
					if err != nil {
						return err
					}
					ips, err := network.ListFloating(ctx, s, p.Host)
					if err != nil {
						return err
					}
					return Emit(cmd, env, ips, "host", "address", "fixed_ip", "project_id:project")
				},
			}.Build("floating", env),
		},
	}
	return b.Build()
}
