// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/novactl/internal/meta"
)

type roleParams struct {
	User    string `arg:"user" validate:"required"`
	Role    string `arg:"role" validate:"required"`
	Project string `arg:"project,optional"`
}

const roleDescription = "Global roles: cloudadmin, itsec. Project roles, which need PROJECT: sysadmin, netadmin, developer."

func RoleCommandBuilder(meta meta.Meta, env *Env) *cli.Command {
	b := CategoryBuilder{
		Name:  "role",
		Usage: "grant, check and revoke roles",
		Meta:  meta,
		Actions: []*cli.Command{
			Action[roleParams]{
				Name:        "add",
				Usage:       "grant a role to a user",
				Description: roleDescription,
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *roleParams) error {
					svc, err := env.Auth(ctx)
					if err != nil {
						return err
					}
					return svc.AddRole(ctx, p.User, p.Role, p.Project)
				},
			}.Build("role", env),
			Action[roleParams]{
				Name:        "has",
				Usage:       "print whether a user holds a role",
				Description: roleDescription,
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *roleParams) error {
					svc, err := env.Auth(ctx)
					if err != nil {
						return err
					}
					ok, err := svc.HasRole(ctx, p.User, p.Role, p.Project)
					if err != nil {
						return err
					}
					fmt.Fprintln(env.Stdout, ok)
					return nil
				},
			}.Build("role", env),
			Action[roleParams]{
				Name:        "remove",
				Usage:       "revoke a role from a user",
				Description: roleDescription,
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *roleParams) error {
					svc, err := env.Auth(ctx)
					if err != nil {
						return err
					}
					return svc.RemoveRole(ctx, p.User, p.Role, p.Project)
				},
			}.Build("role", env),
		},
	}
	return b.Build()
}
