// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/staranto/novactl/internal/meta"
	"github.com/staranto/novactl/internal/model"
)

type userCreateParams struct {
	Name   string `arg:"name" validate:"required"`
	Access string `arg:"access,optional"`
	Secret string `arg:"secret,optional"`
}

type userNameParams struct {
	Name string `arg:"name" validate:"required"`
}

type userModifyParams struct {
	Name    string `arg:"name" validate:"required"`
	Access  string `arg:"access"`
	Secret  string `arg:"secret"`
	IsAdmin string `arg:"is_admin" validate:"omitempty,boolean"`
}

func printExports(env *Env, u *model.User) {
	fmt.Fprintf(env.Stdout, "export EC2_ACCESS_KEY=%s\n", u.AccessKey)
	fmt.Fprintf(env.Stdout, "export EC2_SECRET_KEY=%s\n", u.SecretKey)
}

func createUser(admin bool) func(context.Context, *cli.Command, *Env, *userCreateParams) error {
	return func(ctx context.Context, _ *cli.Command, env *Env, p *userCreateParams) error {
		svc, err := env.Auth(ctx)
		if err != nil {
			return err
		}
		u, err := svc.CreateUser(ctx, p.Name, p.Access, p.Secret, admin)
		if err != nil {
			return err
		}
		printExports(env, u)
		return nil
	}
}

func UserCommandBuilder(meta meta.Meta, env *Env) *cli.Command {
	b := CategoryBuilder{
		Name:  "user",
		Usage: "manage users",
		Meta:  meta,
		Actions: []*cli.Command{
			Action[userCreateParams]{
				Name:  "admin",
				Usage: "create an admin user and print its credentials",
				Run:   createUser(true),
			}.Build("user", env),
			Action[userCreateParams]{
				Name:  "create",
				Usage: "create a user and print its credentials",
				Run:   createUser(false),
			}.Build("user", env),
			Action[userNameParams]{
				Name:  "delete",
				Usage: "delete a user",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *userNameParams) error {
					svc, err := env.Auth(ctx)
					if err != nil {
						return err
					}
					return svc.DeleteUser(ctx, p.Name)
				},
			}.Build("user", env),
			Action[userNameParams]{
				Name:  "exports",
				Usage: "print the credentials of a user as shell exports",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *userNameParams) error {
					svc, err := env.Auth(ctx)
					if err != nil {
						return err
					}
					u, err := svc.GetUser(ctx, p.Name)
					if err != nil {
						return err
					}
					printExports(env, u)
					return nil
				},
			}.Build("user", env),
			Action[none]{
				Name:  "list",
				Usage: "list users",
				Run: func(ctx context.Context, cmd *cli.Command, env *Env, _ *none) error {
					svc, err := env.Auth(ctx)
					if err != nil {
						return err
					}
					users, err := svc.ListUsers(ctx)
					if err != nil {
						return err
					}
					return Emit(cmd, env, users, "id:user", "access_key", "is_admin:admin", "roles")
				},
			}.Build("user", env),
			Action[userModifyParams]{
				Name:        "modify",
				Usage:       "change the keys or admin flag of a user",
				Description: "Empty ACCESS, SECRET or IS_ADMIN leave that value unchanged.",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *userModifyParams) error {
					svc, err := env.Auth(ctx)
					if err != nil {
						return err
					}
					var admin *bool
					if p.IsAdmin != "" {
						// Already checked by the boolean rule.
						v, _ := strconv.ParseBool(p.IsAdmin)
						admin = &v
					}
					_, err = svc.ModifyUser(ctx, p.Name, p.Access, p.Secret, admin)
					return err
				},
			}.Build("user", env),
		},
	}
	return b.Build()
}
