// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"strconv"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	awsutil "github.com/staranto/novactl/internal/aws"
	"github.com/staranto/novactl/internal/fault"
	"github.com/staranto/novactl/internal/meta"
	"github.com/staranto/novactl/internal/network"
)

const (
	defaultRCFile  = "novarc"
	defaultZipFile = "nova.zip"
)

type projectUserParams struct {
	Project string `arg:"project" validate:"required"`
	User    string `arg:"user" validate:"required"`
}

type projectCreateParams struct {
	Name        string `arg:"name" validate:"required"`
	Manager     string `arg:"manager" validate:"required"`
	Description string `arg:"description,optional"`
}

type projectNameParams struct {
	Name string `arg:"project" validate:"required"`
}

type projectEnvironmentParams struct {
	Project  string `arg:"project" validate:"required"`
	User     string `arg:"user" validate:"required"`
	Filename string `arg:"filename,optional"`
}

type projectQuotaParams struct {
	Project string `arg:"project" validate:"required"`
	Key     string `arg:"key,optional"`
	Value   string `arg:"value,optional"`
}

type projectZipParams struct {
	Project     string `arg:"project" validate:"required"`
	User        string `arg:"user" validate:"required"`
	Destination string `arg:"destination,optional"`
}

type quotaRow struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

// writeDestination stores data at a local path, "-" for stdout, or an
// s3://bucket/key URL.
func writeDestination(ctx context.Context, env *Env, dest, contentType string, data []byte, mode os.FileMode) error {
	if dest == "-" {
		_, err := env.Stdout.Write(data)
		return err
	}

	bucket, key, isS3, err := awsutil.ParseS3URL(dest)
	if err != nil {
		return fault.Validationf("%v", err)
	}
	if isS3 {
		client, err := env.ObjectStore(ctx, env.Settings)
		if err != nil {
			return err
		}
		if err := awsutil.Upload(ctx, client, bucket, key, contentType, data); err != nil {
			return fault.CollaboratorError("upload failed", "check the bucket exists and the AWS credentials can write to it", err)
		}
		return nil
	}

	if err := os.WriteFile(dest, data, mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	log.WithFields(log.Fields{"path": dest, "bytes": len(data)}).Info("written")
	return nil
}

func ProjectCommandBuilder(meta meta.Meta, env *Env) *cli.Command {
	b := CategoryBuilder{
		Name:  "project",
		Usage: "manage projects and their members",
		Meta:  meta,
		Actions: []*cli.Command{
			Action[projectUserParams]{
				Name:  "add",
				Usage: "add a user to a project",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *projectUserParams) error {
					svc, err := env.Auth(ctx)
					if err != nil {
						return err
					}
					return svc.AddUserToProject(ctx, p.User, p.Project)
				},
			}.Build("project", env),
			Action[projectCreateParams]{
				Name:  "create",
				Usage: "create a project managed by an existing user",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *projectCreateParams) error {
					svc, err := env.Auth(ctx)
					if err != nil {
						return err
					}
					_, err = svc.CreateProject(ctx, p.Name, p.Manager, p.Description)
					return err
				},
			}.Build("project", env),
			Action[projectNameParams]{
				Name:  "delete",
				Usage: "delete a project",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *projectNameParams) error {
					svc, err := env.Auth(ctx)
					if err != nil {
						return err
					}
					return svc.DeleteProject(ctx, p.Name)
				},
			}.Build("project", env),
			Action[projectEnvironmentParams]{
				Name:        "environment",
				Usage:       "write the environment file of a user in a project",
				Description: "FILENAME defaults to novarc; use - for stdout.",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *projectEnvironmentParams) error {
					svc, err := env.Auth(ctx)
					if err != nil {
						return err
					}
					rc, err := svc.GetEnvironmentRC(ctx, p.User, p.Project)
					if err != nil {
						return err
					}
					dest := p.Filename
					if dest == "" {
						dest = defaultRCFile
					}
					return writeDestination(ctx, env, dest, "text/plain", []byte(rc), 0o600)
				},
			}.Build("project", env),
			Action[none]{
				Name:  "list",
				Usage: "list projects",
				Run: func(ctx context.Context, cmd *cli.Command, env *Env, _ *none) error {
					svc, err := env.Auth(ctx)
					if err != nil {
						return err
					}
					projects, err := svc.ListProjects(ctx)
					if err != nil {
						return err
					}
					return Emit(cmd, env, projects,
						"id:project", "manager_user:manager", "description", "members", "vpn_ip", "vpn_port")
				},
			}.Build("project", env),
			Action[projectQuotaParams]{
				Name:        "quota",
				Usage:       "show or set the quotas of a project",
				Description: "With KEY and VALUE the quota is set first. With KEY alone only that quota is shown.",
				Run: func(ctx context.Context, cmd *cli.Command, env *Env, p *projectQuotaParams) error {
					svc, err := env.Auth(ctx)
					if err != nil {
						return err
					}
					if p.Value != "" {
						v, err := strconv.Atoi(p.Value)
						if err != nil {
							return fault.Validationf("VALUE %q is not an integer", p.Value)
						}
						if err := svc.SetQuota(ctx, p.Project, p.Key, v); err != nil {
							return err
						}
					}
					quotas, err := svc.Quotas(ctx, p.Project)
					if err != nil {
						return err
					}
					var rows []quotaRow
					for k, v := range quotas {
						if p.Key == "" || p.Key == k {
							rows = append(rows, quotaRow{Key: k, Value: v})
						}
					}
					if p.Key != "" && len(rows) == 0 {
						return fault.NotFoundf("quota %s not found", p.Key)
					}
					sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
					return Emit(cmd, env, rows, "key", "value")
				},
			}.Build("project", env),
			Action[projectUserParams]{
				Name:  "remove",
				Usage: "remove a user from a project",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *projectUserParams) error {
					svc, err := env.Auth(ctx)
					if err != nil {
						return err
					}
					return svc.RemoveUserFromProject(ctx, p.User, p.Project)
				},
			}.Build("project", env),
			Action[projectNameParams]{
				Name:  "scrub",
				Usage: "release the networks held by a project",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *projectNameParams) error {
					svc, err := env.Auth(ctx)
					if err != nil {
						return err
					}
					if _, err := svc.GetProject(ctx, p.Name); err != nil {
						return err
					}
					s, err := env.Store(ctx)
					if err != nil {
						return err
					}
					n, err := network.Disassociate(ctx, s, p.Name)
					if err != nil {
						return err
					}
					fmt.Fprintf(env.Stdout, "released %d network(s) from %s\n", n, p.Name)
					return nil
				},
			}.Build("project", env),
			Action[projectZipParams]{
				Name:        "zipfile",
				Usage:       "write the credentials archive of a user in a project",
				Description: "DESTINATION defaults to nova.zip and may be an s3://bucket/key URL.",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *projectZipParams) error {
					svc, err := env.Auth(ctx)
					if err != nil {
						return err
					}
					data, err := svc.GetCredentialsArchive(ctx, p.User, p.Project)
					if err != nil {
						return err
					}
					dest := p.Destination
					if dest == "" {
						dest = defaultZipFile
					}
					if err := writeDestination(ctx, env, dest, "application/zip", data, 0o600); err != nil {
						return err
					}
					if dest != "-" {
						fmt.Fprintf(env.Stdout, "wrote %s\n", path.Base(dest))
					}
					return nil
				},
			}.Build("project", env),
		},
	}
	return b.Build()
}
