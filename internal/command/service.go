// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/novactl/internal/meta"
	"github.com/staranto/novactl/internal/model"
	"github.com/staranto/novactl/internal/store"
)

type serviceListParams struct {
	Host    string `arg:"host,optional"`
	Service string `arg:"service,optional"`
}

type serviceParams struct {
	Host    string `arg:"host" validate:"required"`
	Service string `arg:"service" validate:"required"`
}

type serviceRow struct {
	Host      string `json:"host"`
	Binary    string `json:"binary"`
	Topic     string `json:"topic"`
	Status    string `json:"status"`
	State     string `json:"state"`
	Heartbeat string `json:"heartbeat"`
}

func serviceRows(svcs []*model.Service, env *Env) []serviceRow {
	now := env.Clock.Now()
	rows := make([]serviceRow, 0, len(svcs))
	for _, s := range svcs {
		r := serviceRow{Host: s.Host, Binary: s.Binary, Topic: s.Topic, Status: "enabled", State: "up"}
		if s.Disabled {
			r.Status = "disabled"
		}
		if s.UpdatedAt.IsZero() {
			r.State = "down"
			r.Heartbeat = "never"
		} else {
			if now.Sub(s.UpdatedAt) > env.Settings.ServiceDownTime {
				r.State = "down"
			}
			r.Heartbeat = humanize.RelTime(s.UpdatedAt, now, "ago", "from now")
		}
		rows = append(rows, r)
	}
	return rows
}

func setServiceDisabled(disabled bool) func(context.Context, *cli.Command, *Env, *serviceParams) error {
	return func(ctx context.Context, _ *cli.Command, env *Env, p *serviceParams) error {
		s, err := env.Store(ctx)
		if err != nil {
			return err
		}
		key := model.ServiceKey(p.Host, p.Service)
		svc, err := lookup[model.Service](ctx, s, model.KindService, key, "service")
		if err != nil {
			return err
		}
		svc.Disabled = disabled
		if err := store.Update(ctx, s, model.KindService, key, svc); err != nil {
			return fmt.Errorf("failed to update service %s: %w", key, err)
		}
		log.WithFields(log.Fields{"service": key, "disabled": disabled}).Info("service updated")
		return nil
	}
}

func ServiceCommandBuilder(meta meta.Meta, env *Env) *cli.Command {
	b := CategoryBuilder{
		Name:  "service",
		Usage: "inspect and toggle worker services",
		Meta:  meta,
		Actions: []*cli.Command{
			Action[serviceListParams]{
				Name:        "list",
				Usage:       "list services with their liveness",
				Description: "A service whose last heartbeat is older than service.down_time is down.",
				Run: func(ctx context.Context, cmd *cli.Command, env *Env, p *serviceListParams) error {
					s, err := env.Store(ctx)
					if err != nil {
						return err
					}
					svcs, err := store.List(ctx, s, model.KindService, func(svc *model.Service) bool {
						return (p.Host == "" || svc.Host == p.Host) && (p.Service == "" || svc.Binary == p.Service)
					})
					if err != nil {
						return err
					}
					return Emit(cmd, env, serviceRows(svcs, env),
						"binary", "host", "topic", "status", "state", "heartbeat")
				},
			}.Build("service", env),
			Action[serviceParams]{
				Name:  "enable",
				Usage: "enable a service on a host",
				Run:   setServiceDisabled(false),
			}.Build("service", env),
			Action[serviceParams]{
				Name:  "disable",
				Usage: "disable a service on a host",
				Run:   setServiceDisabled(true),
			}.Build("service", env),
		},
	}
	return b.Build()
}
