// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/staranto/novactl/internal/cloudpipe"
	"github.com/staranto/novactl/internal/fault"
	"github.com/staranto/novactl/internal/meta"
	"github.com/staranto/novactl/internal/model"
	"github.com/staranto/novactl/internal/store"
)

type vpnProjectParams struct {
	Project string `arg:"project" validate:"required"`
}

type vpnChangeParams struct {
	Project string     `arg:"project" validate:"required"`
	IP      netip.Addr `arg:"ip"`
	Port    int        `arg:"port" validate:"min=1,max=65535"`
}

type vpnRow struct {
	Project  string    `json:"project"`
	VpnIP    string    `json:"vpn_ip"`
	VpnPort  int       `json:"vpn_port"`
	Instance string    `json:"instance"`
	State    string    `json:"state"`
	Host     string    `json:"host"`
	Created  time.Time `json:"created,omitzero"`
}

// launcher builds the VPN launcher over the checked store and the bus.
func launcher(ctx context.Context, env *Env) (*cloudpipe.Launcher, store.Store, error) {
	s, err := env.Store(ctx)
	if err != nil {
		return nil, nil, err
	}
	d, err := env.Dispatcher()
	if err != nil {
		return nil, nil, err
	}
	return &cloudpipe.Launcher{
		Store:          s,
		Caster:         d,
		Clock:          env.Clock,
		Image:          env.Settings.VpnImage,
		InstanceType:   env.Settings.VpnInstanceType,
		SchedulerTopic: env.Settings.SchedulerTopic,
	}, s, nil
}

func VpnCommandBuilder(meta meta.Meta, env *Env) *cli.Command {
	b := CategoryBuilder{
		Name:  "vpn",
		Usage: "manage the per-project VPN instances",
		Meta:  meta,
		Actions: []*cli.Command{
			Action[none]{
				Name:  "list",
				Usage: "list projects with their VPN endpoint and instance",
				Run: func(ctx context.Context, cmd *cli.Command, env *Env, _ *none) error {
					s, err := env.Store(ctx)
					if err != nil {
						return err
					}
					fleet, err := cloudpipe.Fleet(ctx, s, env.Settings.VpnImage)
					if err != nil {
						return err
					}
					rows := make([]vpnRow, 0, len(fleet))
					for _, e := range fleet {
						r := vpnRow{Project: e.Project.ID, VpnIP: e.Project.VpnIP, VpnPort: e.Project.VpnPort, State: "none"}
						if e.Instance != nil {
							r.Instance = e.Instance.ID
							r.State = e.Instance.State
							r.Host = e.Instance.Host
							r.Created = e.Instance.CreatedAt
						}
						rows = append(rows, r)
					}
					return Emit(cmd, env, rows,
						"project", "vpn_ip", "vpn_port", "instance", "state", "host", "created::h")
				},
			}.Build("vpn", env),
			Action[none]{
				Name:        "spawn",
				Usage:       "launch a VPN for every project that lacks one",
				Description: "Launches are spaced by vpn.launch_interval so the scheduler is not flooded.",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, _ *none) error {
					l, s, err := launcher(ctx, env)
					if err != nil {
						return err
					}
					r := &cloudpipe.Reconciler{
						Store:    s,
						Launcher: l,
						Clock:    env.Clock,
						Image:    env.Settings.VpnImage,
						Interval: env.Settings.VpnLaunchInterval,
					}
					n, err := r.Run(ctx)
					fmt.Fprintf(env.Stdout, "launched %d vpn instance(s)\n", n)
					return err
				},
			}.Build("vpn", env),
			Action[vpnProjectParams]{
				Name:  "run",
				Usage: "launch the VPN of one project",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *vpnProjectParams) error {
					l, s, err := launcher(ctx, env)
					if err != nil {
						return err
					}
					if _, err := lookup[model.Project](ctx, s, model.KindProject, p.Project, "project"); err != nil {
						return err
					}
					vpn, err := cloudpipe.VpnFor(ctx, s, p.Project, env.Settings.VpnImage)
					if err != nil {
						return err
					}
					if vpn != nil {
						return fault.Preconditionf("project %s already has vpn %s (%s)", p.Project, vpn.ID, vpn.State)
					}
					return l.LaunchVpnInstance(ctx, p.Project)
				},
			}.Build("vpn", env),
			Action[vpnChangeParams]{
				Name:  "change",
				Usage: "change the public address and port of a project's VPN",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *vpnChangeParams) error {
					svc, err := env.Auth(ctx)
					if err != nil {
						return err
					}
					return svc.SetVpn(ctx, p.Project, p.IP.String(), p.Port)
				},
			}.Build("vpn", env),
		},
	}
	return b.Build()
}
