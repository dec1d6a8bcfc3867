// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"cmp"
	"context"
	"fmt"
	"net/netip"

	"github.com/urfave/cli/v3"

	"github.com/staranto/novactl/internal/meta"
	"github.com/staranto/novactl/internal/model"
	"github.com/staranto/novactl/internal/network"
	"github.com/staranto/novactl/internal/store"
)

type networkCreateParams struct {
	FixedRange  netip.Prefix `arg:"fixed_range"`
	NumNetworks int          `arg:"num_networks,optional" validate:"gte=0,lte=65536"`
	NetworkSize int          `arg:"network_size,optional" validate:"gte=0,lte=65536"`
	VlanStart   int          `arg:"vlan_start,optional" validate:"gte=0"`
	VpnStart    int          `arg:"vpn_start,optional" validate:"gte=0,lte=65535"`
}

type networkDeleteParams struct {
	FixedRange netip.Prefix `arg:"fixed_range"`
}

func NetworkCommandBuilder(meta meta.Meta, env *Env) *cli.Command {
	b := CategoryBuilder{
		Name:  "network",
		Usage: "manage project networks",
		Meta:  meta,
		Actions: []*cli.Command{
			Action[networkCreateParams]{
				Name:        "create",
				Usage:       "carve a fixed range into project networks",
				Description: "Omitted or zero values fall back to the network.* settings.",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *networkCreateParams) error {
					s, err := env.Store(ctx)
					if err != nil {
						return err
					}
					plan := network.Plan{
						FixedRange:  p.FixedRange,
						NumNetworks: cmp.Or(p.NumNetworks, env.Settings.NumNetworks),
						NetworkSize: cmp.Or(p.NetworkSize, env.Settings.NetworkSize),
						VlanStart:   cmp.Or(p.VlanStart, env.Settings.VlanStart),
						VpnStart:    cmp.Or(p.VpnStart, env.Settings.VpnStart),
					}
					nets, err := network.CreateNetworks(ctx, s, plan)
					if err != nil {
						return err
					}
					for _, n := range nets {
						fmt.Fprintf(env.Stdout, "%s vlan %d vpn port %d\n", n.CIDR, n.VLAN, n.VpnPublicPort)
					}
					return nil
				},
			}.Build("network", env),
			Action[none]{
				Name:  "list",
				Usage: "list networks",
				Run: func(ctx context.Context, cmd *cli.Command, env *Env, _ *none) error {
					s, err := env.Store(ctx)
					if err != nil {
						return err
					}
					nets, err := store.List[model.Network](ctx, s, model.KindNetwork, nil)
					if err != nil {
						return err
					}
					return Emit(cmd, env, nets,
						"cidr", "netmask", "gateway", "broadcast", "vlan", "vpn_public_port:vpn_port", "project_id:project", "!id")
				},
			}.Build("network", env),
			Action[networkDeleteParams]{
				Name:  "delete",
				Usage: "delete an unused network and its fixed IPs",
				Run: func(ctx context.Context, _ *cli.Command, env *Env, p *networkDeleteParams) error {
					s, err := env.Store(ctx)
					if err != nil {
						return err
					}
					return network.DeleteNetwork(ctx, s, p.FixedRange)
				},
			}.Build("network", env),
		},
	}
	return b.Build()
}
