// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cloudpipe

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"

	"github.com/staranto/novactl/internal/clock"
	"github.com/staranto/novactl/internal/model"
	"github.com/staranto/novactl/internal/store"
)

// DefaultLaunchInterval is the pause after each VPN launch.
const DefaultLaunchInterval = 10 * time.Second

type Reconciler struct {
	Store    store.Store
	Launcher VpnLauncher
	Clock    clock.Clock
	Image    string
	Interval time.Duration
}

// Run launches a VPN for every project lacking one. Projects are visited
// newest listing entry first. Each launch is followed by a pause so two
// launches are never closer than Interval; skipped projects cost nothing.
// It returns how many launches were requested.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	projects, err := store.List[model.Project](ctx, r.Store, model.KindProject, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to list projects: %w", err)
	}

	interval := r.Interval
	if interval <= 0 {
		interval = DefaultLaunchInterval
	}

	launched := 0
	for i := len(projects) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return launched, err
		}

		p := projects[i]
		vpn, err := VpnFor(ctx, r.Store, p.ID, r.Image)
		if err != nil {
			return launched, fmt.Errorf("failed to look up vpn for %s: %w", p.ID, err)
		}
		if vpn != nil {
			log.Debugf("project %s has vpn %s (%s)", p.ID, vpn.ID, vpn.State)
			continue
		}

		if err := r.Launcher.LaunchVpnInstance(ctx, p.ID); err != nil {
			return launched, err
		}
		launched++
		r.Clock.Sleep(interval)
	}
	return launched, nil
}

// Entry pairs a project with its VPN instance, which may be nil.
type Entry struct {
	Project  *model.Project
	Instance *model.Instance
}

// Fleet lists every project together with its VPN, in listing order.
func Fleet(ctx context.Context, s store.Store, image string) ([]Entry, error) {
	projects, err := store.List[model.Project](ctx, s, model.KindProject, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	vpns, err := store.List(ctx, s, model.KindInstance, func(i *model.Instance) bool {
		return i.ImageID == image
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}

	byProject := make(map[string]*model.Instance, len(vpns))
	for _, v := range vpns {
		if _, ok := byProject[v.ProjectID]; !ok {
			byProject[v.ProjectID] = v
		}
	}

	out := make([]Entry, 0, len(projects))
	for _, p := range projects {
		out = append(out, Entry{Project: p, Instance: byProject[p.ID]})
	}
	return out, nil
}
