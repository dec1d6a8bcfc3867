// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cloudpipe

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/staranto/novactl/internal/clock"
	"github.com/staranto/novactl/internal/model"
	"github.com/staranto/novactl/internal/rpc"
	"github.com/staranto/novactl/internal/store"
)

// StateScheduling is the state of an instance record that has been handed
// to the scheduler but not yet placed on a host.
const StateScheduling = "scheduling"

// VpnLauncher starts a VPN instance for a project. It returns once the
// launch is requested, not once the instance has booted.
type VpnLauncher interface {
	LaunchVpnInstance(ctx context.Context, projectID string) error
}

// Caster is satisfied by *rpc.Dispatcher.
type Caster interface {
	Cast(ctx context.Context, op rpc.Operation)
}

// Launcher records a VPN instance and asks the scheduler to place it.
type Launcher struct {
	Store          store.Store
	Caster         Caster
	Clock          clock.Clock
	Image          string
	InstanceType   string
	SchedulerTopic string
}

func (l *Launcher) LaunchVpnInstance(ctx context.Context, projectID string) error {
	project, err := store.Get[model.Project](ctx, l.Store, model.KindProject, projectID)
	if err != nil {
		return fmt.Errorf("failed to load project %s: %w", projectID, err)
	}

	inst := &model.Instance{
		ID:               "i-" + uuid.NewString()[:8],
		ProjectID:        project.ID,
		UserID:           project.ManagerUser,
		ImageID:          l.Image,
		State:            StateScheduling,
		StateDescription: StateScheduling,
		DisplayName:      project.ID + "-vpn",
		CreatedAt:        l.Clock.Now().UTC(),
	}
	if err := store.Create(ctx, l.Store, model.KindInstance, inst.ID, inst); err != nil {
		return fmt.Errorf("failed to record vpn instance for %s: %w", projectID, err)
	}

	log.WithFields(log.Fields{
		"project":  project.ID,
		"instance": inst.ID,
		"image":    l.Image,
	}).Info("launching vpn instance")

	topic := l.SchedulerTopic
	if topic == "" {
		topic = rpc.TopicScheduler
	}
	l.Caster.Cast(ctx, rpc.Operation{
		Method: "run_instance",
		Topic:  topic,
		Args: map[string]any{
			"topic":         rpc.TopicCompute,
			"instance_id":   inst.ID,
			"project_id":    project.ID,
			"image_id":      l.Image,
			"instance_type": l.InstanceType,
		},
	})
	return nil
}

// VpnFor returns the VPN instance of projectID, or nil when it has none.
// State is not considered: a stopped or failed VPN still counts.
func VpnFor(ctx context.Context, s store.Store, projectID, image string) (*model.Instance, error) {
	found, err := store.List(ctx, s, model.KindInstance, func(i *model.Instance) bool {
		return i.ProjectID == projectID && i.ImageID == image
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}
