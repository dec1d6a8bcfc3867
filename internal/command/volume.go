// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/novactl/internal/fault"
	"github.com/staranto/novactl/internal/meta"
	"github.com/staranto/novactl/internal/model"
	"github.com/staranto/novactl/internal/rpc"
)

type volumeParams struct {
	VolumeID string `arg:"volume_id" validate:"required"`
}

func deleteVolume(ctx context.Context, _ *cli.Command, env *Env, p *volumeParams) error {
	s, err := env.Store(ctx)
	if err != nil {
		return err
	}
	vol, err := lookup[model.Volume](ctx, s, model.KindVolume, p.VolumeID, "volume")
	if err != nil {
		return err
	}
	if vol.Status == model.VolumeInUse {
		return fault.Preconditionf("volume %s is in use", vol.ID)
	}

	// Never scheduled: no worker holds it, so only the record exists.
	if vol.Host == "" {
		if err := s.Destroy(ctx, model.KindVolume, vol.ID); err != nil {
			return fmt.Errorf("failed to delete volume %s: %w", vol.ID, err)
		}
		log.WithField("volume", vol.ID).Info("unscheduled volume removed")
		return nil
	}

	d, err := env.Dispatcher()
	if err != nil {
		return err
	}
	d.Cast(ctx, rpc.Operation{
		Method: "delete_volume",
		Args:   map[string]any{"volume_id": vol.ID},
		Topic:  env.Settings.VolumeTopic,
		Host:   vol.Host,
	})
	return nil
}

func reattachVolume(ctx context.Context, _ *cli.Command, env *Env, p *volumeParams) error {
	s, err := env.Store(ctx)
	if err != nil {
		return err
	}
	vol, err := lookup[model.Volume](ctx, s, model.KindVolume, p.VolumeID, "volume")
	if err != nil {
		return err
	}
	if vol.InstanceID == "" {
		return fault.Preconditionf("volume %s is not attached to an instance", vol.ID)
	}

	// The instance may have moved since the volume was attached.
	inst, err := lookup[model.Instance](ctx, s, model.KindInstance, vol.InstanceID, "instance")
	if err != nil {
		return err
	}
	if inst.Host == "" {
		return fault.Preconditionf("instance %s of volume %s has no host", inst.ID, vol.ID)
	}

	d, err := env.Dispatcher()
	if err != nil {
		return err
	}
	d.Cast(ctx, rpc.Operation{
		Method: "attach_volume",
		Args: map[string]any{
			"instance_id": inst.ID,
			"volume_id":   vol.ID,
			"mountpoint":  vol.Mountpoint,
		},
		Topic: env.Settings.ComputeTopic,
		Host:  inst.Host,
	})
	return nil
}

func VolumeCommandBuilder(meta meta.Meta, env *Env) *cli.Command {
	b := CategoryBuilder{
		Name:  "volume",
		Usage: "delete and reattach volumes through their workers",
		Meta:  meta,
		Actions: []*cli.Command{
			Action[volumeParams]{
				Name:        "delete",
				Usage:       "delete a volume that is not in use",
				Description: "Scheduled volumes are deleted by their volume worker; the request is not confirmed.",
				Run:         deleteVolume,
			}.Build("volume", env),
			Action[volumeParams]{
				Name:        "reattach",
				Usage:       "ask the compute worker to attach a volume to its instance again",
				Description: "Used after a host reboot. The request is not confirmed.",
				Run:         reattachVolume,
			}.Build("volume", env),
		},
	}
	return b.Build()
}
