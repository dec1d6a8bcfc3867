// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cloudpipe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/novactl/internal/clock"
	"github.com/staranto/novactl/internal/model"
	"github.com/staranto/novactl/internal/rpc"
	"github.com/staranto/novactl/internal/rpc/rpctest"
	"github.com/staranto/novactl/internal/store"
)

const vpnImage = "ami-cloudpipe"

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// recordingLauncher notes each launch and the fake time it happened at.
type recordingLauncher struct {
	clock    *clock.FakeClock
	projects []string
	at       []time.Time
	err      error
}

func (l *recordingLauncher) LaunchVpnInstance(ctx context.Context, projectID string) error {
	if l.err != nil {
		return l.err
	}
	l.projects = append(l.projects, projectID)
	l.at = append(l.at, l.clock.Now())
	return nil
}

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	_, err = s.Sync(context.Background())
	require.NoError(t, err)
	return s
}

func seedProjects(t *testing.T, s store.Store, ids ...string) {
	t.Helper()
	for _, id := range ids {
		p := &model.Project{ID: id, Name: id, ManagerUser: "mgr"}
		require.NoError(t, store.Create(context.Background(), s, model.KindProject, id, p))
	}
}

func seedVpn(t *testing.T, s store.Store, project, state string) {
	t.Helper()
	inst := &model.Instance{ID: "i-" + project, ProjectID: project, ImageID: vpnImage, State: state}
	require.NoError(t, store.Create(context.Background(), s, model.KindInstance, inst.ID, inst))
}

func TestReconciler_Run(t *testing.T) {
	tests := []struct {
		name     string
		projects []string
		vpns     map[string]string
		want     []string
	}{
		{
			name:     "launches for projects without vpn in reverse order",
			projects: []string{"p1", "p2", "p3"},
			vpns:     map[string]string{"p2": "running"},
			want:     []string{"p3", "p1"},
		},
		{
			name:     "every project covered",
			projects: []string{"p1", "p2"},
			vpns:     map[string]string{"p1": "running", "p2": "running"},
			want:     nil,
		},
		{
			name:     "any state counts as present",
			projects: []string{"a", "b", "c"},
			vpns:     map[string]string{"a": "shutdown", "b": "error", "c": "scheduling"},
			want:     nil,
		},
		{
			name:     "no projects",
			projects: nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			seedProjects(t, s, tt.projects...)
			for p, state := range tt.vpns {
				seedVpn(t, s, p, state)
			}

			fc := clock.Fake(epoch)
			launcher := &recordingLauncher{clock: fc}
			r := &Reconciler{Store: s, Launcher: launcher, Clock: fc, Image: vpnImage, Interval: 10 * time.Second}

			n, err := r.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), n)
			assert.Equal(t, tt.want, launcher.projects)
			assert.Len(t, fc.Sleeps(), len(tt.want))
		})
	}
}

func TestReconciler_LaunchesAreSpacedByInterval(t *testing.T) {
	s := newStore(t)
	seedProjects(t, s, "p1", "p2", "p3", "p4")

	fc := clock.Fake(epoch)
	launcher := &recordingLauncher{clock: fc}
	r := &Reconciler{Store: s, Launcher: launcher, Clock: fc, Image: vpnImage, Interval: 10 * time.Second}

	n, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, n)

	for i := 1; i < len(launcher.at); i++ {
		assert.GreaterOrEqual(t, launcher.at[i].Sub(launcher.at[i-1]), 10*time.Second)
	}
}

func TestReconciler_DefaultInterval(t *testing.T) {
	s := newStore(t)
	seedProjects(t, s, "p1")

	fc := clock.Fake(epoch)
	r := &Reconciler{Store: s, Launcher: &recordingLauncher{clock: fc}, Clock: fc, Image: vpnImage}

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{DefaultLaunchInterval}, fc.Sleeps())
}

func TestReconciler_StopsOnCancel(t *testing.T) {
	s := newStore(t)
	seedProjects(t, s, "p1", "p2")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fc := clock.Fake(epoch)
	launcher := &recordingLauncher{clock: fc}
	r := &Reconciler{Store: s, Launcher: launcher, Clock: fc, Image: vpnImage}

	n, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
	assert.Empty(t, launcher.projects)
}

func TestReconciler_LaunchFailure(t *testing.T) {
	s := newStore(t)
	seedProjects(t, s, "p1")

	fc := clock.Fake(epoch)
	r := &Reconciler{
		Store:    s,
		Launcher: &recordingLauncher{clock: fc, err: errors.New("scheduler gone")},
		Clock:    fc,
		Image:    vpnImage,
	}

	n, err := r.Run(context.Background())
	assert.EqualError(t, err, "scheduler gone")
	assert.Zero(t, n)
	assert.Empty(t, fc.Sleeps())
}

func TestLauncher_LaunchVpnInstance(t *testing.T) {
	s := newStore(t)
	seedProjects(t, s, "acme")

	rec := &rpctest.Recorder{}
	l := &Launcher{
		Store:  s,
		Caster: rpc.NewDispatcher(rec, "admin"),
		Clock:  clock.Fake(epoch),
		Image:  vpnImage,
	}

	require.NoError(t, l.LaunchVpnInstance(context.Background(), "acme"))

	vpn, err := VpnFor(context.Background(), s, "acme", vpnImage)
	require.NoError(t, err)
	require.NotNil(t, vpn)
	assert.Equal(t, StateScheduling, vpn.State)
	assert.Equal(t, "acme-vpn", vpn.DisplayName)
	assert.Equal(t, epoch, vpn.CreatedAt)

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "scheduler", msgs[0].Subject)
	assert.Equal(t, "run_instance", msgs[0].Method)
	assert.Equal(t, vpn.ID, msgs[0].Args["instance_id"])
}

func TestLauncher_UnknownProject(t *testing.T) {
	s := newStore(t)
	rec := &rpctest.Recorder{}
	l := &Launcher{Store: s, Caster: rpc.NewDispatcher(rec, "admin"), Clock: clock.Fake(epoch), Image: vpnImage}

	err := l.LaunchVpnInstance(context.Background(), "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, rec.Messages())
}

func TestFleet(t *testing.T) {
	s := newStore(t)
	seedProjects(t, s, "a", "b")
	seedVpn(t, s, "b", "running")

	entries, err := Fleet(context.Background(), s, vpnImage)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Project.ID)
	assert.Nil(t, entries[0].Instance)
	assert.Equal(t, "b", entries[1].Project.ID)
	require.NotNil(t, entries[1].Instance)
	assert.Equal(t, "running", entries[1].Instance.State)
}
