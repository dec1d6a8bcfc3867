// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package rpc_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/novactl/internal/rpc"
	"github.com/staranto/novactl/internal/rpc/rpctest"
)

func TestQueueName(t *testing.T) {
	tests := []struct {
		topic, host, want string
	}{
		{"volume", "node-1", "volume.node-1"},
		{"compute", "host-a", "compute.host-a"},
		{"scheduler", "", "scheduler"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, rpc.QueueName(tt.topic, tt.host))
			assert.Equal(t, tt.want, rpc.Operation{Topic: tt.topic, Host: tt.host}.Queue())
		})
	}
}

func TestCast(t *testing.T) {
	rec := &rpctest.Recorder{}
	d := rpc.NewDispatcher(rec, "admin")

	ctx := rpc.WithRequestID(context.Background(), "req-123")
	d.Cast(ctx, rpc.Operation{
		Method: "delete_volume",
		Args:   map[string]any{"volume_id": "vol-1"},
		Topic:  rpc.TopicVolume,
		Host:   "node-1",
	})

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "volume.node-1", msgs[0].Subject)
	assert.Equal(t, "delete_volume", msgs[0].Method)
	assert.Equal(t, "vol-1", msgs[0].Args["volume_id"])
	assert.Equal(t, "req-123", msgs[0].Raw["_context_request_id"])
	assert.Equal(t, "admin", msgs[0].Raw["_context_user"])
}

func TestCast_GeneratesRequestIDAndEmptyArgs(t *testing.T) {
	rec := &rpctest.Recorder{}
	rpc.NewDispatcher(rec, "admin").Cast(context.Background(), rpc.Operation{
		Method: "ping",
		Topic:  rpc.TopicScheduler,
	})

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "scheduler", msgs[0].Subject)
	assert.NotNil(t, msgs[0].Args)
	id, _ := msgs[0].Raw["_context_request_id"].(string)
	assert.True(t, strings.HasPrefix(id, "req-"))
}

func TestCast_SwallowsPublishFailure(t *testing.T) {
	rec := &rpctest.Recorder{Err: errors.New("bus down")}
	d := rpc.NewDispatcher(rec, "admin")

	assert.NotPanics(t, func() {
		d.Cast(context.Background(), rpc.Operation{Method: "attach_volume", Topic: "compute", Host: "h"})
	})
	assert.Len(t, rec.Messages(), 1)
}
