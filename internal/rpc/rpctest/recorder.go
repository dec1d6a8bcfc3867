// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package rpctest provides an in-memory Publisher that records casts.
package rpctest

import (
	"context"
	"encoding/json"
	"sync"
)

// Message is one recorded cast.
type Message struct {
	Subject string
	Method  string
	Args    map[string]any
	Raw     map[string]any
}

// Recorder is an rpc.Publisher that keeps every published message. Err,
// when set, is returned from Publish after recording.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	Err      error
	Closed   bool
}

func (r *Recorder) Publish(ctx context.Context, subject string, payload []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return err
	}
	msg := Message{Subject: subject, Raw: raw}
	msg.Method, _ = raw["method"].(string)
	msg.Args, _ = raw["args"].(map[string]any)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return r.Err
}

func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Closed = true
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}
