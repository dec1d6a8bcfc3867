// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package rpc hands one-way operation requests to worker nodes over the
// message bus. A cast returns as soon as the message is handed to the bus;
// nothing about delivery or the remote outcome ever comes back.
package rpc

import (
	"context"
	"encoding/json"

	"github.com/apex/log"
	"github.com/google/uuid"
)

// Topics addressed by novactl.
const (
	TopicCompute   = "compute"
	TopicVolume    = "volume"
	TopicNetwork   = "network"
	TopicScheduler = "scheduler"
)

// QueueName derives the queue a worker of topic on host consumes from.
// An empty host addresses the topic-wide queue.
func QueueName(topic, host string) string {
	if host == "" {
		return topic
	}
	return topic + "." + host
}

// Operation is a request for a remote worker to run Method with Args.
type Operation struct {
	Method string
	Args   map[string]any
	Topic  string
	Host   string
}

// Queue returns the destination queue of op.
func (op Operation) Queue() string {
	return QueueName(op.Topic, op.Host)
}

// Publisher is the bus seam. Implementations must not block waiting for
// a consumer.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte) error
	Close()
}

type requestIDKey struct{}

// WithRequestID tags ctx so every cast made under it carries id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Dispatcher casts operations through a Publisher. It performs no
// precondition checks; callers resolve the owning host and validate the
// resource state before casting.
type Dispatcher struct {
	publisher Publisher
	user      string
}

func NewDispatcher(p Publisher, user string) *Dispatcher {
	return &Dispatcher{publisher: p, user: user}
}

// Cast sends op and returns immediately. Failures are logged, never
// returned: the caller cannot tell delivered from lost.
func (d *Dispatcher) Cast(ctx context.Context, op Operation) {
	queue := op.Queue()

	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = "req-" + uuid.NewString()
	}

	msg := map[string]any{
		"method":              op.Method,
		"args":                op.Args,
		"_context_request_id": requestID,
		"_context_user":       d.user,
		"_context_is_admin":   true,
	}
	if msg["args"] == nil {
		msg["args"] = map[string]any{}
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.WithError(err).Warnf("dropping %s cast to %s", op.Method, queue)
		return
	}

	log.Debugf("Casting to %s %s for %s", op.Topic, op.Host, op.Method)
	if err := d.publisher.Publish(ctx, queue, payload); err != nil {
		log.WithError(err).Warnf("cast %s to %s not delivered", op.Method, queue)
	}
}
