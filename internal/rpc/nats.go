// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes casts as NATS messages whose subject is the
// queue name.
type NATSPublisher struct {
	nc      *nats.Conn
	url     string
	timeout time.Duration
}

// defaultFlushTimeout bounds Close when no bus timeout is configured.
const defaultFlushTimeout = 2 * time.Second

func NewNATSPublisher(url string, timeout time.Duration) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("novactl"),
		nats.Timeout(timeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warnf("bus disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("bus reconnected to %s", nc.ConnectedUrl())
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to bus at %s: %w", url, err)
	}
	if timeout <= 0 {
		timeout = defaultFlushTimeout
	}
	return &NATSPublisher{nc: nc, url: url, timeout: timeout}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload []byte) error {
	if p.nc == nil || p.nc.IsClosed() {
		return fmt.Errorf("bus not connected")
	}
	return p.nc.Publish(subject, payload)
}

// Close blocks until the server has acknowledged every buffered publish,
// or the bus timeout passes, and then closes the connection.
func (p *NATSPublisher) Close() {
	if p.nc == nil || p.nc.IsClosed() {
		return
	}
	if err := p.nc.FlushTimeout(p.timeout); err != nil {
		log.WithError(err).Warnf("casts to %s may not have been delivered", p.url)
	}
	p.nc.Close()
}
