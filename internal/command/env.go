// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"

	"github.com/staranto/novactl/internal/auth"
	awsutil "github.com/staranto/novactl/internal/aws"
	"github.com/staranto/novactl/internal/clock"
	"github.com/staranto/novactl/internal/config"
	"github.com/staranto/novactl/internal/fault"
	"github.com/staranto/novactl/internal/rpc"
	"github.com/staranto/novactl/internal/script"
	"github.com/staranto/novactl/internal/statedir"
	"github.com/staranto/novactl/internal/store"
)

const syncHint = `run "novactl db sync" first`

// Env holds the collaborators an action may need. The store and the bus
// are opened on first use so that actions which touch neither never fail
// on an unreachable broker or a locked store.
type Env struct {
	Settings config.Settings
	Stdout   io.Writer
	Stderr   io.Writer
	Clock    clock.Clock
	Scripts  script.Host

	OpenStore func(path string) (store.Store, error)
	OpenBus   func(settings config.Settings) (rpc.Publisher, error)
	// ObjectStore builds the S3 client used for s3:// destinations.
	ObjectStore func(ctx context.Context, settings config.Settings) (awsutil.ObjectPutter, error)

	store      store.Store
	checked    bool
	bus        rpc.Publisher
	dispatcher *rpc.Dispatcher
}

// NewEnv wires the production collaborators: a badger store at the
// configured path and a NATS connection to the configured bus.
func NewEnv(settings config.Settings, stdout, stderr io.Writer) *Env {
	return &Env{
		Settings: settings,
		Stdout:   stdout,
		Stderr:   stderr,
		Clock:    clock.Real(),
		Scripts:  &script.ExecHost{Stdin: os.Stdin, Stdout: stdout, Stderr: stderr},
		OpenStore: func(path string) (store.Store, error) {
			if err := statedir.EnsureParent(path); err != nil {
				return nil, err
			}
			return store.Open(path)
		},
		OpenBus: func(s config.Settings) (rpc.Publisher, error) {
			return rpc.NewNATSPublisher(s.BusURL, s.BusTimeout)
		},
		ObjectStore: func(ctx context.Context, s config.Settings) (awsutil.ObjectPutter, error) {
			cfg, err := awsutil.LoadAWSConfig(ctx,
				awsutil.WithProfile(s.AWSProfile), awsutil.WithRegion(s.AWSRegion))
			if err != nil {
				return nil, fault.CollaboratorError("cannot load AWS config",
					"check aws.profile and aws.region in the config file", err)
			}
			return awsutil.NewS3(cfg, awsutil.WithEndpoint(s.AWSEndpoint)), nil
		},
	}
}

// RawStore opens the store without checking its schema version. Only the
// db group uses it directly.
func (e *Env) RawStore() (store.Store, error) {
	if e.store != nil {
		return e.store, nil
	}
	s, err := e.OpenStore(e.Settings.StorePath)
	if err != nil {
		return nil, fault.CollaboratorError(
			fmt.Sprintf("cannot open store at %s", e.Settings.StorePath),
			"check --store or store.path in the config file", err)
	}
	log.WithField("path", e.Settings.StorePath).Debug("store opened")
	e.store = s
	return s, nil
}

// Store opens the store and refuses one whose schema is missing or older
// than this binary expects.
func (e *Env) Store(ctx context.Context) (store.Store, error) {
	s, err := e.RawStore()
	if err != nil {
		return nil, err
	}
	if e.checked {
		return s, nil
	}

	v, err := s.Version(ctx)
	switch {
	case errors.Is(err, store.ErrUninitialized):
		return nil, fault.CollaboratorError("store is not initialized", syncHint, err)
	case err != nil:
		return nil, fault.CollaboratorError("cannot read store version", "", err)
	case v < store.SchemaVersion:
		return nil, fault.CollaboratorError(
			fmt.Sprintf("store schema version %d is older than %d", v, store.SchemaVersion),
			syncHint, nil)
	}
	e.checked = true
	return s, nil
}

// Dispatcher connects to the bus on first use.
func (e *Env) Dispatcher() (*rpc.Dispatcher, error) {
	if e.dispatcher != nil {
		return e.dispatcher, nil
	}
	p, err := e.OpenBus(e.Settings)
	if err != nil {
		return nil, fault.CollaboratorError(
			fmt.Sprintf("cannot connect to bus at %s", e.Settings.BusURL),
			"check --bus or bus.url in the config file", err)
	}
	e.bus = p
	e.dispatcher = rpc.NewDispatcher(p, e.Settings.User)
	return e.dispatcher, nil
}

// Auth returns the store-backed identity service.
func (e *Env) Auth(ctx context.Context) (auth.Service, error) {
	s, err := e.Store(ctx)
	if err != nil {
		return nil, err
	}
	return &auth.Manager{
		Store:    s,
		Clock:    e.Clock,
		EC2URL:   e.Settings.EC2URL,
		S3URL:    e.Settings.S3URL,
		Defaults: e.Settings.Quotas,
	}, nil
}

// Close flushes the bus and closes the store, whichever were opened.
func (e *Env) Close() {
	if e.bus != nil {
		e.bus.Close()
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			log.WithError(err).Warn("failed to close store")
		}
	}
}
