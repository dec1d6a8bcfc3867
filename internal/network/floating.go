// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package network

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/novactl/internal/fault"
	"github.com/staranto/novactl/internal/model"
	"github.com/staranto/novactl/internal/store"
)

// maxConflictsShown caps the addresses named in a duplicate range error.
const maxConflictsShown = 8

// Allocator creates and removes floating IP records a range at a time.
type Allocator struct {
	Store store.Store
}

// Allocate binds every address of prefix to host. Addresses already in use
// anywhere abort the whole range before anything is written.
func (a *Allocator) Allocate(ctx context.Context, prefix netip.Prefix, host string) (int, error) {
	if err := checkRange(prefix); err != nil {
		return 0, err
	}
	if host == "" {
		return 0, fault.Validationf("a host is required")
	}

	addrs := Addresses(prefix)

	var conflicts []string
	for _, addr := range addrs {
		_, err := a.Store.Get(ctx, model.KindFloatingIP, addr.String())
		switch {
		case err == nil:
			conflicts = append(conflicts, addr.String())
		case errors.Is(err, store.ErrNotFound):
		default:
			return 0, fmt.Errorf("failed to check floating ip %s: %w", addr, err)
		}
	}
	if len(conflicts) > 0 {
		return 0, fault.Preconditionf("%d address(es) in %s already allocated: %s",
			len(conflicts), prefix, summarize(conflicts))
	}

	created := 0
	for _, addr := range addrs {
		ip := &model.FloatingIP{Address: addr.String(), Host: host}
		if err := store.Create(ctx, a.Store, model.KindFloatingIP, ip.Address, ip); err != nil {
			return created, fmt.Errorf("failed to create floating ip %s: %w", addr, err)
		}
		created++
	}

	log.WithFields(log.Fields{"range": prefix.String(), "host": host, "count": created}).
		Info("floating ips created")
	return created, nil
}

// Deallocate removes the record of every address of prefix regardless of
// the host it is bound to. Absent addresses are skipped.
func (a *Allocator) Deallocate(ctx context.Context, prefix netip.Prefix) (int, error) {
	if err := checkRange(prefix); err != nil {
		return 0, err
	}

	removed := 0
	for _, addr := range Addresses(prefix) {
		err := a.Store.Destroy(ctx, model.KindFloatingIP, addr.String())
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("failed to delete floating ip %s: %w", addr, err)
		}
		removed++
	}

	log.WithFields(log.Fields{"range": prefix.String(), "count": removed}).
		Info("floating ips deleted")
	return removed, nil
}

// ListFloating returns floating IPs, optionally only those bound to host.
func ListFloating(ctx context.Context, s store.Store, host string) ([]*model.FloatingIP, error) {
	return store.List(ctx, s, model.KindFloatingIP, func(ip *model.FloatingIP) bool {
		return host == "" || ip.Host == host
	})
}

func summarize(addrs []string) string {
	if len(addrs) <= maxConflictsShown {
		return strings.Join(addrs, ", ")
	}
	return fmt.Sprintf("%s (+%d more)",
		strings.Join(addrs[:maxConflictsShown], ", "), len(addrs)-maxConflictsShown)
}
