// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package network

import (
	"context"
	"fmt"
	"math/bits"
	"net/netip"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/staranto/novactl/internal/fault"
	"github.com/staranto/novactl/internal/model"
	"github.com/staranto/novactl/internal/store"
)

// Plan describes how a fixed range is carved into project networks.
type Plan struct {
	FixedRange  netip.Prefix
	NumNetworks int
	NetworkSize int
	VlanStart   int
	VpnStart    int
}

// Carve splits the fixed range into consecutive networks of NetworkSize
// addresses. It does not touch the store.
func (p Plan) Carve() ([]*model.Network, error) {
	if err := checkRange(p.FixedRange); err != nil {
		return nil, err
	}
	if p.NumNetworks < 1 {
		return nil, fault.Validationf("number of networks must be at least 1")
	}
	if p.NetworkSize < 4 || bits.OnesCount(uint(p.NetworkSize)) != 1 {
		return nil, fault.Validationf("network size %d must be a power of two of at least 4", p.NetworkSize)
	}
	if p.NumNetworks > Size(p.FixedRange)/p.NetworkSize {
		return nil, fault.Validationf("%d networks of %d addresses do not fit in %s",
			p.NumNetworks, p.NetworkSize, p.FixedRange)
	}

	subnetBits := 32 - (bits.Len(uint(p.NetworkSize)) - 1)
	out := make([]*model.Network, 0, p.NumNetworks)
	for i := 0; i < p.NumNetworks; i++ {
		sub := netip.PrefixFrom(nth(p.FixedRange, i*p.NetworkSize), subnetBits)
		n := &model.Network{
			ID:        "net-" + uuid.NewString()[:8],
			CIDR:      sub.String(),
			Netmask:   Netmask(sub),
			Gateway:   nth(sub, 1).String(),
			Broadcast: Broadcast(sub).String(),
		}
		if p.VlanStart > 0 {
			n.VLAN = p.VlanStart + i
		}
		if p.VpnStart > 0 {
			n.VpnPublicPort = p.VpnStart + i
		}
		out = append(out, n)
	}
	return out, nil
}

// CreateNetworks records the networks of plan and a fixed IP for every
// address in them. The network, gateway and broadcast addresses are
// reserved. Ranges overlapping an existing network are refused.
func CreateNetworks(ctx context.Context, s store.Store, plan Plan) ([]*model.Network, error) {
	nets, err := plan.Carve()
	if err != nil {
		return nil, err
	}

	existing, err := store.List[model.Network](ctx, s, model.KindNetwork, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", err)
	}
	for _, e := range existing {
		have, err := netip.ParsePrefix(e.CIDR)
		if err != nil {
			continue
		}
		if have.Overlaps(plan.FixedRange) {
			return nil, fault.Preconditionf("%s overlaps existing network %s", plan.FixedRange, e.CIDR)
		}
	}

	for _, n := range nets {
		if err := store.Create(ctx, s, model.KindNetwork, n.ID, n); err != nil {
			return nil, fmt.Errorf("failed to create network %s: %w", n.CIDR, err)
		}

		sub := netip.MustParsePrefix(n.CIDR)
		addrs := Addresses(sub)
		for i, addr := range addrs {
			ip := &model.FixedIP{
				Address:   addr.String(),
				NetworkID: n.ID,
				Reserved:  i == 0 || i == 1 || i == len(addrs)-1,
			}
			if err := store.Create(ctx, s, model.KindFixedIP, ip.Address, ip); err != nil {
				return nil, fmt.Errorf("failed to create fixed ip %s: %w", addr, err)
			}
		}
		log.WithFields(log.Fields{"cidr": n.CIDR, "vlan": n.VLAN, "id": n.ID}).Info("network created")
	}
	return nets, nil
}

// DeleteNetwork removes the network with the given CIDR and its fixed IPs.
// A network still associated with a project, or with an allocated fixed
// IP, is refused.
func DeleteNetwork(ctx context.Context, s store.Store, cidr netip.Prefix) error {
	nets, err := store.List(ctx, s, model.KindNetwork, func(n *model.Network) bool {
		return n.CIDR == cidr.Masked().String()
	})
	if err != nil {
		return fmt.Errorf("failed to list networks: %w", err)
	}
	if len(nets) == 0 {
		return fault.NotFoundf("network %s not found", cidr)
	}
	n := nets[0]
	if n.ProjectID != "" {
		return fault.Preconditionf("network %s is associated with project %s", n.CIDR, n.ProjectID)
	}

	ips, err := store.List(ctx, s, model.KindFixedIP, func(ip *model.FixedIP) bool {
		return ip.NetworkID == n.ID
	})
	if err != nil {
		return fmt.Errorf("failed to list fixed ips: %w", err)
	}
	for _, ip := range ips {
		if ip.Allocated {
			return fault.Preconditionf("fixed ip %s in %s is still allocated", ip.Address, n.CIDR)
		}
	}

	for _, ip := range ips {
		if err := s.Destroy(ctx, model.KindFixedIP, ip.Address); err != nil {
			return fmt.Errorf("failed to delete fixed ip %s: %w", ip.Address, err)
		}
	}
	if err := s.Destroy(ctx, model.KindNetwork, n.ID); err != nil {
		return fmt.Errorf("failed to delete network %s: %w", n.CIDR, err)
	}
	log.WithFields(log.Fields{"cidr": n.CIDR, "fixed_ips": len(ips)}).Info("network deleted")
	return nil
}

// FixedEntry joins an allocated fixed IP with the instance holding it.
type FixedEntry struct {
	Network  string `json:"network"`
	Address  string `json:"address"`
	Instance string `json:"instance"`
	Host     string `json:"host"`
	Reserved bool   `json:"reserved"`
}

// ListFixed returns fixed IPs that are allocated or reserved, optionally
// only those whose instance runs on host.
func ListFixed(ctx context.Context, s store.Store, host string) ([]FixedEntry, error) {
	nets, err := store.List[model.Network](ctx, s, model.KindNetwork, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", err)
	}
	cidrs := make(map[string]string, len(nets))
	for _, n := range nets {
		cidrs[n.ID] = n.CIDR
	}

	ips, err := store.List(ctx, s, model.KindFixedIP, func(ip *model.FixedIP) bool {
		return ip.Allocated || ip.Reserved
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list fixed ips: %w", err)
	}

	var out []FixedEntry
	for _, ip := range ips {
		e := FixedEntry{Network: cidrs[ip.NetworkID], Address: ip.Address, Reserved: ip.Reserved}
		if ip.InstanceID != "" {
			inst, err := store.Get[model.Instance](ctx, s, model.KindInstance, ip.InstanceID)
			if err == nil {
				e.Instance = inst.ID
				e.Host = inst.Host
			}
		}
		if host != "" && e.Host != host {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Disassociate releases every network held by projectID and returns how
// many were released.
func Disassociate(ctx context.Context, s store.Store, projectID string) (int, error) {
	nets, err := store.List(ctx, s, model.KindNetwork, func(n *model.Network) bool {
		return n.ProjectID == projectID
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list networks: %w", err)
	}
	for _, n := range nets {
		n.ProjectID = ""
		if err := store.Update(ctx, s, model.KindNetwork, n.ID, n); err != nil {
			return 0, fmt.Errorf("failed to disassociate network %s: %w", n.CIDR, err)
		}
	}
	return len(nets), nil
}
