// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package network

import (
	"context"
	"math"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/novactl/internal/fault"
	"github.com/staranto/novactl/internal/model"
	"github.com/staranto/novactl/internal/store"
)

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func floatingHosts(t *testing.T, s store.Store) map[string]string {
	t.Helper()
	ips, err := ListFloating(context.Background(), s, "")
	require.NoError(t, err)
	out := map[string]string{}
	for _, ip := range ips {
		out[ip.Address] = ip.Host
	}
	return out
}

func TestAddressHelpers(t *testing.T) {
	p := netip.MustParsePrefix("10.0.0.0/30")
	assert.Equal(t, []netip.Addr{
		netip.MustParseAddr("10.0.0.0"),
		netip.MustParseAddr("10.0.0.1"),
		netip.MustParseAddr("10.0.0.2"),
		netip.MustParseAddr("10.0.0.3"),
	}, Addresses(p))
	assert.Equal(t, 4, Size(p))
	assert.Equal(t, "10.0.0.3", Broadcast(p).String())
	assert.Equal(t, "255.255.255.252", Netmask(p))

	// unmasked input is normalised
	assert.Len(t, Addresses(netip.MustParsePrefix("192.168.1.77/29")), 8)
	assert.Len(t, Addresses(netip.MustParsePrefix("10.1.2.3/32")), 1)
}

func TestAllocate(t *testing.T) {
	s := newStore(t)
	a := &Allocator{Store: s}

	n, err := a.Allocate(context.Background(), netip.MustParsePrefix("10.0.0.0/30"), "h1")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, map[string]string{
		"10.0.0.0": "h1",
		"10.0.0.1": "h1",
		"10.0.0.2": "h1",
		"10.0.0.3": "h1",
	}, floatingHosts(t, s))
}

func TestAllocate_RejectsDuplicates(t *testing.T) {
	s := newStore(t)
	a := &Allocator{Store: s}
	ctx := context.Background()

	_, err := a.Allocate(ctx, netip.MustParsePrefix("10.0.0.2/31"), "h1")
	require.NoError(t, err)

	n, err := a.Allocate(ctx, netip.MustParsePrefix("10.0.0.0/30"), "h2")
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Precondition))
	assert.Contains(t, err.Error(), "10.0.0.2, 10.0.0.3")
	assert.Zero(t, n)

	// nothing from the rejected range was written
	assert.Equal(t, map[string]string{"10.0.0.2": "h1", "10.0.0.3": "h1"}, floatingHosts(t, s))
}

func TestAllocate_Validation(t *testing.T) {
	a := &Allocator{Store: newStore(t)}
	tests := []struct {
		name   string
		prefix string
		host   string
	}{
		{"too large", "10.0.0.0/15", "h1"},
		{"ipv6", "fd00::/120", "h1"},
		{"missing host", "10.0.0.0/30", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Allocate(context.Background(), netip.MustParsePrefix(tt.prefix), tt.host)
			assert.True(t, fault.Is(err, fault.Validation), "got %v", err)
		})
	}
}

func TestDeallocate_IgnoresHost(t *testing.T) {
	s := newStore(t)
	a := &Allocator{Store: s}
	ctx := context.Background()

	_, err := a.Allocate(ctx, netip.MustParsePrefix("10.0.0.0/31"), "h1")
	require.NoError(t, err)
	_, err = a.Allocate(ctx, netip.MustParsePrefix("10.0.0.2/31"), "h2")
	require.NoError(t, err)
	_, err = a.Allocate(ctx, netip.MustParsePrefix("10.0.1.0/32"), "h3")
	require.NoError(t, err)

	n, err := a.Deallocate(ctx, netip.MustParsePrefix("10.0.0.0/30"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, map[string]string{"10.0.1.0": "h3"}, floatingHosts(t, s))
}

func TestDeallocate_SkipsAbsent(t *testing.T) {
	s := newStore(t)
	a := &Allocator{Store: s}
	ctx := context.Background()

	_, err := a.Allocate(ctx, netip.MustParsePrefix("10.0.0.1/32"), "h1")
	require.NoError(t, err)

	n, err := a.Deallocate(ctx, netip.MustParsePrefix("10.0.0.0/30"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = a.Deallocate(ctx, netip.MustParsePrefix("10.0.0.0/30"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListFloating_ByHost(t *testing.T) {
	s := newStore(t)
	a := &Allocator{Store: s}
	ctx := context.Background()
	_, _ = a.Allocate(ctx, netip.MustParsePrefix("10.0.0.0/31"), "h1")
	_, _ = a.Allocate(ctx, netip.MustParsePrefix("10.0.0.2/32"), "h2")

	ips, err := ListFloating(ctx, s, "h2")
	require.NoError(t, err)
	require.Len(t, ips, 1)
	assert.Equal(t, "10.0.0.2", ips[0].Address)
}

func TestPlan_Carve(t *testing.T) {
	nets, err := Plan{
		FixedRange:  netip.MustParsePrefix("10.0.0.0/24"),
		NumNetworks: 3,
		NetworkSize: 16,
		VlanStart:   100,
		VpnStart:    1000,
	}.Carve()
	require.NoError(t, err)
	require.Len(t, nets, 3)

	assert.Equal(t, "10.0.0.0/28", nets[0].CIDR)
	assert.Equal(t, "10.0.0.16/28", nets[1].CIDR)
	assert.Equal(t, "10.0.0.32/28", nets[2].CIDR)
	assert.Equal(t, "255.255.255.240", nets[1].Netmask)
	assert.Equal(t, "10.0.0.17", nets[1].Gateway)
	assert.Equal(t, "10.0.0.31", nets[1].Broadcast)
	assert.Equal(t, 102, nets[2].VLAN)
	assert.Equal(t, 1002, nets[2].VpnPublicPort)
}

func TestPlan_CarveValidation(t *testing.T) {
	base := netip.MustParsePrefix("10.0.0.0/24")
	tests := []struct {
		name string
		plan Plan
	}{
		{"zero networks", Plan{FixedRange: base, NumNetworks: 0, NetworkSize: 16}},
		{"size not power of two", Plan{FixedRange: base, NumNetworks: 1, NetworkSize: 12}},
		{"size too small", Plan{FixedRange: base, NumNetworks: 1, NetworkSize: 2}},
		{"does not fit", Plan{FixedRange: base, NumNetworks: 17, NetworkSize: 16}},
		{"count overflows", Plan{FixedRange: netip.MustParsePrefix("10.0.0.0/16"), NumNetworks: math.MaxInt / 2, NetworkSize: 4}},
		{"size larger than range", Plan{FixedRange: base, NumNetworks: 1, NetworkSize: 1 << 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.plan.Carve()
			assert.True(t, fault.Is(err, fault.Validation), "got %v", err)
		})
	}
}

func TestCreateAndDeleteNetwork(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	nets, err := CreateNetworks(ctx, s, Plan{
		FixedRange:  netip.MustParsePrefix("10.0.0.0/28"),
		NumNetworks: 2,
		NetworkSize: 8,
	})
	require.NoError(t, err)
	require.Len(t, nets, 2)

	ips, err := store.List[model.FixedIP](ctx, s, model.KindFixedIP, nil)
	require.NoError(t, err)
	assert.Len(t, ips, 16)

	reserved, err := ListFixed(ctx, s, "")
	require.NoError(t, err)
	assert.Len(t, reserved, 6)

	_, err = CreateNetworks(ctx, s, Plan{
		FixedRange:  netip.MustParsePrefix("10.0.0.8/29"),
		NumNetworks: 1,
		NetworkSize: 8,
	})
	assert.True(t, fault.Is(err, fault.Precondition), "got %v", err)

	require.NoError(t, DeleteNetwork(ctx, s, netip.MustParsePrefix("10.0.0.0/29")))
	ips, err = store.List[model.FixedIP](ctx, s, model.KindFixedIP, nil)
	require.NoError(t, err)
	assert.Len(t, ips, 8)

	err = DeleteNetwork(ctx, s, netip.MustParsePrefix("10.0.0.0/29"))
	assert.True(t, fault.Is(err, fault.NotFound), "got %v", err)
}

func TestDeleteNetwork_Refusals(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	nets, err := CreateNetworks(ctx, s, Plan{
		FixedRange:  netip.MustParsePrefix("10.0.0.0/29"),
		NumNetworks: 1,
		NetworkSize: 8,
	})
	require.NoError(t, err)

	ip, err := store.Get[model.FixedIP](ctx, s, model.KindFixedIP, "10.0.0.3")
	require.NoError(t, err)
	ip.Allocated = true
	ip.InstanceID = "i-1"
	require.NoError(t, store.Update(ctx, s, model.KindFixedIP, ip.Address, ip))

	err = DeleteNetwork(ctx, s, netip.MustParsePrefix("10.0.0.0/29"))
	assert.True(t, fault.Is(err, fault.Precondition), "got %v", err)

	n := nets[0]
	n.ProjectID = "acme"
	require.NoError(t, store.Update(ctx, s, model.KindNetwork, n.ID, n))
	err = DeleteNetwork(ctx, s, netip.MustParsePrefix("10.0.0.0/29"))
	assert.ErrorContains(t, err, "associated with project acme")
}

func TestListFixed_ByHost(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := CreateNetworks(ctx, s, Plan{
		FixedRange:  netip.MustParsePrefix("10.0.0.0/29"),
		NumNetworks: 1,
		NetworkSize: 8,
	})
	require.NoError(t, err)

	inst := &model.Instance{ID: "i-1", Host: "node-7"}
	require.NoError(t, store.Create(ctx, s, model.KindInstance, inst.ID, inst))
	ip, err := store.Get[model.FixedIP](ctx, s, model.KindFixedIP, "10.0.0.4")
	require.NoError(t, err)
	ip.Allocated = true
	ip.InstanceID = inst.ID
	require.NoError(t, store.Update(ctx, s, model.KindFixedIP, ip.Address, ip))

	entries, err := ListFixed(ctx, s, "node-7")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, FixedEntry{Network: "10.0.0.0/29", Address: "10.0.0.4", Instance: "i-1", Host: "node-7"}, entries[0])
}

func TestDisassociate(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	for _, n := range []*model.Network{
		{ID: "net-a", CIDR: "10.0.0.0/28", ProjectID: "alpha"},
		{ID: "net-b", CIDR: "10.0.0.16/28", ProjectID: "beta"},
		{ID: "net-c", CIDR: "10.0.0.32/28", ProjectID: "alpha"},
	} {
		require.NoError(t, store.Create(ctx, s, model.KindNetwork, n.ID, n))
	}

	n, err := Disassociate(ctx, s, "alpha")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	nets, err := store.List[model.Network](ctx, s, model.KindNetwork, nil)
	require.NoError(t, err)
	owners := map[string]string{}
	for _, n := range nets {
		owners[n.ID] = n.ProjectID
	}
	assert.Equal(t, map[string]string{"net-a": "", "net-b": "beta", "net-c": ""}, owners)
}
