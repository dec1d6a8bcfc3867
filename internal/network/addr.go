// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package network

import (
	"encoding/binary"
	"net"
	"net/netip"

	"github.com/staranto/novactl/internal/fault"
)

// MinPrefixBits bounds the largest range accepted in a single operation.
const MinPrefixBits = 16

// checkRange rejects anything but a reasonably sized IPv4 prefix.
func checkRange(p netip.Prefix) error {
	if !p.IsValid() || !p.Addr().Is4() {
		return fault.Validationf("%s is not an IPv4 range", p)
	}
	if p.Bits() < MinPrefixBits {
		return fault.Validationf("range %s is larger than /%d", p, MinPrefixBits)
	}
	return nil
}

// Addresses lists every address in p, network and broadcast included.
func Addresses(p netip.Prefix) []netip.Addr {
	p = p.Masked()
	out := make([]netip.Addr, 0, Size(p))
	for a := p.Addr(); a.IsValid() && p.Contains(a); a = a.Next() {
		out = append(out, a)
	}
	return out
}

// Size is the number of addresses in p.
func Size(p netip.Prefix) int {
	return 1 << (p.Addr().BitLen() - p.Bits())
}

// Broadcast returns the last address of p.
func Broadcast(p netip.Prefix) netip.Addr {
	p = p.Masked()
	b := p.Addr().As4()
	n := binary.BigEndian.Uint32(b[:])
	n |= (1 << (32 - p.Bits())) - 1
	binary.BigEndian.PutUint32(b[:], n)
	return netip.AddrFrom4(b)
}

// Netmask renders the dotted mask of p.
func Netmask(p netip.Prefix) string {
	return net.IP(net.CIDRMask(p.Bits(), 32)).String()
}

// nth returns the address offset from the start of p.
func nth(p netip.Prefix, offset int) netip.Addr {
	b := p.Masked().Addr().As4()
	n := binary.BigEndian.Uint32(b[:]) + uint32(offset)
	binary.BigEndian.PutUint32(b[:], n)
	return netip.AddrFrom4(b)
}
