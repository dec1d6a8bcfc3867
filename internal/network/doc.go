// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package network manages address records: floating IP ranges bound to
// hosts, and fixed-range project networks with their fixed IPs. Only IPv4
// is supported.
package network
