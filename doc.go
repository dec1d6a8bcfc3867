// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// novactl is the administrative command line for a small cloud: users,
// projects, roles, networks, floating IPs, VPN instances, services and
// volumes. It wires configuration and logging and hands the arguments to
// the command tree in internal/command.
package main
