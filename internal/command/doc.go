// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package command defines the novactl command tree. Each category is a
// cli.Command built by a XxxCommandBuilder; each action binds its
// positional arguments into a typed params struct before it runs.
// Categories and actions may be abbreviated to any unique prefix.
package command
