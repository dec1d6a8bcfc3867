// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package cloudpipe keeps one VPN endpoint per project. A project's VPN is
// the instance of that project booted from the configured VPN image; the
// Reconciler launches one for every project that has none, pausing between
// launches so the scheduler is not flooded.
package cloudpipe
