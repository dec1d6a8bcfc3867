// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package auth manages users, projects, role grants and the credential
// bundles handed to users. Manager keeps everything in the store; commands
// depend only on Service.
package auth
