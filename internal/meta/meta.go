// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"
	"io"

	"github.com/staranto/novactl/internal/config"
)

// Meta is what every command builder receives: the settings resolved at
// startup and the streams commands write to.
type Meta struct {
	Args     []string
	Config   config.Type
	Settings config.Settings
	Context  context.Context
	Stdout   io.Writer
	Stderr   io.Writer
}
