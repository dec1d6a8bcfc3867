// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package script runs operator-supplied scripts. The host is trusted: a
// script runs with the operator's privileges and sees the same store and
// bus settings novactl itself was started with.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/apex/log"
)

// Host runs the script at path with args.
type Host interface {
	Run(ctx context.Context, path string, args []string) error
}

// ExecHost runs scripts as child processes. Env is appended to the
// inherited environment.
type ExecHost struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Env    []string
}

func (h *ExecHost) Run(ctx context.Context, path string, args []string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("script %s is a directory", path)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = h.Stdin
	cmd.Stdout = h.Stdout
	cmd.Stderr = h.Stderr
	cmd.Env = append(os.Environ(), h.Env...)

	log.WithField("script", path).Debugf("running with %d args", len(args))
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("script %s exited with status %d", path, exitErr.ExitCode())
		}
		return fmt.Errorf("script %s: %w", path, err)
	}
	return nil
}
