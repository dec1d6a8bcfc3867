// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/novactl/internal/fault"
	"github.com/staranto/novactl/internal/meta"
)

type logRequestParams struct {
	RequestID string `arg:"request_id" validate:"required"`
	Logfile   string `arg:"logfile,optional"`
}

// grepRequest copies every line of path mentioning id to env.Stdout and
// returns how many there were.
func grepRequest(env *Env, path, id string) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, fault.NotFoundf("log file %s not found", path)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if strings.Contains(sc.Text(), id) {
			fmt.Fprintln(env.Stdout, sc.Text())
			n++
		}
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return n, nil
}

func LogCommandBuilder(meta meta.Meta, env *Env) *cli.Command {
	b := CategoryBuilder{
		Name:  "log",
		Usage: "search the API log",
		Meta:  meta,
		Actions: []*cli.Command{
			Action[logRequestParams]{
				Name:        "request",
				Usage:       "print the log lines of one request",
				Description: "LOGFILE defaults to log.api_file.",
				Run: func(_ context.Context, _ *cli.Command, env *Env, p *logRequestParams) error {
					path := p.Logfile
					if path == "" {
						path = env.Settings.APILogFile
					}
					n, err := grepRequest(env, path, p.RequestID)
					if err != nil {
						return err
					}
					if n == 0 {
						return fault.NotFoundf("no log lines for request %s in %s", p.RequestID, path)
					}
					return nil
				},
			}.Build("log", env),
		},
	}
	return b.Build()
}
