// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/novactl/internal/command"
	"github.com/staranto/novactl/internal/config"
	"github.com/staranto/novactl/internal/fault"
	mylog "github.com/staranto/novactl/internal/log"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	// Short-circuit --version.
	for _, a := range leadingFlags(args) {
		if a == "--version" {
			fmt.Println(version)
			return 0
		}
	}

	cfg := config.Config
	if path := configFlag(args); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return fault.ExitFault
		}
	}
	settings := config.NewSettings()

	if settings.LogFile != "" {
		closer, err := mylog.AddFile(settings.LogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return fault.ExitFault
		}
		defer closer.Close()
	}

	env := command.NewEnv(settings, os.Stdout, os.Stderr)
	defer env.Close()

	app := command.InitApp(ctx, args, cfg, env)

	args, err := command.ExpandArgs(app, args)
	if err != nil {
		fault.Report(os.Stdout, os.Stderr, err)
		return fault.ExitCode(err)
	}

	if err := app.Run(ctx, args); err != nil {
		log.WithError(err).Debug("command failed")
		fault.Report(os.Stdout, os.Stderr, err)
		return fault.ExitCode(err)
	}

	return 0
}

// leadingFlags returns the arguments before the category.
func leadingFlags(args []string) []string {
	for i := 1; i < len(args); i++ {
		if !strings.HasPrefix(args[i], "-") {
			return args[1:i]
		}
	}
	if len(args) < 2 {
		return nil
	}
	return args[1:]
}

// configFlag finds --config among the root flags. It has to be read before
// the command tree is built because the other flags take their defaults
// from the file.
func configFlag(args []string) string {
	for i := 1; i < len(args); i++ {
		a := args[i]
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if !strings.HasPrefix(a, "-") {
			// Past the root flags, or a value of one of them.
			if i > 1 && strings.HasPrefix(args[i-1], "-") && !strings.Contains(args[i-1], "=") {
				continue
			}
			break
		}
	}
	return ""
}
