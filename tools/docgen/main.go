// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v3"

	"github.com/staranto/novactl/internal/command"
	"github.com/staranto/novactl/internal/config"
)

// docgen renders the command catalog into:
//   - docs/commands/<category>.md
//   - docs/man/share/man1/novactl-<category>.1 via md2man
//   - docs/man/share/man1/novactl.1 for the root command

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	commandsDir := filepath.Join(repoRoot, "docs", "commands")
	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")

	for _, d := range []string{commandsDir, manOutDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			fatalf("creating %s: %v", d, err)
		}
	}

	// The store and bus are opened lazily, so nothing is touched here.
	env := command.NewEnv(config.NewSettings(), io.Discard, io.Discard)
	defer env.Close()
	app := command.InitApp(context.Background(), nil, config.Config, env)

	root := rootMarkdown(app)
	if err := writeFileIfChanged(filepath.Join(manOutDir, "novactl.1"), md2man.Render(root), writeOnlyIfChanged); err != nil {
		fatalf("writing root man page: %v", err)
	}

	for _, c := range command.Discover(app) {
		md := categoryMarkdown(c.Value)
		if err := writeFileIfChanged(filepath.Join(commandsDir, c.Name+".md"), md, writeOnlyIfChanged); err != nil {
			fatalf("writing markdown for %s: %v", c.Name, err)
		}
		manPath := filepath.Join(manOutDir, fmt.Sprintf("novactl-%s.1", c.Name))
		if err := writeFileIfChanged(manPath, md2man.Render(md), writeOnlyIfChanged); err != nil {
			fatalf("writing man page for %s: %v", c.Name, err)
		}
	}
}

func rootMarkdown(app *cli.Command) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%% NOVACTL 1\n\n# NAME\n\nnovactl - %s\n\n", app.Usage)
	fmt.Fprintf(&b, "# SYNOPSIS\n\n`%s`\n\n", app.UsageText)
	b.WriteString("# DESCRIPTION\n\n")
	b.WriteString("Categories and actions may be abbreviated to any unique prefix.\n\n")

	b.WriteString("# GLOBAL OPTIONS\n\n")
	for _, f := range app.Flags {
		names := f.Names()
		dashed := make([]string, len(names))
		for i, n := range names {
			if len(n) == 1 {
				dashed[i] = "-" + n
			} else {
				dashed[i] = "--" + n
			}
		}
		fmt.Fprintf(&b, "**%s**\n: %s\n\n", strings.Join(dashed, ", "), usageOf(f))
	}

	b.WriteString("# CATEGORIES\n\n")
	for _, c := range command.Discover(app) {
		fmt.Fprintf(&b, "**%s**\n: %s. See novactl-%s(1).\n\n", c.Name, c.Value.Usage, c.Name)
	}
	return b.Bytes()
}

func categoryMarkdown(cat *cli.Command) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%% NOVACTL-%s 1\n\n# NAME\n\nnovactl-%s - %s\n\n",
		strings.ToUpper(cat.Name), cat.Name, cat.Usage)
	fmt.Fprintf(&b, "# SYNOPSIS\n\n`%s`\n\n", cat.UsageText)
	if cat.Description != "" {
		fmt.Fprintf(&b, "# DESCRIPTION\n\n%s\n\n", cat.Description)
	}

	b.WriteString("# ACTIONS\n\n")
	for _, a := range command.Discover(cat) {
		fmt.Fprintf(&b, "## %s\n\n`%s`\n\n", a.Name, a.Value.UsageText)
		if a.Value.Usage != "" {
			fmt.Fprintf(&b, "%s.\n\n", strings.TrimSuffix(a.Value.Usage, "."))
		}
		if a.Value.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", a.Value.Description)
		}
	}

	b.WriteString("# SEE ALSO\n\nnovactl(1)\n")
	return b.Bytes()
}

func usageOf(f cli.Flag) string {
	if d, ok := f.(cli.DocGenerationFlag); ok {
		return d.GetUsage()
	}
	return ""
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, new []byte, onlyIfChanged bool) error {
	if !onlyIfChanged {
		return os.WriteFile(path, new, 0o644)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.WriteFile(path, new, 0o644)
		}
		return err
	}
	if bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(new)) {
		return nil
	}
	return os.WriteFile(path, new, 0o644)
}
