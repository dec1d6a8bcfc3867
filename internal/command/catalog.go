// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/novactl/internal/resolver"
)

// Discover lists the visible subcommands of group in declaration order.
// Hidden commands and names starting with "_" are not offered.
func Discover(group *cli.Command) []resolver.Candidate[*cli.Command] {
	var out []resolver.Candidate[*cli.Command]
	for _, c := range group.Commands {
		if c.Hidden || strings.HasPrefix(c.Name, "_") {
			continue
		}
		out = append(out, resolver.Candidate[*cli.Command]{Name: c.Name, Value: c})
	}
	return out
}

// ExpandArgs rewrites the category and action words of args to the full
// names they uniquely abbreviate. Root flags before the category are
// skipped. Help and version requests are passed through untouched.
func ExpandArgs(app *cli.Command, args []string) ([]string, error) {
	out := append([]string(nil), args...)

	valued := map[string]bool{}
	for _, f := range app.Flags {
		if _, ok := f.(*cli.StringFlag); ok {
			for _, n := range f.Names() {
				valued[n] = true
			}
		}
	}

	i := 1
	for i < len(out) && strings.HasPrefix(out[i], "-") {
		if out[i] == "--" {
			i++
			break
		}
		name, _, hasValue := strings.Cut(strings.TrimLeft(out[i], "-"), "=")
		switch name {
		case "help", "h", "version":
			return out, nil
		}
		if valued[name] && !hasValue {
			i++
		}
		i++
	}

	categories := Discover(app)
	if i >= len(out) {
		return nil, &resolver.Error{Kind: resolver.NoMatch, What: "category", Names: resolver.Names(categories)}
	}
	category, err := resolver.ResolveNamed("category", out[i], categories)
	if err != nil {
		return nil, err
	}
	out[i] = category.Name

	actions := Discover(category.Value)
	if i+1 >= len(out) {
		return nil, &resolver.Error{Kind: resolver.NoMatch, What: "action", Names: resolver.Names(actions)}
	}
	action, err := resolver.ResolveNamed("action", out[i+1], actions)
	if err != nil {
		return nil, err
	}
	out[i+1] = action.Name

	log.Debugf("expanded args: %v", out[1:])
	return out, nil
}
