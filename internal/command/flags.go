// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/novactl/internal/config"
	"github.com/staranto/novactl/internal/output"
)

// NewRootFlags builds the flags accepted before the category. Values fall
// back to NOVACTL_* env vars, then to the config file, then to settings.
func NewRootFlags(cfg config.Type, settings config.Settings) []cli.Flag {
	src := altsrc.StringSourcer(cfg.Source)

	return []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to add to, or hide from, list output",
		},
		&cli.StringFlag{
			Name:  "bus",
			Usage: "message bus URL",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("NOVACTL_BUS"),
				yaml.YAML("bus.url", src),
			),
			Value: settings.BusURL,
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML("output.color", src),
			),
			Value: output.ColorDefault(),
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "config file",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("NOVACTL_CFG"),
			),
			Value: cfg.Source,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to list output",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml, raw)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("NOVACTL_OUTPUT"),
				yaml.YAML("output.format", src),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort list output by",
		},
		&cli.StringFlag{
			Name:  "store",
			Usage: "path of the state store",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("NOVACTL_STORE"),
				yaml.YAML("store.path", src),
			),
			Value: settings.StorePath,
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML("output.titles", src),
			),
			Value: false,
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Aliases:     []string{"v"},
			Usage:       "log at debug level",
			HideDefault: true,
		},
		&cli.BoolFlag{
			Name:        "version",
			Usage:       "print the version and exit",
			HideDefault: true,
		},
	}
}
