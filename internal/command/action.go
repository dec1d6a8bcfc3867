// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"reflect"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
	"github.com/urfave/cli/v3"

	"github.com/staranto/novactl/internal/fault"
)

// Action is one leaf command. P is a struct whose fields tagged
// `arg:"name"` are the positional parameters, in declaration order.
// Append ",optional" to the tag for trailing optional parameters and
// ",rest" on a []string field to collect everything that remains.
type Action[P any] struct {
	Name        string
	Usage       string
	Description string
	Run         func(ctx context.Context, cmd *cli.Command, env *Env, p *P) error
}

// none is the params struct of actions that take no arguments.
type none struct{}

// Build returns the cli.Command for the action within category.
func (a Action[P]) Build(category string, env *Env) *cli.Command {
	var zero P
	usageText := fmt.Sprintf("novactl %s %s", category, a.Name)
	if u := Usage(reflect.TypeOf(zero)); u != "" {
		usageText += " " + u
	}

	return &cli.Command{
		Name:            a.Name,
		Usage:           a.Usage,
		UsageText:       usageText,
		Description:     a.Description,
		SkipFlagParsing: true,
		HideHelp:        true,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var p P
			if err := Bind(&p, cmd.Args().Slice()); err != nil {
				fmt.Fprintf(env.Stderr, "%s %s: %v\n", category, a.Name, err)
				fmt.Fprintf(env.Stderr, "usage: %s\n", usageText)
				if a.Usage != "" {
					fmt.Fprintf(env.Stderr, "  %s\n", a.Usage)
				}
				for _, line := range strings.Split(strings.TrimSpace(a.Description), "\n") {
					if line != "" {
						fmt.Fprintf(env.Stderr, "  %s\n", strings.TrimSpace(line))
					}
				}
				return fault.Validationf("invalid arguments for %s %s", category, a.Name)
			}
			log.WithFields(log.Fields{"category": category, "action": a.Name}).Debug("dispatching")
			return a.Run(ctx, cmd, env, &p)
		},
	}
}

type param struct {
	name     string
	field    int
	optional bool
	rest     bool
}

func params(t reflect.Type) []param {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var out []param
	for i := 0; i < t.NumField(); i++ {
		tag, ok := t.Field(i).Tag.Lookup("arg")
		if !ok {
			continue
		}
		parts := strings.Split(tag, ",")
		p := param{name: strings.ToUpper(parts[0]), field: i}
		for _, opt := range parts[1:] {
			switch opt {
			case "optional":
				p.optional = true
			case "rest":
				p.rest = true
			}
		}
		out = append(out, p)
	}
	return out
}

// Usage renders the positional parameters of params type t, for example
// "PROJECT USER [FILENAME]".
func Usage(t reflect.Type) string {
	var parts []string
	for _, p := range params(t) {
		switch {
		case p.rest:
			parts = append(parts, "["+p.name+"...]")
		case p.optional:
			parts = append(parts, "["+p.name+"]")
		default:
			parts = append(parts, p.name)
		}
	}
	return strings.Join(parts, " ")
}

// ArityError reports a wrong number of positional arguments.
type ArityError struct {
	Min, Max int // Max < 0 means unbounded
	Got      int
}

func (e *ArityError) Error() string {
	switch {
	case e.Max < 0:
		return fmt.Sprintf("expected at least %d argument(s), got %d", e.Min, e.Got)
	case e.Min == e.Max:
		return fmt.Sprintf("expected %d argument(s), got %d", e.Min, e.Got)
	default:
		return fmt.Sprintf("expected %d to %d arguments, got %d", e.Min, e.Max, e.Got)
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("arg"), ",")
		return strings.ToUpper(name)
	})
	return v
}

// Bind checks arity, converts args into the tagged fields of dst, which
// must point to a struct, and runs struct validation.
func Bind(dst any, args []string) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind target must be a pointer to a struct, got %T", dst)
	}
	v := rv.Elem()
	ps := params(v.Type())

	required, total := 0, 0
	for _, p := range ps {
		switch {
		case p.rest:
			total = -1
		case total >= 0:
			total++
			if !p.optional {
				required++
			}
		}
	}
	if len(args) < required || (total >= 0 && len(args) > total) {
		return &ArityError{Min: required, Max: total, Got: len(args)}
	}

	for i, p := range ps {
		f := v.Field(p.field)
		if p.rest {
			if i < len(args) {
				f.Set(reflect.ValueOf(append([]string(nil), args[i:]...)))
			}
			break
		}
		if i >= len(args) {
			break
		}
		if err := setField(f, args[i]); err != nil {
			return fmt.Errorf("%s: %w", p.name, err)
		}
	}

	if err := validate.Struct(v.Addr().Interface()); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				rule := fe.Tag()
				if fe.Param() != "" {
					rule += "=" + fe.Param()
				}
				msgs = append(msgs, fmt.Sprintf("%s %q fails %s", fe.Field(), fmt.Sprint(fe.Value()), rule))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

var (
	addrType   = reflect.TypeOf(netip.Addr{})
	prefixType = reflect.TypeOf(netip.Prefix{})
)

func setField(f reflect.Value, raw string) error {
	switch f.Type() {
	case addrType:
		a, err := netip.ParseAddr(raw)
		if err != nil {
			return fmt.Errorf("%q is not an IP address", raw)
		}
		f.Set(reflect.ValueOf(a))
		return nil
	case prefixType:
		p, err := netip.ParsePrefix(raw)
		if err != nil {
			return fmt.Errorf("%q is not a CIDR range", raw)
		}
		f.Set(reflect.ValueOf(p))
		return nil
	}

	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%q is not an integer", raw)
		}
		f.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%q is not a boolean", raw)
		}
		f.SetBool(b)
	default:
		return fmt.Errorf("unsupported parameter type %s", f.Type())
	}
	return nil
}
