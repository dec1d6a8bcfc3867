// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package fault classifies the failures an action can end with and maps
// them onto operator-facing output and process exit codes.
package fault

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/staranto/novactl/internal/resolver"
)

const (
	ExitOK    = 0
	ExitFault = 1
	ExitUsage = resolver.ExitUsage
)

type Kind int

const (
	// Validation covers arity and argument type/format mismatches.
	Validation Kind = iota + 1
	NotFound
	Precondition
	Collaborator
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not found"
	case Precondition:
		return "precondition"
	case Collaborator:
		return "collaborator"
	default:
		return "unknown"
	}
}

// Error is a classified action failure. Hint carries a remediation for
// collaborator faults.
type Error struct {
	Kind    Kind
	Message string
	Hint    string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// ExitCode implements the exit-coder convention main checks for.
func (e *Error) ExitCode() int { return ExitFault }

func NotFoundf(format string, a ...any) error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, a...)}
}

func Preconditionf(format string, a ...any) error {
	return &Error{Kind: Precondition, Message: fmt.Sprintf(format, a...)}
}

func Validationf(format string, a ...any) error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, a...)}
}

// CollaboratorError wraps err from the store, bus or another external
// dependency with a hint telling the operator how to recover.
func CollaboratorError(message, hint string, err error) error {
	return &Error{Kind: Collaborator, Message: message, Hint: hint, Err: err}
}

// Is reports whether err carries a fault of kind k.
func Is(err error, k Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == k
}

type exitCoder interface {
	ExitCode() int
}

// ExitCode maps err onto the process status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return ExitFault
}

// Report prints err for the operator. Resolution failures list their
// candidates on stdout; everything else goes to stderr.
func Report(stdout, stderr io.Writer, err error) {
	if err == nil {
		return
	}

	var rerr *resolver.Error
	if errors.As(err, &rerr) {
		what := rerr.What
		if what == "" {
			what = "name"
		}
		switch {
		case rerr.Kind == resolver.Ambiguous:
			fmt.Fprintf(stdout, "%s %q is ambiguous. Matches:\n", what, rerr.Query)
		case rerr.Query == "":
			fmt.Fprintf(stdout, "%s required. Available:\n", what)
		default:
			fmt.Fprintf(stdout, "%s %q not found. Available:\n", what, rerr.Query)
		}
		for _, n := range rerr.Names {
			fmt.Fprintf(stdout, "\t%s\n", n)
		}
		return
	}

	var fe *Error
	if errors.As(err, &fe) {
		switch fe.Kind {
		case NotFound, Precondition:
			fmt.Fprintln(stderr, fe.Error())
		case Collaborator:
			fmt.Fprintln(stderr, fe.Error())
			if fe.Hint != "" {
				fmt.Fprintf(stderr, "hint: %s\n", fe.Hint)
			}
		default:
			fmt.Fprintf(stderr, "%s error: %s\n", fe.Kind, fe.Error())
		}
		return
	}

	fmt.Fprintf(stderr, "error: %s\n", strings.TrimSpace(err.Error()))
}
