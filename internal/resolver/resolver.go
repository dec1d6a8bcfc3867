// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"fmt"
	"strings"
)

// ExitUsage is the process status reported for every resolution failure.
const ExitUsage = 2

// Candidate is a named value offered for resolution.
type Candidate[T any] struct {
	Name  string
	Value T
}

// Kind distinguishes the two ways a resolution can fail.
type Kind int

const (
	NoMatch Kind = iota
	Ambiguous
)

func (k Kind) String() string {
	if k == Ambiguous {
		return "ambiguous"
	}
	return "no match"
}

// Error is returned when a query does not resolve to exactly one candidate.
// For NoMatch, Names holds every candidate; for Ambiguous, only the matches.
type Error struct {
	Kind  Kind
	What  string
	Query string
	Names []string
}

func (e *Error) Error() string {
	what := e.What
	if what == "" {
		what = "name"
	}
	if e.Kind == Ambiguous {
		return fmt.Sprintf("%s %q is ambiguous: %s", what, e.Query, strings.Join(e.Names, ", "))
	}
	return fmt.Sprintf("%s %q not found: %s", what, e.Query, strings.Join(e.Names, ", "))
}

// ExitCode lets main map resolution failures onto the usage status.
func (e *Error) ExitCode() int {
	return ExitUsage
}

// Resolve returns the single candidate whose name starts with query,
// compared case-insensitively. Matching is anchored at position zero, so
// "serv" matches "service" but not "myservice".
func Resolve[T any](query string, candidates []Candidate[T]) (Candidate[T], error) {
	return ResolveNamed("", query, candidates)
}

// ResolveNamed is Resolve with a label ("category", "action") carried into
// the error for diagnostics.
func ResolveNamed[T any](what string, query string, candidates []Candidate[T]) (Candidate[T], error) {
	q := strings.ToLower(query)

	var matches []Candidate[T]
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c.Name), q) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return Candidate[T]{}, &Error{Kind: NoMatch, What: what, Query: query, Names: Names(candidates)}
	default:
		return Candidate[T]{}, &Error{Kind: Ambiguous, What: what, Query: query, Names: Names(matches)}
	}
}

// Names returns the candidate names in order.
func Names[T any](candidates []Candidate[T]) []string {
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.Name)
	}
	return names
}

// Duplicates reports names that collide case-insensitively or where one
// name is a prefix of another, either of which would make a registered
// entry unreachable.
func Duplicates[T any](candidates []Candidate[T]) []string {
	var out []string
	for i, a := range candidates {
		la := strings.ToLower(a.Name)
		for _, b := range candidates[i+1:] {
			lb := strings.ToLower(b.Name)
			if strings.HasPrefix(la, lb) || strings.HasPrefix(lb, la) {
				out = append(out, a.Name+"/"+b.Name)
			}
		}
	}
	return out
}
