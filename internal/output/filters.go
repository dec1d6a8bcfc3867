// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"cmp"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/novactl/internal/attrs"
)

// A filter is KEY OP TARGET where OP is one of = ^ ~ < > @ /, optionally
// negated with a leading '!'.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter is one parsed --filter expression. Key names an output column.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// BuildFilters splits spec on NOVACTL_FILTER_DELIM (default ",") and parses
// each expression. Malformed expressions are logged and dropped.
func BuildFilters(spec string) []Filter {
	if spec == "" {
		return nil
	}

	delim := cmp.Or(os.Getenv("NOVACTL_FILTER_DELIM"), ",")

	out := make([]Filter, 0, strings.Count(spec, delim)+1)
	for _, expr := range strings.Split(spec, delim) {
		m := filterRegex.FindStringSubmatch(expr)
		if m == nil {
			log.WithField("filter", expr).Error("invalid filter")
			continue
		}
		op, negate := strings.CutPrefix(m[2], "!")
		out = append(out, Filter{
			Key:     strings.TrimSpace(m[1]),
			Negate:  negate,
			Operand: op,
			Target:  m[3],
		})
	}
	return out
}

// Match reports whether v satisfies the filter. A missing value never
// matches, negated or not.
func (f Filter) Match(v gjson.Result) bool {
	if !v.Exists() || v.Type == gjson.Null {
		return false
	}

	var ok bool
	switch {
	case v.Type == gjson.Number:
		ok = f.number(v.Num)
	case v.IsArray():
		if f.Operand != "@" {
			return false
		}
		ok = false
		for _, item := range v.Array() {
			if item.String() == f.Target {
				ok = true
				break
			}
		}
	case v.IsObject():
		if f.Operand != "@" {
			return false
		}
		ok = v.Get(gjson.Escape(f.Target)).Exists()
	default:
		// Strings and booleans compare as text.
		var valid bool
		ok, valid = f.text(v.String())
		if !valid {
			return false
		}
	}
	return ok != f.Negate
}

// text evaluates the operand against s. The second result is false when the
// filter itself is unusable.
func (f Filter) text(s string) (bool, bool) {
	switch f.Operand {
	case "=":
		return s == f.Target, true
	case "~":
		return strings.EqualFold(s, f.Target), true
	case "^":
		return strings.HasPrefix(s, f.Target), true
	case ">":
		return s > f.Target, true
	case "<":
		return s < f.Target, true
	case "@":
		return strings.Contains(s, f.Target), true
	case "/":
		re, err := regexp.Compile(f.Target)
		if err != nil {
			log.WithField("regex", f.Target).Error("invalid regex")
			return false, false
		}
		return re.MatchString(s), true
	}
	log.WithField("operand", f.Operand).Error("unsupported filtering operand")
	return false, false
}

// number compares numerically when the target is numeric and falls back to
// text otherwise.
func (f Filter) number(n float64) bool {
	target, err := strconv.ParseFloat(f.Target, 64)
	if err == nil {
		switch f.Operand {
		case "=":
			return n == target
		case ">":
			return n > target
		case "<":
			return n < target
		}
	}
	ok, _ := f.text(strconv.FormatFloat(n, 'f', -1, 64))
	return ok
}

// FilterDataset returns the rows of candidates that pass every filter in
// spec, each reduced to cols and keyed by output key. Transforms are left
// to SliceDiceSpit.
func FilterDataset(candidates gjson.Result, cols attrs.AttrList, spec string) []map[string]interface{} {
	filters := BuildFilters(spec)

	// Resolve filter keys to source paths once.
	paths := make([]string, len(filters))
	for i, f := range filters {
		for _, a := range cols {
			if a.OutputKey == f.Key {
				paths[i] = a.Key
				break
			}
		}
		if paths[i] == "" {
			log.WithField("key", f.Key).Warn("filter key not found")
		}
	}

	var rows []map[string]interface{}
	for _, c := range candidates.Array() {
		keep := true
		for i, f := range filters {
			if paths[i] != "" && !f.Match(c.Get(paths[i])) {
				keep = false
				break
			}
		}
		if !keep {
			continue
		}

		row := make(map[string]interface{}, len(cols))
		for _, a := range cols {
			if a.Key != "*" {
				row[a.OutputKey] = c.Get(a.Key).Value()
			}
		}
		rows = append(rows, row)
	}
	return rows
}
