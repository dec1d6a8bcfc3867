// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package attrs describes the columns a list command renders. Each Attr
// names a gjson path into a record, the column title, and an optional
// transform applied to the rendered value.
package attrs

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
)

// Now is the reference time for relative transforms.
var Now = time.Now

var lengthRe = regexp.MustCompile(`-?\d+`)

// Attr is one output column.
type Attr struct {
	// gjson path into the record.
	Key string
	// Rendered or only used for filtering and sorting.
	Include bool
	// Column title and key in json/yaml output.
	OutputKey string
	// Transform letters: l/u case, t local time, h relative time, g size
	// in GiB, and an optional length (negative elides the middle).
	TransformSpec string
}

func (a *Attr) Transform(value interface{}) interface{} {
	if strings.ContainsAny(a.TransformSpec, "gG") {
		if n, ok := value.(float64); ok {
			return humanize.IBytes(uint64(n) << 30)
		}
	}

	result, ok := value.(string)
	if !ok {
		return value
	}

	if strings.ContainsAny(a.TransformSpec, "hH") {
		if t, err := time.Parse(time.RFC3339, result); err == nil {
			result = humanize.RelTime(t, Now(), "ago", "from now")
		}
	} else if strings.ContainsAny(a.TransformSpec, "tT") {
		// Only convert when a zone is named explicitly.
		tz := os.Getenv("NOVACTL_TZ")
		if tz == "" {
			tz = os.Getenv("TZ")
		}
		if tz != "" {
			if loc, err := time.LoadLocation(tz); err == nil {
				if t, err := time.Parse(time.RFC3339, result); err == nil {
					result = t.In(loc).Format("2006-01-02T15:04:05MST")
				} else {
					log.Debugf("not a timestamp: %s", result)
				}
			}
		}
	}

	// The last case letter wins so a column spec overrides a global one.
	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")
	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	if match := lengthRe.FindAllString(a.TransformSpec, -1); len(match) != 0 {
		l, _ := strconv.Atoi(match[len(match)-1])
		abs := int(math.Abs(float64(l)))
		if abs > 0 && len(result) > abs {
			if l < 0 && abs >= 4 {
				keep := abs/2 - 1
				result = result[:keep] + ".." + result[len(result)-keep:]
			} else {
				result = result[:abs]
			}
		}
	}

	return result
}

type AttrList []Attr

// String renders the list back in --attrs syntax.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		result = append(result, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Set parses comma separated key[:title[:transform]] specs. A leading !
// hides the column; a key already in the list is updated in place, which
// lets --attrs retitle or hide a command's default columns.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	const (
		keyIdx = iota
		outputIdx
		transformIdx
	)

specloop:
	for _, spec := range strings.Split(value, ",") {
		attr := Attr{Include: true}

		fields := strings.Split(spec, ":")
		if len(fields) > transformIdx+1 {
			return fmt.Errorf("invalid attr spec %q", spec)
		}

		attr.Key = strings.TrimSpace(fields[keyIdx])
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}
		if attr.Key == "" {
			return fmt.Errorf("invalid attr spec %q", spec)
		}
		if attr.Key == "*" {
			attr.Include = false
		}

		if len(fields) == 1 || fields[outputIdx] == "" {
			segments := strings.Split(attr.Key, ".")
			attr.OutputKey = segments[len(segments)-1]
		} else {
			attr.OutputKey = strings.TrimSpace(fields[outputIdx])
		}

		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}

		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key {
				(*a)[i].Include = attr.Include
				if len(fields) > outputIdx && fields[outputIdx] != "" {
					(*a)[i].OutputKey = attr.OutputKey
				}
				if attr.TransformSpec != "" {
					(*a)[i].TransformSpec = attr.TransformSpec
				}
				continue specloop
			}
		}

		*a = append(*a, attr)
	}

	return nil
}

// MustParse builds a list from specs known at compile time.
func MustParse(spec string) AttrList {
	var a AttrList
	if err := a.Set(spec); err != nil {
		panic(err)
	}
	return a
}

// SetGlobalTransformSpec prepends the transform of a "*" entry to every
// attr so column specs still override it.
func (a *AttrList) SetGlobalTransformSpec() error {
	spec := ""
	for i := range *a {
		if (*a)[i].Key == "*" {
			spec = (*a)[i].TransformSpec
			break
		}
	}
	if spec == "" {
		return nil
	}
	for i := range *a {
		if (*a)[i].Key == "*" {
			continue
		}
		(*a)[i].TransformSpec = spec + "," + (*a)[i].TransformSpec
	}
	return nil
}

func (a *AttrList) Type() string {
	return "list"
}
