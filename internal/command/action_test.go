// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"errors"
	"net/netip"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bindFixture struct {
	Project string       `arg:"project" validate:"required"`
	IP      netip.Addr   `arg:"ip"`
	Port    int          `arg:"port" validate:"min=1,max=65535"`
	Range   netip.Prefix `arg:"range,optional"`
	Admin   bool         `arg:"admin,optional"`
	Ignored string
}

type restFixture struct {
	Path string   `arg:"path"`
	Args []string `arg:"args,rest"`
}

func TestUsage(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want string
	}{
		{"none", reflect.TypeOf(none{}), ""},
		{"optional", reflect.TypeOf(bindFixture{}), "PROJECT IP PORT [RANGE] [ADMIN]"},
		{"rest", reflect.TypeOf(restFixture{}), "PATH [ARGS...]"},
		{"project zipfile", reflect.TypeOf(projectZipParams{}), "PROJECT USER [DESTINATION]"},
		{"network create", reflect.TypeOf(networkCreateParams{}),
			"FIXED_RANGE [NUM_NETWORKS] [NETWORK_SIZE] [VLAN_START] [VPN_START]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Usage(tt.typ))
		})
	}
}

func TestBind(t *testing.T) {
	var p bindFixture
	require.NoError(t, Bind(&p, []string{"alpha", "10.0.0.1", "1194", "10.1.0.0/24", "T"}))
	assert.Equal(t, "alpha", p.Project)
	assert.Equal(t, netip.MustParseAddr("10.0.0.1"), p.IP)
	assert.Equal(t, 1194, p.Port)
	assert.Equal(t, netip.MustParsePrefix("10.1.0.0/24"), p.Range)
	assert.True(t, p.Admin)
	assert.Empty(t, p.Ignored)

	var q bindFixture
	require.NoError(t, Bind(&q, []string{"alpha", "10.0.0.1", "22"}))
	assert.False(t, q.Range.IsValid())
	assert.False(t, q.Admin)
}

func TestBind_Failures(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		arity   bool
		wantErr string
	}{
		{"too few", []string{"alpha"}, true, "expected 3 to 5 arguments, got 1"},
		{"too many", []string{"a", "10.0.0.1", "1", "10.0.0.0/8", "T", "x"}, true, "expected 3 to 5 arguments, got 6"},
		{"bad ip", []string{"a", "nope", "1"}, false, `IP: "nope" is not an IP address`},
		{"bad int", []string{"a", "10.0.0.1", "x"}, false, `PORT: "x" is not an integer`},
		{"bad prefix", []string{"a", "10.0.0.1", "1", "10.0.0.1"}, false, `RANGE: "10.0.0.1" is not a CIDR range`},
		{"bad bool", []string{"a", "10.0.0.1", "1", "10.0.0.0/8", "maybe"}, false, `ADMIN: "maybe" is not a boolean`},
		{"validation", []string{"a", "10.0.0.1", "70000"}, false, `PORT "70000" fails max=65535`},
		{"required empty", []string{"", "10.0.0.1", "1"}, false, `PROJECT "" fails required`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p bindFixture
			err := Bind(&p, tt.args)
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
			var ae *ArityError
			assert.Equal(t, tt.arity, errors.As(err, &ae))
		})
	}
}

func TestBind_Rest(t *testing.T) {
	var p restFixture
	require.NoError(t, Bind(&p, []string{"run.sh", "a", "b", "c"}))
	assert.Equal(t, "run.sh", p.Path)
	assert.Equal(t, []string{"a", "b", "c"}, p.Args)

	var q restFixture
	require.NoError(t, Bind(&q, []string{"run.sh"}))
	assert.Nil(t, q.Args)

	err := Bind(&restFixture{}, nil)
	assert.EqualError(t, err, "expected at least 1 argument(s), got 0")
}

func TestBind_None(t *testing.T) {
	require.NoError(t, Bind(&none{}, nil))
	assert.EqualError(t, Bind(&none{}, []string{"x"}), "expected 0 argument(s), got 1")
}

func TestBind_NotAStruct(t *testing.T) {
	var s string
	assert.Error(t, Bind(&s, nil))
	assert.Error(t, Bind(none{}, nil))
}
