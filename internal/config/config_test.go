// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/novactl/internal/statedir"
)

// setupTestConfig points NOVACTL_CFG at a testdata file and resets the
// global Config so the next getter reloads.
func setupTestConfig(t *testing.T, testdataFile string) {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join("testdata", testdataFile))
	require.NoError(t, err, "failed to get absolute path for test config")

	t.Setenv("NOVACTL_CFG", absPath)
	t.Setenv("NOVACTL_STATE_DIR", t.TempDir())
	Config = Type{}
	t.Cleanup(func() { Config = Type{} })
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		testFile  string
		checkFunc func(*testing.T, Type)
	}{
		{
			name:     "simple values",
			testFile: "simple.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Equal(t, "us-east-1", cfg.Data["region"])
			},
		},
		{
			name:     "nested structure",
			testFile: "nested.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				vpn, ok := cfg.Data["vpn"].(map[string]interface{})
				assert.True(t, ok, "vpn should be a map")
				assert.Equal(t, "ami-vpn", vpn["image"])
			},
		},
		{
			name:     "mixed types",
			testFile: "mixed-types.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.Equal(t, 1, cfg.Data["version"])
				assert.Equal(t, true, cfg.Data["enabled"])
				assert.Equal(t, 30.5, cfg.Data["timeout"])
				tags, ok := cfg.Data["tags"].([]interface{})
				assert.True(t, ok)
				assert.Len(t, tags, 2)
			},
		},
		{
			name:     "empty file",
			testFile: "empty.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source, "should have a source path")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)

			cfg, err := Load()
			require.NoError(t, err)
			tt.checkFunc(t, cfg)
		})
	}
}

func TestLoad_ExplicitPathWins(t *testing.T) {
	setupTestConfig(t, "simple.yaml")

	cfg, err := Load(filepath.Join("testdata", "nested.yaml"))
	require.NoError(t, err)
	assert.Contains(t, cfg.Data, "vpn")
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("NOVACTL_CFG", "/nonexistent/path/novactl.yaml")
	Config = Type{}

	_, err := Load()
	assert.ErrorContains(t, err, "config file not found")
}

func TestLoad_CfgIsDirectory(t *testing.T) {
	t.Setenv("NOVACTL_CFG", "testdata")
	Config = Type{}

	_, err := Load()
	assert.ErrorContains(t, err, "points to a directory")
}

func TestGetString(t *testing.T) {
	tests := []struct {
		name         string
		testFile     string
		key          string
		defaultValue []string
		want         string
		wantErr      bool
	}{
		{"simple string value", "simple.yaml", "region", nil, "us-east-1", false},
		{"nested string value", "nested.yaml", "vpn.image", nil, "ami-vpn", false},
		{"missing key with default", "simple.yaml", "missing", []string{"default-value"}, "default-value", false},
		{"missing key without default", "simple.yaml", "missing", nil, "", true},
		{"non-string value", "mixed-types.yaml", "version", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)

			got, err := GetString(tt.key, tt.defaultValue...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetInt(t *testing.T) {
	tests := []struct {
		name         string
		testFile     string
		key          string
		defaultValue []int
		want         int
		wantErr      bool
	}{
		{"int value", "mixed-types.yaml", "version", nil, 1, false},
		{"float value converted to int", "mixed-types.yaml", "timeout", nil, 30, false},
		{"nested int value", "nested.yaml", "vpn.max_retries", nil, 5, false},
		{"missing key with default", "simple.yaml", "missing", []int{60}, 60, false},
		{"missing key without default", "simple.yaml", "missing", nil, 0, true},
		{"non-int value", "simple.yaml", "region", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)

			got, err := GetInt(tt.key, tt.defaultValue...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetBool(t *testing.T) {
	setupTestConfig(t, "mixed-types.yaml")

	got, err := GetBool("enabled")
	assert.NoError(t, err)
	assert.True(t, got)

	got, err = GetBool("missing", true)
	assert.NoError(t, err)
	assert.True(t, got)

	_, err = GetBool("name")
	assert.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		name     string
		testFile string
		key      string
		want     time.Duration
		wantErr  bool
	}{
		{"duration string", "nested.yaml", "vpn.launch_interval", 30 * time.Second, false},
		{"integer seconds", "mixed-types.yaml", "interval", 15 * time.Second, false},
		{"fractional seconds", "mixed-types.yaml", "timeout", 30500 * time.Millisecond, false},
		{"not a duration", "mixed-types.yaml", "name", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)

			got, err := GetDuration(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_GetWithNamespace(t *testing.T) {
	setupTestConfig(t, "nested.yaml")
	_, err := Load()
	require.NoError(t, err)

	Config.Namespace = "vpn"
	val, err := Config.get("instance_type")
	assert.NoError(t, err)
	assert.Equal(t, "m1.small", val)

	Config.Namespace = "network"
	val, err = Config.get("instance_type")
	assert.NoError(t, err)
	assert.Equal(t, "m1.large", val)
}

func TestConfig_GetNestedPath(t *testing.T) {
	setupTestConfig(t, "deep-nested.yaml")
	_, err := Load()
	require.NoError(t, err)

	val, err := Config.get("level1.level2.level3.value")
	assert.NoError(t, err)
	assert.Equal(t, "deep-value", val)
}

func TestConfig_LazyLoad(t *testing.T) {
	setupTestConfig(t, "simple.yaml")

	val, err := GetString("region")
	assert.NoError(t, err)
	assert.Equal(t, "us-east-1", val)
	assert.NotEmpty(t, Config.Source, "Config should be loaded")
}

func TestGetString_NamespaceFallback(t *testing.T) {
	setupTestConfig(t, "namespace.yaml")
	_, err := Load()
	require.NoError(t, err)

	Config.Namespace = "vpn"

	val, err := GetString("setting")
	assert.NoError(t, err)
	assert.Equal(t, "vpn-value", val)

	val, err = GetString("specific")
	assert.NoError(t, err)
	assert.Equal(t, "vpn-specific", val)

	_, err = GetString("nonexistent")
	assert.Error(t, err)
}

func TestNewSettings(t *testing.T) {
	setupTestConfig(t, "settings.yaml")

	s := NewSettings()
	assert.Equal(t, "/var/lib/novactl/store", s.StorePath)
	assert.Equal(t, "nats://bus.example:4222", s.BusURL)
	assert.Equal(t, 5*time.Second, s.BusTimeout)
	assert.Equal(t, "compute-east", s.ComputeTopic)
	assert.Equal(t, "volume", s.VolumeTopic)
	assert.Equal(t, "ami-vpn", s.VpnImage)
	assert.Equal(t, 3*time.Second, s.VpnLaunchInterval)
	assert.Equal(t, map[string]int{"instances": 4, "cores": 8}, s.Quotas)
	assert.Equal(t, "http://cc.example:8773/services/Cloud", s.EC2URL)
}

func TestNewSettings_Defaults(t *testing.T) {
	setupTestConfig(t, "empty.yaml")

	s := NewSettings()
	assert.Equal(t, "scheduler", s.SchedulerTopic)
	assert.Equal(t, 10*time.Second, s.VpnLaunchInterval)
	assert.Equal(t, 60*time.Second, s.ServiceDownTime)
	assert.Equal(t, 256, s.NetworkSize)
	assert.Nil(t, s.Quotas)
	assert.Equal(t, "admin", s.User)
	assert.Equal(t, "store", filepath.Base(s.StorePath))
}

func TestNewSettings_WrongTypesFallBack(t *testing.T) {
	setupTestConfig(t, "wrong-types.yaml")

	s := NewSettings()
	assert.Equal(t, statedir.Path("store"), s.StorePath)
	assert.Equal(t, "nats://bus.example:4222", s.BusURL)
	assert.Equal(t, 2*time.Second, s.BusTimeout)
	assert.Equal(t, 256, s.NetworkSize)
}
