// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"time"

	"github.com/apex/log"

	"github.com/staranto/novactl/internal/statedir"
)

// Settings is the typed view of the config every command builder receives.
// Keys missing from the file take the defaults below.
type Settings struct {
	StorePath  string
	BusURL     string
	BusTimeout time.Duration
	// User is stamped on every cast as the requesting principal.
	User string

	ComputeTopic   string
	VolumeTopic    string
	NetworkTopic   string
	SchedulerTopic string

	VpnImage          string
	VpnInstanceType   string
	VpnLaunchInterval time.Duration

	ServiceDownTime time.Duration

	NumNetworks int
	NetworkSize int
	VlanStart   int
	VpnStart    int

	Quotas map[string]int

	EC2URL string
	S3URL  string

	AWSProfile  string
	AWSRegion   string
	AWSEndpoint string

	LogFile    string
	APILogFile string
}

// NewSettings materializes Settings from the loaded config.
func NewSettings() Settings {
	s := Settings{}
	s.StorePath = setting(GetString, "store.path", statedir.Path("store"))
	s.BusURL = setting(GetString, "bus.url", "nats://127.0.0.1:4222")
	s.BusTimeout = setting(GetDuration, "bus.timeout", 2*time.Second)
	s.User = setting(GetString, "bus.user", "admin")

	s.ComputeTopic = setting(GetString, "topics.compute", "compute")
	s.VolumeTopic = setting(GetString, "topics.volume", "volume")
	s.NetworkTopic = setting(GetString, "topics.network", "network")
	s.SchedulerTopic = setting(GetString, "topics.scheduler", "scheduler")

	s.VpnImage = setting(GetString, "vpn.image", "ami-cloudpipe")
	s.VpnInstanceType = setting(GetString, "vpn.instance_type", "m1.tiny")
	s.VpnLaunchInterval = setting(GetDuration, "vpn.launch_interval", 10*time.Second)

	s.ServiceDownTime = setting(GetDuration, "service.down_time", 60*time.Second)

	s.NumNetworks = setting(GetInt, "network.num_networks", 1)
	s.NetworkSize = setting(GetInt, "network.network_size", 256)
	s.VlanStart = setting(GetInt, "network.vlan_start", 100)
	s.VpnStart = setting(GetInt, "network.vpn_start", 1000)

	s.Quotas = GetIntMap("quota")

	s.EC2URL = setting(GetString, "api.ec2_url", "http://127.0.0.1:8773/services/Cloud")
	s.S3URL = setting(GetString, "api.s3_url", "http://127.0.0.1:3333")

	s.AWSProfile = setting(GetString, "aws.profile", "")
	s.AWSRegion = setting(GetString, "aws.region", "")
	s.AWSEndpoint = setting(GetString, "aws.endpoint", "")

	s.LogFile = setting(GetString, "log.file", "")
	s.APILogFile = setting(GetString, "log.api_file", statedir.Path("api.log"))
	return s
}

// setting reads key through get. A value of the wrong type is reported and
// replaced by def.
func setting[T any](get func(string, ...T) (T, error), key string, def T) T {
	v, err := get(key, def)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("ignoring config value")
		return def
	}
	return v
}
