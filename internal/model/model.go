// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package model holds the records novactl reads and writes through the
// store. They are shared by the command, auth, network and cloudpipe layers.
package model

import "time"

// Store kinds.
const (
	KindUser       = "user"
	KindProject    = "project"
	KindInstance   = "instance"
	KindVolume     = "volume"
	KindNetwork    = "network"
	KindFixedIP    = "fixed_ip"
	KindFloatingIP = "floating_ip"
	KindService    = "service"
)

// Volume statuses.
const (
	VolumeAvailable = "available"
	VolumeInUse     = "in-use"
	VolumeDeleting  = "deleting"
)

type User struct {
	ID        string   `json:"id"`
	AccessKey string   `json:"access_key"`
	SecretKey string   `json:"secret_key"`
	IsAdmin   bool     `json:"is_admin"`
	Roles     []string `json:"roles,omitempty"`
}

type Project struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	ManagerUser string              `json:"manager_user"`
	Members     []string            `json:"members,omitempty"`
	Roles       map[string][]string `json:"roles,omitempty"`
	VpnIP       string              `json:"vpn_ip,omitempty"`
	VpnPort     int                 `json:"vpn_port,omitempty"`
	Quotas      map[string]int      `json:"quotas,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// HasMember reports whether userID belongs to the project.
func (p *Project) HasMember(userID string) bool {
	for _, m := range p.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Instance is a virtual machine. The instance of a project booted from the
// VPN image is that project's VPN.
type Instance struct {
	ID               string    `json:"id"`
	ProjectID        string    `json:"project_id"`
	UserID           string    `json:"user_id,omitempty"`
	ImageID          string    `json:"image_id"`
	Host             string    `json:"host,omitempty"`
	State            string    `json:"state"`
	StateDescription string    `json:"state_description"`
	FixedIP          string    `json:"fixed_ip,omitempty"`
	DisplayName      string    `json:"display_name,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type Volume struct {
	ID           string `json:"id"`
	ProjectID    string `json:"project_id,omitempty"`
	Size         int    `json:"size"`
	Status       string `json:"status"`
	AttachStatus string `json:"attach_status,omitempty"`
	InstanceID   string `json:"instance_id,omitempty"`
	Mountpoint   string `json:"mountpoint,omitempty"`
	Host         string `json:"host,omitempty"`
}

type Network struct {
	ID            string `json:"id"`
	CIDR          string `json:"cidr"`
	Netmask       string `json:"netmask"`
	Gateway       string `json:"gateway"`
	Broadcast     string `json:"broadcast"`
	VLAN          int    `json:"vlan,omitempty"`
	VpnPublicPort int    `json:"vpn_public_port,omitempty"`
	ProjectID     string `json:"project_id,omitempty"`
	Host          string `json:"host,omitempty"`
}

type FixedIP struct {
	Address    string `json:"address"`
	NetworkID  string `json:"network_id"`
	InstanceID string `json:"instance_id,omitempty"`
	Allocated  bool   `json:"allocated"`
	Reserved   bool   `json:"reserved"`
}

// FloatingIP is a publicly routable address bound to a host. Address is
// unique across the fleet and doubles as the store key.
type FloatingIP struct {
	Address   string `json:"address"`
	Host      string `json:"host"`
	FixedIP   string `json:"fixed_ip,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
}

type Service struct {
	ID          string    `json:"id"`
	Host        string    `json:"host"`
	Binary      string    `json:"binary"`
	Topic       string    `json:"topic"`
	Disabled    bool      `json:"disabled"`
	ReportCount int       `json:"report_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ServiceKey is the store key of the service running binary on host.
func ServiceKey(host, binary string) string {
	return host + ":" + binary
}
