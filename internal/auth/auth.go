// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/staranto/novactl/internal/clock"
	"github.com/staranto/novactl/internal/fault"
	"github.com/staranto/novactl/internal/model"
	"github.com/staranto/novactl/internal/store"
)

// Roles granted fleet-wide.
var GlobalRoles = []string{"cloudadmin", "itsec"}

// Roles granted within a project.
var ProjectRoles = []string{"sysadmin", "netadmin", "developer"}

// DefaultQuotas applies to projects that never set their own.
var DefaultQuotas = map[string]int{
	"instances":    10,
	"cores":        20,
	"volumes":      10,
	"gigabytes":    1000,
	"floating_ips": 10,
}

type Service interface {
	CreateUser(ctx context.Context, name, access, secret string, admin bool) (*model.User, error)
	GetUser(ctx context.Context, name string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	DeleteUser(ctx context.Context, name string) error
	ModifyUser(ctx context.Context, name, access, secret string, admin *bool) (*model.User, error)

	CreateProject(ctx context.Context, name, manager, description string) (*model.Project, error)
	GetProject(ctx context.Context, name string) (*model.Project, error)
	ListProjects(ctx context.Context) ([]*model.Project, error)
	DeleteProject(ctx context.Context, name string) error
	AddUserToProject(ctx context.Context, user, project string) error
	RemoveUserFromProject(ctx context.Context, user, project string) error
	SetQuota(ctx context.Context, project, key string, value int) error
	Quotas(ctx context.Context, project string) (map[string]int, error)
	SetVpn(ctx context.Context, project, ip string, port int) error

	AddRole(ctx context.Context, user, role, project string) error
	HasRole(ctx context.Context, user, role, project string) (bool, error)
	RemoveRole(ctx context.Context, user, role, project string) error

	GetEnvironmentRC(ctx context.Context, user, project string) (string, error)
	GetCredentialsArchive(ctx context.Context, user, project string) ([]byte, error)
}

// Manager is the store-backed Service.
type Manager struct {
	Store store.Store
	Clock clock.Clock
	// Endpoints are written into environment files.
	EC2URL string
	S3URL  string
	// Defaults overrides DefaultQuotas when set.
	Defaults map[string]int
}

var _ Service = (*Manager)(nil)

func notFound(err error, what, name string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fault.NotFoundf("%s %s not found", what, name)
	}
	return err
}

func exists(err error, what, name string) error {
	if errors.Is(err, store.ErrExists) {
		return fault.Preconditionf("%s %s already exists", what, name)
	}
	return err
}

func (m *Manager) CreateUser(ctx context.Context, name, access, secret string, admin bool) (*model.User, error) {
	if access == "" {
		access = uuid.NewString()
	}
	if secret == "" {
		secret = uuid.NewString()
	}
	u := &model.User{ID: name, AccessKey: access, SecretKey: secret, IsAdmin: admin}
	if err := store.Create(ctx, m.Store, model.KindUser, name, u); err != nil {
		return nil, exists(err, "user", name)
	}
	log.WithFields(log.Fields{"user": name, "admin": admin}).Info("user created")
	return u, nil
}

func (m *Manager) GetUser(ctx context.Context, name string) (*model.User, error) {
	u, err := store.Get[model.User](ctx, m.Store, model.KindUser, name)
	if err != nil {
		return nil, notFound(err, "user", name)
	}
	return u, nil
}

func (m *Manager) ListUsers(ctx context.Context) ([]*model.User, error) {
	return store.List[model.User](ctx, m.Store, model.KindUser, nil)
}

// DeleteUser also drops the user from every project. Projects managed by
// the user must be reassigned or deleted first.
func (m *Manager) DeleteUser(ctx context.Context, name string) error {
	if _, err := m.GetUser(ctx, name); err != nil {
		return err
	}
	projects, err := m.ListProjects(ctx)
	if err != nil {
		return err
	}
	for _, p := range projects {
		if p.ManagerUser == name {
			return fault.Preconditionf("user %s manages project %s", name, p.ID)
		}
	}
	for _, p := range projects {
		if !p.HasMember(name) {
			continue
		}
		dropMember(p, name)
		if err := store.Update(ctx, m.Store, model.KindProject, p.ID, p); err != nil {
			return err
		}
	}
	if err := m.Store.Destroy(ctx, model.KindUser, name); err != nil {
		return notFound(err, "user", name)
	}
	log.WithField("user", name).Info("user deleted")
	return nil
}

// ModifyUser changes the non-empty fields. A nil admin leaves the flag.
func (m *Manager) ModifyUser(ctx context.Context, name, access, secret string, admin *bool) (*model.User, error) {
	u, err := m.GetUser(ctx, name)
	if err != nil {
		return nil, err
	}
	if access != "" {
		u.AccessKey = access
	}
	if secret != "" {
		u.SecretKey = secret
	}
	if admin != nil {
		u.IsAdmin = *admin
	}
	if err := store.Update(ctx, m.Store, model.KindUser, name, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (m *Manager) CreateProject(ctx context.Context, name, manager, description string) (*model.Project, error) {
	if _, err := m.GetUser(ctx, manager); err != nil {
		return nil, err
	}
	if description == "" {
		description = name
	}
	p := &model.Project{
		ID:          name,
		Name:        name,
		Description: description,
		ManagerUser: manager,
		Members:     []string{manager},
		CreatedAt:   m.Clock.Now().UTC(),
	}
	if err := store.Create(ctx, m.Store, model.KindProject, name, p); err != nil {
		return nil, exists(err, "project", name)
	}
	log.WithFields(log.Fields{"project": name, "manager": manager}).Info("project created")
	return p, nil
}

func (m *Manager) GetProject(ctx context.Context, name string) (*model.Project, error) {
	p, err := store.Get[model.Project](ctx, m.Store, model.KindProject, name)
	if err != nil {
		return nil, notFound(err, "project", name)
	}
	return p, nil
}

func (m *Manager) ListProjects(ctx context.Context) ([]*model.Project, error) {
	return store.List[model.Project](ctx, m.Store, model.KindProject, nil)
}

func (m *Manager) DeleteProject(ctx context.Context, name string) error {
	if err := m.Store.Destroy(ctx, model.KindProject, name); err != nil {
		return notFound(err, "project", name)
	}
	log.WithField("project", name).Info("project deleted")
	return nil
}

func (m *Manager) AddUserToProject(ctx context.Context, user, project string) error {
	if _, err := m.GetUser(ctx, user); err != nil {
		return err
	}
	p, err := m.GetProject(ctx, project)
	if err != nil {
		return err
	}
	if p.HasMember(user) {
		return nil
	}
	p.Members = append(p.Members, user)
	return store.Update(ctx, m.Store, model.KindProject, p.ID, p)
}

func (m *Manager) RemoveUserFromProject(ctx context.Context, user, project string) error {
	p, err := m.GetProject(ctx, project)
	if err != nil {
		return err
	}
	if p.ManagerUser == user {
		return fault.Preconditionf("user %s manages project %s", user, project)
	}
	if !p.HasMember(user) {
		return fault.NotFoundf("user %s is not a member of %s", user, project)
	}
	dropMember(p, user)
	return store.Update(ctx, m.Store, model.KindProject, p.ID, p)
}

func dropMember(p *model.Project, user string) {
	p.Members = slices.DeleteFunc(p.Members, func(m string) bool { return m == user })
	for role, users := range p.Roles {
		p.Roles[role] = slices.DeleteFunc(users, func(u string) bool { return u == user })
	}
}

func (m *Manager) defaults() map[string]int {
	if len(m.Defaults) > 0 {
		return m.Defaults
	}
	return DefaultQuotas
}

func (m *Manager) SetQuota(ctx context.Context, project, key string, value int) error {
	if _, ok := m.defaults()[key]; !ok {
		return fault.Validationf("unknown quota %q; known: %s", key, quotaKeys(m.defaults()))
	}
	if value < 0 {
		return fault.Validationf("quota %s must not be negative", key)
	}
	p, err := m.GetProject(ctx, project)
	if err != nil {
		return err
	}
	if p.Quotas == nil {
		p.Quotas = map[string]int{}
	}
	p.Quotas[key] = value
	return store.Update(ctx, m.Store, model.KindProject, p.ID, p)
}

// Quotas returns the effective quotas of project, defaults filled in.
func (m *Manager) Quotas(ctx context.Context, project string) (map[string]int, error) {
	p, err := m.GetProject(ctx, project)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(m.defaults()))
	for k, v := range m.defaults() {
		out[k] = v
	}
	for k, v := range p.Quotas {
		out[k] = v
	}
	return out, nil
}

func quotaKeys(q map[string]int) string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprint(keys)
}

func (m *Manager) SetVpn(ctx context.Context, project, ip string, port int) error {
	p, err := m.GetProject(ctx, project)
	if err != nil {
		return err
	}
	p.VpnIP = ip
	p.VpnPort = port
	return store.Update(ctx, m.Store, model.KindProject, p.ID, p)
}
