// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"slices"

	"github.com/apex/log"

	"github.com/staranto/novactl/internal/fault"
	"github.com/staranto/novactl/internal/model"
	"github.com/staranto/novactl/internal/store"
)

// checkRole accepts any known role fleet-wide, and only project roles
// within a project.
func checkRole(role, project string) error {
	if project != "" {
		if !slices.Contains(ProjectRoles, role) {
			return fault.Validationf("%q is not a project role; project roles: %v", role, ProjectRoles)
		}
		return nil
	}
	if !slices.Contains(GlobalRoles, role) && !slices.Contains(ProjectRoles, role) {
		return fault.Validationf("unknown role %q; roles: %v %v", role, GlobalRoles, ProjectRoles)
	}
	return nil
}

func (m *Manager) AddRole(ctx context.Context, user, role, project string) error {
	if err := checkRole(role, project); err != nil {
		return err
	}
	u, err := m.GetUser(ctx, user)
	if err != nil {
		return err
	}

	if project == "" {
		if slices.Contains(u.Roles, role) {
			return nil
		}
		u.Roles = append(u.Roles, role)
		if err := store.Update(ctx, m.Store, model.KindUser, u.ID, u); err != nil {
			return err
		}
		log.WithFields(log.Fields{"user": user, "role": role}).Info("role granted")
		return nil
	}

	p, err := m.GetProject(ctx, project)
	if err != nil {
		return err
	}
	if !p.HasMember(user) {
		return fault.Preconditionf("user %s is not a member of %s", user, project)
	}
	if p.Roles == nil {
		p.Roles = map[string][]string{}
	}
	if slices.Contains(p.Roles[role], user) {
		return nil
	}
	p.Roles[role] = append(p.Roles[role], user)
	if err := store.Update(ctx, m.Store, model.KindProject, p.ID, p); err != nil {
		return err
	}
	log.WithFields(log.Fields{"user": user, "role": role, "project": project}).Info("role granted")
	return nil
}

// HasRole treats admins as holding every role.
func (m *Manager) HasRole(ctx context.Context, user, role, project string) (bool, error) {
	if err := checkRole(role, project); err != nil {
		return false, err
	}
	u, err := m.GetUser(ctx, user)
	if err != nil {
		return false, err
	}
	if u.IsAdmin {
		return true, nil
	}
	if project == "" {
		return slices.Contains(u.Roles, role), nil
	}
	p, err := m.GetProject(ctx, project)
	if err != nil {
		return false, err
	}
	return slices.Contains(p.Roles[role], user), nil
}

func (m *Manager) RemoveRole(ctx context.Context, user, role, project string) error {
	if err := checkRole(role, project); err != nil {
		return err
	}
	u, err := m.GetUser(ctx, user)
	if err != nil {
		return err
	}

	if project == "" {
		u.Roles = slices.DeleteFunc(u.Roles, func(r string) bool { return r == role })
		return store.Update(ctx, m.Store, model.KindUser, u.ID, u)
	}

	p, err := m.GetProject(ctx, project)
	if err != nil {
		return err
	}
	p.Roles[role] = slices.DeleteFunc(p.Roles[role], func(u string) bool { return u == user })
	return store.Update(ctx, m.Store, model.KindProject, p.ID, p)
}
