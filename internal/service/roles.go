package service

import (
	"context"
	"errors"
	"fmt"

	"srm-service/internal/model"
	"srm-service/internal/store"
)

// RoleInput carries the admin-supplied fields for role creation and update.
type RoleInput struct {
	Name     string         `json:"name"`
	Code     string         `json:"code"`
	Terminal model.Terminal `json:"terminal"`
	MenuKeys []string       `json:"menu_keys"`
}

func (in *RoleInput) validate() error {
	if in.Code == "" {
		return validationf("role code is required")
	}
	if in.Name == "" {
		return validationf("role name is required")
	}
	if in.Terminal != model.TerminalDepartment && in.Terminal != model.TerminalAdmin {
		return validationf("backend roles are scoped to the department or admin terminal, got %q", in.Terminal)
	}
	return nil
}

// Roles is the admin CRUD surface for backend roles, their menu grants and
// their principal assignments.
type Roles struct {
	store store.Store
}

// NewRoles returns a Roles service over st.
func NewRoles(st store.Store) *Roles {
	return &Roles{store: st}
}

// CreateRole creates a backend role with its menu grants.
func (r *Roles) CreateRole(ctx context.Context, actorID uint, in RoleInput) (*model.BackendRole, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	role := &model.BackendRole{
		Name:      in.Name,
		Code:      in.Code,
		Terminal:  in.Terminal,
		CreatedBy: actorID,
	}
	err := r.store.Atomically(ctx, func(tx store.Store) error {
		if err := tx.CreateRole(ctx, role, in.MenuKeys); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return validationf("role code %q already exists", in.Code)
			}
			return err
		}
		return tx.AppendAudit(ctx, &model.AuditRecord{
			TargetTable: "backend_roles",
			TargetID:    role.ID,
			Action:      model.AuditRoleCreate,
			ActorID:     actorID,
			Reason:      in.Code,
		})
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

// UpdateRole replaces a role's fields and its grant set.
func (r *Roles) UpdateRole(ctx context.Context, actorID, roleID uint, in RoleInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	role := &model.BackendRole{
		ID:       roleID,
		Name:     in.Name,
		Code:     in.Code,
		Terminal: in.Terminal,
	}
	return r.store.Atomically(ctx, func(tx store.Store) error {
		if err := tx.UpdateRole(ctx, role, in.MenuKeys); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		return tx.AppendAudit(ctx, &model.AuditRecord{
			TargetTable: "backend_roles",
			TargetID:    roleID,
			Action:      model.AuditRoleUpdate,
			ActorID:     actorID,
			Reason:      in.Code,
		})
	})
}

// DeleteRole removes a role; the cascade drops its menu grants and any
// principal assignments.
func (r *Roles) DeleteRole(ctx context.Context, actorID, roleID uint) error {
	return r.store.Atomically(ctx, func(tx store.Store) error {
		if err := tx.DeleteRoleCascade(ctx, roleID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		return tx.AppendAudit(ctx, &model.AuditRecord{
			TargetTable: "backend_roles",
			TargetID:    roleID,
			Action:      model.AuditRoleDelete,
			ActorID:     actorID,
		})
	})
}

// AssignUserRoles replaces userID's backend-role set with roleIDs. The
// replacement is delete-then-insert inside one transaction, so a concurrent
// menu resolution never observes the zero-assignment window in between.
func (r *Roles) AssignUserRoles(ctx context.Context, actorID, userID uint, roleIDs []uint) error {
	if _, err := r.store.FindPrincipal(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	unique := make([]uint, 0, len(roleIDs))
	seen := make(map[uint]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	count, err := r.store.CountRoles(ctx, unique)
	if err != nil {
		return err
	}
	if count != int64(len(unique)) {
		return validationf("one or more role ids do not exist")
	}

	return r.store.Atomically(ctx, func(tx store.Store) error {
		if err := tx.ReplaceAssignments(ctx, userID, unique); err != nil {
			return err
		}
		return tx.AppendAudit(ctx, &model.AuditRecord{
			TargetTable: "principals",
			TargetID:    userID,
			Action:      model.AuditRoleAssign,
			ActorID:     actorID,
			Reason:      fmt.Sprintf("%d roles", len(unique)),
		})
	})
}
