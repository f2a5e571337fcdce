package service

import (
	"context"

	"srm-service/internal/model"
	"srm-service/internal/store"
	"srm-service/prometheus"
)

// MenuResolver computes the menu tree visible to a principal on one
// terminal.
//
// The resolution is deliberately fallback-open at two levels: a principal
// with no backend-role assignment sees the full active menu set of its
// terminal, and so does a principal whose assigned roles grant nothing. An
// admin who creates a role and forgets to grant it menus therefore widens
// visibility instead of locking holders out. Both fallback events are
// counted under the "fallback_open" metric outcome so they are observable.
type MenuResolver struct {
	store    store.Store
	identity *Identity
}

// NewMenuResolver returns a MenuResolver backed by st.
func NewMenuResolver(st store.Store, identity *Identity) *MenuResolver {
	return &MenuResolver{store: st, identity: identity}
}

// ResolveMenus returns the ordered list of menu items principalID may see
// on terminal. Principals without the terminal role get an empty list, not
// an error.
func (r *MenuResolver) ResolveMenus(ctx context.Context, principalID uint, terminal model.Terminal) ([]model.MenuItem, error) {
	pc, err := r.identity.Resolve(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if !pc.HasTerminal(terminal) {
		prometheus.RecordMenuResolution(string(terminal), "denied")
		return []model.MenuItem{}, nil
	}

	menus, err := r.store.ActiveMenus(ctx, terminal)
	if err != nil {
		return nil, err
	}

	// Admins always see every admin-terminal menu; backend-role
	// configuration cannot narrow the admin terminal.
	if terminal == model.TerminalAdmin {
		prometheus.RecordMenuResolution(string(terminal), "full")
		return menus, nil
	}

	roles, err := r.store.RolesAssignedTo(ctx, principalID, terminal)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		prometheus.RecordMenuResolution(string(terminal), "fallback_open")
		return menus, nil
	}

	roleIDs := make([]uint, 0, len(roles))
	for _, role := range roles {
		roleIDs = append(roleIDs, role.ID)
	}
	granted, err := r.store.MenuKeysGranted(ctx, roleIDs)
	if err != nil {
		return nil, err
	}
	// Roles exist but grant nothing: treated as "no restriction
	// configured", not as lockout.
	if len(granted) == 0 {
		prometheus.RecordMenuResolution(string(terminal), "fallback_open")
		return menus, nil
	}

	grantedSet := make(map[string]struct{}, len(granted))
	for _, key := range granted {
		grantedSet[key] = struct{}{}
	}

	visible := make([]model.MenuItem, 0, len(menus))
	for _, item := range menus {
		if _, ok := grantedSet[item.Key]; ok {
			visible = append(visible, item)
		}
	}
	prometheus.RecordMenuResolution(string(terminal), "filtered")
	return visible, nil
}

// GrantedKeys returns the union of menu keys granted to the principal's
// roles on terminal, applying the same fallback-open rules as ResolveMenus.
// Used by the access gate for capability checks.
func (r *MenuResolver) GrantedKeys(ctx context.Context, principalID uint, terminal model.Terminal) (map[string]struct{}, error) {
	menus, err := r.ResolveMenus(ctx, principalID, terminal)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]struct{}, len(menus))
	for _, item := range menus {
		keys[item.Key] = struct{}{}
	}
	return keys, nil
}
