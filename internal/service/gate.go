package service

import (
	"context"
	"errors"

	"srm-service/internal/model"
)

// Gate is the single authorization chokepoint. Every mutating lifecycle,
// tag or role operation is wrapped by one Authorize call at the dispatch
// boundary; components behind the gate do not re-check authorization.
type Gate struct {
	identity *Identity
	menus    *MenuResolver
}

// NewGate returns a Gate over identity and menus.
func NewGate(identity *Identity, menus *MenuResolver) *Gate {
	return &Gate{identity: identity, menus: menus}
}

// Authorize checks that principalID may act on requiredTerminal. A non-empty
// requiredMenuKey additionally requires that key to be visible to the
// principal under the menu resolver's rules. Returns nil on allow,
// ErrUnauthenticated, ErrForbidden or ErrNotFound on deny.
func (g *Gate) Authorize(ctx context.Context, principalID uint, requiredTerminal model.Terminal, requiredMenuKey string) error {
	if principalID == 0 {
		return ErrUnauthenticated
	}
	pc, err := g.identity.Resolve(ctx, principalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// A token naming a nonexistent principal is not a valid
			// authentication.
			return ErrUnauthenticated
		}
		return err
	}
	if !pc.HasTerminal(requiredTerminal) {
		return ErrForbidden
	}
	// Admin terminal membership short-circuits; backend roles never
	// narrow admin access.
	if requiredTerminal == model.TerminalAdmin || requiredMenuKey == "" {
		return nil
	}
	granted, err := g.menus.GrantedKeys(ctx, principalID, requiredTerminal)
	if err != nil {
		return err
	}
	if _, ok := granted[requiredMenuKey]; !ok {
		return ErrForbidden
	}
	return nil
}
