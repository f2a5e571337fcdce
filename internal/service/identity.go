package service

import (
	"context"
	"errors"

	"srm-service/internal/model"
	"srm-service/internal/store"
)

// PrincipalContext is the resolved identity of one authenticated principal:
// the set of terminals it may enter plus its department or supplier
// affiliation, if any. It is computed fresh from storage on every request.
type PrincipalContext struct {
	PrincipalID  uint             `json:"principal_id"`
	Terminals    []model.Terminal `json:"terminals"`
	DepartmentID *uint            `json:"department_id,omitempty"`
	IsManager    bool             `json:"is_manager,omitempty"`
	SupplierID   *uint            `json:"supplier_id,omitempty"`
}

// HasTerminal reports whether the principal may enter terminal t.
func (p *PrincipalContext) HasTerminal(t model.Terminal) bool {
	for _, held := range p.Terminals {
		if held == t {
			return true
		}
	}
	return false
}

// Identity resolves principals to their terminal-role set and affiliations.
type Identity struct {
	store store.Store
}

// NewIdentity returns an Identity backed by st.
func NewIdentity(st store.Store) *Identity {
	return &Identity{store: st}
}

// Resolve loads the terminal roles and affiliations of principalID. A
// principal with zero terminal roles resolves successfully to an empty set:
// a freshly registered account is "pending onboarding", not an error.
// ErrNotFound is returned only when the principal row itself is missing.
func (s *Identity) Resolve(ctx context.Context, principalID uint) (*PrincipalContext, error) {
	if _, err := s.store.FindPrincipal(ctx, principalID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	terminals, err := s.store.TerminalsOf(ctx, principalID)
	if err != nil {
		return nil, err
	}

	pc := &PrincipalContext{
		PrincipalID: principalID,
		Terminals:   terminals,
	}

	if pc.HasTerminal(model.TerminalDepartment) {
		member, err := s.store.DepartmentMemberOf(ctx, principalID)
		if err != nil {
			return nil, err
		}
		if member != nil {
			pc.DepartmentID = &member.DepartmentID
			pc.IsManager = member.IsManager
		}
	}

	if pc.HasTerminal(model.TerminalSupplier) {
		supplier, err := s.store.SupplierOwnedBy(ctx, principalID)
		if err != nil {
			return nil, err
		}
		if supplier != nil {
			pc.SupplierID = &supplier.ID
		}
	}

	return pc, nil
}
