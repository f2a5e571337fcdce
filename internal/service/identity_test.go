package service

import (
	"context"
	"testing"

	"srm-service/internal/model"
	"srm-service/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_UnknownPrincipal(t *testing.T) {
	identity := NewIdentity(storetest.New())
	_, err := identity.Resolve(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_ZeroTerminalRoles_IsValid(t *testing.T) {
	mem := storetest.New()
	identity := NewIdentity(mem)
	principal := mem.AddPrincipal("fresh@portal")

	// A freshly registered account has no terminal roles yet; it resolves
	// to an empty set so the caller can show a waiting screen.
	pc, err := identity.Resolve(context.Background(), principal)
	require.NoError(t, err)
	assert.Empty(t, pc.Terminals)
	assert.Nil(t, pc.DepartmentID)
	assert.Nil(t, pc.SupplierID)
}

func TestResolve_DepartmentAffiliation(t *testing.T) {
	mem := storetest.New()
	identity := NewIdentity(mem)
	principal := mem.AddPrincipal("staff@portal", model.TerminalDepartment)
	mem.AddDepartmentMember(principal, 7, true)

	pc, err := identity.Resolve(context.Background(), principal)
	require.NoError(t, err)
	assert.True(t, pc.HasTerminal(model.TerminalDepartment))
	require.NotNil(t, pc.DepartmentID)
	assert.Equal(t, uint(7), *pc.DepartmentID)
	assert.True(t, pc.IsManager)
}

func TestResolve_SupplierAffiliation(t *testing.T) {
	mem := storetest.New()
	identity := NewIdentity(mem)
	principal := mem.AddPrincipal("vendor@portal", model.TerminalSupplier)
	supplierID := mem.AddSupplier(principal, model.StatusApproved)

	pc, err := identity.Resolve(context.Background(), principal)
	require.NoError(t, err)
	require.NotNil(t, pc.SupplierID)
	assert.Equal(t, supplierID, *pc.SupplierID)
}

func TestResolve_MultipleTerminals(t *testing.T) {
	mem := storetest.New()
	identity := NewIdentity(mem)
	principal := mem.AddPrincipal("hybrid@portal", model.TerminalDepartment, model.TerminalAdmin)

	pc, err := identity.Resolve(context.Background(), principal)
	require.NoError(t, err)
	assert.True(t, pc.HasTerminal(model.TerminalDepartment))
	assert.True(t, pc.HasTerminal(model.TerminalAdmin))
	assert.False(t, pc.HasTerminal(model.TerminalSupplier))
}
