package service

import (
	"context"
	"testing"

	"srm-service/internal/model"
	"srm-service/internal/store/storetest"

	"github.com/stretchr/testify/assert"
)

func setupGate(t *testing.T) (*storetest.MemStore, *Gate) {
	t.Helper()
	mem := storetest.New()
	identity := NewIdentity(mem)
	menus := NewMenuResolver(mem, identity)
	return mem, NewGate(identity, menus)
}

func TestAuthorize_ZeroPrincipal(t *testing.T) {
	_, gate := setupGate(t)
	err := gate.Authorize(context.Background(), 0, model.TerminalAdmin, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthorize_UnknownPrincipal(t *testing.T) {
	_, gate := setupGate(t)
	err := gate.Authorize(context.Background(), 999, model.TerminalAdmin, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthorize_MissingTerminalRole(t *testing.T) {
	mem, gate := setupGate(t)
	principal := mem.AddPrincipal("staff@portal", model.TerminalDepartment)

	err := gate.Authorize(context.Background(), principal, model.TerminalAdmin, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorize_AdminShortCircuits(t *testing.T) {
	mem, gate := setupGate(t)
	principal := mem.AddPrincipal("admin@portal", model.TerminalAdmin)

	// No menus, no roles configured at all; admin membership is enough.
	err := gate.Authorize(context.Background(), principal, model.TerminalAdmin, "")
	assert.NoError(t, err)
}

func TestAuthorize_MenuCapability(t *testing.T) {
	mem, gate := setupGate(t)
	principal := mem.AddPrincipal("staff@portal", model.TerminalDepartment)
	mem.AddMenu("dashboard", model.TerminalDepartment, 1)
	mem.AddMenu("audit", model.TerminalDepartment, 2)

	role := mem.AddRole("dept-basic", model.TerminalDepartment, "dashboard")
	mem.Assign(principal, role)

	ctx := context.Background()
	assert.NoError(t, gate.Authorize(ctx, principal, model.TerminalDepartment, "dashboard"))
	assert.ErrorIs(t, gate.Authorize(ctx, principal, model.TerminalDepartment, "audit"), ErrForbidden)
}

func TestAuthorize_MenuCapability_FallbackOpen(t *testing.T) {
	mem, gate := setupGate(t)
	principal := mem.AddPrincipal("staff@portal", model.TerminalDepartment)
	mem.AddMenu("dashboard", model.TerminalDepartment, 1)

	// No backend roles assigned: the capability check inherits the
	// fallback-open visibility.
	err := gate.Authorize(context.Background(), principal, model.TerminalDepartment, "dashboard")
	assert.NoError(t, err)
}

func TestAuthorize_ZeroTerminalRoles_Forbidden(t *testing.T) {
	mem, gate := setupGate(t)
	principal := mem.AddPrincipal("fresh@portal")

	err := gate.Authorize(context.Background(), principal, model.TerminalSupplier, "")
	assert.ErrorIs(t, err, ErrForbidden)
}
