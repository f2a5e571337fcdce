package service

import (
	"context"
	"testing"

	"srm-service/internal/model"
	"srm-service/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRoles(t *testing.T) (*storetest.MemStore, *Roles, uint) {
	t.Helper()
	mem := storetest.New()
	admin := mem.AddPrincipal("admin@portal", model.TerminalAdmin)
	return mem, NewRoles(mem), admin
}

func TestCreateRole_Valid(t *testing.T) {
	ctx := context.Background()
	mem, roles, admin := setupRoles(t)

	role, err := roles.CreateRole(ctx, admin, RoleInput{
		Name:     "Department buyer",
		Code:     "dept-buyer",
		Terminal: model.TerminalDepartment,
		MenuKeys: []string{"dashboard", "suppliers"},
	})
	require.NoError(t, err)
	assert.NotZero(t, role.ID)
	assert.Equal(t, []string{"dashboard", "suppliers"}, mem.Grants(role.ID))

	trail, err := mem.AuditTrail(ctx, "backend_roles", role.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, "role_create", trail[0].Action)
}

func TestCreateRole_Validation(t *testing.T) {
	ctx := context.Background()
	_, roles, admin := setupRoles(t)

	cases := []struct {
		name string
		in   RoleInput
	}{
		{"empty code", RoleInput{Name: "x", Terminal: model.TerminalDepartment}},
		{"empty name", RoleInput{Code: "x", Terminal: model.TerminalDepartment}},
		{"supplier terminal", RoleInput{Name: "x", Code: "x", Terminal: model.TerminalSupplier}},
		{"unknown terminal", RoleInput{Name: "x", Code: "x", Terminal: "frontend"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := roles.CreateRole(ctx, admin, tc.in)
			var validation *ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}
}

func TestCreateRole_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	_, roles, admin := setupRoles(t)

	in := RoleInput{Name: "Buyer", Code: "dept-buyer", Terminal: model.TerminalDepartment}
	_, err := roles.CreateRole(ctx, admin, in)
	require.NoError(t, err)

	_, err = roles.CreateRole(ctx, admin, in)
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestUpdateRole_ReplacesGrants(t *testing.T) {
	ctx := context.Background()
	mem, roles, admin := setupRoles(t)

	role, err := roles.CreateRole(ctx, admin, RoleInput{
		Name: "Buyer", Code: "dept-buyer", Terminal: model.TerminalDepartment,
		MenuKeys: []string{"dashboard"},
	})
	require.NoError(t, err)

	err = roles.UpdateRole(ctx, admin, role.ID, RoleInput{
		Name: "Senior buyer", Code: "dept-buyer", Terminal: model.TerminalDepartment,
		MenuKeys: []string{"dashboard", "reports"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"dashboard", "reports"}, mem.Grants(role.ID))
}

func TestUpdateRole_Unknown(t *testing.T) {
	ctx := context.Background()
	_, roles, admin := setupRoles(t)

	err := roles.UpdateRole(ctx, admin, 999, RoleInput{
		Name: "x", Code: "x", Terminal: model.TerminalAdmin,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRole_CascadesGrantsAndAssignments(t *testing.T) {
	ctx := context.Background()
	mem, roles, admin := setupRoles(t)
	staff := mem.AddPrincipal("staff@portal", model.TerminalDepartment)

	role, err := roles.CreateRole(ctx, admin, RoleInput{
		Name: "Buyer", Code: "dept-buyer", Terminal: model.TerminalDepartment,
		MenuKeys: []string{"dashboard"},
	})
	require.NoError(t, err)
	require.NoError(t, roles.AssignUserRoles(ctx, admin, staff, []uint{role.ID}))

	require.NoError(t, roles.DeleteRole(ctx, admin, role.ID))
	assert.Empty(t, mem.Grants(role.ID))
	assert.Empty(t, mem.Assignments(staff))
}

func TestAssignUserRoles_ReplacesSet(t *testing.T) {
	ctx := context.Background()
	mem, roles, admin := setupRoles(t)
	staff := mem.AddPrincipal("staff@portal", model.TerminalDepartment)

	first := mem.AddRole("dept-a", model.TerminalDepartment)
	second := mem.AddRole("dept-b", model.TerminalDepartment)

	require.NoError(t, roles.AssignUserRoles(ctx, admin, staff, []uint{first}))
	assert.Equal(t, []uint{first}, mem.Assignments(staff))

	require.NoError(t, roles.AssignUserRoles(ctx, admin, staff, []uint{second}))
	assert.Equal(t, []uint{second}, mem.Assignments(staff))
}

func TestAssignUserRoles_DeduplicatesIDs(t *testing.T) {
	ctx := context.Background()
	mem, roles, admin := setupRoles(t)
	staff := mem.AddPrincipal("staff@portal", model.TerminalDepartment)
	role := mem.AddRole("dept-a", model.TerminalDepartment)

	require.NoError(t, roles.AssignUserRoles(ctx, admin, staff, []uint{role, role}))
	assert.Equal(t, []uint{role}, mem.Assignments(staff))
}

func TestAssignUserRoles_UnknownRole(t *testing.T) {
	ctx := context.Background()
	mem, roles, admin := setupRoles(t)
	staff := mem.AddPrincipal("staff@portal", model.TerminalDepartment)

	err := roles.AssignUserRoles(ctx, admin, staff, []uint{999})
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Empty(t, mem.Assignments(staff))
}

func TestAssignUserRoles_UnknownUser(t *testing.T) {
	ctx := context.Background()
	_, roles, admin := setupRoles(t)

	err := roles.AssignUserRoles(ctx, admin, 999, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
