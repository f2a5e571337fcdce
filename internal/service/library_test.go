package service

import (
	"context"
	"testing"

	"srm-service/internal/model"
	"srm-service/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLibrary(t *testing.T) (*storetest.MemStore, *Library, uint) {
	t.Helper()
	mem := storetest.New()
	staff := mem.AddPrincipal("staff@portal", model.TerminalDepartment)
	mem.AddDepartmentMember(staff, 7, false)
	return mem, NewLibrary(mem, NewIdentity(mem)), staff
}

func TestLinkSupplier_OK(t *testing.T) {
	ctx := context.Background()
	mem, lib, staff := setupLibrary(t)
	owner := mem.AddPrincipal("owner@portal", model.TerminalSupplier)
	supplierID := mem.AddSupplier(owner, model.StatusApproved)

	require.NoError(t, lib.LinkSupplier(ctx, staff, supplierID, "preferred", "long relationship"))

	links := mem.Links()
	require.Len(t, links, 1)
	assert.Equal(t, uint(7), links[0].DepartmentID)
	assert.Equal(t, supplierID, links[0].SupplierID)
	assert.Equal(t, "preferred", links[0].LibraryType)

	trail, err := mem.AuditTrail(ctx, "department_supplier_links", supplierID)
	require.NoError(t, err)
	assert.Len(t, trail, 1)
}

func TestLinkSupplier_RequiresApproved(t *testing.T) {
	ctx := context.Background()
	mem, lib, staff := setupLibrary(t)
	owner := mem.AddPrincipal("owner@portal", model.TerminalSupplier)
	supplierID := mem.AddSupplier(owner, model.StatusPending)

	err := lib.LinkSupplier(ctx, staff, supplierID, "", "")
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Empty(t, mem.Links())
}

func TestLinkSupplier_RejectsBlacklisted(t *testing.T) {
	ctx := context.Background()
	mem, lib, staff := setupLibrary(t)
	admin := mem.AddPrincipal("admin@portal", model.TerminalAdmin)
	owner := mem.AddPrincipal("owner@portal", model.TerminalSupplier)
	supplierID := mem.AddSupplier(owner, model.StatusApproved)
	require.NoError(t, NewReputation(mem).SetBlacklisted(ctx, admin, supplierID, "fraud"))

	err := lib.LinkSupplier(ctx, staff, supplierID, "", "")
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestLinkSupplier_DuplicateRejected(t *testing.T) {
	ctx := context.Background()
	mem, lib, staff := setupLibrary(t)
	owner := mem.AddPrincipal("owner@portal", model.TerminalSupplier)
	supplierID := mem.AddSupplier(owner, model.StatusApproved)

	require.NoError(t, lib.LinkSupplier(ctx, staff, supplierID, "preferred", ""))
	err := lib.LinkSupplier(ctx, staff, supplierID, "preferred", "")
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Len(t, mem.Links(), 1)
}

func TestLinkSupplier_NoDepartmentAffiliation(t *testing.T) {
	ctx := context.Background()
	mem := storetest.New()
	lib := NewLibrary(mem, NewIdentity(mem))
	// Holds the terminal but has no department row.
	staff := mem.AddPrincipal("staff@portal", model.TerminalDepartment)
	owner := mem.AddPrincipal("owner@portal", model.TerminalSupplier)
	supplierID := mem.AddSupplier(owner, model.StatusApproved)

	err := lib.LinkSupplier(ctx, staff, supplierID, "", "")
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestLinkSupplier_UnknownSupplier(t *testing.T) {
	ctx := context.Background()
	_, lib, staff := setupLibrary(t)

	err := lib.LinkSupplier(ctx, staff, 999, "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}
