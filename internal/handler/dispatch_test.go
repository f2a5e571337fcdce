package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"srm-service/internal/model"
	"srm-service/internal/service"
	"srm-service/internal/store/storetest"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDispatcher(t *testing.T) (*storetest.MemStore, *Dispatcher) {
	t.Helper()
	mem := storetest.New()
	identity := service.NewIdentity(mem)
	menus := service.NewMenuResolver(mem, identity)
	gate := service.NewGate(identity, menus)
	lifecycle := service.NewLifecycle(mem, nil, nil)
	reputation := service.NewReputation(mem)
	roles := service.NewRoles(mem)
	library := service.NewLibrary(mem, identity)
	return mem, NewDispatcher(gate, menus, lifecycle, reputation, roles, library)
}

func doAction(t *testing.T, d *Dispatcher, principalID uint, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/actions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if principalID != 0 {
		c.Set("principal_id", principalID)
	}
	require.NoError(t, d.Dispatch(c))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestDispatch_Unauthenticated(t *testing.T) {
	_, d := setupDispatcher(t)
	rec := doAction(t, d, 0, `{"action":"approve","supplier_id":1}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDispatch_UnknownAction(t *testing.T) {
	mem, d := setupDispatcher(t)
	admin := mem.AddPrincipal("admin@portal", model.TerminalAdmin)

	rec := doAction(t, d, admin, `{"action":"reboot_everything"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown action", decode(t, rec)["error"])
}

func TestDispatch_GetUserMenus(t *testing.T) {
	mem, d := setupDispatcher(t)
	staff := mem.AddPrincipal("staff@portal", model.TerminalDepartment)
	mem.AddMenu("dashboard", model.TerminalDepartment, 1)
	mem.AddMenu("suppliers", model.TerminalDepartment, 2)

	rec := doAction(t, d, staff, `{"action":"get_user_menus","terminal":"department"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	menus, ok := body["menus"].([]interface{})
	require.True(t, ok)
	assert.Len(t, menus, 2)
}

func TestDispatch_GetUserMenus_UnknownTerminal(t *testing.T) {
	mem, d := setupDispatcher(t)
	staff := mem.AddPrincipal("staff@portal", model.TerminalDepartment)

	rec := doAction(t, d, staff, `{"action":"get_user_menus","terminal":"frontend"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDispatch_ApproveRequiresAdmin(t *testing.T) {
	mem, d := setupDispatcher(t)
	staff := mem.AddPrincipal("staff@portal", model.TerminalDepartment)
	owner := mem.AddPrincipal("owner@portal", model.TerminalSupplier)
	supplierID := mem.AddSupplier(owner, model.StatusPending)

	rec := doAction(t, d, staff, `{"action":"approve","supplier_id":3}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	s, _ := mem.Supplier(supplierID)
	assert.Equal(t, model.StatusPending, s.Status)
}

func TestDispatch_ApproveOK(t *testing.T) {
	mem, d := setupDispatcher(t)
	admin := mem.AddPrincipal("admin@portal", model.TerminalAdmin)
	owner := mem.AddPrincipal("owner@portal", model.TerminalSupplier)
	supplierID := mem.AddSupplier(owner, model.StatusPending)

	rec := doAction(t, d, admin, `{"action":"approve","supplier_id":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])

	s, _ := mem.Supplier(supplierID)
	assert.Equal(t, model.StatusApproved, s.Status)
}

func TestDispatch_InvalidTransitionConflict(t *testing.T) {
	mem, d := setupDispatcher(t)
	admin := mem.AddPrincipal("admin@portal", model.TerminalAdmin)
	owner := mem.AddPrincipal("owner@portal", model.TerminalSupplier)
	mem.AddSupplier(owner, model.StatusApproved)

	rec := doAction(t, d, admin, `{"action":"approve","supplier_id":3}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["error"])
}

func TestDispatch_RejectWithoutReason(t *testing.T) {
	mem, d := setupDispatcher(t)
	admin := mem.AddPrincipal("admin@portal", model.TerminalAdmin)
	owner := mem.AddPrincipal("owner@portal", model.TerminalSupplier)
	mem.AddSupplier(owner, model.StatusPending)

	rec := doAction(t, d, admin, `{"action":"reject","supplier_id":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDispatch_UnknownSupplier(t *testing.T) {
	mem, d := setupDispatcher(t)
	admin := mem.AddPrincipal("admin@portal", model.TerminalAdmin)

	rec := doAction(t, d, admin, `{"action":"approve","supplier_id":999}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDispatch_BlacklistFlow(t *testing.T) {
	mem, d := setupDispatcher(t)
	admin := mem.AddPrincipal("admin@portal", model.TerminalAdmin)
	owner := mem.AddPrincipal("owner@portal", model.TerminalSupplier)
	supplierID := mem.AddSupplier(owner, model.StatusApproved)

	rec := doAction(t, d, admin, `{"action":"blacklist","supplier_id":3,"reason":"fraud"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	s, _ := mem.Supplier(supplierID)
	assert.True(t, s.Blacklisted)
	assert.Equal(t, model.StatusApproved, s.Status)

	rec = doAction(t, d, admin, `{"action":"unblacklist","supplier_id":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	s, _ = mem.Supplier(supplierID)
	assert.False(t, s.Blacklisted)
}

func TestDispatch_CreateRoleRequiresPayload(t *testing.T) {
	mem, d := setupDispatcher(t)
	admin := mem.AddPrincipal("admin@portal", model.TerminalAdmin)

	rec := doAction(t, d, admin, `{"action":"create_role"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDispatch_RoleLifecycle(t *testing.T) {
	mem, d := setupDispatcher(t)
	admin := mem.AddPrincipal("admin@portal", model.TerminalAdmin)
	staff := mem.AddPrincipal("staff@portal", model.TerminalDepartment)

	rec := doAction(t, d, admin,
		`{"action":"create_role","role":{"name":"Buyer","code":"dept-buyer","terminal":"department","menu_keys":["dashboard"]}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doAction(t, d, admin, `{"action":"assign_user_roles","user_id":2,"role_ids":[3]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint{3}, mem.Assignments(staff))
}

func TestDispatch_LinkSupplierRequiresDepartment(t *testing.T) {
	mem, d := setupDispatcher(t)
	admin := mem.AddPrincipal("admin@portal", model.TerminalAdmin)
	owner := mem.AddPrincipal("owner@portal", model.TerminalSupplier)
	mem.AddSupplier(owner, model.StatusApproved)

	// Admin terminal alone does not grant the department action.
	rec := doAction(t, d, admin, `{"action":"link_supplier","supplier_id":3}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDispatch_LinkSupplierOK(t *testing.T) {
	mem, d := setupDispatcher(t)
	staff := mem.AddPrincipal("staff@portal", model.TerminalDepartment)
	mem.AddDepartmentMember(staff, 7, false)
	owner := mem.AddPrincipal("owner@portal", model.TerminalSupplier)
	supplierID := mem.AddSupplier(owner, model.StatusApproved)

	rec := doAction(t, d, staff,
		`{"action":"link_supplier","supplier_id":4,"library_type":"preferred","reason":"pilot"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	links := mem.Links()
	require.Len(t, links, 1)
	assert.Equal(t, supplierID, links[0].SupplierID)
}
