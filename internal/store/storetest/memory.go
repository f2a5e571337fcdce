// Package storetest provides an in-memory store.Store used by the service
// and handler tests. Atomically takes a snapshot of the whole state and
// restores it when the wrapped function fails, so transactional rollback
// behaves like the real implementation.
package storetest

import (
	"context"
	"errors"
	"sort"

	"srm-service/internal/model"
	"srm-service/internal/store"
)

// ErrInjected is returned by operations whose failure was requested via a
// Fail* flag.
var ErrInjected = errors.New("injected failure")

var _ store.Store = (*MemStore)(nil)

// MemStore is an in-memory implementation of store.Store. Seed state by
// calling the Add* helpers before exercising the code under test.
type MemStore struct {
	principals  map[uint]model.Principal
	terminals   map[uint][]model.Terminal
	members     map[uint]model.DepartmentMember
	menus       []model.MenuItem
	roles       map[uint]model.BackendRole
	grants      map[uint][]string
	assignments map[uint][]uint
	suppliers   map[uint]model.Supplier
	products    map[uint][]model.SupplierProduct
	quals       map[uint][]model.SupplierQualification
	contacts    map[uint][]model.SupplierContact
	links       []model.DepartmentSupplierLink
	audits      []model.AuditRecord
	nextID      uint

	// FailAudit makes AppendAudit fail, for atomicity fault injection.
	FailAudit bool
}

// New returns an empty MemStore.
func New() *MemStore {
	return &MemStore{
		principals:  make(map[uint]model.Principal),
		terminals:   make(map[uint][]model.Terminal),
		members:     make(map[uint]model.DepartmentMember),
		roles:       make(map[uint]model.BackendRole),
		grants:      make(map[uint][]string),
		assignments: make(map[uint][]uint),
		suppliers:   make(map[uint]model.Supplier),
		products:    make(map[uint][]model.SupplierProduct),
		quals:       make(map[uint][]model.SupplierQualification),
		contacts:    make(map[uint][]model.SupplierContact),
	}
}

func (m *MemStore) id() uint {
	m.nextID++
	return m.nextID
}

// AddPrincipal seeds a principal with the given terminals and returns its id.
func (m *MemStore) AddPrincipal(email string, terminals ...model.Terminal) uint {
	id := m.id()
	m.principals[id] = model.Principal{ID: id, Email: email, Active: true}
	m.terminals[id] = append([]model.Terminal(nil), terminals...)
	return id
}

// AddDepartmentMember seeds a department affiliation.
func (m *MemStore) AddDepartmentMember(principalID, departmentID uint, isManager bool) {
	m.members[principalID] = model.DepartmentMember{
		ID:           m.id(),
		PrincipalID:  principalID,
		DepartmentID: departmentID,
		IsManager:    isManager,
	}
}

// AddMenu seeds an active menu item and returns its key.
func (m *MemStore) AddMenu(key string, terminal model.Terminal, sortOrder int) string {
	m.menus = append(m.menus, model.MenuItem{
		ID: m.id(), Key: key, Terminal: terminal,
		Name: key, SortOrder: sortOrder, IsActive: true,
	})
	return key
}

// AddInactiveMenu seeds an inactive menu item.
func (m *MemStore) AddInactiveMenu(key string, terminal model.Terminal, sortOrder int) {
	m.menus = append(m.menus, model.MenuItem{
		ID: m.id(), Key: key, Terminal: terminal,
		Name: key, SortOrder: sortOrder, IsActive: false,
	})
}

// AddRole seeds a backend role with menu grants and returns its id.
func (m *MemStore) AddRole(code string, terminal model.Terminal, menuKeys ...string) uint {
	id := m.id()
	m.roles[id] = model.BackendRole{ID: id, Name: code, Code: code, Terminal: terminal}
	m.grants[id] = append([]string(nil), menuKeys...)
	return id
}

// Assign attaches roles to a principal.
func (m *MemStore) Assign(principalID uint, roleIDs ...uint) {
	m.assignments[principalID] = append(m.assignments[principalID], roleIDs...)
}

// AddSupplier seeds a supplier and returns its id.
func (m *MemStore) AddSupplier(principalID uint, status model.SupplierStatus) uint {
	id := m.id()
	m.suppliers[id] = model.Supplier{
		ID: id, PrincipalID: principalID, Name: "supplier",
		Category: model.CategoryEnterprise, Status: status,
	}
	return id
}

// AddProduct seeds a product row owned by a supplier.
func (m *MemStore) AddProduct(supplierID uint, name string) {
	m.products[supplierID] = append(m.products[supplierID], model.SupplierProduct{
		ID: m.id(), SupplierID: supplierID, Name: name,
	})
}

// AddLink seeds a department-supplier link.
func (m *MemStore) AddLink(departmentID, supplierID uint) {
	m.links = append(m.links, model.DepartmentSupplierLink{
		ID: m.id(), DepartmentID: departmentID, SupplierID: supplierID,
	})
}

// Supplier returns a copy of the stored supplier row, for assertions.
func (m *MemStore) Supplier(id uint) (model.Supplier, bool) {
	s, ok := m.suppliers[id]
	return s, ok
}

// Products returns the product rows of a supplier, for assertions.
func (m *MemStore) Products(supplierID uint) []model.SupplierProduct {
	return m.products[supplierID]
}

// Links returns all department-supplier links, for assertions.
func (m *MemStore) Links() []model.DepartmentSupplierLink {
	return m.links
}

// Assignments returns the role ids assigned to a principal, for assertions.
func (m *MemStore) Assignments(principalID uint) []uint {
	return m.assignments[principalID]
}

// Grants returns the menu keys granted to a role, for assertions.
func (m *MemStore) Grants(roleID uint) []string {
	return m.grants[roleID]
}

type snapshot struct {
	principals  map[uint]model.Principal
	terminals   map[uint][]model.Terminal
	members     map[uint]model.DepartmentMember
	menus       []model.MenuItem
	roles       map[uint]model.BackendRole
	grants      map[uint][]string
	assignments map[uint][]uint
	suppliers   map[uint]model.Supplier
	products    map[uint][]model.SupplierProduct
	quals       map[uint][]model.SupplierQualification
	contacts    map[uint][]model.SupplierContact
	links       []model.DepartmentSupplierLink
	audits      []model.AuditRecord
	nextID      uint
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func copySliceMap[K comparable, V any](src map[K][]V) map[K][]V {
	dst := make(map[K][]V, len(src))
	for k, v := range src {
		dst[k] = append([]V(nil), v...)
	}
	return dst
}

func (m *MemStore) snapshot() snapshot {
	return snapshot{
		principals:  copyMap(m.principals),
		terminals:   copySliceMap(m.terminals),
		members:     copyMap(m.members),
		menus:       append([]model.MenuItem(nil), m.menus...),
		roles:       copyMap(m.roles),
		grants:      copySliceMap(m.grants),
		assignments: copySliceMap(m.assignments),
		suppliers:   copyMap(m.suppliers),
		products:    copySliceMap(m.products),
		quals:       copySliceMap(m.quals),
		contacts:    copySliceMap(m.contacts),
		links:       append([]model.DepartmentSupplierLink(nil), m.links...),
		audits:      append([]model.AuditRecord(nil), m.audits...),
		nextID:      m.nextID,
	}
}

func (m *MemStore) restore(s snapshot) {
	m.principals = s.principals
	m.terminals = s.terminals
	m.members = s.members
	m.menus = s.menus
	m.roles = s.roles
	m.grants = s.grants
	m.assignments = s.assignments
	m.suppliers = s.suppliers
	m.products = s.products
	m.quals = s.quals
	m.contacts = s.contacts
	m.links = s.links
	m.audits = s.audits
	m.nextID = s.nextID
}

// Atomically runs fn and rolls all writes back when it fails.
func (m *MemStore) Atomically(ctx context.Context, fn func(s store.Store) error) error {
	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *MemStore) FindPrincipal(ctx context.Context, id uint) (*model.Principal, error) {
	p, ok := m.principals[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (m *MemStore) TerminalsOf(ctx context.Context, principalID uint) ([]model.Terminal, error) {
	return append([]model.Terminal(nil), m.terminals[principalID]...), nil
}

func (m *MemStore) GrantTerminal(ctx context.Context, principalID uint, t model.Terminal) error {
	for _, held := range m.terminals[principalID] {
		if held == t {
			return nil
		}
	}
	m.terminals[principalID] = append(m.terminals[principalID], t)
	return nil
}

func (m *MemStore) RevokeTerminal(ctx context.Context, principalID uint, t model.Terminal) error {
	held := m.terminals[principalID]
	kept := held[:0]
	for _, terminal := range held {
		if terminal != t {
			kept = append(kept, terminal)
		}
	}
	m.terminals[principalID] = append([]model.Terminal(nil), kept...)
	return nil
}

func (m *MemStore) DepartmentMemberOf(ctx context.Context, principalID uint) (*model.DepartmentMember, error) {
	member, ok := m.members[principalID]
	if !ok {
		return nil, nil
	}
	return &member, nil
}

func (m *MemStore) SupplierOwnedBy(ctx context.Context, principalID uint) (*model.Supplier, error) {
	ids := make([]uint, 0, len(m.suppliers))
	for id := range m.suppliers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if s := m.suppliers[id]; s.PrincipalID == principalID {
			return &s, nil
		}
	}
	return nil, nil
}

func (m *MemStore) ActiveMenus(ctx context.Context, terminal model.Terminal) ([]model.MenuItem, error) {
	var menus []model.MenuItem
	for _, item := range m.menus {
		if item.Terminal == terminal && item.IsActive {
			menus = append(menus, item)
		}
	}
	sort.SliceStable(menus, func(i, j int) bool {
		a, b := menus[i], menus[j]
		switch {
		case a.ParentKey == nil && b.ParentKey != nil:
			return true
		case a.ParentKey != nil && b.ParentKey == nil:
			return false
		case a.ParentKey != nil && b.ParentKey != nil && *a.ParentKey != *b.ParentKey:
			return *a.ParentKey < *b.ParentKey
		}
		return a.SortOrder < b.SortOrder
	})
	return menus, nil
}

func (m *MemStore) RolesAssignedTo(ctx context.Context, principalID uint, terminal model.Terminal) ([]model.BackendRole, error) {
	var roles []model.BackendRole
	for _, roleID := range m.assignments[principalID] {
		role, ok := m.roles[roleID]
		if ok && role.Terminal == terminal {
			roles = append(roles, role)
		}
	}
	return roles, nil
}

func (m *MemStore) MenuKeysGranted(ctx context.Context, roleIDs []uint) ([]string, error) {
	seen := make(map[string]struct{})
	var keys []string
	for _, roleID := range roleIDs {
		for _, key := range m.grants[roleID] {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (m *MemStore) CreateRole(ctx context.Context, role *model.BackendRole, menuKeys []string) error {
	for _, existing := range m.roles {
		if existing.Code == role.Code {
			return store.ErrDuplicate
		}
	}
	role.ID = m.id()
	m.roles[role.ID] = *role
	m.grants[role.ID] = append([]string(nil), menuKeys...)
	return nil
}

func (m *MemStore) FindRole(ctx context.Context, id uint) (*model.BackendRole, error) {
	role, ok := m.roles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &role, nil
}

func (m *MemStore) UpdateRole(ctx context.Context, role *model.BackendRole, menuKeys []string) error {
	if _, ok := m.roles[role.ID]; !ok {
		return store.ErrNotFound
	}
	m.roles[role.ID] = *role
	m.grants[role.ID] = append([]string(nil), menuKeys...)
	return nil
}

func (m *MemStore) DeleteRoleCascade(ctx context.Context, id uint) error {
	if _, ok := m.roles[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.roles, id)
	delete(m.grants, id)
	for principalID, roleIDs := range m.assignments {
		kept := make([]uint, 0, len(roleIDs))
		for _, roleID := range roleIDs {
			if roleID != id {
				kept = append(kept, roleID)
			}
		}
		m.assignments[principalID] = kept
	}
	return nil
}

func (m *MemStore) ReplaceAssignments(ctx context.Context, principalID uint, roleIDs []uint) error {
	m.assignments[principalID] = append([]uint(nil), roleIDs...)
	return nil
}

func (m *MemStore) CountRoles(ctx context.Context, ids []uint) (int64, error) {
	var count int64
	for _, id := range ids {
		if _, ok := m.roles[id]; ok {
			count++
		}
	}
	return count, nil
}

func (m *MemStore) FindSupplier(ctx context.Context, id uint) (*model.Supplier, error) {
	s, ok := m.suppliers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (m *MemStore) UpdateSupplierFrom(ctx context.Context, s *model.Supplier, from model.SupplierStatus) error {
	current, ok := m.suppliers[s.ID]
	if !ok || current.Status != from {
		return store.ErrStale
	}
	current.Status = s.Status
	current.RejectReason = s.RejectReason
	current.ApprovedAt = s.ApprovedAt
	current.ApprovedBy = s.ApprovedBy
	m.suppliers[s.ID] = current
	return nil
}

func (m *MemStore) UpdateSupplierTags(ctx context.Context, s *model.Supplier) error {
	current, ok := m.suppliers[s.ID]
	if !ok {
		return store.ErrNotFound
	}
	current.Recommended = s.Recommended
	current.RecommendedReason = s.RecommendedReason
	current.RecommendedAt = s.RecommendedAt
	current.Blacklisted = s.Blacklisted
	current.BlacklistReason = s.BlacklistReason
	current.BlacklistedAt = s.BlacklistedAt
	current.HasObjection = s.HasObjection
	current.ObjectionReason = s.ObjectionReason
	current.ObjectionAt = s.ObjectionAt
	m.suppliers[s.ID] = current
	return nil
}

func (m *MemStore) DeleteSupplierCascade(ctx context.Context, s *model.Supplier) error {
	if _, ok := m.suppliers[s.ID]; !ok {
		return store.ErrNotFound
	}
	delete(m.suppliers, s.ID)
	delete(m.products, s.ID)
	delete(m.quals, s.ID)
	delete(m.contacts, s.ID)
	kept := make([]model.DepartmentSupplierLink, 0, len(m.links))
	for _, link := range m.links {
		if link.SupplierID != s.ID {
			kept = append(kept, link)
		}
	}
	m.links = kept
	return nil
}

func (m *MemStore) CreateLink(ctx context.Context, link *model.DepartmentSupplierLink) error {
	link.ID = m.id()
	m.links = append(m.links, *link)
	return nil
}

func (m *MemStore) LinkExists(ctx context.Context, departmentID, supplierID uint) (bool, error) {
	for _, link := range m.links {
		if link.DepartmentID == departmentID && link.SupplierID == supplierID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemStore) AppendAudit(ctx context.Context, rec *model.AuditRecord) error {
	if m.FailAudit {
		return ErrInjected
	}
	rec.ID = m.id()
	m.audits = append(m.audits, *rec)
	return nil
}

func (m *MemStore) AuditTrail(ctx context.Context, table string, targetID uint) ([]model.AuditRecord, error) {
	var records []model.AuditRecord
	for _, rec := range m.audits {
		if rec.TargetTable == table && rec.TargetID == targetID {
			records = append(records, rec)
		}
	}
	return records, nil
}
