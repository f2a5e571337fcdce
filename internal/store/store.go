package store

import (
	"context"
	"errors"

	"srm-service/internal/model"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrStale is returned by compare-and-swap updates when the row's
	// status no longer matches the expected value.
	ErrStale = errors.New("stale record state")
	// ErrDuplicate is returned when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the persistence boundary of the authorization and lifecycle
// core. The GORM implementation backs it with Postgres; tests substitute an
// in-memory fake. Atomically runs fn against a transactional view of the
// store; an error from fn rolls every write back.
type Store interface {
	Atomically(ctx context.Context, fn func(s Store) error) error

	// identity
	FindPrincipal(ctx context.Context, id uint) (*model.Principal, error)
	TerminalsOf(ctx context.Context, principalID uint) ([]model.Terminal, error)
	GrantTerminal(ctx context.Context, principalID uint, t model.Terminal) error
	RevokeTerminal(ctx context.Context, principalID uint, t model.Terminal) error
	DepartmentMemberOf(ctx context.Context, principalID uint) (*model.DepartmentMember, error)
	SupplierOwnedBy(ctx context.Context, principalID uint) (*model.Supplier, error)

	// menus and backend roles
	ActiveMenus(ctx context.Context, terminal model.Terminal) ([]model.MenuItem, error)
	RolesAssignedTo(ctx context.Context, principalID uint, terminal model.Terminal) ([]model.BackendRole, error)
	MenuKeysGranted(ctx context.Context, roleIDs []uint) ([]string, error)
	CreateRole(ctx context.Context, role *model.BackendRole, menuKeys []string) error
	FindRole(ctx context.Context, id uint) (*model.BackendRole, error)
	UpdateRole(ctx context.Context, role *model.BackendRole, menuKeys []string) error
	DeleteRoleCascade(ctx context.Context, id uint) error
	ReplaceAssignments(ctx context.Context, principalID uint, roleIDs []uint) error
	CountRoles(ctx context.Context, ids []uint) (int64, error)

	// suppliers
	FindSupplier(ctx context.Context, id uint) (*model.Supplier, error)
	UpdateSupplierFrom(ctx context.Context, s *model.Supplier, from model.SupplierStatus) error
	UpdateSupplierTags(ctx context.Context, s *model.Supplier) error
	DeleteSupplierCascade(ctx context.Context, s *model.Supplier) error
	CreateLink(ctx context.Context, link *model.DepartmentSupplierLink) error
	LinkExists(ctx context.Context, departmentID, supplierID uint) (bool, error)

	// audit trail (append-only)
	AppendAudit(ctx context.Context, rec *model.AuditRecord) error
	AuditTrail(ctx context.Context, table string, targetID uint) ([]model.AuditRecord, error)
}
