package store

import (
	"context"
	"errors"
	"time"

	"srm-service/internal/model"

	"gorm.io/gorm"
)

// Gorm implements Store on top of a *gorm.DB (Postgres in production).
type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps db in a Store.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// Atomically runs fn inside one database transaction. Nested calls reuse
// the surrounding transaction via GORM savepoints.
func (g *Gorm) Atomically(ctx context.Context, fn func(s Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gorm{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (g *Gorm) FindPrincipal(ctx context.Context, id uint) (*model.Principal, error) {
	var p model.Principal
	if err := g.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (g *Gorm) TerminalsOf(ctx context.Context, principalID uint) ([]model.Terminal, error) {
	var terminals []model.Terminal
	err := g.db.WithContext(ctx).
		Model(&model.PrincipalTerminal{}).
		Where("principal_id = ?", principalID).
		Pluck("terminal", &terminals).Error
	if err != nil {
		return nil, err
	}
	return terminals, nil
}

func (g *Gorm) GrantTerminal(ctx context.Context, principalID uint, t model.Terminal) error {
	var count int64
	err := g.db.WithContext(ctx).
		Model(&model.PrincipalTerminal{}).
		Where("principal_id = ? AND terminal = ?", principalID, t).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return g.db.WithContext(ctx).Create(&model.PrincipalTerminal{
		PrincipalID: principalID,
		Terminal:    t,
	}).Error
}

func (g *Gorm) RevokeTerminal(ctx context.Context, principalID uint, t model.Terminal) error {
	return g.db.WithContext(ctx).
		Where("principal_id = ? AND terminal = ?", principalID, t).
		Delete(&model.PrincipalTerminal{}).Error
}

func (g *Gorm) DepartmentMemberOf(ctx context.Context, principalID uint) (*model.DepartmentMember, error) {
	var m model.DepartmentMember
	err := g.db.WithContext(ctx).
		Where("principal_id = ?", principalID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (g *Gorm) SupplierOwnedBy(ctx context.Context, principalID uint) (*model.Supplier, error) {
	var s model.Supplier
	err := g.db.WithContext(ctx).
		Where("principal_id = ?", principalID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (g *Gorm) ActiveMenus(ctx context.Context, terminal model.Terminal) ([]model.MenuItem, error) {
	var menus []model.MenuItem
	err := g.db.WithContext(ctx).
		Where("terminal = ? AND is_active = ?", terminal, true).
		Order("parent_key ASC NULLS FIRST, sort_order ASC").
		Find(&menus).Error
	if err != nil {
		return nil, err
	}
	return menus, nil
}

func (g *Gorm) RolesAssignedTo(ctx context.Context, principalID uint, terminal model.Terminal) ([]model.BackendRole, error) {
	var roles []model.BackendRole
	err := g.db.WithContext(ctx).
		Model(&model.BackendRole{}).
		Joins("JOIN role_assignments ON role_assignments.role_id = backend_roles.id").
		Where("role_assignments.principal_id = ? AND backend_roles.terminal = ?", principalID, terminal).
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (g *Gorm) MenuKeysGranted(ctx context.Context, roleIDs []uint) ([]string, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	var keys []string
	err := g.db.WithContext(ctx).
		Model(&model.MenuGrant{}).
		Distinct("menu_key").
		Where("role_id IN ?", roleIDs).
		Pluck("menu_key", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (g *Gorm) CreateRole(ctx context.Context, role *model.BackendRole, menuKeys []string) error {
	return g.Atomically(ctx, func(s Store) error {
		tx := s.(*Gorm).db.WithContext(ctx)
		var count int64
		if err := tx.Model(&model.BackendRole{}).
			Where("code = ?", role.Code).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicate
		}
		if err := tx.Create(role).Error; err != nil {
			return err
		}
		return replaceGrants(tx, role.ID, menuKeys)
	})
}

func (g *Gorm) FindRole(ctx context.Context, id uint) (*model.BackendRole, error) {
	var role model.BackendRole
	if err := g.db.WithContext(ctx).First(&role, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &role, nil
}

func (g *Gorm) UpdateRole(ctx context.Context, role *model.BackendRole, menuKeys []string) error {
	return g.Atomically(ctx, func(s Store) error {
		tx := s.(*Gorm).db.WithContext(ctx)
		res := tx.Model(&model.BackendRole{}).
			Where("id = ?", role.ID).
			Updates(map[string]interface{}{
				"name":     role.Name,
				"code":     role.Code,
				"terminal": role.Terminal,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("role_id = ?", role.ID).
			Delete(&model.MenuGrant{}).Error; err != nil {
			return err
		}
		return replaceGrants(tx, role.ID, menuKeys)
	})
}

func replaceGrants(tx *gorm.DB, roleID uint, menuKeys []string) error {
	for _, key := range menuKeys {
		if err := tx.Create(&model.MenuGrant{RoleID: roleID, MenuKey: key}).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteRoleCascade removes a role together with its grants and principal
// assignments in one transaction.
func (g *Gorm) DeleteRoleCascade(ctx context.Context, id uint) error {
	return g.Atomically(ctx, func(s Store) error {
		tx := s.(*Gorm).db.WithContext(ctx)
		res := tx.Delete(&model.BackendRole{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("role_id = ?", id).
			Delete(&model.MenuGrant{}).Error; err != nil {
			return err
		}
		return tx.Where("role_id = ?", id).
			Delete(&model.RoleAssignment{}).Error
	})
}

// ReplaceAssignments swaps a principal's role set in one transaction
// (delete-then-insert), so concurrent menu resolution never observes the
// empty window in between.
func (g *Gorm) ReplaceAssignments(ctx context.Context, principalID uint, roleIDs []uint) error {
	return g.Atomically(ctx, func(s Store) error {
		tx := s.(*Gorm).db.WithContext(ctx)
		if err := tx.Where("principal_id = ?", principalID).
			Delete(&model.RoleAssignment{}).Error; err != nil {
			return err
		}
		for _, roleID := range roleIDs {
			if err := tx.Create(&model.RoleAssignment{
				PrincipalID: principalID,
				RoleID:      roleID,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (g *Gorm) CountRoles(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := g.db.WithContext(ctx).
		Model(&model.BackendRole{}).
		Where("id IN ?", ids).
		Count(&count).Error
	return count, err
}

func (g *Gorm) FindSupplier(ctx context.Context, id uint) (*model.Supplier, error) {
	var s model.Supplier
	if err := g.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// UpdateSupplierFrom writes the lifecycle columns with a compare-and-swap
// on the previous status. A concurrent transition that already moved the
// row makes the swap affect zero rows, surfaced as ErrStale.
func (g *Gorm) UpdateSupplierFrom(ctx context.Context, s *model.Supplier, from model.SupplierStatus) error {
	res := g.db.WithContext(ctx).
		Model(&model.Supplier{}).
		Where("id = ? AND status = ?", s.ID, from).
		Updates(map[string]interface{}{
			"status":        s.Status,
			"reject_reason": s.RejectReason,
			"approved_at":   s.ApprovedAt,
			"approved_by":   s.ApprovedBy,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

func (g *Gorm) UpdateSupplierTags(ctx context.Context, s *model.Supplier) error {
	res := g.db.WithContext(ctx).
		Model(&model.Supplier{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"recommended":        s.Recommended,
			"recommended_reason": s.RecommendedReason,
			"recommended_at":     s.RecommendedAt,
			"blacklisted":        s.Blacklisted,
			"blacklist_reason":   s.BlacklistReason,
			"blacklisted_at":     s.BlacklistedAt,
			"has_objection":      s.HasObjection,
			"objection_reason":   s.ObjectionReason,
			"objection_at":       s.ObjectionAt,
			"updated_at":         time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSupplierCascade removes a supplier together with its department
// links, products, qualifications and contacts.
func (g *Gorm) DeleteSupplierCascade(ctx context.Context, s *model.Supplier) error {
	return g.Atomically(ctx, func(st Store) error {
		tx := st.(*Gorm).db.WithContext(ctx)
		if err := tx.Where("supplier_id = ?", s.ID).
			Delete(&model.DepartmentSupplierLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("supplier_id = ?", s.ID).
			Delete(&model.SupplierProduct{}).Error; err != nil {
			return err
		}
		if err := tx.Where("supplier_id = ?", s.ID).
			Delete(&model.SupplierQualification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("supplier_id = ?", s.ID).
			Delete(&model.SupplierContact{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Supplier{}, s.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (g *Gorm) CreateLink(ctx context.Context, link *model.DepartmentSupplierLink) error {
	return g.db.WithContext(ctx).Create(link).Error
}

func (g *Gorm) LinkExists(ctx context.Context, departmentID, supplierID uint) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).
		Model(&model.DepartmentSupplierLink{}).
		Where("department_id = ? AND supplier_id = ?", departmentID, supplierID).
		Count(&count).Error
	return count > 0, err
}

func (g *Gorm) AppendAudit(ctx context.Context, rec *model.AuditRecord) error {
	return g.db.WithContext(ctx).Create(rec).Error
}

func (g *Gorm) AuditTrail(ctx context.Context, table string, targetID uint) ([]model.AuditRecord, error) {
	var records []model.AuditRecord
	err := g.db.WithContext(ctx).
		Where("target_table = ? AND target_id = ?", table, targetID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
