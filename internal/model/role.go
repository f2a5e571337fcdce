package model

import (
	"time"
)

// BackendRole is an admin-defined role scoped to one terminal. It only
// restricts menu visibility within that terminal; entry to the terminal
// itself is governed by PrincipalTerminal rows.
type BackendRole struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Code      string    `json:"code" gorm:"type:varchar(50);uniqueIndex;not null"`
	Terminal  Terminal  `json:"terminal" gorm:"type:varchar(20);index;not null"`
	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MenuGrant records that a backend role may see one menu item. A role with
// zero grant rows is treated as "no restriction configured", not as a
// lockout; see the menu resolver.
type MenuGrant struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RoleID    uint      `json:"role_id" gorm:"index;not null;uniqueIndex:idx_role_menu"`
	MenuKey   string    `json:"menu_key" gorm:"type:varchar(50);not null;uniqueIndex:idx_role_menu"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleAssignment attaches a backend role to a principal (many-to-many).
type RoleAssignment struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	PrincipalID uint      `json:"principal_id" gorm:"index;not null;uniqueIndex:idx_principal_role"`
	RoleID      uint      `json:"role_id" gorm:"index;not null;uniqueIndex:idx_principal_role"`
	CreatedAt   time.Time `json:"created_at"`
}
