package model

import (
	"time"

	"gorm.io/gorm"
)

// Terminal identifies one of the three top-level portal areas a principal
// may be permitted to enter.
type Terminal string

const (
	TerminalSupplier   Terminal = "supplier"
	TerminalDepartment Terminal = "department"
	TerminalAdmin      Terminal = "admin"
)

// ValidTerminal reports whether t is one of the known terminals.
func ValidTerminal(t Terminal) bool {
	switch t {
	case TerminalSupplier, TerminalDepartment, TerminalAdmin:
		return true
	}
	return false
}

// Principal represents an authenticated account. Which terminals it may
// enter is recorded separately in PrincipalTerminal rows; a principal with
// zero terminal rows is a valid, freshly-registered account waiting for
// onboarding.
type Principal struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Email     string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Name      string         `json:"name" gorm:"type:varchar(100)"`
	Active    bool           `json:"active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// PrincipalTerminal grants a principal entry to one terminal. A principal
// may hold several rows; the set is not exclusive.
type PrincipalTerminal struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	PrincipalID uint      `json:"principal_id" gorm:"index;not null;uniqueIndex:idx_principal_terminal"`
	Terminal    Terminal  `json:"terminal" gorm:"type:varchar(20);not null;uniqueIndex:idx_principal_terminal"`
	CreatedAt   time.Time `json:"created_at"`
}

// DepartmentMember records a principal's single department affiliation.
// Only meaningful for principals holding the department terminal.
type DepartmentMember struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	PrincipalID  uint      `json:"principal_id" gorm:"uniqueIndex;not null"`
	DepartmentID uint      `json:"department_id" gorm:"index;not null"`
	IsManager    bool      `json:"is_manager" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
