package model

import (
	"time"

	"gorm.io/gorm"
)

// SupplierStatus is the lifecycle state of a supplier account.
type SupplierStatus string

const (
	StatusPending   SupplierStatus = "pending"
	StatusApproved  SupplierStatus = "approved"
	StatusRejected  SupplierStatus = "rejected"
	StatusSuspended SupplierStatus = "suspended"
)

// SupplierCategory classifies a supplier at registration and is immutable
// afterwards.
type SupplierCategory string

const (
	CategoryEnterprise SupplierCategory = "enterprise"
	CategoryOverseas   SupplierCategory = "overseas"
	CategoryIndividual SupplierCategory = "individual"
)

// Supplier is the lifecycle-governed entity. Status and the three
// reputation tags are orthogonal: a supplier can be approved and
// blacklisted at the same time, and consumers must check both.
type Supplier struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	PrincipalID  uint             `json:"principal_id" gorm:"index;not null"`
	Name         string           `json:"name" gorm:"type:varchar(100);index;not null"`
	Category     SupplierCategory `json:"category" gorm:"type:varchar(20);not null"`
	Status       SupplierStatus   `json:"status" gorm:"type:varchar(20);index;not null;default:'pending'"`
	RejectReason string           `json:"reject_reason" gorm:"type:text"`
	ApprovedAt   *time.Time       `json:"approved_at,omitempty"`
	ApprovedBy   *uint            `json:"approved_by,omitempty"`

	Recommended       bool       `json:"recommended" gorm:"default:false"`
	RecommendedReason string     `json:"recommended_reason" gorm:"type:text"`
	RecommendedAt     *time.Time `json:"recommended_at,omitempty"`

	Blacklisted     bool       `json:"blacklisted" gorm:"default:false"`
	BlacklistReason string     `json:"blacklist_reason" gorm:"type:text"`
	BlacklistedAt   *time.Time `json:"blacklisted_at,omitempty"`

	HasObjection    bool       `json:"has_objection" gorm:"default:false"`
	ObjectionReason string     `json:"objection_reason" gorm:"type:text"`
	ObjectionAt     *time.Time `json:"objection_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// SupplierProduct is a product a supplier offers. Managed by out-of-scope
// screens; carried here because supplier deletion cascades to it.
type SupplierProduct struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	SupplierID uint           `json:"supplier_id" gorm:"index;not null"`
	Name       string         `json:"name" gorm:"type:varchar(100);not null"`
	Spec       string         `json:"spec" gorm:"type:varchar(255)"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// SupplierQualification is an uploaded credential document reference.
type SupplierQualification struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	SupplierID uint           `json:"supplier_id" gorm:"index;not null"`
	Name       string         `json:"name" gorm:"type:varchar(100);not null"`
	FileRef    string         `json:"file_ref" gorm:"type:varchar(255)"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// SupplierContact is a contact person row.
type SupplierContact struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	SupplierID uint           `json:"supplier_id" gorm:"index;not null"`
	Name       string         `json:"name" gorm:"type:varchar(100);not null"`
	Phone      string         `json:"phone" gorm:"type:varchar(20)"`
	Email      string         `json:"email" gorm:"type:varchar(100)"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// DepartmentSupplierLink records that a department has enabled an approved
// supplier into its working library. Many departments may independently
// link the same supplier.
type DepartmentSupplierLink struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	DepartmentID uint      `json:"department_id" gorm:"index;not null;uniqueIndex:idx_dept_supplier"`
	SupplierID   uint      `json:"supplier_id" gorm:"index;not null;uniqueIndex:idx_dept_supplier"`
	LibraryType  string    `json:"library_type" gorm:"type:varchar(50)"`
	Reason       string    `json:"reason" gorm:"type:text"`
	CreatedBy    uint      `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}
