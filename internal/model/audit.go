package model

import (
	"time"
)

// Audit actions recorded on lifecycle transitions and tag mutations.
const (
	AuditApprove         = "approve"
	AuditReject          = "reject"
	AuditSuspend         = "suspend"
	AuditRestore         = "restore"
	AuditDelete          = "delete"
	AuditBlacklist       = "blacklist"
	AuditUnblacklist     = "unblacklist"
	AuditRecommend       = "recommend"
	AuditUnrecommend     = "unrecommend"
	AuditAddObjection    = "add_objection"
	AuditRemoveObjection = "remove_objection"
	AuditRoleCreate      = "role_create"
	AuditRoleUpdate      = "role_update"
	AuditRoleDelete      = "role_delete"
	AuditRoleAssign      = "role_assign"
	AuditLinkSupplier    = "link_supplier"
)

// AuditRecord is one append-only entry of the audit trail. Rows are written
// inside the same transaction as the change they describe and are never
// updated or deleted afterwards.
type AuditRecord struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	TargetTable string    `json:"target_table" gorm:"type:varchar(50);index:idx_audit_target;not null"`
	TargetID    uint      `json:"target_id" gorm:"index:idx_audit_target;not null"`
	Action      string    `json:"action" gorm:"type:varchar(50);not null"`
	ActorID     uint      `json:"actor_id" gorm:"index"`
	Reason      string    `json:"reason" gorm:"type:text"`
	Snapshot    string    `json:"snapshot,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}
