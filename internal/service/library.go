package service

import (
	"context"
	"errors"

	"srm-service/internal/model"
	"srm-service/internal/store"
)

// Library lets a department enable an approved supplier into its working
// library. Many departments may independently link the same supplier.
type Library struct {
	store    store.Store
	identity *Identity
}

// NewLibrary returns a Library over st.
func NewLibrary(st store.Store, identity *Identity) *Library {
	return &Library{store: st, identity: identity}
}

// LinkSupplier records supplierID in the acting principal's department
// library. Only approved, non-blacklisted suppliers may be linked, and a
// department links a given supplier at most once.
func (l *Library) LinkSupplier(ctx context.Context, actorID, supplierID uint, libraryType, reason string) error {
	pc, err := l.identity.Resolve(ctx, actorID)
	if err != nil {
		return err
	}
	if pc.DepartmentID == nil {
		return validationf("acting principal has no department affiliation")
	}

	supplier, err := l.store.FindSupplier(ctx, supplierID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if supplier.Status != model.StatusApproved {
		return validationf("only approved suppliers can be added to a department library")
	}
	if supplier.Blacklisted {
		return validationf("blacklisted suppliers cannot be added to a department library")
	}

	exists, err := l.store.LinkExists(ctx, *pc.DepartmentID, supplierID)
	if err != nil {
		return err
	}
	if exists {
		return validationf("supplier is already in this department's library")
	}

	return l.store.Atomically(ctx, func(tx store.Store) error {
		if err := tx.CreateLink(ctx, &model.DepartmentSupplierLink{
			DepartmentID: *pc.DepartmentID,
			SupplierID:   supplierID,
			LibraryType:  libraryType,
			Reason:       reason,
			CreatedBy:    actorID,
		}); err != nil {
			return err
		}
		return tx.AppendAudit(ctx, &model.AuditRecord{
			TargetTable: "department_supplier_links",
			TargetID:    supplierID,
			Action:      model.AuditLinkSupplier,
			ActorID:     actorID,
			Reason:      reason,
		})
	})
}
