package service

import (
	"context"
	"errors"
	"time"

	"srm-service/internal/model"
	"srm-service/internal/store"
	"srm-service/prometheus"
)

// Reputation manages the three boolean tags attached to a supplier:
// recommended, blacklisted and objection. Tags are orthogonal to lifecycle
// status: blacklisting an approved supplier leaves it approved; the login
// collaborator is the component that refuses blacklisted suppliers, this
// core only keeps the boolean accurate and atomic.
//
// Every operation is idempotent. Setting an already-set tag updates the
// reason text in place but appends no audit record; each actual flip
// appends exactly one.
type Reputation struct {
	store store.Store
}

// NewReputation returns a Reputation over st.
func NewReputation(st store.Store) *Reputation {
	return &Reputation{store: st}
}

// SetRecommended marks a supplier as recommended.
func (r *Reputation) SetRecommended(ctx context.Context, actorID, supplierID uint) error {
	return r.mutate(ctx, actorID, supplierID, model.AuditRecommend, func(s *model.Supplier) bool {
		if s.Recommended {
			return false
		}
		now := time.Now()
		s.Recommended = true
		s.RecommendedAt = &now
		return true
	})
}

// ClearRecommended removes the recommended tag.
func (r *Reputation) ClearRecommended(ctx context.Context, actorID, supplierID uint) error {
	return r.mutate(ctx, actorID, supplierID, model.AuditUnrecommend, func(s *model.Supplier) bool {
		if !s.Recommended {
			return false
		}
		s.Recommended = false
		s.RecommendedReason = ""
		s.RecommendedAt = nil
		return true
	})
}

// SetBlacklisted marks a supplier as blacklisted with a reason.
func (r *Reputation) SetBlacklisted(ctx context.Context, actorID, supplierID uint, reason string) error {
	if reason == "" {
		return validationf("blacklist reason is required")
	}
	return r.mutateWithReason(ctx, actorID, supplierID, model.AuditBlacklist, reason, func(s *model.Supplier) bool {
		changed := !s.Blacklisted
		if changed {
			now := time.Now()
			s.Blacklisted = true
			s.BlacklistedAt = &now
		}
		s.BlacklistReason = reason
		return changed
	})
}

// ClearBlacklisted removes the blacklisted tag.
func (r *Reputation) ClearBlacklisted(ctx context.Context, actorID, supplierID uint) error {
	return r.mutate(ctx, actorID, supplierID, model.AuditUnblacklist, func(s *model.Supplier) bool {
		if !s.Blacklisted {
			return false
		}
		s.Blacklisted = false
		s.BlacklistReason = ""
		s.BlacklistedAt = nil
		return true
	})
}

// SetObjection marks a supplier as disputed with a reason.
func (r *Reputation) SetObjection(ctx context.Context, actorID, supplierID uint, reason string) error {
	if reason == "" {
		return validationf("objection reason is required")
	}
	return r.mutateWithReason(ctx, actorID, supplierID, model.AuditAddObjection, reason, func(s *model.Supplier) bool {
		changed := !s.HasObjection
		if changed {
			now := time.Now()
			s.HasObjection = true
			s.ObjectionAt = &now
		}
		s.ObjectionReason = reason
		return changed
	})
}

// ClearObjection removes the objection tag.
func (r *Reputation) ClearObjection(ctx context.Context, actorID, supplierID uint) error {
	return r.mutate(ctx, actorID, supplierID, model.AuditRemoveObjection, func(s *model.Supplier) bool {
		if !s.HasObjection {
			return false
		}
		s.HasObjection = false
		s.ObjectionReason = ""
		s.ObjectionAt = nil
		return true
	})
}

func (r *Reputation) mutate(ctx context.Context, actorID, supplierID uint, action string, apply func(*model.Supplier) bool) error {
	return r.mutateWithReason(ctx, actorID, supplierID, action, "", apply)
}

// mutateWithReason applies one tag change atomically. apply reports whether
// the tag actually flipped; a pure reason update is persisted without an
// audit record.
func (r *Reputation) mutateWithReason(ctx context.Context, actorID, supplierID uint, action, reason string, apply func(*model.Supplier) bool) error {
	err := r.store.Atomically(ctx, func(tx store.Store) error {
		supplier, err := tx.FindSupplier(ctx, supplierID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		flipped := apply(supplier)
		if err := tx.UpdateSupplierTags(ctx, supplier); err != nil {
			return err
		}
		if !flipped {
			return nil
		}
		return tx.AppendAudit(ctx, &model.AuditRecord{
			TargetTable: "suppliers",
			TargetID:    supplier.ID,
			Action:      action,
			ActorID:     actorID,
			Reason:      reason,
		})
	})
	if err != nil {
		return err
	}
	prometheus.RecordTagMutation(action)
	return nil
}
