package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"srm-service/internal/model"
	"srm-service/internal/store"
	"srm-service/prometheus"

	"go.uber.org/zap"
)

// Event is one lifecycle transition event.
type Event string

const (
	EventApprove Event = "approve"
	EventReject  Event = "reject"
	EventSuspend Event = "suspend"
	EventRestore Event = "restore"
	EventDelete  Event = "delete"
)

// transitions is the closed state machine: pending → approved|rejected,
// approved → suspended, rejected|suspended → approved. Delete is legal from
// any state and is handled separately because it removes the row.
var transitions = map[model.SupplierStatus]map[Event]model.SupplierStatus{
	model.StatusPending: {
		EventApprove: model.StatusApproved,
		EventReject:  model.StatusRejected,
	},
	model.StatusApproved: {
		EventSuspend: model.StatusSuspended,
	},
	model.StatusRejected: {
		EventRestore: model.StatusApproved,
	},
	model.StatusSuspended: {
		EventRestore: model.StatusApproved,
	},
}

// NextStatus returns the status a supplier in `from` moves to on `event`,
// and whether that transition is legal at all.
func NextStatus(from model.SupplierStatus, event Event) (model.SupplierStatus, bool) {
	if event == EventDelete {
		return from, true
	}
	to, ok := transitions[from][event]
	return to, ok
}

// LifecycleEvent is the payload posted to the external audit/notification
// collaborator after a committed transition.
type LifecycleEvent struct {
	SupplierID uint   `json:"supplier_id"`
	Action     string `json:"action"`
	ActorID    uint   `json:"actor_id"`
	Reason     string `json:"reason,omitempty"`
}

// Notifier delivers lifecycle events to the external collaborator.
// Delivery is best-effort; failures are logged, never propagated.
type Notifier interface {
	Notify(ctx context.Context, ev LifecycleEvent) error
}

// NopNotifier discards events. Used when no collaborator is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, LifecycleEvent) error { return nil }

// Lifecycle drives the supplier audit state machine. Each transition runs
// in one storage transaction: compare-and-swap of the status row plus the
// audit append commit or roll back together, so a failure midway never
// leaves a status change without its audit record.
type Lifecycle struct {
	store    store.Store
	notifier Notifier
	log      *zap.Logger
}

// NewLifecycle returns a Lifecycle over st, posting events to notifier.
func NewLifecycle(st store.Store, notifier Notifier, log *zap.Logger) *Lifecycle {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Lifecycle{store: st, notifier: notifier, log: log}
}

// Approve moves a pending supplier to approved, stamping the approver and
// clearing any earlier rejection reason.
func (l *Lifecycle) Approve(ctx context.Context, actorID, supplierID uint) error {
	return l.transition(ctx, actorID, supplierID, EventApprove, "", func(s *model.Supplier) {
		now := time.Now()
		s.ApprovedAt = &now
		s.ApprovedBy = &actorID
		s.RejectReason = ""
	})
}

// Reject moves a pending supplier to rejected. The reason is mandatory.
func (l *Lifecycle) Reject(ctx context.Context, actorID, supplierID uint, reason string) error {
	if reason == "" {
		return validationf("rejection reason is required")
	}
	return l.transition(ctx, actorID, supplierID, EventReject, reason, func(s *model.Supplier) {
		s.RejectReason = reason
	})
}

// Suspend moves an approved supplier to suspended.
func (l *Lifecycle) Suspend(ctx context.Context, actorID, supplierID uint, reason string) error {
	return l.transition(ctx, actorID, supplierID, EventSuspend, reason, func(s *model.Supplier) {
		s.RejectReason = reason
	})
}

// Restore moves a rejected or suspended supplier back to approved and
// clears the recorded reason.
func (l *Lifecycle) Restore(ctx context.Context, actorID, supplierID uint) error {
	return l.transition(ctx, actorID, supplierID, EventRestore, "", func(s *model.Supplier) {
		s.RejectReason = ""
	})
}

func (l *Lifecycle) transition(ctx context.Context, actorID, supplierID uint, event Event, reason string, apply func(*model.Supplier)) error {
	supplier, err := l.store.FindSupplier(ctx, supplierID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	from := supplier.Status
	to, ok := NextStatus(from, event)
	if !ok {
		prometheus.RecordLifecycleTransition(string(event), "invalid")
		return &InvalidTransitionError{From: from, Event: string(event)}
	}

	supplier.Status = to
	apply(supplier)

	err = l.store.Atomically(ctx, func(tx store.Store) error {
		if err := tx.UpdateSupplierFrom(ctx, supplier, from); err != nil {
			return err
		}
		return tx.AppendAudit(ctx, &model.AuditRecord{
			TargetTable: "suppliers",
			TargetID:    supplier.ID,
			Action:      string(event),
			ActorID:     actorID,
			Reason:      reason,
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrStale) {
			// A concurrent transition already moved the row; the loser
			// observes an invalid transition, per the serialization
			// contract.
			prometheus.RecordLifecycleTransition(string(event), "conflict")
			return &InvalidTransitionError{From: from, Event: string(event)}
		}
		return err
	}

	prometheus.RecordLifecycleTransition(string(event), "ok")
	l.notify(ctx, LifecycleEvent{
		SupplierID: supplier.ID,
		Action:     string(event),
		ActorID:    actorID,
		Reason:     reason,
	})
	return nil
}

// Delete removes a supplier from any state. The cascade removes department
// links, products, qualifications and contacts, revokes the owner's
// supplier terminal role, and appends an audit record carrying a full
// snapshot of the prior row.
func (l *Lifecycle) Delete(ctx context.Context, actorID, supplierID uint) error {
	supplier, err := l.store.FindSupplier(ctx, supplierID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	snapshot, err := json.Marshal(supplier)
	if err != nil {
		return err
	}

	err = l.store.Atomically(ctx, func(tx store.Store) error {
		if err := tx.DeleteSupplierCascade(ctx, supplier); err != nil {
			return err
		}
		if err := tx.RevokeTerminal(ctx, supplier.PrincipalID, model.TerminalSupplier); err != nil {
			return err
		}
		return tx.AppendAudit(ctx, &model.AuditRecord{
			TargetTable: "suppliers",
			TargetID:    supplier.ID,
			Action:      model.AuditDelete,
			ActorID:     actorID,
			Snapshot:    string(snapshot),
		})
	})
	if err != nil {
		return err
	}

	prometheus.RecordLifecycleTransition(string(EventDelete), "ok")
	l.notify(ctx, LifecycleEvent{
		SupplierID: supplier.ID,
		Action:     model.AuditDelete,
		ActorID:    actorID,
	})
	return nil
}

func (l *Lifecycle) notify(ctx context.Context, ev LifecycleEvent) {
	if err := l.notifier.Notify(ctx, ev); err != nil {
		l.log.Warn("lifecycle event delivery failed",
			zap.Uint("supplier_id", ev.SupplierID),
			zap.String("action", ev.Action),
			zap.Error(err))
	}
}
