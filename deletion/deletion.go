// Package deletion dispatches delete / restore / purge requests according
// to each table's configured deletion policy. Dispatch is keyed by
// model.GovernedTable, and every successful mutation leaves one audit
// trail entry per record.
package deletion

import (
	"context"
	"errors"
	"strings"
	"time"

	"solarops/audit"
	"solarops/dao/model"
)

// ValidationError marks a request rejected before any mutation happened.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

var (
	ErrReasonRequired  = &ValidationError{Msg: "this table requires a delete reason"}
	ErrNotSoftDeleted  = &ValidationError{Msg: "record is not soft-deleted"}
	ErrNotArchived     = &ValidationError{Msg: "record is not archived"}
	ErrPurgeNotAllowed = &ValidationError{Msg: "purge is not allowed for this table"}
	ErrUnknownTable    = &ValidationError{Msg: "unknown governed table"}
)

// IsValidation reports whether err is a pre-mutation validation rejection,
// as opposed to an underlying store failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Store is the minimal row access the dispatcher needs. The production
// implementation is GormStore; tests substitute an in-memory fake.
type Store interface {
	Get(ctx context.Context, table model.GovernedTable, id uint) (map[string]any, error)
	Update(ctx context.Context, table model.GovernedTable, id uint, fields map[string]any) error
	HardDelete(ctx context.Context, table model.GovernedTable, id uint) error
	SoftDeletedBefore(ctx context.Context, table model.GovernedTable, cutoff time.Time) ([]uint, error)
}

// PolicySource resolves the deletion policy for a table. A missing policy
// row resolves to model.DefaultDeletionPolicy, never an error.
type PolicySource interface {
	Policy(ctx context.Context, table model.GovernedTable) (model.DeletionPolicy, error)
}

// Outcome describes what a delete request actually did.
type Outcome struct {
	Table    model.GovernedTable `json:"table"`
	RecordID uint                `json:"recordId"`
	Mode     model.DeletionMode  `json:"mode"`
	Action   model.AuditAction   `json:"action"`
	// Disabled is set for disable_only tables, where the record was kept
	// and only deactivated.
	Disabled bool `json:"disabled"`
}

// ItemResult is the per-record outcome of a batch operation.
type ItemResult struct {
	ID    uint   `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type Dispatcher struct {
	store    Store
	policies PolicySource
	log      audit.Recorder
	now      func() time.Time
}

func NewDispatcher(store Store, policies PolicySource, log audit.Recorder) *Dispatcher {
	return &Dispatcher{
		store:    store,
		policies: policies,
		log:      log,
		now:      time.Now,
	}
}

// Delete applies the table's policy to one record. Validation failures
// (missing reason) are rejected before any row is touched and leave no
// audit entry. The audit write itself is best-effort: a committed
// mutation is never rolled back because the trail write failed.
func (d *Dispatcher) Delete(ctx context.Context, table model.GovernedTable, id, actorID uint, reason string) (Outcome, error) {
	pol, err := d.policies.Policy(ctx, table)
	if err != nil {
		return Outcome{}, err
	}
	if pol.RequireReason && strings.TrimSpace(reason) == "" {
		return Outcome{}, ErrReasonRequired
	}

	old, err := d.store.Get(ctx, table, id)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Table: table, RecordID: id, Mode: pol.Mode}
	now := d.now()

	switch pol.Mode {
	case model.ModeHardDelete:
		if err := d.store.HardDelete(ctx, table, id); err != nil {
			return Outcome{}, err
		}
		out.Action = model.ActionDelete
		d.record(ctx, table, id, actorID, model.ActionDelete, old, nil, reason)
		return out, nil

	case model.ModeArchive:
		fields := map[string]any{"is_archived": true, "archived_at": now}
		out.Action = model.ActionArchive
		return d.mutateAndRecord(ctx, out, actorID, old, fields, reason)

	case model.ModeDisableOnly:
		fields := map[string]any{"is_active": false}
		out.Action = model.ActionUpdate
		out.Disabled = true
		return d.mutateAndRecord(ctx, out, actorID, old, fields, reason)

	default:
		// soft_delete, and the safe fallback for unrecognized modes.
		out.Mode = model.ModeSoftDelete
		fields := map[string]any{"is_deleted": true, "deleted_at": now}
		if reason != "" {
			fields["delete_reason"] = reason
		}
		out.Action = model.ActionDelete
		return d.mutateAndRecord(ctx, out, actorID, old, fields, reason)
	}
}

// Restore clears the soft-delete flags of one record.
func (d *Dispatcher) Restore(ctx context.Context, table model.GovernedTable, id, actorID uint) error {
	old, err := d.store.Get(ctx, table, id)
	if err != nil {
		return err
	}
	if !boolField(old, "is_deleted") {
		return ErrNotSoftDeleted
	}

	fields := map[string]any{"is_deleted": false, "deleted_at": nil, "delete_reason": nil}
	if err := d.store.Update(ctx, table, id, fields); err != nil {
		return err
	}
	d.recordAfter(ctx, table, id, actorID, model.ActionRestore, old, "")
	return nil
}

// Unarchive clears the archive flags of one record.
func (d *Dispatcher) Unarchive(ctx context.Context, table model.GovernedTable, id, actorID uint) error {
	old, err := d.store.Get(ctx, table, id)
	if err != nil {
		return err
	}
	if !boolField(old, "is_archived") {
		return ErrNotArchived
	}

	fields := map[string]any{"is_archived": false, "archived_at": nil}
	if err := d.store.Update(ctx, table, id, fields); err != nil {
		return err
	}
	d.recordAfter(ctx, table, id, actorID, model.ActionUnarchive, old, "")
	return nil
}

// Purge physically deletes an already-soft-deleted record. It is allowed
// only on tables with AllowAutoPurge, or through an explicit admin request.
func (d *Dispatcher) Purge(ctx context.Context, table model.GovernedTable, id, actorID uint, adminRequest bool) error {
	pol, err := d.policies.Policy(ctx, table)
	if err != nil {
		return err
	}
	if !pol.AllowAutoPurge && !adminRequest {
		return ErrPurgeNotAllowed
	}

	old, err := d.store.Get(ctx, table, id)
	if err != nil {
		return err
	}
	if !boolField(old, "is_deleted") {
		return ErrNotSoftDeleted
	}

	if err := d.store.HardDelete(ctx, table, id); err != nil {
		return err
	}
	d.record(ctx, table, id, actorID, model.ActionPurge, old, nil, "")
	return nil
}

// PurgeExpired purges every soft-deleted record whose deletion is older
// than the table's retention window. Only AllowAutoPurge tables qualify.
// Each record gets its own audit entry, and a failed record does not stop
// the rest.
func (d *Dispatcher) PurgeExpired(ctx context.Context, table model.GovernedTable, actorID uint) ([]ItemResult, error) {
	pol, err := d.policies.Policy(ctx, table)
	if err != nil {
		return nil, err
	}
	if !pol.AllowAutoPurge {
		return nil, ErrPurgeNotAllowed
	}

	cutoff := d.now().AddDate(0, 0, -pol.RetentionDays)
	ids, err := d.store.SoftDeletedBefore(ctx, table, cutoff)
	if err != nil {
		return nil, err
	}

	results := make([]ItemResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, itemResult(id, d.Purge(ctx, table, id, actorID, true)))
	}
	return results, nil
}

// BatchDelete applies Delete per record; one audit entry per record, and
// item failures never abort the batch or roll back earlier items.
func (d *Dispatcher) BatchDelete(ctx context.Context, table model.GovernedTable, ids []uint, actorID uint, reason string) []ItemResult {
	results := make([]ItemResult, 0, len(ids))
	for _, id := range ids {
		_, err := d.Delete(ctx, table, id, actorID, reason)
		results = append(results, itemResult(id, err))
	}
	return results
}

// BatchRestore applies Restore per record.
func (d *Dispatcher) BatchRestore(ctx context.Context, table model.GovernedTable, ids []uint, actorID uint) []ItemResult {
	results := make([]ItemResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, itemResult(id, d.Restore(ctx, table, id, actorID)))
	}
	return results
}

// BatchPurge applies Purge per record. The caller decides whether the
// request carries admin authority; the same gate as single-record purge
// applies to every item.
func (d *Dispatcher) BatchPurge(ctx context.Context, table model.GovernedTable, ids []uint, actorID uint, adminRequest bool) []ItemResult {
	results := make([]ItemResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, itemResult(id, d.Purge(ctx, table, id, actorID, adminRequest)))
	}
	return results
}

func (d *Dispatcher) mutateAndRecord(ctx context.Context, out Outcome, actorID uint,
	old map[string]any, fields map[string]any, reason string) (Outcome, error) {
	if err := d.store.Update(ctx, out.Table, out.RecordID, fields); err != nil {
		return Outcome{}, err
	}
	d.recordAfter(ctx, out.Table, out.RecordID, actorID, out.Action, old, reason)
	return out, nil
}

// recordAfter re-reads the row for the after snapshot. A failed re-read
// degrades the snapshot to null; the mutation already committed.
func (d *Dispatcher) recordAfter(ctx context.Context, table model.GovernedTable, id, actorID uint,
	action model.AuditAction, old map[string]any, reason string) {
	newData, err := d.store.Get(ctx, table, id)
	if err != nil {
		newData = nil
	}
	d.record(ctx, table, id, actorID, action, old, newData, reason)
}

func (d *Dispatcher) record(ctx context.Context, table model.GovernedTable, id, actorID uint,
	action model.AuditAction, old, newData map[string]any, reason string) {
	var oldAny, newAny any
	if old != nil {
		oldAny = old
	}
	if newData != nil {
		newAny = newData
	}
	audit.RecordBestEffort(ctx, d.log, audit.Entry{
		Table:    string(table),
		RecordID: id,
		Action:   action,
		ActorID:  actorID,
		OldData:  oldAny,
		NewData:  newAny,
		Reason:   reason,
	})
}

func itemResult(id uint, err error) ItemResult {
	if err != nil {
		return ItemResult{ID: id, Error: err.Error()}
	}
	return ItemResult{ID: id, OK: true}
}

func boolField(row map[string]any, key string) bool {
	v, ok := row[key].(bool)
	return ok && v
}
