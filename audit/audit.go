// Package audit appends immutable rows to the audit trail. The trail is a
// best-effort observability record: a failed log write after a committed
// mutation is reported but never rolls the mutation back.
package audit

import (
	"context"
	"encoding/json"

	"solarops/dao/model"
	"solarops/logutils"
	"solarops/metrics"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry is one audit event before serialization.
type Entry struct {
	Table    string
	RecordID uint
	Action   model.AuditAction
	ActorID  uint
	OldData  any
	NewData  any
	Reason   string
}

// Recorder is the write side of the audit trail.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Writer persists audit entries through GORM.
type Writer struct {
	db *gorm.DB
}

func NewWriter(db *gorm.DB) *Writer {
	return &Writer{db: db}
}

// Record inserts one entry. Snapshots are marshaled to JSON; a snapshot
// that cannot be marshaled is stored as null rather than failing the write.
func (w *Writer) Record(ctx context.Context, e Entry) error {
	row := model.AuditLogEntry{
		Table:    e.Table,
		RecordID: e.RecordID,
		Action:   e.Action,
		ActorID:  e.ActorID,
		OldData:  Snapshot(e.OldData),
		NewData:  Snapshot(e.NewData),
	}
	if e.Reason != "" {
		row.Reason = &e.Reason
	}
	if err := w.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	metrics.RecordAuditEntry(string(e.Action))
	return nil
}

// RecordBestEffort logs the entry and downgrades a failure to a warning.
// Used after a mutation has already committed, where refusing the whole
// operation would be worse than a missing trail row.
func RecordBestEffort(ctx context.Context, r Recorder, e Entry) {
	if err := r.Record(ctx, e); err != nil {
		logutils.Log.WithFields(logutils.Fields{
			"table":  e.Table,
			"record": e.RecordID,
			"action": e.Action,
		}).Warn("audit write failed: ", err)
	}
}

// Snapshot marshals a record state into an opaque JSON column value.
func Snapshot(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		logutils.Log.Warn("audit snapshot marshal failed: ", err)
		return nil
	}
	return datatypes.JSON(data)
}
