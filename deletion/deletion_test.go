package deletion

import (
	"context"
	"errors"
	"testing"
	"time"

	"solarops/audit"
	"solarops/dao/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeStore keeps rows as maps, the same shape GormStore produces.
type fakeStore struct {
	rows    map[model.GovernedTable]map[uint]map[string]any
	failIDs map[uint]bool // IDs whose mutations fail
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows:    map[model.GovernedTable]map[uint]map[string]any{},
		failIDs: map[uint]bool{},
	}
}

func (s *fakeStore) put(table model.GovernedTable, id uint, fields map[string]any) {
	if s.rows[table] == nil {
		s.rows[table] = map[uint]map[string]any{}
	}
	row := map[string]any{"id": id, "is_deleted": false, "is_archived": false, "is_active": true}
	for k, v := range fields {
		row[k] = v
	}
	s.rows[table][id] = row
}

func (s *fakeStore) Get(_ context.Context, table model.GovernedTable, id uint) (map[string]any, error) {
	row, ok := s.rows[table][id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := map[string]any{}
	for k, v := range row {
		out[k] = v
	}
	return out, nil
}

func (s *fakeStore) Update(_ context.Context, table model.GovernedTable, id uint, fields map[string]any) error {
	if s.failIDs[id] {
		return errors.New("store unavailable")
	}
	row, ok := s.rows[table][id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		if v == nil {
			delete(row, k)
			continue
		}
		row[k] = v
	}
	return nil
}

func (s *fakeStore) HardDelete(_ context.Context, table model.GovernedTable, id uint) error {
	if s.failIDs[id] {
		return errors.New("store unavailable")
	}
	delete(s.rows[table], id)
	return nil
}

func (s *fakeStore) SoftDeletedBefore(_ context.Context, table model.GovernedTable, cutoff time.Time) ([]uint, error) {
	var ids []uint
	for id, row := range s.rows[table] {
		deleted, _ := row["is_deleted"].(bool)
		at, ok := row["deleted_at"].(time.Time)
		if deleted && ok && at.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakePolicies struct {
	byTable map[model.GovernedTable]model.DeletionPolicy
}

func (p *fakePolicies) Policy(_ context.Context, table model.GovernedTable) (model.DeletionPolicy, error) {
	if pol, ok := p.byTable[table]; ok {
		return pol, nil
	}
	return model.DefaultDeletionPolicy(table), nil
}

type fakeRecorder struct {
	entries []audit.Entry
}

func (r *fakeRecorder) Record(_ context.Context, e audit.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeRecorder) byAction(action model.AuditAction) []audit.Entry {
	var out []audit.Entry
	for _, e := range r.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

func newDispatcher(policies map[model.GovernedTable]model.DeletionPolicy) (*Dispatcher, *fakeStore, *fakeRecorder) {
	store := newFakeStore()
	rec := &fakeRecorder{}
	d := NewDispatcher(store, &fakePolicies{byTable: policies}, rec)
	return d, store, rec
}

func TestDeleteDefaultsToSoftDelete(t *testing.T) {
	// No policy row registered for the table at all.
	d, store, rec := newDispatcher(nil)
	store.put(model.TableProjects, 1, map[string]any{"name": "南區二期"})

	out, err := d.Delete(context.Background(), model.TableProjects, 1, 9, "duplicate entry")
	require.NoError(t, err)

	assert.Equal(t, model.ModeSoftDelete, out.Mode)
	assert.Equal(t, model.ActionDelete, out.Action)

	row, err := store.Get(context.Background(), model.TableProjects, 1)
	require.NoError(t, err)
	assert.Equal(t, true, row["is_deleted"])
	assert.Equal(t, "duplicate entry", row["delete_reason"])
	assert.NotNil(t, row["deleted_at"])

	require.Len(t, rec.entries, 1)
	assert.Equal(t, model.ActionDelete, rec.entries[0].Action)
	assert.Equal(t, uint(9), rec.entries[0].ActorID)
	assert.NotNil(t, rec.entries[0].OldData)
	assert.NotNil(t, rec.entries[0].NewData)
}

func TestDeleteRejectsBlankReasonBeforeMutation(t *testing.T) {
	d, store, rec := newDispatcher(map[model.GovernedTable]model.DeletionPolicy{
		model.TableDocuments: {Table: model.TableDocuments, Mode: model.ModeSoftDelete, RequireReason: true},
	})
	store.put(model.TableDocuments, 5, nil)

	for _, reason := range []string{"", "   "} {
		_, err := d.Delete(context.Background(), model.TableDocuments, 5, 1, reason)
		require.ErrorIs(t, err, ErrReasonRequired)
		assert.True(t, IsValidation(err))
	}

	// No row mutation and no audit entry on rejection.
	row, err := store.Get(context.Background(), model.TableDocuments, 5)
	require.NoError(t, err)
	assert.Equal(t, false, row["is_deleted"])
	assert.Empty(t, rec.entries)
}

func TestDeleteArchiveMode(t *testing.T) {
	d, store, rec := newDispatcher(map[model.GovernedTable]model.DeletionPolicy{
		model.TableInvestors: {Table: model.TableInvestors, Mode: model.ModeArchive},
	})
	store.put(model.TableInvestors, 2, nil)

	out, err := d.Delete(context.Background(), model.TableInvestors, 2, 1, "")
	require.NoError(t, err)
	assert.Equal(t, model.ActionArchive, out.Action)

	row, _ := store.Get(context.Background(), model.TableInvestors, 2)
	assert.Equal(t, true, row["is_archived"])
	assert.Equal(t, false, row["is_deleted"])

	require.Len(t, rec.entries, 1)
	assert.Equal(t, model.ActionArchive, rec.entries[0].Action)
}

func TestDeleteHardDeleteMode(t *testing.T) {
	d, store, rec := newDispatcher(map[model.GovernedTable]model.DeletionPolicy{
		model.TablePartners: {Table: model.TablePartners, Mode: model.ModeHardDelete},
	})
	store.put(model.TablePartners, 3, nil)

	out, err := d.Delete(context.Background(), model.TablePartners, 3, 1, "")
	require.NoError(t, err)
	assert.Equal(t, model.ActionDelete, out.Action)

	_, err = store.Get(context.Background(), model.TablePartners, 3)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.Len(t, rec.entries, 1)
	assert.NotNil(t, rec.entries[0].OldData, "hard delete keeps a before snapshot")
	assert.Nil(t, rec.entries[0].NewData)
}

func TestDeleteDisableOnlyRefusesDeletion(t *testing.T) {
	d, store, _ := newDispatcher(map[model.GovernedTable]model.DeletionPolicy{
		model.TableMilestones: {Table: model.TableMilestones, Mode: model.ModeDisableOnly},
	})
	store.put(model.TableMilestones, 4, nil)

	out, err := d.Delete(context.Background(), model.TableMilestones, 4, 1, "")
	require.NoError(t, err)
	assert.True(t, out.Disabled)

	row, err := store.Get(context.Background(), model.TableMilestones, 4)
	require.NoError(t, err, "record must survive")
	assert.Equal(t, false, row["is_active"])
	assert.Equal(t, false, row["is_deleted"])
}

func TestRestore(t *testing.T) {
	d, store, rec := newDispatcher(nil)
	store.put(model.TableProjects, 1, nil)

	_, err := d.Delete(context.Background(), model.TableProjects, 1, 1, "wrong data")
	require.NoError(t, err)

	require.NoError(t, d.Restore(context.Background(), model.TableProjects, 1, 2))

	row, _ := store.Get(context.Background(), model.TableProjects, 1)
	assert.Equal(t, false, row["is_deleted"])
	assert.Nil(t, row["deleted_at"])
	assert.Nil(t, row["delete_reason"])

	restores := rec.byAction(model.ActionRestore)
	require.Len(t, restores, 1, "exactly one RESTORE entry")
	assert.Equal(t, uint(2), restores[0].ActorID)
}

func TestRestoreRejectsLiveRecord(t *testing.T) {
	d, store, rec := newDispatcher(nil)
	store.put(model.TableProjects, 1, nil)

	err := d.Restore(context.Background(), model.TableProjects, 1, 1)
	assert.ErrorIs(t, err, ErrNotSoftDeleted)
	assert.Empty(t, rec.entries)
}

func TestPurge(t *testing.T) {
	d, store, rec := newDispatcher(nil)
	store.put(model.TableProjects, 1, nil)

	// Live records cannot be purged, even by admins.
	err := d.Purge(context.Background(), model.TableProjects, 1, 1, true)
	assert.ErrorIs(t, err, ErrNotSoftDeleted)

	_, err = d.Delete(context.Background(), model.TableProjects, 1, 1, "")
	require.NoError(t, err)

	// Non-admin purge needs AllowAutoPurge on the policy.
	err = d.Purge(context.Background(), model.TableProjects, 1, 1, false)
	assert.ErrorIs(t, err, ErrPurgeNotAllowed)

	require.NoError(t, d.Purge(context.Background(), model.TableProjects, 1, 1, true))
	_, err = store.Get(context.Background(), model.TableProjects, 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.Len(t, rec.byAction(model.ActionPurge), 1)
}

func TestPurgeExpired(t *testing.T) {
	d, store, rec := newDispatcher(map[model.GovernedTable]model.DeletionPolicy{
		model.TableDocuments: {
			Table:          model.TableDocuments,
			Mode:           model.ModeSoftDelete,
			RetentionDays:  30,
			AllowAutoPurge: true,
		},
	})

	now := time.Now()
	store.put(model.TableDocuments, 1, map[string]any{
		"is_deleted": true, "deleted_at": now.AddDate(0, 0, -45),
	})
	store.put(model.TableDocuments, 2, map[string]any{
		"is_deleted": true, "deleted_at": now.AddDate(0, 0, -5),
	})
	store.put(model.TableDocuments, 3, nil)

	results, err := d.PurgeExpired(context.Background(), model.TableDocuments, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint(1), results[0].ID)
	assert.True(t, results[0].OK)

	_, err = store.Get(context.Background(), model.TableDocuments, 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = store.Get(context.Background(), model.TableDocuments, 2)
	assert.NoError(t, err, "recent soft-deletes stay within retention")

	require.Len(t, rec.byAction(model.ActionPurge), 1)
}

func TestPurgeExpiredRequiresAutoPurge(t *testing.T) {
	d, _, _ := newDispatcher(nil)
	_, err := d.PurgeExpired(context.Background(), model.TableProjects, 1)
	assert.ErrorIs(t, err, ErrPurgeNotAllowed)
}

func TestBatchDeletePartialFailure(t *testing.T) {
	d, store, rec := newDispatcher(nil)
	store.put(model.TableProjects, 1, nil)
	store.put(model.TableProjects, 2, nil)
	store.put(model.TableProjects, 3, nil)
	store.failIDs[2] = true

	results := d.BatchDelete(context.Background(), model.TableProjects, []uint{1, 2, 3}, 1, "cleanup")
	require.Len(t, results, 3)
	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.NotEmpty(t, results[1].Error)
	assert.True(t, results[2].OK, "a failed item must not abort later items")

	// One audit entry per successful record, none for the failed one.
	assert.Len(t, rec.byAction(model.ActionDelete), 2)
}

func TestBatchRestore(t *testing.T) {
	d, store, rec := newDispatcher(nil)
	for id := uint(1); id <= 3; id++ {
		store.put(model.TableProjects, id, nil)
	}
	d.BatchDelete(context.Background(), model.TableProjects, []uint{1, 2}, 1, "")

	results := d.BatchRestore(context.Background(), model.TableProjects, []uint{1, 2, 3}, 1)
	require.Len(t, results, 3)
	assert.True(t, results[0].OK)
	assert.True(t, results[1].OK)
	assert.False(t, results[2].OK, "record 3 was never deleted")

	assert.Len(t, rec.byAction(model.ActionRestore), 2)
}

func TestParseTable(t *testing.T) {
	for _, tbl := range model.GovernedTables() {
		got, ok := ParseTable(string(tbl))
		require.True(t, ok)
		assert.Equal(t, tbl, got)
	}
	_, ok := ParseTable("users")
	assert.False(t, ok, "users is not governed by deletion policies")
}
