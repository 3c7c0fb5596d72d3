package deletion

import (
	"context"
	"errors"
	"time"

	"solarops/dao/model"

	"gorm.io/gorm"
)

// prototypes maps each governed table to its GORM model, so physical
// deletes go through the model rather than a raw table-name string.
var prototypes = map[model.GovernedTable]func() any{
	model.TableProjects:   func() any { return &model.Project{} },
	model.TableDocuments:  func() any { return &model.Document{} },
	model.TableInvestors:  func() any { return &model.Investor{} },
	model.TablePartners:   func() any { return &model.Partner{} },
	model.TableMilestones: func() any { return &model.ProgressMilestone{} },
}

// ParseTable resolves a request path segment to a governed table.
func ParseTable(s string) (model.GovernedTable, bool) {
	for _, t := range model.GovernedTables() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// GormStore implements Store over the shared GORM connection.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, table model.GovernedTable, id uint) (map[string]any, error) {
	if _, ok := prototypes[table]; !ok {
		return nil, ErrUnknownTable
	}
	row := map[string]any{}
	err := s.db.WithContext(ctx).Table(string(table)).Where("id = ?", id).Take(&row).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *GormStore) Update(ctx context.Context, table model.GovernedTable, id uint, fields map[string]any) error {
	if _, ok := prototypes[table]; !ok {
		return ErrUnknownTable
	}
	res := s.db.WithContext(ctx).Table(string(table)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *GormStore) HardDelete(ctx context.Context, table model.GovernedTable, id uint) error {
	proto, ok := prototypes[table]
	if !ok {
		return ErrUnknownTable
	}
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(proto()).Error
}

func (s *GormStore) SoftDeletedBefore(ctx context.Context, table model.GovernedTable, cutoff time.Time) ([]uint, error) {
	if _, ok := prototypes[table]; !ok {
		return nil, ErrUnknownTable
	}
	var ids []uint
	err := s.db.WithContext(ctx).Table(string(table)).
		Where("is_deleted = ? AND deleted_at < ?", true, cutoff).
		Pluck("id", &ids).Error
	return ids, err
}

// GormPolicySource resolves policies from the deletion_policies table,
// falling back to the safe default when a table has no row.
type GormPolicySource struct {
	db *gorm.DB
}

func NewGormPolicySource(db *gorm.DB) *GormPolicySource {
	return &GormPolicySource{db: db}
}

func (p *GormPolicySource) Policy(ctx context.Context, table model.GovernedTable) (model.DeletionPolicy, error) {
	var pol model.DeletionPolicy
	err := p.db.WithContext(ctx).Where("table_name = ?", table).Take(&pol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DefaultDeletionPolicy(table), nil
	}
	if err != nil {
		return model.DeletionPolicy{}, err
	}
	return pol, nil
}
