package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestAuditLogEntryTableColumn(t *testing.T) {
	e := AuditLogEntry{Table: "projects", RecordID: 3}
	assert.Equal(t, "audit_log_entries", e.TableName())
	assert.Equal(t, "projects", e.Table)

	// the Table field must keep writing to the table_name column
	s, err := schema.Parse(&AuditLogEntry{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	f := s.LookUpField("Table")
	require.NotNil(t, f)
	assert.Equal(t, "table_name", f.DBName)
}
