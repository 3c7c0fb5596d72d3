package model

// User role in platform
type Role uint8

const (
	_ Role = iota
	RoleGuest
	RoleUser
	RoleAdmin
)

// Project lifecycle stage
type ProjectStatus uint8

const (
	_                     ProjectStatus = iota
	ProjectPlanning                     // 規劃中
	ProjectPermitting                   // 申請許可中
	ProjectConstruction                 // 施工中
	ProjectGridConnection               // 併網作業中
	ProjectOperating                    // 營運中
	ProjectOnHold                       // 暫停
)

// DocStatus is a document lifecycle state derived from its date fields.
// It is never written to storage.
type DocStatus string

const (
	DocNotStarted DocStatus = "not_started" // 未開始
	DocInProgress DocStatus = "in_progress" // 已開始
	DocObtained   DocStatus = "obtained"    // 已取得
)

// Track of a progress milestone
type Track string

const (
	TrackAdmin       Track = "admin"       // 行政流程
	TrackEngineering Track = "engineering" // 工程進度
)

// DeletionMode decides what "delete" means for a governed table.
type DeletionMode string

const (
	ModeSoftDelete  DeletionMode = "soft_delete"
	ModeArchive     DeletionMode = "archive"
	ModeHardDelete  DeletionMode = "hard_delete"
	ModeDisableOnly DeletionMode = "disable_only"
)

// GovernedTable identifies a table managed by the deletion policy dispatcher.
// Dispatch is keyed by this type rather than raw strings.
type GovernedTable string

const (
	TableProjects   GovernedTable = "projects"
	TableDocuments  GovernedTable = "documents"
	TableInvestors  GovernedTable = "investors"
	TablePartners   GovernedTable = "partners"
	TableMilestones GovernedTable = "progress_milestones"
)

// GovernedTables lists every table the dispatcher knows about.
func GovernedTables() []GovernedTable {
	return []GovernedTable{
		TableProjects,
		TableDocuments,
		TableInvestors,
		TablePartners,
		TableMilestones,
	}
}

// AuditAction names the operation recorded by an audit log entry.
type AuditAction string

const (
	ActionCreate    AuditAction = "CREATE"
	ActionUpdate    AuditAction = "UPDATE"
	ActionDelete    AuditAction = "DELETE"
	ActionRestore   AuditAction = "RESTORE"
	ActionPurge     AuditAction = "PURGE"
	ActionArchive   AuditAction = "ARCHIVE"
	ActionUnarchive AuditAction = "UNARCHIVE"
	ActionDBReset   AuditAction = "DB_RESET"
	ActionDBExport  AuditAction = "DB_EXPORT"
	ActionDBImport  AuditAction = "DB_IMPORT"
)
