package model

// Project is the root business entity: one solar-power plant case.
type Project struct {
	Base
	Governed
	Name       string        `gorm:"uniqueIndex;type:varchar(128);not null;comment:案場名稱"`
	Code       string        `gorm:"uniqueIndex;type:varchar(32);not null;comment:案場編號"`
	Site       *string       `gorm:"type:varchar(256);comment:案場地址"`
	CapacityKW float64       `gorm:"not null;default:0;comment:設置容量(kW)"`
	Status     ProjectStatus `gorm:"index:project_status;not null;default:1;comment:案場狀態"`

	InvestorID *uint
	Investor   *Investor

	Documents       []Document
	MilestoneStates []ProjectMilestone
	Partners        []Partner `gorm:"many2many:project_partners;"`
}

func (Project) TableName() string {
	return string(TableProjects)
}

// Investor funds one or more projects.
type Investor struct {
	Base
	Governed
	Name    string  `gorm:"uniqueIndex;type:varchar(128);not null;comment:投資方名稱"`
	Contact *string `gorm:"type:varchar(64);comment:聯絡人"`
	Phone   *string `gorm:"type:varchar(32)"`
	Email   *string `gorm:"type:varchar(128)"`

	Projects []Project
}

func (Investor) TableName() string {
	return string(TableInvestors)
}

// Partner is an external company working on projects (EPC, legal, finance).
type Partner struct {
	Base
	Governed
	Name     string  `gorm:"uniqueIndex;type:varchar(128);not null;comment:協力廠商名稱"`
	Category string  `gorm:"type:varchar(32);index;comment:廠商類別"`
	Contact  *string `gorm:"type:varchar(64)"`
	Phone    *string `gorm:"type:varchar(32)"`

	Projects []Project `gorm:"many2many:project_partners;"`
}

func (Partner) TableName() string {
	return string(TablePartners)
}
