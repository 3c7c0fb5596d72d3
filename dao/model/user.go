package model

import "gorm.io/datatypes"

// Optional fields for user
type UserAttribute struct {
	Email  *string `json:"email,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// User is the actor identity carried by JWT claims and referenced from
// audit log entries. Accounts themselves are provisioned by the platform
// SSO, not by this service.
type User struct {
	Base
	Name     string `gorm:"uniqueIndex;type:varchar(64);not null;comment:帳號"`
	Nickname string `gorm:"type:varchar(64);comment:暱稱"`
	Role     Role   `gorm:"index:user_role;not null;comment:平台角色 (guest, user, admin)"`

	Attributes datatypes.JSONType[UserAttribute] `gorm:"comment:額外屬性 (信箱、電話、頭像等)"`
}

func (User) TableName() string {
	return "users"
}
