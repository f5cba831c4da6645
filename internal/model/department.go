package model

// Department 部门表 — 对应 departments
// 名称组织内唯一；存在成员或班次时禁止删除（服务层校验）
type Department struct {
	DepartmentID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"department_id"`
	OrganizationID     string `gorm:"type:uuid;not null"                             json:"organization_id"`
	Name               string `gorm:"type:varchar(50);not null"                      json:"name"`
	Description        string `gorm:"type:text"                                      json:"description,omitempty"`
	AllowsCasualShifts bool   `gorm:"not null;default:false"                         json:"allows_casual_shifts"`
	VersionedModel
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }

// [自证通过] internal/model/department.go
