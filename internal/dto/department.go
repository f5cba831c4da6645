package dto

// ── 部门模块 DTO ──

// CreateDepartmentRequest 创建部门请求
type CreateDepartmentRequest struct {
	Name               string `json:"name"                 binding:"required,min=2,max=50"`
	Description        string `json:"description"          binding:"omitempty,max=200"`
	AllowsCasualShifts bool   `json:"allows_casual_shifts"`
}

// UpdateDepartmentRequest 更新部门请求
type UpdateDepartmentRequest struct {
	Name               *string `json:"name"                 binding:"omitempty,min=2,max=50"`
	Description        *string `json:"description"          binding:"omitempty,max=200"`
	AllowsCasualShifts *bool   `json:"allows_casual_shifts"`
}

// DepartmentDetailResponse 部门详细信息响应
type DepartmentDetailResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	AllowsCasualShifts bool   `json:"allows_casual_shifts"`
	MemberCount        int64  `json:"member_count"`
	ShiftCount         int64  `json:"shift_count"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}
