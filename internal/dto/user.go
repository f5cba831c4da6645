package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建用户请求（管理员操作）
type CreateUserRequest struct {
	Name         string `json:"name"          binding:"required,min=2,max=100"`
	Email        string `json:"email"         binding:"required,email"`
	Password     string `json:"password"      binding:"required,min=8,max=72"`
	Role         string `json:"role"          binding:"required,oneof=admin manager employee"`
	DepartmentID string `json:"department_id" binding:"omitempty,uuid"`
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=2,max=100"`
	Role         *string `json:"role"          binding:"omitempty,oneof=admin manager employee"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	Page         int    `form:"page,default=1"          binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size,default=20"    binding:"omitempty,min=1,max=100"`
	DepartmentID string `form:"department_id"           binding:"omitempty,uuid"`
	Role         string `form:"role"                    binding:"omitempty,oneof=admin manager employee"`
}

// UserResponse 用户信息响应
type UserResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Email      string              `json:"email"`
	Role       string              `json:"role"`
	Department *DepartmentResponse `json:"department,omitempty"`
}

// DepartmentResponse 用户响应内嵌的部门摘要
type DepartmentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
