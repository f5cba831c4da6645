package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email      string `json:"email"       binding:"required,email"`
	Password   string `json:"password"    binding:"required,min=8"`
	RememberMe bool   `json:"remember_me"`
}

// RegisterRequest 组织自助注册请求（创建组织 + 管理员账号）
type RegisterRequest struct {
	OrganizationName string `json:"organization_name" binding:"required,min=2,max=100"`
	Slug             string `json:"slug"              binding:"required,min=2,max=60,lowercase,alphanum"`
	Domain           string `json:"domain"            binding:"omitempty,max=255"`
	AdminName        string `json:"admin_name"        binding:"required,min=2,max=100"`
	AdminEmail       string `json:"admin_email"       binding:"required,email"`
	Password         string `json:"password"          binding:"required,min=8,max=72"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse 登录/刷新成功响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	User         UserResponse `json:"user"`
}
