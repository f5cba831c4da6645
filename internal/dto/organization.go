package dto

// ── 组织模块 DTO ──

// UpdateOrganizationRequest 更新组织请求
type UpdateOrganizationRequest struct {
	Name     *string                     `json:"name"     binding:"omitempty,min=2,max=100"`
	Domain   *string                     `json:"domain"   binding:"omitempty,max=255"`
	Settings *OrganizationSettingsUpdate `json:"settings"`
}

// OrganizationSettingsUpdate 组织设置更新（整体替换）
type OrganizationSettingsUpdate struct {
	Theme               string  `json:"theme"                binding:"omitempty,max=50"`
	ApplicationApproved bool    `json:"application_approved"`
	ApplicationRejected bool    `json:"application_rejected"`
	MinHours            float64 `json:"min_hours"            binding:"omitempty,gte=0,lte=24"`
	MaxHours            float64 `json:"max_hours"            binding:"omitempty,gte=0,lte=24"`
}

// OrganizationResponse 组织详情响应
type OrganizationResponse struct {
	ID       string                       `json:"id"`
	Name     string                       `json:"name"`
	Slug     string                       `json:"slug"`
	Domain   string                       `json:"domain,omitempty"`
	Settings OrganizationSettingsResponse `json:"settings"`
}

// OrganizationSettingsResponse 组织设置响应
type OrganizationSettingsResponse struct {
	Theme               string  `json:"theme,omitempty"`
	ApplicationApproved bool    `json:"application_approved"`
	ApplicationRejected bool    `json:"application_rejected"`
	MinHours            float64 `json:"min_hours,omitempty"`
	MaxHours            float64 `json:"max_hours,omitempty"`
}
