package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sahil0902/shiftssc2-sub000/internal/model"
	"github.com/sahil0902/shiftssc2-sub000/pkg/response"
)

// MustGetActor 从 Gin 上下文中提取当前调用者的租户上下文。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetActor(c *gin.Context) (model.Actor, bool) {
	userID := c.GetString("user_id")
	orgID := c.GetString("organization_id")
	role := c.GetString("role")
	if userID == "" || orgID == "" || role == "" {
		response.Unauthorized(c, 10002, "未认证")
		return model.Actor{}, false
	}
	return model.Actor{
		UserID:         userID,
		OrganizationID: orgID,
		DepartmentID:   c.GetString("department_id"),
		Role:           model.Role(role),
	}, true
}

// GetTokenInfo 提取当前 Access Token 的 JTI 与过期时间（登出用）
func GetTokenInfo(c *gin.Context) (jti string, expiresAt time.Time) {
	jti = c.GetString("token_jti")
	if v, exists := c.Get("token_expires_at"); exists {
		if t, ok := v.(time.Time); ok {
			expiresAt = t
		}
	}
	return jti, expiresAt
}
