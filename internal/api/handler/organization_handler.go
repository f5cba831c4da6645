package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sahil0902/shiftssc2-sub000/internal/dto"
	"github.com/sahil0902/shiftssc2-sub000/internal/service"
	pkgerrors "github.com/sahil0902/shiftssc2-sub000/pkg/errors"
	"github.com/sahil0902/shiftssc2-sub000/pkg/response"
)

// OrganizationHandler 组织模块 HTTP 处理器
type OrganizationHandler struct {
	orgSvc service.OrganizationService
}

// NewOrganizationHandler 创建 OrganizationHandler
func NewOrganizationHandler(orgSvc service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgSvc: orgSvc}
}

// GetOrganization 获取当前组织信息
// GET /api/v1/organization
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	org, err := h.orgSvc.Get(c.Request.Context(), actor)
	if err != nil {
		h.handleOrganizationError(c, err)
		return
	}

	response.OK(c, org)
}

// UpdateOrganization 更新当前组织信息（仅管理员）
// PUT /api/v1/organization
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	org, err := h.orgSvc.Update(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleOrganizationError(c, err)
		return
	}

	response.OK(c, org)
}

// handleOrganizationError 统一处理组织模块业务错误
func (h *OrganizationHandler) handleOrganizationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrganizationNotFound):
		response.NotFound(c, 11001, "组织不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 11004, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
