package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sahil0902/shiftssc2-sub000/internal/dto"
	"github.com/sahil0902/shiftssc2-sub000/internal/service"
	pkgerrors "github.com/sahil0902/shiftssc2-sub000/pkg/errors"
	"github.com/sahil0902/shiftssc2-sub000/pkg/response"
)

// ShiftHandler 班次模块 HTTP 处理器（含申请审批与评论）
type ShiftHandler struct {
	shiftSvc service.ShiftService
	appSvc   service.ShiftApplicationService
}

// NewShiftHandler 创建 ShiftHandler
func NewShiftHandler(shiftSvc service.ShiftService, appSvc service.ShiftApplicationService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc, appSvc: appSvc}
}

// ── 班次 CRUD ──

// ListShifts 获取班次列表
// GET /api/v1/shifts
func (h *ShiftHandler) ListShifts(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ShiftListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	shifts, total, err := h.shiftSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OKPage(c, shifts, total, req.Page, req.PageSize)
}

// GetShift 获取班次详情
// GET /api/v1/shifts/:id
func (h *ShiftHandler) GetShift(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	shift, err := h.shiftSvc.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, shift)
}

// CreateShift 创建班次
// POST /api/v1/shifts
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	shift, err := h.shiftSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.Created(c, shift)
}

// UpdateShift 更新班次（含状态迁移）
// PUT /api/v1/shifts/:id
func (h *ShiftHandler) UpdateShift(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	var req dto.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	shift, err := h.shiftSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, shift)
}

// DeleteShift 删除班次（仅管理员）
// DELETE /api/v1/shifts/:id
func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	if err := h.shiftSvc.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 班次申请与审批 ──

// ApplyShift 员工申请班次
// POST /api/v1/shifts/:id/applications
func (h *ShiftHandler) ApplyShift(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	shiftID := c.Param("id")
	if shiftID == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	var req dto.ApplyShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	app, err := h.appSvc.Apply(c.Request.Context(), actor, shiftID, &req)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.Created(c, app)
}

// ListApplications 获取班次的申请列表（管理端）
// GET /api/v1/shifts/:id/applications
func (h *ShiftHandler) ListApplications(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	shiftID := c.Param("id")
	if shiftID == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	apps, err := h.appSvc.ListByShift(c.Request.Context(), actor, shiftID)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": apps})
}

// ListMyApplications 获取当前用户的申请列表
// GET /api/v1/applications/mine
func (h *ShiftHandler) ListMyApplications(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	apps, err := h.appSvc.ListMine(c.Request.Context(), actor)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": apps})
}

// ApproveApplication 批准申请（单一赢家裁决）
// POST /api/v1/shifts/:id/applications/:application_id/approve
func (h *ShiftHandler) ApproveApplication(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	shiftID := c.Param("id")
	applicationID := c.Param("application_id")
	if shiftID == "" || applicationID == "" {
		response.BadRequest(c, 10001, "班次ID与申请ID不能为空")
		return
	}

	app, err := h.appSvc.Approve(c.Request.Context(), actor, shiftID, applicationID)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, app)
}

// RejectApplication 拒绝申请
// POST /api/v1/shifts/:id/applications/:application_id/reject
func (h *ShiftHandler) RejectApplication(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	shiftID := c.Param("id")
	applicationID := c.Param("application_id")
	if shiftID == "" || applicationID == "" {
		response.BadRequest(c, 10001, "班次ID与申请ID不能为空")
		return
	}

	var req dto.RejectApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	app, err := h.appSvc.Reject(c.Request.Context(), actor, shiftID, applicationID, &req)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, app)
}

// ── 班次评论 ──

// AddComment 发表班次评论
// POST /api/v1/shifts/:id/comments
func (h *ShiftHandler) AddComment(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	shiftID := c.Param("id")
	if shiftID == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	comment, err := h.shiftSvc.AddComment(c.Request.Context(), actor, shiftID, &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.Created(c, comment)
}

// ListComments 获取班次评论列表
// GET /api/v1/shifts/:id/comments
func (h *ShiftHandler) ListComments(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	shiftID := c.Param("id")
	if shiftID == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	comments, err := h.shiftSvc.ListComments(c.Request.Context(), actor, shiftID)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, gin.H{"list": comments})
}

// ── 错误映射 ──

// handleShiftError 统一处理班次模块业务错误
func (h *ShiftHandler) handleShiftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 14001, "班次不存在")
	case errors.Is(err, service.ErrShiftManageForbidden):
		response.Forbidden(c, 14002, "无权管理班次")
	case errors.Is(err, service.ErrShiftDeleteForbidden):
		response.Forbidden(c, 14003, "仅管理员可删除班次")
	case errors.Is(err, service.ErrShiftTimeInvalid):
		response.BadRequest(c, 14004, "班次结束时间必须晚于开始时间")
	case errors.Is(err, service.ErrShiftIllegalTransition):
		response.Conflict(c, 14005, "非法的班次状态迁移")
	case errors.Is(err, service.ErrShiftHoursOutOfPolicy):
		response.BadRequest(c, 14006, "班次时长超出组织策略限制")
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 13001, "部门不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 14007, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// handleApplicationError 统一处理班次申请模块业务错误
func (h *ShiftHandler) handleApplicationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 14001, "班次不存在")
	case errors.Is(err, service.ErrShiftManageForbidden):
		response.Forbidden(c, 14002, "无权管理班次")
	case errors.Is(err, service.ErrApplyNotEmployee):
		response.Forbidden(c, 15001, "仅员工可申请班次")
	case errors.Is(err, service.ErrShiftNotOpen):
		response.Conflict(c, 15002, "班次当前不接受申请")
	case errors.Is(err, service.ErrAlreadyApplied):
		response.Conflict(c, 15003, "已申请过该班次，请勿重复申请")
	case errors.Is(err, service.ErrApplicationNotFound):
		response.NotFound(c, 15004, "申请记录不存在")
	case errors.Is(err, service.ErrApplicationAlreadyReviewed):
		response.Conflict(c, 15005, "申请已被审核，不能重复操作")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 15006, "班次已被其他审批落定，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/shift_handler.go
