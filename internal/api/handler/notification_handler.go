package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sahil0902/shiftssc2-sub000/internal/dto"
	"github.com/sahil0902/shiftssc2-sub000/internal/service"
	"github.com/sahil0902/shiftssc2-sub000/pkg/response"
)

// NotificationHandler 通知模块 HTTP 处理器
type NotificationHandler struct {
	notifSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notifSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifSvc: notifSvc}
}

// ListNotifications 获取当前用户的通知列表
// GET /api/v1/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	notifs, total, err := h.notifSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, notifs, total, req.Page, req.PageSize)
}

// CountUnread 获取未读通知数
// GET /api/v1/notifications/unread-count
func (h *NotificationHandler) CountUnread(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	count, err := h.notifSvc.CountUnread(c.Request.Context(), actor)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"unread_count": count})
}

// MarkRead 标记单条通知已读
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "通知ID不能为空")
		return
	}

	if err := h.notifSvc.MarkRead(c.Request.Context(), actor, id); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.NotFound(c, 16001, "通知不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// MarkAllRead 标记全部通知已读
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.notifSvc.MarkAllRead(c.Request.Context(), actor); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}
