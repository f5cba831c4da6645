package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sahil0902/shiftssc2-sub000/internal/dto"
	"github.com/sahil0902/shiftssc2-sub000/internal/model"
	"github.com/sahil0902/shiftssc2-sub000/internal/repository"
)

// ── 部门模块业务错误 ──

var (
	ErrDepartmentNotFound   = errors.New("部门不存在")
	ErrDepartmentNameExists = errors.New("部门名称已存在")
	ErrDepartmentHasMembers = errors.New("部门下存在成员，无法删除")
	ErrDepartmentHasShifts  = errors.New("部门下存在班次，无法删除")
)

// DepartmentService 部门业务接口
type DepartmentService interface {
	Create(ctx context.Context, actor model.Actor, req *dto.CreateDepartmentRequest) (*dto.DepartmentDetailResponse, error)
	Get(ctx context.Context, actor model.Actor, id string) (*dto.DepartmentDetailResponse, error)
	List(ctx context.Context, actor model.Actor) ([]dto.DepartmentDetailResponse, error)
	Update(ctx context.Context, actor model.Actor, id string, req *dto.UpdateDepartmentRequest) (*dto.DepartmentDetailResponse, error)
	// Delete 仅当部门下无成员且无班次时允许删除
	Delete(ctx context.Context, actor model.Actor, id string) error
}

type departmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDepartmentService 创建 DepartmentService 实例
func NewDepartmentService(repo *repository.Repository, logger *zap.Logger) DepartmentService {
	return &departmentService{repo: repo, logger: logger}
}

func (s *departmentService) Create(ctx context.Context, actor model.Actor, req *dto.CreateDepartmentRequest) (*dto.DepartmentDetailResponse, error) {
	// 名称组织内唯一
	if _, err := s.repo.Department.GetByName(ctx, actor.OrganizationID, req.Name); err == nil {
		return nil, ErrDepartmentNameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	dept := &model.Department{
		OrganizationID:     actor.OrganizationID,
		Name:               req.Name,
		Description:        req.Description,
		AllowsCasualShifts: req.AllowsCasualShifts,
	}
	dept.CreatedBy = &actor.UserID

	if err := s.repo.Department.Create(ctx, dept); err != nil {
		s.logger.Error("创建部门失败", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}

	return s.toDetail(ctx, dept)
}

func (s *departmentService) Get(ctx context.Context, actor model.Actor, id string) (*dto.DepartmentDetailResponse, error) {
	dept, err := s.repo.Department.GetByID(ctx, actor.OrganizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}
	return s.toDetail(ctx, dept)
}

func (s *departmentService) List(ctx context.Context, actor model.Actor) ([]dto.DepartmentDetailResponse, error) {
	depts, err := s.repo.Department.List(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}

	resps := make([]dto.DepartmentDetailResponse, 0, len(depts))
	for i := range depts {
		detail, err := s.toDetail(ctx, &depts[i])
		if err != nil {
			return nil, err
		}
		resps = append(resps, *detail)
	}
	return resps, nil
}

func (s *departmentService) Update(ctx context.Context, actor model.Actor, id string, req *dto.UpdateDepartmentRequest) (*dto.DepartmentDetailResponse, error) {
	dept, err := s.repo.Department.GetByID(ctx, actor.OrganizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}

	if req.Name != nil && *req.Name != dept.Name {
		if _, err := s.repo.Department.GetByName(ctx, actor.OrganizationID, *req.Name); err == nil {
			return nil, ErrDepartmentNameExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		dept.Name = *req.Name
	}
	if req.Description != nil {
		dept.Description = *req.Description
	}
	if req.AllowsCasualShifts != nil {
		dept.AllowsCasualShifts = *req.AllowsCasualShifts
	}
	dept.UpdatedBy = &actor.UserID

	if err := s.repo.Department.Update(ctx, dept); err != nil {
		return nil, err
	}

	return s.toDetail(ctx, dept)
}

func (s *departmentService) Delete(ctx context.Context, actor model.Actor, id string) error {
	dept, err := s.repo.Department.GetByID(ctx, actor.OrganizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDepartmentNotFound
		}
		return err
	}

	// 存在成员或班次时拒绝删除
	members, err := s.repo.Department.CountMembers(ctx, actor.OrganizationID, dept.DepartmentID)
	if err != nil {
		return err
	}
	if members > 0 {
		return ErrDepartmentHasMembers
	}
	shifts, err := s.repo.Department.CountShifts(ctx, actor.OrganizationID, dept.DepartmentID)
	if err != nil {
		return err
	}
	if shifts > 0 {
		return ErrDepartmentHasShifts
	}

	if err := s.repo.Department.Delete(ctx, actor.OrganizationID, dept.DepartmentID, actor.UserID); err != nil {
		return err
	}

	s.logger.Info("部门已删除",
		zap.String("department_id", dept.DepartmentID),
		zap.String("operator", actor.UserID),
	)
	return nil
}

func (s *departmentService) toDetail(ctx context.Context, dept *model.Department) (*dto.DepartmentDetailResponse, error) {
	members, err := s.repo.Department.CountMembers(ctx, dept.OrganizationID, dept.DepartmentID)
	if err != nil {
		return nil, err
	}
	shifts, err := s.repo.Department.CountShifts(ctx, dept.OrganizationID, dept.DepartmentID)
	if err != nil {
		return nil, err
	}
	return &dto.DepartmentDetailResponse{
		ID:                 dept.DepartmentID,
		Name:               dept.Name,
		Description:        dept.Description,
		AllowsCasualShifts: dept.AllowsCasualShifts,
		MemberCount:        members,
		ShiftCount:         shifts,
		CreatedAt:          dept.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:          dept.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}, nil
}
