package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sahil0902/shiftssc2-sub000/config"
	"github.com/sahil0902/shiftssc2-sub000/internal/dto"
	"github.com/sahil0902/shiftssc2-sub000/internal/model"
	"github.com/sahil0902/shiftssc2-sub000/internal/repository"
	"github.com/sahil0902/shiftssc2-sub000/pkg/jwt"
	"github.com/sahil0902/shiftssc2-sub000/pkg/redis"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrSlugExists         = errors.New("组织标识已被占用")
	ErrRegistrationClosed = errors.New("当前未开放组织自助注册")
	ErrRefreshInvalid     = errors.New("刷新令牌无效")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Register 组织自助注册：同一事务内创建组织与管理员账号
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	// Logout 将当前 Access Token 的 JTI 加入黑名单
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		rdb:    rdb,
		logger: logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户（邮箱全局唯一）
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(user, req.RememberMe)
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	if !s.cfg.Feature.OpenRegistration {
		return nil, ErrRegistrationClosed
	}

	// slug 唯一性
	existing, err := s.repo.Organization.GetBySlug(ctx, req.Slug)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询组织失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrSlugExists
	}

	// 邮箱全局唯一
	if _, err := s.repo.User.GetByEmail(ctx, req.AdminEmail); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	org := &model.Organization{
		Name:   req.OrganizationName,
		Slug:   req.Slug,
		Domain: req.Domain,
		Settings: model.OrganizationSettings{
			NotificationPrefs: model.NotificationPrefs{
				ApplicationApproved: true,
				ApplicationRejected: true,
			},
		},
	}
	owner := &model.User{
		Name:         req.AdminName,
		Email:        req.AdminEmail,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	}

	if err := s.repo.Organization.CreateWithOwner(ctx, org, owner); err != nil {
		s.logger.Error("组织注册失败", zap.String("slug", req.Slug), zap.Error(err))
		return nil, err
	}

	s.logger.Info("组织注册成功",
		zap.String("organization_id", org.OrganizationID),
		zap.String("slug", org.Slug),
	)

	return s.issueTokens(owner, false)
}

// ────────────────────── RefreshToken ──────────────────────

func (s *authService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, ErrRefreshInvalid
	}
	if claims.TokenType != "refresh" {
		return nil, ErrRefreshInvalid
	}

	// 黑名单检查（Redis 不可用时降级放行）
	if s.rdb != nil {
		blacklisted, err := s.rdb.IsBlacklisted(ctx, claims.ID)
		if err == nil && blacklisted {
			return nil, ErrRefreshInvalid
		}
	}

	// 重新加载用户，角色/部门变更即时生效
	user, err := s.repo.User.GetByID(ctx, claims.OrganizationID, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	return s.issueTokens(user, claims.RememberMe)
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.rdb == nil {
		return nil // Redis 不可用时仅依赖 Token 自然过期
	}
	return s.rdb.BlacklistToken(ctx, jti, time.Until(expiresAt))
}

// ── 内部辅助方法 ──

func (s *authService) issueTokens(user *model.User, rememberMe bool) (*dto.TokenResponse, error) {
	deptID := ""
	if user.DepartmentID != nil {
		deptID = *user.DepartmentID
	}

	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.OrganizationID, deptID, string(user.Role))
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.OrganizationID, deptID, string(user.Role), rememberMe)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	var dept *dto.DepartmentResponse
	if user.Department != nil {
		dept = &dto.DepartmentResponse{
			ID:   user.Department.DepartmentID,
			Name: user.Department.Name,
		}
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		User: dto.UserResponse{
			ID:         user.UserID,
			Name:       user.Name,
			Email:      user.Email,
			Role:       string(user.Role),
			Department: dept,
		},
	}, nil
}
