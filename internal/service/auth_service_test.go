package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sahil0902/shiftssc2-sub000/config"
	"github.com/sahil0902/shiftssc2-sub000/internal/dto"
	"github.com/sahil0902/shiftssc2-sub000/internal/model"
	"github.com/sahil0902/shiftssc2-sub000/internal/repository"
	"github.com/sahil0902/shiftssc2-sub000/pkg/jwt"
)

func testAuthConfig(openRegistration bool) *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-for-unit-tests",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  7 * 24 * time.Hour,
			RefreshTokenTTLRemember: 30 * 24 * time.Hour,
		},
		Feature: config.FeatureConfig{OpenRegistration: openRegistration},
	}
}

func setupTestAuthService(openRegistration bool) (AuthService, *repository.Repository, *jwt.Manager) {
	repo, _, _, _, _ := newTestRepository()
	cfg := testAuthConfig(openRegistration)
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewAuthService(cfg, repo, jwtMgr, nil, zap.NewNop())
	return svc, repo, jwtMgr
}

// seedLoginUser 预置一个可登录的员工账号
func seedLoginUser(t *testing.T, repo *repository.Repository, email, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	user := &model.User{
		OrganizationID: "org-001",
		Name:           "李四",
		Email:          email,
		PasswordHash:   string(hash),
		Role:           model.RoleEmployee,
	}
	if err := repo.User.Create(context.Background(), user); err != nil {
		t.Fatalf("预置用户失败: %v", err)
	}
	return user
}

// ── Login 测试 ──

func TestAuthService_Login_Success(t *testing.T) {
	svc, repo, jwtMgr := setupTestAuthService(false)
	user := seedLoginUser(t, repo, "lisi@example.com", "password123")

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "lisi@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if resp.User.ID != user.UserID {
		t.Errorf("期望用户ID=%s，实际=%s", user.UserID, resp.User.ID)
	}
	if resp.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("期望ExpiresIn=900，实际=%d", resp.ExpiresIn)
	}

	// Access Token 携带租户上下文
	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("解析AccessToken失败: %v", err)
	}
	if claims.TokenType != "access" {
		t.Errorf("期望token_type=access，实际=%s", claims.TokenType)
	}
	if claims.OrganizationID != "org-001" {
		t.Errorf("期望organization_id=org-001，实际=%s", claims.OrganizationID)
	}
	if claims.Role != string(model.RoleEmployee) {
		t.Errorf("期望role=employee，实际=%s", claims.Role)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, repo, _ := setupTestAuthService(false)
	seedLoginUser(t, repo, "lisi@example.com", "password123")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "lisi@example.com",
		Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("密码错误期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _, _ := setupTestAuthService(false)

	// 未知邮箱与密码错误返回同一错误，不泄露账号是否存在
	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("未知邮箱期望 ErrInvalidCredentials，实际: %v", err)
	}
}

// ── Register 测试 ──

func validRegisterRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		OrganizationName: "新店",
		Slug:             "newstore",
		AdminName:        "王五",
		AdminEmail:       "wangwu@example.com",
		Password:         "password123",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, repo, jwtMgr := setupTestAuthService(true)

	resp, err := svc.Register(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	if resp.User.Role != string(model.RoleAdmin) {
		t.Errorf("注册账号应为admin，实际=%s", resp.User.Role)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("解析AccessToken失败: %v", err)
	}
	if claims.OrganizationID == "" || claims.OrganizationID == "org-001" {
		t.Errorf("新组织应有独立ID，实际=%s", claims.OrganizationID)
	}

	// 新组织默认开启审批/拒绝通知
	org, err := repo.Organization.GetBySlug(context.Background(), "newstore")
	if err != nil {
		t.Fatalf("查询新组织失败: %v", err)
	}
	prefs := org.Settings.NotificationPrefs
	if !prefs.ApplicationApproved || !prefs.ApplicationRejected {
		t.Error("新组织通知偏好应默认开启")
	}
}

func TestAuthService_Register_Closed(t *testing.T) {
	svc, _, _ := setupTestAuthService(false)

	_, err := svc.Register(context.Background(), validRegisterRequest())
	if !errors.Is(err, ErrRegistrationClosed) {
		t.Errorf("注册关闭期望 ErrRegistrationClosed，实际: %v", err)
	}
}

func TestAuthService_Register_SlugExists(t *testing.T) {
	svc, _, _ := setupTestAuthService(true)

	req := validRegisterRequest()
	req.Slug = "testorg" // 预置组织的 slug
	_, err := svc.Register(context.Background(), req)
	if !errors.Is(err, ErrSlugExists) {
		t.Errorf("slug占用期望 ErrSlugExists，实际: %v", err)
	}
}

func TestAuthService_Register_EmailExists(t *testing.T) {
	svc, repo, _ := setupTestAuthService(true)
	seedLoginUser(t, repo, "wangwu@example.com", "password123")

	_, err := svc.Register(context.Background(), validRegisterRequest())
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("邮箱占用期望 ErrEmailExists，实际: %v", err)
	}
}

// ── RefreshToken 测试 ──

func TestAuthService_RefreshToken_Success(t *testing.T) {
	svc, repo, _ := setupTestAuthService(false)
	user := seedLoginUser(t, repo, "lisi@example.com", "password123")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "lisi@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	// 刷新前修改角色，新 Token 应携带最新角色
	user.Role = model.RoleManager
	if err := repo.User.Update(context.Background(), user); err != nil {
		t.Fatalf("更新用户失败: %v", err)
	}

	resp, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("RefreshToken 应成功: %v", err)
	}
	if resp.User.Role != string(model.RoleManager) {
		t.Errorf("刷新后应携带最新角色manager，实际=%s", resp.User.Role)
	}
}

func TestAuthService_RefreshToken_AccessTokenRejected(t *testing.T) {
	svc, repo, _ := setupTestAuthService(false)
	seedLoginUser(t, repo, "lisi@example.com", "password123")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "lisi@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	// 用 Access Token 冒充 Refresh Token
	_, err = svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: login.AccessToken})
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Errorf("access token 刷新期望 ErrRefreshInvalid，实际: %v", err)
	}
}

func TestAuthService_RefreshToken_Garbage(t *testing.T) {
	svc, _, _ := setupTestAuthService(false)

	_, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: "not-a-token"})
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Errorf("非法token期望 ErrRefreshInvalid，实际: %v", err)
	}
}

// ── Logout 测试 ──

func TestAuthService_Logout_RedisUnavailable(t *testing.T) {
	svc, _, _ := setupTestAuthService(false)

	// Redis 降级时登出直接成功，仅依赖 Token 自然过期
	if err := svc.Logout(context.Background(), "some-jti", time.Now().Add(15*time.Minute)); err != nil {
		t.Errorf("Redis 不可用时 Logout 应成功: %v", err)
	}
}
