//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sahil0902/shiftssc2-sub000/internal/model"
	"github.com/sahil0902/shiftssc2-sub000/internal/repository"
	pkgerrors "github.com/sahil0902/shiftssc2-sub000/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=shiftssc password=shiftssc_password dbname=shiftssc_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 自动迁移测试表结构
	err = testDB.AutoMigrate(
		&model.Organization{},
		&model.Department{},
		&model.User{},
		&model.Shift{},
		&model.ShiftApplication{},
		&model.ShiftComment{},
		&model.Notification{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupTestData 创建基础测试数据并返回清理函数
func setupTestData(t *testing.T) (org *model.Organization, dept *model.Department, employee *model.User, cleanup func()) {
	t.Helper()
	ctx := context.Background()

	org = &model.Organization{
		Name: fmt.Sprintf("测试组织-%d", time.Now().UnixNano()),
		Slug: fmt.Sprintf("org%d", time.Now().UnixNano()),
	}
	if err := testDB.WithContext(ctx).Create(org).Error; err != nil {
		t.Fatalf("创建组织失败: %v", err)
	}

	dept = &model.Department{
		OrganizationID: org.OrganizationID,
		Name:           "运营部",
	}
	if err := testDB.WithContext(ctx).Create(dept).Error; err != nil {
		t.Fatalf("创建部门失败: %v", err)
	}

	employee = &model.User{
		OrganizationID: org.OrganizationID,
		DepartmentID:   &dept.DepartmentID,
		Name:           "测试员工",
		Email:          fmt.Sprintf("emp%d@example.com", time.Now().UnixNano()),
		PasswordHash:   "$2a$10$placeholder",
		Role:           model.RoleEmployee,
	}
	if err := testDB.WithContext(ctx).Create(employee).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	cleanup = func() {
		testDB.Unscoped().Where("user_id = ?", employee.UserID).Delete(&model.User{})
		testDB.Unscoped().Where("department_id = ?", dept.DepartmentID).Delete(&model.Department{})
		testDB.Unscoped().Where("organization_id = ?", org.OrganizationID).Delete(&model.Organization{})
	}
	return
}

func createPublishedShift(t *testing.T, org *model.Organization, dept *model.Department) *model.Shift {
	t.Helper()
	now := time.Now()
	shift := &model.Shift{
		OrganizationID: org.OrganizationID,
		DepartmentID:   dept.DepartmentID,
		Title:          "早班前台",
		ShiftDate:      time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		StartTime:      "09:00",
		EndTime:        "17:00",
		HourlyRate:     20,
		Status:         model.ShiftStatusPublished,
		Priority:       model.ShiftPriorityMedium,
		PublishedAt:    &now,
	}
	shift.Recompute()
	repo := repository.NewRepository(testDB)
	if err := repo.Shift.Create(context.Background(), shift); err != nil {
		t.Fatalf("创建班次失败: %v", err)
	}
	return shift
}

func createApplicant(t *testing.T, org *model.Organization, dept *model.Department, name string) *model.User {
	t.Helper()
	u := &model.User{
		OrganizationID: org.OrganizationID,
		DepartmentID:   &dept.DepartmentID,
		Name:           name,
		Email:          fmt.Sprintf("%s%d@example.com", name, time.Now().UnixNano()),
		PasswordHash:   "$2a$10$placeholder",
		Role:           model.RoleEmployee,
	}
	if err := testDB.WithContext(context.Background()).Create(u).Error; err != nil {
		t.Fatalf("创建申请人失败: %v", err)
	}
	return u
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_Shift_ConflictDetected(t *testing.T) {
	org, dept, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	shift := createPublishedShift(t, org, dept)
	defer testDB.Unscoped().Where("shift_id = ?", shift.ShiftID).Delete(&model.Shift{})

	// 模拟并发：获取两份副本
	copy1, _ := repo.Shift.GetByID(ctx, org.OrganizationID, shift.ShiftID)
	copy2, _ := repo.Shift.GetByID(ctx, org.OrganizationID, shift.ShiftID)

	// 第一次更新成功
	copy1.Title = "早班前台（改）"
	if err := repo.Shift.Update(ctx, copy1); err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}

	// 第二次更新应失败（version 已过期）
	copy2.Title = "另一个标题"
	err := repo.Shift.Update(ctx, copy2)
	if err == nil {
		t.Fatal("期望乐观锁冲突错误，但更新成功了")
	}
	if err != pkgerrors.ErrOptimisticLock {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}
}

func TestOptimisticLock_VersionIncrement(t *testing.T) {
	org, dept, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	shift := createPublishedShift(t, org, dept)
	defer testDB.Unscoped().Where("shift_id = ?", shift.ShiftID).Delete(&model.Shift{})

	if shift.Version != 1 {
		t.Errorf("初始 version 应为 1，得到: %d", shift.Version)
	}

	// 连续更新 3 次
	for i := 0; i < 3; i++ {
		got, _ := repo.Shift.GetByID(ctx, org.OrganizationID, shift.ShiftID)
		got.Description = fmt.Sprintf("第 %d 次修改", i+1)
		if err := repo.Shift.Update(ctx, got); err != nil {
			t.Fatalf("第 %d 次更新失败: %v", i+1, err)
		}
	}

	final, _ := repo.Shift.GetByID(ctx, org.OrganizationID, shift.ShiftID)
	if final.Version != 4 {
		t.Errorf("期望 version=4，得到: %d", final.Version)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: ApproveWinner Transaction
// ═══════════════════════════════════════════════════════════

func TestApproveWinner_Postconditions(t *testing.T) {
	org, dept, reviewer, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	shift := createPublishedShift(t, org, dept)
	defer testDB.Unscoped().Where("shift_id = ?", shift.ShiftID).Delete(&model.Shift{})
	defer testDB.Unscoped().Where("shift_id = ?", shift.ShiftID).Delete(&model.ShiftApplication{})

	alice := createApplicant(t, org, dept, "alice")
	bob := createApplicant(t, org, dept, "bob")
	defer testDB.Unscoped().Where("user_id IN ?", []string{alice.UserID, bob.UserID}).Delete(&model.User{})

	winner := &model.ShiftApplication{ShiftID: shift.ShiftID, UserID: alice.UserID, Status: model.ApplicationStatusPending}
	loser := &model.ShiftApplication{ShiftID: shift.ShiftID, UserID: bob.UserID, Status: model.ApplicationStatusPending}
	if err := repo.ShiftApplication.Create(ctx, winner); err != nil {
		t.Fatalf("创建申请失败: %v", err)
	}
	if err := repo.ShiftApplication.Create(ctx, loser); err != nil {
		t.Fatalf("创建申请失败: %v", err)
	}

	notifs := []model.Notification{
		{UserID: alice.UserID, Type: model.NotificationTypeApplicationApproved, Title: "批准", Content: "内容"},
		{UserID: bob.UserID, Type: model.NotificationTypeApplicationRejected, Title: "拒绝", Content: "内容"},
	}
	defer testDB.Unscoped().Where("user_id IN ?", []string{alice.UserID, bob.UserID}).Delete(&model.Notification{})

	reviewedAt := time.Now()
	if err := repo.ShiftApplication.ApproveWinner(ctx, shift, winner, reviewer.UserID, reviewedAt, notifs); err != nil {
		t.Fatalf("ApproveWinner 应成功: %v", err)
	}

	// 班次落定
	got, _ := repo.Shift.GetByID(ctx, org.OrganizationID, shift.ShiftID)
	if got.Status != model.ShiftStatusAssigned {
		t.Errorf("班次期望 assigned，得到: %s", got.Status)
	}
	if got.UserID == nil || *got.UserID != alice.UserID {
		t.Errorf("受派员工期望 %s，得到: %v", alice.UserID, got.UserID)
	}
	if got.Version != 2 {
		t.Errorf("期望 version=2，得到: %d", got.Version)
	}

	// 胜者 approved、落败方 rejected
	gotWinner, _ := repo.ShiftApplication.GetByID(ctx, shift.ShiftID, winner.ApplicationID)
	if gotWinner.Status != model.ApplicationStatusApproved {
		t.Errorf("胜者期望 approved，得到: %s", gotWinner.Status)
	}
	gotLoser, _ := repo.ShiftApplication.GetByID(ctx, shift.ShiftID, loser.ApplicationID)
	if gotLoser.Status != model.ApplicationStatusRejected {
		t.Errorf("落败方期望 rejected，得到: %s", gotLoser.Status)
	}
	if gotLoser.ReviewedAt == nil || gotLoser.ReviewedBy == nil {
		t.Error("落败方应有审核人与审核时间")
	}

	// 通知行与审批同事务落库
	var count int64
	testDB.Model(&model.Notification{}).Where("user_id IN ?", []string{alice.UserID, bob.UserID}).Count(&count)
	if count != 2 {
		t.Errorf("期望 2 条通知行，得到: %d", count)
	}
}

func TestApproveWinner_StaleVersionNoSideEffects(t *testing.T) {
	org, dept, reviewer, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	shift := createPublishedShift(t, org, dept)
	defer testDB.Unscoped().Where("shift_id = ?", shift.ShiftID).Delete(&model.Shift{})
	defer testDB.Unscoped().Where("shift_id = ?", shift.ShiftID).Delete(&model.ShiftApplication{})

	alice := createApplicant(t, org, dept, "alice")
	defer testDB.Unscoped().Where("user_id = ?", alice.UserID).Delete(&model.User{})

	app := &model.ShiftApplication{ShiftID: shift.ShiftID, UserID: alice.UserID, Status: model.ApplicationStatusPending}
	if err := repo.ShiftApplication.Create(ctx, app); err != nil {
		t.Fatalf("创建申请失败: %v", err)
	}

	// 持有过期版本号发起审批
	stale := *shift
	stale.Version = shift.Version + 7

	err := repo.ShiftApplication.ApproveWinner(ctx, &stale, app, reviewer.UserID, time.Now(), nil)
	if err != pkgerrors.ErrOptimisticLock {
		t.Fatalf("期望 ErrOptimisticLock，得到: %v", err)
	}

	// 整体回滚：班次与申请均不变
	gotShift, _ := repo.Shift.GetByID(ctx, org.OrganizationID, shift.ShiftID)
	if gotShift.Status != model.ShiftStatusPublished {
		t.Errorf("失败后班次应保持 published，得到: %s", gotShift.Status)
	}
	gotApp, _ := repo.ShiftApplication.GetByID(ctx, shift.ShiftID, app.ApplicationID)
	if gotApp.Status != model.ApplicationStatusPending {
		t.Errorf("失败后申请应保持 pending，得到: %s", gotApp.Status)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Unique Constraint (one application per user per shift)
// ═══════════════════════════════════════════════════════════

func TestUniqueApplicationPerUserPerShift(t *testing.T) {
	org, dept, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	shift := createPublishedShift(t, org, dept)
	defer testDB.Unscoped().Where("shift_id = ?", shift.ShiftID).Delete(&model.Shift{})
	defer testDB.Unscoped().Where("shift_id = ?", shift.ShiftID).Delete(&model.ShiftApplication{})

	alice := createApplicant(t, org, dept, "alice")
	defer testDB.Unscoped().Where("user_id = ?", alice.UserID).Delete(&model.User{})

	first := &model.ShiftApplication{ShiftID: shift.ShiftID, UserID: alice.UserID, Status: model.ApplicationStatusPending}
	if err := repo.ShiftApplication.Create(ctx, first); err != nil {
		t.Fatalf("首次申请应成功: %v", err)
	}

	second := &model.ShiftApplication{ShiftID: shift.ShiftID, UserID: alice.UserID, Status: model.ApplicationStatusPending}
	err := repo.ShiftApplication.Create(ctx, second)
	if err == nil {
		testDB.Unscoped().Where("application_id = ?", second.ApplicationID).Delete(&model.ShiftApplication{})
		t.Fatal("期望唯一约束违反，但创建成功了。确保已运行迁移中的 uq_shift_applications_shift_user 索引")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Tenant Scope & Soft Delete
// ═══════════════════════════════════════════════════════════

func TestShift_TenantScope(t *testing.T) {
	org, dept, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	shift := createPublishedShift(t, org, dept)
	defer testDB.Unscoped().Where("shift_id = ?", shift.ShiftID).Delete(&model.Shift{})

	// 本组织可见
	if _, err := repo.Shift.GetByID(ctx, org.OrganizationID, shift.ShiftID); err != nil {
		t.Fatalf("本组织查询应成功: %v", err)
	}

	// 其他组织不可见
	if _, err := repo.Shift.GetByID(ctx, "00000000-0000-0000-0000-000000000000", shift.ShiftID); err == nil {
		t.Fatal("跨租户查询应返回记录不存在")
	}
}

func TestShift_SoftDelete(t *testing.T) {
	org, dept, employee, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	shift := createPublishedShift(t, org, dept)
	defer testDB.Unscoped().Where("shift_id = ?", shift.ShiftID).Delete(&model.Shift{})

	if err := repo.Shift.Delete(ctx, org.OrganizationID, shift.ShiftID, employee.UserID); err != nil {
		t.Fatalf("软删除失败: %v", err)
	}

	// 常规查询应找不到
	if _, err := repo.Shift.GetByID(ctx, org.OrganizationID, shift.ShiftID); err == nil {
		t.Fatal("软删除后应查不到记录")
	}

	// Unscoped 查询应能找到
	var found model.Shift
	if err := testDB.Unscoped().Where("shift_id = ?", shift.ShiftID).First(&found).Error; err != nil {
		t.Fatalf("Unscoped 查询应能找到: %v", err)
	}
	if found.DeletedAt.Time.IsZero() {
		t.Error("DeletedAt 应已设置")
	}
}
