package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sahil0902/shiftssc2-sub000/config"
	"github.com/sahil0902/shiftssc2-sub000/internal/model"
)

func setupTestExportService(wageExportEnabled bool) (ExportService, *mockShiftRepo) {
	repo, _, shiftRepo, _, _ := newTestRepository()
	cfg := &config.Config{Feature: config.FeatureConfig{WageExportEnabled: wageExportEnabled}}
	svc := NewExportService(cfg, repo, zap.NewNop())
	return svc, shiftRepo
}

func seedCompletedShift(shiftRepo *mockShiftRepo, id string, date time.Time) {
	assignee := "user-emp"
	shift := &model.Shift{
		ShiftID:        id,
		OrganizationID: "org-001",
		DepartmentID:   "dept-001",
		Title:          "早班前台",
		ShiftDate:      date,
		StartTime:      "09:00",
		EndTime:        "17:00",
		HourlyRate:     20,
		Status:         model.ShiftStatusCompleted,
		UserID:         &assignee,
	}
	shift.Recompute()
	shift.Version = 1
	shiftRepo.shifts[id] = shift
}

var (
	exportFrom = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	exportTo   = time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
)

func TestExportService_WageReport_Disabled(t *testing.T) {
	svc, shiftRepo := setupTestExportService(false)
	seedCompletedShift(shiftRepo, "shift-done", exportFrom.AddDate(0, 0, 5))

	_, _, err := svc.ExportWageReport(context.Background(), managerActor, exportFrom, exportTo)
	if !errors.Is(err, ErrExportDisabled) {
		t.Errorf("功能关闭期望 ErrExportDisabled，实际: %v", err)
	}
}

func TestExportService_WageReport_EmployeeForbidden(t *testing.T) {
	svc, shiftRepo := setupTestExportService(true)
	seedCompletedShift(shiftRepo, "shift-done", exportFrom.AddDate(0, 0, 5))

	_, _, err := svc.ExportWageReport(context.Background(), employeeActor, exportFrom, exportTo)
	if !errors.Is(err, ErrShiftManageForbidden) {
		t.Errorf("员工导出期望 ErrShiftManageForbidden，实际: %v", err)
	}
}

func TestExportService_WageReport_NoShifts(t *testing.T) {
	svc, _ := setupTestExportService(true)

	_, _, err := svc.ExportWageReport(context.Background(), managerActor, exportFrom, exportTo)
	if !errors.Is(err, ErrExportNoShifts) {
		t.Errorf("无已完成班次期望 ErrExportNoShifts，实际: %v", err)
	}
}

func TestExportService_WageReport_Success(t *testing.T) {
	svc, shiftRepo := setupTestExportService(true)
	seedCompletedShift(shiftRepo, "shift-a", exportFrom.AddDate(0, 0, 5))
	seedCompletedShift(shiftRepo, "shift-b", exportFrom.AddDate(0, 0, 6))
	// 范围外的班次不应计入
	seedCompletedShift(shiftRepo, "shift-out", exportTo.AddDate(0, 1, 0))

	buf, filename, err := svc.ExportWageReport(context.Background(), managerActor, exportFrom, exportTo)
	if err != nil {
		t.Fatalf("ExportWageReport 应成功: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("导出内容不应为空")
	}
	if filename != "工资报表_20260901_20260930.xlsx" {
		t.Errorf("文件名不符，实际=%s", filename)
	}
}

func TestExportService_MyShiftsICS_NoShifts(t *testing.T) {
	svc, _ := setupTestExportService(true)

	_, _, err := svc.ExportMyShiftsICS(context.Background(), employeeActor)
	if !errors.Is(err, ErrExportNoShifts) {
		t.Errorf("无受派班次期望 ErrExportNoShifts，实际: %v", err)
	}
}

func TestExportService_MyShiftsICS_Success(t *testing.T) {
	svc, shiftRepo := setupTestExportService(true)

	assignee := employeeActor.UserID
	shiftRepo.shifts["shift-mine"] = &model.Shift{
		ShiftID:        "shift-mine",
		OrganizationID: "org-001",
		DepartmentID:   "dept-001",
		Title:          "晚班收银",
		ShiftDate:      time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC),
		StartTime:      "18:00",
		EndTime:        "22:00",
		Status:         model.ShiftStatusAssigned,
		UserID:         &assignee,
	}
	// 时间非法的班次跳过而非中断
	shiftRepo.shifts["shift-bad"] = &model.Shift{
		ShiftID:        "shift-bad",
		OrganizationID: "org-001",
		DepartmentID:   "dept-001",
		Title:          "坏数据班次",
		StartTime:      "??",
		EndTime:        "22:00",
		Status:         model.ShiftStatusAssigned,
		UserID:         &assignee,
	}

	buf, filename, err := svc.ExportMyShiftsICS(context.Background(), employeeActor)
	if err != nil {
		t.Fatalf("ExportMyShiftsICS 应成功: %v", err)
	}
	content := buf.String()
	if !strings.Contains(content, "BEGIN:VCALENDAR") || !strings.Contains(content, "BEGIN:VEVENT") {
		t.Error("输出应为 iCalendar 格式")
	}
	if !strings.Contains(content, "shift-mine@shiftssc") {
		t.Error("事件UID应包含班次ID")
	}
	if !strings.Contains(content, "晚班收银") {
		t.Error("事件摘要应包含班次标题")
	}
	if strings.Contains(content, "坏数据班次") {
		t.Error("时间非法的班次不应出现在日历中")
	}
	if !strings.HasPrefix(filename, "my_shifts_") || !strings.HasSuffix(filename, ".ics") {
		t.Errorf("文件名不符，实际=%s", filename)
	}
}
