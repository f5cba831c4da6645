package dto

import (
	"fmt"

	"github.com/sahil0902/shiftssc2-sub000/internal/model"
)

// ── 班次模块 DTO ──

// CreateShiftRequest 创建班次请求
// 初始状态由调用方指定，仅允许 draft / published
type CreateShiftRequest struct {
	DepartmentID      string  `json:"department_id"      binding:"required,uuid"`
	Title             string  `json:"title"              binding:"required,min=2,max=150"`
	Description       string  `json:"description"        binding:"omitempty,max=2000"`
	ShiftDate         string  `json:"shift_date"         binding:"required,datetime=2006-01-02"`
	StartTime         string  `json:"start_time"         binding:"required,datetime=15:04"`
	EndTime           string  `json:"end_time"           binding:"required,datetime=15:04"`
	RequiredEmployees int     `json:"required_employees" binding:"omitempty,min=1,max=200"`
	HourlyRate        float64 `json:"hourly_rate"        binding:"omitempty,gte=0"`
	Status            string  `json:"status"             binding:"omitempty,oneof=draft published"`
	Priority          string  `json:"priority"           binding:"omitempty,oneof=low medium high"`
}

// UpdateShiftRequest 更新班次请求
// 显式列出本操作可变字段，不接受宽松的整体覆盖
type UpdateShiftRequest struct {
	Title             *string  `json:"title"              binding:"omitempty,min=2,max=150"`
	Description       *string  `json:"description"        binding:"omitempty,max=2000"`
	ShiftDate         *string  `json:"shift_date"         binding:"omitempty,datetime=2006-01-02"`
	StartTime         *string  `json:"start_time"         binding:"omitempty,datetime=15:04"`
	EndTime           *string  `json:"end_time"           binding:"omitempty,datetime=15:04"`
	RequiredEmployees *int     `json:"required_employees" binding:"omitempty,min=1,max=200"`
	HourlyRate        *float64 `json:"hourly_rate"        binding:"omitempty,gte=0"`
	Status            *string  `json:"status"             binding:"omitempty,oneof=draft published assigned in_progress completed cancelled"`
	Priority          *string  `json:"priority"           binding:"omitempty,oneof=low medium high"`
}

// ShiftListRequest 班次列表查询参数
type ShiftListRequest struct {
	Page         int    `form:"page,default=1"       binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	Status       string `form:"status"               binding:"omitempty,oneof=draft published assigned in_progress completed cancelled"`
	DepartmentID string `form:"department_id"        binding:"omitempty,uuid"`
	DateFrom     string `form:"date_from"            binding:"omitempty,datetime=2006-01-02"`
	DateTo       string `form:"date_to"              binding:"omitempty,datetime=2006-01-02"`
}

// ShiftResponse 班次响应
type ShiftResponse struct {
	ID                 string  `json:"id"`
	DepartmentID       string  `json:"department_id"`
	DepartmentName     string  `json:"department_name,omitempty"`
	AssigneeID         string  `json:"assignee_id,omitempty"`
	AssigneeName       string  `json:"assignee_name,omitempty"`
	Title              string  `json:"title"`
	Description        string  `json:"description,omitempty"`
	ShiftDate          string  `json:"shift_date"`
	StartTime          string  `json:"start_time"`
	EndTime            string  `json:"end_time"`
	RequiredEmployees  int     `json:"required_employees"`
	HourlyRate         float64 `json:"hourly_rate"`
	TotalHours         float64 `json:"total_hours"`
	TotalWage          float64 `json:"total_wage"`
	FormattedRate      string  `json:"formatted_hourly_rate"`
	FormattedTotalWage string  `json:"formatted_total_wage"`
	Status             string  `json:"status"`
	Priority           string  `json:"priority"`
	PublishedAt        string  `json:"published_at,omitempty"`
	PendingCount       int64   `json:"pending_count,omitempty"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

// FormatMoney 货币展示格式：符号 + 两位小数（纯展示，不参与业务计算）
func FormatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// NewShiftResponse 由模型构造班次响应
func NewShiftResponse(s *model.Shift) ShiftResponse {
	resp := ShiftResponse{
		ID:                 s.ShiftID,
		DepartmentID:       s.DepartmentID,
		Title:              s.Title,
		Description:        s.Description,
		ShiftDate:          s.ShiftDate.Format("2006-01-02"),
		StartTime:          s.StartTime,
		EndTime:            s.EndTime,
		RequiredEmployees:  s.RequiredEmployees,
		HourlyRate:         s.HourlyRate,
		TotalHours:         s.TotalHours,
		TotalWage:          s.TotalWage,
		FormattedRate:      FormatMoney(s.HourlyRate),
		FormattedTotalWage: FormatMoney(s.TotalWage),
		Status:             string(s.Status),
		Priority:           string(s.Priority),
		CreatedAt:          s.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:          s.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if s.Department != nil {
		resp.DepartmentName = s.Department.Name
	}
	if s.UserID != nil {
		resp.AssigneeID = *s.UserID
	}
	if s.Assignee != nil {
		resp.AssigneeName = s.Assignee.Name
	}
	if s.PublishedAt != nil {
		resp.PublishedAt = s.PublishedAt.Format("2006-01-02T15:04:05Z")
	}
	return resp
}

// ── 班次申请 DTO ──

// ApplyShiftRequest 员工申请班次请求
type ApplyShiftRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=500"`
}

// RejectApplicationRequest 拒绝申请请求
type RejectApplicationRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=500"`
}

// ApplicationResponse 班次申请响应
type ApplicationResponse struct {
	ID            string `json:"id"`
	ShiftID       string `json:"shift_id"`
	UserID        string `json:"user_id"`
	ApplicantName string `json:"applicant_name,omitempty"`
	Status        string `json:"status"`
	Notes         string `json:"notes,omitempty"`
	ReviewedAt    string `json:"reviewed_at,omitempty"`
	ReviewedBy    string `json:"reviewed_by,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// NewApplicationResponse 由模型构造申请响应
func NewApplicationResponse(a *model.ShiftApplication) ApplicationResponse {
	resp := ApplicationResponse{
		ID:        a.ApplicationID,
		ShiftID:   a.ShiftID,
		UserID:    a.UserID,
		Status:    string(a.Status),
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if a.Applicant != nil {
		resp.ApplicantName = a.Applicant.Name
	}
	if a.ReviewedAt != nil {
		resp.ReviewedAt = a.ReviewedAt.Format("2006-01-02T15:04:05Z")
	}
	if a.ReviewedBy != nil {
		resp.ReviewedBy = *a.ReviewedBy
	}
	return resp
}

// ── 班次评论 DTO ──

// CreateCommentRequest 发表评论请求
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}

// CommentResponse 评论响应
type CommentResponse struct {
	ID         string `json:"id"`
	ShiftID    string `json:"shift_id"`
	UserID     string `json:"user_id"`
	AuthorName string `json:"author_name,omitempty"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at"`
}
