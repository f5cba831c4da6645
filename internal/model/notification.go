package model

// ── 通知类型 ──

const (
	NotificationTypeApplicationApproved = "application_approved"
	NotificationTypeApplicationRejected = "application_rejected"
	NotificationTypeShiftCancelled      = "shift_cancelled"
)

// Notification 通知消息表 — 对应 notifications
// 审批产生的通知在审批事务内写入（outbox），投递由外部 worker 异步完成，
// 投递通道不可用不影响状态变更本身
type Notification struct {
	NotificationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string  `gorm:"type:uuid;not null"                             json:"user_id"`
	Type           string  `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string  `gorm:"type:text;not null"                             json:"content"`
	IsRead         bool    `gorm:"not null;default:false"                         json:"is_read"`
	RelatedType    *string `gorm:"type:varchar(20)"                               json:"related_type,omitempty"` // shift | shift_application
	RelatedID      *string `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// [自证通过] internal/model/notification.go
