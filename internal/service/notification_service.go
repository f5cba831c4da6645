package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sahil0902/shiftssc2-sub000/internal/dto"
	"github.com/sahil0902/shiftssc2-sub000/internal/model"
	"github.com/sahil0902/shiftssc2-sub000/internal/repository"
)

// ── 通知模块业务错误 ──

var ErrNotificationNotFound = errors.New("通知不存在")

// NotificationService 通知业务接口（收件人视角）
type NotificationService interface {
	List(ctx context.Context, actor model.Actor, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error)
	MarkRead(ctx context.Context, actor model.Actor, notificationID string) error
	MarkAllRead(ctx context.Context, actor model.Actor) error
	CountUnread(ctx context.Context, actor model.Actor) (int64, error)
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) List(ctx context.Context, actor model.Actor, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	offset := (req.Page - 1) * req.PageSize
	notifs, total, err := s.repo.Notification.ListByUser(ctx, actor.UserID, req.UnreadOnly, offset, req.PageSize)
	if err != nil {
		return nil, 0, err
	}

	resps := make([]dto.NotificationResponse, 0, len(notifs))
	for i := range notifs {
		n := &notifs[i]
		resp := dto.NotificationResponse{
			ID:        n.NotificationID,
			Type:      n.Type,
			Title:     n.Title,
			Content:   n.Content,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if n.RelatedType != nil {
			resp.RelatedType = *n.RelatedType
		}
		if n.RelatedID != nil {
			resp.RelatedID = *n.RelatedID
		}
		resps = append(resps, resp)
	}
	return resps, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor model.Actor, notificationID string) error {
	err := s.repo.Notification.MarkRead(ctx, actor.UserID, notificationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor model.Actor) error {
	return s.repo.Notification.MarkAllRead(ctx, actor.UserID)
}

func (s *notificationService) CountUnread(ctx context.Context, actor model.Actor) (int64, error) {
	return s.repo.Notification.CountUnread(ctx, actor.UserID)
}
