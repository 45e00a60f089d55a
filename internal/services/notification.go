package services

import (
	"context"

	"brotodesk/internal/models"

	"gorm.io/gorm"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 100
)

type MarkReadInput struct {
	NotificationIDs []string `json:"notificationIds"`
}

type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unreadCount"`
}

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// ListMine returns the caller's newest notifications, at most 100. UnreadCount
// covers the whole inbox, not just the returned page.
func (s *NotificationService) ListMine(ctx context.Context, actor Actor, limit int) (*NotificationList, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	db := s.db.WithContext(ctx)

	notifications := []models.Notification{}
	err := db.Where("user_id = ?", actor.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, Internal(err)
	}

	var unread int64
	if err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", actor.ID, false).
		Count(&unread).Error; err != nil {
		return nil, Internal(err)
	}

	return &NotificationList{Notifications: notifications, UnreadCount: unread}, nil
}

// MarkRead flags the given notifications as read. Ids owned by other users
// are ignored.
func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, in MarkReadInput) (int64, error) {
	if len(in.NotificationIDs) == 0 {
		return 0, nil
	}

	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id IN ? AND user_id = ?", in.NotificationIDs, actor.ID).
		Update("is_read", true)
	if result.Error != nil {
		return 0, Internal(result.Error)
	}
	return result.RowsAffected, nil
}
