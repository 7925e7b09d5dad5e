package repository

import (
	"context"
	"time"

	"canvas_erp_v1/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ==================== NotificationRepository 通知仓库 ====================

// NotificationRepository 通知仓库接口
type NotificationRepository interface {
	// Create 按 DedupeKey 幂等插入，重复键返回 created=false
	Create(ctx context.Context, n *model.Notification) (created bool, err error)
	ListByStore(ctx context.Context, storeID int64, unreadOnly bool, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, id int64) error
	MarkSent(ctx context.Context, id int64, at time.Time) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓库
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedupe_key"}},
		DoNothing: true,
	}).Create(n)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *notificationRepository) ListByStore(ctx context.Context, storeID int64, unreadOnly bool, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	db := r.db.WithContext(ctx).Where("store_id = ?", storeID)
	if unreadOnly {
		db = db.Where("is_read = ?", false)
	}
	var list []model.Notification
	err := db.Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).Update("is_read", true).Error
}

func (r *notificationRepository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).Update("sent_at", at).Error
}
