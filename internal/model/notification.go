package model

import (
	"time"

	"gorm.io/datatypes"
)

// Notification 类型常量
const (
	NotificationTypeOrderCosted = "order_costed" // 订单完成核算
)

// Notification 站内通知
// DedupeKey 保证同一订单同一次核算只产生一条通知
type Notification struct {
	BaseModel

	EventID   string `gorm:"size:64;index;comment:事件ID"`
	DedupeKey string `gorm:"size:128;uniqueIndex;not null"`

	StoreID int64 `gorm:"index;not null"`
	OrderID int64 `gorm:"index;not null"`

	Type    string         `gorm:"size:32;not null"`
	Title   string         `gorm:"size:255"`
	Payload datatypes.JSON `gorm:"type:jsonb"`

	IsRead bool       `gorm:"default:false"`
	SentAt *time.Time `gorm:"comment:webhook推送成功时间"`
}

func (Notification) TableName() string {
	return "notifications"
}
