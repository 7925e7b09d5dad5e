package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 店铺与目录各表的公共字段
// 费率表走软删除保留历史；订单两张表不嵌入，自带审计字段且不允许软删
type BaseModel struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
