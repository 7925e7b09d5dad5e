package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ==================== 订单状态常量 ====================

// OrderStatus 订单状态
const (
	OrderStatusPending    = "pending"    // 待处理
	OrderStatusProcessing = "processing" // 处理中
	OrderStatusShipped    = "shipped"    // 已发货
	OrderStatusCanceled   = "canceled"   // 已取消
)

// OrderSource 订单来源
const (
	OrderSourceManual  = "manual"  // 后台手工创建
	OrderSourceWebhook = "webhook" // 平台 webhook 推送
)

// ==================== Order 订单主表 ====================

// Order 订单
type Order struct {
	ID      int64 `gorm:"primaryKey;autoIncrement"`
	StoreID int64 `gorm:"index;not null"`

	// webhook 幂等键：平台侧收据号，手工单为空
	ExternalReceiptID string `gorm:"size:64;index"`
	Source            string `gorm:"size:16;default:manual"`

	// 买家信息
	BuyerName  string `gorm:"size:255"`
	BuyerEmail string `gorm:"size:255"`

	Status string `gorm:"size:32;index;default:pending"`

	// 目的国（0 表示未知，整单运费按 0 计）
	CountryID int64 `gorm:"index;default:0"`

	// 收货地址（PostgreSQL JSONB）
	ShippingAddress datatypes.JSONMap `gorm:"type:jsonb"`

	// 售价
	SalePrice decimal.Decimal `gorm:"type:decimal(12,2);default:0"`

	// 成本核算结果（每次相关变更整体重算写入，绝不增量修补单个字段）
	ProductCost         decimal.Decimal `gorm:"type:decimal(14,4);default:0"`
	ShippingCost        decimal.Decimal `gorm:"type:decimal(14,4);default:0"`
	MarketplaceFees     decimal.Decimal `gorm:"type:decimal(14,4);default:0"`
	TotalCost           decimal.Decimal `gorm:"type:decimal(14,4);default:0"`
	NetProfit           decimal.Decimal `gorm:"type:decimal(14,4);default:0"`
	ProfitMarginPercent decimal.Decimal `gorm:"type:decimal(8,4);default:0"`
	MissingRateCount    int             `gorm:"default:0;comment:上次核算中按0兜底的缺失费率条数"`
	CostedAt            *time.Time      `gorm:"comment:上次核算时间"`

	// webhook 原始数据（PostgreSQL JSONB）
	RawPayload datatypes.JSON `gorm:"type:jsonb"`

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time

	// 关联
	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string {
	return "orders"
}

// IsCosted 是否已有核算结果
func (o *Order) IsCosted() bool {
	return o.CostedAt != nil
}

// GetShippingAddressField 获取收货地址字段
func (o *Order) GetShippingAddressField(key string) string {
	if o.ShippingAddress == nil {
		return ""
	}
	if v, ok := o.ShippingAddress[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// CanCancel 检查是否可以取消
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusProcessing
}

// ==================== OrderItem 订单项 ====================

// OrderItem 订单项
// SizeID 为 0 表示自由描述商品（不参与产品成本与运费核算）
type OrderItem struct {
	ID      int64 `gorm:"primaryKey;autoIncrement"`
	OrderID int64 `gorm:"index;not null"`

	SizeID  int64 `gorm:"index;default:0"`
	FrameID int64 `gorm:"default:0"`

	Quantity    int             `gorm:"default:1"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);default:0;comment:申报单价"`
	Description string          `gorm:"size:500"`

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (OrderItem) TableName() string {
	return "order_items"
}
