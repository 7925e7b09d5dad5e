package model

import "github.com/shopspring/decimal"

// Store 店铺状态常量
const (
	StoreStatusActive   = 1 // 正常
	StoreStatusInactive = 2 // 已停用
)

// Store 店铺
type Store struct {
	BaseModel

	Name         string `gorm:"size:100;not null"`
	CurrencyCode string `gorm:"size:10;default:USD"`
	Status       int    `gorm:"default:1;comment:状态 1-正常 2-已停用"`

	// 费率配置
	// HasCustomFees=false 时三个费率列无效，由配置层的默认费率兜底
	HasCustomFees         bool            `gorm:"default:false"`
	TransactionFeePercent decimal.Decimal `gorm:"type:decimal(6,3);default:0;comment:交易费率(%)"`
	PaymentFeePercent     decimal.Decimal `gorm:"type:decimal(6,3);default:0;comment:支付费率(%)"`
	ListingFeeFlat        decimal.Decimal `gorm:"type:decimal(10,4);default:0;comment:每行上架固定费"`

	// 通知推送
	NotifyWebhookURL string `gorm:"size:500;comment:核算完成后推送地址，空表示不推送"`

	// 关联
	Orders []Order `gorm:"foreignKey:StoreID"`
}

func (Store) TableName() string {
	return "stores"
}
