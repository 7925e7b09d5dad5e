package model

import "github.com/shopspring/decimal"

// CanvasSize 画布尺寸
type CanvasSize struct {
	BaseModel
	Name      string `gorm:"size:50;uniqueIndex;not null"` // 如 "20x30"
	WidthCM   int    `gorm:"default:0"`
	HeightCM  int    `gorm:"default:0"`
	SortOrder int    `gorm:"default:0"`
}

// Frame 画框
type Frame struct {
	BaseModel
	Name  string `gorm:"size:50;uniqueIndex;not null"` // 如 "black"
	Color string `gorm:"size:20"`
}

// Country 目的国
type Country struct {
	BaseModel
	ISOCode string `gorm:"size:10;uniqueIndex;not null"`
	Name    string `gorm:"size:100"`
}

// SizeFrameRate 变体成本表
// 尺寸+画框组合的完整生产成本；行同时指定尺寸与画框时优先于 SizeBaseCost
type SizeFrameRate struct {
	BaseModel
	SizeID       int64           `gorm:"uniqueIndex:idx_size_frame;not null;comment:关联尺寸ID"`
	FrameID      int64           `gorm:"uniqueIndex:idx_size_frame;not null;comment:关联画框ID"`
	TotalCost    decimal.Decimal `gorm:"type:decimal(12,4);not null;comment:变体完整成本"`
	CurrencyCode string          `gorm:"size:10;default:USD"`
}

// SizeBaseCost 裸尺寸底价
// 仅用于指定了尺寸但未指定画框的无框商品
type SizeBaseCost struct {
	BaseModel
	SizeID       int64           `gorm:"uniqueIndex;not null;comment:关联尺寸ID"`
	BaseCost     decimal.Decimal `gorm:"type:decimal(12,4);not null;comment:尺寸底价"`
	CurrencyCode string          `gorm:"size:10;default:USD"`
}

// ShippingRate 运费表
// 尺寸+目的国，按件计价；缺行表示该组合运费按 0 兜底
type ShippingRate struct {
	BaseModel
	SizeID       int64           `gorm:"uniqueIndex:idx_size_country;not null;comment:关联尺寸ID"`
	CountryID    int64           `gorm:"uniqueIndex:idx_size_country;not null;comment:目的国ID"`
	Cost         decimal.Decimal `gorm:"type:decimal(12,4);not null;comment:单件运费"`
	CurrencyCode string          `gorm:"size:10;default:USD"`
}

func (CanvasSize) TableName() string {
	return "canvas_sizes"
}
func (Frame) TableName() string {
	return "frames"
}
func (Country) TableName() string {
	return "countries"
}
func (SizeFrameRate) TableName() string {
	return "size_frame_rates"
}
func (SizeBaseCost) TableName() string {
	return "size_base_costs"
}
func (ShippingRate) TableName() string {
	return "shipping_rates"
}
