package dto

// ==================== 目录维护 ====================

// CreateSizeRequest 创建尺寸请求
type CreateSizeRequest struct {
	Name     string `json:"name" binding:"required"`
	WidthCM  int    `json:"width_cm"`
	HeightCM int    `json:"height_cm"`
}

// CreateFrameRequest 创建画框请求
type CreateFrameRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

// CreateCountryRequest 创建目的国请求
type CreateCountryRequest struct {
	ISOCode string `json:"iso_code" binding:"required"`
	Name    string `json:"name"`
}

// UpsertVariantRateRequest 变体成本写入请求
type UpsertVariantRateRequest struct {
	SizeID    int64   `json:"size_id" binding:"required"`
	FrameID   int64   `json:"frame_id" binding:"required"`
	TotalCost float64 `json:"total_cost"`
}

// UpsertBaseCostRequest 尺寸底价写入请求
type UpsertBaseCostRequest struct {
	SizeID   int64   `json:"size_id" binding:"required"`
	BaseCost float64 `json:"base_cost"`
}

// UpsertShippingRateRequest 运费写入请求
type UpsertShippingRateRequest struct {
	SizeID    int64   `json:"size_id" binding:"required"`
	CountryID int64   `json:"country_id" binding:"required"`
	Cost      float64 `json:"cost"`
}
