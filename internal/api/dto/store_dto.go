package dto

// ==================== 店铺 ====================

// CreateStoreRequest 创建店铺请求
type CreateStoreRequest struct {
	Name             string `json:"name" binding:"required"`
	CurrencyCode     string `json:"currency_code"`
	NotifyWebhookURL string `json:"notify_webhook_url"`
}

// UpdateStoreFeesRequest 更新店铺费率请求
// 三个费率必须整体提交，部分覆盖容易造成费率表半旧半新
type UpdateStoreFeesRequest struct {
	TransactionFeePercent float64 `json:"transaction_fee_percent"`
	PaymentFeePercent     float64 `json:"payment_fee_percent"`
	ListingFeeFlat        float64 `json:"listing_fee_flat"`
}

// StoreVO 店铺信息
type StoreVO struct {
	ID                    int64  `json:"id"`
	Name                  string `json:"name"`
	CurrencyCode          string `json:"currency_code"`
	Status                int    `json:"status"`
	HasCustomFees         bool   `json:"has_custom_fees"`
	TransactionFeePercent string `json:"transaction_fee_percent"`
	PaymentFeePercent     string `json:"payment_fee_percent"`
	ListingFeeFlat        string `json:"listing_fee_flat"`
	NotifyWebhookURL      string `json:"notify_webhook_url"`
}
