package dto

// ==================== 入站订单 webhook ====================

// WebhookOrderItem webhook 订单行
// 尺寸/画框/目的国以名称传入，接入层负责解析为目录 ID
type WebhookOrderItem struct {
	SizeName    string  `json:"size_name"`
	FrameName   string  `json:"frame_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Description string  `json:"description"`
}

// WebhookOrderEvent 入站订单事件
type WebhookOrderEvent struct {
	ReceiptID  string             `json:"receipt_id" binding:"required"`
	StoreID    int64              `json:"store_id" binding:"required"`
	BuyerName  string             `json:"buyer_name"`
	BuyerEmail string             `json:"buyer_email"`
	CountryISO string             `json:"country_iso"`
	SalePrice  float64            `json:"sale_price"`
	Items      []WebhookOrderItem `json:"items" binding:"required"`

	ShippingAddress map[string]interface{} `json:"shipping_address"`
}

// WebhookIngestResult 接入结果
type WebhookIngestResult struct {
	OrderID int64  `json:"order_id"`
	Created bool   `json:"created"`
	Status  string `json:"status"`
}
