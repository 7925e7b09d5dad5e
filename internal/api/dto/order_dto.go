package dto

import "time"

// ==================== 请求 ====================

// OrderItemInput 订单行输入
// SizeID/FrameID 为 0 表示未指定；无尺寸的行只记录描述与申报价
type OrderItemInput struct {
	SizeID      int64   `json:"size_id"`
	FrameID     int64   `json:"frame_id"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Description string  `json:"description"`
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	StoreID         int64                  `json:"store_id" binding:"required"`
	BuyerName       string                 `json:"buyer_name"`
	BuyerEmail      string                 `json:"buyer_email"`
	CountryID       int64                  `json:"country_id"`
	SalePrice       float64                `json:"sale_price"`
	Items           []OrderItemInput       `json:"items" binding:"required"`
	ShippingAddress map[string]interface{} `json:"shipping_address"`

	// webhook 接入层填写，接口调用方不传
	ExternalReceiptID string `json:"-"`
	Source            string `json:"-"`
	RawPayload        []byte `json:"-"`
}

// UpdateOrderRequest 更新订单请求
// 指针字段为 nil 表示本次不修改；Items 为 nil 表示订单行不在本次变更内
type UpdateOrderRequest struct {
	BuyerName       *string                `json:"buyer_name"`
	BuyerEmail      *string                `json:"buyer_email"`
	CountryID       *int64                 `json:"country_id"`
	SalePrice       *float64               `json:"sale_price"`
	Items           *[]OrderItemInput      `json:"items"`
	ShippingAddress map[string]interface{} `json:"shipping_address"`
}

// UpdateOrderStatusRequest 更新订单状态请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListOrdersRequest 订单列表请求
type ListOrdersRequest struct {
	StoreID   int64  `form:"store_id"`
	Status    string `form:"status"`
	Source    string `form:"source"`
	Keyword   string `form:"keyword"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

// OrderStatsRequest 订单统计请求
type OrderStatsRequest struct {
	StoreID   int64  `form:"store_id" binding:"required"`
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date" binding:"required"`
}

// ==================== 响应 ====================

// CostBreakdownVO 成本核算结果
type CostBreakdownVO struct {
	ProductCost         string     `json:"product_cost"`
	ShippingCost        string     `json:"shipping_cost"`
	MarketplaceFees     string     `json:"marketplace_fees"`
	TotalCost           string     `json:"total_cost"`
	NetProfit           string     `json:"net_profit"`
	ProfitMarginPercent string     `json:"profit_margin_percent"`
	MissingRateCount    int        `json:"missing_rate_count"`
	CostedAt            *time.Time `json:"costed_at"`
}

// OrderItemVO 订单项
type OrderItemVO struct {
	ID          int64  `json:"id"`
	SizeID      int64  `json:"size_id"`
	FrameID     int64  `json:"frame_id"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Description string `json:"description"`
}

// OrderVO 订单详情
type OrderVO struct {
	ID                int64                  `json:"id"`
	StoreID           int64                  `json:"store_id"`
	ExternalReceiptID string                 `json:"external_receipt_id,omitempty"`
	Source            string                 `json:"source"`
	BuyerName         string                 `json:"buyer_name"`
	BuyerEmail        string                 `json:"buyer_email"`
	Status            string                 `json:"status"`
	CountryID         int64                  `json:"country_id"`
	SalePrice         string                 `json:"sale_price"`
	ShippingAddress   map[string]interface{} `json:"shipping_address,omitempty"`
	Breakdown         *CostBreakdownVO       `json:"breakdown,omitempty"`
	Items             []OrderItemVO          `json:"items"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// OrderListItem 订单列表项
type OrderListItem struct {
	ID            int64     `json:"id"`
	StoreID       int64     `json:"store_id"`
	Source        string    `json:"source"`
	BuyerName     string    `json:"buyer_name"`
	Status        string    `json:"status"`
	CountryID     int64     `json:"country_id"`
	ItemCount     int       `json:"item_count"`
	SalePrice     string    `json:"sale_price"`
	NetProfit     string    `json:"net_profit"`
	MarginPercent string    `json:"margin_percent"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListOrdersResponse 订单列表响应
type ListOrdersResponse struct {
	Total int64           `json:"total"`
	List  []OrderListItem `json:"list"`
}

// OrderStatsResponse 订单统计响应
type OrderStatsResponse struct {
	TotalOrders    int64  `json:"total_orders"`
	TotalSales     string `json:"total_sales"`
	TotalCost      string `json:"total_cost"`
	TotalProfit    string `json:"total_profit"`
	AvgMargin      string `json:"avg_margin_percent"`
	PendingOrders  int64  `json:"pending_orders"`
	ShippedOrders  int64  `json:"shipped_orders"`
	CanceledOrders int64  `json:"canceled_orders"`
	Currency       string `json:"currency"`
}
