package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"canvas_erp_v1/internal/model"
	"canvas_erp_v1/internal/repository"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ==================== NotifyService 通知扇出 ====================

// NotifyService 订单核算完成后的通知扇出
// 两个通道：站内通知落库（按订单+核算时间去重），店铺配置了
// webhook 地址时再做一次 HTTP 推送
type NotifyService struct {
	notifRepo repository.NotificationRepository
	storeRepo repository.StoreRepository
	client    *resty.Client
}

// NewNotifyService 创建通知服务
func NewNotifyService(
	notifRepo repository.NotificationRepository,
	storeRepo repository.StoreRepository,
) *NotifyService {
	client := resty.New()
	client.SetTimeout(10 * time.Second)
	client.SetRetryCount(3)

	return &NotifyService{
		notifRepo: notifRepo,
		storeRepo: storeRepo,
		client:    client,
	}
}

// orderCostedPayload webhook 推送体
type orderCostedPayload struct {
	EventID             string `json:"event_id"`
	OrderID             int64  `json:"order_id"`
	StoreID             int64  `json:"store_id"`
	SalePrice           string `json:"sale_price"`
	ProductCost         string `json:"product_cost"`
	ShippingCost        string `json:"shipping_cost"`
	MarketplaceFees     string `json:"marketplace_fees"`
	TotalCost           string `json:"total_cost"`
	NetProfit           string `json:"net_profit"`
	ProfitMarginPercent string `json:"profit_margin_percent"`
	MissingRateCount    int    `json:"missing_rate_count"`
}

// OrderCosted 订单完成核算后的扇出入口
func (s *NotifyService) OrderCosted(ctx context.Context, order *model.Order) error {
	if order.CostedAt == nil {
		return nil
	}

	store, err := s.storeRepo.GetByID(ctx, order.StoreID)
	if err != nil {
		return fmt.Errorf("获取店铺信息失败: %w", err)
	}

	payload := orderCostedPayload{
		EventID:             uuid.NewString(),
		OrderID:             order.ID,
		StoreID:             order.StoreID,
		SalePrice:           order.SalePrice.StringFixed(2),
		ProductCost:         order.ProductCost.String(),
		ShippingCost:        order.ShippingCost.String(),
		MarketplaceFees:     order.MarketplaceFees.String(),
		TotalCost:           order.TotalCost.String(),
		NetProfit:           order.NetProfit.String(),
		ProfitMarginPercent: order.ProfitMarginPercent.String(),
		MissingRateCount:    order.MissingRateCount,
	}
	raw, _ := json.Marshal(payload)

	// 站内通知：同一订单同一次核算只产生一条
	n := &model.Notification{
		EventID:   payload.EventID,
		DedupeKey: fmt.Sprintf("order_costed:%d:%d", order.ID, order.CostedAt.UnixNano()),
		StoreID:   order.StoreID,
		OrderID:   order.ID,
		Type:      model.NotificationTypeOrderCosted,
		Title:     fmt.Sprintf("订单 #%d 核算完成，净利润 %s", order.ID, order.NetProfit.StringFixed(2)),
		Payload:   datatypes.JSON(raw),
	}
	created, err := s.notifRepo.Create(ctx, n)
	if err != nil {
		return fmt.Errorf("写入通知失败: %w", err)
	}
	if !created {
		return nil // 重复事件，不再推送
	}

	// webhook 推送
	if store.NotifyWebhookURL == "" {
		return nil
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(store.NotifyWebhookURL)
	if err != nil {
		log.Printf("[NotifyService] 订单 %d 推送失败: %v", order.ID, err)
		return nil // 推送失败不回滚站内通知
	}
	if resp.StatusCode() >= 400 {
		log.Printf("[NotifyService] 订单 %d 推送被拒绝 (状态码 %d)", order.ID, resp.StatusCode())
		return nil
	}

	now := time.Now()
	if err := s.notifRepo.MarkSent(ctx, n.ID, now); err != nil {
		log.Printf("[NotifyService] 标记推送时间失败: %v", err)
	}
	return nil
}
