package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"canvas_erp_v1/internal/api/dto"
	"canvas_erp_v1/internal/costing"
	"canvas_erp_v1/internal/model"
	"canvas_erp_v1/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var hundredPercent = decimal.NewFromInt(100)

// ==================== 依赖接口 ====================

// Notifier 通知扇出接口
// 订单完成核算落库后触发；通知失败只记日志，不影响订单主流程
type Notifier interface {
	OrderCosted(ctx context.Context, order *model.Order) error
}

// ==================== OrderService ====================

// OrderService 订单服务
// 创建、更新、webhook 接入三个入口全部经由 recalculate 走同一个核算引擎，
// 保证任何入口算出的结果逐位一致
type OrderService struct {
	orderRepo repository.OrderRepository
	feeSvc    *FeeService
	resolver  costing.RateResolver
	notifier  Notifier
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	feeSvc *FeeService,
	resolver costing.RateResolver,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		feeSvc:    feeSvc,
		resolver:  resolver,
	}
}

// SetNotifier 设置通知服务（可选注入）
func (s *OrderService) SetNotifier(n Notifier) {
	s.notifier = n
}

// ==================== 订单创建 ====================

// CreateOrder 创建订单并核算成本
func (s *OrderService) CreateOrder(ctx context.Context, req *dto.CreateOrderRequest) (*model.Order, error) {
	salePrice, err := costing.AmountFromFloat(req.SalePrice)
	if err != nil {
		return nil, fmt.Errorf("售价非法: %w", err)
	}

	items, err := buildOrderItems(req.Items)
	if err != nil {
		return nil, err
	}

	source := req.Source
	if source == "" {
		source = model.OrderSourceManual
	}

	order := &model.Order{
		StoreID:           req.StoreID,
		ExternalReceiptID: req.ExternalReceiptID,
		Source:            source,
		BuyerName:         req.BuyerName,
		BuyerEmail:        req.BuyerEmail,
		Status:            model.OrderStatusPending,
		CountryID:         req.CountryID,
		SalePrice:         salePrice,
	}
	if req.ShippingAddress != nil {
		order.ShippingAddress = datatypes.JSONMap(req.ShippingAddress)
	}
	if len(req.RawPayload) > 0 {
		order.RawPayload = datatypes.JSON(req.RawPayload)
	}

	// 核算（失败则整单不落库）
	if err := s.recalculate(ctx, order, items, s.resolver); err != nil {
		return nil, err
	}

	order.Items = items
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("保存订单失败: %w", err)
	}

	s.fanOut(ctx, order)
	return order, nil
}

// ==================== 订单更新 ====================

// UpdateOrder 更新订单
// 当且仅当订单行、目的国或售价发生变化时才重新核算；
// 其余字段变更保留原核算结果不动，引擎绝不被投机调用
func (s *OrderService) UpdateOrder(ctx context.Context, orderID int64, req *dto.UpdateOrderRequest) (*model.Order, error) {
	order, err := s.orderRepo.GetByIDWithItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("订单不存在")
	}

	// 基础字段
	if req.BuyerName != nil {
		order.BuyerName = *req.BuyerName
	}
	if req.BuyerEmail != nil {
		order.BuyerEmail = *req.BuyerEmail
	}
	if req.ShippingAddress != nil {
		order.ShippingAddress = datatypes.JSONMap(req.ShippingAddress)
	}

	// 变更检测
	countryChanged := false
	if req.CountryID != nil && *req.CountryID != order.CountryID {
		order.CountryID = *req.CountryID
		countryChanged = true
	}

	salePriceChanged := false
	if req.SalePrice != nil {
		newPrice, err := costing.AmountFromFloat(*req.SalePrice)
		if err != nil {
			return nil, fmt.Errorf("售价非法: %w", err)
		}
		if !newPrice.Equal(order.SalePrice) {
			order.SalePrice = newPrice
			salePriceChanged = true
		}
	}

	itemsChanged := false
	items := order.Items // 本次变更不含订单行时，用已持久化的订单行参与核算
	if req.Items != nil {
		newItems, err := buildOrderItems(*req.Items)
		if err != nil {
			return nil, err
		}
		if !orderItemsEqual(order.Items, newItems) {
			items = newItems
			itemsChanged = true
		}
	}

	recompute := itemsChanged || countryChanged || salePriceChanged
	if recompute {
		if err := s.recalculate(ctx, order, items, s.resolver); err != nil {
			return nil, err
		}
	}

	// 主表与订单行同事务落库（置空关联，避免 Save 级联触碰）
	order.Items = nil
	if err := s.orderRepo.UpdateWithItems(ctx, order, items, itemsChanged); err != nil {
		return nil, fmt.Errorf("保存订单失败: %w", err)
	}
	order.Items = items

	if recompute {
		s.fanOut(ctx, order)
	}
	return order, nil
}

// UpdateOrderStatus 更新订单状态
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("订单不存在")
	}

	if status == model.OrderStatusCanceled && !order.CanCancel() {
		return fmt.Errorf("订单状态不允许取消")
	}

	return s.orderRepo.UpdateStatus(ctx, orderID, status)
}

// ==================== 重算 ====================

// RecostOrder 重新核算单个订单（费率表变更后使用）
func (s *OrderService) RecostOrder(ctx context.Context, orderID int64) error {
	return s.RecostOrderWith(ctx, orderID, s.resolver)
}

// RecostOrderWith 用指定解析器重算订单
// 批量任务传入带缓存的解析器；每个订单的计算彼此独立，可并发调用
func (s *OrderService) RecostOrderWith(ctx context.Context, orderID int64, resolver costing.RateResolver) error {
	order, err := s.orderRepo.GetByIDWithItems(ctx, orderID)
	if err != nil {
		return fmt.Errorf("订单不存在")
	}

	if err := s.recalculate(ctx, order, order.Items, resolver); err != nil {
		return err
	}

	return s.orderRepo.UpdateFields(ctx, order.ID, map[string]interface{}{
		"product_cost":          order.ProductCost,
		"shipping_cost":         order.ShippingCost,
		"marketplace_fees":      order.MarketplaceFees,
		"total_cost":            order.TotalCost,
		"net_profit":            order.NetProfit,
		"profit_margin_percent": order.ProfitMarginPercent,
		"missing_rate_count":    order.MissingRateCount,
		"costed_at":             order.CostedAt,
	})
}

// recalculate 组装输入并调用核算引擎，把结果整体写回订单字段
// 所有入口共用的唯一核算路径
func (s *OrderService) recalculate(ctx context.Context, order *model.Order, items []model.OrderItem, resolver costing.RateResolver) error {
	fees, err := s.feeSvc.GetFeeSchedule(ctx, order.StoreID)
	if err != nil {
		return err
	}

	in := &costing.Input{
		SalePrice: order.SalePrice,
		Items:     make([]costing.LineItem, len(items)),
		Fees:      fees,
		CountryID: order.CountryID,
	}
	for i := range items {
		in.Items[i] = costing.LineItem{
			SizeID:    items[i].SizeID,
			FrameID:   items[i].FrameID,
			Quantity:  items[i].Quantity,
			UnitPrice: items[i].UnitPrice,
		}
	}

	bd, err := costing.ComputeCosts(ctx, in, resolver)
	if err != nil {
		return fmt.Errorf("成本核算失败: %w", err)
	}

	if bd.MissingRates > 0 {
		log.Printf("[OrderService] 订单 %d 有 %d 条费率缺失，已按 0 兜底（利润可能被高估）",
			order.ID, bd.MissingRates)
	}

	now := time.Now()
	order.ProductCost = bd.ProductCost
	order.ShippingCost = bd.ShippingCost
	order.MarketplaceFees = bd.MarketplaceFees
	order.TotalCost = bd.TotalCost
	order.NetProfit = bd.NetProfit
	order.ProfitMarginPercent = bd.ProfitMarginPercent
	order.MissingRateCount = bd.MissingRates
	order.CostedAt = &now
	return nil
}

// ==================== 查询 ====================

// GetOrderDetail 获取订单详情（含订单行）
func (s *OrderService) GetOrderDetail(ctx context.Context, orderID int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByIDWithItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("订单不存在")
	}
	return order, nil
}

// ListOrders 获取订单列表
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	return s.orderRepo.List(ctx, filter)
}

// GetOrderStats 获取订单利润统计
func (s *OrderService) GetOrderStats(ctx context.Context, req *dto.OrderStatsRequest) (*dto.OrderStatsResponse, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("起始日期格式错误")
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("结束日期格式错误")
	}
	endDate = endDate.Add(24*time.Hour - time.Second)

	stats, err := s.orderRepo.GetStats(ctx, req.StoreID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	avgMargin := "0"
	if stats.TotalSales.IsPositive() {
		avgMargin = stats.TotalProfit.Div(stats.TotalSales).Mul(hundredPercent).StringFixed(2)
	}

	return &dto.OrderStatsResponse{
		TotalOrders:    stats.TotalOrders,
		TotalSales:     stats.TotalSales.StringFixed(2),
		TotalCost:      stats.TotalCost.StringFixed(2),
		TotalProfit:    stats.TotalProfit.StringFixed(2),
		AvgMargin:      avgMargin,
		PendingOrders:  stats.PendingOrders,
		ShippedOrders:  stats.ShippedOrders,
		CanceledOrders: stats.CanceledOrders,
		Currency:       "USD",
	}, nil
}

// ==================== 辅助方法 ====================

// fanOut 核算完成后的通知扇出，失败只记日志
func (s *OrderService) fanOut(ctx context.Context, order *model.Order) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.OrderCosted(ctx, order); err != nil {
		log.Printf("[OrderService] 订单 %d 通知扇出失败: %v", order.ID, err)
	}
}

// buildOrderItems 转换订单行输入
func buildOrderItems(inputs []dto.OrderItemInput) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, len(inputs))
	for i, in := range inputs {
		price, err := costing.AmountFromFloat(in.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行申报单价非法: %w", i+1, err)
		}
		items[i] = model.OrderItem{
			SizeID:      in.SizeID,
			FrameID:     in.FrameID,
			Quantity:    in.Quantity,
			UnitPrice:   price,
			Description: in.Description,
		}
	}
	return items, nil
}

// orderItemsEqual 逐行比较订单行是否一致（顺序敏感）
func orderItemsEqual(a, b []model.OrderItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].SizeID != b[i].SizeID ||
			a[i].FrameID != b[i].FrameID ||
			a[i].Quantity != b[i].Quantity ||
			!a[i].UnitPrice.Equal(b[i].UnitPrice) ||
			a[i].Description != b[i].Description {
			return false
		}
	}
	return true
}
