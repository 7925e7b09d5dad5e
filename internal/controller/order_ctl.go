package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"canvas_erp_v1/internal/api/dto"
	"canvas_erp_v1/internal/costing"
	"canvas_erp_v1/internal/model"
	"canvas_erp_v1/internal/repository"
	"canvas_erp_v1/internal/service"
)

// OrderController 订单控制器
type OrderController struct {
	svc *service.OrderService
}

// NewOrderController 创建订单控制器
func NewOrderController(svc *service.OrderService) *OrderController {
	return &OrderController{svc: svc}
}

// ==================== 订单创建与更新 ====================

// Create 创建订单
// POST /api/orders
func (c *OrderController) Create(ctx *gin.Context) {
	var req dto.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := c.svc.CreateOrder(ctx, &req)
	if err != nil {
		if errors.Is(err, costing.ErrInvalidInput) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": buildOrderVO(order)})
}

// Update 更新订单
// PUT /api/orders/:id
func (c *OrderController) Update(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID"})
		return
	}

	var req dto.UpdateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := c.svc.UpdateOrder(ctx, id, &req)
	if err != nil {
		if errors.Is(err, costing.ErrInvalidInput) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": buildOrderVO(order)})
}

// UpdateStatus 更新订单状态
// PATCH /api/orders/:id/status
func (c *OrderController) UpdateStatus(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID"})
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.svc.UpdateOrderStatus(ctx, id, req.Status); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "状态已更新"})
}

// ==================== 订单查询 ====================

// GetByID 获取订单详情
// GET /api/orders/:id
func (c *OrderController) GetByID(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID"})
		return
	}

	order, err := c.svc.GetOrderDetail(ctx, id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "订单不存在"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": buildOrderVO(order)})
}

// List 订单列表
// GET /api/orders
func (c *OrderController) List(ctx *gin.Context) {
	var req dto.ListOrdersRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := repository.OrderFilter{
		StoreID:  req.StoreID,
		Status:   req.Status,
		Source:   req.Source,
		Keyword:  req.Keyword,
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	if req.StartDate != "" {
		if t, err := time.Parse("2006-01-02", req.StartDate); err == nil {
			filter.StartDate = &t
		}
	}
	if req.EndDate != "" {
		if t, err := time.Parse("2006-01-02", req.EndDate); err == nil {
			endOfDay := t.Add(24*time.Hour - time.Second)
			filter.EndDate = &endOfDay
		}
	}

	orders, total, err := c.svc.ListOrders(ctx, filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	list := make([]dto.OrderListItem, len(orders))
	for i, o := range orders {
		list[i] = dto.OrderListItem{
			ID:            o.ID,
			StoreID:       o.StoreID,
			Source:        o.Source,
			BuyerName:     o.BuyerName,
			Status:        o.Status,
			CountryID:     o.CountryID,
			ItemCount:     len(o.Items),
			SalePrice:     o.SalePrice.StringFixed(2),
			NetProfit:     o.NetProfit.StringFixed(2),
			MarginPercent: o.ProfitMarginPercent.StringFixed(2),
			CreatedAt:     o.CreatedAt,
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": dto.ListOrdersResponse{
			Total: total,
			List:  list,
		},
	})
}

// GetStats 获取订单利润统计
// GET /api/orders/stats
func (c *OrderController) GetStats(ctx *gin.Context) {
	var req dto.OrderStatsRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := c.svc.GetOrderStats(ctx, &req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": stats})
}

// ==================== 手动重算 ====================

// Recost 手动重算单个订单
// POST /api/orders/:id/recost
func (c *OrderController) Recost(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID"})
		return
	}

	if err := c.svc.RecostOrder(ctx, id); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "重算完成"})
}

// ==================== 响应构建 ====================

// buildOrderVO 订单模型转响应
func buildOrderVO(order *model.Order) *dto.OrderVO {
	vo := &dto.OrderVO{
		ID:                order.ID,
		StoreID:           order.StoreID,
		ExternalReceiptID: order.ExternalReceiptID,
		Source:            order.Source,
		BuyerName:         order.BuyerName,
		BuyerEmail:        order.BuyerEmail,
		Status:            order.Status,
		CountryID:         order.CountryID,
		SalePrice:         order.SalePrice.StringFixed(2),
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}

	if order.ShippingAddress != nil {
		vo.ShippingAddress = order.ShippingAddress
	}

	if order.IsCosted() {
		vo.Breakdown = &dto.CostBreakdownVO{
			ProductCost:         order.ProductCost.String(),
			ShippingCost:        order.ShippingCost.String(),
			MarketplaceFees:     order.MarketplaceFees.String(),
			TotalCost:           order.TotalCost.String(),
			NetProfit:           order.NetProfit.String(),
			ProfitMarginPercent: order.ProfitMarginPercent.String(),
			MissingRateCount:    order.MissingRateCount,
			CostedAt:            order.CostedAt,
		}
	}

	vo.Items = make([]dto.OrderItemVO, len(order.Items))
	for i, item := range order.Items {
		vo.Items[i] = dto.OrderItemVO{
			ID:          item.ID,
			SizeID:      item.SizeID,
			FrameID:     item.FrameID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Description: item.Description,
		}
	}

	return vo
}
