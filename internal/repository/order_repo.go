package repository

import (
	"context"
	"time"

	"canvas_erp_v1/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// OrderFilter 订单过滤条件
type OrderFilter struct {
	StoreID   int64
	Status    string
	Source    string
	CountryID int64
	StartDate *time.Time
	EndDate   *time.Time
	Keyword   string
	Page      int
	PageSize  int
}

// ==================== OrderRepository 订单仓库 ====================

// OrderRepository 订单仓库接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByIDWithItems(ctx context.Context, id int64) (*model.Order, error)
	GetByExternalReceiptID(ctx context.Context, storeID int64, receiptID string) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	Update(ctx context.Context, order *model.Order) error
	// UpdateWithItems 主表与订单行同事务写入，任一步失败整体回滚
	UpdateWithItems(ctx context.Context, order *model.Order, items []model.OrderItem, replaceItems bool) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error

	// 统计
	GetStats(ctx context.Context, storeID int64, startDate, endDate time.Time) (*OrderStats, error)

	// 批量重算：核算时间早于 since（或从未核算）的订单
	ListIDsNeedingRecost(ctx context.Context, since time.Time, limit int) ([]int64, error)
}

// OrderStats 订单利润统计
type OrderStats struct {
	TotalOrders    int64
	TotalSales     decimal.Decimal
	TotalCost      decimal.Decimal
	TotalProfit    decimal.Decimal
	PendingOrders  int64
	ShippedOrders  int64
	CanceledOrders int64
}

// ==================== 实现 ====================

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByIDWithItems(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByExternalReceiptID(ctx context.Context, storeID int64, receiptID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND external_receipt_id = ?", storeID, receiptID).
		Preload("Items").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Order{})

	// 应用过滤条件
	if filter.StoreID > 0 {
		db = db.Where("store_id = ?", filter.StoreID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		db = db.Where("source = ?", filter.Source)
	}
	if filter.CountryID > 0 {
		db = db.Where("country_id = ?", filter.CountryID)
	}
	if filter.StartDate != nil {
		db = db.Where("created_at >= ?", filter.StartDate)
	}
	if filter.EndDate != nil {
		db = db.Where("created_at <= ?", filter.EndDate)
	}
	if filter.Keyword != "" {
		keyword := "%" + filter.Keyword + "%"
		db = db.Where("buyer_name LIKE ? OR buyer_email LIKE ? OR external_receipt_id LIKE ?",
			keyword, keyword, keyword)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	err := db.
		Preload("Items").
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// UpdateWithItems 保存主表并整体替换订单行（先删后插）
// 核算结果与参与核算的订单行必须同时落库，订单行写入失败时主表回滚
func (r *orderRepository) UpdateWithItems(ctx context.Context, order *model.Order, items []model.OrderItem, replaceItems bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(order).Error; err != nil {
			return err
		}
		if !replaceItems {
			return nil
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].ID = 0
			items[i].OrderID = order.ID
		}
		return tx.CreateInBatches(items, 100).Error
	})
}

func (r *orderRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(fields).Error
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Order{}, id).Error
}

func (r *orderRepository) GetStats(ctx context.Context, storeID int64, startDate, endDate time.Time) (*OrderStats, error) {
	stats := &OrderStats{
		TotalSales:  decimal.Zero,
		TotalCost:   decimal.Zero,
		TotalProfit: decimal.Zero,
	}

	db := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("store_id = ?", storeID).
		Where("created_at BETWEEN ? AND ?", startDate, endDate)

	// 总量与金额合计
	var result struct {
		Count  int64
		Sales  decimal.Decimal
		Cost   decimal.Decimal
		Profit decimal.Decimal
	}
	err := db.Select(
		"COUNT(*) as count, " +
			"COALESCE(SUM(sale_price), 0) as sales, " +
			"COALESCE(SUM(total_cost), 0) as cost, " +
			"COALESCE(SUM(net_profit), 0) as profit").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}
	stats.TotalOrders = result.Count
	stats.TotalSales = result.Sales
	stats.TotalCost = result.Cost
	stats.TotalProfit = result.Profit

	// 各状态订单数
	type StatusCount struct {
		Status string
		Count  int64
	}
	var statusCounts []StatusCount
	err = r.db.WithContext(ctx).Model(&model.Order{}).
		Where("store_id = ?", storeID).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&statusCounts).Error
	if err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case model.OrderStatusPending:
			stats.PendingOrders = sc.Count
		case model.OrderStatusShipped:
			stats.ShippedOrders = sc.Count
		case model.OrderStatusCanceled:
			stats.CanceledOrders = sc.Count
		}
	}

	return stats, nil
}

func (r *orderRepository) ListIDsNeedingRecost(ctx context.Context, since time.Time, limit int) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("status <> ?", model.OrderStatusCanceled).
		Where("costed_at IS NULL OR costed_at < ?", since).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}
