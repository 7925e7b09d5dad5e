package service

import (
	"context"
	"fmt"

	"canvas_erp_v1/internal/api/dto"
	"canvas_erp_v1/internal/costing"
	"canvas_erp_v1/internal/model"
	"canvas_erp_v1/internal/repository"

	"github.com/shopspring/decimal"
)

// ==================== StoreService 店铺服务 ====================

// StoreService 店铺服务
type StoreService struct {
	storeRepo repository.StoreRepository
}

// NewStoreService 创建店铺服务
func NewStoreService(storeRepo repository.StoreRepository) *StoreService {
	return &StoreService{storeRepo: storeRepo}
}

// CreateStore 创建店铺
func (s *StoreService) CreateStore(ctx context.Context, req *dto.CreateStoreRequest) (*model.Store, error) {
	currency := req.CurrencyCode
	if currency == "" {
		currency = "USD"
	}
	store := &model.Store{
		Name:             req.Name,
		CurrencyCode:     currency,
		Status:           model.StoreStatusActive,
		NotifyWebhookURL: req.NotifyWebhookURL,
	}
	if err := s.storeRepo.Create(ctx, store); err != nil {
		return nil, fmt.Errorf("创建店铺失败: %w", err)
	}
	return store, nil
}

// GetStore 获取店铺
func (s *StoreService) GetStore(ctx context.Context, id int64) (*model.Store, error) {
	store, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("店铺不存在")
	}
	return store, nil
}

// ListStores 店铺列表
func (s *StoreService) ListStores(ctx context.Context, filter repository.StoreFilter) ([]model.Store, int64, error) {
	return s.storeRepo.List(ctx, filter)
}

// UpdateStoreFees 更新店铺自定义费率
// 三个费率整体覆盖并立即生效；范围校验复用引擎的费率校验，
// 保证存进去的配置一定能通过核算
func (s *StoreService) UpdateStoreFees(ctx context.Context, storeID int64, req *dto.UpdateStoreFeesRequest) error {
	fees := costing.FeeSchedule{
		TransactionFeePercent: decimal.NewFromFloat(req.TransactionFeePercent),
		PaymentFeePercent:     decimal.NewFromFloat(req.PaymentFeePercent),
		ListingFeeFlat:        decimal.NewFromFloat(req.ListingFeeFlat),
	}
	if err := fees.Validate(); err != nil {
		return err
	}

	return s.storeRepo.UpdateFields(ctx, storeID, map[string]interface{}{
		"has_custom_fees":         true,
		"transaction_fee_percent": fees.TransactionFeePercent,
		"payment_fee_percent":     fees.PaymentFeePercent,
		"listing_fee_flat":        fees.ListingFeeFlat,
	})
}
