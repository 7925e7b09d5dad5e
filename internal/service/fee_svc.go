package service

import (
	"context"
	"fmt"

	"canvas_erp_v1/internal/costing"
	"canvas_erp_v1/internal/repository"

	"github.com/shopspring/decimal"
)

// ==================== FeeService 费率提供方 ====================

// FeeDefaults 部署级默认费率
// 店铺未配置自定义费率时兜底；默认值只存在于配置层，永远不进入引擎
type FeeDefaults struct {
	TransactionFeePercent float64
	PaymentFeePercent     float64
	ListingFeeFlat        float64
}

// FeeService 店铺费率服务
type FeeService struct {
	storeRepo repository.StoreRepository
	defaults  costing.FeeSchedule
}

// NewFeeService 创建费率服务
func NewFeeService(storeRepo repository.StoreRepository, defaults FeeDefaults) *FeeService {
	return &FeeService{
		storeRepo: storeRepo,
		defaults: costing.FeeSchedule{
			TransactionFeePercent: decimal.NewFromFloat(defaults.TransactionFeePercent),
			PaymentFeePercent:     decimal.NewFromFloat(defaults.PaymentFeePercent),
			ListingFeeFlat:        decimal.NewFromFloat(defaults.ListingFeeFlat),
		},
	}
}

// GetFeeSchedule 获取店铺费率表
// 店铺配置了自定义费率用自定义，否则回退到部署默认；返回前做范围校验，
// 非法费率在这里拦截，不会流入引擎
func (s *FeeService) GetFeeSchedule(ctx context.Context, storeID int64) (costing.FeeSchedule, error) {
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return costing.FeeSchedule{}, fmt.Errorf("店铺不存在: %w", err)
	}

	fees := s.defaults
	if store.HasCustomFees {
		fees = costing.FeeSchedule{
			TransactionFeePercent: store.TransactionFeePercent,
			PaymentFeePercent:     store.PaymentFeePercent,
			ListingFeeFlat:        store.ListingFeeFlat,
		}
	}

	if err := fees.Validate(); err != nil {
		return costing.FeeSchedule{}, fmt.Errorf("店铺 %d 费率配置非法: %w", storeID, err)
	}
	return fees, nil
}
