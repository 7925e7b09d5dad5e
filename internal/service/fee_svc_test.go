package service

import (
	"context"
	"testing"

	"canvas_erp_v1/internal/model"

	"github.com/shopspring/decimal"
)

// ==================== 费率回退 ====================

func TestFeeService_DefaultsWhenNoCustomFees(t *testing.T) {
	env := setupTestEnv(t)
	storeID := seedStore(t, env)

	fees, err := env.feeSvc.GetFeeSchedule(context.Background(), storeID)
	if err != nil {
		t.Fatalf("获取费率失败: %v", err)
	}

	if !fees.TransactionFeePercent.Equal(decimal.NewFromFloat(6.5)) {
		t.Errorf("TransactionFeePercent = %s, want 6.5", fees.TransactionFeePercent)
	}
	if !fees.PaymentFeePercent.Equal(decimal.NewFromFloat(4.0)) {
		t.Errorf("PaymentFeePercent = %s, want 4", fees.PaymentFeePercent)
	}
	if !fees.ListingFeeFlat.Equal(decimal.NewFromFloat(0.20)) {
		t.Errorf("ListingFeeFlat = %s, want 0.20", fees.ListingFeeFlat)
	}
}

func TestFeeService_CustomFeesOverrideDefaults(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	store := &model.Store{
		Name:                  "自定义费率店铺",
		Status:                model.StoreStatusActive,
		HasCustomFees:         true,
		TransactionFeePercent: decimal.RequireFromString("5"),
		PaymentFeePercent:     decimal.RequireFromString("2.9"),
		ListingFeeFlat:        decimal.RequireFromString("0.30"),
	}
	if err := env.storeRepo.Create(ctx, store); err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}

	fees, err := env.feeSvc.GetFeeSchedule(ctx, store.ID)
	if err != nil {
		t.Fatalf("获取费率失败: %v", err)
	}
	if !fees.TransactionFeePercent.Equal(decimal.RequireFromString("5")) {
		t.Errorf("TransactionFeePercent = %s, want 5", fees.TransactionFeePercent)
	}
	if !fees.ListingFeeFlat.Equal(decimal.RequireFromString("0.30")) {
		t.Errorf("ListingFeeFlat = %s, want 0.30", fees.ListingFeeFlat)
	}
}

// 非法自定义费率在配置层拦截，不流入引擎
func TestFeeService_InvalidCustomFeesRejected(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	store := &model.Store{
		Name:                  "坏费率店铺",
		Status:                model.StoreStatusActive,
		HasCustomFees:         true,
		TransactionFeePercent: decimal.RequireFromString("150"),
	}
	if err := env.storeRepo.Create(ctx, store); err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}

	if _, err := env.feeSvc.GetFeeSchedule(ctx, store.ID); err == nil {
		t.Error("超界费率应报错")
	}
}

func TestFeeService_UnknownStore(t *testing.T) {
	env := setupTestEnv(t)
	if _, err := env.feeSvc.GetFeeSchedule(context.Background(), 9999); err == nil {
		t.Error("店铺不存在应报错")
	}
}
