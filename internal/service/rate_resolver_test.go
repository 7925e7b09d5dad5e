package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"canvas_erp_v1/internal/costing"
	"canvas_erp_v1/internal/model"

	"github.com/shopspring/decimal"
)

// ==================== 仓库解析器 ====================

func TestRateResolver_MissingRateIsNotError(t *testing.T) {
	env := setupTestEnv(t)
	resolver := NewRateResolver(env.catalogRepo)
	ctx := context.Background()

	// 空库：三种费率都缺失，ok=false 且无错误
	if _, ok, err := resolver.VariantCost(ctx, 1, 2); ok || err != nil {
		t.Errorf("VariantCost 缺失: ok=%v err=%v, want false/nil", ok, err)
	}
	if _, ok, err := resolver.BaseCost(ctx, 1); ok || err != nil {
		t.Errorf("BaseCost 缺失: ok=%v err=%v, want false/nil", ok, err)
	}
	if _, ok, err := resolver.ShippingRate(ctx, 1, 2); ok || err != nil {
		t.Errorf("ShippingRate 缺失: ok=%v err=%v, want false/nil", ok, err)
	}
}

func TestRateResolver_ReturnsConfiguredRates(t *testing.T) {
	env := setupTestEnv(t)
	sizeID, frameID, countryID := seedCatalog(t, env)
	resolver := NewRateResolver(env.catalogRepo)
	ctx := context.Background()

	cost, ok, err := resolver.VariantCost(ctx, sizeID, frameID)
	if err != nil || !ok {
		t.Fatalf("VariantCost: ok=%v err=%v", ok, err)
	}
	if !cost.Equal(decimal.RequireFromString("7.25")) {
		t.Errorf("VariantCost = %s, want 7.25", cost)
	}

	rate, ok, err := resolver.ShippingRate(ctx, sizeID, countryID)
	if err != nil || !ok {
		t.Fatalf("ShippingRate: ok=%v err=%v", ok, err)
	}
	if !rate.Equal(decimal.RequireFromString("12.00")) {
		t.Errorf("ShippingRate = %s, want 12.00", rate)
	}
}

// ==================== 缓存解析器 ====================

// countingResolver 统计底层调用次数
type countingResolver struct {
	inner costing.RateResolver
	calls int64
}

func (c *countingResolver) VariantCost(ctx context.Context, sizeID, frameID int64) (decimal.Decimal, bool, error) {
	atomic.AddInt64(&c.calls, 1)
	return c.inner.VariantCost(ctx, sizeID, frameID)
}

func (c *countingResolver) BaseCost(ctx context.Context, sizeID int64) (decimal.Decimal, bool, error) {
	atomic.AddInt64(&c.calls, 1)
	return c.inner.BaseCost(ctx, sizeID)
}

func (c *countingResolver) ShippingRate(ctx context.Context, sizeID, countryID int64) (decimal.Decimal, bool, error) {
	atomic.AddInt64(&c.calls, 1)
	return c.inner.ShippingRate(ctx, sizeID, countryID)
}

func TestCachedRateResolver_HitsCacheOnRepeatLookups(t *testing.T) {
	env := setupTestEnv(t)
	sizeID, frameID, _ := seedCatalog(t, env)

	counting := &countingResolver{inner: NewRateResolver(env.catalogRepo)}
	cached := NewCachedRateResolver(counting, time.Minute)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		cost, ok, err := cached.VariantCost(ctx, sizeID, frameID)
		if err != nil || !ok {
			t.Fatalf("VariantCost: ok=%v err=%v", ok, err)
		}
		if !cost.Equal(decimal.RequireFromString("7.25")) {
			t.Errorf("VariantCost = %s, want 7.25", cost)
		}
	}

	if got := atomic.LoadInt64(&counting.calls); got != 1 {
		t.Errorf("底层查询次数 = %d, want 1", got)
	}
}

// ok=false 的缺失结果同样被负缓存
func TestCachedRateResolver_NegativeCaching(t *testing.T) {
	env := setupTestEnv(t)

	counting := &countingResolver{inner: NewRateResolver(env.catalogRepo)}
	cached := NewCachedRateResolver(counting, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, ok, err := cached.BaseCost(ctx, 42); ok || err != nil {
			t.Fatalf("BaseCost: ok=%v err=%v", ok, err)
		}
	}
	if got := atomic.LoadInt64(&counting.calls); got != 1 {
		t.Errorf("底层查询次数 = %d, want 1", got)
	}
}

func TestCachedRateResolver_InvalidateDropsEntries(t *testing.T) {
	env := setupTestEnv(t)
	sizeID, frameID, _ := seedCatalog(t, env)

	counting := &countingResolver{inner: NewRateResolver(env.catalogRepo)}
	cached := NewCachedRateResolver(counting, time.Minute)
	ctx := context.Background()

	if _, _, err := cached.VariantCost(ctx, sizeID, frameID); err != nil {
		t.Fatalf("VariantCost 失败: %v", err)
	}

	// 改价后失效缓存，下一次查询取到新价
	if err := env.catalogRepo.UpsertVariantRate(ctx, &model.SizeFrameRate{
		SizeID: sizeID, FrameID: frameID, TotalCost: decimal.RequireFromString("8.00"),
	}); err != nil {
		t.Fatalf("更新变体成本失败: %v", err)
	}
	cached.Invalidate()

	cost, _, err := cached.VariantCost(ctx, sizeID, frameID)
	if err != nil {
		t.Fatalf("VariantCost 失败: %v", err)
	}
	if !cost.Equal(decimal.RequireFromString("8.00")) {
		t.Errorf("失效后 VariantCost = %s, want 8.00", cost)
	}
	if got := atomic.LoadInt64(&counting.calls); got != 2 {
		t.Errorf("底层查询次数 = %d, want 2", got)
	}
}

// LatestRateChange 随费率写入推进
func TestCatalogRepository_LatestRateChange(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	before, err := env.catalogRepo.LatestRateChange(ctx)
	if err != nil {
		t.Fatalf("LatestRateChange 失败: %v", err)
	}
	if !before.IsZero() {
		t.Errorf("空库的变更时间应为零值，实际 %v", before)
	}

	seedCatalog(t, env)

	after, err := env.catalogRepo.LatestRateChange(ctx)
	if err != nil {
		t.Fatalf("LatestRateChange 失败: %v", err)
	}
	if after.IsZero() {
		t.Error("写入费率后变更时间不应为零值")
	}
}
