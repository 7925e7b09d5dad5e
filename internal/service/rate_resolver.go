package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"canvas_erp_v1/internal/costing"
	"canvas_erp_v1/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ==================== 仓库解析器 ====================

// dbRateResolver 基于目录仓库的费率解析实现
// 记录不存在映射为"费率缺失"（ok=false），真实数据库错误原样上抛
type dbRateResolver struct {
	catalogRepo repository.CatalogRepository
}

// NewRateResolver 创建费率解析器
func NewRateResolver(catalogRepo repository.CatalogRepository) costing.RateResolver {
	return &dbRateResolver{catalogRepo: catalogRepo}
}

func (r *dbRateResolver) VariantCost(ctx context.Context, sizeID, frameID int64) (decimal.Decimal, bool, error) {
	rate, err := r.catalogRepo.GetVariantRate(ctx, sizeID, frameID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return rate.TotalCost, true, nil
}

func (r *dbRateResolver) BaseCost(ctx context.Context, sizeID int64) (decimal.Decimal, bool, error) {
	cost, err := r.catalogRepo.GetBaseCost(ctx, sizeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return cost.BaseCost, true, nil
}

func (r *dbRateResolver) ShippingRate(ctx context.Context, sizeID, countryID int64) (decimal.Decimal, bool, error) {
	rate, err := r.catalogRepo.GetShippingRate(ctx, sizeID, countryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return rate.Cost, true, nil
}

// ==================== 带缓存的解析器 ====================

// cachedRate 缓存条目，ok=false 的负缓存同样有效
type cachedRate struct {
	amount     decimal.Decimal
	ok         bool
	expiration int64
}

// CachedRateResolver 带 TTL 缓存的费率解析器
// 批量重算时同一费率会被成百上千个订单命中，避免反复查库
type CachedRateResolver struct {
	inner costing.RateResolver
	ttl   time.Duration
	cache sync.Map
}

// NewCachedRateResolver 创建缓存解析器
func NewCachedRateResolver(inner costing.RateResolver, ttl time.Duration) *CachedRateResolver {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedRateResolver{inner: inner, ttl: ttl}
}

func (c *CachedRateResolver) lookup(key string, fetch func() (decimal.Decimal, bool, error)) (decimal.Decimal, bool, error) {
	if val, found := c.cache.Load(key); found {
		item := val.(cachedRate)
		if time.Now().UnixNano() < item.expiration {
			return item.amount, item.ok, nil
		}
		c.cache.Delete(key) // 懒删除
	}

	amount, ok, err := fetch()
	if err != nil {
		return decimal.Zero, false, err
	}
	c.cache.Store(key, cachedRate{
		amount:     amount,
		ok:         ok,
		expiration: time.Now().Add(c.ttl).UnixNano(),
	})
	return amount, ok, nil
}

func (c *CachedRateResolver) VariantCost(ctx context.Context, sizeID, frameID int64) (decimal.Decimal, bool, error) {
	key := fmt.Sprintf("v:%d:%d", sizeID, frameID)
	return c.lookup(key, func() (decimal.Decimal, bool, error) {
		return c.inner.VariantCost(ctx, sizeID, frameID)
	})
}

func (c *CachedRateResolver) BaseCost(ctx context.Context, sizeID int64) (decimal.Decimal, bool, error) {
	key := fmt.Sprintf("b:%d", sizeID)
	return c.lookup(key, func() (decimal.Decimal, bool, error) {
		return c.inner.BaseCost(ctx, sizeID)
	})
}

func (c *CachedRateResolver) ShippingRate(ctx context.Context, sizeID, countryID int64) (decimal.Decimal, bool, error) {
	key := fmt.Sprintf("s:%d:%d", sizeID, countryID)
	return c.lookup(key, func() (decimal.Decimal, bool, error) {
		return c.inner.ShippingRate(ctx, sizeID, countryID)
	})
}

// Invalidate 清空缓存（费率表变更后调用）
func (c *CachedRateResolver) Invalidate() {
	c.cache.Range(func(key, _ interface{}) bool {
		c.cache.Delete(key)
		return true
	})
}
