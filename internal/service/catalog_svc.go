package service

import (
	"context"
	"fmt"

	"canvas_erp_v1/internal/api/dto"
	"canvas_erp_v1/internal/costing"
	"canvas_erp_v1/internal/model"
	"canvas_erp_v1/internal/repository"
)

// ==================== CatalogService 目录服务 ====================

// RateChangeListener 费率变更监听
// 费率写入成功后触发，用于失效缓存并安排受影响订单的批量重算
type RateChangeListener interface {
	RatesChanged()
}

// CatalogService 目录与费率维护服务
type CatalogService struct {
	catalogRepo repository.CatalogRepository
	listener    RateChangeListener
}

// NewCatalogService 创建目录服务
func NewCatalogService(catalogRepo repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalogRepo: catalogRepo}
}

// SetRateChangeListener 设置费率变更监听（可选注入）
func (s *CatalogService) SetRateChangeListener(l RateChangeListener) {
	s.listener = l
}

// ==================== 维度表 ====================

// CreateSize 创建尺寸
func (s *CatalogService) CreateSize(ctx context.Context, req *dto.CreateSizeRequest) (*model.CanvasSize, error) {
	size := &model.CanvasSize{
		Name:     req.Name,
		WidthCM:  req.WidthCM,
		HeightCM: req.HeightCM,
	}
	if err := s.catalogRepo.CreateSize(ctx, size); err != nil {
		return nil, fmt.Errorf("创建尺寸失败: %w", err)
	}
	return size, nil
}

// CreateFrame 创建画框
func (s *CatalogService) CreateFrame(ctx context.Context, req *dto.CreateFrameRequest) (*model.Frame, error) {
	frame := &model.Frame{
		Name:  req.Name,
		Color: req.Color,
	}
	if err := s.catalogRepo.CreateFrame(ctx, frame); err != nil {
		return nil, fmt.Errorf("创建画框失败: %w", err)
	}
	return frame, nil
}

// CreateCountry 创建目的国
func (s *CatalogService) CreateCountry(ctx context.Context, req *dto.CreateCountryRequest) (*model.Country, error) {
	country := &model.Country{
		ISOCode: req.ISOCode,
		Name:    req.Name,
	}
	if err := s.catalogRepo.CreateCountry(ctx, country); err != nil {
		return nil, fmt.Errorf("创建目的国失败: %w", err)
	}
	return country, nil
}

// ListSizes 尺寸列表
func (s *CatalogService) ListSizes(ctx context.Context) ([]model.CanvasSize, error) {
	return s.catalogRepo.ListSizes(ctx)
}

// ListFrames 画框列表
func (s *CatalogService) ListFrames(ctx context.Context) ([]model.Frame, error) {
	return s.catalogRepo.ListFrames(ctx)
}

// ListCountries 目的国列表
func (s *CatalogService) ListCountries(ctx context.Context) ([]model.Country, error) {
	return s.catalogRepo.ListCountries(ctx)
}

// ==================== 费率写入 ====================

// UpsertVariantRate 写入变体成本
func (s *CatalogService) UpsertVariantRate(ctx context.Context, req *dto.UpsertVariantRateRequest) error {
	cost, err := costing.AmountFromFloat(req.TotalCost)
	if err != nil || cost.IsNegative() {
		return fmt.Errorf("变体成本非法")
	}
	rate := &model.SizeFrameRate{
		SizeID:    req.SizeID,
		FrameID:   req.FrameID,
		TotalCost: cost,
	}
	if err := s.catalogRepo.UpsertVariantRate(ctx, rate); err != nil {
		return fmt.Errorf("写入变体成本失败: %w", err)
	}
	s.notifyRateChange()
	return nil
}

// UpsertBaseCost 写入尺寸底价
func (s *CatalogService) UpsertBaseCost(ctx context.Context, req *dto.UpsertBaseCostRequest) error {
	cost, err := costing.AmountFromFloat(req.BaseCost)
	if err != nil || cost.IsNegative() {
		return fmt.Errorf("尺寸底价非法")
	}
	base := &model.SizeBaseCost{
		SizeID:   req.SizeID,
		BaseCost: cost,
	}
	if err := s.catalogRepo.UpsertBaseCost(ctx, base); err != nil {
		return fmt.Errorf("写入尺寸底价失败: %w", err)
	}
	s.notifyRateChange()
	return nil
}

// UpsertShippingRate 写入运费
func (s *CatalogService) UpsertShippingRate(ctx context.Context, req *dto.UpsertShippingRateRequest) error {
	cost, err := costing.AmountFromFloat(req.Cost)
	if err != nil || cost.IsNegative() {
		return fmt.Errorf("运费非法")
	}
	rate := &model.ShippingRate{
		SizeID:    req.SizeID,
		CountryID: req.CountryID,
		Cost:      cost,
	}
	if err := s.catalogRepo.UpsertShippingRate(ctx, rate); err != nil {
		return fmt.Errorf("写入运费失败: %w", err)
	}
	s.notifyRateChange()
	return nil
}

func (s *CatalogService) notifyRateChange() {
	if s.listener != nil {
		s.listener.RatesChanged()
	}
}
