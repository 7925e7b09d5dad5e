package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"canvas_erp_v1/internal/api/dto"
	"canvas_erp_v1/internal/model"
	"canvas_erp_v1/internal/repository"

	"gorm.io/gorm"
)

// ==================== WebhookService 入站订单接入 ====================

// WebhookService 处理平台推送的订单事件
// 接入层只做名称到目录 ID 的解析和幂等判断，核算本身完全复用
// OrderService 的创建/更新路径，保证与交互式入口逐位一致
type WebhookService struct {
	orderRepo   repository.OrderRepository
	catalogRepo repository.CatalogRepository
	orderSvc    *OrderService
}

// NewWebhookService 创建 webhook 服务
func NewWebhookService(
	orderRepo repository.OrderRepository,
	catalogRepo repository.CatalogRepository,
	orderSvc *OrderService,
) *WebhookService {
	return &WebhookService{
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		orderSvc:    orderSvc,
	}
}

// IngestOrder 处理入站订单事件
// 按 (店铺, 收据号) 幂等：已存在走更新路径，否则走创建路径
func (s *WebhookService) IngestOrder(ctx context.Context, event *dto.WebhookOrderEvent) (*dto.WebhookIngestResult, error) {
	if event.ReceiptID == "" {
		return nil, fmt.Errorf("缺少收据号")
	}

	countryID, err := s.resolveCountry(ctx, event.CountryISO)
	if err != nil {
		return nil, err
	}

	items, err := s.resolveItems(ctx, event.Items)
	if err != nil {
		return nil, err
	}

	existing, err := s.orderRepo.GetByExternalReceiptID(ctx, event.StoreID, event.ReceiptID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}

	if existing == nil {
		raw, _ := json.Marshal(event)
		order, err := s.orderSvc.CreateOrder(ctx, &dto.CreateOrderRequest{
			StoreID:           event.StoreID,
			BuyerName:         event.BuyerName,
			BuyerEmail:        event.BuyerEmail,
			CountryID:         countryID,
			SalePrice:         event.SalePrice,
			Items:             items,
			ShippingAddress:   event.ShippingAddress,
			ExternalReceiptID: event.ReceiptID,
			Source:            model.OrderSourceWebhook,
			RawPayload:        raw,
		})
		if err != nil {
			return nil, err
		}
		return &dto.WebhookIngestResult{OrderID: order.ID, Created: true, Status: order.Status}, nil
	}

	// 更新路径：整包字段交给 UpdateOrder 的变更检测决定是否重算
	order, err := s.orderSvc.UpdateOrder(ctx, existing.ID, &dto.UpdateOrderRequest{
		BuyerName:       &event.BuyerName,
		BuyerEmail:      &event.BuyerEmail,
		CountryID:       &countryID,
		SalePrice:       &event.SalePrice,
		Items:           &items,
		ShippingAddress: event.ShippingAddress,
	})
	if err != nil {
		return nil, err
	}
	return &dto.WebhookIngestResult{OrderID: order.ID, Created: false, Status: order.Status}, nil
}

// ==================== 名称解析 ====================

// resolveCountry 目的国 ISO 码解析为目录 ID，空/未知按 0（整单运费兜底为 0）
func (s *WebhookService) resolveCountry(ctx context.Context, isoCode string) (int64, error) {
	if isoCode == "" {
		return 0, nil
	}
	country, err := s.catalogRepo.GetCountryByISO(ctx, isoCode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[WebhookService] 未知目的国 %s，运费按 0 处理", isoCode)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("查询目的国失败: %w", err)
	}
	return country.ID, nil
}

// resolveItems 将名称形式的订单行解析为目录 ID 形式
// 尺寸/画框名称查不到时按未指定处理（产品成本走 0 兜底），不阻断接单
func (s *WebhookService) resolveItems(ctx context.Context, items []dto.WebhookOrderItem) ([]dto.OrderItemInput, error) {
	out := make([]dto.OrderItemInput, len(items))
	for i, item := range items {
		input := dto.OrderItemInput{
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Description: item.Description,
		}

		if item.SizeName != "" {
			size, err := s.catalogRepo.GetSizeByName(ctx, item.SizeName)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("查询尺寸失败: %w", err)
			}
			if size != nil {
				input.SizeID = size.ID
			} else {
				log.Printf("[WebhookService] 未知尺寸 %q，该行产品成本按 0 处理", item.SizeName)
			}
		}

		if item.FrameName != "" {
			frame, err := s.catalogRepo.GetFrameByName(ctx, item.FrameName)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("查询画框失败: %w", err)
			}
			if frame != nil {
				input.FrameID = frame.ID
			}
		}

		out[i] = input
	}
	return out, nil
}
