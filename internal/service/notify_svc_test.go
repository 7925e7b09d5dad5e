package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"canvas_erp_v1/internal/model"
	"canvas_erp_v1/internal/repository"

	"github.com/shopspring/decimal"
)

// ==================== 通知扇出 ====================

func costedOrder(storeID int64) *model.Order {
	now := time.Now()
	return &model.Order{
		ID:        1,
		StoreID:   storeID,
		SalePrice: decimal.RequireFromString("49.99"),
		NetProfit: decimal.RequireFromString("25.29"),
		CostedAt:  &now,
	}
}

func TestNotifyService_OrderCosted_PushesWebhook(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := &model.Store{Name: "推送店铺", Status: model.StoreStatusActive, NotifyWebhookURL: server.URL}
	if err := env.storeRepo.Create(ctx, store); err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}

	notifRepo := repository.NewNotificationRepository(env.db)
	svc := NewNotifyService(notifRepo, env.storeRepo)

	order := costedOrder(store.ID)
	if err := svc.OrderCosted(ctx, order); err != nil {
		t.Fatalf("通知扇出失败: %v", err)
	}

	if got := atomic.LoadInt64(&hits); got != 1 {
		t.Errorf("webhook 推送次数 = %d, want 1", got)
	}

	list, err := notifRepo.ListByStore(ctx, store.ID, false, 10)
	if err != nil {
		t.Fatalf("查询通知失败: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("通知条数 = %d, want 1", len(list))
	}
	if list[0].SentAt == nil {
		t.Error("推送成功后 SentAt 应写入")
	}
}

// 同一次核算重复扇出只产生一条通知、一次推送
func TestNotifyService_OrderCosted_Dedupe(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := &model.Store{Name: "去重店铺", Status: model.StoreStatusActive, NotifyWebhookURL: server.URL}
	if err := env.storeRepo.Create(ctx, store); err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}

	notifRepo := repository.NewNotificationRepository(env.db)
	svc := NewNotifyService(notifRepo, env.storeRepo)

	order := costedOrder(store.ID)
	for i := 0; i < 3; i++ {
		if err := svc.OrderCosted(ctx, order); err != nil {
			t.Fatalf("第 %d 次扇出失败: %v", i+1, err)
		}
	}

	if got := atomic.LoadInt64(&hits); got != 1 {
		t.Errorf("webhook 推送次数 = %d, want 1", got)
	}
	list, _ := notifRepo.ListByStore(ctx, store.ID, false, 10)
	if len(list) != 1 {
		t.Errorf("通知条数 = %d, want 1", len(list))
	}
}

// 未配置推送地址时只落站内通知
func TestNotifyService_OrderCosted_NoWebhookURL(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	store := &model.Store{Name: "无推送店铺", Status: model.StoreStatusActive}
	if err := env.storeRepo.Create(ctx, store); err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}

	notifRepo := repository.NewNotificationRepository(env.db)
	svc := NewNotifyService(notifRepo, env.storeRepo)

	if err := svc.OrderCosted(ctx, costedOrder(store.ID)); err != nil {
		t.Fatalf("通知扇出失败: %v", err)
	}

	list, _ := notifRepo.ListByStore(ctx, store.ID, false, 10)
	if len(list) != 1 {
		t.Fatalf("通知条数 = %d, want 1", len(list))
	}
	if list[0].SentAt != nil {
		t.Error("未推送时 SentAt 应为空")
	}
}

// 未核算的订单不产生通知
func TestNotifyService_OrderCosted_SkipsUncosted(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	storeID := seedStore(t, env)

	notifRepo := repository.NewNotificationRepository(env.db)
	svc := NewNotifyService(notifRepo, env.storeRepo)

	order := &model.Order{ID: 7, StoreID: storeID}
	if err := svc.OrderCosted(ctx, order); err != nil {
		t.Fatalf("未核算订单扇出失败: %v", err)
	}

	list, _ := notifRepo.ListByStore(ctx, storeID, false, 10)
	if len(list) != 0 {
		t.Errorf("通知条数 = %d, want 0", len(list))
	}
}
