package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"canvas_erp_v1/internal/controller"
	"canvas_erp_v1/internal/model"
	"canvas_erp_v1/internal/repository"
	"canvas_erp_v1/internal/router"
	"canvas_erp_v1/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 请求构造辅助 ====================

// setupAPI 组装一套 sqlite 后端的完整路由
func setupAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	err = db.AutoMigrate(
		&model.Store{},
		&model.CanvasSize{}, &model.Frame{}, &model.Country{},
		&model.SizeFrameRate{}, &model.SizeBaseCost{}, &model.ShippingRate{},
		&model.Order{}, &model.OrderItem{},
		&model.Notification{},
	)
	if err != nil {
		t.Fatalf("自动建表失败: %v", err)
	}

	storeRepo := repository.NewStoreRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	feeSvc := service.NewFeeService(storeRepo, service.FeeDefaults{
		TransactionFeePercent: 6.5,
		PaymentFeePercent:     4.0,
		ListingFeeFlat:        0.20,
	})
	resolver := service.NewRateResolver(catalogRepo)
	orderSvc := service.NewOrderService(orderRepo, feeSvc, resolver)
	webhookSvc := service.NewWebhookService(orderRepo, catalogRepo, orderSvc)
	catalogSvc := service.NewCatalogService(catalogRepo)
	storeSvc := service.NewStoreService(storeRepo)

	r := gin.New()
	router.InitRoutes(r,
		controller.NewOrderController(orderSvc),
		controller.NewWebhookController(webhookSvc),
		controller.NewCatalogController(catalogSvc),
		controller.NewStoreController(storeSvc),
		controller.NewNotificationController(notifRepo),
	)
	return r, db
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// seedViaDB 直接造店铺与目录数据
func seedViaDB(t *testing.T, db *gorm.DB) (storeID, sizeID, frameID, countryID int64) {
	ctx := context.Background()
	catalogRepo := repository.NewCatalogRepository(db)

	store := &model.Store{Name: "API 测试店铺", Status: model.StoreStatusActive}
	if err := db.Create(store).Error; err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}

	size := &model.CanvasSize{Name: "20x30"}
	frame := &model.Frame{Name: "black"}
	country := &model.Country{ISOCode: "US", Name: "United States"}
	for _, m := range []interface{}{size, frame, country} {
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("造目录数据失败: %v", err)
		}
	}

	if err := catalogRepo.UpsertVariantRate(ctx, &model.SizeFrameRate{
		SizeID: size.ID, FrameID: frame.ID, TotalCost: decimal.RequireFromString("7.25"),
	}); err != nil {
		t.Fatalf("写入变体成本失败: %v", err)
	}
	if err := catalogRepo.UpsertShippingRate(ctx, &model.ShippingRate{
		SizeID: size.ID, CountryID: country.ID, Cost: decimal.RequireFromString("12.00"),
	}); err != nil {
		t.Fatalf("写入运费失败: %v", err)
	}

	return store.ID, size.ID, frame.ID, country.ID
}

// ==================== 订单接口 ====================

func TestOrderAPI_CreateReturnsBreakdown(t *testing.T) {
	r, db := setupAPI(t)
	storeID, sizeID, frameID, countryID := seedViaDB(t, db)

	w := performRequest(r, "POST", "/api/orders", map[string]interface{}{
		"store_id":   storeID,
		"buyer_name": "Alice",
		"country_id": countryID,
		"sale_price": 49.99,
		"items": []map[string]interface{}{
			{"size_id": sizeID, "frame_id": frameID, "quantity": 1, "unit_price": 49.99},
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			ID        int64 `json:"id"`
			Breakdown struct {
				ProductCost     string `json:"product_cost"`
				ShippingCost    string `json:"shipping_cost"`
				MarketplaceFees string `json:"marketplace_fees"`
				TotalCost       string `json:"total_cost"`
				NetProfit       string `json:"net_profit"`
			} `json:"breakdown"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// 金额以数值比较，避免尾零表示差异
	assertAmount := func(got, want string) {
		t.Helper()
		assert.True(t, decimal.RequireFromString(got).Equal(decimal.RequireFromString(want)),
			"金额 %s != %s", got, want)
	}
	assertAmount(resp.Data.Breakdown.ProductCost, "7.25")
	assertAmount(resp.Data.Breakdown.ShippingCost, "12.00")
	assertAmount(resp.Data.Breakdown.MarketplaceFees, "5.44895")
	assertAmount(resp.Data.Breakdown.TotalCost, "24.69895")
	assertAmount(resp.Data.Breakdown.NetProfit, "25.29105")
}

func TestOrderAPI_CreateInvalidInput(t *testing.T) {
	r, db := setupAPI(t)
	storeID, _, _, _ := seedViaDB(t, db)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"缺少订单行", map[string]interface{}{"store_id": storeID, "sale_price": 10}},
		{"售价为负", map[string]interface{}{
			"store_id": storeID, "sale_price": -5,
			"items": []map[string]interface{}{{"quantity": 1}},
		}},
		{"数量为零", map[string]interface{}{
			"store_id": storeID, "sale_price": 10,
			"items": []map[string]interface{}{{"quantity": 0}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(r, "POST", "/api/orders", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestOrderAPI_GetByID(t *testing.T) {
	r, db := setupAPI(t)
	storeID, sizeID, frameID, countryID := seedViaDB(t, db)

	w := performRequest(r, "POST", "/api/orders", map[string]interface{}{
		"store_id":   storeID,
		"country_id": countryID,
		"sale_price": 49.99,
		"items": []map[string]interface{}{
			{"size_id": sizeID, "frame_id": frameID, "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var created struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = performRequest(r, "GET", fmt.Sprintf("/api/orders/%d", created.Data.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, "GET", "/api/orders/99999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(r, "GET", "/api/orders/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ==================== webhook 接口 ====================

func TestWebhookAPI_IngestIdempotent(t *testing.T) {
	r, db := setupAPI(t)
	storeID, _, _, _ := seedViaDB(t, db)

	event := map[string]interface{}{
		"receipt_id":  "RCPT-API-1",
		"store_id":    storeID,
		"country_iso": "US",
		"sale_price":  49.99,
		"items": []map[string]interface{}{
			{"size_name": "20x30", "frame_name": "black", "quantity": 1, "unit_price": 49.99},
		},
	}

	w := performRequest(r, "POST", "/api/webhooks/orders", event)
	assert.Equal(t, http.StatusOK, w.Code)

	var first struct {
		Data struct {
			OrderID int64 `json:"order_id"`
			Created bool  `json:"created"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.True(t, first.Data.Created)

	w = performRequest(r, "POST", "/api/webhooks/orders", event)
	assert.Equal(t, http.StatusOK, w.Code)

	var second struct {
		Data struct {
			OrderID int64 `json:"order_id"`
			Created bool  `json:"created"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.False(t, second.Data.Created)
	assert.Equal(t, first.Data.OrderID, second.Data.OrderID)
}

func TestWebhookAPI_MissingRequiredFields(t *testing.T) {
	r, _ := setupAPI(t)

	// 缺少 receipt_id / store_id / items
	w := performRequest(r, "POST", "/api/webhooks/orders", map[string]interface{}{
		"sale_price": 10,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ==================== 目录接口 ====================

func TestCatalogAPI_RateUpsert(t *testing.T) {
	r, db := setupAPI(t)
	_, sizeID, frameID, _ := seedViaDB(t, db)

	// 改价走同键覆盖
	w := performRequest(r, "PUT", "/api/catalog/rates/variant", map[string]interface{}{
		"size_id": sizeID, "frame_id": frameID, "total_cost": 8.50,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var rate model.SizeFrameRate
	assert.NoError(t, db.Where("size_id = ? AND frame_id = ?", sizeID, frameID).First(&rate).Error)
	assert.True(t, rate.TotalCost.Equal(decimal.RequireFromString("8.5")))

	// 负价拒绝
	w = performRequest(r, "PUT", "/api/catalog/rates/variant", map[string]interface{}{
		"size_id": sizeID, "frame_id": frameID, "total_cost": -1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ==================== 店铺接口 ====================

func TestStoreAPI_UpdateFees(t *testing.T) {
	r, db := setupAPI(t)
	storeID, _, _, _ := seedViaDB(t, db)

	w := performRequest(r, "PUT", fmt.Sprintf("/api/stores/%d/fees", storeID), map[string]interface{}{
		"transaction_fee_percent": 5.0,
		"payment_fee_percent":     2.9,
		"listing_fee_flat":        0.30,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var store model.Store
	assert.NoError(t, db.First(&store, storeID).Error)
	assert.True(t, store.HasCustomFees)
	assert.True(t, store.TransactionFeePercent.Equal(decimal.RequireFromString("5")))

	// 超界费率拒绝
	w = performRequest(r, "PUT", fmt.Sprintf("/api/stores/%d/fees", storeID), map[string]interface{}{
		"transaction_fee_percent": 150.0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
