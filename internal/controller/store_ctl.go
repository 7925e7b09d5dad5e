package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"canvas_erp_v1/internal/api/dto"
	"canvas_erp_v1/internal/model"
	"canvas_erp_v1/internal/repository"
	"canvas_erp_v1/internal/service"
)

// StoreController 店铺控制器
type StoreController struct {
	svc *service.StoreService
}

// NewStoreController 创建店铺控制器
func NewStoreController(svc *service.StoreService) *StoreController {
	return &StoreController{svc: svc}
}

// Create 创建店铺
// POST /api/stores
func (c *StoreController) Create(ctx *gin.Context) {
	var req dto.CreateStoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	store, err := c.svc.CreateStore(ctx, &req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": buildStoreVO(store)})
}

// GetByID 获取店铺
// GET /api/stores/:id
func (c *StoreController) GetByID(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID"})
		return
	}
	store, err := c.svc.GetStore(ctx, id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "店铺不存在"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": buildStoreVO(store)})
}

// List 店铺列表
// GET /api/stores
func (c *StoreController) List(ctx *gin.Context) {
	var filter repository.StoreFilter
	filter.Status, _ = strconv.Atoi(ctx.Query("status"))
	filter.Keyword = ctx.Query("keyword")
	filter.Page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(ctx.DefaultQuery("page_size", "20"))

	stores, total, err := c.svc.ListStores(ctx, filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	list := make([]dto.StoreVO, len(stores))
	for i := range stores {
		list[i] = *buildStoreVO(&stores[i])
	}
	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"total": total, "list": list}})
}

// UpdateFees 更新店铺自定义费率
// PUT /api/stores/:id/fees
func (c *StoreController) UpdateFees(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID"})
		return
	}

	var req dto.UpdateStoreFeesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.svc.UpdateStoreFees(ctx, id, &req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "店铺费率已更新"})
}

// buildStoreVO 店铺模型转响应
func buildStoreVO(store *model.Store) *dto.StoreVO {
	return &dto.StoreVO{
		ID:                    store.ID,
		Name:                  store.Name,
		CurrencyCode:          store.CurrencyCode,
		Status:                store.Status,
		HasCustomFees:         store.HasCustomFees,
		TransactionFeePercent: store.TransactionFeePercent.String(),
		PaymentFeePercent:     store.PaymentFeePercent.String(),
		ListingFeeFlat:        store.ListingFeeFlat.String(),
		NotifyWebhookURL:      store.NotifyWebhookURL,
	}
}
