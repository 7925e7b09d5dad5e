package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"canvas_erp_v1/internal/api/dto"
	"canvas_erp_v1/internal/service"
)

// CatalogController 目录与费率控制器
type CatalogController struct {
	svc *service.CatalogService
}

// NewCatalogController 创建目录控制器
func NewCatalogController(svc *service.CatalogService) *CatalogController {
	return &CatalogController{svc: svc}
}

// ==================== 维度表 ====================

// CreateSize 创建尺寸
// POST /api/catalog/sizes
func (c *CatalogController) CreateSize(ctx *gin.Context) {
	var req dto.CreateSizeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	size, err := c.svc.CreateSize(ctx, &req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": size})
}

// ListSizes 尺寸列表
// GET /api/catalog/sizes
func (c *CatalogController) ListSizes(ctx *gin.Context) {
	sizes, err := c.svc.ListSizes(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": sizes})
}

// CreateFrame 创建画框
// POST /api/catalog/frames
func (c *CatalogController) CreateFrame(ctx *gin.Context) {
	var req dto.CreateFrameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	frame, err := c.svc.CreateFrame(ctx, &req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": frame})
}

// ListFrames 画框列表
// GET /api/catalog/frames
func (c *CatalogController) ListFrames(ctx *gin.Context) {
	frames, err := c.svc.ListFrames(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": frames})
}

// CreateCountry 创建目的国
// POST /api/catalog/countries
func (c *CatalogController) CreateCountry(ctx *gin.Context) {
	var req dto.CreateCountryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	country, err := c.svc.CreateCountry(ctx, &req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": country})
}

// ListCountries 目的国列表
// GET /api/catalog/countries
func (c *CatalogController) ListCountries(ctx *gin.Context) {
	countries, err := c.svc.ListCountries(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": countries})
}

// ==================== 费率维护 ====================

// UpsertVariantRate 写入变体成本
// PUT /api/catalog/rates/variant
func (c *CatalogController) UpsertVariantRate(ctx *gin.Context) {
	var req dto.UpsertVariantRateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := c.svc.UpsertVariantRate(ctx, &req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "变体成本已更新"})
}

// UpsertBaseCost 写入尺寸底价
// PUT /api/catalog/rates/base
func (c *CatalogController) UpsertBaseCost(ctx *gin.Context) {
	var req dto.UpsertBaseCostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := c.svc.UpsertBaseCost(ctx, &req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "尺寸底价已更新"})
}

// UpsertShippingRate 写入运费
// PUT /api/catalog/rates/shipping
func (c *CatalogController) UpsertShippingRate(ctx *gin.Context) {
	var req dto.UpsertShippingRateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := c.svc.UpsertShippingRate(ctx, &req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "运费已更新"})
}
