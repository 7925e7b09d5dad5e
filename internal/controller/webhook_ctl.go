package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"canvas_erp_v1/internal/api/dto"
	"canvas_erp_v1/internal/costing"
	"canvas_erp_v1/internal/service"
)

// WebhookController 入站 webhook 控制器
type WebhookController struct {
	svc *service.WebhookService
}

// NewWebhookController 创建 webhook 控制器
func NewWebhookController(svc *service.WebhookService) *WebhookController {
	return &WebhookController{svc: svc}
}

// IngestOrder 接收平台订单事件
// POST /api/webhooks/orders
func (c *WebhookController) IngestOrder(ctx *gin.Context) {
	var event dto.WebhookOrderEvent
	if err := ctx.ShouldBindJSON(&event); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := c.svc.IngestOrder(ctx, &event)
	if err != nil {
		if errors.Is(err, costing.ErrInvalidInput) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": result})
}
