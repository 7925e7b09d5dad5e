package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"canvas_erp_v1/internal/repository"
)

// NotificationController 站内通知控制器
type NotificationController struct {
	notifRepo repository.NotificationRepository
}

// NewNotificationController 创建通知控制器
func NewNotificationController(notifRepo repository.NotificationRepository) *NotificationController {
	return &NotificationController{notifRepo: notifRepo}
}

// List 通知列表
// GET /api/notifications?store_id=1&unread_only=true
func (c *NotificationController) List(ctx *gin.Context) {
	storeID, err := strconv.ParseInt(ctx.Query("store_id"), 10, 64)
	if err != nil || storeID <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少店铺ID"})
		return
	}
	unreadOnly := ctx.Query("unread_only") == "true"
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))

	list, err := c.notifRepo.ListByStore(ctx, storeID, unreadOnly, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": list})
}

// MarkRead 标记通知已读
// PATCH /api/notifications/:id/read
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的ID"})
		return
	}
	if err := c.notifRepo.MarkRead(ctx, id); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "已标记为已读"})
}
