package router

import (
	"canvas_erp_v1/internal/controller"

	"github.com/gin-gonic/gin"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	orderCtl *controller.OrderController,
	webhookCtl *controller.WebhookController,
	catalogCtl *controller.CatalogController,
	storeCtl *controller.StoreController,
	notifCtl *controller.NotificationController) {
	// API 路由组
	api := r.Group("/api")
	{
		// order 订单管理
		orders := api.Group("/orders")
		{
			// GET /api/orders
			orders.GET("", orderCtl.List)
			orders.GET("/stats", orderCtl.GetStats)
			orders.GET("/:id", orderCtl.GetByID)
			orders.POST("", orderCtl.Create)
			orders.PUT("/:id", orderCtl.Update)
			orders.PATCH("/:id/status", orderCtl.UpdateStatus)
			// POST /api/orders/:id/recost
			orders.POST("/:id/recost", orderCtl.Recost)
		}

		// webhook 入站订单事件
		webhooks := api.Group("/webhooks")
		{
			webhooks.POST("/orders", webhookCtl.IngestOrder)
		}

		// catalog 目录与费率维护
		catalog := api.Group("/catalog")
		{
			catalog.GET("/sizes", catalogCtl.ListSizes)
			catalog.POST("/sizes", catalogCtl.CreateSize)
			catalog.GET("/frames", catalogCtl.ListFrames)
			catalog.POST("/frames", catalogCtl.CreateFrame)
			catalog.GET("/countries", catalogCtl.ListCountries)
			catalog.POST("/countries", catalogCtl.CreateCountry)

			// 费率写入成功后会触发缓存失效与批量重算
			catalog.PUT("/rates/variant", catalogCtl.UpsertVariantRate)
			catalog.PUT("/rates/base", catalogCtl.UpsertBaseCost)
			catalog.PUT("/rates/shipping", catalogCtl.UpsertShippingRate)
		}

		// store 店铺管理
		stores := api.Group("/stores")
		{
			stores.GET("", storeCtl.List)
			stores.GET("/:id", storeCtl.GetByID)
			stores.POST("", storeCtl.Create)
			stores.PUT("/:id/fees", storeCtl.UpdateFees)
		}

		// notification 站内通知
		notifications := api.Group("/notifications")
		{
			notifications.GET("", notifCtl.List)
			notifications.PATCH("/:id/read", notifCtl.MarkRead)
		}
	}
}
