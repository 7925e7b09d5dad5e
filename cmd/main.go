package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"canvas_erp_v1/internal/controller"
	"canvas_erp_v1/internal/model"
	"canvas_erp_v1/internal/repository"
	"canvas_erp_v1/internal/router"
	"canvas_erp_v1/internal/service"
	"canvas_erp_v1/internal/task"
	"canvas_erp_v1/pkg/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	initTasks(deps)
	defer deps.RecostTask.Stop()

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r,
		deps.Controllers.Order,
		deps.Controllers.Webhook,
		deps.Controllers.Catalog,
		deps.Controllers.Store,
		deps.Controllers.Notification,
	)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
	RecostTask  *task.RecostTask
}

// Repositories 仓库集合
type Repositories struct {
	Store        repository.StoreRepository
	Catalog      repository.CatalogRepository
	Order        repository.OrderRepository
	Notification repository.NotificationRepository
}

// Services 服务集合
type Services struct {
	Fee     *service.FeeService
	Order   *service.OrderService
	Webhook *service.WebhookService
	Catalog *service.CatalogService
	Store   *service.StoreService
	Notify  *service.NotifyService
}

// Controllers 控制器集合
type Controllers struct {
	Order        *controller.OrderController
	Webhook      *controller.WebhookController
	Catalog      *controller.CatalogController
	Store        *controller.StoreController
	Notification *controller.NotificationController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=postgres password=postgres dbname=canvas_erp port=5432 sslmode=disable")
	return database.InitDB(dsn,
		// Store
		&model.Store{},
		// Catalog
		&model.CanvasSize{}, &model.Frame{}, &model.Country{},
		// Rates
		&model.SizeFrameRate{}, &model.SizeBaseCost{}, &model.ShippingRate{},
		// Order
		&model.Order{}, &model.OrderItem{},
		// Notification
		&model.Notification{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := initRepositories(db)

	// -------- 费率解析 --------
	resolver := service.NewRateResolver(repos.Catalog)
	cachedResolver := service.NewCachedRateResolver(resolver, getEnvDuration("RATE_CACHE_TTL", 5*time.Minute))

	// -------- 业务服务 --------
	feeSvc := service.NewFeeService(repos.Store, service.FeeDefaults{
		TransactionFeePercent: getEnvFloat("FEE_TRANSACTION_PERCENT", 6.5),
		PaymentFeePercent:     getEnvFloat("FEE_PAYMENT_PERCENT", 4.0),
		ListingFeeFlat:        getEnvFloat("FEE_LISTING_FLAT", 0.2),
	})

	orderSvc := service.NewOrderService(repos.Order, feeSvc, resolver)

	notifySvc := service.NewNotifyService(repos.Notification, repos.Store)
	orderSvc.SetNotifier(notifySvc)

	webhookSvc := service.NewWebhookService(repos.Order, repos.Catalog, orderSvc)
	catalogSvc := service.NewCatalogService(repos.Catalog)
	storeSvc := service.NewStoreService(repos.Store)

	services := &Services{
		Fee:     feeSvc,
		Order:   orderSvc,
		Webhook: webhookSvc,
		Catalog: catalogSvc,
		Store:   storeSvc,
		Notify:  notifySvc,
	}

	// -------- 定时任务 --------
	recostTask := task.NewRecostTask(repos.Order, repos.Catalog, orderSvc, cachedResolver)
	// 费率写入后失效缓存并触发批量重算
	catalogSvc.SetRateChangeListener(recostTask)

	// -------- Controller 层 --------
	controllers := &Controllers{
		Order:        controller.NewOrderController(orderSvc),
		Webhook:      controller.NewWebhookController(webhookSvc),
		Catalog:      controller.NewCatalogController(catalogSvc),
		Store:        controller.NewStoreController(storeSvc),
		Notification: controller.NewNotificationController(repos.Notification),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		RecostTask:  recostTask,
	}
}

// initRepositories 初始化所有仓库
func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Store:        repository.NewStoreRepository(db),
		Catalog:      repository.NewCatalogRepository(db),
		Order:        repository.NewOrderRepository(db),
		Notification: repository.NewNotificationRepository(db),
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	deps.RecostTask.Start()
	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
