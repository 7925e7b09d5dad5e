package task

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"canvas_erp_v1/internal/repository"
	"canvas_erp_v1/internal/service"

	"github.com/robfig/cron/v3"
)

// ==================== RecostTask 批量重算任务 ====================

// RecostTask 费率表变更后的订单批量重算
// 每个订单的核算彼此独立（引擎无共享状态），按信号量并发执行
type RecostTask struct {
	orderRepo    repository.OrderRepository
	catalogRepo  repository.CatalogRepository
	orderService *service.OrderService
	resolver     *service.CachedRateResolver
	cron         *cron.Cron

	// 并发控制
	concurrencyLimit int
	batchSize        int

	// 单飞标记：同一时刻最多一批重算在跑
	running int32
}

// NewRecostTask 创建批量重算任务
func NewRecostTask(
	orderRepo repository.OrderRepository,
	catalogRepo repository.CatalogRepository,
	orderService *service.OrderService,
	resolver *service.CachedRateResolver,
) *RecostTask {
	return &RecostTask{
		orderRepo:        orderRepo,
		catalogRepo:      catalogRepo,
		orderService:     orderService,
		resolver:         resolver,
		cron:             cron.New(cron.WithSeconds()),
		concurrencyLimit: 10,
		batchSize:        500,
	}
}

// SetConcurrency 设置并发参数
func (t *RecostTask) SetConcurrency(limit, batchSize int) {
	t.concurrencyLimit = limit
	t.batchSize = batchSize
}

// Start 启动定时任务
func (t *RecostTask) Start() {
	// 每小时兜底检查一次（正常情况下费率变更会即时触发）
	_, err := t.cron.AddFunc("0 0 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		t.recostStale(ctx)
	})
	if err != nil {
		log.Printf("[RecostTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Println("[RecostTask] 已启动 (每小时)")
}

// Stop 停止任务
func (t *RecostTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[RecostTask] 已停止")
}

// RatesChanged 费率变更回调：失效缓存并立即安排一轮重算
func (t *RecostTask) RatesChanged() {
	t.resolver.Invalidate()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		t.recostStale(ctx)
	}()
}

// recostStale 重算核算时间早于最近费率变更的订单
// 单飞执行：上一批尚未结束时跳过本轮，待重算订单留给下一次触发
func (t *RecostTask) recostStale(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&t.running, 0, 1) {
		log.Println("[RecostTask] 上一批重算尚未结束，跳过本轮")
		return
	}
	defer atomic.StoreInt32(&t.running, 0)

	since, err := t.catalogRepo.LatestRateChange(ctx)
	if err != nil {
		log.Printf("[RecostTask] 获取费率变更时间失败: %v", err)
		return
	}
	if since.IsZero() {
		return // 还没有任何费率数据
	}

	ids, err := t.orderRepo.ListIDsNeedingRecost(ctx, since, t.batchSize)
	if err != nil {
		log.Printf("[RecostTask] 获取待重算订单失败: %v", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	log.Printf("[RecostTask] 开始重算 %d 个订单", len(ids))

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	var (
		success int
		failed  int
		mu      sync.Mutex
	)

	for _, id := range ids {
		select {
		case <-ctx.Done():
			log.Println("[RecostTask] 任务超时停止")
			wg.Wait()
			return
		default:
		}

		sem <- struct{}{}
		wg.Add(1)

		go func(orderID int64) {
			defer wg.Done()
			defer func() { <-sem }()

			err := t.orderService.RecostOrderWith(ctx, orderID, t.resolver)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[RecostTask] 订单 %d 重算失败: %v", orderID, err)
				failed++
				return
			}
			success++
		}(id)
	}

	wg.Wait()
	log.Printf("[RecostTask] 重算完成: 成功 %d, 失败 %d", success, failed)
}

// RecostAllNow 立即触发一轮重算
func (t *RecostTask) RecostAllNow() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		t.recostStale(ctx)
	}()
}
