package service

import (
	"context"
	"time"

	"github.com/reseller-hub/internal/cache"
	"github.com/reseller-hub/internal/logger"
	"github.com/reseller-hub/internal/queue"
	"github.com/reseller-hub/internal/repository"

	"github.com/hibiken/asynq"
)

const (
	orderStatsCacheKey    = "stats:orders"
	shipmentStatsCacheKey = "stats:shipments"
)

// StatsRefresher 统计缓存异步重建入队
type StatsRefresher interface {
	EnqueueStatsRefresh(payload queue.StatsRefreshPayload, opts ...asynq.Option) error
}

// StatsService 统计服务，结果按范围缓存
type StatsService struct {
	orderRepo    repository.OrderRepository
	shipmentRepo repository.ShipmentRepository
	cache        *cache.Store
	refresher    StatsRefresher
	ttl          time.Duration
	loc          *time.Location
	now          func() time.Time
}

// NewStatsService 创建统计服务
func NewStatsService(
	orderRepo repository.OrderRepository,
	shipmentRepo repository.ShipmentRepository,
	store *cache.Store,
	refresher StatsRefresher,
	ttl time.Duration,
	loc *time.Location,
) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsService{
		orderRepo:    orderRepo,
		shipmentRepo: shipmentRepo,
		cache:        store,
		refresher:    refresher,
		ttl:          ttl,
		loc:          loc,
		now:          time.Now,
	}
}

// OrderStats 订单统计，forceRefresh 时跳过缓存
func (s *StatsService) OrderStats(ctx context.Context, forceRefresh bool) (*OrderStats, error) {
	if !forceRefresh {
		var cached OrderStats
		hit, err := s.cache.GetJSON(ctx, orderStatsCacheKey, &cached)
		if err == nil && hit {
			return &cached, nil
		}
	}
	orders, err := s.orderRepo.ListForStats()
	if err != nil {
		return nil, storeError("load orders for stats", err)
	}
	stats := AggregateOrderStats(orders, s.now().In(s.loc))
	if err := s.cache.SetJSON(ctx, orderStatsCacheKey, stats, s.ttl); err != nil {
		logger.FromContext(ctx).Warnw("stats_cache_set_failed", "key", orderStatsCacheKey, "error", err)
	}
	return &stats, nil
}

// ShipmentStats 发货统计，forceRefresh 时跳过缓存
func (s *StatsService) ShipmentStats(ctx context.Context, forceRefresh bool) (*ShipmentStats, error) {
	if !forceRefresh {
		var cached ShipmentStats
		hit, err := s.cache.GetJSON(ctx, shipmentStatsCacheKey, &cached)
		if err == nil && hit {
			return &cached, nil
		}
	}
	shipments, err := s.shipmentRepo.ListForStats()
	if err != nil {
		return nil, storeError("load shipments for stats", err)
	}
	stats := AggregateShipmentStats(shipments, s.now().In(s.loc))
	if err := s.cache.SetJSON(ctx, shipmentStatsCacheKey, stats, s.ttl); err != nil {
		logger.FromContext(ctx).Warnw("stats_cache_set_failed", "key", shipmentStatsCacheKey, "error", err)
	}
	return &stats, nil
}

// Refresh 重建指定范围的统计缓存，供后台任务调用
func (s *StatsService) Refresh(ctx context.Context, scope string) error {
	switch scope {
	case queue.StatsScopeOrders:
		_, err := s.OrderStats(ctx, true)
		return err
	case queue.StatsScopeShipments:
		_, err := s.ShipmentStats(ctx, true)
		return err
	}
	return nil
}

// Invalidate 删除缓存并异步重建；失败只记录日志，不影响写操作结果
func (s *StatsService) Invalidate(ctx context.Context, scopes ...string) {
	if s == nil {
		return
	}
	for _, scope := range scopes {
		key := statsCacheKey(scope)
		if key == "" {
			continue
		}
		if err := s.cache.Del(ctx, key); err != nil {
			logger.FromContext(ctx).Warnw("stats_cache_invalidate_failed", "scope", scope, "error", err)
		}
		if s.refresher == nil || !s.cache.Enabled() {
			continue
		}
		if err := s.refresher.EnqueueStatsRefresh(queue.StatsRefreshPayload{Scope: scope}); err != nil {
			logger.FromContext(ctx).Warnw("stats_enqueue_refresh_failed", "scope", scope, "error", err)
		}
	}
}

func statsCacheKey(scope string) string {
	switch scope {
	case queue.StatsScopeOrders:
		return orderStatsCacheKey
	case queue.StatsScopeShipments:
		return shipmentStatsCacheKey
	}
	return ""
}
