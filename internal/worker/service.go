package worker

import (
	"context"
	"errors"
	"time"

	"github.com/reseller-hub/internal/config"
	"github.com/reseller-hub/internal/logger"
	"github.com/reseller-hub/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	statsWarmInterval = 5 * time.Minute
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.StatsService != nil && s.consumer.Cache.Enabled() {
		go s.runStatsWarmLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runStatsWarmLoop 定期重建统计缓存，避免缓存过期后首个请求承担全量聚合
func (s *Service) runStatsWarmLoop(ctx context.Context) {
	runOnce := func() {
		for _, scope := range []string{queue.StatsScopeOrders, queue.StatsScopeShipments} {
			if err := s.consumer.StatsService.Refresh(ctx, scope); err != nil {
				logger.Warnw("worker_stats_warm_failed", "scope", scope, "error", err)
			}
		}
	}
	runOnce()

	ticker := time.NewTicker(statsWarmInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
