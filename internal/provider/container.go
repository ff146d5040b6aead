package provider

import (
	"context"
	"time"

	"github.com/reseller-hub/internal/authz"
	"github.com/reseller-hub/internal/cache"
	"github.com/reseller-hub/internal/config"
	"github.com/reseller-hub/internal/logger"
	"github.com/reseller-hub/internal/models"
	"github.com/reseller-hub/internal/queue"
	"github.com/reseller-hub/internal/repository"
	"github.com/reseller-hub/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	Cache       *cache.Store
	QueueClient *queue.Client

	// Repositories
	UserRepo        repository.UserRepository
	OrderRepo       repository.OrderRepository
	ShipmentRepo    repository.ShipmentRepository
	ShipmentLogRepo repository.ShipmentLogRepository

	// Services
	AuthzService    *authz.Service
	AuthService     *service.AuthService
	StatsService    *service.StatsService
	OrderService    *service.OrderService
	ShipmentService *service.ShipmentService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	store := cache.NewFromConfig(&cfg.Redis)
	if store.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			logger.Warnw("provider_init_redis_failed", "error", err)
		}
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		Cache:       store,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ShipmentRepo = repository.NewShipmentRepository(db)
	c.ShipmentLogRepo = repository.NewShipmentLogRepository(db)
}

func (c *Container) initServices() error {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return err
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		return err
	}
	c.AuthzService = authzService

	c.AuthService = service.NewAuthService(c.Config, c.UserRepo, c.Cache)
	c.StatsService = service.NewStatsService(
		c.OrderRepo,
		c.ShipmentRepo,
		c.Cache,
		c.QueueClient,
		c.Config.Stats.CacheTTL(),
		c.Config.App.Location(),
	)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.StatsService)
	c.ShipmentService = service.NewShipmentService(
		c.Config.Shipment,
		c.OrderRepo,
		c.ShipmentRepo,
		c.ShipmentLogRepo,
		c.QueueClient,
		c.StatsService,
	)
	return nil
}

// Close 释放缓存与队列连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := c.Cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
