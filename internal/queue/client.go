package queue

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reseller-hub/internal/config"
	"github.com/reseller-hub/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 统计刷新等可延后的任务
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 发货状态通知，优先于统计刷新消费
	CriticalQueue = constants.QueueCritical
)

// Client 队列客户端封装，未启用时入队为空操作
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue}, nil
	}
	return &Client{
		client:       asynq.NewClient(buildRedisOpt(cfg)),
		enabled:      true,
		defaultQueue: DefaultQueue,
	}, nil
}

// NewClientWithRedisOpt 使用指定连接创建客户端
func NewClientWithRedisOpt(opt asynq.RedisConnOpt) *Client {
	return &Client{client: asynq.NewClient(opt), enabled: true, defaultQueue: DefaultQueue}
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueShipmentStatusNotify 推送发货状态变更通知任务
func (c *Client) EnqueueShipmentStatusNotify(payload ShipmentStatusNotifyPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewShipmentStatusNotifyTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.Enqueue(task, shipmentNotifyOptions(opts...)...)
	return err
}

func shipmentNotifyOptions(opts ...asynq.Option) []asynq.Option {
	return append([]asynq.Option{asynq.Queue(CriticalQueue), asynq.MaxRetry(5)}, opts...)
}

// EnqueueStatsRefresh 推送统计缓存刷新任务，同一范围短时间内只保留一个
func (c *Client) EnqueueStatsRefresh(payload StatsRefreshPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewStatsRefreshTask(payload)
	if err != nil {
		return err
	}
	options := append([]asynq.Option{
		asynq.Queue(c.defaultQueue),
		asynq.TaskID(fmt.Sprintf("%s:%s", TaskStatsRefresh, payload.Scope)),
		asynq.Retention(0),
	}, opts...)
	_, err = c.client.Enqueue(task, options...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := DefaultQueueWeights()
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

// DefaultQueueWeights 未配置 queue.queues 时的队列权重
func DefaultQueueWeights() map[string]int {
	return map[string]int{CriticalQueue: 6, DefaultQueue: 3}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}
