package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/reseller-hub/internal/logger"
	"github.com/reseller-hub/internal/provider"
	"github.com/reseller-hub/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskShipmentStatusNotify, c.handleShipmentStatusNotify)
	mux.HandleFunc(queue.TaskStatsRefresh, c.handleStatsRefresh)
}

// handleShipmentStatusNotify 发货状态变更通知；投递渠道未接入，仅落结构化日志
func (c *Consumer) handleShipmentStatusNotify(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_shipment_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ShipmentStatusNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_shipment_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.ShipmentID == 0 {
		logger.Debugw("worker_shipment_notify_skip_invalid_payload", "shipment_id", payload.ShipmentID)
		return nil
	}

	receiver := strings.TrimSpace(payload.ResellerEmail)
	if receiver == "" && c.ShipmentRepo != nil {
		shipment, err := c.ShipmentRepo.GetByID(payload.ShipmentID)
		if err != nil {
			logger.Warnw("worker_shipment_notify_fetch_shipment_failed", "shipment_id", payload.ShipmentID, "error", err)
			return err
		}
		if shipment == nil {
			logger.Debugw("worker_shipment_notify_skip_shipment_not_found", "shipment_id", payload.ShipmentID)
			return nil
		}
		receiver = strings.TrimSpace(shipment.ResellerEmail)
	}
	if receiver == "" {
		logger.Debugw("worker_shipment_notify_skip_empty_receiver", "shipment_id", payload.ShipmentID)
		return nil
	}

	logger.FromContext(ctx).Infow("worker_shipment_status_notified",
		"shipment_id", payload.ShipmentID,
		"shipment_number", payload.ShipmentNumber,
		"order_number", payload.OrderNumber,
		"reseller_id", payload.ResellerID,
		"receiver", receiver,
		"status", payload.Status,
		"actor", payload.Actor,
		"occurred_at", payload.OccurredAt,
	)
	return nil
}

func (c *Consumer) handleStatsRefresh(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.StatsService == nil {
		logger.Debugw("worker_stats_refresh_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.StatsRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_stats_refresh_unmarshal_failed", "error", err)
		return err
	}
	if err := c.StatsService.Refresh(ctx, payload.Scope); err != nil {
		logger.Warnw("worker_stats_refresh_failed", "scope", payload.Scope, "error", err)
		return err
	}
	return nil
}
