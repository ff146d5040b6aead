package queue

import (
	"encoding/json"
	"time"

	"github.com/reseller-hub/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskShipmentStatusNotify 发货状态变更通知任务
	TaskShipmentStatusNotify = constants.TaskShipmentStatusNotify
	// TaskStatsRefresh 统计缓存刷新任务
	TaskStatsRefresh = constants.TaskStatsRefresh
)

// 统计刷新范围
const (
	StatsScopeOrders    = "orders"
	StatsScopeShipments = "shipments"
)

// ShipmentStatusNotifyPayload 发货状态通知任务载荷
type ShipmentStatusNotifyPayload struct {
	ShipmentID     uint      `json:"shipment_id"`
	ShipmentNumber string    `json:"shipment_number"`
	OrderNumber    string    `json:"order_number"`
	ResellerID     uint      `json:"reseller_id"`
	ResellerEmail  string    `json:"reseller_email"`
	Status         string    `json:"status"`
	Actor          string    `json:"actor"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// StatsRefreshPayload 统计刷新任务载荷
type StatsRefreshPayload struct {
	Scope string `json:"scope"`
}

// NewShipmentStatusNotifyTask 创建发货状态通知任务
func NewShipmentStatusNotifyTask(payload ShipmentStatusNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskShipmentStatusNotify, body), nil
}

// NewStatsRefreshTask 创建统计刷新任务
func NewStatsRefreshTask(payload StatsRefreshPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatsRefresh, body), nil
}
