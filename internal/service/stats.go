package service

import (
	"strings"
	"time"

	"github.com/reseller-hub/internal/constants"
	"github.com/reseller-hub/internal/models"

	"github.com/shopspring/decimal"
)

const unknownCourier = "unknown"

// OrderStats 订单统计
type OrderStats struct {
	Total               int64  `json:"total"`
	Pending             int64  `json:"pending"`
	WaitingVerification int64  `json:"waiting_verification"`
	Confirmed           int64  `json:"confirmed"`
	Shipped             int64  `json:"shipped"`
	Delivered           int64  `json:"delivered"`
	Completed           int64  `json:"completed"`
	Cancelled           int64  `json:"cancelled"`
	GeneratedAt         string `json:"generated_at"`
}

// ShipmentStats 发货统计
type ShipmentStats struct {
	Total             int64            `json:"total"`
	ByStatus          map[string]int64 `json:"by_status"`
	Preparing         int64            `json:"preparing"`
	InTransit         int64            `json:"in_transit"`
	Delivered         int64            `json:"delivered"`
	Returned          int64            `json:"returned"`
	Cancelled         int64            `json:"cancelled"`
	Failed            int64            `json:"failed"`
	TotalCost         models.Money     `json:"total_cost"`
	AverageCost       models.Money     `json:"average_cost"`
	ByCourier         map[string]int64 `json:"by_courier"`
	OnTimeDeliveries  int64            `json:"on_time_deliveries"`
	EvaluatedDelivery int64            `json:"evaluated_deliveries"`
	OnTimeRate        float64          `json:"on_time_rate"`
	ThisMonthCount    int64            `json:"this_month_count"`
	ThisMonthCost     models.Money     `json:"this_month_cost"`
	GeneratedAt       string           `json:"generated_at"`
}

// AggregateOrderStats 全量订单统计；待核验按支付状态独立计数
func AggregateOrderStats(orders []models.Order, now time.Time) OrderStats {
	stats := OrderStats{Total: int64(len(orders)), GeneratedAt: now.Format(time.RFC3339)}
	for _, order := range orders {
		switch order.Status {
		case constants.OrderStatusPending:
			stats.Pending++
		case constants.OrderStatusConfirmed:
			stats.Confirmed++
		case constants.OrderStatusShipped:
			stats.Shipped++
		case constants.OrderStatusDelivered:
			stats.Delivered++
		case constants.OrderStatusCompleted:
			stats.Completed++
		case constants.OrderStatusCancelled:
			stats.Cancelled++
		}
		if order.PaymentStatus == constants.PaymentStatusWaitingVerification {
			stats.WaitingVerification++
		}
	}
	return stats
}

// AggregateShipmentStats 全量发货统计，本月按 now 所在时区的自然月计算
func AggregateShipmentStats(shipments []models.Shipment, now time.Time) ShipmentStats {
	stats := ShipmentStats{
		Total:       int64(len(shipments)),
		ByStatus:    make(map[string]int64),
		ByCourier:   make(map[string]int64),
		GeneratedAt: now.Format(time.RFC3339),
	}
	loc := now.Location()
	year, month, _ := now.Date()
	totalCost := decimal.Zero
	monthCost := decimal.Zero

	for _, shipment := range shipments {
		status, ok := constants.NormalizeShipmentStatus(shipment.Status)
		if !ok {
			status = shipment.Status
		}
		stats.ByStatus[status]++
		switch status {
		case constants.ShipmentStatusPreparing:
			stats.Preparing++
		case constants.ShipmentStatusInTransit:
			stats.InTransit++
		case constants.ShipmentStatusDelivered:
			stats.Delivered++
		case constants.ShipmentStatusReturned:
			stats.Returned++
		case constants.ShipmentStatusCancelled:
			stats.Cancelled++
		case constants.ShipmentStatusFailed:
			stats.Failed++
		}

		courier := strings.TrimSpace(shipment.Courier)
		if courier == "" {
			courier = unknownCourier
		}
		stats.ByCourier[courier]++

		totalCost = totalCost.Add(shipment.Cost.Decimal)

		if shipment.ActualDelivery != nil && shipment.EstimatedDelivery != nil {
			stats.EvaluatedDelivery++
			if !shipment.ActualDelivery.After(*shipment.EstimatedDelivery) {
				stats.OnTimeDeliveries++
			}
		}

		createdYear, createdMonth, _ := shipment.CreatedAt.In(loc).Date()
		if createdYear == year && createdMonth == month {
			stats.ThisMonthCount++
			monthCost = monthCost.Add(shipment.Cost.Decimal)
		}
	}

	stats.TotalCost = models.NewMoneyFromDecimal(totalCost)
	stats.ThisMonthCost = models.NewMoneyFromDecimal(monthCost)
	if stats.Total > 0 {
		stats.AverageCost = models.NewMoneyFromDecimal(totalCost.Div(decimal.NewFromInt(stats.Total)).Round(2))
	}
	if stats.EvaluatedDelivery > 0 {
		rate := decimal.NewFromInt(stats.OnTimeDeliveries * 100).Div(decimal.NewFromInt(stats.EvaluatedDelivery)).Round(2)
		stats.OnTimeRate, _ = rate.Float64()
	}
	return stats
}
