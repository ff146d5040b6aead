package service

import (
	"github.com/reseller-hub/internal/constants"
	"github.com/reseller-hub/internal/models"
)

// orderStatusFlow 后台推荐的下一步状态；非终态订单可直接改为任意状态，这里只用于提示
var orderStatusFlow = map[string][]string{
	constants.OrderStatusPending:   {constants.OrderStatusConfirmed, constants.OrderStatusCancelled},
	constants.OrderStatusConfirmed: {constants.OrderStatusShipped, constants.OrderStatusCancelled},
	constants.OrderStatusShipped:   {constants.OrderStatusDelivered, constants.OrderStatusCancelled},
	constants.OrderStatusDelivered: {constants.OrderStatusCompleted, constants.OrderStatusCancelled},
}

// OrderAction 订单可执行的后台操作
type OrderAction struct {
	Type   string `json:"type"`
	Label  string `json:"label"`
	Urgent bool   `json:"urgent,omitempty"`
}

// NextOrderStatuses 返回推荐的下一步状态，终态返回空
func NextOrderStatuses(current string) []string {
	next := orderStatusFlow[current]
	out := make([]string, len(next))
	copy(out, next)
	return out
}

// canUpdateOrderStatus 终态订单只允许以相同状态更新备注
func canUpdateOrderStatus(current, target string) bool {
	if current == target {
		return true
	}
	return !constants.IsTerminalOrderStatus(current)
}

func canDeleteOrder(status string) bool {
	return status == constants.OrderStatusPending || status == constants.OrderStatusCancelled
}

// AvailableOrderActions 按固定顺序返回订单当前可执行的操作
func AvailableOrderActions(order *models.Order) []OrderAction {
	if order == nil {
		return nil
	}
	actions := []OrderAction{{Type: constants.OrderActionViewDetail, Label: "View detail"}}
	if order.PaymentStatus == constants.PaymentStatusWaitingVerification {
		actions = append(actions, OrderAction{Type: constants.OrderActionVerifyPayment, Label: "Verify payment", Urgent: true})
	}
	if !constants.IsTerminalOrderStatus(order.Status) {
		actions = append(actions, OrderAction{Type: constants.OrderActionUpdateStatus, Label: "Update status"})
	}
	if canDeleteOrder(order.Status) {
		actions = append(actions, OrderAction{Type: constants.OrderActionDelete, Label: "Delete"})
	}
	return actions
}
