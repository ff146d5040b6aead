package constants

import "strings"

var orderStatuses = map[string]bool{
	OrderStatusPending:   true,
	OrderStatusConfirmed: true,
	OrderStatusShipped:   true,
	OrderStatusDelivered: true,
	OrderStatusCompleted: true,
	OrderStatusCancelled: true,
}

var paymentStatuses = map[string]bool{
	PaymentStatusWaitingPayment:      true,
	PaymentStatusWaitingVerification: true,
	PaymentStatusPaid:                true,
	PaymentStatusFailed:              true,
}

// shipmentStatusAliases 两套发货词表到规范词表的映射
var shipmentStatusAliases = map[string]string{
	ShipmentStatusPreparing:        ShipmentStatusPreparing,
	ShipmentStatusInTransit:        ShipmentStatusInTransit,
	ShipmentStatusDelivered:        ShipmentStatusDelivered,
	ShipmentStatusReturned:         ShipmentStatusReturned,
	ShipmentStatusCancelled:        ShipmentStatusCancelled,
	ShipmentStatusFailed:           ShipmentStatusFailed,
	LegacyShipmentStatusPending:    ShipmentStatusPreparing,
	LegacyShipmentStatusProcessing: ShipmentStatusInTransit,
	LegacyShipmentStatusProcessed:  ShipmentStatusInTransit,
	LegacyShipmentStatusShipped:    ShipmentStatusInTransit,
	"canceled":                     ShipmentStatusCancelled,
}

// ShipmentStatuses 规范发货状态（展示顺序）
var ShipmentStatuses = []string{
	ShipmentStatusPreparing,
	ShipmentStatusInTransit,
	ShipmentStatusDelivered,
	ShipmentStatusReturned,
	ShipmentStatusCancelled,
	ShipmentStatusFailed,
}

// Couriers 已知快递公司
var Couriers = []string{CourierJNE, CourierJNT, CourierPOS, CourierTIKI, CourierSiCepat}

// CourierServices 已知服务类型
var CourierServices = []string{CourierServiceREG, CourierServiceYES, CourierServiceOKE, CourierServiceEXPRESS}

// IsOrderStatus 判断是否为合法订单状态
func IsOrderStatus(status string) bool {
	return orderStatuses[status]
}

// IsPaymentStatus 判断是否为合法支付状态
func IsPaymentStatus(status string) bool {
	return paymentStatuses[status]
}

// IsTerminalOrderStatus 已完成与已取消为终态
func IsTerminalOrderStatus(status string) bool {
	return status == OrderStatusCompleted || status == OrderStatusCancelled
}

// NormalizeShipmentStatus 将任一词表的发货状态转换为规范值
func NormalizeShipmentStatus(status string) (string, bool) {
	canonical, ok := shipmentStatusAliases[strings.ToLower(strings.TrimSpace(status))]
	return canonical, ok
}

// IsActiveShipmentStatus 仍占用订单的发货状态
func IsActiveShipmentStatus(status string) bool {
	switch status {
	case ShipmentStatusCancelled, ShipmentStatusReturned, ShipmentStatusFailed:
		return false
	}
	return true
}
