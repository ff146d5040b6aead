package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/reseller-hub/internal/constants"
	"github.com/reseller-hub/internal/logger"
	"github.com/reseller-hub/internal/models"
	"github.com/reseller-hub/internal/queue"
	"github.com/reseller-hub/internal/repository"

	"gorm.io/gorm"
)

const defaultApproveMessage = "Payment verified and approved"

// statsInvalidator 写操作后清理统计缓存
type statsInvalidator interface {
	Invalidate(ctx context.Context, scopes ...string)
}

// OrderService 订单生命周期服务
type OrderService struct {
	orderRepo repository.OrderRepository
	stats     statsInvalidator
	now       func() time.Time
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, stats statsInvalidator) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		stats:     stats,
		now:       time.Now,
	}
}

// UpdateOrderStatusInput 更新订单状态输入
type UpdateOrderStatusInput struct {
	OrderID        uint
	Status         string
	AdminMessage   string
	TrackingNumber string
}

// UpdatePaymentStatusInput 更新支付状态输入，OrderStatus 为空时不修改订单状态
type UpdatePaymentStatusInput struct {
	OrderID       uint
	PaymentStatus string
	OrderStatus   string
	AdminMessage  string
}

// GetOrder 获取订单详情
func (s *OrderService) GetOrder(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, storeError("load order", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders 后台订单列表
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.Status != "" && !constants.IsOrderStatus(filter.Status) {
		return nil, 0, ErrOrderStatusInvalid
	}
	if filter.PaymentStatus != "" && !constants.IsPaymentStatus(filter.PaymentStatus) {
		return nil, 0, ErrPaymentStatusInvalid
	}
	orders, total, err := s.orderRepo.ListAdmin(filter)
	if err != nil {
		return nil, 0, storeError("list orders", err)
	}
	return orders, total, nil
}

// ListEligibleOrders 可创建发货单的订单
func (s *OrderService) ListEligibleOrders(limit int) ([]models.Order, error) {
	orders, err := s.orderRepo.ListEligibleForShipment(limit)
	if err != nil {
		return nil, storeError("list eligible orders", err)
	}
	return orders, nil
}

// UpdateOrderStatus 更新订单状态并覆盖管理员备注
func (s *OrderService) UpdateOrderStatus(ctx context.Context, input UpdateOrderStatusInput) (*models.Order, error) {
	target := strings.TrimSpace(input.Status)
	if !constants.IsOrderStatus(target) {
		return nil, ErrOrderStatusInvalid
	}
	order, err := s.GetOrder(input.OrderID)
	if err != nil {
		return nil, err
	}
	if !canUpdateOrderStatus(order.Status, target) {
		return nil, ErrOrderTerminal
	}

	now := s.now()
	updates := map[string]interface{}{
		"status":        target,
		"admin_message": input.AdminMessage,
		"updated_at":    now,
	}
	tracking := strings.TrimSpace(input.TrackingNumber)
	if target == constants.OrderStatusShipped && tracking != "" {
		updates["tracking_number"] = tracking
	}
	if err := s.applyGuardedUpdates(order, target, updates); err != nil {
		return nil, err
	}
	if _, ok := updates["tracking_number"]; ok {
		order.TrackingNumber = tracking
	}

	previous := order.Status
	order.Status = target
	order.AdminMessage = input.AdminMessage
	order.UpdatedAt = now
	s.invalidate(ctx)

	logger.FromContext(ctx).Infow("order_status_updated",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"from", previous,
		"to", target,
	)
	return order, nil
}

// UpdatePaymentStatus 更新支付状态，可在同一条语句中同时更新订单状态
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, input UpdatePaymentStatusInput) (*models.Order, error) {
	paymentStatus := strings.TrimSpace(input.PaymentStatus)
	if !constants.IsPaymentStatus(paymentStatus) {
		return nil, ErrPaymentStatusInvalid
	}
	orderStatus := strings.TrimSpace(input.OrderStatus)
	if orderStatus != "" && !constants.IsOrderStatus(orderStatus) {
		return nil, ErrOrderStatusInvalid
	}
	order, err := s.GetOrder(input.OrderID)
	if err != nil {
		return nil, err
	}
	if orderStatus != "" && !canUpdateOrderStatus(order.Status, orderStatus) {
		return nil, ErrOrderTerminal
	}

	now := s.now()
	updates := map[string]interface{}{
		"payment_status": paymentStatus,
		"admin_message":  input.AdminMessage,
		"updated_at":     now,
	}
	if orderStatus != "" {
		updates["status"] = orderStatus
		err = s.applyGuardedUpdates(order, orderStatus, updates)
	} else {
		err = s.applyUpdates(order.ID, updates)
	}
	if err != nil {
		return nil, err
	}

	order.PaymentStatus = paymentStatus
	if orderStatus != "" {
		order.Status = orderStatus
	}
	order.AdminMessage = input.AdminMessage
	order.UpdatedAt = now
	s.invalidate(ctx)

	logger.FromContext(ctx).Infow("order_payment_status_updated",
		"order_id", order.ID,
		"payment_status", paymentStatus,
		"order_status", order.Status,
	)
	return order, nil
}

// ApprovePayment 审核通过：已付款并确认订单
func (s *OrderService) ApprovePayment(ctx context.Context, orderID uint, message string) (*models.Order, error) {
	if strings.TrimSpace(message) == "" {
		message = defaultApproveMessage
	}
	return s.UpdatePaymentStatus(ctx, UpdatePaymentStatusInput{
		OrderID:       orderID,
		PaymentStatus: constants.PaymentStatusPaid,
		OrderStatus:   constants.OrderStatusConfirmed,
		AdminMessage:  message,
	})
}

// RejectPayment 审核拒绝：支付失败并取消订单
func (s *OrderService) RejectPayment(ctx context.Context, orderID uint, reason string) (*models.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrRejectReasonRequired
	}
	return s.UpdatePaymentStatus(ctx, UpdatePaymentStatusInput{
		OrderID:       orderID,
		PaymentStatus: constants.PaymentStatusFailed,
		OrderStatus:   constants.OrderStatusCancelled,
		AdminMessage:  reason,
	})
}

// DeleteOrder 删除待处理或已取消的订单（不可恢复）
func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	order, err := s.GetOrder(id)
	if err != nil {
		return err
	}
	if !canDeleteOrder(order.Status) {
		return ErrOrderDeleteNotAllowed
	}
	if err := s.orderRepo.Delete(order.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return storeError("delete order", err)
	}
	s.invalidate(ctx)

	logger.FromContext(ctx).Infow("order_deleted",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"status", order.Status,
	)
	return nil
}

// applyGuardedUpdates 带上读取时的订单状态作为条件，读取与更新之间状态被改动时重新判定
func (s *OrderService) applyGuardedUpdates(order *models.Order, target string, updates map[string]interface{}) error {
	matched, err := s.orderRepo.UpdatesIfStatus(order.ID, order.Status, updates)
	if err != nil {
		return storeError("update order", err)
	}
	if matched {
		return nil
	}
	current, err := s.GetOrder(order.ID)
	if err != nil {
		return err
	}
	if !canUpdateOrderStatus(current.Status, target) {
		return ErrOrderTerminal
	}
	return ErrOrderChanged
}

func (s *OrderService) applyUpdates(id uint, updates map[string]interface{}) error {
	if err := s.orderRepo.Updates(id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return storeError("update order", err)
	}
	return nil
}

func (s *OrderService) invalidate(ctx context.Context) {
	if s.stats != nil {
		s.stats.Invalidate(ctx, queue.StatsScopeOrders)
	}
}
