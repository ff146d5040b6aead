package service

import (
	"errors"
	"fmt"
)

// 错误分类，所有业务错误都归属其中一类，处理层据此映射响应码
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrValidation        = errors.New("validation error")
	ErrStore             = errors.New("store error")
	ErrUnauthorized      = errors.New("unauthorized")
)

// kindError 带分类的业务错误，消息直接展示给后台用户
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// 订单相关错误
var (
	ErrOrderNotFound         = newKindError(ErrNotFound, "Order not found")
	ErrOrderRequired         = newKindError(ErrValidation, "Select an order first")
	ErrOrderStatusInvalid    = newKindError(ErrValidation, "Invalid order status")
	ErrPaymentStatusInvalid  = newKindError(ErrValidation, "Invalid payment status")
	ErrOrderTerminal         = newKindError(ErrInvalidTransition, "Order is already completed or cancelled; only the admin note can be changed")
	ErrOrderDeleteNotAllowed = newKindError(ErrInvalidState, "Only pending or cancelled orders can be deleted")
	ErrRejectReasonRequired  = newKindError(ErrValidation, "A reason is required to reject a payment")
	ErrOrderChanged          = newKindError(ErrInvalidState, "Order status was changed by another request, please reload and retry")
)

// 发货单相关错误
var (
	ErrShipmentNotFound          = newKindError(ErrNotFound, "Shipment not found")
	ErrShipmentStatusInvalid     = newKindError(ErrValidation, "Invalid shipment status")
	ErrShipmentCostInvalid       = newKindError(ErrValidation, "Shipping cost cannot be negative")
	ErrTrackingNumberRequired    = newKindError(ErrValidation, "Tracking number is required")
	ErrOrderNotEligible          = newKindError(ErrInvalidState, "Order must be confirmed or paid before a shipment can be created")
	ErrShipmentAlreadyActive     = newKindError(ErrInvalidState, "Order already has an active shipment")
	ErrShipmentDeleteNotAllowed  = newKindError(ErrInvalidState, "Only cancelled or preparing shipments can be deleted")
	ErrShipmentNumberUnavailable = newKindError(ErrInvalidState, "Could not allocate a unique shipment number, please retry")
)

// 认证相关错误
var (
	ErrInvalidCredentials = newKindError(ErrUnauthorized, "Invalid email or password")
	ErrAccountDisabled    = newKindError(ErrUnauthorized, "Account is disabled")
	ErrInvalidToken       = newKindError(ErrUnauthorized, "Invalid or expired token")
)

// StoreError 持久化失败，保留底层错误供日志与 errors.Is 判断
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("Failed to %s: %v", e.Op, e.Err)
}

// Unwrap 同时暴露分类与底层错误
func (e *StoreError) Unwrap() []error {
	return []error{ErrStore, e.Err}
}

func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
