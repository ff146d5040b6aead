package admin

import (
	"strconv"
	"strings"

	"github.com/reseller-hub/internal/http/response"
	"github.com/reseller-hub/internal/models"
	"github.com/reseller-hub/internal/repository"
	"github.com/reseller-hub/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminOrderListItem 管理端订单列表返回
type AdminOrderListItem struct {
	models.Order
	Actions []service.OrderAction `json:"actions"`
}

// AdminOrderDetail 管理端订单详情返回
type AdminOrderDetail struct {
	models.Order
	Actions      []service.OrderAction `json:"actions"`
	NextStatuses []string              `json:"next_statuses"`
}

// UpdateOrderStatusRequest 更新订单状态请求
type UpdateOrderStatusRequest struct {
	OrderStatus    string `json:"order_status" binding:"required"`
	AdminMessage   string `json:"admin_message"`
	TrackingNumber string `json:"tracking_number"`
}

// UpdatePaymentStatusRequest 更新支付状态请求
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
	OrderStatus   string `json:"order_status"`
	AdminMessage  string `json:"admin_message"`
}

// ApprovePaymentRequest 审核通过请求
type ApprovePaymentRequest struct {
	Message string `json:"message"`
}

// RejectPaymentRequest 驳回付款请求
type RejectPaymentRequest struct {
	Reason string `json:"reason"`
}

// AdminListOrders 管理端订单列表
func (h *Handler) AdminListOrders(c *gin.Context) {
	page, pageSize := parsePagination(c)

	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		response.BadRequest(c, "created_from must be an RFC3339 timestamp")
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		response.BadRequest(c, "created_to must be an RFC3339 timestamp")
		return
	}
	keyword := strings.TrimSpace(c.Query("keyword"))
	if keyword == "" {
		keyword = strings.TrimSpace(c.Query("q"))
	}

	orders, total, err := h.OrderService.ListOrders(repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		Status:        strings.TrimSpace(c.Query("status")),
		PaymentStatus: strings.TrimSpace(c.Query("payment_status")),
		ResellerID:    parseUintQuery(c, "reseller_id"),
		Keyword:       keyword,
		CreatedFrom:   createdFrom,
		CreatedTo:     createdTo,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]AdminOrderListItem, 0, len(orders))
	for i := range orders {
		items = append(items, AdminOrderListItem{
			Order:   orders[i],
			Actions: service.AvailableOrderActions(&orders[i]),
		})
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// AdminListEligibleOrders 可创建发货单的订单
func (h *Handler) AdminListEligibleOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	orders, err := h.OrderService.ListEligibleOrders(limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, orders)
}

// AdminGetOrder 管理端订单详情
func (h *Handler) AdminGetOrder(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrder(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, AdminOrderDetail{
		Order:        *order,
		Actions:      service.AvailableOrderActions(order),
		NextStatuses: service.NextOrderStatuses(order.Status),
	})
}

// AdminUpdateOrderStatus 更新订单状态
func (h *Handler) AdminUpdateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "order_status is required")
		return
	}
	order, err := h.OrderService.UpdateOrderStatus(c.Request.Context(), service.UpdateOrderStatusInput{
		OrderID:        id,
		Status:         req.OrderStatus,
		AdminMessage:   req.AdminMessage,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// AdminUpdatePaymentStatus 更新支付状态，可同时修改订单状态
func (h *Handler) AdminUpdatePaymentStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "payment_status is required")
		return
	}
	order, err := h.OrderService.UpdatePaymentStatus(c.Request.Context(), service.UpdatePaymentStatusInput{
		OrderID:       id,
		PaymentStatus: req.PaymentStatus,
		OrderStatus:   req.OrderStatus,
		AdminMessage:  req.AdminMessage,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// AdminApprovePayment 审核通过付款凭证
func (h *Handler) AdminApprovePayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req ApprovePaymentRequest
	// 请求体可为空
	_ = c.ShouldBindJSON(&req)
	order, err := h.OrderService.ApprovePayment(c.Request.Context(), id, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// AdminRejectPayment 驳回付款凭证
func (h *Handler) AdminRejectPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req RejectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	order, err := h.OrderService.RejectPayment(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// AdminDeleteOrder 删除待处理或已取消的订单
func (h *Handler) AdminDeleteOrder(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.OrderService.DeleteOrder(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
