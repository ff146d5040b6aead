package admin

import (
	"strings"
	"time"

	"github.com/reseller-hub/internal/constants"
	"github.com/reseller-hub/internal/http/response"
	"github.com/reseller-hub/internal/models"
	"github.com/reseller-hub/internal/repository"
	"github.com/reseller-hub/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateShipmentRequest 从订单创建发货单请求；cost 支持数字或 "Rp 20.000" 形式的文本。
// order_id 缺失时由服务层返回 "Select an order first"。
type CreateShipmentRequest struct {
	OrderID           uint        `json:"order_id"`
	Courier           string      `json:"courier"`
	Service           string      `json:"service"`
	Cost              models.Cost `json:"cost"`
	EstimatedDays     string      `json:"estimated_days"`
	EstimatedDelivery string      `json:"estimated_delivery"`
	TrackingNumber    string      `json:"tracking_number"`
	Notes             string      `json:"notes"`
}

// UpdateShipmentStatusRequest 更新发货状态请求
type UpdateShipmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// UpdateTrackingRequest 更新快递单号请求
type UpdateTrackingRequest struct {
	TrackingNumber string `json:"tracking_number" binding:"required"`
	Notes          string `json:"notes"`
}

// AdminShipmentDetail 发货单详情，附带审计日志
type AdminShipmentDetail struct {
	models.Shipment
	Logs []models.ShipmentLog `json:"logs"`
}

// AdminListShipments 发货单列表
func (h *Handler) AdminListShipments(c *gin.Context) {
	page, pageSize := parsePagination(c)
	shipments, total, err := h.ShipmentService.List(repository.ShipmentListFilter{
		Page:       page,
		PageSize:   pageSize,
		Status:     strings.TrimSpace(c.Query("status")),
		Courier:    strings.TrimSpace(c.Query("courier")),
		OrderID:    parseUintQuery(c, "order_id"),
		ResellerID: parseUintQuery(c, "reseller_id"),
		Keyword:    strings.TrimSpace(c.Query("keyword")),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, shipments, response.BuildPagination(page, pageSize, total))
}

// AdminShipmentOptions 创建发货单表单的下拉选项
func (h *Handler) AdminShipmentOptions(c *gin.Context) {
	response.Success(c, h.ShipmentService.Options())
}

// AdminCreateShipment 从订单创建发货单
func (h *Handler) AdminCreateShipment(c *gin.Context) {
	var req CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: order_id must be a number and cost a number or amount text")
		return
	}
	var estimated *time.Time
	if raw := strings.TrimSpace(req.EstimatedDelivery); raw != "" {
		parsed, err := parseTimeNullable(raw)
		if err != nil {
			response.BadRequest(c, "estimated_delivery must be an RFC3339 timestamp")
			return
		}
		estimated = parsed
	}

	shipment, err := h.ShipmentService.CreateFromOrder(c.Request.Context(), service.CreateShipmentInput{
		OrderID:           req.OrderID,
		Courier:           req.Courier,
		Service:           req.Service,
		Cost:              req.Cost,
		EstimatedDays:     req.EstimatedDays,
		EstimatedDelivery: estimated,
		TrackingNumber:    req.TrackingNumber,
		Notes:             req.Notes,
		Actor:             constants.ActorAdmin,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, shipment)
}

// AdminGetShipment 发货单详情
func (h *Handler) AdminGetShipment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	shipment, err := h.ShipmentService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	logs, err := h.ShipmentService.ListLogs(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, AdminShipmentDetail{Shipment: *shipment, Logs: logs})
}

// AdminListShipmentLogs 发货单审计日志，按时间倒序
func (h *Handler) AdminListShipmentLogs(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if _, err := h.ShipmentService.Get(id); err != nil {
		respondServiceError(c, err)
		return
	}
	logs, err := h.ShipmentService.ListLogs(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, logs)
}

// AdminGetShipmentByNumber 按发货单号查询
func (h *Handler) AdminGetShipmentByNumber(c *gin.Context) {
	shipment, err := h.ShipmentService.GetByShipmentNumber(c.Param("number"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, shipment)
}

// AdminGetShipmentByTracking 按快递单号查询
func (h *Handler) AdminGetShipmentByTracking(c *gin.Context) {
	shipment, err := h.ShipmentService.GetByTrackingNumber(c.Param("tracking"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, shipment)
}

// AdminListResellerShipments 指定分销商的发货单
func (h *Handler) AdminListResellerShipments(c *gin.Context) {
	resellerID, ok := parseIDParam(c)
	if !ok {
		return
	}
	shipments, err := h.ShipmentService.ListByReseller(resellerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, shipments)
}

// AdminUpdateShipmentStatus 更新发货状态
func (h *Handler) AdminUpdateShipmentStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req UpdateShipmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status is required")
		return
	}
	shipment, err := h.ShipmentService.UpdateStatus(c.Request.Context(), service.UpdateShipmentStatusInput{
		ShipmentID: id,
		Status:     req.Status,
		Notes:      req.Notes,
		Actor:      constants.ActorAdmin,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, shipment)
}

// AdminUpdateShipmentTracking 录入快递单号
func (h *Handler) AdminUpdateShipmentTracking(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req UpdateTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "tracking_number is required")
		return
	}
	shipment, err := h.ShipmentService.UpdateTracking(c.Request.Context(), service.UpdateTrackingInput{
		ShipmentID:     id,
		TrackingNumber: req.TrackingNumber,
		Notes:          req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, shipment)
}

// AdminDeleteShipment 删除已取消或备货中的发货单
func (h *Handler) AdminDeleteShipment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.ShipmentService.Delete(c.Request.Context(), id, constants.ActorAdmin); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
