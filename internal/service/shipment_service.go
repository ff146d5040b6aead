package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/reseller-hub/internal/config"
	"github.com/reseller-hub/internal/constants"
	"github.com/reseller-hub/internal/logger"
	"github.com/reseller-hub/internal/models"
	"github.com/reseller-hub/internal/queue"
	"github.com/reseller-hub/internal/repository"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

const shipmentNumberAttempts = 3

// ShipmentNotifier 发货状态变更通知入队
type ShipmentNotifier interface {
	EnqueueShipmentStatusNotify(payload queue.ShipmentStatusNotifyPayload, opts ...asynq.Option) error
}

// ShipmentService 发货单服务
type ShipmentService struct {
	cfg          config.ShipmentConfig
	orderRepo    repository.OrderRepository
	shipmentRepo repository.ShipmentRepository
	logRepo      repository.ShipmentLogRepository
	notifier     ShipmentNotifier
	stats        statsInvalidator
	now          func() time.Time
	newNumber    func(prefix string, now time.Time) string
}

// NewShipmentService 创建发货单服务
func NewShipmentService(
	cfg config.ShipmentConfig,
	orderRepo repository.OrderRepository,
	shipmentRepo repository.ShipmentRepository,
	logRepo repository.ShipmentLogRepository,
	notifier ShipmentNotifier,
	stats statsInvalidator,
) *ShipmentService {
	if cfg.DefaultItemWeight <= 0 {
		cfg.DefaultItemWeight = 0.5
	}
	if strings.TrimSpace(cfg.DefaultCourier) == "" {
		cfg.DefaultCourier = constants.CourierJNE
	}
	if strings.TrimSpace(cfg.DefaultService) == "" {
		cfg.DefaultService = constants.CourierServiceREG
	}
	return &ShipmentService{
		cfg:          cfg,
		orderRepo:    orderRepo,
		shipmentRepo: shipmentRepo,
		logRepo:      logRepo,
		notifier:     notifier,
		stats:        stats,
		now:          time.Now,
		newNumber:    generateShipmentNo,
	}
}

// UpdateShipmentStatusInput 更新发货状态输入
type UpdateShipmentStatusInput struct {
	ShipmentID uint
	Status     string
	Notes      string
	Actor      string
}

// UpdateTrackingInput 后台更新快递单号输入
type UpdateTrackingInput struct {
	ShipmentID     uint
	TrackingNumber string
	Notes          string
}

// ShipmentOptions 创建发货单表单的可选项与默认值
type ShipmentOptions struct {
	Statuses          []string `json:"statuses"`
	Couriers          []string `json:"couriers"`
	Services          []string `json:"services"`
	DefaultCourier    string   `json:"default_courier"`
	DefaultService    string   `json:"default_service"`
	DefaultItemWeight float64  `json:"default_item_weight"`
}

// Options 返回规范发货状态、已知快递公司与服务类型；未列出的快递公司仍可原样提交
func (s *ShipmentService) Options() ShipmentOptions {
	return ShipmentOptions{
		Statuses:          append([]string(nil), constants.ShipmentStatuses...),
		Couriers:          append([]string(nil), constants.Couriers...),
		Services:          append([]string(nil), constants.CourierServices...),
		DefaultCourier:    s.cfg.DefaultCourier,
		DefaultService:    s.cfg.DefaultService,
		DefaultItemWeight: s.cfg.DefaultItemWeight,
	}
}

// CreateFromOrder 从订单派生发货单并写入首条审计日志
func (s *ShipmentService) CreateFromOrder(ctx context.Context, input CreateShipmentInput) (*models.Shipment, error) {
	if input.OrderID == 0 {
		return nil, ErrOrderRequired
	}
	if input.Cost.IsNegative() {
		return nil, ErrShipmentCostInvalid
	}
	order, err := s.orderRepo.GetByID(input.OrderID)
	if err != nil {
		return nil, storeError("load order", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if s.cfg.EnforceEligibility && !order.IsEligibleForShipment() {
		return nil, ErrOrderNotEligible
	}
	if s.cfg.SingleActivePerOrder {
		existing, err := s.shipmentRepo.ListByOrderID(order.ID)
		if err != nil {
			return nil, storeError("load order shipments", err)
		}
		for _, shipment := range existing {
			status, _ := constants.NormalizeShipmentStatus(shipment.Status)
			if constants.IsActiveShipmentStatus(status) {
				return nil, ErrShipmentAlreadyActive
			}
		}
	}

	shipment := buildShipmentFromOrder(order, input, shipmentDefaults{
		Courier:    s.cfg.DefaultCourier,
		Service:    s.cfg.DefaultService,
		ItemWeight: s.cfg.DefaultItemWeight,
	})
	actor := normalizeActor(input.Actor)

	// 预检查之后仍可能与并发创建撞号，唯一索引拒绝时换号重试
	for attempt := 1; ; attempt++ {
		number, err := s.allocateShipmentNo()
		if err != nil {
			return nil, err
		}
		shipment.ID = 0
		shipment.ShipmentNumber = number
		err = s.insertWithLog(shipment, order.OrderNumber, actor)
		if err == nil {
			break
		}
		if !repository.IsDuplicateKey(err) {
			return nil, storeError("create shipment", err)
		}
		logger.FromContext(ctx).Warnw("shipment_number_conflict",
			"shipment_number", number,
			"order_id", order.ID,
			"attempt", attempt,
		)
		if attempt >= shipmentNumberAttempts {
			return nil, ErrShipmentNumberUnavailable
		}
	}
	s.invalidate(ctx)

	logger.FromContext(ctx).Infow("shipment_created",
		"shipment_id", shipment.ID,
		"shipment_number", shipment.ShipmentNumber,
		"order_id", order.ID,
		"courier", shipment.Courier,
		"total_weight", shipment.TotalWeight,
	)
	return shipment, nil
}

func (s *ShipmentService) insertWithLog(shipment *models.Shipment, orderNumber, actor string) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.shipmentRepo.WithTx(tx).Create(shipment); err != nil {
			return err
		}
		return s.logRepo.WithTx(tx).Create(&models.ShipmentLog{
			ShipmentID: shipment.ID,
			Status:     shipment.Status,
			Message:    fmt.Sprintf("Shipment created from order %s", orderNumber),
			Actor:      actor,
		})
	})
}

// allocateShipmentNo 生成未被占用的发货单号
func (s *ShipmentService) allocateShipmentNo() (string, error) {
	for i := 0; i < shipmentNumberAttempts; i++ {
		number := s.newNumber(s.cfg.NumberPrefix, s.now())
		existing, err := s.shipmentRepo.GetByShipmentNumber(number)
		if err != nil {
			return "", storeError("check shipment number", err)
		}
		if existing == nil {
			return number, nil
		}
	}
	return "", ErrShipmentNumberUnavailable
}

// UpdateStatus 更新发货状态；不校验状态流转，每次调用都会追加一条审计日志
func (s *ShipmentService) UpdateStatus(ctx context.Context, input UpdateShipmentStatusInput) (*models.Shipment, error) {
	status, ok := constants.NormalizeShipmentStatus(input.Status)
	if !ok {
		return nil, ErrShipmentStatusInvalid
	}
	shipment, err := s.Get(input.ShipmentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	notes := strings.TrimSpace(input.Notes)
	updates := map[string]interface{}{
		"status":      status,
		"admin_notes": notes,
		"updated_at":  now,
	}
	if status == constants.ShipmentStatusDelivered {
		updates["actual_delivery"] = now
	}
	message := notes
	if message == "" {
		message = fmt.Sprintf("Status changed to %s", status)
	}
	actor := normalizeActor(input.Actor)

	if err := s.updateWithLog(shipment.ID, updates, status, message, actor); err != nil {
		return nil, err
	}

	previous := shipment.Status
	shipment.Status = status
	shipment.AdminNotes = notes
	shipment.UpdatedAt = now
	if status == constants.ShipmentStatusDelivered {
		delivered := now
		shipment.ActualDelivery = &delivered
	}
	s.invalidate(ctx)
	s.notify(ctx, shipment, actor, now)

	logger.FromContext(ctx).Infow("shipment_status_updated",
		"shipment_id", shipment.ID,
		"from", previous,
		"to", status,
		"actor", actor,
	)
	return shipment, nil
}

// UpdateTracking 后台录入快递单号，备货中的发货单同时转为运输中
func (s *ShipmentService) UpdateTracking(ctx context.Context, input UpdateTrackingInput) (*models.Shipment, error) {
	tracking := strings.TrimSpace(input.TrackingNumber)
	if tracking == "" {
		return nil, ErrTrackingNumberRequired
	}
	shipment, err := s.Get(input.ShipmentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	status, _ := constants.NormalizeShipmentStatus(shipment.Status)
	if status == constants.ShipmentStatusPreparing {
		status = constants.ShipmentStatusInTransit
	}
	if status == "" {
		status = shipment.Status
	}
	notes := strings.TrimSpace(input.Notes)
	updates := map[string]interface{}{
		"tracking_number": tracking,
		"status":          status,
		"updated_at":      now,
	}
	if notes != "" {
		updates["admin_notes"] = notes
	}
	message := fmt.Sprintf("Tracking number set to %s", tracking)
	if notes != "" {
		message = message + ": " + notes
	}

	if err := s.updateWithLog(shipment.ID, updates, status, message, constants.ActorAdmin); err != nil {
		return nil, err
	}

	statusChanged := shipment.Status != status
	shipment.TrackingNumber = tracking
	shipment.Status = status
	if notes != "" {
		shipment.AdminNotes = notes
	}
	shipment.UpdatedAt = now
	s.invalidate(ctx)
	if statusChanged {
		s.notify(ctx, shipment, constants.ActorAdmin, now)
	}

	logger.FromContext(ctx).Infow("shipment_tracking_updated",
		"shipment_id", shipment.ID,
		"tracking_number", tracking,
		"status", status,
	)
	return shipment, nil
}

// updateWithLog 字段更新与审计日志在同一事务中写入
func (s *ShipmentService) updateWithLog(id uint, updates map[string]interface{}, status, message, actor string) error {
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.shipmentRepo.WithTx(tx).Updates(id, updates); err != nil {
			return err
		}
		return s.logRepo.WithTx(tx).Create(&models.ShipmentLog{
			ShipmentID: id,
			Status:     status,
			Message:    message,
			Actor:      actor,
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShipmentNotFound
		}
		return storeError("update shipment", err)
	}
	return nil
}

// Delete 先写删除日志再删除发货单；日志写入失败时不删除
func (s *ShipmentService) Delete(ctx context.Context, id uint, actor string) error {
	shipment, err := s.Get(id)
	if err != nil {
		return err
	}
	status, _ := constants.NormalizeShipmentStatus(shipment.Status)
	if status != constants.ShipmentStatusCancelled && status != constants.ShipmentStatusPreparing {
		return ErrShipmentDeleteNotAllowed
	}

	actor = normalizeActor(actor)
	if err := s.logRepo.Create(&models.ShipmentLog{
		ShipmentID: shipment.ID,
		Status:     shipment.Status,
		Message:    fmt.Sprintf("Shipment %s deleted", shipment.ShipmentNumber),
		Actor:      actor,
	}); err != nil {
		return storeError("append shipment log", err)
	}
	if err := s.shipmentRepo.Delete(shipment.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShipmentNotFound
		}
		return storeError("delete shipment", err)
	}
	s.invalidate(ctx)

	logger.FromContext(ctx).Infow("shipment_deleted",
		"shipment_id", shipment.ID,
		"shipment_number", shipment.ShipmentNumber,
		"actor", actor,
	)
	return nil
}

// Get 获取发货单
func (s *ShipmentService) Get(id uint) (*models.Shipment, error) {
	shipment, err := s.shipmentRepo.GetByID(id)
	if err != nil {
		return nil, storeError("load shipment", err)
	}
	if shipment == nil {
		return nil, ErrShipmentNotFound
	}
	return shipment, nil
}

// GetByShipmentNumber 按发货单号查询
func (s *ShipmentService) GetByShipmentNumber(number string) (*models.Shipment, error) {
	shipment, err := s.shipmentRepo.GetByShipmentNumber(number)
	if err != nil {
		return nil, storeError("load shipment", err)
	}
	if shipment == nil {
		return nil, ErrShipmentNotFound
	}
	return shipment, nil
}

// GetByTrackingNumber 按快递单号查询
func (s *ShipmentService) GetByTrackingNumber(trackingNumber string) (*models.Shipment, error) {
	shipment, err := s.shipmentRepo.GetByTrackingNumber(trackingNumber)
	if err != nil {
		return nil, storeError("load shipment", err)
	}
	if shipment == nil {
		return nil, ErrShipmentNotFound
	}
	return shipment, nil
}

// List 发货单列表，状态筛选接受两套词表
func (s *ShipmentService) List(filter repository.ShipmentListFilter) ([]models.Shipment, int64, error) {
	if filter.Status != "" {
		status, ok := constants.NormalizeShipmentStatus(filter.Status)
		if !ok {
			return nil, 0, ErrShipmentStatusInvalid
		}
		filter.Status = status
	}
	shipments, total, err := s.shipmentRepo.List(filter)
	if err != nil {
		return nil, 0, storeError("list shipments", err)
	}
	return shipments, total, nil
}

// ListByReseller 分销商的全部发货单
func (s *ShipmentService) ListByReseller(resellerID uint) ([]models.Shipment, error) {
	shipments, _, err := s.shipmentRepo.List(repository.ShipmentListFilter{ResellerID: resellerID})
	if err != nil {
		return nil, storeError("list shipments", err)
	}
	return shipments, nil
}

// ListLogs 发货单审计日志（发货单删除后仍可查询）
func (s *ShipmentService) ListLogs(shipmentID uint) ([]models.ShipmentLog, error) {
	logs, err := s.logRepo.ListByShipmentID(shipmentID)
	if err != nil {
		return nil, storeError("list shipment logs", err)
	}
	return logs, nil
}

func (s *ShipmentService) notify(ctx context.Context, shipment *models.Shipment, actor string, at time.Time) {
	if s.notifier == nil || !s.cfg.NotifyOnStatusChange {
		return
	}
	err := s.notifier.EnqueueShipmentStatusNotify(queue.ShipmentStatusNotifyPayload{
		ShipmentID:     shipment.ID,
		ShipmentNumber: shipment.ShipmentNumber,
		OrderNumber:    shipment.OrderNumber,
		ResellerID:     shipment.ResellerID,
		ResellerEmail:  shipment.ResellerEmail,
		Status:         shipment.Status,
		Actor:          actor,
		OccurredAt:     at,
	})
	if err != nil {
		logger.FromContext(ctx).Warnw("shipment_enqueue_status_notify_failed",
			"shipment_id", shipment.ID,
			"status", shipment.Status,
			"error", err,
		)
	}
}

func (s *ShipmentService) invalidate(ctx context.Context) {
	if s.stats != nil {
		s.stats.Invalidate(ctx, queue.StatsScopeShipments)
	}
}

func normalizeActor(actor string) string {
	if strings.TrimSpace(actor) == constants.ActorAdmin {
		return constants.ActorAdmin
	}
	return constants.ActorSystem
}
