package repository

import (
	"errors"
	"strings"

	"github.com/reseller-hub/internal/models"

	"gorm.io/gorm"
)

// ShipmentRepository 发货单数据访问接口
type ShipmentRepository interface {
	Create(shipment *models.Shipment) error
	GetByID(id uint) (*models.Shipment, error)
	GetByShipmentNumber(number string) (*models.Shipment, error)
	GetByTrackingNumber(trackingNumber string) (*models.Shipment, error)
	List(filter ShipmentListFilter) ([]models.Shipment, int64, error)
	ListByOrderID(orderID uint) ([]models.Shipment, error)
	ListForStats() ([]models.Shipment, error)
	Updates(id uint, updates map[string]interface{}) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormShipmentRepository
}

// GormShipmentRepository GORM 实现
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewShipmentRepository 创建发货单仓库
func NewShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormShipmentRepository) WithTx(tx *gorm.DB) *GormShipmentRepository {
	if tx == nil {
		return r
	}
	return &GormShipmentRepository{db: tx}
}

// Create 创建发货单
func (r *GormShipmentRepository) Create(shipment *models.Shipment) error {
	return r.db.Create(shipment).Error
}

// GetByID 根据 ID 获取发货单
func (r *GormShipmentRepository) GetByID(id uint) (*models.Shipment, error) {
	return r.first(r.db.Where("id = ?", id))
}

// GetByShipmentNumber 根据发货单号获取
func (r *GormShipmentRepository) GetByShipmentNumber(number string) (*models.Shipment, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, nil
	}
	return r.first(r.db.Where("shipment_number = ?", number))
}

// GetByTrackingNumber 根据快递单号获取（同号多条时取最新）
func (r *GormShipmentRepository) GetByTrackingNumber(trackingNumber string) (*models.Shipment, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, nil
	}
	return r.first(newestFirst(r.db.Where("tracking_number = ?", trackingNumber)))
}

func (r *GormShipmentRepository) first(query *gorm.DB) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := query.First(&shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// List 发货单列表
func (r *GormShipmentRepository) List(filter ShipmentListFilter) ([]models.Shipment, int64, error) {
	query := r.db.Model(&models.Shipment{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Courier != "" {
		query = query.Where("courier = ?", filter.Courier)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.ResellerID != 0 {
		query = query.Where("reseller_id = ?", filter.ResellerID)
	}
	query = applyKeyword(query, filter.Keyword,
		[]string{"shipment_number", "tracking_number", "order_number", "reseller_name"},
		map[string][]string{"shipping_address": {"recipient_name", "city"}},
	)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var shipments []models.Shipment
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := newestFirst(query).Find(&shipments).Error; err != nil {
		return nil, 0, err
	}
	return shipments, total, nil
}

// ListByOrderID 获取订单下的全部发货单
func (r *GormShipmentRepository) ListByOrderID(orderID uint) ([]models.Shipment, error) {
	var shipments []models.Shipment
	if err := newestFirst(r.db.Where("order_id = ?", orderID)).Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// ListForStats 全量扫描统计所需字段
func (r *GormShipmentRepository) ListForStats() ([]models.Shipment, error) {
	var shipments []models.Shipment
	if err := r.db.Model(&models.Shipment{}).
		Select("id", "status", "courier", "cost", "estimated_delivery", "actual_delivery", "created_at").
		Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// Updates 部分字段更新，记录不存在返回 gorm.ErrRecordNotFound
func (r *GormShipmentRepository) Updates(id uint, updates map[string]interface{}) error {
	result := r.db.Model(&models.Shipment{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 物理删除发货单（审计日志保留）
func (r *GormShipmentRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Shipment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
