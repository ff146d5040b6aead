package repository

import (
	"github.com/reseller-hub/internal/models"

	"gorm.io/gorm"
)

// ShipmentLogRepository 发货审计日志访问接口（只追加，无更新与删除）
type ShipmentLogRepository interface {
	Create(log *models.ShipmentLog) error
	ListByShipmentID(shipmentID uint) ([]models.ShipmentLog, error)
	WithTx(tx *gorm.DB) *GormShipmentLogRepository
}

// GormShipmentLogRepository GORM 实现
type GormShipmentLogRepository struct {
	db *gorm.DB
}

// NewShipmentLogRepository 创建审计日志仓库
func NewShipmentLogRepository(db *gorm.DB) *GormShipmentLogRepository {
	return &GormShipmentLogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormShipmentLogRepository) WithTx(tx *gorm.DB) *GormShipmentLogRepository {
	if tx == nil {
		return r
	}
	return &GormShipmentLogRepository{db: tx}
}

// Create 追加一条日志
func (r *GormShipmentLogRepository) Create(log *models.ShipmentLog) error {
	return r.db.Create(log).Error
}

// ListByShipmentID 按时间倒序获取发货单日志
func (r *GormShipmentLogRepository) ListByShipmentID(shipmentID uint) ([]models.ShipmentLog, error) {
	var logs []models.ShipmentLog
	if err := newestFirst(r.db.Where("shipment_id = ?", shipmentID)).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
