package repository

import (
	"errors"

	"github.com/reseller-hub/internal/constants"
	"github.com/reseller-hub/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	ListEligibleForShipment(limit int) ([]models.Order, error)
	ListForStats() ([]models.Order, error)
	Updates(id uint, updates map[string]interface{}) error
	UpdatesIfStatus(id uint, expectedStatus string, updates map[string]interface{}) (bool, error)
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		order.Items = items
		return nil
	})
}

// GetByID 根据 ID 获取订单（含订单项），不存在返回 nil
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListAdmin 后台订单列表
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.ResellerID != 0 {
		query = query.Where("reseller_id = ?", filter.ResellerID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	query = applyKeyword(query, filter.Keyword, []string{"order_number", "reseller_name", "reseller_email"}, nil)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := newestFirst(query.Preload("Items")).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListEligibleForShipment 已确认或已付款的订单，供创建发货单时选择
func (r *GormOrderRepository) ListEligibleForShipment(limit int) ([]models.Order, error) {
	query := r.db.Model(&models.Order{}).
		Where("status = ? OR payment_status = ?", constants.OrderStatusConfirmed, constants.PaymentStatusPaid)
	if limit > 0 {
		query = query.Limit(limit)
	}
	var orders []models.Order
	if err := newestFirst(query.Preload("Items")).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListForStats 全量扫描订单状态字段
func (r *GormOrderRepository) ListForStats() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Model(&models.Order{}).
		Select("id", "status", "payment_status", "created_at").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Updates 单条 UPDATE 语句更新多个字段，记录不存在返回 gorm.ErrRecordNotFound
func (r *GormOrderRepository) Updates(id uint, updates map[string]interface{}) error {
	result := r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdatesIfStatus 仅当订单仍处于 expectedStatus 时更新，返回是否命中
func (r *GormOrderRepository) UpdatesIfStatus(id uint, expectedStatus string, updates map[string]interface{}) (bool, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete 物理删除订单及订单项
func (r *GormOrderRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Order{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
