package models

import (
	"time"
)

// Shipment 发货单表
type Shipment struct {
	ID                uint            `gorm:"primarykey" json:"id"`                                 // 主键
	ShipmentNumber    string          `gorm:"uniqueIndex;not null" json:"shipment_number"`          // 发货单号
	TrackingNumber    string          `gorm:"type:varchar(120);index" json:"tracking_number"`       // 快递单号
	OrderID           uint            `gorm:"index;not null" json:"order_id"`                       // 来源订单ID
	OrderNumber       string          `gorm:"type:varchar(64)" json:"order_number"`                 // 来源订单号
	ResellerID        uint            `gorm:"index" json:"reseller_id"`                             // 分销商ID快照
	ResellerName      string          `gorm:"type:varchar(120)" json:"reseller_name"`               // 分销商名称快照
	ResellerEmail     string          `gorm:"type:varchar(191)" json:"reseller_email"`              // 分销商邮箱快照
	ResellerPhone     string          `gorm:"type:varchar(40)" json:"reseller_phone"`               // 分销商电话快照
	ShippingAddress   ShippingAddress `gorm:"type:text" json:"shipping_address"`                    // 收货地址快照
	AddressLine       string          `gorm:"type:varchar(500)" json:"address_line"`                // 单行地址
	ItemCount         int             `gorm:"not null;default:0" json:"item_count"`                 // 件数
	TotalWeight       float64         `gorm:"not null;default:0" json:"total_weight"`               // 总重量（kg）
	Courier           string          `gorm:"type:varchar(40);index" json:"courier"`                // 快递公司
	Service           string          `gorm:"type:varchar(40)" json:"service"`                      // 服务类型
	Cost              Cost            `gorm:"type:decimal(20,2);not null;default:0" json:"cost"`    // 运费
	EstimatedDays     string          `gorm:"type:varchar(60)" json:"estimated_days,omitempty"`     // 预计时效（自由文本）
	EstimatedDelivery *time.Time      `json:"estimated_delivery,omitempty"`                         // 预计送达时间
	ActualDelivery    *time.Time      `json:"actual_delivery,omitempty"`                            // 实际送达时间
	Status            string          `gorm:"index;not null;default:'preparing'" json:"status"`     // 发货状态
	Notes             string          `gorm:"type:text" json:"notes,omitempty"`                     // 创建备注
	AdminNotes        string          `gorm:"type:text" json:"admin_notes,omitempty"`               // 最近一次状态备注
	CreatedAt         time.Time       `gorm:"index;<-:create" json:"created_at"`                    // 创建时间
	UpdatedAt         time.Time       `gorm:"index" json:"updated_at"`                              // 更新时间
}

// TableName 指定表名
func (Shipment) TableName() string {
	return "shipments"
}

// ShipmentLog 发货审计日志表（只追加）
type ShipmentLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`                     // 主键
	ShipmentID uint      `gorm:"index;not null" json:"shipment_id"`        // 发货单ID（不加外键，删除记录需保留）
	Status     string    `gorm:"type:varchar(40);not null" json:"status"`  // 记录时的状态
	Message    string    `gorm:"type:text" json:"message"`                 // 备注
	Actor      string    `gorm:"type:varchar(40);not null" json:"actor"`   // 操作者
	CreatedAt  time.Time `gorm:"index;<-:create" json:"timestamp"`         // 记录时间
}

// TableName 指定表名
func (ShipmentLog) TableName() string {
	return "shipment_logs"
}
