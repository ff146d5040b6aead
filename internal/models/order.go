package models

import (
	"time"

	"github.com/reseller-hub/internal/constants"
)

// Order 分销商订单表
type Order struct {
	ID              uint             `gorm:"primarykey" json:"id"`                                          // 主键
	OrderNumber     string           `gorm:"index;not null" json:"order_number"`                            // 展示用订单号（不保证唯一）
	ResellerID      uint             `gorm:"index;not null" json:"reseller_id"`                             // 分销商ID
	ResellerName    string           `gorm:"type:varchar(120)" json:"reseller_name"`                        // 分销商名称
	ResellerEmail   string           `gorm:"type:varchar(191);index" json:"reseller_email"`                 // 分销商邮箱
	ResellerPhone   string           `gorm:"type:varchar(40)" json:"reseller_phone"`                        // 分销商电话
	TotalAmount     Money            `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`     // 订单金额
	TotalCommission *Money           `gorm:"type:decimal(20,2)" json:"total_commission,omitempty"`          // 佣金（可选）
	ShippingAddress *ShippingAddress `gorm:"type:text" json:"shipping_address,omitempty"`                   // 收货地址
	PaymentMethod   string           `gorm:"type:varchar(60)" json:"payment_method"`                        // 支付方式
	PaymentProofURL string           `gorm:"type:varchar(500)" json:"payment_proof_url,omitempty"`          // 支付凭证
	TrackingNumber  string           `gorm:"type:varchar(120)" json:"tracking_number,omitempty"`            // 快递单号（发货后）
	AdminMessage    string           `gorm:"type:text" json:"admin_message,omitempty"`                      // 管理员备注（后写覆盖）
	Status          string           `gorm:"index;not null;default:'pending'" json:"order_status"`          // 订单状态
	PaymentStatus   string           `gorm:"index;not null;default:'waiting_payment'" json:"payment_status"` // 支付状态
	CreatedAt       time.Time        `gorm:"index;<-:create" json:"created_at"`                             // 创建时间
	UpdatedAt       time.Time        `gorm:"index" json:"updated_at"`                                       // 更新时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// IsEligibleForShipment 已确认或已付款的订单可创建发货单
func (o *Order) IsEligibleForShipment() bool {
	if o == nil {
		return false
	}
	return o.Status == constants.OrderStatusConfirmed || o.PaymentStatus == constants.PaymentStatusPaid
}
