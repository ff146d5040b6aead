package models

import (
	"time"
)

// OrderItem 订单项表
type OrderItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                    // 主键
	OrderID   uint      `gorm:"index;not null" json:"order_id"`                          // 订单ID
	Name      string    `gorm:"type:varchar(200);not null" json:"name"`                  // 商品名称快照
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`                      // 数量（>=1）
	UnitPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 单价（>=0）
	Weight    *float64  `json:"weight,omitempty"`                                        // 单件重量（kg，可选）
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
