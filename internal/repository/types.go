package repository

import "time"

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	Status        string
	PaymentStatus string
	ResellerID    uint
	Keyword       string // 订单号 / 分销商名称 / 分销商邮箱
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// ShipmentListFilter 查询发货单列表的过滤条件
type ShipmentListFilter struct {
	Page       int
	PageSize   int
	Status     string
	Courier    string
	OrderID    uint
	ResellerID uint
	Keyword    string // 发货单号 / 快递单号 / 订单号 / 分销商 / 收件人
}
