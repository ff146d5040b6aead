package constants

// 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// 支付状态常量（与订单状态相互独立）
const (
	PaymentStatusWaitingPayment      = "waiting_payment"
	PaymentStatusWaitingVerification = "waiting_verification"
	PaymentStatusPaid                = "paid"
	PaymentStatusFailed              = "failed"
)

// 发货单状态常量（规范词表）
const (
	ShipmentStatusPreparing = "preparing"
	ShipmentStatusInTransit = "in_transit"
	ShipmentStatusDelivered = "delivered"
	ShipmentStatusReturned  = "returned"
	ShipmentStatusCancelled = "cancelled"
	ShipmentStatusFailed    = "failed"
)

// 通用发货流程的旧状态词表
const (
	LegacyShipmentStatusPending    = "pending"
	LegacyShipmentStatusProcessing = "processing"
	LegacyShipmentStatusProcessed  = "processed"
	LegacyShipmentStatusShipped    = "shipped"
)

// 审计操作者
const (
	ActorSystem = "system"
	ActorAdmin  = "admin"
)

// 订单后台操作
const (
	OrderActionViewDetail    = "view_detail"
	OrderActionVerifyPayment = "verify_payment"
	OrderActionUpdateStatus  = "update_status"
	OrderActionDelete        = "delete"
)

// 快递公司
const (
	CourierJNE     = "JNE"
	CourierJNT     = "JNT"
	CourierPOS     = "POS"
	CourierTIKI    = "TIKI"
	CourierSiCepat = "SiCepat"
)

// 快递服务类型
const (
	CourierServiceREG     = "REG"
	CourierServiceYES     = "YES"
	CourierServiceOKE     = "OKE"
	CourierServiceEXPRESS = "EXPRESS"
)

// 后台角色
const (
	RoleAdmin    = "admin"
	RoleReseller = "reseller"
)

// 异步任务类型
const (
	TaskShipmentStatusNotify = "shipment:status_notify"
	TaskStatsRefresh         = "stats:refresh"
)

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)
