package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/reseller-hub/internal/constants"
	"github.com/reseller-hub/internal/models"

	"github.com/shopspring/decimal"
)

// CreateShipmentInput 从订单创建发货单的输入
type CreateShipmentInput struct {
	OrderID           uint
	Courier           string
	Service           string
	Cost              models.Cost
	EstimatedDays     string
	EstimatedDelivery *time.Time
	TrackingNumber    string
	Notes             string
	Actor             string
}

// shipmentDefaults 派生发货单时使用的默认值
type shipmentDefaults struct {
	Courier    string
	Service    string
	ItemWeight float64
}

// CalculateTotalWeight 累加 单件重量 × 数量，未填写重量的商品按默认重量计算
func CalculateTotalWeight(items []models.OrderItem, defaultWeight float64) float64 {
	total := decimal.Zero
	fallback := decimal.NewFromFloat(defaultWeight)
	for _, item := range items {
		weight := fallback
		if item.Weight != nil {
			weight = decimal.NewFromFloat(*item.Weight)
		}
		total = total.Add(weight.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	result, _ := total.Round(3).Float64()
	return result
}

// snapshotAddress 按值复制订单收货地址；缺失收件人信息时回退到分销商名称与电话
func snapshotAddress(order *models.Order) models.ShippingAddress {
	var addr models.ShippingAddress
	if order.ShippingAddress != nil {
		addr = *order.ShippingAddress
	}
	if strings.TrimSpace(addr.RecipientName) == "" {
		addr.RecipientName = order.ResellerName
	}
	if strings.TrimSpace(addr.Phone) == "" {
		addr.Phone = order.ResellerPhone
	}
	return addr
}

func countItems(items []models.OrderItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

// buildShipmentFromOrder 根据订单与快递信息构建发货单，不修改订单本身
func buildShipmentFromOrder(order *models.Order, input CreateShipmentInput, defaults shipmentDefaults) *models.Shipment {
	addr := snapshotAddress(order)
	courier := strings.TrimSpace(input.Courier)
	if courier == "" {
		courier = defaults.Courier
	}
	service := strings.TrimSpace(input.Service)
	if service == "" {
		service = defaults.Service
	}
	return &models.Shipment{
		TrackingNumber:    strings.TrimSpace(input.TrackingNumber),
		OrderID:           order.ID,
		OrderNumber:       order.OrderNumber,
		ResellerID:        order.ResellerID,
		ResellerName:      order.ResellerName,
		ResellerEmail:     order.ResellerEmail,
		ResellerPhone:     order.ResellerPhone,
		ShippingAddress:   addr,
		AddressLine:       addr.Line(),
		ItemCount:         countItems(order.Items),
		TotalWeight:       CalculateTotalWeight(order.Items, defaults.ItemWeight),
		Courier:           courier,
		Service:           service,
		Cost:              input.Cost,
		EstimatedDays:     strings.TrimSpace(input.EstimatedDays),
		EstimatedDelivery: input.EstimatedDelivery,
		Status:            constants.ShipmentStatusPreparing,
		Notes:             strings.TrimSpace(input.Notes),
	}
}

// generateShipmentNo 前缀 + 秒级时间 + 6 位随机数字
func generateShipmentNo(prefix string, now time.Time) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "SHP"
	}
	return fmt.Sprintf("%s%s%s", prefix, now.Format("20060102150405"), randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(n.String())
	}
	return b.String()
}
