package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ShippingAddress 收货地址（值类型，发货单创建时按值复制）
type ShippingAddress struct {
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	Street        string `json:"street"`
	City          string `json:"city"`
	Province      string `json:"province"`
	PostalCode    string `json:"postal_code"`
}

// IsZero 是否未填写任何字段
func (a ShippingAddress) IsZero() bool {
	return a == ShippingAddress{}
}

// Line 单行地址：街道、城市、省份、邮编中非空部分以逗号拼接
func (a ShippingAddress) Line() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Street, a.City, a.Province, a.PostalCode} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// Value 实现 driver.Valuer 接口
func (a ShippingAddress) Value() (driver.Value, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan 实现 sql.Scanner 接口
func (a *ShippingAddress) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*a = ShippingAddress{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported shipping address type %T", value)
	}
	if len(raw) == 0 {
		*a = ShippingAddress{}
		return nil
	}
	return json.Unmarshal(raw, a)
}
