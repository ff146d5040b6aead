package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Money 统一金额类型（保留 2 位小数）
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal 从 decimal 创建金额
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(2)}
}

// NewMoneyFromInt 从整数创建金额
func NewMoneyFromInt(amount int64) Money {
	return Money{Decimal: decimal.NewFromInt(amount)}
}

// MarshalJSON 统一输出 2 位小数的字符串
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.Round(2).StringFixed(2))
}

// UnmarshalJSON 解析金额（字符串或数字）
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		m.Decimal = d.Round(2)
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return err
	}
	m.Decimal = d.Round(2)
	return nil
}

// Value 用于数据库写入
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(2).Value()
}

// Scan 用于数据库读取
func (m *Money) Scan(value interface{}) error {
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(2)
	return nil
}

// String 返回 2 位小数格式
func (m Money) String() string {
	return m.Decimal.Round(2).StringFixed(2)
}

// Cost 运费金额，入参可能是数字也可能是货币格式字符串（如 "Rp 20.000"）
type Cost struct {
	decimal.Decimal
}

// NewCost 从整数创建运费
func NewCost(amount int64) Cost {
	return Cost{Decimal: decimal.NewFromInt(amount)}
}

// ParseCurrency 去掉所有非数字字符后解析，空串视为 0
func ParseCurrency(raw string) decimal.Decimal {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// MarshalJSON 输出数字，避免字符串回读时被当作货币格式
func (c Cost) MarshalJSON() ([]byte, error) {
	return []byte(c.Decimal.String()), nil
}

// UnmarshalJSON 数字按原值解析，字符串按货币格式解析
func (c *Cost) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		c.Decimal = ParseCurrency(s)
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return err
	}
	c.Decimal = d
	return nil
}

// Value 用于数据库写入
func (c Cost) Value() (driver.Value, error) {
	return c.Decimal.Value()
}

// Scan 用于数据库读取，兼容历史数据中以文本存储的货币字符串
func (c *Cost) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		c.Decimal = decimal.Zero
		return nil
	case string:
		return c.scanText(v)
	case []byte:
		return c.scanText(string(v))
	}
	return c.Decimal.Scan(value)
}

func (c *Cost) scanText(s string) error {
	if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
		c.Decimal = d
		return nil
	}
	c.Decimal = ParseCurrency(s)
	return nil
}
