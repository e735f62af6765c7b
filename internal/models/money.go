package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

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

// MustMoney 从字符串创建金额，仅用于常量、种子数据与测试
func MustMoney(value string) Money {
	return NewMoneyFromDecimal(decimal.RequireFromString(value))
}

// MarshalJSON 统一输出 2 位小数的字符串
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.Round(2).StringFixed(2))
}

// UnmarshalJSON 解析金额（字符串或数字）
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	d, err := parseJSONDecimal(b)
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

// NullMoney 可空金额，用于“未设置”需要与 0 区分的字段
type NullMoney struct {
	Money Money
	Valid bool
}

// NewNullMoney 创建有效的可空金额
func NewNullMoney(amount decimal.Decimal) NullMoney {
	return NullMoney{Money: NewMoneyFromDecimal(amount), Valid: true}
}

// Decimal 返回金额，无效时返回 0
func (n NullMoney) Decimal() decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return n.Money.Decimal
}

// MarshalJSON 无效时输出 null
func (n NullMoney) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return n.Money.MarshalJSON()
}

// UnmarshalJSON 解析可空金额
func (n *NullMoney) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*n = NullMoney{}
		return nil
	}
	if err := n.Money.UnmarshalJSON(b); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Value 用于数据库写入
func (n NullMoney) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Money.Value()
}

// Scan 用于数据库读取
func (n *NullMoney) Scan(value interface{}) error {
	var nd decimal.NullDecimal
	if err := nd.Scan(value); err != nil {
		return err
	}
	if !nd.Valid {
		*n = NullMoney{}
		return nil
	}
	*n = NewNullMoney(nd.Decimal)
	return nil
}

func parseJSONDecimal(b []byte) (decimal.Decimal, error) {
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return decimal.Zero, err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid money %q: %w", s, err)
		}
		return d, nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(f), nil
}
