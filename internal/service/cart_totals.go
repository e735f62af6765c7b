package service

import (
	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LinePricing 单行价格拆分结果
type LinePricing struct {
	UnitPrice models.Money
	TaxRate   models.Money
	BasePrice models.Money
	TaxAmount models.Money
	LineTotal models.Money
}

// PriceLineItem 由含税单价与税率拆分出不含税单价、单件税额与行合计
func PriceLineItem(unitPrice, taxRate decimal.Decimal, quantity int) LinePricing {
	price := unitPrice.Round(2)
	rate := taxRate.Round(2)
	base := price
	if rate.GreaterThan(decimal.Zero) {
		base = price.Div(decimal.NewFromInt(1).Add(rate.Div(hundred))).Round(2)
	}
	tax := price.Sub(base)
	return LinePricing{
		UnitPrice: models.NewMoneyFromDecimal(price),
		TaxRate:   models.NewMoneyFromDecimal(rate),
		BasePrice: models.NewMoneyFromDecimal(base),
		TaxAmount: models.NewMoneyFromDecimal(tax),
		LineTotal: models.NewMoneyFromDecimal(price.Mul(decimal.NewFromInt(int64(quantity)))),
	}
}

// ApplyTo 写入购物车明细
func (p LinePricing) ApplyTo(item *models.CartItem) {
	if item == nil {
		return
	}
	item.UnitPrice = p.UnitPrice
	item.TaxRate = p.TaxRate
	item.BasePrice = p.BasePrice
	item.TaxAmount = p.TaxAmount
	item.LineTotal = p.LineTotal
}

// CartTotals 购物车汇总金额
type CartTotals struct {
	BaseAmount          models.Money `json:"base_amount"`
	TaxAmount           models.Money `json:"tax_amount"`
	Subtotal            models.Money `json:"subtotal"`
	DiscountAmount      models.Money `json:"discount_amount"`
	TotalBeforeRoundoff models.Money `json:"total_before_roundoff"`
	Roundoff            models.Money `json:"roundoff"`
	FinalTotal          models.Money `json:"final_total"`
}

// CalculateCartTotals 计算购物车汇总；无明细时全部为 0
func CalculateCartTotals(items []models.CartItem, discount decimal.Decimal) CartTotals {
	zero := models.NewMoneyFromDecimal(decimal.Zero)
	if len(items) == 0 {
		return CartTotals{
			BaseAmount:          zero,
			TaxAmount:           zero,
			Subtotal:            zero,
			DiscountAmount:      zero,
			TotalBeforeRoundoff: zero,
			Roundoff:            zero,
			FinalTotal:          zero,
		}
	}

	base := decimal.Zero
	tax := decimal.Zero
	subtotal := decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		base = base.Add(item.BasePrice.Decimal.Mul(qty))
		tax = tax.Add(item.TaxAmount.Decimal.Mul(qty))
		subtotal = subtotal.Add(item.LineTotal.Decimal)
	}

	discount = discount.Round(2)
	if discount.LessThan(decimal.Zero) {
		discount = decimal.Zero
	}
	before := subtotal.Sub(discount).Round(2)
	final := before.Round(0)

	return CartTotals{
		BaseAmount:          models.NewMoneyFromDecimal(base),
		TaxAmount:           models.NewMoneyFromDecimal(tax),
		Subtotal:            models.NewMoneyFromDecimal(subtotal),
		DiscountAmount:      models.NewMoneyFromDecimal(discount),
		TotalBeforeRoundoff: models.NewMoneyFromDecimal(before),
		Roundoff:            models.NewMoneyFromDecimal(final.Sub(before)),
		FinalTotal:          models.NewMoneyFromDecimal(final),
	}
}

// ApplyTo 写入购物车表头
func (t CartTotals) ApplyTo(cart *models.Cart) {
	if cart == nil {
		return
	}
	cart.BaseAmount = t.BaseAmount
	cart.TaxAmount = t.TaxAmount
	cart.Subtotal = t.Subtotal
	cart.Roundoff = t.Roundoff
	cart.FinalTotal = t.FinalTotal
}
