package service

import (
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
)

// PriceRepair 一次价格自修复的前后值
type PriceRepair struct {
	CartID       uint
	CartItemID   uint
	ProductID    uint
	SKUID        uint
	OldUnitPrice models.Money
	NewUnitPrice models.Money
	OldTaxRate   models.Money
	NewTaxRate   models.Money
	Source       string
}

// NeedsPriceRepair 存储单价不大于 0 视为数据损坏
func NeedsPriceRepair(item *models.CartItem) bool {
	return item != nil && item.UnitPrice.Decimal.LessThanOrEqual(decimal.Zero)
}

// ResolveTaxRate 依次取已存税率、规格税率、默认税率中第一个大于 0 的值
func ResolveTaxRate(stored, variantRate, defaultRate decimal.Decimal) decimal.Decimal {
	if stored.GreaterThan(decimal.Zero) {
		return stored
	}
	if variantRate.GreaterThan(decimal.Zero) {
		return variantRate
	}
	if defaultRate.GreaterThan(decimal.Zero) {
		return defaultRate
	}
	return decimal.NewFromInt(constants.DefaultTaxRatePercent)
}

// RepairLineItemPrice 使用规格当前价格修复明细并重新拆分价格
func RepairLineItemPrice(item *models.CartItem, variant *VariantPrice, defaultTaxRate decimal.Decimal, source string) (*PriceRepair, error) {
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	if variant == nil {
		return nil, ErrPriceRepairFailed
	}
	price := variant.EffectivePrice()
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrPriceRepairFailed
	}
	repair := &PriceRepair{
		CartID:       item.CartID,
		CartItemID:   item.ID,
		ProductID:    item.ProductID,
		SKUID:        item.SKUID,
		OldUnitPrice: item.UnitPrice,
		OldTaxRate:   item.TaxRate,
		Source:       source,
	}
	rate := ResolveTaxRate(item.TaxRate.Decimal, variant.TaxRate, defaultTaxRate)
	PriceLineItem(price, rate, item.Quantity).ApplyTo(item)
	repair.NewUnitPrice = item.UnitPrice
	repair.NewTaxRate = item.TaxRate
	return repair, nil
}

// ClampQuantity 将数量限制在规格的 [min, max] 区间；max 为 0 表示不限制
func ClampQuantity(quantity, minQuantity, maxQuantity int) (int, string) {
	if minQuantity < 1 {
		minQuantity = 1
	}
	if quantity < minQuantity {
		return minQuantity, constants.AdjustReasonBelowMin
	}
	if maxQuantity > 0 && maxQuantity >= minQuantity && quantity > maxQuantity {
		return maxQuantity, constants.AdjustReasonAboveMax
	}
	return quantity, ""
}
