package service

import (
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VariantPrice 规格当前价格与购买数量区间
type VariantPrice struct {
	ProductID   uint
	SKUID       uint
	Price       decimal.Decimal
	SalePrice   *decimal.Decimal
	TaxRate     decimal.Decimal
	MinQuantity int
	MaxQuantity int
	Active      bool
}

// EffectivePrice 有效含税单价：促销价大于 0 时优先
func (v *VariantPrice) EffectivePrice() decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	if v.SalePrice != nil && v.SalePrice.GreaterThan(decimal.Zero) {
		return *v.SalePrice
	}
	return v.Price
}

// VariantPriceLookup 规格价格查询；不存在时返回 nil, nil
type VariantPriceLookup interface {
	GetVariant(productID, skuID uint) (*VariantPrice, error)
}

// txVariantPriceLookup 支持绑定事务的查询实现
type txVariantPriceLookup interface {
	WithTx(tx *gorm.DB) VariantPriceLookup
}

func variantLookupWithTx(lookup VariantPriceLookup, tx *gorm.DB) VariantPriceLookup {
	if bound, ok := lookup.(txVariantPriceLookup); ok && tx != nil {
		return bound.WithTx(tx)
	}
	return lookup
}

// CatalogVariantLookup 基于商品 SKU 表的规格价格查询
type CatalogVariantLookup struct {
	skuRepo repository.ProductSKURepository
}

// NewCatalogVariantLookup 创建规格价格查询
func NewCatalogVariantLookup(skuRepo repository.ProductSKURepository) *CatalogVariantLookup {
	return &CatalogVariantLookup{skuRepo: skuRepo}
}

// WithTx 绑定事务
func (l *CatalogVariantLookup) WithTx(tx *gorm.DB) VariantPriceLookup {
	return &CatalogVariantLookup{skuRepo: l.skuRepo.WithTx(tx)}
}

// GetVariant 获取规格价格
func (l *CatalogVariantLookup) GetVariant(productID, skuID uint) (*VariantPrice, error) {
	if productID == 0 || skuID == 0 {
		return nil, nil
	}
	sku, err := l.skuRepo.GetByProductAndID(productID, skuID)
	if err != nil {
		return nil, err
	}
	if sku == nil || sku.Product == nil {
		return nil, nil
	}
	variant := &VariantPrice{
		ProductID:   sku.ProductID,
		SKUID:       sku.ID,
		Price:       sku.PriceAmount.Decimal,
		TaxRate:     sku.TaxRate.Decimal,
		MinQuantity: sku.MinQuantity,
		MaxQuantity: sku.MaxQuantity,
		Active:      sku.IsActive && sku.Product.IsActive,
	}
	if sku.SalePriceAmount.Valid {
		sale := sku.SalePriceAmount.Decimal()
		variant.SalePrice = &sale
	}
	return variant, nil
}
