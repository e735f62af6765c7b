package repository

import (
	"errors"
	"time"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartItemRepository 购物车明细数据访问接口
type CartItemRepository interface {
	ListByCart(cartID uint) ([]models.CartItem, error)
	GetItem(cartID, itemID uint) (*models.CartItem, error)
	GetItemByProductSKU(cartID, productID, skuID uint) (*models.CartItem, error)
	UpsertItem(item *models.CartItem) (*models.CartItem, error)
	SetQuantity(itemID uint, quantity int) error
	UpdatePricing(item *models.CartItem) error
	DeleteItem(cartID, itemID uint) error
	DeleteItemByProductSKU(cartID, productID, skuID uint) error
	WithTx(tx *gorm.DB) CartItemRepository
}

// GormCartItemRepository GORM 实现
type GormCartItemRepository struct {
	db *gorm.DB
}

// NewCartItemRepository 创建购物车明细仓库
func NewCartItemRepository(db *gorm.DB) *GormCartItemRepository {
	return &GormCartItemRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartItemRepository) WithTx(tx *gorm.DB) CartItemRepository {
	if tx == nil {
		return r
	}
	return &GormCartItemRepository{db: tx}
}

// ListByCart 获取购物车全部明细
func (r *GormCartItemRepository) ListByCart(cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Where("cart_id = ?", cartID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem 按明细 ID 获取（限定购物车）
func (r *GormCartItemRepository) GetItem(cartID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Where("id = ? AND cart_id = ?", itemID, cartID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetItemByProductSKU 按商品与规格获取明细
func (r *GormCartItemRepository) GetItemByProductSKU(cartID, productID, skuID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("cart_id = ? AND product_id = ? AND sku_id = ?", cartID, productID, skuID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// UpsertItem 单条语句插入明细，已存在时累加数量并刷新价格字段
func (r *GormCartItemRepository) UpsertItem(item *models.CartItem) (*models.CartItem, error) {
	if item == nil || item.CartID == 0 || item.Quantity <= 0 {
		return nil, errors.New("invalid cart item")
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}, {Name: "sku_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"unit_price": gorm.Expr("excluded.unit_price"),
			"tax_rate":   gorm.Expr("excluded.tax_rate"),
			"base_price": gorm.Expr("excluded.base_price"),
			"tax_amount": gorm.Expr("excluded.tax_amount"),
			"line_total": gorm.Expr("excluded.line_total"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(item).Error
	if err != nil {
		return nil, err
	}
	stored, err := r.GetItemByProductSKU(item.CartID, item.ProductID, item.SKUID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrNotFound
	}
	return stored, nil
}

// SetQuantity 覆盖明细数量
func (r *GormCartItemRepository) SetQuantity(itemID uint, quantity int) error {
	result := r.db.Model(&models.CartItem{}).Where("id = ?", itemID).Updates(map[string]interface{}{
		"quantity":   quantity,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePricing 写入价格相关字段（含数量与行合计）
func (r *GormCartItemRepository) UpdatePricing(item *models.CartItem) error {
	if item == nil || item.ID == 0 {
		return errors.New("invalid cart item")
	}
	result := r.db.Model(&models.CartItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
		"quantity":   item.Quantity,
		"unit_price": item.UnitPrice,
		"tax_rate":   item.TaxRate,
		"base_price": item.BasePrice,
		"tax_amount": item.TaxAmount,
		"line_total": item.LineTotal,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteItem 按明细 ID 删除
func (r *GormCartItemRepository) DeleteItem(cartID, itemID uint) error {
	result := r.db.Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&models.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteItemByProductSKU 按商品与规格删除
func (r *GormCartItemRepository) DeleteItemByProductSKU(cartID, productID, skuID uint) error {
	result := r.db.Where("cart_id = ? AND product_id = ? AND sku_id = ?", cartID, productID, skuID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
