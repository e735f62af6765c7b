package repository

import (
	"errors"
	"strings"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// ProductSKURepository 商品 SKU 数据访问接口
type ProductSKURepository interface {
	GetByID(id uint) (*models.ProductSKU, error)
	GetByProductAndID(productID, skuID uint) (*models.ProductSKU, error)
	GetByProductAndCode(productID uint, skuCode string) (*models.ProductSKU, error)
	ListByProduct(productID uint, onlyActive bool) ([]models.ProductSKU, error)
	Create(item *models.ProductSKU) error
	Update(item *models.ProductSKU) error
	WithTx(tx *gorm.DB) ProductSKURepository
}

// GormProductSKURepository GORM 实现
type GormProductSKURepository struct {
	db *gorm.DB
}

// NewProductSKURepository 创建 SKU 仓库
func NewProductSKURepository(db *gorm.DB) *GormProductSKURepository {
	return &GormProductSKURepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductSKURepository) WithTx(tx *gorm.DB) ProductSKURepository {
	if tx == nil {
		return r
	}
	return &GormProductSKURepository{db: tx}
}

// GetByID 根据 ID 获取 SKU
func (r *GormProductSKURepository) GetByID(id uint) (*models.ProductSKU, error) {
	if id == 0 {
		return nil, errors.New("invalid sku id")
	}
	var item models.ProductSKU
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetByProductAndID 按商品与 SKU ID 获取，并预加载商品
func (r *GormProductSKURepository) GetByProductAndID(productID, skuID uint) (*models.ProductSKU, error) {
	if productID == 0 || skuID == 0 {
		return nil, errors.New("invalid product or sku id")
	}
	var item models.ProductSKU
	err := r.db.Preload("Product").
		Where("id = ? AND product_id = ?", skuID, productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetByProductAndCode 按商品和编码获取 SKU
func (r *GormProductSKURepository) GetByProductAndCode(productID uint, skuCode string) (*models.ProductSKU, error) {
	if productID == 0 {
		return nil, errors.New("invalid product id")
	}
	code := strings.TrimSpace(skuCode)
	if code == "" {
		return nil, errors.New("invalid sku code")
	}

	var item models.ProductSKU
	if err := r.db.Where("product_id = ? AND sku_code = ?", productID, code).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListByProduct 根据商品获取 SKU 列表
func (r *GormProductSKURepository) ListByProduct(productID uint, onlyActive bool) ([]models.ProductSKU, error) {
	if productID == 0 {
		return nil, errors.New("invalid product id")
	}
	query := r.db.Model(&models.ProductSKU{}).Where("product_id = ?", productID)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var items []models.ProductSKU
	if err := query.Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create 创建 SKU
func (r *GormProductSKURepository) Create(item *models.ProductSKU) error {
	if item == nil {
		return errors.New("sku is nil")
	}
	return r.db.Create(item).Error
}

// Update 更新 SKU
func (r *GormProductSKURepository) Update(item *models.ProductSKU) error {
	if item == nil {
		return errors.New("sku is nil")
	}
	return r.db.Save(item).Error
}
