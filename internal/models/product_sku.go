package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductSKU 商品规格（价格、税率与购买数量区间）
type ProductSKU struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                                                       // 主键
	ProductID       uint           `gorm:"not null;index;uniqueIndex:idx_product_sku_code" json:"product_id"`                          // 商品ID
	SKUCode         string         `gorm:"column:sku_code;type:varchar(64);not null;uniqueIndex:idx_product_sku_code" json:"sku_code"` // SKU编码（同商品内唯一）
	PriceAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`                                  // 含税价格
	SalePriceAmount NullMoney      `gorm:"type:decimal(20,2)" json:"sale_price_amount"`                                                // 含税促销价（可空）
	TaxRate         Money          `gorm:"type:decimal(10,2);not null;default:0" json:"tax_rate"`                                      // 税率（百分比）
	MinQuantity     int            `gorm:"not null;default:1" json:"min_quantity"`                                                     // 最小购买数量
	MaxQuantity     int            `gorm:"not null;default:0" json:"max_quantity"`                                                     // 最大购买数量（0 表示不限制）
	IsActive        bool           `gorm:"default:true;index" json:"is_active"`                                                        // 是否启用
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                                                    // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                                                    // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                                             // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (ProductSKU) TableName() string {
	return "product_skus"
}
