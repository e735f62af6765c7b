package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表（购物车仅依赖其上架状态与 SKU）
type Product struct {
	ID        uint           `gorm:"primarykey" json:"id"`                // 主键
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`    // 唯一标识
	Title     string         `gorm:"not null" json:"title"`               // 标题
	IsActive  bool           `gorm:"default:true;index" json:"is_active"` // 是否上架
	CreatedAt time.Time      `gorm:"index" json:"created_at"`             // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                          // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                      // 软删除时间

	SKUs []ProductSKU `gorm:"foreignKey:ProductID" json:"skus,omitempty"` // SKU 列表
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
