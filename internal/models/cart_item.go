package models

import (
	"time"
)

// CartItem 购物车明细（cart_id + product_id + sku_id 唯一，硬删除）
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                                       // 主键
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_item_product_sku" json:"cart_id"`              // 购物车ID
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_item_product_sku" json:"product_id"`           // 商品ID
	SKUID     uint      `gorm:"column:sku_id;not null;uniqueIndex:idx_cart_item_product_sku" json:"sku_id"` // 规格ID
	Quantity  int       `gorm:"not null" json:"quantity"`                                                   // 数量
	UnitPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`                    // 含税单价
	TaxRate   Money     `gorm:"type:decimal(10,2);not null;default:0" json:"tax_rate"`                      // 税率（百分比）
	BasePrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"base_price"`                    // 不含税单价
	TaxAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`                    // 单件税额
	LineTotal Money     `gorm:"type:decimal(20,2);not null;default:0" json:"line_total"`                    // 行合计
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                                    // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                                                    // 更新时间
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
