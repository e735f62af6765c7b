package models

import "time"

// CartRepairLog 购物车价格自修复审计记录
type CartRepairLog struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                        // 主键
	CartID       uint      `gorm:"not null;index" json:"cart_id"`                               // 购物车ID
	CartItemID   uint      `gorm:"not null;index" json:"cart_item_id"`                          // 明细ID
	ProductID    uint      `gorm:"not null" json:"product_id"`                                  // 商品ID
	SKUID        uint      `gorm:"column:sku_id;not null" json:"sku_id"`                        // 规格ID
	OldUnitPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"old_unit_price"` // 修复前单价
	NewUnitPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"new_unit_price"` // 修复后单价
	OldTaxRate   Money     `gorm:"type:decimal(10,2);not null;default:0" json:"old_tax_rate"`   // 修复前税率
	NewTaxRate   Money     `gorm:"type:decimal(10,2);not null;default:0" json:"new_tax_rate"`   // 修复后税率
	Source       string    `gorm:"type:varchar(20);not null" json:"source"`                     // 触发来源（read/add）
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                                     // 创建时间
}

// TableName 指定表名
func (CartRepairLog) TableName() string {
	return "cart_repair_logs"
}
