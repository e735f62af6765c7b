package models

import (
	"time"
)

// CouponUsage 优惠券使用记录（购物车结算时写入）
type CouponUsage struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                         // 主键
	CouponID       uint      `gorm:"index;not null" json:"coupon_id"`                              // 优惠券ID
	UserID         uint      `gorm:"index;not null" json:"user_id"`                                // 用户ID
	CartID         uint      `gorm:"uniqueIndex;not null" json:"cart_id"`                          // 购物车ID
	DiscountAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                      // 创建时间
}

// TableName 指定表名
func (CouponUsage) TableName() string {
	return "coupon_usages"
}
