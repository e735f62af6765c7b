package models

import (
	"time"
)

// Cart 购物车（每个用户同一时间仅有一个 active 购物车）
type Cart struct {
	ID                   uint       `gorm:"primarykey" json:"id"`                                                                    // 主键
	UserID               uint       `gorm:"not null;index;index:idx_cart_user_active,unique,where:status = 'active'" json:"user_id"` // 用户ID
	Status               string     `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`                          // 状态（active/checked_out/expired）
	CouponID             *uint      `gorm:"index" json:"coupon_id"`                                                                  // 已应用优惠券ID
	CouponCode           *string    `gorm:"type:varchar(64)" json:"coupon_code"`                                                     // 已应用优惠码
	CouponDiscountType   *string    `gorm:"type:varchar(20)" json:"coupon_discount_type"`                                            // 折扣类型
	CouponDiscountValue  NullMoney  `gorm:"type:decimal(20,2)" json:"coupon_discount_value"`                                         // 折扣数值
	CouponDiscountAmount NullMoney  `gorm:"type:decimal(20,2)" json:"coupon_discount_amount"`                                        // 实际优惠金额
	BaseAmount           Money      `gorm:"type:decimal(20,2);not null;default:0" json:"base_amount"`                                // 不含税金额
	TaxAmount            Money      `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`                                 // 税额
	Subtotal             Money      `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`                                   // 含税小计
	Roundoff             Money      `gorm:"type:decimal(20,2);not null;default:0" json:"roundoff"`                                   // 取整差额（有符号）
	FinalTotal           Money      `gorm:"type:decimal(20,2);not null;default:0" json:"final_total"`                                // 应付总额
	ExpiresAt            time.Time  `gorm:"index" json:"expires_at"`                                                                 // 过期时间
	CheckedOutAt         *time.Time `json:"checked_out_at"`                                                                          // 结算时间
	CreatedAt            time.Time  `gorm:"index" json:"created_at"`                                                                 // 创建时间
	UpdatedAt            time.Time  `gorm:"index" json:"updated_at"`                                                                 // 更新时间

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"` // 购物车明细
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}

// HasCoupon 是否已应用优惠券
func (c *Cart) HasCoupon() bool {
	return c != nil && c.CouponID != nil && *c.CouponID != 0
}

// IsExpiredAt 判断购物车在指定时间是否已过期
func (c *Cart) IsExpiredAt(now time.Time) bool {
	if c == nil || c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}
