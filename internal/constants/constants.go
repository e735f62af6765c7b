package constants

// 购物车状态常量
const (
	CartStatusActive     = "active"
	CartStatusCheckedOut = "checked_out"
	CartStatusExpired    = "expired"
)

// 购物车默认值
const (
	DefaultCartExpireDays = 30
	DefaultTaxRatePercent = 5
)

// 优惠券折扣类型常量
const (
	CouponTypePercentage   = "percentage"
	CouponTypeFixedAmount  = "fixed_amount"
	CouponTypeFreeShipping = "free_shipping"
)

// 数量调整原因
const (
	AdjustReasonBelowMin = "below_min_quantity"
	AdjustReasonAboveMax = "above_max_quantity"
)

// 价格修复来源
const (
	PriceRepairSourceRead = "read"
	PriceRepairSourceAdd  = "add"
)

// 购物车提示信息
const (
	CartNoticeCouponCleared = "coupon_cleared"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 异步队列常量
const (
	QueueDefault          = "default"
	TaskCartPriceRepaired = "cart:price_repaired"
)
