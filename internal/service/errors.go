package service

import "errors"

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrUserDisabled       = errors.New("user disabled")
	ErrInvalidCartInput   = errors.New("invalid cart input")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrCartNotFound       = errors.New("cart not found")
	ErrCartNotActive      = errors.New("cart not active")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrVariantNotFound    = errors.New("product variant not found")
	ErrVariantUnavailable = errors.New("product variant unavailable")
	ErrPriceRepairFailed  = errors.New("price repair failed")
	ErrCouponCodeRequired = errors.New("coupon code required")
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrCouponInactive     = errors.New("coupon inactive")
	ErrCouponNotStarted   = errors.New("coupon not started")
	ErrCouponExpired      = errors.New("coupon expired")
	ErrCouponMinAmount    = errors.New("coupon min amount not reached")
	ErrCouponUsageLimit   = errors.New("coupon usage limit reached")
	ErrCouponPerUserLimit = errors.New("coupon per user limit reached")
	ErrCouponInvalid      = errors.New("coupon invalid")
)
