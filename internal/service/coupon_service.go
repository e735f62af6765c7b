package service

import (
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CouponApplication 优惠券校验通过后的折扣结果
type CouponApplication struct {
	Coupon         *models.Coupon
	DiscountType   string
	DiscountValue  decimal.Decimal
	DiscountAmount decimal.Decimal
}

// CouponService 优惠券服务
type CouponService struct {
	couponRepo repository.CouponRepository
	usageRepo  repository.CouponUsageRepository
	now        func() time.Time
}

// NewCouponService 创建优惠券服务
func NewCouponService(couponRepo repository.CouponRepository, usageRepo repository.CouponUsageRepository) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		usageRepo:  usageRepo,
		now:        time.Now,
	}
}

// WithTx 绑定事务
func (s *CouponService) WithTx(tx *gorm.DB) *CouponService {
	if tx == nil {
		return s
	}
	return &CouponService{
		couponRepo: s.couponRepo.WithTx(tx),
		usageRepo:  s.usageRepo.WithTx(tx),
		now:        s.now,
	}
}

// Evaluate 按顺序校验优惠券并计算折扣，首个失败的规则即返回
func (s *CouponService) Evaluate(code string, userID uint, subtotal decimal.Decimal) (*CouponApplication, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, ErrCouponCodeRequired
	}

	coupon, err := s.couponRepo.GetByCode(trimmed)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	if !coupon.IsActive {
		return nil, ErrCouponInactive
	}

	now := s.now()
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return nil, ErrCouponNotStarted
	}
	if coupon.EndsAt != nil && now.After(*coupon.EndsAt) {
		return nil, ErrCouponExpired
	}

	if coupon.MinOrderValue.Decimal.GreaterThan(decimal.Zero) && subtotal.LessThan(coupon.MinOrderValue.Decimal) {
		return nil, ErrCouponMinAmount
	}

	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return nil, ErrCouponUsageLimit
	}

	if coupon.PerUserLimit > 0 && userID != 0 {
		count, err := s.usageRepo.CountByUser(coupon.ID, userID)
		if err != nil {
			return nil, err
		}
		if int(count) >= coupon.PerUserLimit {
			return nil, ErrCouponPerUserLimit
		}
	}

	discount, err := calculateCouponDiscount(coupon, subtotal)
	if err != nil {
		return nil, err
	}
	return &CouponApplication{
		Coupon:         coupon,
		DiscountType:   normalizeCouponType(coupon.DiscountType),
		DiscountValue:  coupon.Value.Decimal,
		DiscountAmount: discount,
	}, nil
}

func calculateCouponDiscount(coupon *models.Coupon, subtotal decimal.Decimal) (decimal.Decimal, error) {
	var discount decimal.Decimal
	switch normalizeCouponType(coupon.DiscountType) {
	case constants.CouponTypePercentage:
		if coupon.Value.Decimal.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, ErrCouponInvalid
		}
		discount = subtotal.Mul(coupon.Value.Decimal).Div(hundred).Round(2)
		if coupon.MaxDiscountAmount.Decimal.GreaterThan(decimal.Zero) && discount.GreaterThan(coupon.MaxDiscountAmount.Decimal) {
			discount = coupon.MaxDiscountAmount.Decimal
		}
	case constants.CouponTypeFixedAmount:
		if coupon.Value.Decimal.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, ErrCouponInvalid
		}
		discount = decimal.Min(coupon.Value.Decimal, subtotal)
	case constants.CouponTypeFreeShipping:
		// 运费不作为购物车行建模，折扣为 0，仅记录优惠券供下游履约使用
		discount = decimal.Zero
	default:
		return decimal.Zero, ErrCouponInvalid
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.LessThan(decimal.Zero) {
		discount = decimal.Zero
	}
	return discount.Round(2), nil
}

func normalizeCouponType(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
