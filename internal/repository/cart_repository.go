package repository

import (
	"errors"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	GetActiveByUser(userID uint) (*models.Cart, error)
	CreateActive(cart *models.Cart) (*models.Cart, error)
	GetByID(id uint) (*models.Cart, error)
	LockByID(id uint) (*models.Cart, error)
	UpdateTotals(cart *models.Cart) error
	UpdateCoupon(cart *models.Cart) error
	ClearCoupon(cartID uint) error
	UpdateStatus(cartID uint, fromStatus, toStatus string, at *time.Time) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// Transaction 执行事务
func (r *GormCartRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetActiveByUser 获取用户当前 active 购物车
func (r *GormCartRepository) GetActiveByUser(userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Where("user_id = ? AND status = ?", userID, constants.CartStatusActive).
		Order("id desc").
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// CreateActive 创建 active 购物车，并发创建时以已存在的记录为准
func (r *GormCartRepository) CreateActive(cart *models.Cart) (*models.Cart, error) {
	if cart == nil || cart.UserID == 0 {
		return nil, errors.New("invalid cart")
	}
	cart.Status = constants.CartStatusActive
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(cart).Error; err != nil {
		return nil, err
	}
	stored, err := r.GetActiveByUser(cart.UserID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrNotFound
	}
	return stored, nil
}

// GetByID 根据 ID 获取购物车
func (r *GormCartRepository) GetByID(id uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.First(&cart, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// LockByID 行锁读取购物车，需在事务内调用
func (r *GormCartRepository) LockByID(id uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&cart, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// UpdateTotals 写入购物车汇总金额与当前优惠金额
func (r *GormCartRepository) UpdateTotals(cart *models.Cart) error {
	if cart == nil || cart.ID == 0 {
		return errors.New("invalid cart")
	}
	result := r.db.Model(&models.Cart{}).Where("id = ?", cart.ID).Updates(map[string]interface{}{
		"base_amount":            cart.BaseAmount,
		"tax_amount":             cart.TaxAmount,
		"subtotal":               cart.Subtotal,
		"roundoff":               cart.Roundoff,
		"final_total":            cart.FinalTotal,
		"coupon_discount_amount": cart.CouponDiscountAmount,
		"updated_at":             time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateCoupon 写入已应用的优惠券字段
func (r *GormCartRepository) UpdateCoupon(cart *models.Cart) error {
	if cart == nil || cart.ID == 0 {
		return errors.New("invalid cart")
	}
	result := r.db.Model(&models.Cart{}).Where("id = ?", cart.ID).Updates(map[string]interface{}{
		"coupon_id":              cart.CouponID,
		"coupon_code":            cart.CouponCode,
		"coupon_discount_type":   cart.CouponDiscountType,
		"coupon_discount_value":  cart.CouponDiscountValue,
		"coupon_discount_amount": cart.CouponDiscountAmount,
		"updated_at":             time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearCoupon 清空全部优惠券字段
func (r *GormCartRepository) ClearCoupon(cartID uint) error {
	result := r.db.Model(&models.Cart{}).Where("id = ?", cartID).Updates(map[string]interface{}{
		"coupon_id":              nil,
		"coupon_code":            nil,
		"coupon_discount_type":   nil,
		"coupon_discount_value":  nil,
		"coupon_discount_amount": nil,
		"updated_at":             time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus 按状态条件流转购物车
func (r *GormCartRepository) UpdateStatus(cartID uint, fromStatus, toStatus string, at *time.Time) error {
	updates := map[string]interface{}{
		"status":     toStatus,
		"updated_at": time.Now(),
	}
	if toStatus == constants.CartStatusCheckedOut && at != nil {
		updates["checked_out_at"] = *at
	}
	result := r.db.Model(&models.Cart{}).
		Where("id = ? AND status = ?", cartID, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
