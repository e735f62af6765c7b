package service

import (
	"errors"
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AddCartItemInput 加入购物车输入
type AddCartItemInput struct {
	ProductID uint `json:"product_id"`
	SKUID     uint `json:"sku_id"`
	Quantity  int  `json:"quantity"`
}

// SyncCartItemInput 多端同步的单项输入
type SyncCartItemInput struct {
	ProductID uint `json:"product_id"`
	SKUID     uint `json:"sku_id"`
	Quantity  int  `json:"quantity"`
}

// CartItemRef 购物车明细定位：明细 ID 或 商品+规格
type CartItemRef struct {
	ItemID    uint
	ProductID uint
	SKUID     uint
}

func (r CartItemRef) valid() bool {
	return r.ItemID > 0 || (r.ProductID > 0 && r.SKUID > 0)
}

// QuantityAdjustment 数量被限制到规格区间时的调整记录
type QuantityAdjustment struct {
	ProductID        uint   `json:"product_id"`
	SKUID            uint   `json:"sku_id"`
	OriginalQuantity int    `json:"original_quantity"`
	AdjustedQuantity int    `json:"adjusted_quantity"`
	Reason           string `json:"reason"`
}

// CartView 购物车完整视图（表头汇总 + 全部明细 + 调整与提示）
type CartView struct {
	*models.Cart
	DiscountAmount models.Money         `json:"discount_amount"`
	Adjustments    []QuantityAdjustment `json:"adjustments"`
	Notices        []string             `json:"notices"`
}

// CartServiceOptions 购物车服务配置
type CartServiceOptions struct {
	ExpireDays     int
	DefaultTaxRate decimal.Decimal
}

// CartService 购物车服务
type CartService struct {
	cartRepo      repository.CartRepository
	itemRepo      repository.CartItemRepository
	couponRepo    repository.CouponRepository
	usageRepo     repository.CouponUsageRepository
	couponService *CouponService
	variants      VariantPriceLookup
	queueClient   *queue.Client
	opts          CartServiceOptions
	now           func() time.Time
}

// NewCartService 创建购物车服务
func NewCartService(
	cartRepo repository.CartRepository,
	itemRepo repository.CartItemRepository,
	couponRepo repository.CouponRepository,
	usageRepo repository.CouponUsageRepository,
	couponService *CouponService,
	variants VariantPriceLookup,
	queueClient *queue.Client,
	opts CartServiceOptions,
) *CartService {
	if opts.ExpireDays <= 0 {
		opts.ExpireDays = constants.DefaultCartExpireDays
	}
	if opts.DefaultTaxRate.LessThanOrEqual(decimal.Zero) {
		opts.DefaultTaxRate = decimal.NewFromInt(constants.DefaultTaxRatePercent)
	}
	return &CartService{
		cartRepo:      cartRepo,
		itemRepo:      itemRepo,
		couponRepo:    couponRepo,
		usageRepo:     usageRepo,
		couponService: couponService,
		variants:      variants,
		queueClient:   queueClient,
		opts:          opts,
		now:           time.Now,
	}
}

// cartTx 单次购物车操作的事务上下文
type cartTx struct {
	carts       repository.CartRepository
	items       repository.CartItemRepository
	coupons     repository.CouponRepository
	usages      repository.CouponUsageRepository
	couponSvc   *CouponService
	variants    VariantPriceLookup
	cart        *models.Cart
	lines       []models.CartItem
	adjustments []QuantityAdjustment
	notices     []string
	repairs     []PriceRepair
	couponErr   error
	settled     bool
}

func (c *cartTx) adjust(productID, skuID uint, original, adjusted int, reason string) {
	c.adjustments = append(c.adjustments, QuantityAdjustment{
		ProductID:        productID,
		SKUID:            skuID,
		OriginalQuantity: original,
		AdjustedQuantity: adjusted,
		Reason:           reason,
	})
}

func (c *cartTx) view() *CartView {
	c.cart.Items = c.lines
	if c.cart.Items == nil {
		c.cart.Items = []models.CartItem{}
	}
	adjustments := c.adjustments
	if adjustments == nil {
		adjustments = []QuantityAdjustment{}
	}
	notices := c.notices
	if notices == nil {
		notices = []string{}
	}
	return &CartView{
		Cart:           c.cart,
		DiscountAmount: models.NewMoneyFromDecimal(c.cart.CouponDiscountAmount.Decimal()),
		Adjustments:    adjustments,
		Notices:        notices,
	}
}

func emptyCartView(userID uint) *CartView {
	return &CartView{
		Cart: &models.Cart{
			UserID: userID,
			Status: constants.CartStatusActive,
			Items:  []models.CartItem{},
		},
		Adjustments: []QuantityAdjustment{},
		Notices:     []string{},
	}
}

// GetCart 获取当前购物车（读路径同样执行价格自修复与汇总重算）
// 没有有效购物车时返回零值视图，不落库
func (s *CartService) GetCart(userID uint) (*CartView, error) {
	return s.run(userID, false, nil)
}

// AddItem 加入购物车，已存在的商品规格累加数量
func (s *CartService) AddItem(userID uint, input AddCartItemInput) (*CartView, error) {
	if input.ProductID == 0 || input.SKUID == 0 {
		return nil, ErrInvalidCartInput
	}
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return s.mutate(userID, func(c *cartTx) error {
		return s.placeLine(c, input.ProductID, input.SKUID, input.Quantity, true)
	})
}

// UpdateItem 覆盖明细数量，数量不大于 0 时删除
func (s *CartService) UpdateItem(userID uint, ref CartItemRef, quantity int) (*CartView, error) {
	if !ref.valid() {
		return nil, ErrInvalidCartInput
	}
	return s.mutate(userID, func(c *cartTx) error {
		item, err := s.resolveItem(c, ref)
		if err != nil {
			return err
		}
		if quantity <= 0 {
			return s.deleteItem(c, item)
		}
		variant, err := s.loadVariant(c, item.ProductID, item.SKUID)
		if err != nil {
			return err
		}
		target, reason := ClampQuantity(quantity, variant.MinQuantity, variant.MaxQuantity)
		if reason != "" {
			c.adjust(item.ProductID, item.SKUID, quantity, target, reason)
		}
		return c.items.SetQuantity(item.ID, target)
	})
}

// RemoveItem 删除明细；指定数量且小于当前数量时仅扣减
func (s *CartService) RemoveItem(userID uint, ref CartItemRef, quantity *int) (*CartView, error) {
	if !ref.valid() {
		return nil, ErrInvalidCartInput
	}
	if quantity != nil && *quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return s.mutate(userID, func(c *cartTx) error {
		item, err := s.resolveItem(c, ref)
		if err != nil {
			return err
		}
		if quantity == nil || *quantity >= item.Quantity {
			return s.deleteItem(c, item)
		}
		remaining := item.Quantity - *quantity
		variant, err := c.variants.GetVariant(item.ProductID, item.SKUID)
		if err != nil {
			return err
		}
		if variant != nil {
			target, reason := ClampQuantity(remaining, variant.MinQuantity, variant.MaxQuantity)
			if reason != "" {
				c.adjust(item.ProductID, item.SKUID, remaining, target, reason)
			}
			remaining = target
		}
		return c.items.SetQuantity(item.ID, remaining)
	})
}

// SyncItems 以客户端快照覆盖对应明细数量；快照中没有的明细保持不变
func (s *CartService) SyncItems(userID uint, items []SyncCartItemInput) (*CartView, error) {
	merged, err := mergeSyncItems(items)
	if err != nil {
		return nil, err
	}
	return s.mutate(userID, func(c *cartTx) error {
		for _, item := range merged {
			if err := s.placeLine(c, item.ProductID, item.SKUID, item.Quantity, false); err != nil {
				return err
			}
		}
		return nil
	})
}

// ApplyCoupon 应用优惠券，替换已应用的优惠券
func (s *CartService) ApplyCoupon(userID uint, code string) (*CartView, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, ErrCouponCodeRequired
	}
	return s.mutate(userID, func(c *cartTx) error {
		if err := s.refreshLines(c); err != nil {
			return err
		}
		subtotal := CalculateCartTotals(c.lines, decimal.Zero).Subtotal.Decimal
		app, err := c.couponSvc.Evaluate(trimmed, c.cart.UserID, subtotal)
		if err != nil {
			return err
		}
		setCartCoupon(c.cart, app)
		if err := c.carts.UpdateCoupon(c.cart); err != nil {
			return err
		}
		logger.Infow("cart_coupon_applied",
			"cart_id", c.cart.ID,
			"user_id", c.cart.UserID,
			"coupon_id", app.Coupon.ID,
			"discount_amount", app.DiscountAmount.StringFixed(2),
		)
		return nil
	})
}

// RemoveCoupon 移除优惠券，全部优惠字段置空
func (s *CartService) RemoveCoupon(userID uint) (*CartView, error) {
	return s.run(userID, false, func(c *cartTx) error {
		if !c.cart.HasCoupon() {
			return nil
		}
		if err := c.carts.ClearCoupon(c.cart.ID); err != nil {
			return err
		}
		clearCartCoupon(c.cart)
		logger.Infow("cart_coupon_removed", "cart_id", c.cart.ID, "user_id", c.cart.UserID)
		return nil
	})
}

// Checkout 结算购物车：active -> checked_out，并记录优惠券使用
func (s *CartService) Checkout(userID uint) (*CartView, error) {
	return s.mutate(userID, func(c *cartTx) error {
		if err := s.recalculate(c); err != nil {
			return err
		}
		c.settled = true
		if c.couponErr != nil {
			return c.couponErr
		}
		if len(c.lines) == 0 {
			return ErrCartEmpty
		}

		if c.cart.HasCoupon() {
			discount := c.cart.CouponDiscountAmount.Decimal()
			if err := c.coupons.IncrementUsedCount(*c.cart.CouponID, 1); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrCouponUsageLimit
				}
				return err
			}
			if err := c.usages.Create(&models.CouponUsage{
				CouponID:       *c.cart.CouponID,
				UserID:         c.cart.UserID,
				CartID:         c.cart.ID,
				DiscountAmount: models.NewMoneyFromDecimal(discount),
			}); err != nil {
				return err
			}
		}

		now := s.now()
		if err := c.carts.UpdateStatus(c.cart.ID, constants.CartStatusActive, constants.CartStatusCheckedOut, &now); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCartNotActive
			}
			return err
		}
		c.cart.Status = constants.CartStatusCheckedOut
		c.cart.CheckedOutAt = &now
		logger.Infow("cart_checked_out",
			"cart_id", c.cart.ID,
			"user_id", c.cart.UserID,
			"final_total", c.cart.FinalTotal.String(),
		)
		return nil
	})
}

// mutate 在单个事务内完成：获取/锁定购物车 -> 变更明细 -> 重算汇总 -> 写回
func (s *CartService) mutate(userID uint, fn func(c *cartTx) error) (*CartView, error) {
	return s.run(userID, true, fn)
}

// run 执行购物车事务；create 为 false 且用户没有有效购物车时直接返回零值视图
func (s *CartService) run(userID uint, create bool, fn func(c *cartTx) error) (*CartView, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	var view *CartView
	var repairs []PriceRepair
	err := s.cartRepo.Transaction(func(tx *gorm.DB) error {
		c, err := s.begin(tx, userID, create)
		if err != nil {
			return err
		}
		if c == nil {
			view = emptyCartView(userID)
			return nil
		}
		if fn != nil {
			if err := fn(c); err != nil {
				return err
			}
		}
		if !c.settled {
			if err := s.recalculate(c); err != nil {
				return err
			}
		}
		view = c.view()
		repairs = c.repairs
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishRepairs(repairs)
	return view, nil
}

func (s *CartService) begin(tx *gorm.DB, userID uint, create bool) (*cartTx, error) {
	c := &cartTx{
		carts:     s.cartRepo.WithTx(tx),
		items:     s.itemRepo.WithTx(tx),
		coupons:   s.couponRepo.WithTx(tx),
		usages:    s.usageRepo.WithTx(tx),
		couponSvc: s.couponService.WithTx(tx),
		variants:  variantLookupWithTx(s.variants, tx),
	}
	cart, err := s.getOrCreateActiveCart(c.carts, userID, create)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, nil
	}
	locked, err := c.carts.LockByID(cart.ID)
	if err != nil {
		return nil, err
	}
	if locked == nil {
		return nil, ErrCartNotFound
	}
	if locked.Status != constants.CartStatusActive {
		return nil, ErrCartNotActive
	}
	c.cart = locked
	return c, nil
}

// getOrCreateActiveCart 获取 active 购物车；已过期的标记为 expired 并新建
func (s *CartService) getOrCreateActiveCart(carts repository.CartRepository, userID uint, create bool) (*models.Cart, error) {
	now := s.now()
	cart, err := carts.GetActiveByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart != nil && cart.IsExpiredAt(now) {
		if err := carts.UpdateStatus(cart.ID, constants.CartStatusActive, constants.CartStatusExpired, nil); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		logger.Infow("cart_expired", "cart_id", cart.ID, "user_id", userID)
		cart = nil
	}
	if cart != nil || !create {
		return cart, nil
	}
	return carts.CreateActive(&models.Cart{
		UserID:    userID,
		Status:    constants.CartStatusActive,
		ExpiresAt: now.AddDate(0, 0, s.opts.ExpireDays),
	})
}

// placeLine 写入一行：additive 为 true 时累加数量，否则覆盖数量
func (s *CartService) placeLine(c *cartTx, productID, skuID uint, quantity int, additive bool) error {
	variant, err := s.loadVariant(c, productID, skuID)
	if err != nil {
		return err
	}
	price := variant.EffectivePrice()
	if price.LessThanOrEqual(decimal.Zero) {
		return ErrPriceRepairFailed
	}

	existing, err := c.items.GetItemByProductSKU(c.cart.ID, productID, skuID)
	if err != nil {
		return err
	}
	current := 0
	if existing != nil {
		current = existing.Quantity
	}
	desired := quantity
	if additive {
		desired = current + quantity
	}
	target, reason := ClampQuantity(desired, variant.MinQuantity, variant.MaxQuantity)
	if reason != "" {
		c.adjust(productID, skuID, desired, target, reason)
	}

	rate := ResolveTaxRate(decimal.Zero, variant.TaxRate, s.opts.DefaultTaxRate)
	pricing := PriceLineItem(price, rate, target)

	if existing != nil && NeedsPriceRepair(existing) {
		c.repairs = append(c.repairs, PriceRepair{
			CartID:       c.cart.ID,
			CartItemID:   existing.ID,
			ProductID:    productID,
			SKUID:        skuID,
			OldUnitPrice: existing.UnitPrice,
			NewUnitPrice: pricing.UnitPrice,
			OldTaxRate:   existing.TaxRate,
			NewTaxRate:   pricing.TaxRate,
			Source:       constants.PriceRepairSourceAdd,
		})
	}

	delta := target - current
	if existing == nil || (additive && delta > 0) {
		item := &models.CartItem{
			CartID:    c.cart.ID,
			ProductID: productID,
			SKUID:     skuID,
			Quantity:  delta,
			UpdatedAt: s.now(),
		}
		PriceLineItem(price, rate, delta).ApplyTo(item)
		_, err := c.items.UpsertItem(item)
		return err
	}

	existing.Quantity = target
	pricing.ApplyTo(existing)
	return c.items.UpdatePricing(existing)
}

func (s *CartService) loadVariant(c *cartTx, productID, skuID uint) (*VariantPrice, error) {
	variant, err := c.variants.GetVariant(productID, skuID)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, ErrVariantNotFound
	}
	if !variant.Active {
		return nil, ErrVariantUnavailable
	}
	return variant, nil
}

func (s *CartService) resolveItem(c *cartTx, ref CartItemRef) (*models.CartItem, error) {
	var (
		item *models.CartItem
		err  error
	)
	if ref.ItemID > 0 {
		item, err = c.items.GetItem(c.cart.ID, ref.ItemID)
	} else {
		item, err = c.items.GetItemByProductSKU(c.cart.ID, ref.ProductID, ref.SKUID)
	}
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	return item, nil
}

func (s *CartService) deleteItem(c *cartTx, item *models.CartItem) error {
	if err := c.items.DeleteItem(c.cart.ID, item.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCartItemNotFound
		}
		return err
	}
	return nil
}

// refreshLines 读取明细，修复单价不大于 0 的行并校正派生价格字段
func (s *CartService) refreshLines(c *cartTx) error {
	items, err := c.items.ListByCart(c.cart.ID)
	if err != nil {
		return err
	}
	for i := range items {
		item := &items[i]
		if NeedsPriceRepair(item) {
			variant, err := c.variants.GetVariant(item.ProductID, item.SKUID)
			if err != nil {
				return err
			}
			repair, err := RepairLineItemPrice(item, variant, s.opts.DefaultTaxRate, constants.PriceRepairSourceRead)
			if err != nil {
				logger.Warnw("cart_price_repair_failed",
					"cart_id", item.CartID,
					"cart_item_id", item.ID,
					"product_id", item.ProductID,
					"sku_id", item.SKUID,
					"error", err,
				)
				return err
			}
			c.repairs = append(c.repairs, *repair)
			if err := c.items.UpdatePricing(item); err != nil {
				return err
			}
			continue
		}
		pricing := PriceLineItem(item.UnitPrice.Decimal, item.TaxRate.Decimal, item.Quantity)
		if linePricingChanged(item, pricing) {
			pricing.ApplyTo(item)
			if err := c.items.UpdatePricing(item); err != nil {
				return err
			}
		}
	}
	c.lines = items
	return nil
}

// recalculate 由持久化明细重新推导优惠与汇总并写回表头
func (s *CartService) recalculate(c *cartTx) error {
	if err := s.refreshLines(c); err != nil {
		return err
	}
	subtotal := CalculateCartTotals(c.lines, decimal.Zero).Subtotal.Decimal

	discount := decimal.Zero
	c.couponErr = nil
	if c.cart.HasCoupon() {
		code := ""
		if c.cart.CouponCode != nil {
			code = *c.cart.CouponCode
		}
		app, err := c.couponSvc.Evaluate(code, c.cart.UserID, subtotal)
		switch {
		case err == nil:
			if couponDefinitionChanged(c.cart, app) {
				setCartCoupon(c.cart, app)
				if err := c.carts.UpdateCoupon(c.cart); err != nil {
					return err
				}
			}
			discount = app.DiscountAmount
		case isCouponRuleError(err):
			c.couponErr = err
			if err := c.carts.ClearCoupon(c.cart.ID); err != nil {
				return err
			}
			logger.Infow("cart_coupon_cleared",
				"cart_id", c.cart.ID,
				"user_id", c.cart.UserID,
				"coupon_code", code,
				"reason", err.Error(),
			)
			clearCartCoupon(c.cart)
			c.notices = append(c.notices, constants.CartNoticeCouponCleared)
		default:
			return err
		}
	}

	totals := CalculateCartTotals(c.lines, discount)
	totals.ApplyTo(c.cart)
	if c.cart.HasCoupon() {
		c.cart.CouponDiscountAmount = models.NewNullMoney(totals.DiscountAmount.Decimal)
	}
	if err := c.carts.UpdateTotals(c.cart); err != nil {
		return err
	}
	logger.Debugw("cart_totals_recalculated",
		"cart_id", c.cart.ID,
		"subtotal", totals.Subtotal.String(),
		"discount_amount", totals.DiscountAmount.String(),
		"final_total", totals.FinalTotal.String(),
	)
	return nil
}

func (s *CartService) publishRepairs(repairs []PriceRepair) {
	for _, repair := range repairs {
		logger.Infow("cart_price_repaired",
			"cart_id", repair.CartID,
			"cart_item_id", repair.CartItemID,
			"product_id", repair.ProductID,
			"sku_id", repair.SKUID,
			"old_unit_price", repair.OldUnitPrice.String(),
			"new_unit_price", repair.NewUnitPrice.String(),
			"new_tax_rate", repair.NewTaxRate.String(),
			"source", repair.Source,
		)
		if err := s.queueClient.EnqueueCartPriceRepaired(queue.CartPriceRepairedPayload{
			CartID:       repair.CartID,
			CartItemID:   repair.CartItemID,
			ProductID:    repair.ProductID,
			SKUID:        repair.SKUID,
			OldUnitPrice: repair.OldUnitPrice,
			NewUnitPrice: repair.NewUnitPrice,
			OldTaxRate:   repair.OldTaxRate,
			NewTaxRate:   repair.NewTaxRate,
			Source:       repair.Source,
		}); err != nil {
			logger.Warnw("cart_enqueue_price_repaired_failed",
				"cart_id", repair.CartID,
				"cart_item_id", repair.CartItemID,
				"error", err,
			)
		}
	}
}

func mergeSyncItems(items []SyncCartItemInput) ([]SyncCartItemInput, error) {
	type key struct{ productID, skuID uint }
	merged := make([]SyncCartItemInput, 0, len(items))
	index := make(map[key]int, len(items))
	for _, item := range items {
		if item.ProductID == 0 || item.SKUID == 0 {
			return nil, ErrInvalidCartInput
		}
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		k := key{item.ProductID, item.SKUID}
		if pos, ok := index[k]; ok {
			merged[pos].Quantity = item.Quantity
			continue
		}
		index[k] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

func linePricingChanged(item *models.CartItem, pricing LinePricing) bool {
	return !item.BasePrice.Decimal.Equal(pricing.BasePrice.Decimal) ||
		!item.TaxAmount.Decimal.Equal(pricing.TaxAmount.Decimal) ||
		!item.LineTotal.Decimal.Equal(pricing.LineTotal.Decimal)
}

func setCartCoupon(cart *models.Cart, app *CouponApplication) {
	couponID := app.Coupon.ID
	code := app.Coupon.Code
	discountType := app.DiscountType
	cart.CouponID = &couponID
	cart.CouponCode = &code
	cart.CouponDiscountType = &discountType
	cart.CouponDiscountValue = models.NewNullMoney(app.DiscountValue)
	cart.CouponDiscountAmount = models.NewNullMoney(app.DiscountAmount)
}

func clearCartCoupon(cart *models.Cart) {
	cart.CouponID = nil
	cart.CouponCode = nil
	cart.CouponDiscountType = nil
	cart.CouponDiscountValue = models.NullMoney{}
	cart.CouponDiscountAmount = models.NullMoney{}
}

func couponDefinitionChanged(cart *models.Cart, app *CouponApplication) bool {
	if cart.CouponID == nil || *cart.CouponID != app.Coupon.ID {
		return true
	}
	if cart.CouponDiscountType == nil || *cart.CouponDiscountType != app.DiscountType {
		return true
	}
	return !cart.CouponDiscountValue.Valid || !cart.CouponDiscountValue.Decimal().Equal(app.DiscountValue)
}

func isCouponRuleError(err error) bool {
	for _, target := range []error{
		ErrCouponCodeRequired,
		ErrCouponNotFound,
		ErrCouponInactive,
		ErrCouponNotStarted,
		ErrCouponExpired,
		ErrCouponMinAmount,
		ErrCouponUsageLimit,
		ErrCouponPerUserLimit,
		ErrCouponInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
