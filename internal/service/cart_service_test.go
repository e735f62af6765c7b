package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

func assertTotals(t *testing.T, view *CartView, subtotal, discount, final string) {
	t.Helper()
	if view.Subtotal.String() != subtotal {
		t.Fatalf("subtotal want %s got %s", subtotal, view.Subtotal)
	}
	if view.DiscountAmount.String() != discount {
		t.Fatalf("discount want %s got %s", discount, view.DiscountAmount)
	}
	if view.FinalTotal.String() != final {
		t.Fatalf("final total want %s got %s", final, view.FinalTotal)
	}
	before := view.Subtotal.Decimal.Sub(view.DiscountAmount.Decimal)
	if !view.FinalTotal.Decimal.Sub(before).Equal(view.Roundoff.Decimal) {
		t.Fatalf("roundoff %s inconsistent with final %s and before %s", view.Roundoff, view.FinalTotal, before)
	}
}

func TestCartScenarioAddApplyRemoveCoupon(t *testing.T) {
	env := setupCartServiceTest(t)
	sku := createTestVariant(t, env.db, "tea", skuSpec{price: "105", taxRate: "5"})
	createTestCoupon(t, env.db, models.Coupon{Code: "FIFTY", Value: models.MustMoney("50"), IsActive: true})

	view, err := env.cart.AddItem(1, AddCartItemInput{ProductID: sku.ProductID, SKUID: sku.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", view.Items)
	}
	if view.BaseAmount.String() != "200.00" || view.TaxAmount.String() != "10.00" {
		t.Fatalf("unexpected base/tax: %s/%s", view.BaseAmount, view.TaxAmount)
	}
	if view.Items[0].BasePrice.String() != "100.00" {
		t.Fatalf("unexpected base unit price: %s", view.Items[0].BasePrice)
	}
	assertTotals(t, view, "210.00", "0.00", "210.00")

	view, err = env.cart.ApplyCoupon(1, "FIFTY")
	if err != nil {
		t.Fatalf("apply coupon failed: %v", err)
	}
	assertTotals(t, view, "210.00", "50.00", "160.00")
	if view.CouponCode == nil || *view.CouponCode != "FIFTY" {
		t.Fatalf("expected coupon code to be stored: %+v", view.Cart)
	}

	view, err = env.cart.RemoveCoupon(1)
	if err != nil {
		t.Fatalf("remove coupon failed: %v", err)
	}
	assertTotals(t, view, "210.00", "0.00", "210.00")
	if view.HasCoupon() || view.CouponDiscountValue.Valid || view.CouponDiscountAmount.Valid {
		t.Fatalf("expected every coupon field cleared: %+v", view.Cart)
	}

	var stored models.Cart
	if err := env.db.First(&stored, view.ID).Error; err != nil {
		t.Fatalf("load cart failed: %v", err)
	}
	if stored.FinalTotal.String() != "210.00" || stored.CouponCode != nil {
		t.Fatalf("persisted cart out of sync: %+v", stored)
	}
}

func TestCartReadRepairsCorruptedPrice(t *testing.T) {
	env := setupCartServiceTest(t)
	sku := createTestVariant(t, env.db, "coffee", skuSpec{price: "80", sale: "65", taxRate: "5"})

	view, err := env.cart.AddItem(1, AddCartItemInput{ProductID: sku.ProductID, SKUID: sku.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	itemID := view.Items[0].ID
	if err := env.db.Model(&models.CartItem{}).Where("id = ?", itemID).Updates(map[string]interface{}{
		"unit_price": "0",
		"tax_rate":   "0",
	}).Error; err != nil {
		t.Fatalf("corrupt price failed: %v", err)
	}

	view, err = env.cart.GetCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	item := view.Items[0]
	if item.UnitPrice.String() != "65.00" || item.TaxRate.String() != "5.00" {
		t.Fatalf("expected repaired price 65 at 5%%, got %s at %s", item.UnitPrice, item.TaxRate)
	}
	assertTotals(t, view, "195.00", "0.00", "195.00")

	var stored models.CartItem
	if err := env.db.First(&stored, itemID).Error; err != nil {
		t.Fatalf("load item failed: %v", err)
	}
	if stored.UnitPrice.String() != "65.00" || stored.LineTotal.String() != "195.00" {
		t.Fatalf("repair was not persisted: %+v", stored)
	}
}

func TestCartReadRepairFailureSurfaces(t *testing.T) {
	env := setupCartServiceTest(t)
	sku := createTestVariant(t, env.db, "water", skuSpec{price: "10", taxRate: "5"})
	view, err := env.cart.AddItem(1, AddCartItemInput{ProductID: sku.ProductID, SKUID: sku.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if err := env.db.Model(&models.CartItem{}).Where("id = ?", view.Items[0].ID).Update("unit_price", "0").Error; err != nil {
		t.Fatalf("corrupt price failed: %v", err)
	}
	if err := env.db.Model(&models.ProductSKU{}).Where("id = ?", sku.ID).Update("price_amount", "0").Error; err != nil {
		t.Fatalf("zero catalog price failed: %v", err)
	}
	if _, err := env.cart.GetCart(1); !errors.Is(err, ErrPriceRepairFailed) {
		t.Fatalf("expected ErrPriceRepairFailed, got %v", err)
	}
}

func TestCartAddRepairsCorruptedExistingLine(t *testing.T) {
	env := setupCartServiceTest(t)
	sku := createTestVariant(t, env.db, "juice", skuSpec{price: "105", taxRate: "5"})

	view, err := env.cart.AddItem(1, AddCartItemInput{ProductID: sku.ProductID, SKUID: sku.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	itemID := view.Items[0].ID
	corrupt := func() {
		t.Helper()
		if err := env.db.Model(&models.CartItem{}).Where("id = ?", itemID).Updates(map[string]interface{}{
			"unit_price": "0",
			"tax_rate":   "0",
		}).Error; err != nil {
			t.Fatalf("corrupt price failed: %v", err)
		}
	}
	corrupt()

	errRollback := errors.New("rollback")
	var repairs []PriceRepair
	err = env.db.Transaction(func(tx *gorm.DB) error {
		c, err := env.cart.begin(tx, 1, true)
		if err != nil {
			return err
		}
		if err := env.cart.placeLine(c, sku.ProductID, sku.ID, 1, true); err != nil {
			return err
		}
		repairs = c.repairs
		return errRollback
	})
	if !errors.Is(err, errRollback) {
		t.Fatalf("place line failed: %v", err)
	}
	if len(repairs) != 1 {
		t.Fatalf("expected one repair, got %+v", repairs)
	}
	repair := repairs[0]
	if repair.Source != constants.PriceRepairSourceAdd || repair.CartItemID != itemID {
		t.Fatalf("unexpected repair record: %+v", repair)
	}
	if repair.NewUnitPrice.String() != "105.00" || repair.NewTaxRate.String() != "5.00" || !repair.OldUnitPrice.Decimal.IsZero() {
		t.Fatalf("unexpected repaired values: %+v", repair)
	}

	view, err = env.cart.AddItem(1, AddCartItemInput{ProductID: sku.ProductID, SKUID: sku.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != 3 {
		t.Fatalf("expected one line with quantity 3, got %+v", view.Items)
	}
	if view.Items[0].UnitPrice.String() != "105.00" || view.Items[0].LineTotal.String() != "315.00" {
		t.Fatalf("expected repaired line 3 x 105, got %s / %s", view.Items[0].UnitPrice, view.Items[0].LineTotal)
	}
	assertTotals(t, view, "315.00", "0.00", "315.00")

	var stored models.CartItem
	if err := env.db.First(&stored, itemID).Error; err != nil {
		t.Fatalf("load item failed: %v", err)
	}
	if stored.UnitPrice.String() != "105.00" || stored.TaxRate.String() != "5.00" {
		t.Fatalf("repair was not persisted: %+v", stored)
	}
}

func TestCartPartialRemovalKeepsMinimumQuantity(t *testing.T) {
	env := setupCartServiceTest(t)
	sku := createTestVariant(t, env.db, "eggs", skuSpec{price: "1", taxRate: "5", min: 3})

	view, err := env.cart.AddItem(1, AddCartItemInput{ProductID: sku.ProductID, SKUID: sku.ID, Quantity: 5})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	remove := 4
	view, err = env.cart.RemoveItem(1, CartItemRef{ItemID: view.Items[0].ID}, &remove)
	if err != nil {
		t.Fatalf("partial remove failed: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != 3 {
		t.Fatalf("expected remainder clamped to 3, got %+v", view.Items)
	}
	if len(view.Adjustments) != 1 {
		t.Fatalf("expected one adjustment, got %+v", view.Adjustments)
	}
	adj := view.Adjustments[0]
	if adj.OriginalQuantity != 1 || adj.AdjustedQuantity != 3 || adj.Reason != constants.AdjustReasonBelowMin {
		t.Fatalf("unexpected adjustment: %+v", adj)
	}
}

func TestCartReadWithoutActiveCartDoesNotCreateOne(t *testing.T) {
	env := setupCartServiceTest(t)

	view, err := env.cart.GetCart(7)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if view.ID != 0 || len(view.Items) != 0 || view.Status != constants.CartStatusActive {
		t.Fatalf("expected an empty unsaved cart, got %+v", view.Cart)
	}
	assertTotals(t, view, "0.00", "0.00", "0.00")

	if _, err := env.cart.RemoveCoupon(7); err != nil {
		t.Fatalf("remove coupon failed: %v", err)
	}

	var count int64
	if err := env.db.Model(&models.Cart{}).Where("user_id = ?", 7).Count(&count).Error; err != nil {
		t.Fatalf("count carts failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no cart row, got %d", count)
	}
}

func TestCartSyncClampsAndReportsAdjustments(t *testing.T) {
	env := setupCartServiceTest(t)
	bounded := createTestVariant(t, env.db, "bulk", skuSpec{price: "10", taxRate: "5", min: 2, max: 5})
	untouched := createTestVariant(t, env.db, "solo", skuSpec{price: "3", taxRate: "5"})

	if _, err := env.cart.AddItem(1, AddCartItemInput{ProductID: untouched.ProductID, SKUID: untouched.ID, Quantity: 4}); err != nil {
		t.Fatalf("add untouched item failed: %v", err)
	}

	view, err := env.cart.SyncItems(1, []SyncCartItemInput{{ProductID: bounded.ProductID, SKUID: bounded.ID, Quantity: 1}})
	if err != nil {
		t.Fatalf("sync below min failed: %v", err)
	}
	if len(view.Adjustments) != 1 {
		t.Fatalf("expected one adjustment, got %+v", view.Adjustments)
	}
	adj := view.Adjustments[0]
	if adj.OriginalQuantity != 1 || adj.AdjustedQuantity != 2 || adj.Reason != constants.AdjustReasonBelowMin {
		t.Fatalf("unexpected adjustment: %+v", adj)
	}

	view, err = env.cart.SyncItems(1, []SyncCartItemInput{{ProductID: bounded.ProductID, SKUID: bounded.ID, Quantity: 9}})
	if err != nil {
		t.Fatalf("sync above max failed: %v", err)
	}
	if len(view.Adjustments) != 1 || view.Adjustments[0].AdjustedQuantity != 5 || view.Adjustments[0].Reason != constants.AdjustReasonAboveMax {
		t.Fatalf("unexpected adjustment: %+v", view.Adjustments)
	}

	quantities := map[uint]int{}
	for _, item := range view.Items {
		quantities[item.SKUID] = item.Quantity
	}
	if quantities[bounded.ID] != 5 {
		t.Fatalf("expected stored clamped quantity 5, got %d", quantities[bounded.ID])
	}
	if quantities[untouched.ID] != 4 {
		t.Fatalf("sync must leave absent items untouched, got %d", quantities[untouched.ID])
	}
	assertTotals(t, view, "62.00", "0.00", "62.00")
}

func TestCartAddClampsAccumulatedQuantity(t *testing.T) {
	env := setupCartServiceTest(t)
	sku := createTestVariant(t, env.db, "limited", skuSpec{price: "20", taxRate: "0", max: 3})

	if _, err := env.cart.AddItem(1, AddCartItemInput{ProductID: sku.ProductID, SKUID: sku.ID, Quantity: 2}); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	view, err := env.cart.AddItem(1, AddCartItemInput{ProductID: sku.ProductID, SKUID: sku.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != 3 {
		t.Fatalf("expected clamped quantity 3, got %+v", view.Items)
	}
	if len(view.Adjustments) != 1 || view.Adjustments[0].OriginalQuantity != 4 {
		t.Fatalf("unexpected adjustments: %+v", view.Adjustments)
	}
}

func TestCartConcurrentAddsMergeIntoOneLine(t *testing.T) {
	env := setupCartServiceTest(t)
	sku := createTestVariant(t, env.db, "popular", skuSpec{price: "12.50", taxRate: "5"})

	const callers = 6
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.cart.AddItem(1, AddCartItemInput{ProductID: sku.ProductID, SKUID: sku.ID, Quantity: 2}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent add failed: %v", err)
	}

	view, err := env.cart.GetCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != callers*2 {
		t.Fatalf("expected one line with quantity %d, got %+v", callers*2, view.Items)
	}
	assertTotals(t, view, "150.00", "0.00", "150.00")
}

func TestCartUpdateAndRemoveByBothReferences(t *testing.T) {
	env := setupCartServiceTest(t)
	sku := createTestVariant(t, env.db, "pens", skuSpec{price: "2.50", taxRate: "5", max: 10})

	view, err := env.cart.AddItem(1, AddCartItemInput{ProductID: sku.ProductID, SKUID: sku.ID, Quantity: 4})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	itemID := view.Items[0].ID

	view, err = env.cart.UpdateItem(1, CartItemRef{ItemID: itemID}, 12)
	if err != nil {
		t.Fatalf("update by id failed: %v", err)
	}
	if view.Items[0].Quantity != 10 || len(view.Adjustments) != 1 {
		t.Fatalf("expected clamp to 10, got %+v / %+v", view.Items, view.Adjustments)
	}

	view, err = env.cart.UpdateItem(1, CartItemRef{ProductID: sku.ProductID, SKUID: sku.ID}, 6)
	if err != nil {
		t.Fatalf("update by pair failed: %v", err)
	}
	assertTotals(t, view, "15.00", "0.00", "15.00")

	partial := 2
	view, err = env.cart.RemoveItem(1, CartItemRef{ProductID: sku.ProductID, SKUID: sku.ID}, &partial)
	if err != nil {
		t.Fatalf("partial remove failed: %v", err)
	}
	if view.Items[0].Quantity != 4 {
		t.Fatalf("expected 4 after partial removal, got %d", view.Items[0].Quantity)
	}

	view, err = env.cart.RemoveItem(1, CartItemRef{ItemID: itemID}, nil)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", view.Items)
	}
	assertTotals(t, view, "0.00", "0.00", "0.00")
	if !view.BaseAmount.Decimal.IsZero() || !view.TaxAmount.Decimal.IsZero() || !view.Roundoff.Decimal.IsZero() {
		t.Fatalf("empty cart must have zero totals: %+v", view.Cart)
	}

	if _, err := env.cart.RemoveItem(1, CartItemRef{ItemID: itemID}, nil); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}
	if _, err := env.cart.UpdateItem(1, CartItemRef{ProductID: sku.ProductID, SKUID: sku.ID}, 1); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}
}

func TestCartUpdateToZeroDeletesLine(t *testing.T) {
	env := setupCartServiceTest(t)
	sku := createTestVariant(t, env.db, "cups", skuSpec{price: "5", taxRate: "5"})
	view, err := env.cart.AddItem(1, AddCartItemInput{ProductID: sku.ProductID, SKUID: sku.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	view, err = env.cart.UpdateItem(1, CartItemRef{ItemID: view.Items[0].ID}, 0)
	if err != nil {
		t.Fatalf("update to zero failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected line deleted, got %+v", view.Items)
	}
}

func TestCartValidationFailuresLeaveCartUntouched(t *testing.T) {
	env := setupCartServiceTest(t)
	sku := createTestVariant(t, env.db, "books", skuSpec{price: "30", taxRate: "5"})
	hidden := createTestVariant(t, env.db, "hidden", skuSpec{price: "30", taxRate: "5", inactive: true})
	createTestCoupon(t, env.db, models.Coupon{Code: "FIVE", Value: models.MustMoney("5"), IsActive: true})
	createTestCoupon(t, env.db, models.Coupon{Code: "USEDUP", Value: models.MustMoney("10"), UsageLimit: 1, UsedCount: 1, IsActive: true})

	if _, err := env.cart.AddItem(1, AddCartItemInput{ProductID: sku.ProductID, SKUID: sku.ID, Quantity: 1}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := env.cart.ApplyCoupon(1, "FIVE"); err != nil {
		t.Fatalf("apply coupon failed: %v", err)
	}

	if _, err := env.cart.ApplyCoupon(1, "USEDUP"); !errors.Is(err, ErrCouponUsageLimit) {
		t.Fatalf("expected ErrCouponUsageLimit, got %v", err)
	}
	if _, err := env.cart.AddItem(1, AddCartItemInput{ProductID: hidden.ProductID, SKUID: hidden.ID, Quantity: 1}); !errors.Is(err, ErrVariantUnavailable) {
		t.Fatalf("expected ErrVariantUnavailable, got %v", err)
	}
	if _, err := env.cart.AddItem(1, AddCartItemInput{ProductID: sku.ProductID, SKUID: 999, Quantity: 1}); !errors.Is(err, ErrVariantNotFound) {
		t.Fatalf("expected ErrVariantNotFound, got %v", err)
	}
	if _, err := env.cart.AddItem(1, AddCartItemInput{ProductID: sku.ProductID, SKUID: sku.ID, Quantity: 0}); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := env.cart.SyncItems(1, []SyncCartItemInput{
		{ProductID: sku.ProductID, SKUID: sku.ID, Quantity: 3},
		{ProductID: hidden.ProductID, SKUID: hidden.ID, Quantity: 1},
	}); !errors.Is(err, ErrVariantUnavailable) {
		t.Fatalf("expected sync to fail atomically, got %v", err)
	}
	if _, err := env.cart.ApplyCoupon(1, " "); !errors.Is(err, ErrCouponCodeRequired) {
		t.Fatalf("expected ErrCouponCodeRequired, got %v", err)
	}

	view, err := env.cart.GetCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if view.CouponCode == nil || *view.CouponCode != "FIVE" {
		t.Fatalf("previous coupon must survive a rejected apply: %+v", view.Cart)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != 1 {
		t.Fatalf("items must be unchanged: %+v", view.Items)
	}
	assertTotals(t, view, "30.00", "5.00", "25.00")
}

func TestCartCouponRederivedAndClearedAfterMutation(t *testing.T) {
	env := setupCartServiceTest(t)
	sku := createTestVariant(t, env.db, "lamp", skuSpec{price: "40", taxRate: "5"})
	createTestCoupon(t, env.db, models.Coupon{
		Code:          "TWENTYPCT",
		DiscountType:  constants.CouponTypePercentage,
		Value:         models.MustMoney("20"),
		MinOrderValue: models.MustMoney("100"),
		IsActive:      true,
	})

	if _, err := env.cart.AddItem(1, AddCartItemInput{ProductID: sku.ProductID, SKUID: sku.ID, Quantity: 3}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	view, err := env.cart.ApplyCoupon(1, "TWENTYPCT")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	assertTotals(t, view, "120.00", "24.00", "96.00")

	view, err = env.cart.AddItem(1, AddCartItemInput{ProductID: sku.ProductID, SKUID: sku.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	assertTotals(t, view, "160.00", "32.00", "128.00")

	view, err = env.cart.UpdateItem(1, CartItemRef{ProductID: sku.ProductID, SKUID: sku.ID}, 2)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if view.HasCoupon() {
		t.Fatalf("coupon below minimum must be cleared: %+v", view.Cart)
	}
	if len(view.Notices) != 1 || view.Notices[0] != constants.CartNoticeCouponCleared {
		t.Fatalf("expected coupon cleared notice, got %+v", view.Notices)
	}
	assertTotals(t, view, "80.00", "0.00", "80.00")
}

func TestCartCheckoutRecordsCouponUsage(t *testing.T) {
	env := setupCartServiceTest(t)
	sku := createTestVariant(t, env.db, "chair", skuSpec{price: "99.40", taxRate: "5"})
	coupon := createTestCoupon(t, env.db, models.Coupon{Code: "TEN", Value: models.MustMoney("10"), UsageLimit: 5, IsActive: true})

	if _, err := env.cart.Checkout(1); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
	if _, err := env.cart.AddItem(1, AddCartItemInput{ProductID: sku.ProductID, SKUID: sku.ID, Quantity: 1}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := env.cart.ApplyCoupon(1, "TEN"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	view, err := env.cart.Checkout(1)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if view.Status != constants.CartStatusCheckedOut || view.CheckedOutAt == nil {
		t.Fatalf("unexpected checked out cart: %+v", view.Cart)
	}
	assertTotals(t, view, "99.40", "10.00", "89.00")

	var stored models.Coupon
	if err := env.db.First(&stored, coupon.ID).Error; err != nil {
		t.Fatalf("load coupon failed: %v", err)
	}
	if stored.UsedCount != 1 {
		t.Fatalf("expected used_count 1, got %d", stored.UsedCount)
	}
	var usage models.CouponUsage
	if err := env.db.Where("cart_id = ?", view.ID).First(&usage).Error; err != nil {
		t.Fatalf("load usage failed: %v", err)
	}
	if usage.DiscountAmount.String() != "10.00" || usage.UserID != 1 {
		t.Fatalf("unexpected usage: %+v", usage)
	}

	next, err := env.cart.GetCart(1)
	if err != nil {
		t.Fatalf("get next cart failed: %v", err)
	}
	if next.ID == view.ID || len(next.Items) != 0 || next.Status != constants.CartStatusActive {
		t.Fatalf("expected a fresh active cart, got %+v", next.Cart)
	}
}

func TestCartExpiredCartIsRetiredAndReplacedOnAdd(t *testing.T) {
	env := setupCartServiceTest(t)
	sku := createTestVariant(t, env.db, "bread", skuSpec{price: "4", taxRate: "5"})
	first, err := env.cart.AddItem(1, AddCartItemInput{ProductID: sku.ProductID, SKUID: sku.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if first.ExpiresAt.Before(time.Now().AddDate(0, 0, 29)) {
		t.Fatalf("expected roughly 30 day expiry, got %s", first.ExpiresAt)
	}

	env.cart.now = func() time.Time { return time.Now().AddDate(0, 0, 31) }
	view, err := env.cart.GetCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if view.ID != 0 || len(view.Items) != 0 {
		t.Fatalf("expected an empty unsaved cart, got %+v", view.Cart)
	}
	var old models.Cart
	if err := env.db.First(&old, first.ID).Error; err != nil {
		t.Fatalf("load old cart failed: %v", err)
	}
	if old.Status != constants.CartStatusExpired {
		t.Fatalf("expected old cart expired, got %s", old.Status)
	}

	next, err := env.cart.AddItem(1, AddCartItemInput{ProductID: sku.ProductID, SKUID: sku.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add to new cart failed: %v", err)
	}
	if next.ID == 0 || next.ID == first.ID || len(next.Items) != 1 {
		t.Fatalf("expected a new active cart, got %+v", next.Cart)
	}
}

func TestCartRequiresUser(t *testing.T) {
	env := setupCartServiceTest(t)
	if _, err := env.cart.GetCart(0); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
