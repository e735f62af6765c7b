package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type cartTestEnv struct {
	db      *gorm.DB
	cart    *CartService
	coupons *CouponService
}

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.AutoMigrateDB(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

func setupCartServiceTest(t *testing.T) *cartTestEnv {
	t.Helper()
	db := openServiceTestDB(t)
	couponRepo := repository.NewCouponRepository(db)
	usageRepo := repository.NewCouponUsageRepository(db)
	couponService := NewCouponService(couponRepo, usageRepo)
	cartService := NewCartService(
		repository.NewCartRepository(db),
		repository.NewCartItemRepository(db),
		couponRepo,
		usageRepo,
		couponService,
		NewCatalogVariantLookup(repository.NewProductSKURepository(db)),
		nil,
		CartServiceOptions{},
	)
	return &cartTestEnv{db: db, cart: cartService, coupons: couponService}
}

type skuSpec struct {
	price    string
	sale     string
	taxRate  string
	min, max int
	inactive bool
}

func createTestVariant(t *testing.T, db *gorm.DB, slug string, spec skuSpec) *models.ProductSKU {
	t.Helper()
	product := &models.Product{Slug: slug, Title: slug, IsActive: true}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	sku := &models.ProductSKU{
		ProductID:   product.ID,
		SKUCode:     slug + "-v1",
		PriceAmount: models.MustMoney(spec.price),
		TaxRate:     models.MustMoney(spec.taxRate),
		MinQuantity: spec.min,
		MaxQuantity: spec.max,
		IsActive:    true,
	}
	if spec.sale != "" {
		sku.SalePriceAmount = models.NewNullMoney(decimal.RequireFromString(spec.sale))
	}
	if err := db.Create(sku).Error; err != nil {
		t.Fatalf("create sku failed: %v", err)
	}
	if spec.inactive {
		if err := db.Model(sku).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate sku failed: %v", err)
		}
	}
	return sku
}

func createTestCoupon(t *testing.T, db *gorm.DB, coupon models.Coupon) *models.Coupon {
	t.Helper()
	if coupon.DiscountType == "" {
		coupon.DiscountType = constants.CouponTypeFixedAmount
	}
	wantActive := coupon.IsActive
	coupon.IsActive = true
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	if !wantActive {
		if err := db.Model(&coupon).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate coupon failed: %v", err)
		}
		coupon.IsActive = false
	}
	return &coupon
}

func timePtr(v time.Time) *time.Time {
	return &v
}
