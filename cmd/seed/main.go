package main

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront-next/internal/app"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/provider"

	"github.com/shopspring/decimal"
)

type seedSKU struct {
	Code     string
	Price    string
	Sale     string
	TaxRate  string
	MinQty   int
	MaxQty   int
	IsActive bool
}

type seedProduct struct {
	Slug  string
	Title string
	SKUs  []seedSKU
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := app.PrepareDatabase(context.Background(), cfg); err != nil {
		stdLog.Fatalf("Failed to prepare database: %v", err)
	}

	repos := provider.NewContainerWithDB(cfg, models.DB, nil)

	// 演示用户
	user, err := repos.UserRepo.GetByEmail("demo@storefront.local")
	if err != nil {
		stdLog.Fatalf("Failed to load user: %v", err)
	}
	if user == nil {
		user = &models.User{Email: "demo@storefront.local", Locale: "zh-CN", Status: constants.UserStatusActive}
		if err := repos.UserRepo.Create(user); err != nil {
			stdLog.Fatalf("Failed to create user: %v", err)
		}
	}
	stdLog.Printf("User ready: %s (id=%d)", user.Email, user.ID)

	// 商品与规格
	products := []seedProduct{
		{
			Slug:  "ceramic-mug",
			Title: "Ceramic Mug",
			SKUs: []seedSKU{
				{Code: "white", Price: "52.50", TaxRate: "5", MinQty: 1, MaxQty: 10, IsActive: true},
				{Code: "black", Price: "55.00", Sale: "49.90", TaxRate: "5", MinQty: 1, MaxQty: 10, IsActive: true},
			},
		},
		{
			Slug:  "coffee-beans",
			Title: "Coffee Beans 1kg",
			SKUs: []seedSKU{
				{Code: "house-blend", Price: "65.00", TaxRate: "5", MinQty: 2, MaxQty: 6, IsActive: true},
			},
		},
		{
			Slug:  "gift-card",
			Title: "Gift Card",
			SKUs: []seedSKU{
				{Code: "fifty", Price: "50.00", TaxRate: "0", MinQty: 1, MaxQty: 0, IsActive: true},
				{Code: "retired", Price: "100.00", TaxRate: "0", MinQty: 1, MaxQty: 0, IsActive: false},
			},
		},
	}
	skuCount := 0
	for _, plan := range products {
		product, err := repos.ProductRepo.GetBySlug(plan.Slug)
		if err != nil {
			stdLog.Printf("Failed to load product %s: %v", plan.Slug, err)
			continue
		}
		if product == nil {
			product = &models.Product{Slug: plan.Slug, Title: plan.Title, IsActive: true}
			if err := repos.ProductRepo.Create(product); err != nil {
				stdLog.Printf("Failed to create product %s: %v", plan.Slug, err)
				continue
			}
			stdLog.Printf("Created product: %s", plan.Slug)
		}
		for _, spec := range plan.SKUs {
			sku, err := repos.ProductSKURepo.GetByProductAndCode(product.ID, spec.Code)
			if err != nil {
				stdLog.Printf("Failed to load sku %s/%s: %v", plan.Slug, spec.Code, err)
				continue
			}
			exists := sku != nil
			if !exists {
				sku = &models.ProductSKU{ProductID: product.ID, SKUCode: spec.Code}
			}
			sku.PriceAmount = models.MustMoney(spec.Price)
			sku.TaxRate = models.MustMoney(spec.TaxRate)
			sku.MinQuantity = spec.MinQty
			sku.MaxQuantity = spec.MaxQty
			sku.IsActive = spec.IsActive
			sku.SalePriceAmount = models.NullMoney{}
			if spec.Sale != "" {
				sku.SalePriceAmount = models.NewNullMoney(decimal.RequireFromString(spec.Sale))
			}
			if exists {
				err = repos.ProductSKURepo.Update(sku)
			} else {
				err = repos.ProductSKURepo.Create(sku)
			}
			if err != nil {
				stdLog.Printf("Failed to save sku %s/%s: %v", plan.Slug, spec.Code, err)
				continue
			}
			skuCount++
		}
	}

	// 优惠券
	expired := time.Now().Add(-24 * time.Hour)
	coupons := []models.Coupon{
		{Code: "SAVE10", DiscountType: constants.CouponTypePercentage, Value: models.MustMoney("10"), MaxDiscountAmount: models.MustMoney("50"), IsActive: true},
		{Code: "MINUS20", DiscountType: constants.CouponTypeFixedAmount, Value: models.MustMoney("20"), MinOrderValue: models.MustMoney("100"), PerUserLimit: 1, IsActive: true},
		{Code: "FREESHIP", DiscountType: constants.CouponTypeFreeShipping, Value: models.MustMoney("0"), UsageLimit: 100, IsActive: true},
		{Code: "EXPIRED", DiscountType: constants.CouponTypeFixedAmount, Value: models.MustMoney("5"), EndsAt: &expired, IsActive: true},
	}
	for i := range coupons {
		existing, err := repos.CouponRepo.GetByCode(coupons[i].Code)
		if err != nil {
			stdLog.Printf("Failed to load coupon %s: %v", coupons[i].Code, err)
			continue
		}
		if existing != nil {
			stdLog.Printf("Coupon already exists: %s", coupons[i].Code)
			continue
		}
		if err := repos.CouponRepo.Create(&coupons[i]); err != nil {
			stdLog.Printf("Failed to create coupon %s: %v", coupons[i].Code, err)
			continue
		}
		stdLog.Printf("Created coupon: %s", coupons[i].Code)
	}

	token, expiresAt, err := repos.UserTokenService.GenerateUserJWT(user, 0)
	if err != nil {
		stdLog.Fatalf("Failed to issue token: %v", err)
	}

	fmt.Println("\n✅ Test data created successfully!")
	fmt.Println("Summary:")
	fmt.Printf("- 1 User (%s)\n", user.Email)
	fmt.Printf("- %d Products / %d SKUs\n", len(products), skuCount)
	fmt.Printf("- %d Coupons\n", len(coupons))
	fmt.Printf("\nBearer token (expires %s):\n%s\n", expiresAt.Format(time.RFC3339), token)
}
