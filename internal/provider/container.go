package provider

import (
	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo          repository.UserRepository
	ProductRepo       repository.ProductRepository
	ProductSKURepo    repository.ProductSKURepository
	CartRepo          repository.CartRepository
	CartItemRepo      repository.CartItemRepository
	CartRepairLogRepo repository.CartRepairLogRepository
	CouponRepo        repository.CouponRepository
	CouponUsageRepo   repository.CouponUsageRepository

	// Services
	UserTokenService *service.UserTokenService
	VariantLookup    *service.CatalogVariantLookup
	CouponService    *service.CouponService
	CartService      *service.CartService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	return NewContainerWithDB(cfg, models.DB, queueClient)
}

// NewContainerWithDB 基于指定数据库连接构建容器
func NewContainerWithDB(cfg *config.Config, db *gorm.DB, queueClient *queue.Client) *Container {
	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories(db)

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.UserRepo = repository.NewUserRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.ProductSKURepo = repository.NewProductSKURepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.CartItemRepo = repository.NewCartItemRepository(db)
	c.CartRepairLogRepo = repository.NewCartRepairLogRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(db)
}

func (c *Container) initServices() {
	c.UserTokenService = service.NewUserTokenService(c.Config.UserJWT)
	c.VariantLookup = service.NewCatalogVariantLookup(c.ProductSKURepo)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.CouponUsageRepo)
	c.CartService = service.NewCartService(
		c.CartRepo,
		c.CartItemRepo,
		c.CouponRepo,
		c.CouponUsageRepo,
		c.CouponService,
		c.VariantLookup,
		c.QueueClient,
		service.CartServiceOptions{
			ExpireDays:     c.Config.Cart.ExpireDays,
			DefaultTaxRate: decimal.NewFromFloat(c.Config.Cart.DefaultTaxRate),
		},
	)
}
