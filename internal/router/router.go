package router

import (
	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	publichandlers "github.com/storefront-next/internal/http/handlers/public"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	cartHandler := publichandlers.New(c)
	cartWriteRule := RateLimitRule{
		Prefix:        "cart_write",
		WindowSeconds: cfg.Cart.RateLimit.WindowSeconds,
		MaxRequests:   cfg.Cart.RateLimit.MaxRequests,
		MessageKey:    "error.rate_limited",
	}
	var writeCounter WindowCounter
	if cache.Enabled() {
		writeCounter = cache.IncrWindow
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", func(ctx *gin.Context) {
		response.Success(ctx, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		cart := apiV1.Group("/cart")
		cart.Use(UserJWTAuthMiddleware(c.UserTokenService, c.UserRepo))
		{
			cart.GET("", cartHandler.GetCart)

			writes := cart.Group("")
			writes.Use(RateLimitMiddleware(writeCounter, cartWriteRule, KeyByUserID))
			{
				writes.POST("/items", cartHandler.AddCartItem)
				writes.PUT("/items", cartHandler.UpdateCartItem)
				writes.PUT("/items/:id", cartHandler.UpdateCartItem)
				writes.DELETE("/items", cartHandler.RemoveCartItem)
				writes.DELETE("/items/:id", cartHandler.RemoveCartItem)
				writes.POST("/sync", cartHandler.SyncCart)
				writes.POST("/coupon", cartHandler.ApplyCoupon)
				writes.DELETE("/coupon", cartHandler.RemoveCoupon)
				writes.POST("/checkout", cartHandler.CheckoutCart)
			}
		}
	}

	return r
}
