package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/i18n"
	"github.com/storefront-next/internal/logger"

	"github.com/gin-gonic/gin"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// WindowCounter 固定窗口计数器，返回窗口内累计次数与剩余秒数
type WindowCounter func(ctx context.Context, key string, windowSeconds int) (count int64, ttlSeconds int64, err error)

// RateLimitRule 限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	MessageKey    string
}

// RateLimitMiddleware 频率限制中间件；counter 为空时不限流
func RateLimitMiddleware(counter WindowCounter, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if counter == nil || rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}

		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = fmt.Sprintf("%s:%s", rule.Prefix, key)
		}

		count, ttlSeconds, err := counter(c.Request.Context(), key, rule.WindowSeconds)
		if err != nil {
			logger.Warnw("rate_limit_counter_failed", "key", key, "error", err)
			msg := i18n.T(i18n.ResolveLocale(c), "error.rate_limit_unavailable")
			response.AbortError(c, response.CodeInternal, msg)
			return
		}
		if count > int64(rule.MaxRequests) {
			waitSeconds := int(ttlSeconds)
			if waitSeconds < 1 {
				waitSeconds = rule.WindowSeconds
			}
			msgKey := strings.TrimSpace(rule.MessageKey)
			if msgKey == "" {
				msgKey = "error.rate_limited"
			}
			msg := i18n.Sprintf(i18n.ResolveLocale(c), msgKey, waitSeconds)
			response.AbortError(c, response.CodeTooManyRequests, msg)
			return
		}

		c.Next()
	}
}

// KeyByUserID 已登录用户按用户 ID 限流，否则回退 IP
func KeyByUserID(c *gin.Context) string {
	if value, ok := c.Get(userIDContextKey); ok {
		if uid, ok := value.(uint); ok && uid > 0 {
			return fmt.Sprintf("user:%d", uid)
		}
	}
	return c.ClientIP()
}
