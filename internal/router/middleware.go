package router

import (
	"context"
	"strings"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/i18n"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"
const userIDContextKey = handlershared.UserIDContextKey

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Language",
			"Authorization",
			requestIDHeader,
		}
	}
	corsCfg := cors.Config{
		AllowMethods:     allowedMethods,
		AllowHeaders:     allowedHeaders,
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           time.Duration(cfg.MaxAge) * time.Second,
	}
	// 通配且需要携带凭证时回显 Origin
	corsCfg.AllowOriginFunc = func(origin string) bool {
		return resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials) != ""
	}
	return cors.New(corsCfg)
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if uid, ok := c.Get(userIDContextKey); ok {
			log = log.With("user_id", uid)
		}
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

func abortUnauthorized(c *gin.Context, key string) {
	response.AbortError(c, response.CodeUnauthorized, i18n.T(i18n.ResolveLocale(c), key))
}

// authStateStore 用户鉴权快照存取
type authStateStore interface {
	Get(ctx context.Context, userID uint) (*cache.UserAuthState, bool, error)
	Set(ctx context.Context, state *cache.UserAuthState) error
	Del(ctx context.Context, userID uint) error
}

type redisAuthStates struct{}

func (redisAuthStates) Get(ctx context.Context, userID uint) (*cache.UserAuthState, bool, error) {
	return cache.GetUserAuthState(ctx, userID)
}

func (redisAuthStates) Set(ctx context.Context, state *cache.UserAuthState) error {
	return cache.SetUserAuthState(ctx, state)
}

func (redisAuthStates) Del(ctx context.Context, userID uint) error {
	return cache.DelUserAuthState(ctx, userID)
}

// UserJWTAuthMiddleware 用户 JWT 鉴权中间件（鉴权快照优先读缓存，未命中回源数据库）
func UserJWTAuthMiddleware(tokenService *service.UserTokenService, userRepo repository.UserRepository) gin.HandlerFunc {
	return userJWTAuth(tokenService, userRepo, redisAuthStates{})
}

func userJWTAuth(tokenService *service.UserTokenService, userRepo repository.UserRepository, states authStateStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenService == nil || userRepo == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "error.auth_header_missing")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			abortUnauthorized(c, "error.auth_header_invalid")
			return
		}

		claims, err := tokenService.Authenticate(parts[1])
		if err != nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}

		ctx := c.Request.Context()
		if cached, hit, cacheErr := states.Get(ctx, claims.UserID); cacheErr == nil && hit && cached != nil {
			if isActiveUserStatus(cached.Status) &&
				claims.TokenVersion == cached.TokenVersion &&
				isIssuedAfterInvalidBeforeUnix(claims.IssuedAt, cached.TokenInvalidBefore) {
				c.Set(userIDContextKey, claims.UserID)
				c.Next()
				return
			}
			// 快照可能落后于数据库，拒绝前删除并回源确认
			if err := states.Del(ctx, claims.UserID); err != nil {
				handlershared.RequestLog(c).Warnw("auth_state_evict_failed", "user_id", claims.UserID, "error", err)
			}
		}

		user, err := userRepo.GetByID(claims.UserID)
		if err != nil || user == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		_ = states.Set(ctx, cache.BuildUserAuthState(user))
		if !isActiveUserStatus(user.Status) {
			abortUnauthorized(c, "error.user_disabled")
			return
		}
		if claims.TokenVersion != user.TokenVersion || !isIssuedAfterInvalidBefore(claims.IssuedAt, user.TokenInvalidBefore) {
			abortUnauthorized(c, "error.token_revoked")
			return
		}

		c.Set(userIDContextKey, claims.UserID)
		c.Next()
	}
}

func isIssuedAfterInvalidBefore(issuedAt *jwt.NumericDate, invalidBefore *time.Time) bool {
	if invalidBefore == nil {
		return true
	}
	if issuedAt == nil {
		return false
	}
	return issuedAt.Time.Unix() >= invalidBefore.Unix()
}

func isIssuedAfterInvalidBeforeUnix(issuedAt *jwt.NumericDate, invalidBeforeUnix int64) bool {
	if invalidBeforeUnix <= 0 {
		return true
	}
	if issuedAt == nil {
		return false
	}
	return issuedAt.Time.Unix() >= invalidBeforeUnix
}

func isActiveUserStatus(status string) bool {
	return strings.ToLower(strings.TrimSpace(status)) == constants.UserStatusActive
}
