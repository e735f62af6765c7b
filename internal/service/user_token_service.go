package service

import (
	"errors"
	"strings"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// UserJWTClaims 用户 JWT 声明，user_id 为唯一的用户标识字段
type UserJWTClaims struct {
	UserID       uint   `json:"user_id"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// UserTokenService 用户 Token 签发与校验
type UserTokenService struct {
	cfg config.JWTConfig
}

// NewUserTokenService 创建用户 Token 服务
func NewUserTokenService(cfg config.JWTConfig) *UserTokenService {
	return &UserTokenService{cfg: cfg}
}

// GenerateUserJWT 生成用户 JWT Token
func (s *UserTokenService) GenerateUserJWT(user *models.User, expireHours int) (string, time.Time, error) {
	if user == nil || user.ID == 0 {
		return "", time.Time{}, errors.New("invalid user")
	}
	resolvedHours := expireHours
	if resolvedHours <= 0 {
		resolvedHours = resolveUserJWTExpireHours(s.cfg)
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(resolvedHours) * time.Hour)
	claims := UserJWTClaims{
		UserID:       user.ID,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseUserJWT 解析用户 JWT Token
func (s *UserTokenService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &UserJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*UserJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("无效的 token")
}

// Authenticate 校验 Token 并返回声明；任何失败统一为 ErrUnauthenticated，声明中的 user_id 保证非 0
func (s *UserTokenService) Authenticate(tokenString string) (*UserJWTClaims, error) {
	trimmed := strings.TrimSpace(tokenString)
	if trimmed == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := s.ParseUserJWT(trimmed)
	if err != nil || claims.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

func resolveUserJWTExpireHours(cfg config.JWTConfig) int {
	if cfg.ExpireHours > 0 {
		return cfg.ExpireHours
	}
	return 24
}
