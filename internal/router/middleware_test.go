package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if resp := strings.TrimSpace(generated); resp == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

func TestCORSMiddlewarePreflightEchoesOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true, MaxAge: 600}))
	r.POST("/api/v1/cart/items", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart/items", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status want 204 got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Fatalf("allow origin want echoed origin got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("allow credentials want true got %q", got)
	}
}

type authTestEnv struct {
	db       *gorm.DB
	tokens   *service.UserTokenService
	engine   *gin.Engine
	userRepo repository.UserRepository
}

type memoryAuthStates struct {
	states  map[uint]*cache.UserAuthState
	evicted []uint
}

func newMemoryAuthStates() *memoryAuthStates {
	return &memoryAuthStates{states: map[uint]*cache.UserAuthState{}}
}

func (m *memoryAuthStates) Get(_ context.Context, userID uint) (*cache.UserAuthState, bool, error) {
	state, ok := m.states[userID]
	if !ok {
		return nil, false, nil
	}
	copied := *state
	return &copied, true, nil
}

func (m *memoryAuthStates) Set(_ context.Context, state *cache.UserAuthState) error {
	if state != nil {
		copied := *state
		m.states[state.UserID] = &copied
	}
	return nil
}

func (m *memoryAuthStates) Del(_ context.Context, userID uint) error {
	delete(m.states, userID)
	m.evicted = append(m.evicted, userID)
	return nil
}

func setupAuthTest(t *testing.T) *authTestEnv {
	return setupAuthTestWithStates(t, nil)
}

func setupAuthTestWithStates(t *testing.T, states authStateStore) *authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate users failed: %v", err)
	}
	tokens := service.NewUserTokenService(config.JWTConfig{SecretKey: "router-test-secret", ExpireHours: 1})
	userRepo := repository.NewUserRepository(db)

	r := gin.New()
	if states != nil {
		r.Use(userJWTAuth(tokens, userRepo, states))
	} else {
		r.Use(UserJWTAuthMiddleware(tokens, userRepo))
	}
	r.GET("/cart", func(c *gin.Context) {
		uid, _ := c.Get(userIDContextKey)
		c.JSON(http.StatusOK, gin.H{"status_code": 0, "user_id": uid})
	})
	return &authTestEnv{db: db, tokens: tokens, engine: r, userRepo: userRepo}
}

func (e *authTestEnv) call(t *testing.T, authHeader string) (int, uint) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	e.engine.ServeHTTP(w, req)
	var resp struct {
		StatusCode int  `json:"status_code"`
		UserID     uint `json:"user_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode, resp.UserID
}

func TestUserJWTAuthMiddleware(t *testing.T) {
	env := setupAuthTest(t)
	user := &models.User{Email: "buyer@example.com", Status: constants.UserStatusActive}
	if err := env.userRepo.Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	token, _, err := env.tokens.GenerateUserJWT(user, 1)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	if code, uid := env.call(t, "Bearer "+token); code != 0 || uid != user.ID {
		t.Fatalf("valid token want user %d got code=%d uid=%d", user.ID, code, uid)
	}
	if code, _ := env.call(t, ""); code != 401 {
		t.Fatalf("missing header want 401 got %d", code)
	}
	if code, _ := env.call(t, "Token "+token); code != 401 {
		t.Fatalf("malformed header want 401 got %d", code)
	}
	if code, _ := env.call(t, "Bearer not-a-jwt"); code != 401 {
		t.Fatalf("invalid token want 401 got %d", code)
	}

	user.TokenVersion = 1
	if err := env.userRepo.Update(user); err != nil {
		t.Fatalf("bump token version failed: %v", err)
	}
	if code, _ := env.call(t, "Bearer "+token); code != 401 {
		t.Fatalf("revoked token want 401 got %d", code)
	}
}

func TestUserJWTAuthMiddlewareRejectsDisabledUser(t *testing.T) {
	env := setupAuthTest(t)
	user := &models.User{Email: "blocked@example.com", Status: constants.UserStatusDisabled}
	if err := env.userRepo.Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	token, _, err := env.tokens.GenerateUserJWT(user, 1)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if code, _ := env.call(t, "Bearer "+token); code != 401 {
		t.Fatalf("disabled user want 401 got %d", code)
	}
}

func TestUserJWTAuthEvictsStaleSnapshot(t *testing.T) {
	states := newMemoryAuthStates()
	env := setupAuthTestWithStates(t, states)
	user := &models.User{Email: "rotated@example.com", Status: constants.UserStatusActive, TokenVersion: 1}
	if err := env.userRepo.Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	// 快照停留在版本号提升之前
	states.states[user.ID] = &cache.UserAuthState{UserID: user.ID, Status: constants.UserStatusActive, TokenVersion: 0}

	token, _, err := env.tokens.GenerateUserJWT(user, 1)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if code, uid := env.call(t, "Bearer "+token); code != 0 || uid != user.ID {
		t.Fatalf("fresh token with stale snapshot want accepted, got code=%d uid=%d", code, uid)
	}
	if len(states.evicted) != 1 || states.evicted[0] != user.ID {
		t.Fatalf("expected stale snapshot evicted, got %+v", states.evicted)
	}
	if cached := states.states[user.ID]; cached == nil || cached.TokenVersion != 1 {
		t.Fatalf("expected snapshot refreshed from db, got %+v", cached)
	}

	user.Status = constants.UserStatusDisabled
	if err := env.userRepo.Update(user); err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	// 快照仍有效时直接放行，不回源
	if code, _ := env.call(t, "Bearer "+token); code != 0 {
		t.Fatalf("valid snapshot want accepted, got %d", code)
	}

	states.states[user.ID].Status = constants.UserStatusDisabled
	if code, _ := env.call(t, "Bearer "+token); code != 401 {
		t.Fatalf("disabled user want 401, got %d", code)
	}
	if len(states.evicted) != 2 {
		t.Fatalf("expected second eviction, got %+v", states.evicted)
	}
	if cached := states.states[user.ID]; cached == nil || cached.Status != constants.UserStatusDisabled {
		t.Fatalf("expected disabled snapshot cached from db, got %+v", cached)
	}
}
