package public

import (
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/i18n"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加入购物车请求
type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	SKUID     uint `json:"sku_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// UpdateCartItemRequest 修改数量请求（按明细 ID 时忽略 product_id/sku_id）
type UpdateCartItemRequest struct {
	ProductID uint `json:"product_id"`
	SKUID     uint `json:"sku_id"`
	Quantity  *int `json:"quantity" binding:"required"`
}

// SyncCartRequest 多端同步请求
type SyncCartRequest struct {
	Items []service.SyncCartItemInput `json:"items"`
}

// ApplyCouponRequest 应用优惠券请求
type ApplyCouponRequest struct {
	Code string `json:"code"`
}

// CartResponse 购物车响应（附带本地化提示）
type CartResponse struct {
	*service.CartView
	NoticeMessages []string `json:"notice_messages"`
}

func respondCart(c *gin.Context, view *service.CartView) {
	locale := i18n.ResolveLocale(c)
	messages := make([]string, 0, len(view.Notices))
	for _, notice := range view.Notices {
		messages = append(messages, i18n.T(locale, "notice."+notice))
	}
	response.Success(c, CartResponse{CartView: view, NoticeMessages: messages})
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	view, err := h.CartService.GetCart(uid)
	if err != nil {
		respondCartFetchError(c, err)
		return
	}
	respondCart(c, view)
}

// AddCartItem 加入购物车（同规格数量累加）
func (h *Handler) AddCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	view, err := h.CartService.AddItem(uid, service.AddCartItemInput{
		ProductID: req.ProductID,
		SKUID:     req.SKUID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondCartUpdateError(c, err)
		return
	}
	respondCart(c, view)
}

// UpdateCartItem 修改明细数量（/cart/items/:id 或 body 中的商品+规格）
func (h *Handler) UpdateCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseUintValue(c.Param("id"))
	if !ok {
		respondError(c, response.CodeBadRequest, "error.cart_input_invalid", nil)
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	ref := service.CartItemRef{ItemID: itemID}
	if itemID == 0 {
		ref.ProductID = req.ProductID
		ref.SKUID = req.SKUID
	}
	view, err := h.CartService.UpdateItem(uid, ref, *req.Quantity)
	if err != nil {
		respondCartUpdateError(c, err)
		return
	}
	respondCart(c, view)
}

// RemoveCartItem 移除明细（可选 quantity 表示部分移除）
func (h *Handler) RemoveCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseUintValue(c.Param("id"))
	if !ok {
		respondError(c, response.CodeBadRequest, "error.cart_input_invalid", nil)
		return
	}
	ref := service.CartItemRef{ItemID: itemID}
	if itemID == 0 {
		productID, okProduct := parseUintValue(c.Query("product_id"))
		skuID, okSKU := parseUintValue(c.Query("sku_id"))
		if !okProduct || !okSKU {
			respondError(c, response.CodeBadRequest, "error.cart_input_invalid", nil)
			return
		}
		ref.ProductID = productID
		ref.SKUID = skuID
	}
	quantity, ok := parseOptionalInt(c.Query("quantity"))
	if !ok {
		respondError(c, response.CodeBadRequest, "error.cart_quantity_invalid", nil)
		return
	}
	view, err := h.CartService.RemoveItem(uid, ref, quantity)
	if err != nil {
		respondCartUpdateError(c, err)
		return
	}
	respondCart(c, view)
}

// SyncCart 多端同步（未提交的明细保持不变）
func (h *Handler) SyncCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req SyncCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	view, err := h.CartService.SyncItems(uid, req.Items)
	if err != nil {
		respondCartUpdateError(c, err)
		return
	}
	respondCart(c, view)
}

// ApplyCoupon 应用优惠券
func (h *Handler) ApplyCoupon(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	view, err := h.CartService.ApplyCoupon(uid, req.Code)
	if err != nil {
		respondCartCouponError(c, err)
		return
	}
	respondCart(c, view)
}

// RemoveCoupon 移除优惠券
func (h *Handler) RemoveCoupon(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	view, err := h.CartService.RemoveCoupon(uid)
	if err != nil {
		respondCartUpdateError(c, err)
		return
	}
	respondCart(c, view)
}

// CheckoutCart 结算购物车
func (h *Handler) CheckoutCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	view, err := h.CartService.Checkout(uid)
	if err != nil {
		respondCartCheckoutError(c, err)
		return
	}
	respondCart(c, view)
}
