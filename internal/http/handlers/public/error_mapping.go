package public

import (
	"errors"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var cartCommonErrorRules = []mappedHandlerError{
	{target: service.ErrUnauthenticated, code: response.CodeUnauthorized, key: "error.unauthorized"},
	{target: service.ErrInvalidCartInput, code: response.CodeBadRequest, key: "error.cart_input_invalid"},
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, key: "error.cart_quantity_invalid"},
	{target: service.ErrCartNotFound, code: response.CodeNotFound, key: "error.cart_not_found"},
	{target: service.ErrCartNotActive, code: response.CodeConflict, key: "error.cart_not_active"},
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, key: "error.cart_item_not_found"},
	{target: service.ErrVariantNotFound, code: response.CodeNotFound, key: "error.variant_not_found"},
	{target: service.ErrVariantUnavailable, code: response.CodeBadRequest, key: "error.variant_unavailable"},
	{target: service.ErrPriceRepairFailed, code: response.CodeBadRequest, key: "error.price_repair_failed"},
}

var cartCouponErrorRules = []mappedHandlerError{
	{target: service.ErrCouponCodeRequired, code: response.CodeBadRequest, key: "error.coupon_code_required"},
	{target: service.ErrCouponNotFound, code: response.CodeNotFound, key: "error.coupon_not_found"},
	{target: service.ErrCouponInactive, code: response.CodeBadRequest, key: "error.coupon_inactive"},
	{target: service.ErrCouponNotStarted, code: response.CodeBadRequest, key: "error.coupon_not_started"},
	{target: service.ErrCouponExpired, code: response.CodeBadRequest, key: "error.coupon_expired"},
	{target: service.ErrCouponMinAmount, code: response.CodeBadRequest, key: "error.coupon_min_amount"},
	{target: service.ErrCouponUsageLimit, code: response.CodeBadRequest, key: "error.coupon_usage_limit"},
	{target: service.ErrCouponPerUserLimit, code: response.CodeBadRequest, key: "error.coupon_per_user_limit"},
	{target: service.ErrCouponInvalid, code: response.CodeBadRequest, key: "error.coupon_invalid"},
}

var cartCheckoutExtraErrorRules = []mappedHandlerError{
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, key: "error.cart_empty"},
}

func respondCartFetchError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartCommonErrorRules, response.CodeInternal, "error.cart_fetch_failed")
}

func respondCartUpdateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartCommonErrorRules, response.CodeInternal, "error.cart_update_failed")
}

func respondCartCouponError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(cartCommonErrorRules, cartCouponErrorRules), response.CodeInternal, "error.cart_update_failed")
}

func respondCartCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(cartCommonErrorRules, cartCouponErrorRules, cartCheckoutExtraErrorRules), response.CodeInternal, "error.cart_checkout_failed")
}
