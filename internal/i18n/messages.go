package i18n

var messages = map[string]map[string]string{
	LocaleZH: {
		"error.bad_request":            "请求参数错误",
		"error.unauthorized":           "未登录或登录已失效",
		"error.user_disabled":          "账号已被禁用",
		"error.user_id_type_invalid":   "用户ID类型错误",
		"error.too_many_requests":      "请求过于频繁，请稍后再试",
		"error.auth_header_missing":    "缺少认证信息",
		"error.auth_header_invalid":    "认证信息格式错误",
		"error.token_invalid":          "登录凭证无效",
		"error.token_revoked":          "登录凭证已失效，请重新登录",
		"error.rate_limited":           "操作过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable": "限流服务不可用",
		"error.internal":               "服务器内部错误",
		"error.cart_input_invalid":     "购物车参数错误",
		"error.cart_quantity_invalid":  "商品数量无效",
		"error.cart_not_found":         "购物车不存在",
		"error.cart_not_active":        "购物车状态不可用",
		"error.cart_empty":             "购物车为空",
		"error.cart_item_not_found":    "购物车商品不存在",
		"error.cart_fetch_failed":      "获取购物车失败",
		"error.cart_update_failed":     "更新购物车失败",
		"error.cart_checkout_failed":   "购物车结算失败",
		"error.variant_not_found":      "商品规格不存在",
		"error.variant_unavailable":    "商品规格已下架",
		"error.price_repair_failed":    "商品价格异常，请稍后再试",
		"error.coupon_code_required":   "请输入优惠码",
		"error.coupon_not_found":       "优惠券不存在",
		"error.coupon_inactive":        "优惠券未启用",
		"error.coupon_not_started":     "优惠券尚未生效",
		"error.coupon_expired":         "优惠券已过期",
		"error.coupon_min_amount":      "未达到优惠券使用门槛",
		"error.coupon_usage_limit":     "优惠券已被领完",
		"error.coupon_per_user_limit":  "已达到该优惠券的使用次数上限",
		"error.coupon_invalid":         "优惠券无效",
		"notice.coupon_cleared":        "购物车变动后优惠券已不满足使用条件，已自动移除",
		"notice.quantity_adjusted":     "商品数量已调整为 %d",
		"message.cart_checked_out":     "结算成功",
	},
	LocaleTW: {
		"error.bad_request":            "請求參數錯誤",
		"error.unauthorized":           "未登入或登入已失效",
		"error.user_disabled":          "帳號已被停用",
		"error.user_id_type_invalid":   "使用者ID類型錯誤",
		"error.too_many_requests":      "請求過於頻繁，請稍後再試",
		"error.auth_header_missing":    "缺少認證資訊",
		"error.auth_header_invalid":    "認證資訊格式錯誤",
		"error.token_invalid":          "登入憑證無效",
		"error.token_revoked":          "登入憑證已失效，請重新登入",
		"error.rate_limited":           "操作過於頻繁，請 %d 秒後再試",
		"error.rate_limit_unavailable": "限流服務不可用",
		"error.internal":               "伺服器內部錯誤",
		"error.cart_input_invalid":     "購物車參數錯誤",
		"error.cart_quantity_invalid":  "商品數量無效",
		"error.cart_not_found":         "購物車不存在",
		"error.cart_not_active":        "購物車狀態不可用",
		"error.cart_empty":             "購物車為空",
		"error.cart_item_not_found":    "購物車商品不存在",
		"error.cart_fetch_failed":      "取得購物車失敗",
		"error.cart_update_failed":     "更新購物車失敗",
		"error.cart_checkout_failed":   "購物車結帳失敗",
		"error.variant_not_found":      "商品規格不存在",
		"error.variant_unavailable":    "商品規格已下架",
		"error.price_repair_failed":    "商品價格異常，請稍後再試",
		"error.coupon_code_required":   "請輸入優惠碼",
		"error.coupon_not_found":       "優惠券不存在",
		"error.coupon_inactive":        "優惠券未啟用",
		"error.coupon_not_started":     "優惠券尚未生效",
		"error.coupon_expired":         "優惠券已過期",
		"error.coupon_min_amount":      "未達到優惠券使用門檻",
		"error.coupon_usage_limit":     "優惠券已被領完",
		"error.coupon_per_user_limit":  "已達到該優惠券的使用次數上限",
		"error.coupon_invalid":         "優惠券無效",
		"notice.coupon_cleared":        "購物車變動後優惠券已不符合使用條件，已自動移除",
		"notice.quantity_adjusted":     "商品數量已調整為 %d",
		"message.cart_checked_out":     "結帳成功",
	},
	LocaleEN: {
		"error.bad_request":            "Invalid request parameters",
		"error.unauthorized":           "Not signed in or session expired",
		"error.user_disabled":          "Account disabled",
		"error.user_id_type_invalid":   "Invalid user id type",
		"error.too_many_requests":      "Too many requests, please try again later",
		"error.auth_header_missing":    "Missing authorization header",
		"error.auth_header_invalid":    "Malformed authorization header",
		"error.token_invalid":          "Invalid token",
		"error.token_revoked":          "Token revoked, please sign in again",
		"error.rate_limited":           "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable": "Rate limiter unavailable",
		"error.internal":               "Internal server error",
		"error.cart_input_invalid":     "Invalid cart parameters",
		"error.cart_quantity_invalid":  "Invalid quantity",
		"error.cart_not_found":         "Cart not found",
		"error.cart_not_active":        "Cart is not active",
		"error.cart_empty":             "Cart is empty",
		"error.cart_item_not_found":    "Cart item not found",
		"error.cart_fetch_failed":      "Failed to load cart",
		"error.cart_update_failed":     "Failed to update cart",
		"error.cart_checkout_failed":   "Checkout failed",
		"error.variant_not_found":      "Product variant not found",
		"error.variant_unavailable":    "Product variant unavailable",
		"error.price_repair_failed":    "Product price unavailable, please try again later",
		"error.coupon_code_required":   "Coupon code is required",
		"error.coupon_not_found":       "Coupon not found",
		"error.coupon_inactive":        "Coupon is not active",
		"error.coupon_not_started":     "Coupon is not yet valid",
		"error.coupon_expired":         "Coupon has expired",
		"error.coupon_min_amount":      "Order does not meet the coupon minimum",
		"error.coupon_usage_limit":     "Coupon usage limit reached",
		"error.coupon_per_user_limit":  "You have reached the usage limit for this coupon",
		"error.coupon_invalid":         "Invalid coupon",
		"notice.coupon_cleared":        "The coupon no longer applies to your cart and was removed",
		"notice.quantity_adjusted":     "Quantity adjusted to %d",
		"message.cart_checked_out":     "Checkout complete",
	},
}
