package shared

import (
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// UserIDContextKey 鉴权中间件写入的用户 ID 键
const UserIDContextKey = "user_id"

// CurrentUserID 读取鉴权中间件写入的用户 ID，缺失或类型不符时直接写出错误响应。
func CurrentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(UserIDContextKey)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	uid, ok := value.(uint)
	if !ok {
		RespondError(c, response.CodeInternal, "error.user_id_type_invalid", nil)
		return 0, false
	}
	if uid == 0 {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	return uid, true
}
