package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"minority_game/internal/utils"
)

// AuthMiddleware 是一個 Gin 中間件，用於驗證請求攜帶的訪客令牌
// WebSocket 升級請求無法自訂請求頭，所以也接受 token 查詢參數
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			// 檢查 Authorization 頭的格式
			parts := strings.SplitN(authHeader, " ", 2)
			if !(len(parts) == 2 && parts[0] == "Bearer") {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
				c.Abort()
				return
			}
			token = parts[1]
		} else {
			token = c.Query("token")
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		// 解析訪客令牌
		claims, err := utils.ParseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// 將玩家 ID 設置到上下文中
		c.Set("playerID", claims.PlayerID)
		c.Next()
	}
}
