package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 檢查是否有登入，沒有則中止請求
func CheckLoginMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := UserID(c); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication credentials were not provided",
			})
			return
		}
		c.Next()
	}
}
