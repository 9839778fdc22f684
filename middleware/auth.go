package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/jwt"
)

const (
	ContextUserID = "UserID"
	ContextRole   = "Role"
	ContextToken  = "Token"
)

// AuthMiddleware 解析Bearer Token，合法時將使用者資訊放入Context
func AuthMiddleware(signer *jwt.Signer, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		if token == "" {
			c.Next()
			return
		}

		//如Token不合法或已登出則視為未登入
		claims, err := signer.VerifyToken(c.Request.Context(), token)
		if err != nil {
			log.Debug("token rejected", zap.String("path", c.FullPath()), zap.Error(err))
			c.Next()
			return
		}

		c.Set(ContextToken, token)
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// UserID 取得登入使用者ID
func UserID(c *gin.Context) (uint, bool) {
	value, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
