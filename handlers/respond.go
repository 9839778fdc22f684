package handlers

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/apperr"
	"storefront/logger"
	"storefront/middleware"
	"storefront/validation"
)

// respondError 依錯誤種類回傳對應狀態碼，內部錯誤只記錄不外洩
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		logger.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
	}
	c.JSON(kind.Status(), gin.H{
		"error": apperr.Message(err),
	})
}

// bindJSON 綁定請求資料，失敗時直接回應400
func bindJSON(c *gin.Context, dest interface{}) bool {
	err := c.ShouldBindJSON(dest)
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) {
		respondError(c, apperr.NewInvalid("request body is required"))
		return false
	}
	respondError(c, apperr.NewInvalid(validation.Describe(err)))
	return false
}

// currentUser 取得登入使用者ID，路由已經過CheckLoginMiddleware
func currentUser(c *gin.Context) (uint, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		respondError(c, apperr.New(apperr.Unauthorized, "authentication credentials were not provided"))
	}
	return id, ok
}

// pathID 解析路徑上的數字ID
func pathID(c *gin.Context, param, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil {
		respondError(c, apperr.NewInvalid(label+" must be an integer"))
		return 0, false
	}
	return uint(id), true
}

// looseID 接受JSON數字或數字字串，缺少時為0
func looseID(value interface{}, label string) (uint, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case float64:
		if v < 0 || v != float64(uint64(v)) {
			return 0, apperr.NewInvalid(label + " must be an integer")
		}
		return uint(v), nil
	case string:
		if v == "" {
			return 0, nil
		}
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, apperr.NewInvalid(label + " must be an integer")
		}
		return uint(id), nil
	default:
		return 0, apperr.NewInvalid(label + " must be an integer")
	}
}
