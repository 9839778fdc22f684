package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/jwt"
	"storefront/logger"
	"storefront/middleware"
	"storefront/users"
)

// 註冊使用者帳戶
func RegisterHandler(c *gin.Context, svc *users.Service) {
	var req users.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := svc.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.L().Info("user registered", zap.Uint("user_id", user.ID))
	c.JSON(http.StatusCreated, gin.H{"user": userView(*user)})
}

// 登入並於Authorization標頭回傳Token
func LoginHandler(c *gin.Context, svc *users.Service, signer *jwt.Signer) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	user, err := svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	token, err := signer.GenerateToken(c.Request.Context(), user.ID, user.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Authorization", "Bearer "+token)
	c.JSON(http.StatusOK, gin.H{"user": userView(*user)})
}

// 登出並刪除此LoginToken
func LogoutHandler(c *gin.Context, signer *jwt.Signer) {
	token := c.GetString(middleware.ContextToken)
	if err := signer.RevokeToken(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Authorization", "")
	c.JSON(http.StatusOK, gin.H{"success": "logged out"})
}

// 變更密碼
func ChangePasswordHandler(c *gin.Context, svc *users.Service) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := svc.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "password changed"})
}

// 查詢使用者資料
func GetUserProfileHandler(c *gin.Context, svc *users.Service) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	profile, err := svc.Profile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profileView(*profile)})
}

// 變更使用者資料，所有欄位都會被覆蓋
func UpdateUserProfileHandler(c *gin.Context, svc *users.Service) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req users.ProfileInput
	if !bindJSON(c, &req) {
		return
	}
	profile, err := svc.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profileView(*profile)})
}
