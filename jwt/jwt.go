package jwt

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/apperr"
	"storefront/config"
	"storefront/models"
)

var (
	ErrInvalidToken = apperr.New(apperr.Unauthorized, "invalid or expired token")
	ErrTokenRevoked = apperr.New(apperr.Unauthorized, "token has been logged out")
	ErrUserDisabled = apperr.New(apperr.Unauthorized, "account is disabled or removed")
)

type Claims struct {
	UserID uint
	Role   string
}

// Signer 簽發RS256 Token，並以LoginToken資料表記錄仍有效的Token
type Signer struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	lifetime   time.Duration
	db         *gorm.DB
	now        func() time.Time
}

// 讀取私鑰
func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	keyBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPrivateKeyFromPEM(keyBytes)
}

// 讀取公鑰
func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPublicKeyFromPEM(keyBytes)
}

// NewSigner 啟動時讀取一次金鑰
func NewSigner(cfg config.JWTConfig, lifetime time.Duration, db *gorm.DB) (*Signer, error) {
	privateKey, err := loadPrivateKey(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load private key: %w", err)
	}
	publicKey, err := loadPublicKey(cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load public key: %w", err)
	}
	return &Signer{
		privateKey: privateKey,
		publicKey:  publicKey,
		lifetime:   lifetime,
		db:         db,
		now:        time.Now,
	}, nil
}

// NewSignerWithKey 使用已載入的金鑰，供測試與金鑰不在檔案系統時使用
func NewSignerWithKey(privateKey *rsa.PrivateKey, lifetime time.Duration, db *gorm.DB) *Signer {
	return &Signer{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
		lifetime:   lifetime,
		db:         db,
		now:        time.Now,
	}
}

// GenerateToken 生成JWT Token並寫入資料庫
func (s *Signer) GenerateToken(ctx context.Context, userID uint, role string) (string, error) {
	expiration := s.now().Add(s.lifetime)

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"userID": userID,
		"role":   role,
		"exp":    expiration.Unix(),
		"iat":    s.now().Unix(),
		"jti":    uuid.NewString(),
	})
	tokenString, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", apperr.NewInternal("could not sign token", err)
	}

	err = s.db.WithContext(ctx).Create(&models.LoginToken{
		Token:          tokenString,
		ExpirationTime: expiration,
		UserID:         userID,
		Role:           role,
	}).Error
	if err != nil {
		return "", apperr.NewInternal("could not store token", err)
	}
	return tokenString, nil
}

// VerifyToken 驗證JWT Token並回傳使用者資訊
func (s *Signer) VerifyToken(ctx context.Context, tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.publicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return Claims{}, apperr.Wrap(apperr.Unauthorized, ErrInvalidToken.Message, err)
	}

	//從資料庫檢查Token是否已登出
	var loginToken models.LoginToken
	err = s.db.WithContext(ctx).Where("token = ?", tokenString).First(&loginToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Claims{}, ErrTokenRevoked
		}
		return Claims{}, apperr.NewInternal("could not load token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	userID, ok := claims["userID"].(float64)
	if !ok || uint(userID) != loginToken.UserID {
		return Claims{}, ErrInvalidToken
	}

	//權限以資料庫為準，停用或降級的帳號立即生效
	var user models.User
	err = s.db.WithContext(ctx).Select("id", "role", "is_active").First(&user, loginToken.UserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Claims{}, ErrUserDisabled
		}
		return Claims{}, apperr.NewInternal("could not load token owner", err)
	}
	if !user.IsActive {
		return Claims{}, ErrUserDisabled
	}
	return Claims{UserID: user.ID, Role: user.Role}, nil
}

// RevokeToken 登出時刪除Token
func (s *Signer) RevokeToken(ctx context.Context, tokenString string) error {
	err := s.db.WithContext(ctx).
		Unscoped().
		Where("token = ?", tokenString).
		Delete(&models.LoginToken{}).
		Error
	if err != nil {
		return apperr.NewInternal("could not delete token", err)
	}
	return nil
}

// PurgeExpired 清除過期的Token紀錄
func (s *Signer) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Unscoped().
		Where("expiration_time < ?", s.now()).
		Delete(&models.LoginToken{})
	if result.Error != nil {
		return 0, apperr.NewInternal("could not purge tokens", result.Error)
	}
	return result.RowsAffected, nil
}
