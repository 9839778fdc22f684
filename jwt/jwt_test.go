package jwt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"storefront/apperr"
	"storefront/config"
	"storefront/dbtest"
	"storefront/models"
)

func writeKeys(t *testing.T) (config.JWTConfig, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	cfg := config.JWTConfig{
		PrivateKeyPath: filepath.Join(dir, "private_key.pem"),
		PublicKeyPath:  filepath.Join(dir, "public_key.pem"),
	}

	private := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	public := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})
	if err := os.WriteFile(cfg.PrivateKeyPath, private, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.PublicKeyPath, public, 0o644); err != nil {
		t.Fatal(err)
	}
	return cfg, key
}

func createUser(t *testing.T, db *gorm.DB, email, role string) uint {
	t.Helper()
	user := models.User{Email: email, FirstName: "Ana", LastName: "Lopez", Password: "x", Role: role}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	return user.ID
}

func TestGenerateVerifyRevoke(t *testing.T) {
	db := dbtest.Open(t)
	cfg, _ := writeKeys(t)
	signer, err := NewSigner(cfg, time.Hour, db)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	ctx := context.Background()
	userID := createUser(t, db, "ana@example.com", models.RoleAdmin)

	token, err := signer.GenerateToken(ctx, userID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := signer.VerifyToken(ctx, token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != userID || claims.Role != models.RoleAdmin {
		t.Fatalf("claims = %+v", claims)
	}

	other, err := signer.GenerateToken(ctx, userID, models.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}
	if other == token {
		t.Fatal("tokens issued back to back must differ")
	}

	if err := signer.RevokeToken(ctx, token); err != nil {
		t.Fatal(err)
	}
	if _, err := signer.VerifyToken(ctx, token); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("revoked token: err = %v", err)
	}
	if _, err := signer.VerifyToken(ctx, other); err != nil {
		t.Fatalf("logout must only drop its own token: %v", err)
	}
}

func TestVerifyRejectsForeignAndExpiredTokens(t *testing.T) {
	db := dbtest.Open(t)
	_, key := writeKeys(t)
	signer := NewSignerWithKey(key, time.Hour, db)
	ctx := context.Background()

	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userID": 1, "role": "admin"})
	forged, err := hs.SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := signer.VerifyToken(ctx, forged); apperr.KindOf(err) != apperr.Unauthorized {
		t.Fatalf("HS256 token: err = %v", err)
	}
	if _, err := signer.VerifyToken(ctx, "not-a-token"); apperr.KindOf(err) != apperr.Unauthorized {
		t.Fatalf("garbage: err = %v", err)
	}

	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return issued }
	token, err := signer.GenerateToken(ctx, createUser(t, db, "bea@example.com", models.RoleUser), models.RoleUser)
	if err != nil {
		t.Fatal(err)
	}
	signer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, err := signer.VerifyToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired: err = %v", err)
	}

	purged, err := signer.PurgeExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if purged != 1 {
		t.Fatalf("purged = %d", purged)
	}
}

func TestVerifyFollowsAccountChanges(t *testing.T) {
	db := dbtest.Open(t)
	_, key := writeKeys(t)
	signer := NewSignerWithKey(key, time.Hour, db)
	ctx := context.Background()
	userID := createUser(t, db, "cai@example.com", models.RoleAdmin)

	token, err := signer.GenerateToken(ctx, userID, models.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		column  string
		value   interface{}
		wantErr error
		role    string
	}{
		{"demoted", "role", models.RoleUser, nil, models.RoleUser},
		{"disabled", "is_active", false, ErrUserDisabled, ""},
	}
	for _, tt := range tests {
		if err := db.Model(&models.User{}).Where("id = ?", userID).Update(tt.column, tt.value).Error; err != nil {
			t.Fatal(err)
		}
		claims, err := signer.VerifyToken(ctx, token)
		if !errors.Is(err, tt.wantErr) {
			t.Fatalf("%s: err = %v, want %v", tt.name, err, tt.wantErr)
		}
		if claims.Role != tt.role {
			t.Fatalf("%s: role = %q, want %q", tt.name, claims.Role, tt.role)
		}
	}
}

func TestNewSignerMissingKey(t *testing.T) {
	_, err := NewSigner(config.JWTConfig{PrivateKeyPath: "missing.pem", PublicKeyPath: "missing.pem"}, time.Hour, nil)
	if err == nil {
		t.Fatal("expected error for missing key files")
	}
}
