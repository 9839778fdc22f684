// Package users registers accounts, checks credentials and keeps shipping profiles.
package users

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storefront/apperr"
	"storefront/models"
)

var (
	ErrInvalidEmail       = apperr.NewInvalid("invalid email address")
	ErrWeakPassword       = apperr.NewInvalid("password must be 8 to 50 characters with upper and lower case letters, a digit and a symbol")
	ErrEmailTaken         = apperr.NewConflict("email already registered")
	ErrInvalidCredentials = apperr.New(apperr.Unauthorized, "invalid email or password")
	ErrInactive           = apperr.New(apperr.Forbidden, "account is disabled")
	ErrUserNotFound       = apperr.NewNotFound("user not found")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// 檢查信箱是否合法
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// 檢查密碼是否合法
func ValidatePassword(password string) bool {
	if len(password) < 8 || len(password) > 50 {
		return false
	}

	var isUpper, isLower, isNumber, isSpecial bool
	for _, s := range password {
		switch {
		case unicode.IsSpace(s):
			return false
		case unicode.IsUpper(s):
			isUpper = true
		case unicode.IsLower(s):
			isLower = true
		case unicode.IsDigit(s):
			isNumber = true
		case unicode.IsPunct(s) || unicode.IsSymbol(s):
			isSpecial = true
		}
	}
	return isUpper && isLower && isNumber && isSpecial
}

type RegisterInput struct {
	Email     string `json:"email" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// ProfileInput replaces every profile field.
type ProfileInput struct {
	AddressLine1        string `json:"address_line_1"`
	AddressLine2        string `json:"address_line_2"`
	City                string `json:"city"`
	StateProvinceRegion string `json:"state_province_region"`
	Zipcode             string `json:"zipcode"`
	Phone               string `json:"phone"`
	CountryRegion       string `json:"country_region"`
}

type Service struct {
	db   *gorm.DB
	cost int
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, cost: bcrypt.DefaultCost}
}

func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}

// Register creates the user together with an empty cart, wishlist and profile.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if !ValidateEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !ValidatePassword(in.Password) {
		return nil, ErrWeakPassword
	}

	//將密碼Hash
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, apperr.NewInternal("could not hash password", err)
	}

	user := &models.User{
		Email:     email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  string(hashed),
		Role:      models.RoleUser,
		IsActive:  true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return apperr.NewInternal("could not check email", err)
		}
		if count > 0 {
			return ErrEmailTaken
		}

		if err := tx.Create(user).Error; err != nil {
			return apperr.NewInternal("could not create user", err)
		}
		if err := tx.Create(&models.Cart{UserID: user.ID}).Error; err != nil {
			return apperr.NewInternal("could not create cart", err)
		}
		if err := tx.Create(&models.WishList{UserID: user.ID}).Error; err != nil {
			return apperr.NewInternal("could not create wishlist", err)
		}
		profile := models.UserProfile{UserID: user.ID, CountryRegion: models.DefaultCountry}
		if err := tx.Create(&profile).Error; err != nil {
			return apperr.NewInternal("could not create profile", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks the credentials and returns the matching active user.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperr.NewInternal("could not load user", err)
	}

	//檢查密碼是否正確
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactive
	}
	return &user, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.User(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if !ValidatePassword(newPassword) {
		return ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return apperr.NewInternal("could not hash password", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password", string(hashed)).Error; err != nil {
		return apperr.NewInternal("could not update password", err)
	}
	return nil
}

func (s *Service) User(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.NewInternal("could not load user", err)
	}
	return &user, nil
}

// List returns every account, oldest first.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	result := []models.User{}
	if err := s.db.WithContext(ctx).Order("id").Find(&result).Error; err != nil {
		return nil, apperr.NewInternal("could not load users", err)
	}
	return result, nil
}

func profileFor(tx *gorm.DB, userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := tx.Where(models.UserProfile{UserID: userID}).
		Attrs(models.UserProfile{CountryRegion: models.DefaultCountry}).
		FirstOrCreate(&profile).
		Error
	if err != nil {
		return nil, apperr.NewInternal("could not load profile", err)
	}
	return &profile, nil
}

func (s *Service) Profile(ctx context.Context, userID uint) (*models.UserProfile, error) {
	return profileFor(s.db.WithContext(ctx), userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.UserProfile, error) {
	if in.CountryRegion == "" {
		in.CountryRegion = models.DefaultCountry
	}

	var profile *models.UserProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if profile, err = profileFor(tx, userID); err != nil {
			return err
		}
		profile.AddressLine1 = in.AddressLine1
		profile.AddressLine2 = in.AddressLine2
		profile.City = in.City
		profile.StateProvinceRegion = in.StateProvinceRegion
		profile.Zipcode = in.Zipcode
		profile.Phone = in.Phone
		profile.CountryRegion = in.CountryRegion
		if err := tx.Save(profile).Error; err != nil {
			return apperr.NewInternal("could not update profile", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}
