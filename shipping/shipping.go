package shipping

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/apperr"
	"storefront/models"
)

var (
	ErrShippingNotFound = apperr.NewNotFound("shipping option not found")
	ErrShippingExists   = apperr.NewConflict("shipping option already exists")
)

// Find loads one option inside tx.
func Find(tx *gorm.DB, id uint) (*models.Shipping, error) {
	var option models.Shipping
	if err := tx.First(&option, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShippingNotFound
		}
		return nil, apperr.NewInternal("could not load shipping option", err)
	}
	return &option, nil
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Options lists every option, cheapest first.
func (s *Service) Options(ctx context.Context) ([]models.Shipping, error) {
	options := []models.Shipping{}
	if err := s.db.WithContext(ctx).Order("price").Order("id").Find(&options).Error; err != nil {
		return nil, apperr.NewInternal("could not load shipping options", err)
	}
	return options, nil
}

func (s *Service) Create(ctx context.Context, name, timeToDelivery string, price decimal.Decimal) (*models.Shipping, error) {
	if name == "" || timeToDelivery == "" {
		return nil, apperr.NewInvalid("name and time to delivery are required")
	}
	if price.IsNegative() {
		return nil, apperr.NewInvalid("price must not be negative")
	}

	option := &models.Shipping{Name: name, TimeToDelivery: timeToDelivery, Price: price}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		//name有唯一索引，已刪除的資料也要算
		if err := tx.Unscoped().Model(&models.Shipping{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return apperr.NewInternal("could not check shipping name", err)
		}
		if count > 0 {
			return ErrShippingExists
		}
		if err := tx.Create(option).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrShippingExists
			}
			return apperr.NewInternal("could not create shipping option", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return option, nil
}
