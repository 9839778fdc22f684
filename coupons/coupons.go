// Package coupons looks up discount coupons and applies them to an order total.
package coupons

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/apperr"
	"storefront/models"
)

var (
	ErrCouponNotFound = apperr.NewNotFound("coupon code not found")
	ErrInvalidCoupon  = apperr.NewInvalid("coupon needs either a discount price or a discount percentage")
	ErrCouponExists   = apperr.NewConflict("coupon name already exists")
)

var hundred = decimal.NewFromInt(100)

// Coupon is either a fixed price or a percentage discount, never both.
type Coupon struct {
	ID                 uint             `json:"id"`
	Name               string           `json:"name"`
	DiscountPrice      *decimal.Decimal `json:"discount_price,omitempty"`
	DiscountPercentage *int             `json:"discount_percentage,omitempty"`
}

// Discount returns how much the coupon takes off total, at most total itself.
func (c Coupon) Discount(total decimal.Decimal) decimal.Decimal {
	var off decimal.Decimal
	switch {
	case c.DiscountPrice != nil:
		off = *c.DiscountPrice
	case c.DiscountPercentage != nil:
		off = total.Mul(decimal.NewFromInt(int64(*c.DiscountPercentage))).Div(hundred).Round(2)
	}
	if off.GreaterThan(total) {
		return total
	}
	if off.IsNegative() {
		return decimal.Zero
	}
	return off
}

// Lookup checks fixed price coupons before percentage coupons.
func Lookup(tx *gorm.DB, name string) (*Coupon, error) {
	var fixed models.FixedPriceCoupon
	err := tx.Where("name = ?", name).First(&fixed).Error
	if err == nil {
		price := fixed.DiscountPrice
		return &Coupon{ID: fixed.ID, Name: fixed.Name, DiscountPrice: &price}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewInternal("could not load coupon", err)
	}

	var percentage models.PercentageCoupon
	err = tx.Where("name = ?", name).First(&percentage).Error
	if err == nil {
		pct := percentage.DiscountPercentage
		return &Coupon{ID: percentage.ID, Name: percentage.Name, DiscountPercentage: &pct}, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCouponNotFound
	}
	return nil, apperr.NewInternal("could not load coupon", err)
}

type Service struct {
	db *gorm.DB
}

func createError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrCouponExists
	}
	return apperr.NewInternal("could not create coupon", err)
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Check(ctx context.Context, name string) (*Coupon, error) {
	if name == "" {
		return nil, ErrCouponNotFound
	}
	return Lookup(s.db.WithContext(ctx), name)
}

// Create stores a new coupon. The name must be unused by both coupon kinds.
func (s *Service) Create(ctx context.Context, c Coupon) (*Coupon, error) {
	if (c.DiscountPrice == nil) == (c.DiscountPercentage == nil) {
		return nil, ErrInvalidCoupon
	}
	if c.DiscountPrice != nil && !c.DiscountPrice.IsPositive() {
		return nil, apperr.NewInvalid("discount price must be positive")
	}
	if c.DiscountPercentage != nil && (*c.DiscountPercentage < 1 || *c.DiscountPercentage > 100) {
		return nil, apperr.NewInvalid("discount percentage must be between 1 and 100")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := Lookup(tx.Unscoped(), c.Name)
		if err == nil {
			return ErrCouponExists
		}
		if !errors.Is(err, ErrCouponNotFound) {
			return err
		}

		if c.DiscountPrice != nil {
			row := models.FixedPriceCoupon{Name: c.Name, DiscountPrice: *c.DiscountPrice}
			if err := tx.Create(&row).Error; err != nil {
				return apperr.NewInternal("could not create coupon", err)
			}
			c.ID = row.ID
			return nil
		}
		row := models.PercentageCoupon{Name: c.Name, DiscountPercentage: *c.DiscountPercentage}
		if err := tx.Create(&row).Error; err != nil {
			return createError(err)
		}
		c.ID = row.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}
