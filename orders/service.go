// Package orders turns a user's cart into a paid order.
package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/apperr"
	"storefront/cart"
	"storefront/coupons"
	"storefront/models"
	"storefront/shipping"
)

var (
	ErrEmptyCart       = apperr.NewInvalid("cart is empty")
	ErrOutOfStock      = apperr.NewConflict("not enough items in stock")
	ErrProductNotFound = apperr.NewNotFound("product not found")
	ErrOrderNotFound   = apperr.NewNotFound("order not found")
)

type CheckoutRequest struct {
	ShippingID          uint   `json:"shipping_id" binding:"required"`
	CouponName          string `json:"coupon_name"`
	FullName            string `json:"full_name" binding:"required"`
	AddressLine1        string `json:"address_line_1" binding:"required"`
	AddressLine2        string `json:"address_line_2"`
	City                string `json:"city" binding:"required"`
	StateProvinceRegion string `json:"state_province_region" binding:"required"`
	PostalZipCode       string `json:"postal_zip_code" binding:"required"`
	CountryRegion       string `json:"country_region" binding:"required"`
	TelephoneNumber     string `json:"telephone_number" binding:"required"`
}

// ProductCache is told which products changed stock once a checkout commits.
type ProductCache interface {
	InvalidateProducts(ctx context.Context, ids ...uint)
}

type Service struct {
	db       *gorm.DB
	products ProductCache
	now      func() time.Time
}

// NewService builds the order service. products may be nil when nothing caches product details.
func NewService(db *gorm.DB, products ProductCache) *Service {
	return &Service{db: db, products: products, now: time.Now}
}

// Amount is the items total minus the coupon plus shipping, floored at zero.
func Amount(itemsTotal decimal.Decimal, coupon *coupons.Coupon, shippingPrice decimal.Decimal) decimal.Decimal {
	amount := itemsTotal
	if coupon != nil {
		amount = amount.Sub(coupon.Discount(itemsTotal))
	}
	amount = amount.Add(shippingPrice)
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// Checkout locks the cart products, moves stock into sold, writes the order and
// empties the cart, all in one transaction.
func (s *Service) Checkout(ctx context.Context, userID uint, req CheckoutRequest) (*models.Order, error) {
	var (
		order   *models.Order
		touched []uint
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userCart, err := cart.ForUser(tx, userID)
		if err != nil {
			return err
		}

		var lines []models.CartItem
		if err := tx.Where("cart_id = ?", userCart.ID).Order("id").Find(&lines).Error; err != nil {
			return apperr.NewInternal("could not load cart items", err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		option, err := shipping.Find(tx, req.ShippingID)
		if err != nil {
			return err
		}
		var coupon *coupons.Coupon
		if req.CouponName != "" {
			if coupon, err = coupons.Lookup(tx, req.CouponName); err != nil {
				return err
			}
		}

		ids := make([]uint, len(lines))
		for i, line := range lines {
			ids[i] = line.ProductID
		}
		var locked []models.Product
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).
			Order("id").
			Find(&locked).
			Error
		if err != nil {
			return apperr.NewInternal("could not lock products", err)
		}
		products := make(map[uint]models.Product, len(locked))
		for _, p := range locked {
			products[p.ID] = p
		}

		now := s.now()
		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			product, ok := products[line.ProductID]
			if !ok {
				return ErrProductNotFound
			}
			if !product.InStock(line.Count) {
				return apperr.Wrap(apperr.Conflict, ErrOutOfStock.Message, errors.New(product.Name))
			}
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Count))))
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
				Count:     line.Count,
				DateAdded: now,
			})

			//扣庫存並累計銷售量
			err := tx.Model(&models.Product{}).
				Where("id = ?", product.ID).
				Updates(map[string]interface{}{
					"quantity": gorm.Expr("quantity - ?", line.Count),
					"sold":     gorm.Expr("sold + ?", line.Count),
				}).Error
			if err != nil {
				return apperr.NewInternal("could not update stock", err)
			}
		}

		order = &models.Order{
			Status:              models.OrderNotProcessed,
			UserID:              userID,
			TransactionID:       uuid.NewString(),
			Amount:              Amount(total, coupon, option.Price),
			FullName:            req.FullName,
			AddressLine1:        req.AddressLine1,
			AddressLine2:        req.AddressLine2,
			City:                req.City,
			StateProvinceRegion: req.StateProvinceRegion,
			PostalZipCode:       req.PostalZipCode,
			CountryRegion:       req.CountryRegion,
			TelephoneNumber:     req.TelephoneNumber,
			ShippingName:        option.Name,
			ShippingTime:        option.TimeToDelivery,
			ShippingPrice:       option.Price,
			DateIssued:          now,
			OrderItems:          items,
		}
		if err := tx.Omit("User").Create(order).Error; err != nil {
			return apperr.NewInternal("could not create order", err)
		}

		touched = ids
		return cart.Clear(tx, userCart.ID)
	})
	if err != nil {
		return nil, err
	}
	//庫存已變動，清除商品詳細資料快取
	if s.products != nil {
		s.products.InvalidateProducts(ctx, touched...)
	}
	return order, nil
}

// Orders lists the user's orders, newest first.
func (s *Service) Orders(ctx context.Context, userID uint) ([]models.Order, error) {
	result := []models.Order{}
	err := s.db.WithContext(ctx).
		Preload("OrderItems").
		Where("user_id = ?", userID).
		Order("date_issued DESC").
		Order("id DESC").
		Find(&result).
		Error
	if err != nil {
		return nil, apperr.NewInternal("could not load orders", err)
	}
	return result, nil
}

// Order returns one of the user's own orders.
func (s *Service) Order(ctx context.Context, userID uint, transactionID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("OrderItems").
		Preload("OrderItems.Product").
		Where("user_id = ? AND transaction_id = ?", userID, transactionID).
		First(&order).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, apperr.NewInternal("could not load order", err)
	}
	return &order, nil
}
