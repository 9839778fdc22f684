// Package cart keeps each user's shopping cart and its item counter.
package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/apperr"
	"storefront/models"
)

var (
	ErrProductNotFound = apperr.NewNotFound("product not found")
	ErrItemNotFound    = apperr.NewNotFound("item is not in the cart")
	ErrItemExists      = apperr.NewConflict("item already in cart")
	ErrOutOfStock      = apperr.NewConflict("not enough items in stock")
	ErrInvalidCount    = apperr.NewInvalid("count must be at least 1")
)

type Totals struct {
	TotalCost        decimal.Decimal `json:"total_cost"`
	TotalCompareCost decimal.Decimal `json:"total_compare_cost"`
}

// SyncItem is one line of a cart kept by the client before login.
type SyncItem struct {
	ProductID uint `json:"product_id" binding:"required"`
	Count     int  `json:"count" binding:"required,min=1"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ForUser returns the user's cart, creating it when registration did not.
func ForUser(tx *gorm.DB, userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := tx.Where(models.Cart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
		return nil, apperr.NewInternal("could not load cart", err)
	}
	return &cart, nil
}

func findProduct(tx *gorm.DB, id uint) (*models.Product, error) {
	var product models.Product
	if err := tx.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, apperr.NewInternal("could not load product", err)
	}
	return &product, nil
}

func findItem(tx *gorm.DB, cartID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := tx.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, apperr.NewInternal("could not load cart item", err)
	}
	return &item, nil
}

// AdjustTotal moves the cart counter by delta in SQL so concurrent requests do not lose updates.
func AdjustTotal(tx *gorm.DB, cartID uint, delta int) error {
	err := tx.Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("total_items", gorm.Expr("total_items + ?", delta)).
		Error
	if err != nil {
		return apperr.NewInternal("could not update cart total", err)
	}
	return nil
}

func items(tx *gorm.DB, cartID uint) ([]models.CartItem, error) {
	result := []models.CartItem{}
	err := tx.Preload("Product").
		Where("cart_id = ?", cartID).
		Order("id").
		Find(&result).
		Error
	if err != nil {
		return nil, apperr.NewInternal("could not load cart items", err)
	}
	return result, nil
}

func (s *Service) Items(ctx context.Context, userID uint) ([]models.CartItem, error) {
	db := s.db.WithContext(ctx)
	cart, err := ForUser(db, userID)
	if err != nil {
		return nil, err
	}
	return items(db, cart.ID)
}

// mutate runs fn on the user's cart in a transaction and returns the items afterwards.
func (s *Service) mutate(ctx context.Context, userID uint, fn func(tx *gorm.DB, cart *models.Cart) error) ([]models.CartItem, error) {
	var result []models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := ForUser(tx, userID)
		if err != nil {
			return err
		}
		if err := fn(tx, cart); err != nil {
			return err
		}
		result, err = items(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) Add(ctx context.Context, userID, productID uint) ([]models.CartItem, error) {
	return s.mutate(ctx, userID, func(tx *gorm.DB, cart *models.Cart) error {
		product, err := findProduct(tx, productID)
		if err != nil {
			return err
		}

		_, err = findItem(tx, cart.ID, productID)
		if err == nil {
			return ErrItemExists
		}
		if !errors.Is(err, ErrItemNotFound) {
			return err
		}

		if !product.InStock(1) {
			return ErrOutOfStock
		}
		item := models.CartItem{CartID: cart.ID, ProductID: productID, Count: 1}
		if err := tx.Omit("Product").Create(&item).Error; err != nil {
			return apperr.NewInternal("could not add cart item", err)
		}
		return AdjustTotal(tx, cart.ID, 1)
	})
}

// Totals sums price and compare price over the cart lines.
func (s *Service) Totals(ctx context.Context, userID uint) (Totals, error) {
	list, err := s.Items(ctx, userID)
	if err != nil {
		return Totals{}, err
	}

	totals := Totals{TotalCost: decimal.Zero, TotalCompareCost: decimal.Zero}
	for _, item := range list {
		count := decimal.NewFromInt(int64(item.Count))
		totals.TotalCost = totals.TotalCost.Add(item.Product.Price.Mul(count))
		totals.TotalCompareCost = totals.TotalCompareCost.Add(item.Product.ComparePrice.Mul(count))
	}
	return totals, nil
}

func (s *Service) ItemTotal(ctx context.Context, userID uint) (int, error) {
	cart, err := ForUser(s.db.WithContext(ctx), userID)
	if err != nil {
		return 0, err
	}
	return cart.TotalItems, nil
}

func (s *Service) Update(ctx context.Context, userID, productID uint, count int) ([]models.CartItem, error) {
	if count < 1 {
		return nil, ErrInvalidCount
	}
	return s.mutate(ctx, userID, func(tx *gorm.DB, cart *models.Cart) error {
		product, err := findProduct(tx, productID)
		if err != nil {
			return err
		}
		item, err := findItem(tx, cart.ID, productID)
		if err != nil {
			return err
		}
		if !product.InStock(count) {
			return ErrOutOfStock
		}
		if err := tx.Model(item).Update("count", count).Error; err != nil {
			return apperr.NewInternal("could not update cart item", err)
		}
		return nil
	})
}

func (s *Service) Remove(ctx context.Context, userID, productID uint) ([]models.CartItem, error) {
	return s.mutate(ctx, userID, func(tx *gorm.DB, cart *models.Cart) error {
		item, err := findItem(tx, cart.ID, productID)
		if err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(item).Error; err != nil {
			return apperr.NewInternal("could not remove cart item", err)
		}
		return AdjustTotal(tx, cart.ID, -1)
	})
}

// Clear deletes every line of the cart inside tx and zeroes its counter.
func Clear(tx *gorm.DB, cartID uint) error {
	if err := tx.Unscoped().Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return apperr.NewInternal("could not empty cart", err)
	}
	if err := tx.Model(&models.Cart{}).Where("id = ?", cartID).Update("total_items", 0).Error; err != nil {
		return apperr.NewInternal("could not reset cart total", err)
	}
	return nil
}

func (s *Service) Empty(ctx context.Context, userID uint) error {
	_, err := s.mutate(ctx, userID, func(tx *gorm.DB, cart *models.Cart) error {
		return Clear(tx, cart.ID)
	})
	return err
}

// Synch merges a client side cart. Counts of lines already present are added
// together, every count is capped at the product stock and unknown or sold out
// products are skipped.
func (s *Service) Synch(ctx context.Context, userID uint, lines []SyncItem) ([]models.CartItem, error) {
	return s.mutate(ctx, userID, func(tx *gorm.DB, cart *models.Cart) error {
		for _, line := range lines {
			if line.Count < 1 {
				continue
			}
			product, err := findProduct(tx, line.ProductID)
			if errors.Is(err, ErrProductNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			item, err := findItem(tx, cart.ID, line.ProductID)
			switch {
			case err == nil:
				count := item.Count + line.Count
				if count > product.Quantity {
					count = product.Quantity
				}
				if count < 1 {
					count = 1
				}
				if err := tx.Model(item).Update("count", count).Error; err != nil {
					return apperr.NewInternal("could not update cart item", err)
				}
			case errors.Is(err, ErrItemNotFound):
				if product.Quantity < 1 {
					continue
				}
				count := line.Count
				if count > product.Quantity {
					count = product.Quantity
				}
				created := models.CartItem{CartID: cart.ID, ProductID: line.ProductID, Count: count}
				if err := tx.Omit("Product").Create(&created).Error; err != nil {
					return apperr.NewInternal("could not add cart item", err)
				}
				if err := AdjustTotal(tx, cart.ID, 1); err != nil {
					return err
				}
			default:
				return err
			}
		}
		return nil
	})
}
