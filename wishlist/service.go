package wishlist

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"storefront/apperr"
	"storefront/cart"
	"storefront/models"
)

var (
	ErrProductNotFound = apperr.NewNotFound("product not found")
	ErrItemNotFound    = apperr.NewNotFound("product is not in the wishlist")
	ErrItemExists      = apperr.NewConflict("item already in wishlist")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func forUser(tx *gorm.DB, userID uint) (*models.WishList, error) {
	var list models.WishList
	if err := tx.Where(models.WishList{UserID: userID}).FirstOrCreate(&list).Error; err != nil {
		return nil, apperr.NewInternal("could not load wishlist", err)
	}
	return &list, nil
}

func items(tx *gorm.DB, wishListID uint) ([]models.WishListItem, error) {
	result := []models.WishListItem{}
	err := tx.Preload("Product").
		Where("wish_list_id = ?", wishListID).
		Order("id").
		Find(&result).
		Error
	if err != nil {
		return nil, apperr.NewInternal("could not load wishlist items", err)
	}
	return result, nil
}

func adjustTotal(tx *gorm.DB, wishListID uint, delta int) error {
	err := tx.Model(&models.WishList{}).
		Where("id = ?", wishListID).
		Update("total_items", gorm.Expr("total_items + ?", delta)).
		Error
	if err != nil {
		return apperr.NewInternal("could not update wishlist total", err)
	}
	return nil
}

func (s *Service) Items(ctx context.Context, userID uint) ([]models.WishListItem, error) {
	db := s.db.WithContext(ctx)
	list, err := forUser(db, userID)
	if err != nil {
		return nil, err
	}
	return items(db, list.ID)
}

func (s *Service) ItemTotal(ctx context.Context, userID uint) (int, error) {
	list, err := forUser(s.db.WithContext(ctx), userID)
	if err != nil {
		return 0, err
	}
	return list.TotalItems, nil
}

// Add puts the product on the wishlist and takes it out of the user's cart.
func (s *Service) Add(ctx context.Context, userID, productID uint) ([]models.WishListItem, error) {
	var result []models.WishListItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return apperr.NewInternal("could not load product", err)
		}

		list, err := forUser(tx, userID)
		if err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.WishListItem{}).
			Where("wish_list_id = ? AND product_id = ?", list.ID, productID).
			Count(&existing).Error; err != nil {
			return apperr.NewInternal("could not check wishlist", err)
		}
		if existing > 0 {
			return ErrItemExists
		}

		item := models.WishListItem{WishListID: list.ID, ProductID: productID}
		if err := tx.Omit("Product").Create(&item).Error; err != nil {
			return apperr.NewInternal("could not add wishlist item", err)
		}
		if err := adjustTotal(tx, list.ID, 1); err != nil {
			return err
		}

		//從購物車移除相同商品
		userCart, err := cart.ForUser(tx, userID)
		if err != nil {
			return err
		}
		removed := tx.Unscoped().
			Where("cart_id = ? AND product_id = ?", userCart.ID, productID).
			Delete(&models.CartItem{})
		if removed.Error != nil {
			return apperr.NewInternal("could not remove cart item", removed.Error)
		}
		if removed.RowsAffected > 0 {
			if err := cart.AdjustTotal(tx, userCart.ID, -1); err != nil {
				return err
			}
		}

		result, err = items(tx, list.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) Remove(ctx context.Context, userID, productID uint) ([]models.WishListItem, error) {
	var result []models.WishListItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := forUser(tx, userID)
		if err != nil {
			return err
		}

		removed := tx.Unscoped().
			Where("wish_list_id = ? AND product_id = ?", list.ID, productID).
			Delete(&models.WishListItem{})
		if removed.Error != nil {
			return apperr.NewInternal("could not remove wishlist item", removed.Error)
		}
		if removed.RowsAffected == 0 {
			return ErrItemNotFound
		}
		if err := adjustTotal(tx, list.ID, -1); err != nil {
			return err
		}

		result, err = items(tx, list.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
