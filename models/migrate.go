package models

import "gorm.io/gorm"

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Category{},
		&Product{},
		&User{},
		&LoginToken{},
		&UserProfile{},
		&Cart{},
		&CartItem{},
		&WishList{},
		&WishListItem{},
		&Order{},
		&OrderItem{},
		&Review{},
		&Shipping{},
		&FixedPriceCoupon{},
		&PercentageCoupon{},
	)
}
