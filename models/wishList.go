package models

import "gorm.io/gorm"

type WishList struct {
	gorm.Model
	UserID        uint           `gorm:"uniqueIndex;not null"`
	TotalItems    int            `gorm:"not null;default:0"`
	WishListItems []WishListItem `gorm:"foreignKey:WishListID;constraint:OnDelete:CASCADE"`
}

type WishListItem struct {
	gorm.Model
	WishListID uint `gorm:"index;not null"`
	ProductID  uint `gorm:"index;not null"`
	Product    Product
}
