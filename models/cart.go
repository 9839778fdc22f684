package models

import "gorm.io/gorm"

type Cart struct {
	gorm.Model
	UserID     uint       `gorm:"uniqueIndex;not null"`
	TotalItems int        `gorm:"not null;default:0"`
	CartItems  []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}
