package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Review struct {
	gorm.Model
	UserID    uint `gorm:"uniqueIndex:idx_review_user_product;not null"`
	User      User
	ProductID uint `gorm:"uniqueIndex:idx_review_user_product;not null"`
	Product   Product
	Rating    decimal.Decimal `gorm:"type:decimal(2,1);not null"`
	Comment   string          `gorm:"type:text;not null"`
}
