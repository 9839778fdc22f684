package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FixedPriceCoupon struct {
	gorm.Model
	Name          string          `gorm:"type:varchar(255);uniqueIndex;not null"`
	DiscountPrice decimal.Decimal `gorm:"type:decimal(8,2);not null"`
}

type PercentageCoupon struct {
	gorm.Model
	Name               string `gorm:"type:varchar(255);uniqueIndex;not null"`
	DiscountPercentage int    `gorm:"not null"`
}
