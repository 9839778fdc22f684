package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Shipping struct {
	gorm.Model
	Name           string          `gorm:"type:varchar(255);uniqueIndex;not null"`
	TimeToDelivery string          `gorm:"type:varchar(255);not null"`
	Price          decimal.Decimal `gorm:"type:decimal(8,2);not null"`
}
