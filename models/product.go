package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	gorm.Model
	Name         string          `gorm:"type:varchar(255);not null"`
	Description  string          `gorm:"type:text"`
	ImageURL     string          `gorm:"type:varchar(512)"`
	Price        decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	ComparePrice decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	CategoryID   uint            `gorm:"not null;index"`
	Category     Category
	Quantity     int `gorm:"not null;default:0"`
	Sold         int `gorm:"not null;default:0"`
}

func (p Product) InStock(count int) bool {
	return count <= p.Quantity
}
