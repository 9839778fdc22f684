package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	OrderNotProcessed = "not_processed"
	OrderProcessed    = "processed"
	OrderShipped      = "shipped"
	OrderDelivered    = "delivered"
	OrderCancelled    = "cancelled"
)

type Order struct {
	gorm.Model
	Status              string `gorm:"type:varchar(50);not null;default:not_processed"`
	UserID              uint   `gorm:"index;not null"`
	User                User
	TransactionID       string          `gorm:"type:varchar(255);uniqueIndex;not null"`
	Amount              decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	FullName            string          `gorm:"type:varchar(255);not null"`
	AddressLine1        string          `gorm:"type:varchar(255);not null"`
	AddressLine2        string          `gorm:"type:varchar(255)"`
	City                string          `gorm:"type:varchar(255);not null"`
	StateProvinceRegion string          `gorm:"type:varchar(255);not null"`
	PostalZipCode       string          `gorm:"type:varchar(20);not null"`
	CountryRegion       string          `gorm:"type:varchar(255);not null"`
	TelephoneNumber     string          `gorm:"type:varchar(255);not null"`
	ShippingName        string          `gorm:"type:varchar(255);not null"`
	ShippingTime        string          `gorm:"type:varchar(255);not null"`
	ShippingPrice       decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	DateIssued          time.Time
	OrderItems          []OrderItem `gorm:"constraint:OnDelete:CASCADE"`
}
