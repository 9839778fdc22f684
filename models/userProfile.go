package models

import "gorm.io/gorm"

const DefaultCountry = "Guatemala"

type UserProfile struct {
	gorm.Model
	UserID              uint   `gorm:"uniqueIndex;not null"`
	AddressLine1        string `gorm:"type:varchar(255);not null;default:''"`
	AddressLine2        string `gorm:"type:varchar(255);not null;default:''"`
	City                string `gorm:"type:varchar(255);not null;default:''"`
	StateProvinceRegion string `gorm:"type:varchar(255);not null;default:''"`
	Zipcode             string `gorm:"type:varchar(20);not null;default:''"`
	Phone               string `gorm:"type:varchar(255);not null;default:''"`
	CountryRegion       string `gorm:"type:varchar(255);not null;default:'Guatemala'"`
}
