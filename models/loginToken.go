package models

import (
	"time"

	"gorm.io/gorm"
)

type LoginToken struct {
	gorm.Model
	Token          string `gorm:"type:text;not null"`
	ExpirationTime time.Time
	UserID         uint `gorm:"index"`
	Role           string
}
