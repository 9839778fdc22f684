package models

import "gorm.io/gorm"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	Email       string `gorm:"type:varchar(255);uniqueIndex;not null"`
	FirstName   string `gorm:"type:varchar(255);not null"`
	LastName    string `gorm:"type:varchar(255);not null"`
	Password    string `gorm:"not null" json:"-"`
	Role        string `gorm:"type:varchar(20);not null;default:user"`
	IsActive    bool   `gorm:"not null;default:true"`
	Cart        Cart
	WishList    WishList
	Profile     UserProfile
	Orders      []Order
	LoginTokens []LoginToken
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
