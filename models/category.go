package models

import "gorm.io/gorm"

// Category 最多兩層：根分類沒有ParentID，子分類指向根分類
type Category struct {
	gorm.Model
	Name     string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	ParentID *uint      `gorm:"index"`
	Children []Category `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	Products []Product  `gorm:"constraint:OnDelete:CASCADE"`
}

func (c Category) IsRoot() bool {
	return c.ParentID == nil
}
