package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email    string `gorm:"uniqueIndex;not null"` // Unique index on Email
	Password string `gorm:"not null"`
	Name     string `gorm:"not null"`
	Status   string `gorm:"default:'active'"`
}
