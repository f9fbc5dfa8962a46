package models

import "time"

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Login        string `gorm:"size:100;uniqueIndex;not null" json:"login"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	PersonID uint   `json:"person_id"`
	Person   Person `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"person"`

	Active bool `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
