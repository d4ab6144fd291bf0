package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:80;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:120;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash, never plaintext
	IsAdmin   bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// No DeletedAt, users are never deleted
}
