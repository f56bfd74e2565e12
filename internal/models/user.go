// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account created via Google sign-in.
type User struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	GoogleID *string `gorm:"uniqueIndex" json:"-"`
	Email    string  `gorm:"uniqueIndex;not null" json:"email"`
	Name     string  `gorm:"not null" json:"name"`
	Avatar   string  `json:"avatar"`
	Bio      string  `gorm:"type:text" json:"bio"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicProfile is the subset of User exposed on public profile routes.
type PublicProfile struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio"`
}

// Public returns the user's public profile view.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:     u.ID,
		Name:   u.Name,
		Avatar: u.Avatar,
		Bio:    u.Bio,
	}
}
