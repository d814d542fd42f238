// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a Foodgram account. Email is the login identifier.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName string    `gorm:"size:150;not null" json:"first_name"`
	LastName  string    `gorm:"size:150;not null" json:"last_name"`
	Password  string    `gorm:"not null" json:"-"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// IsSubscribed reports whether the requesting user follows this user (computed)
	IsSubscribed bool `gorm:"->;-:migration" json:"is_subscribed"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// UserCreated is the payload returned right after registration.
type UserCreated struct {
	Email     string `json:"email"`
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Created projects u into the registration response.
func (u *User) Created() UserCreated {
	return UserCreated{
		Email:     u.Email,
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
