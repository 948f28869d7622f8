package model

import "time"

// User is an account. Username and Email are each unique across all accounts
// and compare exactly as stored.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null;uniqueIndex:idx_users_username" json:"username"`
	Email        string    `gorm:"size:128;not null;uniqueIndex:idx_users_email" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public returns a copy with the password hash cleared, safe to cache or log.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
