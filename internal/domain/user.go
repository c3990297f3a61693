package domain

import "time"

// User is either a registered account or a guest created on first contact
// from a service integration. Guests have no password and cannot log in.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash *string   `json:"-" gorm:"column:password_hash"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) IsGuest() bool {
	return u.PasswordHash == nil || *u.PasswordHash == ""
}

// UserSummary is the sender shape embedded in message payloads.
type UserSummary struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}
