package domain

import "time"

// RefreshToken stores renewal credentials issued at login.
//
// Security notes:
// - We never store the raw token in DB, only its SHA-256 hash (TokenHash).
// - Tokens are not rotated on use; a row stays usable until it expires or is revoked.
// - ExpiresAt mirrors the signed expiry and is only used for cleanup.
type RefreshToken struct {
	ID int64 `json:"id" gorm:"primaryKey"`

	UserID int64 `json:"userId" gorm:"index;not null"`
	User   *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	TokenHash string `json:"-" gorm:"size:64;index;not null"`
	Revoked   bool   `json:"revoked" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"index;not null"`
}
