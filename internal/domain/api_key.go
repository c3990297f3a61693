package domain

import "time"

// APIKey authenticates a calling platform rather than a person.
// Only the SHA-256 hash of the key is stored.
type APIKey struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	HashedKey    string    `json:"-" gorm:"size:64;uniqueIndex;not null"`
	PlatformName string    `json:"platformName" gorm:"size:120;not null"`
	Revoked      bool      `json:"revoked" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (APIKey) TableName() string { return "api_keys" }
