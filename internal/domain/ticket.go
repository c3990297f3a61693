package domain

import "time"

type TicketCategory string

const (
	CategoryUpdate   TicketCategory = "ATUALIZACAO"
	CategoryBug      TicketCategory = "BUG"
	CategoryUrgent   TicketCategory = "URGENTE"
	CategoryQuestion TicketCategory = "DUVIDA"
	CategoryOther    TicketCategory = "OUTRO"
)

type TicketStatus string

const (
	TicketOpen       TicketStatus = "OPEN"
	TicketInProgress TicketStatus = "IN_PROGRESS"
	TicketClosed     TicketStatus = "CLOSED"
)

type Ticket struct {
	ID            int64          `json:"id" gorm:"primaryKey"`
	PlatformName  string         `json:"platformName" gorm:"size:120;index;not null"`
	RequesterName string         `json:"requesterName" gorm:"not null"`
	Title         string         `json:"title" gorm:"not null"`
	Category      TicketCategory `json:"category" gorm:"size:32;not null"`
	Description   string         `json:"description" gorm:"type:text;not null"`
	Contact       string         `json:"contact" gorm:"not null"`
	Status        TicketStatus   `json:"status" gorm:"size:32;not null"`
	UserID        *int64         `json:"userId,omitempty" gorm:"index"`
	CreatedAt     time.Time      `json:"createdAt" gorm:"index"`
	UpdatedAt     time.Time      `json:"updatedAt"`

	Messages []Message `json:"messages,omitempty" gorm:"foreignKey:TicketID"`
}
