package domain

import "time"

// Message is a single entry in a ticket thread. UserID always points at an
// existing user, registered or guest.
type Message struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	TicketID  int64     `json:"ticketId" gorm:"index;not null"`
	UserID    int64     `json:"userId" gorm:"index;not null"`
	User      *User     `json:"-" gorm:"foreignKey:UserID"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

// MessageView is the wire form of a message, sender included.
type MessageView struct {
	ID        int64       `json:"id"`
	Text      string      `json:"text"`
	TicketID  int64       `json:"ticketId"`
	UserID    int64       `json:"userId"`
	User      UserSummary `json:"user"`
	CreatedAt time.Time   `json:"createdAt"`
}

func (m *Message) View() MessageView {
	v := MessageView{
		ID:        m.ID,
		Text:      m.Text,
		TicketID:  m.TicketID,
		UserID:    m.UserID,
		User:      UserSummary{ID: m.UserID},
		CreatedAt: m.CreatedAt,
	}
	if m.User != nil {
		v.User.Email = m.User.Email
	}
	return v
}
