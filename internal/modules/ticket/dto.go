package ticket

import (
	"time"

	"ticketdesk/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type CreateTicketRequest struct {
	PlatformName  string `json:"platformName" validate:"required,max=120"`
	RequesterName string `json:"requesterName" validate:"required,max=255"`
	Title         string `json:"title" validate:"required,max=255"`
	Category      string `json:"category" validate:"required,oneof=ATUALIZACAO BUG URGENTE DUVIDA OUTRO"`
	Description   string `json:"description" validate:"required"`
	Contact       string `json:"contact" validate:"required,max=255"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=OPEN IN_PROGRESS CLOSED"`
}

// SenderInput is checked by IdentityResolver, and only on the guest path.
type SenderInput struct {
	Email string `json:"email"`
}

// AddMessageRequest carries the declared sender for service-key callers.
// It is ignored when the caller has a user session.
type AddMessageRequest struct {
	Text   string       `json:"text" validate:"required,max=10000"`
	Sender *SenderInput `json:"sender,omitempty"`
}

func (r AddMessageRequest) SenderEmail() string {
	if r.Sender == nil {
		return ""
	}
	return r.Sender.Email
}

type Page struct {
	Limit  int `form:"limit" json:"limit"`
	Offset int `form:"offset" json:"offset"`
}

// Normalize clamps the page into the accepted range.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

type TicketPage struct {
	Items  []domain.Ticket `json:"items"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type MessagePage struct {
	Items  []domain.MessageView `json:"items"`
	Total  int64                `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// TicketDetail is a ticket with its thread, oldest message first.
type TicketDetail struct {
	ID            int64                 `json:"id"`
	PlatformName  string                `json:"platformName"`
	RequesterName string                `json:"requesterName"`
	Title         string                `json:"title"`
	Category      domain.TicketCategory `json:"category"`
	Description   string                `json:"description"`
	Contact       string                `json:"contact"`
	Status        domain.TicketStatus   `json:"status"`
	UserID        *int64                `json:"userId,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
	Messages      []domain.MessageView  `json:"messages"`
}

func toDetail(t *domain.Ticket) *TicketDetail {
	d := &TicketDetail{
		ID:            t.ID,
		PlatformName:  t.PlatformName,
		RequesterName: t.RequesterName,
		Title:         t.Title,
		Category:      t.Category,
		Description:   t.Description,
		Contact:       t.Contact,
		Status:        t.Status,
		UserID:        t.UserID,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		Messages:      make([]domain.MessageView, 0, len(t.Messages)),
	}
	for i := range t.Messages {
		d.Messages = append(d.Messages, t.Messages[i].View())
	}
	return d
}
