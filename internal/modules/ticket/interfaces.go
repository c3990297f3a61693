package ticket

import (
	"context"

	"ticketdesk/internal/domain"
	"ticketdesk/internal/realtime"
)

type TicketRepository interface {
	Create(ctx context.Context, t *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, limit, offset int) ([]domain.Ticket, int64, error)
	ListByPlatform(ctx context.Context, platformName string, limit, offset int) ([]domain.Ticket, int64, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListByTicket(ctx context.Context, ticketID int64, limit, offset int) ([]domain.Message, error)
	CountByTicket(ctx context.Context, ticketID int64) (int64, error)
}

type GuestUsers interface {
	FindOrCreateGuest(ctx context.Context, email string) (*domain.User, error)
}

// Broadcaster fans an event out to the connections watching a ticket.
type Broadcaster interface {
	Broadcast(ticketID int64, event realtime.Event) (int, error)
}
