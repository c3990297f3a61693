package ticket

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ticketdesk/internal/domain"
	"ticketdesk/internal/realtime"
	"ticketdesk/internal/repository"

	"github.com/rs/zerolog/log"
)

type Service struct {
	tickets  TicketRepository
	messages MessageRepository
	identity *IdentityResolver
	hub      Broadcaster
}

func NewService(tickets TicketRepository, messages MessageRepository, identity *IdentityResolver, hub Broadcaster) *Service {
	return &Service{
		tickets:  tickets,
		messages: messages,
		identity: identity,
		hub:      hub,
	}
}

// Create opens a ticket. When the caller has a user session the ticket is
// linked to that user.
func (s *Service) Create(ctx context.Context, p *domain.Principal, req CreateTicketRequest) (*domain.Ticket, error) {
	t := &domain.Ticket{
		PlatformName:  strings.TrimSpace(req.PlatformName),
		RequesterName: strings.TrimSpace(req.RequesterName),
		Title:         strings.TrimSpace(req.Title),
		Category:      domain.TicketCategory(req.Category),
		Description:   req.Description,
		Contact:       strings.TrimSpace(req.Contact),
		Status:        domain.TicketOpen,
	}
	if p.IsUser() {
		uid := p.UserID
		t.UserID = &uid
	}

	if err := s.tickets.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	return t, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*TicketDetail, error) {
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("get ticket %d: %w", id, err)
	}
	return toDetail(t), nil
}

func (s *Service) List(ctx context.Context, page Page) (*TicketPage, error) {
	page = page.Normalize()
	items, total, err := s.tickets.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return newTicketPage(items, total, page), nil
}

func (s *Service) ListByPlatform(ctx context.Context, platformName string, page Page) (*TicketPage, error) {
	page = page.Normalize()
	items, total, err := s.tickets.ListByPlatform(ctx, platformName, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list tickets for %q: %w", platformName, err)
	}
	return newTicketPage(items, total, page), nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error {
	if err := s.tickets.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTicketNotFound
		}
		return fmt.Errorf("update ticket %d: %w", id, err)
	}
	return nil
}

func (s *Service) ListMessages(ctx context.Context, ticketID int64, page Page) (*MessagePage, error) {
	if err := s.ensureTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	page = page.Normalize()
	msgs, err := s.messages.ListByTicket(ctx, ticketID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	total, err := s.messages.CountByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	views := make([]domain.MessageView, 0, len(msgs))
	for i := range msgs {
		views = append(views, msgs[i].View())
	}
	return &MessagePage{Items: views, Total: total, Limit: page.Limit, Offset: page.Offset}, nil
}

// AddMessage stores a message on the ticket and then pushes it to everyone
// watching the ticket. Nothing is broadcast unless the write succeeded, and
// a failed broadcast does not fail the call.
func (s *Service) AddMessage(ctx context.Context, p *domain.Principal, ticketID int64, req AddMessageRequest) (*domain.MessageView, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if err := s.ensureTicket(ctx, ticketID); err != nil {
		return nil, err
	}

	userID, err := s.identity.Resolve(ctx, p, req.SenderEmail())
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{Text: text, TicketID: ticketID, UserID: userID}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	view := msg.View()
	if _, err := s.hub.Broadcast(ticketID, realtime.Event{
		Event:    realtime.EventNewMessage,
		TicketID: ticketID,
		Data:     view,
	}); err != nil {
		log.Error().Err(err).Int64("ticket_id", ticketID).Int64("message_id", msg.ID).Msg("broadcast failed")
	}
	return &view, nil
}

func (s *Service) ensureTicket(ctx context.Context, id int64) error {
	ok, err := s.tickets.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check ticket %d: %w", id, err)
	}
	if !ok {
		return ErrTicketNotFound
	}
	return nil
}

func newTicketPage(items []domain.Ticket, total int64, page Page) *TicketPage {
	if items == nil {
		items = []domain.Ticket{}
	}
	return &TicketPage{Items: items, Total: total, Limit: page.Limit, Offset: page.Offset}
}
