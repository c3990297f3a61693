package repository

import (
	"context"

	"ticketdesk/internal/domain"

	"gorm.io/gorm"
)

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

// GetByID loads the ticket with its thread, oldest message first.
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	var t domain.Ticket
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at ASC, messages.id ASC")
		}).
		Preload("Messages.User").
		First(&t, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *TicketRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Ticket{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// List returns one page of tickets, newest first, and the total count.
func (r *TicketRepository) List(ctx context.Context, limit, offset int) ([]domain.Ticket, int64, error) {
	var (
		tickets []domain.Ticket
		total   int64
	)
	db := r.db.WithContext(ctx).Model(&domain.Ticket{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&tickets).Error
	return tickets, total, err
}

func (r *TicketRepository) ListByPlatform(ctx context.Context, platformName string, limit, offset int) ([]domain.Ticket, int64, error) {
	var (
		tickets []domain.Ticket
		total   int64
	)
	if err := r.db.WithContext(ctx).Model(&domain.Ticket{}).
		Where("platform_name = ?", platformName).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).
		Where("platform_name = ?", platformName).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&tickets).Error
	return tickets, total, err
}

func (r *TicketRepository) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error {
	tx := r.db.WithContext(ctx).Model(&domain.Ticket{}).Where("id = ?", id).Update("status", status)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
