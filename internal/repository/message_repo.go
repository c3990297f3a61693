package repository

import (
	"context"

	"ticketdesk/internal/domain"

	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create persists msg and reloads it with its sender so callers can publish
// the stored row as-is.
func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(msg).Error; err != nil {
		return translate(err)
	}
	return translate(r.db.WithContext(ctx).Preload("User").First(msg, msg.ID).Error)
}

func (r *MessageRepository) ListByTicket(ctx context.Context, ticketID int64, limit, offset int) ([]domain.Message, error) {
	var msgs []domain.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error
	return msgs, err
}

func (r *MessageRepository) CountByTicket(ctx context.Context, ticketID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).Where("ticket_id = ?", ticketID).Count(&n).Error
	return n, err
}
