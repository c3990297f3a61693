package repository

import (
	"context"
	"time"

	"ticketdesk/internal/domain"

	"gorm.io/gorm"
)

// RefreshTokenRepository provides DB access for renewal credentials.
type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

// FindActiveByHash returns ErrNotFound for unknown and revoked hashes alike.
func (r *RefreshTokenRepository) FindActiveByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.WithContext(ctx).
		Where("token_hash = ? AND revoked = ?", hash, false).
		First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// RevokeByHash marks every row carrying hash as revoked and reports how many
// rows changed. Zero is not an error.
func (r *RefreshTokenRepository) RevokeByHash(ctx context.Context, hash string) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("token_hash = ? AND revoked = ?", hash, false).
		Update("revoked", true)
	return tx.RowsAffected, tx.Error
}

// DeleteStale removes expired rows and revoked rows older than revokedRetention.
func (r *RefreshTokenRepository) DeleteStale(ctx context.Context, now time.Time, revokedRetention time.Duration) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("expires_at < ? OR (revoked = ? AND created_at < ?)", now, true, now.Add(-revokedRetention)).
		Delete(&domain.RefreshToken{})
	return tx.RowsAffected, tx.Error
}
