package repository

import (
	"context"

	"ticketdesk/internal/domain"

	"gorm.io/gorm"
)

type APIKeyRepository struct {
	db *gorm.DB
}

func NewAPIKeyRepository(db *gorm.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Create(ctx context.Context, k *domain.APIKey) error {
	return translate(r.db.WithContext(ctx).Create(k).Error)
}

func (r *APIKeyRepository) FindActiveByHash(ctx context.Context, hash string) (*domain.APIKey, error) {
	var k domain.APIKey
	err := r.db.WithContext(ctx).
		Where("hashed_key = ? AND revoked = ?", hash, false).
		First(&k).Error
	if err != nil {
		return nil, translate(err)
	}
	return &k, nil
}

func (r *APIKeyRepository) RevokeByPlatform(ctx context.Context, platformName string) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.APIKey{}).
		Where("platform_name = ? AND revoked = ?", platformName, false).
		Update("revoked", true)
	return tx.RowsAffected, tx.Error
}
