package repository

import (
	"context"

	"ticketdesk/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a registered user. Returns ErrDuplicate when the email is taken,
// including by a guest.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// FindOrCreateGuest inserts a password-less user for email unless one exists,
// then returns the stored row. The insert relies on the unique email index
// (ON CONFLICT DO NOTHING) so concurrent first contacts converge on one row.
func (r *UserRepository) FindOrCreateGuest(ctx context.Context, email string) (*domain.User, error) {
	email = normalizeEmail(email)
	guest := domain.User{Email: email}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(&guest).Error
	if err != nil {
		return nil, translate(err)
	}

	return r.GetByEmail(ctx, email)
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error
	return n, err
}
