package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"ticketdesk/internal/database"
	"ticketdesk/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func strPtr(s string) *string { return &s }

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	repo := NewUserRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{Email: "Agent@Example.com", PasswordHash: strPtr("hash")}))

	err := repo.Create(ctx, &domain.User{Email: "agent@example.com ", PasswordHash: strPtr("hash")})
	assert.ErrorIs(t, err, ErrDuplicate)

	u, err := repo.GetByEmail(ctx, "AGENT@example.com")
	require.NoError(t, err)
	assert.Equal(t, "agent@example.com", u.Email)
	assert.False(t, u.IsGuest())
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	repo := NewUserRepository(setupDB(t))

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_FindOrCreateGuestIsIdempotent(t *testing.T) {
	repo := NewUserRepository(setupDB(t))
	ctx := context.Background()

	first, err := repo.FindOrCreateGuest(ctx, "new@x.com")
	require.NoError(t, err)
	assert.True(t, first.IsGuest())

	second, err := repo.FindOrCreateGuest(ctx, " NEW@x.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUserRepository_FindOrCreateGuestConcurrent(t *testing.T) {
	repo := NewUserRepository(setupDB(t))
	ctx := context.Background()

	const workers = 8
	ids := make([]int64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := repo.FindOrCreateGuest(ctx, "race@x.com")
			errs[i] = err
			if u != nil {
				ids[i] = u.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUserRepository_GuestBlocksRegistration(t *testing.T) {
	repo := NewUserRepository(setupDB(t))
	ctx := context.Background()

	_, err := repo.FindOrCreateGuest(ctx, "guest@x.com")
	require.NoError(t, err)

	err = repo.Create(ctx, &domain.User{Email: "guest@x.com", PasswordHash: strPtr("hash")})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestRefreshTokenRepository_RevokeByHash(t *testing.T) {
	db := setupDB(t)
	users := NewUserRepository(db)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()

	u := &domain.User{Email: "a@x.com", PasswordHash: strPtr("hash")}
	require.NoError(t, users.Create(ctx, u))

	exp := time.Now().Add(time.Hour)
	require.NoError(t, repo.Create(ctx, &domain.RefreshToken{UserID: u.ID, TokenHash: "h1", ExpiresAt: exp}))
	require.NoError(t, repo.Create(ctx, &domain.RefreshToken{UserID: u.ID, TokenHash: "h2", ExpiresAt: exp}))

	_, err := repo.FindActiveByHash(ctx, "h1")
	require.NoError(t, err)

	n, err := repo.RevokeByHash(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.FindActiveByHash(ctx, "h1")
	assert.ErrorIs(t, err, ErrNotFound)

	// other sessions of the same user stay active
	_, err = repo.FindActiveByHash(ctx, "h2")
	assert.NoError(t, err)

	n, err = repo.RevokeByHash(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = repo.RevokeByHash(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestRefreshTokenRepository_DeleteStale(t *testing.T) {
	db := setupDB(t)
	users := NewUserRepository(db)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()

	u := &domain.User{Email: "b@x.com", PasswordHash: strPtr("hash")}
	require.NoError(t, users.Create(ctx, u))

	now := time.Now()
	require.NoError(t, repo.Create(ctx, &domain.RefreshToken{UserID: u.ID, TokenHash: "expired", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, repo.Create(ctx, &domain.RefreshToken{UserID: u.ID, TokenHash: "live", ExpiresAt: now.Add(time.Hour)}))

	n, err := repo.DeleteStale(ctx, now, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.FindActiveByHash(ctx, "live")
	assert.NoError(t, err)
}

func TestAPIKeyRepository_FindActiveByHash(t *testing.T) {
	repo := NewAPIKeyRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.APIKey{HashedKey: "k1", PlatformName: "shop"}))

	k, err := repo.FindActiveByHash(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "shop", k.PlatformName)

	n, err := repo.RevokeByPlatform(ctx, "shop")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.FindActiveByHash(ctx, "k1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTicketRepository_ListAndThread(t *testing.T) {
	db := setupDB(t)
	tickets := NewTicketRepository(db)
	messages := NewMessageRepository(db)
	users := NewUserRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		platform := "shop"
		if i%2 == 1 {
			platform = "blog"
		}
		require.NoError(t, tickets.Create(ctx, &domain.Ticket{
			PlatformName:  platform,
			RequesterName: "r",
			Title:         fmt.Sprintf("ticket %d", i),
			Category:      domain.CategoryBug,
			Description:   "d",
			Contact:       "c",
			Status:        domain.TicketOpen,
		}))
	}

	page, total, err := tickets.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.Equal(t, "ticket 4", page[0].Title)

	byPlatform, total, err := tickets.ListByPlatform(ctx, "blog", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, byPlatform, 2)

	guest, err := users.FindOrCreateGuest(ctx, "g@x.com")
	require.NoError(t, err)

	first := page[0].ID
	for _, text := range []string{"hello", "world"} {
		msg := &domain.Message{Text: text, TicketID: first, UserID: guest.ID}
		require.NoError(t, messages.Create(ctx, msg))
		require.NotNil(t, msg.User)
		assert.Equal(t, "g@x.com", msg.User.Email)
	}

	ticket, err := tickets.GetByID(ctx, first)
	require.NoError(t, err)
	require.Len(t, ticket.Messages, 2)
	assert.Equal(t, "hello", ticket.Messages[0].Text)
	assert.Equal(t, "g@x.com", ticket.Messages[1].View().User.Email)

	_, err = tickets.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := tickets.Exists(ctx, first)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, tickets.UpdateStatus(ctx, first, domain.TicketClosed))
	assert.ErrorIs(t, tickets.UpdateStatus(ctx, 9999, domain.TicketClosed), ErrNotFound)
}
