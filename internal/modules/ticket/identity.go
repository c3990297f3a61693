package ticket

import (
	"context"
	"fmt"
	"strings"

	"ticketdesk/internal/domain"
	"ticketdesk/internal/pkg/validator"
)

// IdentityResolver decides which user a new message is attributed to.
//
// A user session always wins and any declared sender is ignored. Otherwise
// the declared sender email is mapped to a guest user, created on first
// contact. The store does the find-or-create atomically, so concurrent first
// messages from the same email end up on one user.
type IdentityResolver struct {
	users GuestUsers
}

func NewIdentityResolver(users GuestUsers) *IdentityResolver {
	return &IdentityResolver{users: users}
}

func (r *IdentityResolver) Resolve(ctx context.Context, p *domain.Principal, senderEmail string) (int64, error) {
	if p.IsUser() {
		return p.UserID, nil
	}

	email := strings.TrimSpace(senderEmail)
	if email == "" {
		return 0, ErrSenderRequired
	}
	if validator.Var(email, "email,max=255") != "" {
		return 0, ErrSenderInvalid
	}

	guest, err := r.users.FindOrCreateGuest(ctx, email)
	if err != nil {
		return 0, fmt.Errorf("resolve guest %q: %w", email, err)
	}
	return guest.ID, nil
}
