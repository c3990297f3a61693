package ticket

import "errors"

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrEmptyText      = errors.New("message text is required")
	ErrSenderRequired = errors.New("sender email is required without a user session")
	ErrSenderInvalid  = errors.New("sender email is not a valid address")
)
