package auth

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// RenewalRequest is the body of both refresh and logout.
type RenewalRequest struct {
	RenewalCredential string `json:"renewalCredential"`
}

type LoginResponse struct {
	SessionToken      string `json:"sessionToken"`
	RenewalCredential string `json:"renewalCredential"`
}

type RefreshResponse struct {
	SessionToken string `json:"sessionToken"`
}

type UserPublic struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}
