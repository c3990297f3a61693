package domain

type PrincipalKind string

const (
	PrincipalUser    PrincipalKind = "user"
	PrincipalService PrincipalKind = "service"
)

// Principal is the identity a request was admitted as. It is resolved once per
// request and never persisted.
type Principal struct {
	Kind         PrincipalKind `json:"kind"`
	UserID       int64         `json:"userId,omitempty"`
	PlatformName string        `json:"platformName,omitempty"`
}

func UserPrincipal(userID int64) *Principal {
	return &Principal{Kind: PrincipalUser, UserID: userID}
}

func ServicePrincipal(platformName string) *Principal {
	return &Principal{Kind: PrincipalService, PlatformName: platformName}
}

func (p *Principal) IsUser() bool {
	return p != nil && p.Kind == PrincipalUser
}

func (p *Principal) IsService() bool {
	return p != nil && p.Kind == PrincipalService
}
