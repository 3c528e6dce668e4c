package session

import (
	"strings"

	"github.com/JKPrasad01/FoodAppFrontend/internal/backend"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/enums"
)

// Identity is the authenticated user as the backend last reported it.
type Identity struct {
	UserID          int64      `json:"userId"`
	Username        string     `json:"username"`
	Email           string     `json:"email,omitempty"`
	Role            enums.Role `json:"role"`
	ProfileImageRef *string    `json:"profileImageRef,omitempty"`
}

// HasRole reports whether the identity holds any of roles.
func (i *Identity) HasRole(roles ...enums.Role) bool {
	if i == nil {
		return false
	}
	for _, role := range roles {
		if role == i.Role {
			return true
		}
	}
	return false
}

func (i *Identity) clone() *Identity {
	if i == nil {
		return nil
	}
	out := *i
	if i.ProfileImageRef != nil {
		ref := *i.ProfileImageRef
		out.ProfileImageRef = &ref
	}
	return &out
}

// identityFromRecord maps a backend user. Missing or unknown roles fall back
// to USER.
func identityFromRecord(rec backend.UserRecord) *Identity {
	identity := &Identity{
		UserID:   rec.UserID,
		Username: strings.TrimSpace(rec.Username),
		Email:    strings.TrimSpace(rec.EmailAddress()),
		Role:     enums.RoleOrDefault(rec.PrimaryRole()),
	}
	if rec.UserProfile != nil && strings.TrimSpace(*rec.UserProfile) != "" {
		ref := strings.TrimSpace(*rec.UserProfile)
		identity.ProfileImageRef = &ref
	}
	return identity
}

// record is the persisted session slot.
type record struct {
	Identity *Identity        `json:"identity"`
	Cookies  []backend.Cookie `json:"cookies,omitempty"`
}

func (r record) valid() bool {
	return r.Identity != nil && r.Identity.UserID > 0 && r.Identity.Role.IsValid()
}
