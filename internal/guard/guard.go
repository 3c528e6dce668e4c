// Package guard decides whether a visitor may enter a protected view.
package guard

import (
	"github.com/JKPrasad01/FoodAppFrontend/internal/session"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/enums"
)

// Decision is the outcome of CanEnter.
type Decision string

const (
	Pending                Decision = "PENDING"
	RedirectToLogin        Decision = "REDIRECT_TO_LOGIN"
	RedirectToUnauthorized Decision = "REDIRECT_TO_UNAUTHORIZED"
	Allow                  Decision = "ALLOW"
)

func (d Decision) String() string {
	return string(d)
}

// CanEnter is pure. Loading wins over everything, then a missing identity,
// then the role check. With no required roles any authenticated identity is
// allowed; otherwise the identity's role must be one of them.
func CanEnter(identity *session.Identity, loading bool, requiredRoles ...enums.Role) Decision {
	if loading {
		return Pending
	}
	if identity == nil {
		return RedirectToLogin
	}
	if len(requiredRoles) > 0 && !identity.HasRole(requiredRoles...) {
		return RedirectToUnauthorized
	}
	return Allow
}
