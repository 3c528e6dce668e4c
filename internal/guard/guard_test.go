package guard

import (
	"testing"

	"github.com/JKPrasad01/FoodAppFrontend/internal/session"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/enums"
)

func TestCanEnter(t *testing.T) {
	user := &session.Identity{UserID: 1, Username: "ana", Role: enums.RoleUser}
	admin := &session.Identity{UserID: 2, Username: "bo", Role: enums.RoleAdmin}

	cases := []struct {
		name     string
		identity *session.Identity
		loading  bool
		roles    []enums.Role
		want     Decision
	}{
		{name: "anonymous", identity: nil, loading: false, want: RedirectToLogin},
		{name: "loading without identity", identity: nil, loading: true, want: Pending},
		{name: "loading with identity", identity: admin, loading: true, roles: []enums.Role{enums.RoleAdmin}, want: Pending},
		{name: "user on admin view", identity: user, roles: []enums.Role{enums.RoleAdmin}, want: RedirectToUnauthorized},
		{name: "user without role requirement", identity: user, want: Allow},
		{name: "admin on admin view", identity: admin, roles: []enums.Role{enums.RoleAdmin}, want: Allow},
		{name: "any of several roles", identity: admin, roles: []enums.Role{enums.RoleManager, enums.RoleAdmin}, want: Allow},
		{name: "anonymous with roles", identity: nil, roles: []enums.Role{enums.RoleAdmin}, want: RedirectToLogin},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanEnter(tc.identity, tc.loading, tc.roles...); got != tc.want {
				t.Fatalf("CanEnter() = %s, want %s", got, tc.want)
			}
		})
	}
}
