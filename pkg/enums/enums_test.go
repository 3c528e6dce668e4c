package enums

import "testing"

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"USER":          RoleUser,
		"admin":         RoleAdmin,
		" ROLE_MANAGER": RoleManager,
	}
	for input, want := range cases {
		got, err := ParseRole(input)
		if err != nil {
			t.Fatalf("ParseRole(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseRole(%q) = %s, want %s", input, got, want)
		}
	}
	if _, err := ParseRole("root"); err == nil {
		t.Fatalf("expected unknown role to fail")
	}
}

func TestRoleOrDefault(t *testing.T) {
	if got := RoleOrDefault(""); got != RoleUser {
		t.Fatalf("blank role should default to USER, got %s", got)
	}
	if got := RoleOrDefault("superuser"); got != RoleUser {
		t.Fatalf("unknown role should default to USER, got %s", got)
	}
	if got := RoleOrDefault("Admin"); got != RoleAdmin {
		t.Fatalf("expected ADMIN, got %s", got)
	}
}

func TestParsePaymentMethod(t *testing.T) {
	got, err := ParsePaymentMethod(" PayPal ")
	if err != nil || got != PaymentMethodPayPal {
		t.Fatalf("expected paypal, got %s err=%v", got, err)
	}
	if _, err := ParsePaymentMethod("bitcoin"); err == nil {
		t.Fatalf("expected unsupported method to fail")
	}
	if PaymentMethod("cash").IsValid() {
		t.Fatalf("cash is not a supported method")
	}
}

func TestParsePaymentStatus(t *testing.T) {
	if got, err := ParsePaymentStatus("PENDING"); err != nil || got != PaymentStatusPending {
		t.Fatalf("expected PENDING, got %s err=%v", got, err)
	}
	if _, err := ParsePaymentStatus("pending"); err == nil {
		t.Fatalf("status labels are case sensitive")
	}
}
