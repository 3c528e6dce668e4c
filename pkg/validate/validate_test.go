package validate

import (
	"testing"

	pkgerrors "github.com/JKPrasad01/FoodAppFrontend/pkg/errors"
)

type signup struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Confirm  string `json:"confirmPassword" validate:"eqfield=Password"`
}

func TestStructAcceptsValidInput(t *testing.T) {
	err := Struct(&signup{Username: "ana", Email: "ana@example.com", Password: "secret", Confirm: "secret"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(&signup{Username: "ana", Email: "nope", Password: "123", Confirm: "321"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if typed.Message() != "email must be a valid email" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	if details["password"] != "must be at least 6 characters" {
		t.Fatalf("unexpected password message %q", details["password"])
	}
	if details["confirmPassword"] != "must match Password" {
		t.Fatalf("unexpected confirm message %q", details["confirmPassword"])
	}
	if _, ok := details["username"]; ok {
		t.Fatal("username is valid and should not be reported")
	}
}
