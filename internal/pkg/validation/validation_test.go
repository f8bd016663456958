package validation

import (
	"errors"
	"testing"

	"hostel-leave-api/internal/core/domain"
)

type sample struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Kind    string `json:"kind" validate:"required,leavetype"`
	Comment string `json:"-"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	fields := Struct(sample{Email: "nope", Phone: "12-34", Kind: "Vacation"}, Messages{
		"name":           "Name is required",
		"kind.leavetype": "Please select a leave type",
	})

	if fields["name"] != "Name is required" {
		t.Fatalf("expected custom name message, got %q", fields["name"])
	}
	if fields["email"] != "email must be a valid email" {
		t.Fatalf("expected default email message, got %q", fields["email"])
	}
	if fields["phone"] == "" {
		t.Fatalf("expected phone failure")
	}
	if fields["kind"] != "Please select a leave type" {
		t.Fatalf("expected leave type message, got %q", fields["kind"])
	}
}

func TestStructValid(t *testing.T) {
	fields := Struct(sample{Name: "A", Email: "a@x.com", Phone: "+91 99999-99999", Kind: "Sick"}, nil)
	if fields != nil {
		t.Fatalf("expected no errors, got %v", fields)
	}
	if Error(fields) != nil {
		t.Fatalf("expected nil error for empty fields")
	}
}

func TestErrorWrapsFields(t *testing.T) {
	err := Error(map[string]string{"reason": "Please provide a reason"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if ve.Fields["reason"] != "Please provide a reason" {
		t.Fatalf("unexpected fields: %v", ve.Fields)
	}
}
