package handler

import (
	"errors"
	"testing"
)

func TestValidator_ReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&changePasswordRequest{CurrentPassword: "same-pw", NewPassword: "same-pw"})
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Details) != 1 {
		t.Fatalf("expected one validation failure, got %v", err)
	}
	if want := "new_password must differ from current_password"; ve.Details[0] != want {
		t.Fatalf("expected %q, got %q", want, ve.Details[0])
	}

	err = v.Validate(&updateStatusRequest{})
	if !errors.As(err, &ve) || ve.Details[0] != "is_active is required" {
		t.Fatalf("unexpected failure %v", err)
	}
}

func TestValidator_RoleTag(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(&updateRoleRequest{Role: "moderator"}); err != nil {
		t.Fatalf("expected valid role, got %v", err)
	}
	var ve *ValidationError
	if err := v.Validate(&updateRoleRequest{Role: "owner"}); !errors.As(err, &ve) || ve.Details[0] != "role must be one of: user, moderator, admin" {
		t.Fatalf("expected role failure, got %v", err)
	}
}

func TestSnakeCase(t *testing.T) {
	for in, want := range map[string]string{"CurrentPassword": "current_password", "Role": "role", "id": "id"} {
		if got := snakeCase(in); got != want {
			t.Fatalf("snakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
