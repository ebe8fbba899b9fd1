package application

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKind(t *testing.T) {
	t.Parallel()

	vErr := &ValidationError{}
	vErr.add("name", "name is required")

	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrUnauthorized, "unauthorized"},
		{ErrForbidden, "forbidden"},
		{ErrNotFound, "not_found"},
		{ErrDuplicate, "already_exists"},
		{ErrInvalidCredentials, "invalid_credentials"},
		{ErrInvalidToken, "invalid_token"},
		{fmt.Errorf("wrapped: %w", ErrNotFound), "not_found"},
		{vErr, "validation"},
		{NewBusinessRuleError("cannot submit an already approved report"), "business_rule"},
		{errors.New("disk full"), "unexpected"},
	}
	for _, tc := range cases {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	var empty *ValidationError
	if empty.HasErrors() {
		t.Fatal("nil validation error should report no errors")
	}

	vErr := &ValidationError{}
	if vErr.HasErrors() {
		t.Fatal("fresh validation error should report no errors")
	}
	vErr.add("name", "name is required")
	if !vErr.HasErrors() {
		t.Fatal("expected recorded field error")
	}
	if vErr.Error() != "validation failed" {
		t.Fatalf("unexpected message: %q", vErr.Error())
	}
}

func TestBusinessRuleError(t *testing.T) {
	t.Parallel()

	err := NewBusinessRuleError("can only delete draft reports")
	if err.Error() != "can only delete draft reports" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	var bErr *BusinessRuleError
	if !errors.As(error(err), &bErr) {
		t.Fatal("expected errors.As to unwrap BusinessRuleError")
	}
}
