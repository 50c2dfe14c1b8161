package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeRateLimit, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{CodeDependency, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("%s: expected status %d got %d", tc.code, tc.status, got)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	if got := MetadataFor(Code("NOPE")).HTTPStatus; got != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("db down")
	err := Wrap(CodeDependency, cause, "query users")
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAsUnwrapsThroughFmtErrors(t *testing.T) {
	inner := New(CodeNotFound, "company not found")
	outer := fmt.Errorf("handler: %w", inner)
	typed := As(outer)
	if typed == nil || typed.Code() != CodeNotFound {
		t.Fatalf("expected typed error, got %v", typed)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "validation failed").WithDetails(map[string]string{"login": "is required"})
	details, ok := err.Details().(map[string]string)
	if !ok || details["login"] != "is required" {
		t.Fatalf("unexpected details %v", err.Details())
	}
}

func TestDumpCollectsChain(t *testing.T) {
	cause := stdErrors.New("root")
	err := Wrap(CodeInternal, cause, "wrapped")
	d := Dump(err)
	if d.Code != CodeInternal {
		t.Fatalf("unexpected code %s", d.Code)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected chain of length >= 2, got %d", len(d.Chain))
	}
}
