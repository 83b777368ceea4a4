package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestScanErrorFormatting(t *testing.T) {
	err := NewScanError(CodeValidation, "scan_id is required")
	if err.Error() != "[VALIDATION] scan_id is required" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	terr := ErrInvalidTarget("bad host")
	if terr.Error() != "[TARGET_INVALID] invalid target format (target: bad host)" {
		t.Errorf("unexpected message: %q", terr.Error())
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"scan error", ErrCapacityExceeded(), CodeCapacity},
		{"delivery error", NewDeliveryError("http://x", 500), CodeDeliveryFailed},
		{"config error", NewConfigFieldError(CodeValidation, "bad", "port", 0), CodeValidation},
		{"plain error", fmt.Errorf("boom"), CodeUnknown},
		{"wrapped scan error", fmt.Errorf("outer: %w", ErrScanNotFound("x")), CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAdmission(t *testing.T) {
	admission := []error{
		NewScanError(CodeValidation, "m"),
		ErrInvalidTarget("t"),
		ErrUnknownScanType("x"),
		ErrDuplicateScan("id"),
		ErrCapacityExceeded(),
	}
	for _, err := range admission {
		if !IsAdmission(err) {
			t.Errorf("IsAdmission(%v) = false", err)
		}
	}

	notAdmission := []error{
		ErrScanNotFound("id"),
		WrapScanError(CodeScanFailed, "engine", fmt.Errorf("boom")),
		fmt.Errorf("plain"),
	}
	for _, err := range notAdmission {
		if IsAdmission(err) {
			t.Errorf("IsAdmission(%v) = true", err)
		}
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := WrapScanError(CodeScanFailed, "scan failed", cause)

	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}

	derr := WrapDeliveryError("http://x", cause)
	if !stderrors.Is(derr, cause) {
		t.Error("delivery cause not reachable via errors.Is")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(ErrScanNotFound("x")) {
		t.Error("IsNotFound should match scan-not-found errors")
	}
	if IsNotFound(ErrCapacityExceeded()) {
		t.Error("IsNotFound should not match capacity errors")
	}
}
