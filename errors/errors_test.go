package errors

import (
	"errors"
	"testing"
)

func TestWrapErrorKeepsSentinel(t *testing.T) {
	err := WrapErrorf(ErrColumnNotFound, "column %q", "texto")
	if !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("wrapped error lost sentinel: %v", err)
	}
	if err.Error() != `column "texto": column not found` {
		t.Errorf("unexpected message %q", err.Error())
	}
	if WrapError(nil, "ignored") != nil {
		t.Error("WrapError(nil) should be nil")
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		invalid     bool
		unavailable bool
	}{
		{name: "invalid_input", err: WrapError(ErrInvalidInput, "bad form"), invalid: true},
		{name: "unsupported_format", err: WrapError(ErrUnsupportedFormat, "x.doc"), invalid: true},
		{name: "missing_column", err: ErrColumnNotFound, invalid: true},
		{name: "no_store", err: WrapError(ErrServiceUnavailable, "dictionaries"), unavailable: true},
		{name: "other", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInvalidInput(tt.err); got != tt.invalid {
				t.Errorf("IsInvalidInput() = %v, want %v", got, tt.invalid)
			}
			if got := IsServiceUnavailable(tt.err); got != tt.unavailable {
				t.Errorf("IsServiceUnavailable() = %v, want %v", got, tt.unavailable)
			}
		})
	}
}
