package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte("secret1")
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

func TestGenerateRandByteArray_Basic(t *testing.T) {
	const n = 16
	a := GenerateRandByteArray(n)
	b := GenerateRandByteArray(n)
	if len(a) != n || len(b) != n {
		t.Fatalf("unexpected lengths: %d, %d", len(a), len(b))
	}
	if string(a) == string(b) {
		t.Logf("warning: two GenerateRandByteArray(%d) results are identical; extremely unlikely", n)
	}
}

func TestNonEmpty(t *testing.T) {
	if !NonEmpty("alice", "a@x.com") {
		t.Fatalf("expected true for non-empty values")
	}
	if NonEmpty("alice", "") {
		t.Fatalf("expected false when a value is empty")
	}
	if !NonEmpty(" ") {
		t.Fatalf("expected true for whitespace; callers trim first")
	}
	if !NonEmpty() {
		t.Fatalf("expected true for no values")
	}
}

func TestValidationErrorsWrap(t *testing.T) {
	err := fmt.Errorf("%w: username must not be empty", ErrValidation)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("wrapped error must match ErrValidation")
	}
	if errors.Is(err, ErrUnknownTheme) {
		t.Fatalf("wrapped error must not match unrelated sentinels")
	}
}
