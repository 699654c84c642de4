package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	base := Conflict("evaluation %s already completed", "e1")
	wrapped := fmt.Errorf("submit: %w", base)

	if got := KindOf(wrapped); got != KindConflict {
		t.Fatalf("KindOf = %v, want conflict", got)
	}
	if !Is(wrapped, KindConflict) {
		t.Fatal("Is(conflict) = false")
	}
	if Is(nil, KindConflict) {
		t.Fatal("nil error must not match any kind")
	}
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Fatalf("plain error kind = %v, want internal", got)
	}
}

func TestUpstreamKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Upstream(cause, "benchmark provider unavailable")
	if !errors.Is(err, cause) {
		t.Fatal("cause lost")
	}
	if err.Error() != "benchmark provider unavailable: dial tcp: timeout" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("valeur", "must be between 0 and 5")
	if err.Kind != KindValidation {
		t.Fatalf("kind = %v", err.Kind)
	}
	if got := err.Fields["valeur"]; len(got) != 1 || got[0] != "must be between 0 and 5" {
		t.Fatalf("fields = %v", err.Fields)
	}
}
