package ferr

import (
	"fmt"
	"testing"
)

func TestIsMatchesDirectKind(t *testing.T) {
	err := Invalidf("bad thing %d", 3)
	if !Is(err, Invalid) {
		t.Fatalf("expected Is(err, Invalid) to be true")
	}
	if Is(err, Read) {
		t.Fatalf("expected Is(err, Read) to be false")
	}
}

func TestIsMatchesWrappedKind(t *testing.T) {
	inner := Readf("sector 5 unreadable")
	wrapped := fmt.Errorf("mount failed: %w", inner)
	if !Is(wrapped, Read) {
		t.Fatalf("expected wrapped Read error to be found")
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	cause := fmt.Errorf("disk fault")
	err := Wrap(Write, "flush track 3", cause)
	want := "WRITE: flush track 3: disk fault"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}
