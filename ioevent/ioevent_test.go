package ioevent

import (
	"testing"
	"time"
)

func TestParseInputKindRoundTrip(t *testing.T) {
	for _, name := range []string{"intr", "ef1", "ef2", "ef3", "ef4", "io1", "io7"} {
		kind, ok := ParseInputKind(name)
		if !ok {
			t.Fatalf("ParseInputKind(%q) ok = false", name)
		}
		if kind.String() != name {
			t.Errorf("ParseInputKind(%q).String() = %q, want %q", name, kind.String(), name)
		}
	}
}

func TestParseInputKindRejectsUnknown(t *testing.T) {
	if _, ok := ParseInputKind("bogus"); ok {
		t.Errorf("ParseInputKind(\"bogus\") ok = true, want false")
	}
}

func TestOutputKindString(t *testing.T) {
	if Q.String() != "q" {
		t.Errorf("Q.String() = %q, want q", Q.String())
	}
}

func TestEventValuesAreCopyable(t *testing.T) {
	a := InputEvent{Timestamp: time.Second, Kind: Ef3, Value: 1}
	b := a
	b.Value = 0
	if a.Value == b.Value {
		t.Errorf("InputEvent copy aliased Value field")
	}
}
