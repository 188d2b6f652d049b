package disassemble

import (
	"strings"
	"testing"

	"github.com/rcornwell/membershipcard/memory"
)

func TestListingDecodesSequence(t *testing.T) {
	// ldi 42; plo r1; br 00 (branch to self)
	mem, err := memory.NewBuilder().WithImage(0, []byte{0xf8, 0x42, 0xa1, 0x30, 0x00}).Build()
	if err != nil {
		t.Fatalf("Build() err = %v", err)
	}

	lines := Listing(mem, 0, 3)
	if len(lines) != 3 {
		t.Fatalf("Listing() returned %d lines, want 3", len(lines))
	}
	if lines[0].Addr != 0 || lines[1].Addr != 2 || lines[2].Addr != 3 {
		t.Errorf("addresses = %d,%d,%d, want 0,2,3", lines[0].Addr, lines[1].Addr, lines[2].Addr)
	}
	if !strings.Contains(lines[0].Text, "ldi") {
		t.Errorf("lines[0].Text = %q, want it to mention ldi", lines[0].Text)
	}
}

func TestListingStopsAtEndOfImage(t *testing.T) {
	mem, err := memory.NewBuilder().WithAddressWidth(4).WithImage(0, []byte{0xf8, 0x42}).Build()
	if err != nil {
		t.Fatalf("Build() err = %v", err)
	}
	lines := Listing(mem, 14, 5)
	if len(lines) != 2 {
		t.Errorf("Listing() near end of a 16-byte image returned %d lines, want 2", len(lines))
	}
}

func TestLineStringFormat(t *testing.T) {
	l := Line{Addr: 0x10, Bytes: []byte{0xf8, 0x42}, Text: "ldi 42"}
	got := l.String()
	if !strings.HasPrefix(got, "0010") {
		t.Errorf("String() = %q, want it to start with the address", got)
	}
}
