package memory

import (
	"errors"
	"testing"

	"github.com/rcornwell/membershipcard/pins"
)

func TestBuildImageOutOfRange(t *testing.T) {
	_, err := NewBuilder().WithAddressWidth(8).WithImage(0xf0, make([]byte, 32)).Build()
	if err != ErrImageOutOfRange {
		t.Fatalf("Build() err = %v, want ErrImageOutOfRange", err)
	}
}

func TestTickLatchesHighAddressOnTPA(t *testing.T) {
	m, err := NewBuilder().WithAddressWidth(16).WithImage(0x1234, []byte{0xaa}).Build()
	if err != nil {
		t.Fatalf("Build() err = %v", err)
	}

	bus := pins.New().SetMa(0x12).SetTpa(true)
	bus, _, err = m.Tick(bus, true)
	if err != nil {
		t.Fatalf("Tick() err = %v", err)
	}

	bus = bus.SetTpa(false).SetMa(0x34).SetMrd(false)
	bus, access, err := m.Tick(bus, true)
	if err != nil {
		t.Fatalf("Tick() err = %v", err)
	}
	if access == nil || access.Mode != Read || access.Addr != 0x1234 || access.Data != 0xaa {
		t.Fatalf("Tick() access = %+v, want Read 0x1234=0xaa", access)
	}
	if bus.GetBus() != 0xaa {
		t.Errorf("Tick() did not drive bus with read data: got %#x", bus.GetBus())
	}
}

func TestTickWriteProtectionFault(t *testing.T) {
	start := uint16(0x1000)
	end := uint16(0x1fff)
	m, err := NewBuilder().
		WithAddressWidth(16).
		WithWriteProtectRange(Range{Start: &start, End: &end}).
		Build()
	if err != nil {
		t.Fatalf("Build() err = %v", err)
	}

	bus := pins.New().SetMa(0x10).SetTpa(true)
	bus, _, _ = m.Tick(bus, true)
	bus = bus.SetTpa(false).SetMa(0x00).SetMwr(false).SetBus(0x42)

	_, _, err = m.Tick(bus, true)
	if !errors.Is(err, ErrWriteProtectionFault) {
		t.Fatalf("Tick() err = %v, want ErrWriteProtectionFault", err)
	}
	const wantMsg = "memory: write protection fault at 0x1000: memory: write protection fault"
	if err.Error() != wantMsg {
		t.Errorf("Tick() err = %q, want %q", err.Error(), wantMsg)
	}
}

func TestTickWriteSucceedsOutsideProtectedRange(t *testing.T) {
	m, err := NewBuilder().WithAddressWidth(16).Build()
	if err != nil {
		t.Fatalf("Build() err = %v", err)
	}

	bus := pins.New().SetMa(0x00).SetTpa(true)
	bus, _, _ = m.Tick(bus, true)
	bus = bus.SetTpa(false).SetMa(0x55).SetMwr(false).SetBus(0x99)

	_, access, err := m.Tick(bus, true)
	if err != nil {
		t.Fatalf("Tick() err = %v", err)
	}
	if access == nil || access.Mode != Write || access.Addr != 0x55 || access.Data != 0x99 {
		t.Fatalf("Tick() access = %+v, want Write 0x55=0x99", access)
	}
	if m.ReadByte(0x55) != 0x99 {
		t.Errorf("ReadByte(0x55) = %#x, want 0x99", m.ReadByte(0x55))
	}
}

func TestGetInstrAt(t *testing.T) {
	m, err := NewBuilder().WithAddressWidth(16).WithImage(0, []byte{0xc3, 0x12, 0x34}).Build()
	if err != nil {
		t.Fatalf("Build() err = %v", err)
	}
	i, ok := m.GetInstrAt(0)
	if !ok {
		t.Fatalf("GetInstrAt(0) failed")
	}
	if i.Hi != 0x12 || i.Lo != 0x34 {
		t.Errorf("GetInstrAt(0) = %+v, want Hi=0x12 Lo=0x34", i)
	}
}
