package cpu

import (
	"testing"

	"github.com/rcornwell/membershipcard/memory"
	"github.com/rcornwell/membershipcard/pins"
)

// testSystem wires a Cpu1802 to a Memory the way a real board would: the
// CPU ticks first and drives the bus, then memory observes the result.
type testSystem struct {
	bus          pins.Bus
	cpu          *Cpu1802
	mem          *memory.Memory
	writeEnabled bool
}

func newTestSystem(t *testing.T) *testSystem {
	t.Helper()
	m, err := memory.NewBuilder().WithAddressWidth(16).Build()
	if err != nil {
		t.Fatalf("memory.Build() err = %v", err)
	}
	return &testSystem{
		bus:          pins.New(),
		cpu:          New(),
		mem:          m,
		writeEnabled: true,
	}
}

func (s *testSystem) tick() {
	s.bus = s.cpu.Tick(s.bus)
	s.bus, _, _ = s.mem.Tick(s.bus, s.writeEnabled)
}

func (s *testSystem) tickN(n int) {
	for i := 0; i < n; i++ {
		s.tick()
	}
}

func (s *testSystem) isWaiting() bool {
	return s.cpu.IsWaiting(s.bus)
}

func TestPowerOnInitTiming(t *testing.T) {
	sys := newTestSystem(t)

	sys.tick()
	if sys.isWaiting() {
		t.Fatalf("CPU should not be waiting during Init")
	}
	if sys.cpu.Cycle != Init || sys.cpu.Tick != 1 {
		t.Fatalf("after 1 tick: Cycle=%v Tick=%d, want Init(1)", sys.cpu.Cycle, sys.cpu.Tick)
	}

	sys.tickN(8)
	if sys.cpu.Cycle != Fetch || sys.cpu.Tick != 0 {
		t.Fatalf("after Init: Cycle=%v Tick=%d, want Fetch(0)", sys.cpu.Cycle, sys.cpu.Tick)
	}

	sys.tickN(8)
	if sys.cpu.Cycle != Execute || sys.cpu.Tick != 0 {
		t.Fatalf("after Fetch: Cycle=%v Tick=%d, want Execute(0)", sys.cpu.Cycle, sys.cpu.Tick)
	}

	sys.tickN(7)
	if sys.cpu.Cycle != Execute || sys.cpu.Tick != 7 {
		t.Fatalf("after 7 execute ticks: Cycle=%v Tick=%d, want Execute(7)", sys.cpu.Cycle, sys.cpu.Tick)
	}
	if !sys.isWaiting() {
		t.Fatalf("IDL at Execute(7) should report waiting")
	}

	sys.tick()
	if sys.cpu.Cycle != Execute || sys.cpu.Tick != 0 {
		t.Fatalf("IDL should loop S1: Cycle=%v Tick=%d, want Execute(0)", sys.cpu.Cycle, sys.cpu.Tick)
	}
}

func TestResetToRunZeroesState(t *testing.T) {
	sys := newTestSystem(t)
	sys.cpu.D, sys.cpu.B, sys.cpu.X, sys.cpu.P = 0x5a, 0xa5, 9, 3
	sys.cpu.R[0] = 0x1234
	sys.cpu.I, sys.cpu.N = 0xc, 0x7

	sys.bus = sys.bus.SetClear(false).SetWait(true)
	sys.tick()

	if sys.cpu.Cycle != Init || sys.cpu.Tick != 0 {
		t.Fatalf("Cycle=%v Tick=%d, want Init(0)", sys.cpu.Cycle, sys.cpu.Tick)
	}
	// tickReset clears I/N along with X, P, and R[0]; tickInit(1) zeroes X, P,
	// and R[0] again once the chip has actually entered Init's first sub-tick.
	if sys.cpu.I != 0 || sys.cpu.N != 0 {
		t.Fatalf("reset did not zero I/N: %+v", sys.cpu)
	}
	if !sys.cpu.IE {
		t.Fatalf("reset should leave IE set")
	}
	if sys.bus.GetQ() {
		t.Fatalf("reset should clear Q")
	}

	sys.bus = sys.bus.SetClear(true)
	sys.bus = sys.bus.SetIntr(true)
	sys.tick()
	if sys.cpu.Cycle != Init || sys.cpu.Tick != 1 {
		t.Fatalf("Cycle=%v Tick=%d, want Init(1)", sys.cpu.Cycle, sys.cpu.Tick)
	}
	if sys.cpu.X != 0 || sys.cpu.P != 0 || sys.cpu.R[0] != 0 {
		t.Fatalf("Init(1) should zero X/P/R0: %+v", sys.cpu)
	}
	sys.tickN(7)
	if sys.cpu.Cycle != Init || sys.cpu.Tick != 8 {
		t.Fatalf("Cycle=%v Tick=%d, want Init(8)", sys.cpu.Cycle, sys.cpu.Tick)
	}
	sys.tick()
	if sys.cpu.Cycle != Fetch || sys.cpu.Tick != 0 {
		t.Fatalf("Cycle=%v Tick=%d, want Fetch(0)", sys.cpu.Cycle, sys.cpu.Tick)
	}
}

func TestResetToLoadStaysInInit(t *testing.T) {
	sys := newTestSystem(t)
	sys.bus = sys.bus.SetClear(false).SetWait(true)
	sys.tick()
	if sys.cpu.Cycle != Init || sys.cpu.Tick != 0 {
		t.Fatalf("Cycle=%v Tick=%d, want Init(0)", sys.cpu.Cycle, sys.cpu.Tick)
	}

	sys.tick()
	if sys.cpu.Cycle != Init || sys.cpu.Tick != 0 {
		t.Fatalf("should stay in Init(0) while wait is high: Cycle=%v Tick=%d", sys.cpu.Cycle, sys.cpu.Tick)
	}

	sys.bus = sys.bus.SetWait(false)
	sys.tick()
	if sys.cpu.Cycle != Init || sys.cpu.Tick != 1 {
		t.Fatalf("Cycle=%v Tick=%d, want Init(1)", sys.cpu.Cycle, sys.cpu.Tick)
	}
	sys.tickN(8)
	if sys.cpu.Cycle != Execute || sys.cpu.Tick != 0 || sys.cpu.R[0] != 0 {
		t.Fatalf("Cycle=%v Tick=%d R0=%d, want Execute(0) R0=0", sys.cpu.Cycle, sys.cpu.Tick, sys.cpu.R[0])
	}

	sys.tickN(7)
	if !sys.isWaiting() {
		t.Fatalf("Load-mode IDL at Execute(7) should report waiting")
	}
	sys.tick()
	if sys.cpu.Cycle != Execute || sys.cpu.Tick != 0 || sys.cpu.R[0] != 0 {
		t.Fatalf("Cycle=%v Tick=%d R0=%d, want Execute(0) R0=0", sys.cpu.Cycle, sys.cpu.Tick, sys.cpu.R[0])
	}
}

func TestNLinesLowExceptDuringIO(t *testing.T) {
	sys := newTestSystem(t)
	sys.tick()
	if n := sys.bus.GetN(); n != 0 {
		t.Errorf("N lines = %#x, want 0 outside of I/O instructions", n)
	}
}

// TestLdiLoadsImmediateAndAdvancesPC exercises a complete fetch/execute
// cycle for LDI nn, checking the immediate lands in D and R[P] steps past
// both the opcode and its operand.
func TestLdiLoadsImmediateAndAdvancesPC(t *testing.T) {
	sys := newTestSystem(t)
	sys.mem.WriteByte(0, 0xf8) // ldi
	sys.mem.WriteByte(1, 0x42)

	// Drive through Init (9 ticks) into Fetch.
	sys.tickN(9)
	if sys.cpu.Cycle != Fetch || sys.cpu.Tick != 0 {
		t.Fatalf("Cycle=%v Tick=%d, want Fetch(0)", sys.cpu.Cycle, sys.cpu.Tick)
	}
	sys.tickN(8) // Fetch
	if sys.cpu.Cycle != Execute {
		t.Fatalf("Cycle=%v, want Execute after fetch", sys.cpu.Cycle)
	}
	sys.tickN(8) // Execute 0..7, back to Fetch(0) for non-long-branch
	if sys.cpu.D != 0x42 {
		t.Fatalf("D = %#x after LDI, want 0x42", sys.cpu.D)
	}
	if sys.cpu.R[0] != 2 {
		t.Fatalf("R[0] = %#x after LDI, want 2 (PC advanced past opcode and operand)", sys.cpu.R[0])
	}
}

// TestLongBranchLoadsBothOperandBytes exercises LBR, one of the long-branch
// instructions that run a second fetch within Execute (ticks 8 and 10) to
// pick up their second operand byte, and checks R[P] ends up at the full
// 16-bit target.
func TestLongBranchLoadsBothOperandBytes(t *testing.T) {
	sys := newTestSystem(t)
	sys.mem.WriteByte(0x0000, 0xc0) // lbr
	sys.mem.WriteByte(0x0001, 0x02)
	sys.mem.WriteByte(0x0002, 0x00)

	sys.tickN(9)  // Init -> Fetch(0)
	sys.tickN(8)  // Fetch
	sys.tickN(16) // Execute, long-branch spans all 16 ticks

	if sys.cpu.R[0] != 0x0200 {
		t.Fatalf("R[0] = %#x after LBR, want 0x0200", sys.cpu.R[0])
	}
}
