package board

import (
	"testing"

	"github.com/rcornwell/membershipcard/memory"
)

func newTestBoard(t *testing.T, program []byte) *Board {
	t.Helper()
	mem, err := memory.NewBuilder().WithImage(0, program).Build()
	if err != nil {
		t.Fatalf("Build() err = %v", err)
	}
	return New(nil, mem, nil, false, false)
}

func TestNewStartsWithLastPCAtZero(t *testing.T) {
	b := newTestBoard(t, []byte{0x00}) // IDL
	if b.LastPC() != 0 {
		t.Errorf("LastPC() = %#x, want 0 after reset", b.LastPC())
	}
}

func TestTickRunsWithoutUart(t *testing.T) {
	// C4 C4 C4 30 00: three NOPs, then a short branch back to 0.
	b := newTestBoard(t, []byte{0xc4, 0xc4, 0xc4, 0x30, 0x00})
	for i := 0; i < 64; i++ {
		b.Tick()
	}
	if b.LastPC() == 0 {
		t.Errorf("LastPC() never advanced past reset after 64 ticks")
	}
}

func TestPollReturnsNoneWhileWaiting(t *testing.T) {
	b := newTestBoard(t, []byte{0x00})
	b.SetFrontPanel(FrontPanel{Wait: true})
	// Let the WAIT level actually reach the CPU pins.
	b.Tick()
	b.lastFrontPanel = b.frontPanel
	if got := b.Poll(); got != StatusNone {
		t.Errorf("Poll() = %v, want StatusNone while held in WAIT with a quiet front panel", got)
	}
}

func TestPollReturnsTickWhenFrontPanelChanges(t *testing.T) {
	b := newTestBoard(t, []byte{0x00})
	b.SetFrontPanel(FrontPanel{Wait: true})
	if got := b.Poll(); got != StatusTick {
		t.Errorf("Poll() = %v, want StatusTick immediately after a front-panel change", got)
	}
}

func TestIsCPUWaitingForUartRequiresUart(t *testing.T) {
	b := newTestBoard(t, []byte{0x00})
	if b.isCPUWaitingForUart() {
		t.Errorf("isCPUWaitingForUart() = true with no UART attached, want false")
	}
}

func TestPushOpcodeHistoryBounded(t *testing.T) {
	b := newTestBoard(t, []byte{0x00})
	for i := 0; i < opcodeHistoryLen+10; i++ {
		b.pushOpcodeHistory(0x36)
	}
	if len(b.opcodeHistory) >= opcodeHistoryLen {
		t.Errorf("opcodeHistory len = %d, want < %d", len(b.opcodeHistory), opcodeHistoryLen)
	}
}
