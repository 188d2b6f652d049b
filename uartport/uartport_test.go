package uartport

import "testing"

func TestBaudToClockMultiplier(t *testing.T) {
	// A 1.8432 MHz clock is the classic crystal chosen specifically to
	// divide evenly into standard baud rates at 16x oversampling.
	got := BaudToClockMultiplier(9600, 1843200)
	if got != 12 {
		t.Errorf("BaudToClockMultiplier(9600, 1843200) = %d, want 12", got)
	}
}

func TestModeString(t *testing.T) {
	if got := DefaultMode().String(); got != "8n1" {
		t.Errorf("DefaultMode().String() = %q, want 8n1", got)
	}
	even := Even
	m := Mode{CharBits: 7, Parity: &even, StopBits: 2}
	if got := m.String(); got != "7e2" {
		t.Errorf("Mode.String() = %q, want 7e2", got)
	}
}

func TestAy51013PortLoopback(t *testing.T) {
	rx := NewAy51013Port(DefaultMode(), 1)
	tx := NewAy51013Port(DefaultMode(), 1)

	tx.Tx(0x55)

	var gotByte uint8
	var gotErr error
	sawData := false
	for i := 0; i < 2000 && !sawData; i++ {
		tx.Tick()
		rx.SetRxPin(tx.GetTxPin())
		rx.Tick()
		if rx.IsRxReady() {
			gotByte, gotErr = rx.Rx()
			sawData = true
		}
	}

	if !sawData {
		t.Fatalf("receiver never saw a byte after 2000 ticks")
	}
	if gotErr != nil {
		t.Errorf("Rx() err = %v, want nil", gotErr)
	}
	if gotByte != 0x55 {
		t.Errorf("Rx() byte = %#x, want 0x55", gotByte)
	}
}

func TestCdp1854PortBridgesBothDirections(t *testing.T) {
	port := NewCdp1854Port(DefaultMode(), 4)

	// Host to program: a byte hurled in with Tx must reach the chip's
	// receive holding register, readable over the bus as a program would.
	port.Tx(0xab)
	for i := 0; i < 4000 && !port.IsRxReady(); i++ {
		port.Tick()
	}
	if !port.IsRxReady() {
		t.Fatalf("receiver never signalled data ready after Tx")
	}
	p := port.pins.SetCs(0b101).SetTpb(true).SetRsel(false).SetRdWr(true)
	p = port.chip.TickTpb(p)
	port.pins = p.SetTpb(false)
	if got := p.GetRBus(); got != 0xab {
		t.Errorf("RBus after host Tx = %#x, want 0xab", got)
	}

	// Program to host: a byte written into the transmit holding register
	// over the bus must surface through Rx.
	p = port.pins.SetCs(0b101).SetTpb(true).SetRsel(false).SetRdWr(false).SetTBus(0x5a)
	p = port.chip.TickTpb(p)
	port.pins = p.SetTpb(false)

	var gotByte uint8
	var gotErr error
	sawData := false
	for i := 0; i < 4000 && !sawData; i++ {
		port.Tick()
		if b, err := port.Rx(); err == nil {
			gotByte, gotErr = b, err
			sawData = true
		}
	}
	if !sawData {
		t.Fatalf("host never received the byte the program transmitted")
	}
	if gotErr != nil {
		t.Errorf("Rx() err = %v, want nil", gotErr)
	}
	if gotByte != 0x5a {
		t.Errorf("Rx() byte = %#x, want 0x5a", gotByte)
	}
}

func TestClockDivTicksAtMultiplier(t *testing.T) {
	d := clockDiv{clkMul: 4}
	fired := 0
	for i := 0; i < 8; i++ {
		if d.step() {
			fired++
		}
	}
	if fired != 2 {
		t.Errorf("clockDiv fired %d times in 8 steps at mul=4, want 2", fired)
	}
}
