package pins

import "testing"

func TestNewIdlesHigh(t *testing.T) {
	b := New()
	if !b.GetMrd() || !b.GetMwr() || !b.GetClear() || !b.GetWait() {
		t.Errorf("New() should idle every wire high, got %#x", uint64(b))
	}
}

func TestMaskPartition(t *testing.T) {
	all := MaskAll()
	out := MaskOut()
	in := MaskIn()
	bus := MaskBus()

	if out&in != 0 {
		t.Errorf("MaskOut and MaskIn overlap: out=%#x in=%#x", out, in)
	}
	if (out | in) != all {
		t.Errorf("MaskOut | MaskIn = %#x, want MaskAll = %#x", out|in, all)
	}
	if out&bus != 0 {
		t.Errorf("MaskOut should exclude the bidirectional bus, got overlap %#x", out&bus)
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	b := New()
	b = b.SetBus(0xa5)
	b = b.SetMa(0x5a)
	b = b.SetN(0x6)
	b = b.SetQ(true)
	b = b.SetSc(0x2)
	b = b.SetEf1(true)
	b = b.SetEf3(true)

	if got := b.GetBus(); got != 0xa5 {
		t.Errorf("GetBus() = %#x, want 0xa5", got)
	}
	if got := b.GetMa(); got != 0x5a {
		t.Errorf("GetMa() = %#x, want 0x5a", got)
	}
	if got := b.GetN(); got != 0x6 {
		t.Errorf("GetN() = %#x, want 0x6", got)
	}
	if !b.GetQ() {
		t.Errorf("GetQ() = false, want true")
	}
	if got := b.GetSc(); got != 0x2 {
		t.Errorf("GetSc() = %#x, want 0x2", got)
	}
	ef := b.GetEf()
	if ef&0x1 == 0 || ef&0x4 == 0 {
		t.Errorf("GetEf() = %#x, want bits 0 and 2 set", ef)
	}
}

func TestSetMaskedOverlaysOnlyMaskedBits(t *testing.T) {
	base := New().SetBus(0x00).SetMa(0xff)
	other := New().SetBus(0xff).SetMa(0x00)

	merged := base.SetMasked(other, MaskBus())
	if merged.GetBus() != 0xff {
		t.Errorf("SetMasked should overlay bus bits: got %#x", merged.GetBus())
	}
	if merged.GetMa() != 0xff {
		t.Errorf("SetMasked should leave Ma untouched: got %#x", merged.GetMa())
	}
}
