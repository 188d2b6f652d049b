package instr

import (
	"bytes"
	"testing"
)

// TestDecodeEncodeRoundTrip checks the universal property that every byte
// sequence instr can decode, it can also re-encode back to the same bytes.
func TestDecodeEncodeRoundTrip(t *testing.T) {
	cases := [][]byte{
		{0x00},             // Idl
		{0x05},             // Ldn r5
		{0x1a},             // Inc ra
		{0x30, 0x42},       // Br
		{0x3e, 0x10},       // Bn3
		{0x60},             // Irx
		{0x64},             // Out 4
		{0x68},             // Resv68
		{0x6c},             // Inp (raw nibble c)
		{0x79},             // Mark
		{0x7c, 0x11},       // Adci
		{0xc3, 0x12, 0x34}, // Lbdf
		{0xc8, 0xab, 0xcd}, // Nlbr
		{0xd3},             // Sep r3
		{0xe7},             // Sex r7
		{0xf8, 0x99},       // Ldi
		{0xff, 0x01},       // Smi
	}
	for _, bin := range cases {
		i, ok := Decode(bin)
		if !ok {
			t.Fatalf("Decode(% x) failed", bin)
		}
		size := Size(i)
		if int(size) != len(bin) {
			t.Fatalf("Decode(% x) -> Op=%d, Size=%d, want %d", bin, i.Op, size, len(bin))
		}
		enc := Encode(i)
		if !bytes.Equal(enc, bin) {
			t.Errorf("Decode(% x) -> %+v -> Encode = % x, want % x", bin, i, enc, bin)
		}
	}
}

// TestOutInpDisambiguation confirms the deliberate range-based split of
// nibble-6 packed opcodes: low nibble 1-7 decodes as Out, 9-f as Inp, and 0/8
// are claimed by the exact-byte Irx/Resv68 entries.
func TestOutInpDisambiguation(t *testing.T) {
	for n := byte(1); n <= 7; n++ {
		i, ok := Decode([]byte{0x60 | n})
		if !ok || i.Op != Out || i.Reg != n {
			t.Errorf("Decode(%#x) = %+v, ok=%v, want Out reg=%d", 0x60|n, i, ok, n)
		}
	}
	for n := byte(9); n <= 0xf; n++ {
		i, ok := Decode([]byte{0x60 | n})
		if !ok || i.Op != Inp || i.Reg != n {
			t.Errorf("Decode(%#x) = %+v, ok=%v, want Inp reg=%d", 0x60|n, i, ok, n)
		}
	}
	if i, ok := Decode([]byte{0x60}); !ok || i.Op != Irx {
		t.Errorf("Decode(0x60) = %+v, ok=%v, want Irx", i, ok)
	}
	if i, ok := Decode([]byte{0x68}); !ok || i.Op != Resv68 {
		t.Errorf("Decode(0x68) = %+v, ok=%v, want Resv68", i, ok)
	}
}

func TestDecodeTruncated(t *testing.T) {
	if _, ok := Decode(nil); ok {
		t.Errorf("Decode(nil) should fail")
	}
	if _, ok := Decode([]byte{0x30}); ok {
		t.Errorf("Decode(Br with no operand byte) should fail")
	}
	if _, ok := Decode([]byte{0xc0, 0x12}); ok {
		t.Errorf("Decode(Lbr with only one operand byte) should fail")
	}
}

func TestMnemonic(t *testing.T) {
	tests := []struct {
		i    Instr
		want string
	}{
		{Instr{Op: Idl}, "idl"},
		{Instr{Op: Ldn, Reg: 3}, "ldn 3"},
		{Instr{Op: Ldi, Imm: 0xf0}, "ldi f0"},
		{Instr{Op: Lbr, Hi: 0x12, Lo: 0x34}, "lbr 12 34"},
	}
	for _, tc := range tests {
		if got := Mnemonic(tc.i); got != tc.want {
			t.Errorf("Mnemonic(%+v) = %q, want %q", tc.i, got, tc.want)
		}
	}
}

func TestSizeAllOps(t *testing.T) {
	for op := Op(0); op < numOps; op++ {
		s := schemas[op]
		var i Instr
		i.Op = op
		switch s.kind {
		case kindPlain:
			if Size(i) != 1 {
				t.Errorf("Op %d (%s): Size = %d, want 1", op, s.name, Size(i))
			}
		case kindPacked:
			if Size(i) != 1 {
				t.Errorf("Op %d (%s): Size = %d, want 1", op, s.name, Size(i))
			}
		case kindPlainNN:
			if Size(i) != 2 {
				t.Errorf("Op %d (%s): Size = %d, want 2", op, s.name, Size(i))
			}
		case kindPlainHHLL:
			if Size(i) != 3 {
				t.Errorf("Op %d (%s): Size = %d, want 3", op, s.name, Size(i))
			}
		}
	}
}
