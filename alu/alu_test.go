package alu

import "testing"

func TestAdd(t *testing.T) {
	tests := []struct {
		x, y     uint8
		wantSum  uint8
		wantFlag bool
	}{
		{0, 0, 0, false},
		{0, 1, 1, false},
		{0xfe, 1, 0xff, false},
		{0xff, 1, 0, true},
		{0xff, 0xff, 0xfe, true},
	}
	for _, tc := range tests {
		sum, flag := Add(tc.x, tc.y)
		if sum != tc.wantSum || flag != tc.wantFlag {
			t.Errorf("Add(%#x, %#x) = (%#x, %v), want (%#x, %v)", tc.x, tc.y, sum, flag, tc.wantSum, tc.wantFlag)
		}
	}
}

func TestAddc(t *testing.T) {
	tests := []struct {
		x, y     uint8
		cin      bool
		wantSum  uint8
		wantFlag bool
	}{
		{0, 0, false, 0, false},
		{0, 0, true, 1, false},
		{0, 1, true, 2, false},
		{1, 1, true, 3, false},
		{0xff, 0, true, 0, true},
		{0xff, 1, false, 0, true},
		{0xfe, 1, true, 0, true},
		{0xff, 1, true, 1, true},
		{0xff, 2, true, 2, true},
	}
	for _, tc := range tests {
		sum, flag := Addc(tc.x, tc.y, tc.cin)
		if sum != tc.wantSum || flag != tc.wantFlag {
			t.Errorf("Addc(%#x, %#x, %v) = (%#x, %v), want (%#x, %v)", tc.x, tc.y, tc.cin, sum, flag, tc.wantSum, tc.wantFlag)
		}
	}
}

func TestSub(t *testing.T) {
	tests := []struct {
		x, y      uint8
		wantDiff  uint8
		wantNoBor bool
	}{
		{0, 0, 0, true},
		{0, 1, 0xff, false},
		{1, 0, 1, true},
		{0xff, 1, 0xfe, true},
		{1, 0xff, 2, false},
	}
	for _, tc := range tests {
		diff, flag := Sub(tc.x, tc.y)
		if diff != tc.wantDiff || flag != tc.wantNoBor {
			t.Errorf("Sub(%#x, %#x) = (%#x, %v), want (%#x, %v)", tc.x, tc.y, diff, flag, tc.wantDiff, tc.wantNoBor)
		}
	}
}

func TestSubc(t *testing.T) {
	tests := []struct {
		x, y      uint8
		bin       bool
		wantDiff  uint8
		wantNoBor bool
	}{
		{0, 0, false, 0, true},
		{1, 1, false, 0, true},
		{1, 0, true, 0, true},
		{1, 1, true, 0xff, false},
		{0, 0, true, 0xff, false},
		{0, 1, false, 0xff, false},
		{0, 1, true, 0xfe, false},
	}
	for _, tc := range tests {
		diff, flag := Subc(tc.x, tc.y, tc.bin)
		if diff != tc.wantDiff || flag != tc.wantNoBor {
			t.Errorf("Subc(%#x, %#x, %v) = (%#x, %v), want (%#x, %v)", tc.x, tc.y, tc.bin, diff, flag, tc.wantDiff, tc.wantNoBor)
		}
	}
}
