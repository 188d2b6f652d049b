package machineconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rcornwell/membershipcard/config/boardconfig"
)

func TestDirectivesPopulateConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.cfg")
	contents := "rom monitor.bin, addr=0000\n" +
		"ram 16384\n" +
		"uart cdp1854, baud=300\n" +
		"invert ef\n" +
		"console :2301\n" +
		"clock 1843200\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile() err = %v", err)
	}

	if err := boardconfig.Load(path); err != nil {
		t.Fatalf("Load() err = %v", err)
	}

	if C.RomPath != "monitor.bin" || C.RomAddr != 0 {
		t.Errorf("rom = %q @ %x, want monitor.bin @ 0", C.RomPath, C.RomAddr)
	}
	if C.RamSize != 16384 {
		t.Errorf("RamSize = %d, want 16384", C.RamSize)
	}
	if C.Uart != UartCdp1854 || C.Baud != 300 {
		t.Errorf("uart = %v @ %d baud, want Cdp1854 @ 300", C.Uart, C.Baud)
	}
	if !C.InvertEf {
		t.Errorf("InvertEf = false, want true")
	}
	if C.ConsoleAddr != ":2301" {
		t.Errorf("ConsoleAddr = %q, want :2301", C.ConsoleAddr)
	}
	if C.ClockFreq != 1843200 {
		t.Errorf("ClockFreq = %d, want 1843200", C.ClockFreq)
	}
}

func TestSetUartRejectsUnknownChip(t *testing.T) {
	if err := setUart("bogus", nil); err == nil {
		t.Errorf("setUart(bogus) err = nil, want error")
	}
}

func TestSetInvertRejectsUnknownTarget(t *testing.T) {
	if err := setInvert("bogus", nil); err == nil {
		t.Errorf("setInvert(bogus) err = nil, want error")
	}
}
