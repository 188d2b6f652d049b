package boardconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseLineWithOptions(t *testing.T) {
	var gotValue string
	var gotOpts []Option
	Register("ROM", func(value string, opts []Option) error {
		gotValue, gotOpts = value, opts
		return nil
	})

	if err := parseLine(`rom image.bin, addr=0000, writeprotect # loaded at reset`); err != nil {
		t.Fatalf("parseLine() err = %v", err)
	}
	if gotValue != "image.bin" {
		t.Errorf("value = %q, want image.bin", gotValue)
	}
	if len(gotOpts) != 2 || gotOpts[0].Name != "addr" || gotOpts[0].Value != "0000" || gotOpts[1].Name != "writeprotect" {
		t.Errorf("opts = %+v", gotOpts)
	}
}

func TestParseLineUnknownDirective(t *testing.T) {
	if err := parseLine("bogus 1234"); err == nil {
		t.Fatalf("parseLine() err = nil, want error for unknown directive")
	}
}

func TestLoadAppliesEveryDirective(t *testing.T) {
	var seen []string
	Register("BAUD", func(value string, _ []Option) error {
		seen = append(seen, "baud="+value)
		return nil
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "board.cfg")
	contents := "# comment\nbaud 9600\nbaud 300\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile() err = %v", err)
	}

	if err := Load(path); err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	if len(seen) != 2 || seen[0] != "baud=9600" || seen[1] != "baud=300" {
		t.Errorf("seen = %v", seen)
	}
}
