package debug

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTracefRespectsMask(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.log")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create() err = %v", err)
	}
	defer f.Close()

	SetFile(f)
	defer SetFile(nil)

	Tracef(Cpu, Memory, "should not appear")
	Tracef(Cpu, Cpu, "fetch pc=%04x", 0x10)
	f.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() err = %v", err)
	}
	got := string(data)
	if got == "" {
		t.Fatal("expected trace output, got none")
	}
	if want := "cpu: fetch pc=0010\n"; got != want {
		t.Errorf("trace output = %q, want %q", got, want)
	}
}

func TestTracefNoOpWithoutFile(t *testing.T) {
	SetFile(nil)
	Tracef(Cpu, Cpu, "no file open")
}
