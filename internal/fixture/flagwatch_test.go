package fixture

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitForFlag(t *testing.T, fw *flagWatch, want bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if fw.Set() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("flag did not become %v within deadline", want)
}

func TestFlagWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crash.flag")
	fw := newFlagWatch(path)
	t.Cleanup(fw.Close)

	if fw.Set() {
		t.Fatal("flag should start unset when the file does not exist")
	}

	if err := os.WriteFile(path, []byte("1"), 0o600); err != nil {
		t.Fatalf("create flag file: %v", err)
	}
	waitForFlag(t, fw, true)

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove flag file: %v", err)
	}
	waitForFlag(t, fw, false)
}

func TestFlagWatch_PreexistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crash.flag")
	if err := os.WriteFile(path, []byte("1"), 0o600); err != nil {
		t.Fatalf("create flag file: %v", err)
	}

	fw := newFlagWatch(path)
	t.Cleanup(fw.Close)
	if !fw.Set() {
		t.Fatal("flag should start set when the file already exists")
	}
}

func TestFlagWatch_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crash.flag")
	fw := newFlagWatch(path)
	t.Cleanup(fw.Close)

	if err := os.WriteFile(filepath.Join(dir, "other.flag"), []byte("1"), 0o600); err != nil {
		t.Fatalf("create sibling file: %v", err)
	}
	// Give the watcher a moment; the sibling must not flip the switch.
	time.Sleep(100 * time.Millisecond)
	if fw.Set() {
		t.Fatal("sibling file should not set the flag")
	}
}
