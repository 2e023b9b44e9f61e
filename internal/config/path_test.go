package config

import (
	"testing"
)

func TestDefaultDataDirXDGOverride(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	if got := DefaultDataDir(); got != "/custom/data/flake" {
		t.Fatalf("expected /custom/data/flake, got %s", got)
	}
}

func TestDefaultDataDirNonEmpty(t *testing.T) {
	if DefaultDataDir() == "" {
		t.Fatalf("data dir should never be empty")
	}
}

func TestIsDir(t *testing.T) {
	if !isDir(".") {
		t.Fatalf("current directory should be a dir")
	}
	if isDir("/non/existent/path/that/does/not/exist") {
		t.Fatalf("missing path should not be a dir")
	}
}
