package manager

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveDefaultDirectory_DataDirAbsolute(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATADIR", dir)
	got := ResolveDefaultDirectory()
	if want := filepath.Join(dir, "logs"); got != want {
		t.Fatalf("ResolveDefaultDirectory() = %q, want %q", got, want)
	}
}

func TestResolveDefaultDirectory_DataDirRelativeIgnored(t *testing.T) {
	t.Setenv("DATADIR", "relative/path")
	got := ResolveDefaultDirectory()
	if want := filepath.Join(".", "logs"); got != want {
		t.Fatalf("ResolveDefaultDirectory() = %q, want %q (relative DATADIR must be ignored)", got, want)
	}
}

func TestResolveDefaultDirectory_Unset(t *testing.T) {
	os.Unsetenv("DATADIR")
	got := ResolveDefaultDirectory()
	if want := filepath.Join(".", "logs"); got != want {
		t.Fatalf("ResolveDefaultDirectory() = %q, want %q", got, want)
	}
}
