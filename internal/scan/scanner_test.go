package scan

import (
	"os"
	"path/filepath"
	"testing"

	"tagscout/internal/logger"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not really audio"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFindMP3Files(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.mp3"))
	writeFile(t, filepath.Join(dir, "sub", "b.MP3"))
	writeFile(t, filepath.Join(dir, "c.flac"))
	writeFile(t, filepath.Join(dir, "notes.txt"))

	files, err := FindMP3Files(dir)
	if err != nil {
		t.Fatalf("FindMP3Files() error: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("found %d files, want 2 (case-insensitive .mp3 only): %v", len(files), files)
	}
}

func TestFindMP3Files_MissingDir(t *testing.T) {
	if _, err := FindMP3Files(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
	if _, err := FindMP3Files(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestRead_CorruptFileStillScanned(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.mp3")
	writeFile(t, path)

	s := NewScanner(logger.New(false))
	f, err := s.Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	// Garbage bytes carry no tags, but the record must still be usable
	// by the fallback stages.
	if f.Path != path || f.Filename != "broken.mp3" {
		t.Errorf("unexpected record: %+v", f)
	}
	if f.Size == 0 || f.ModTime == 0 {
		t.Errorf("cache key inputs missing: %+v", f)
	}
	if f.HasBasicTags() {
		t.Errorf("expected no tags from garbage bytes: %+v", f)
	}
}

func TestRead_MissingFile(t *testing.T) {
	s := NewScanner(logger.New(false))
	if _, err := s.Read(filepath.Join(t.TempDir(), "ghost.mp3")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
