package memory

import (
	"path/filepath"
	"testing"
)

func TestLineEncodingRoundTrip(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "memory.id"))

	in := map[string]string{"name": "Alice", "city": "Hanoi"}
	if err := s.Write(in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := s.Read()
	if len(out) != 2 || out["name"] != "Alice" || out["city"] != "Hanoi" {
		t.Errorf("unexpected round trip: %v", out)
	}
}

func TestYAMLEncodingRoundTrip(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "memory.yaml"))

	in := map[string]string{"favorite_color": "blue", "note": "has: colons, and commas"}
	if err := s.Write(in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := s.Read()
	if out["note"] != "has: colons, and commas" {
		t.Errorf("yaml round trip lost value: %q", out["note"])
	}
}

func TestAppendMerges(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "memory.id"))

	if err := s.Append("a", "1"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append("b", "2"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append("a", "3"); err != nil {
		t.Fatalf("append overwrite: %v", err)
	}

	out := s.Read()
	if out["a"] != "3" || out["b"] != "2" {
		t.Errorf("unexpected map after appends: %v", out)
	}
}

func TestReadMissingFileIsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent.id"))
	if got := s.Read(); len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
	if s.Get("anything") != "" {
		t.Error("expected empty value for missing key")
	}
}

func TestLineEncodingSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "memory.id"))
	if err := s.Write(map[string]string{"good": "value"}); err != nil {
		t.Fatal(err)
	}
	// Values containing '=' keep everything after the first separator.
	if err := s.Append("eq", "a=b=c"); err != nil {
		t.Fatal(err)
	}
	out := s.Read()
	if out["eq"] != "a=b=c" {
		t.Errorf("expected split on first '=' only, got %q", out["eq"])
	}
}
