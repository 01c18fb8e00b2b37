package sdcard

import (
	"io"
	"testing"
)

func TestMediumAppendOpenSizeList(t *testing.T) {
	m, err := NewMedium(t.TempDir())
	if err != nil {
		t.Fatalf("new medium: %v", err)
	}

	f, err := m.OpenAppend("Amps 2024-06-03.txt")
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := io.WriteString(f, "1.5, "); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Appending twice must not truncate.
	f, err = m.OpenAppend("Amps 2024-06-03.txt")
	if err != nil {
		t.Fatalf("reopen append: %v", err)
	}
	if _, err := io.WriteString(f, "2.5, "); err != nil {
		t.Fatalf("second write: %v", err)
	}
	f.Close()

	size, err := m.Size("Amps 2024-06-03.txt")
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if size != int64(len("1.5, 2.5, ")) {
		t.Fatalf("expected size %d, got %d", len("1.5, 2.5, "), size)
	}

	rc, err := m.Open("Amps 2024-06-03.txt")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "1.5, 2.5, " {
		t.Fatalf("unexpected content %q", data)
	}

	names, err := m.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 1 || names[0] != "Amps 2024-06-03.txt" {
		t.Fatalf("unexpected listing %v", names)
	}
}

func TestMediumRejectsPathEscapes(t *testing.T) {
	m, err := NewMedium(t.TempDir())
	if err != nil {
		t.Fatalf("new medium: %v", err)
	}

	for _, name := range []string{"", "../evil.txt", "a/b.txt", `a\b.txt`, "..", "x..y"} {
		if _, err := m.OpenAppend(name); err == nil {
			t.Fatalf("expected rejection for %q", name)
		}
	}
}

func TestMediumReinit(t *testing.T) {
	m, err := NewMedium(t.TempDir())
	if err != nil {
		t.Fatalf("new medium: %v", err)
	}
	if err := m.Reinit(); err != nil {
		t.Fatalf("reinit: %v", err)
	}
}
