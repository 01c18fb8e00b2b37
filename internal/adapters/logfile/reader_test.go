package logfile

import (
	"testing"
	"time"
)

func TestParseDayHandlesShortTrailingLine(t *testing.T) {
	data := "\n14:35:00 --> 1.234, 1.235, -0.002, 4\n\n14:36:00 --> 0.5, 0.25, "

	lines, err := ParseDay([]byte(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if len(lines[0].Values) != 4 {
		t.Fatalf("expected 4 values in terminated line, got %d", len(lines[0].Values))
	}
	if len(lines[1].Values) != 2 {
		t.Fatalf("expected 2 values in interrupted line, got %d", len(lines[1].Values))
	}
	if lines[1].Time != "14:36:00" {
		t.Fatalf("expected header 14:36:00, got %s", lines[1].Time)
	}
}

func TestParseDayRejectsMissingHeader(t *testing.T) {
	if _, err := ParseDay([]byte("1.0, 2.0, 3.0")); err == nil {
		t.Fatalf("expected error for line without header separator")
	}
}

func TestSplitDayFile(t *testing.T) {
	date, ok := SplitDayFile("Amps 2024-06-03.txt", "Amps ")
	if !ok || date != "2024-06-03" {
		t.Fatalf("expected match with date 2024-06-03, got %q ok=%v", date, ok)
	}

	for _, name := range []string{
		"Volts 2024-06-03.txt", // wrong prefix
		"Amps notadate.txt",    // unparseable date
		"Amps 2024-06-03.csv",  // wrong extension
	} {
		if _, ok := SplitDayFile(name, "Amps "); ok {
			t.Fatalf("expected no match for %q", name)
		}
	}
}

func TestFilename(t *testing.T) {
	ts := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	if got := Filename("Volts ", ts); got != "Volts 2024-06-03.txt" {
		t.Fatalf("unexpected filename %q", got)
	}
}
