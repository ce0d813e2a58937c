package repl

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHistory_Persist(t *testing.T) {
	path := filepath.Join(t.TempDir(), HistoryFile)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load of missing file error = %v", err)
	}

	for _, e := range []HistoryEntry{
		{Line: "a + 1", Mode: modeEval},
		{Line: "vars", Mode: modeCtrl},
		{Line: "b * 2", Mode: modeEval},
	} {
		if _, err := h.WriteWithMode(e.Line, e.Mode); err != nil {
			t.Fatalf("WriteWithMode(%q) error = %v", e.Line, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if want := "E:a + 1\nC:vars\nE:b * 2\n"; string(data) != want {
		t.Errorf("history file = %q, want %q", data, want)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load error = %v", err)
	}

	if loaded.Len() != 3 {
		t.Fatalf("Len = %d, want 3", loaded.Len())
	}

	entry, err := loaded.GetEntry(1)
	if err != nil || entry.Line != "vars" || entry.Mode != modeCtrl {
		t.Errorf("GetEntry(1) = %+v, %v", entry, err)
	}
}

func TestHistory_Duplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), HistoryFile)
	h := NewHistory(path)

	for _, line := range []string{"a", "b", "b", "a"} {
		if _, err := h.Write(line); err != nil {
			t.Fatal(err)
		}
	}

	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}

	if line, _ := h.GetLine(1); line != "a" {
		t.Errorf("newest entry = %q, want %q", line, "a")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if want := "E:b\nE:a\n"; string(data) != want {
		t.Errorf("rewritten file = %q, want %q", data, want)
	}

	// The same text in another mode is a separate entry.
	if _, err := h.WriteWithMode("a", modeCtrl); err != nil {
		t.Fatal(err)
	}

	if h.Len() != 3 {
		t.Errorf("Len = %d, want 3", h.Len())
	}
}

func TestHistory_InMemory(t *testing.T) {
	h := NewHistory("")

	if err := h.Load(); err != nil {
		t.Fatalf("Load error = %v", err)
	}

	if _, err := h.Write("  x  "); err != nil {
		t.Fatalf("Write error = %v", err)
	}

	if _, err := h.Write("   "); err != nil {
		t.Fatalf("Write error = %v", err)
	}

	if got := h.Entries(); len(got) != 1 || got[0].Line != "x" {
		t.Errorf("Entries = %+v", got)
	}
}

func TestHistory_OutOfBounds(t *testing.T) {
	h := NewHistory("")

	for _, i := range []int{-1, 0, 5} {
		if _, err := h.GetLine(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("GetLine(%d) error = %v, want %v", i, err, ErrOutOfBounds)
		}
	}
}

func TestDecodeEntry(t *testing.T) {
	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"E:1 + 2", HistoryEntry{Line: "1 + 2", Mode: modeEval}},
		{"C:help", HistoryEntry{Line: "help", Mode: modeCtrl}},
		{"plain", HistoryEntry{Line: "plain", Mode: modeEval}},
	}

	for _, tt := range tests {
		if got := decodeEntry(tt.line); got != tt.want {
			t.Errorf("decodeEntry(%q) = %+v, want %+v", tt.line, got, tt.want)
		}

		if got := strings.TrimSuffix(tt.want.encode(), "\n"); tt.line != "plain" && got != tt.line {
			t.Errorf("encode() = %q, want %q", got, tt.line)
		}
	}
}
