package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/MOARdV/AvionicsSystems-sub005/pkg"
)

// fields splits output into rows of whitespace-separated columns.
func fields(out string) [][]string {
	var rows [][]string

	for line := range strings.Lines(out) {
		rows = append(rows, strings.Fields(line))
	}

	return rows
}

func TestCompile_Run(t *testing.T) {
	c := &Compile{Exprs: []string{"42", "-7", `"on"`, "a + 1", "x.y(1, 2)"}}

	out, err := run(t, t.Context(), c.Run)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}

	want := [][]string{
		{"number", "42", "42"},
		{"number", "(-7)", "-7"},
		{"string", `"on"`, `"on"`},
		{"tree", "(a", "+", "1)"},
		{"tree", "x.y(1,", "2)"},
	}

	got := fields(out)
	if len(got) != len(want) {
		t.Fatalf("output rows = %d, want %d:\n%s", len(got), len(want), out)
	}

	for i := range want {
		if strings.Join(got[i], " ") != strings.Join(want[i], " ") {
			t.Errorf("row %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCompile_Names(t *testing.T) {
	c := &Compile{Exprs: []string{"fc.GetThrottle() * max + fc.GetThrottle()"}, Names: true}

	out, err := run(t, t.Context(), c.Run)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}

	if !strings.Contains(out, "max") || !strings.Contains(out, "fc.GetThrottle") {
		t.Errorf("names missing from output %q", out)
	}
}

func TestCompile_Errors(t *testing.T) {
	c := &Compile{Exprs: []string{"1 +", "a", "(b"}}

	out, err := run(t, t.Context(), c.Run)
	if !errors.Is(err, pkg.ErrCompile) {
		t.Fatalf("Run error = %v, want %v", err, pkg.ErrCompile)
	}

	if !strings.Contains(err.Error(), "2 of 3") {
		t.Errorf("error %q does not count failures", err)
	}

	rows := 0

	for _, row := range fields(out) {
		if len(row) > 0 && row[0] == "error" {
			rows++
		}
	}

	if rows != 2 {
		t.Errorf("output has %d error rows, want 2:\n%s", rows, out)
	}
}

func TestCompile_Whole(t *testing.T) {
	file := writeSource(t, t.TempDir(), "expr.txt", "a +\n  b *\n  2\n")
	ctx := WithSourceFiles(t.Context(), []string{file})

	c := &Compile{Whole: true, NoCache: true}

	out, err := run(t, ctx, c.Run)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}

	if !strings.Contains(out, "(a + (b * 2))") {
		t.Errorf("output = %q", out)
	}

	c = &Compile{Whole: true, Exprs: []string{"1", "+", "2"}}

	out, err = run(t, t.Context(), c.Run)
	if err != nil || !strings.Contains(out, "(1 + 2)") {
		t.Errorf("joined arguments: %q, %v", out, err)
	}
}

func TestCompile_NoInput(t *testing.T) {
	file := writeSource(t, t.TempDir(), "empty.txt", "\n-- nothing here\n")
	ctx := WithSourceFiles(t.Context(), []string{file})

	if _, err := run(t, ctx, (&Compile{}).Run); !errors.Is(err, ErrNoExpressions) {
		t.Errorf("Run error = %v, want %v", err, ErrNoExpressions)
	}
}

func TestOneLine(t *testing.T) {
	if got := oneLine("a\r\nb\nc\rd"); got != "a b c d" {
		t.Errorf("oneLine = %q", got)
	}
}
