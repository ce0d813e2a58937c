package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/MOARdV/AvionicsSystems-sub005/pkg"
)

func TestEval_Run(t *testing.T) {
	e := &Eval{
		Bindings: Bindings{Vars: []string{"alt=1200", "fc.gear=true", "name='MAS'"}},
		Exprs: []string{
			"alt / 2",
			"math.max(1, alt)",
			"not fc.gear",
			`name .. "-1"`,
			"7 % 3",
			"2 ^ 10",
		},
	}

	out, err := run(t, t.Context(), e.Run)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}

	want := "600\n1200\nfalse\nMAS-1\n1\n1024\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestEval_VarsFile(t *testing.T) {
	file := writeSource(t, t.TempDir(), "vars.yaml",
		"alt: 1000\nfc:\n  throttle: 0.25\n")

	e := &Eval{
		Bindings: Bindings{VarsFile: file, Vars: []string{"alt=2000"}},
		Exprs:    []string{"alt + fc.throttle * 4"},
	}

	out, err := run(t, t.Context(), e.Run)
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}

	if out != "2001\n" {
		t.Errorf("output = %q, want flag to override file", out)
	}
}

func TestEval_Errors(t *testing.T) {
	tests := []struct {
		name string
		eval Eval
		want error
	}{
		{
			name: "bad binding",
			eval: Eval{Bindings: Bindings{Vars: []string{"novalue"}}, Exprs: []string{"1"}},
			want: pkg.ErrInvalidBinding,
		},
		{
			name: "syntax",
			eval: Eval{Exprs: []string{"1 +"}},
			want: ErrEvaluate,
		},
		{
			name: "unbound",
			eval: Eval{Exprs: []string{"speed * 2"}},
			want: ErrEvaluate,
		},
		{
			name: "bad vars file",
			eval: Eval{Bindings: Bindings{VarsFile: "/nonexistent/vars.yaml"}, Exprs: []string{"1"}},
			want: pkg.ErrReadInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, t.Context(), tt.eval.Run); !errors.Is(err, tt.want) {
				t.Errorf("Run error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEval_ErrorLocation(t *testing.T) {
	e := &Eval{Exprs: []string{"1", "2 *"}}

	out, err := run(t, t.Context(), e.Run)

	var ee *Error
	if !errors.As(err, &ee) {
		t.Fatalf("Run error = %v (%T)", err, err)
	}

	if out != "1\n" {
		t.Errorf("output before failure = %q", out)
	}

	found := false

	for _, a := range ee.attrs {
		if a.Key == "line" && a.Value.Int64() == 2 {
			found = true
		}
	}

	if !found || !strings.Contains(err.Error(), "evaluate expression") {
		t.Errorf("error %v lacks line attribute: %v", err, ee.attrs)
	}
}
