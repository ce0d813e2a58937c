package lang

import (
	"context"
	"errors"
	"testing"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a + b", "(a + b)"},
		{"a ~= b", "(a != b)"},
		{"a ^ b", "(a ** b)"},
		{"a .. b", "(string(a) + string(b))"},
		{"a % b", "fmod(a, b)"},
		{"not a", "(not a)"},
		{"a and b or c", "((a and b) or c)"},
		{"-1.5", "(-1.5)"},
		{"(x)", "(x)"},
		{"f(1, x.y)", "f(1, x.y)"},
		{`"q"`, `"q"`},
		{"1e20", "1e+20"},
		{"0.5 * 4", "(0.5 * 4)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Translate(mustParse(t, tt.input))
			if err != nil {
				t.Fatalf("Translate error: %v", err)
			}

			if got != tt.want {
				t.Errorf("Translate = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranslate_NonFinite(t *testing.T) {
	_, err := Translate(mustParse(t, "1e999 + 1"))
	if !errors.Is(err, ErrGenerate) {
		t.Errorf("error = %v, want %v", err, ErrGenerate)
	}
}

func TestGenerator_Eval(t *testing.T) {
	env := Builtins()
	env["x"] = 2.0
	env["n"] = 3
	env["name"] = "mfd"
	env["fc"] = map[string]any{
		"GetThrottle": func() float64 { return 0.5 },
		"Altitude":    func() float64 { return 12500 },
	}

	g := NewGenerator(env)

	tests := []struct {
		input string
		want  any
	}{
		{"42", 42.0},
		{"-7", -7.0},
		{`"hi"`, "hi"},
		{`"a\tb"`, "a\tb"},
		{"1 + 2 * 3", 7.0},
		{"7 / 2", 3.5},
		{"2 ^ 10", 1024.0},
		{"2 ^ 3 ^ 2", 512.0},
		{"-7 % 3", 2.0},
		{"7 % -3", -2.0},
		{"5.5 % 2", 1.5},
		{"n * 2", 6.0},
		{"-x", -2.0},
		{`"a" .. 1`, "a1"},
		{`name .. "-" .. n`, "mfd-3"},
		{"x > 1 and x < 3", true},
		{"x < 1 or x == 2", true},
		{"x == 2", true},
		{"x ~= 2", false},
		{"not (x >= 3)", true},
		{`name == "mfd"`, true},
		{"math.floor(3.7)", 3.0},
		{"math.max(1, 5, 3)", 5.0},
		{"math.abs(-4)", 4.0},
		{"fc.GetThrottle() * 100", 50.0},
		{"fc.Altitude() / 1000", 12.5},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := g.Eval(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Eval error: %v", err)
			}

			if got != tt.want {
				t.Errorf("Eval = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestGenerator_Errors(t *testing.T) {
	g := NewGenerator(Env{
		"fail": func() (float64, error) { return 0, errors.New("boom") },
	})

	tests := []struct {
		input string
		want  error
	}{
		{"nope + 1", ErrGenerate},
		{"1 +", ErrSyntax},
		{`"open`, ErrLexical},
		{"fail() + 1", ErrEvaluate},
		{"1 < 2 and 3 or 4", ErrGenerate},
		{"not 1", ErrGenerate},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := g.Eval(context.Background(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGenerator_ProgramCache(t *testing.T) {
	g := NewGenerator(Env{"a": 1.0, "b": 2.0})
	ctx := context.Background()

	for _, source := range []string{"a + b", "(a + b)", "a+b", "((a)+(b))"} {
		if _, err := g.Eval(ctx, source); err != nil {
			t.Fatalf("Eval(%q) error: %v", source, err)
		}
	}

	n := 0

	g.programs.Range(func(_, _ any) bool {
		n++

		return true
	})

	// Groups are transparent, so every spelling shares one canonical name.
	if n != 1 {
		t.Errorf("cached %d programs, want 1", n)
	}
}

func TestGenerator_CopiesEnv(t *testing.T) {
	env := Env{"x": 1.0}
	g := NewGenerator(env)

	env["x"] = 100.0

	got, err := g.Eval(context.Background(), "x + 0")
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}

	if got != 1.0 {
		t.Errorf("Eval = %v, want 1", got)
	}
}

func TestGenerator_GenerateError(t *testing.T) {
	g := NewGenerator(nil)

	res := Failed("(", ErrUnexpectedEnd)

	if _, err := g.Generate(context.Background(), res); !errors.Is(err, ErrUnexpectedEnd) {
		t.Errorf("error = %v, want %v", err, ErrUnexpectedEnd)
	}

	if _, err := g.Generate(context.Background(), Result{Kind: ResultError}); !errors.Is(err, ErrGenerate) {
		t.Errorf("error = %v, want %v", err, ErrGenerate)
	}
}

func TestLuaMod(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{7, 3, 1},
		{-7, 3, 2},
		{7, -3, -2},
		{-7, -3, -1},
		{5.5, 2, 1.5},
	}

	for _, tt := range tests {
		got, err := luaMod(tt.a, tt.b)
		if err != nil {
			t.Fatalf("luaMod(%v, %v) error: %v", tt.a, tt.b, err)
		}

		if got != tt.want {
			t.Errorf("luaMod(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}

	if _, err := luaMod(1); !errors.Is(err, ErrEvaluate) {
		t.Errorf("luaMod(1) error = %v, want %v", err, ErrEvaluate)
	}

	if _, err := luaMod("a", 1); !errors.Is(err, ErrEvaluate) {
		t.Errorf(`luaMod("a", 1) error = %v, want %v`, err, ErrEvaluate)
	}
}

func TestDecodeEscapes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{`a\tb`, "a\tb"},
		{`say \"hi\"`, `say "hi"`},
		{`it\'s`, "it's"},
		{`back\\slash`, `back\slash`},
		{`bad \q escape`, `bad \q escape`},
	}

	for _, tt := range tests {
		if got := decodeEscapes(tt.in); got != tt.want {
			t.Errorf("decodeEscapes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
