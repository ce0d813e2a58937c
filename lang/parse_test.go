package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func mustParse(t *testing.T, source string) Expr {
	t.Helper()

	root, err := Parse(context.Background(), source)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", source, err)
	}

	return root
}

func TestParse_Canonical(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		// Precedence
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 * 2 + 3", "((1 * 2) + 3)"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"a .. b + c", "(a .. (b + c))"},
		{"a + b .. c", "((a + b) .. c)"},
		{"a == b .. c", "(a == (b .. c))"},
		{"a < b and c > d", "((a < b) and (c > d))"},
		{"a and b or c", "((a and b) or c)"},
		{"a or b and c", "(a or (b and c))"},
		{"2 * 3 ^ 2", "(2 * (3 ^ 2))"},
		{"a % b / c", "((a % b) / c)"},

		// Associativity
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"8 / 4 / 2", "((8 / 4) / 2)"},
		{"a .. b .. c", "((a .. b) .. c)"},
		{"2 ^ 3 ^ 2", "(2 ^ (3 ^ 2))"},
		{"a ^ b ^ c ^ d", "(a ^ (b ^ (c ^ d)))"},

		// Prefix operators
		{"-x", "(-x)"},
		{"+x", "(+x)"},
		{"- -x", "(-(-x))"},
		{"-x ^ 2", "((-x) ^ 2)"},
		{"-x * y", "((-x) * y)"},
		{"not a", "(not a)"},
		{"not a == b", "((not a) == b)"},
		{"not not a", "(not (not a))"},
		{"not a and b", "((not a) and b)"},
		{"a - -b", "(a - (-b))"},

		// Calls and members
		{"foo()", "foo()"},
		{"foo(1, 2)", "foo(1, 2)"},
		{"foo(a + b, c * d)", "foo((a + b), (c * d))"},
		{"t.method(1)", "t.method(1)"},
		{"a.b.c", "a.b.c"},
		{"f(a)(b)", "f(a)(b)"},
		{"f().x", "f().x"},
		{"fc.GetThrottle() * 100", "(fc.GetThrottle() * 100)"},
		{"-fc.Pitch()", "(-fc.Pitch())"},
		{"(a + b).c", "(a + b).c"},
		{"g(f(x), y.z)", "g(f(x), y.z)"},

		// Groups are transparent
		{"(x)", "x"},
		{"((1))", "1"},
		{"((a + b))", "(a + b)"},

		// Literals
		{"3.50", "3.5"},
		{"1e3", "1000"},
		{".25", "0.25"},
		{`"a" .. "b"`, `("a" .. "b")`},
		{`x ~= "y"`, `(x ~= "y")`},

		// Whitespace is insignificant
		{"  1+2  ", "(1 + 2)"},
		{"a\n+\nb", "(a + b)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			root := mustParse(t, tt.input)
			if got := root.Canonical(); got != tt.want {
				t.Errorf("canonical = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_CanonicalIsDeterministic(t *testing.T) {
	inputs := []string{
		"fc.GetThrottle() * 100 .. \"%\"",
		"not (a or b) and c ~= d",
		"f(1, -2, 3 ^ 4 ^ 5)",
	}

	for _, input := range inputs {
		first := mustParse(t, input).Canonical()

		for range 3 {
			if again := mustParse(t, input).Canonical(); again != first {
				t.Errorf("canonical of %q changed: %q then %q", input, first, again)
			}
		}

		// The canonical name parses to itself.
		if again := mustParse(t, first).Canonical(); again != first {
			t.Errorf("canonical %q reparsed as %q", first, again)
		}
	}
}

func TestParse_Call(t *testing.T) {
	root := mustParse(t, "foo(1, 2)")

	call, ok := root.(*Call)
	if !ok {
		t.Fatalf("root is %T, want *Call", root)
	}

	if got := call.Callee().Canonical(); got != "foo" {
		t.Errorf("callee = %q, want foo", got)
	}

	if call.NumArgs() != 2 {
		t.Fatalf("NumArgs = %d, want 2", call.NumArgs())
	}

	for i, want := range []float64{1, 2} {
		num, ok := call.Arg(i).(*Number)
		if !ok || num.Value() != want {
			t.Errorf("arg %d = %v, want number %v", i, call.Arg(i), want)
		}
	}

	empty, ok := mustParse(t, "foo()").(*Call)
	if !ok || empty.NumArgs() != 0 {
		t.Errorf("foo() = %v, want call with no arguments", empty)
	}
}

func TestParse_MemberCall(t *testing.T) {
	root := mustParse(t, "t.method(1)")

	call, ok := root.(*Call)
	if !ok {
		t.Fatalf("root is %T, want *Call", root)
	}

	dot, ok := call.Callee().(*Dot)
	if !ok {
		t.Fatalf("callee is %T, want *Dot", call.Callee())
	}

	if dot.Left().Canonical() != "t" || dot.Right().Ident() != "method" {
		t.Errorf("dot = %s . %s, want t . method", dot.Left(), dot.Right())
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
		col   int
	}{
		{"empty", "", ErrUnexpectedEnd, 1},
		{"dangling operator", "1 +", ErrUnexpectedEnd, 4},
		{"missing close paren", "(1", ErrUnexpectedEnd, 3},
		{"missing call close", "f(1, 2", ErrUnexpectedEnd, 7},
		{"no prefix", "1 + )", ErrNoPrefix, 5},
		{"infix in prefix position", "* 2", ErrNoPrefix, 1},
		{"trailing comma", "f(1,)", ErrNoPrefix, 5},
		{"leading comma", "f(,1)", ErrNoPrefix, 3},
		{"two operands", "1 2", ErrUnexpectedToken, 3},
		{"stray close paren", "(1))", ErrUnexpectedToken, 4},
		{"missing comma", "f(1 2)", ErrUnexpectedToken, 5},
		{"member not a name", "a.(b)", ErrInvalidMember, 3},
		{"member at end", "a.", ErrUnexpectedEnd, 3},
		{"empty group", "()", ErrNoPrefix, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}

			if !errors.Is(err, ErrSyntax) {
				t.Errorf("error %v is not a syntax error", err)
			}

			pos, ok := ErrorPosition(err)
			if !ok {
				t.Fatalf("error %v has no position", err)
			}

			if pos.Column != tt.col {
				t.Errorf("column = %d, want %d", pos.Column, tt.col)
			}
		})
	}
}

func TestParse_ErrorNamesToken(t *testing.T) {
	_, err := Parse(context.Background(), "1 + )")
	if err == nil {
		t.Fatal("expected error")
	}

	if !strings.Contains(err.Error(), `")"`) {
		t.Errorf("error %q does not name the offending token", err)
	}
}

func TestParse_MaxDepth(t *testing.T) {
	deep := strings.Repeat("(", 50) + "1" + strings.Repeat(")", 50)

	if _, err := Parse(context.Background(), deep, WithMaxDepth(10)); !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("depth 10: error = %v, want %v", err, ErrMaxDepthExceeded)
	}

	if _, err := Parse(context.Background(), deep, WithMaxDepth(0)); err != nil {
		t.Errorf("unlimited depth: unexpected error %v", err)
	}

	if _, err := Parse(context.Background(), deep); err != nil {
		t.Errorf("default depth: unexpected error %v", err)
	}
}

func TestParser_LookAhead(t *testing.T) {
	toks := tokenize(t, "a + b")
	p := NewParser(toks)

	if got := p.LookAhead(2).Text; got != "b" {
		t.Errorf("LookAhead(2) = %q, want b", got)
	}

	if got := p.LookAhead(0).Text; got != "a" {
		t.Errorf("LookAhead(0) = %q, want a", got)
	}

	for _, want := range []Kind{KindName, KindPlus, KindName, KindEnd, KindEnd} {
		if got := p.Consume().Kind; got != want {
			t.Errorf("Consume() = %v, want %v", got, want)
		}
	}
}

func TestParser_MatchExpect(t *testing.T) {
	p := NewParser(tokenize(t, "( x"))

	if p.Match(KindRParen) {
		t.Error("Match(RParen) consumed '('")
	}

	if !p.Match(KindLParen) {
		t.Error("Match(LParen) = false")
	}

	if _, err := p.Expect(KindRParen); !errors.Is(err, ErrUnexpectedToken) {
		t.Errorf("Expect(RParen) error = %v, want %v", err, ErrUnexpectedToken)
	}

	tok, err := p.Expect(KindName)
	if err != nil || tok.Text != "x" {
		t.Errorf("Expect(Name) = %v, %v; want x", tok, err)
	}
}

func TestGrammar_Powers(t *testing.T) {
	g := DefaultGrammar

	tests := []struct {
		kind Kind
		want int
	}{
		{KindOr, 3},
		{KindAnd, 4},
		{KindEq, 5},
		{KindNotEq, 5},
		{KindLess, 5},
		{KindGreaterEq, 5},
		{KindConcat, 6},
		{KindPlus, 7},
		{KindMinus, 7},
		{KindStar, 8},
		{KindSlash, 8},
		{KindPercent, 8},
		{KindCaret, 10},
		{KindDot, 13},
		{KindLParen, 13},
		{KindName, PowerNone},
		{KindRParen, PowerNone},
		{KindEnd, PowerNone},
	}

	for _, tt := range tests {
		if got := g.Power(tt.kind); got != tt.want {
			t.Errorf("Power(%v) = %d, want %d", tt.kind, got, tt.want)
		}
	}

	for _, k := range []Kind{KindNumber, KindString, KindName, KindLParen, KindPlus, KindMinus, KindNot} {
		if _, ok := g.Prefix(k); !ok {
			t.Errorf("no prefix parselet for %v", k)
		}
	}

	for _, k := range []Kind{KindStar, KindDot, KindComma, KindRParen, KindEnd, Kind(-1), kindCount} {
		if _, ok := g.Prefix(k); ok {
			t.Errorf("unexpected prefix parselet for %v", k)
		}
	}
}
