package lang

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"math"
	"strings"
	"testing"
)

func TestSymbolTable_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(SymbolTable)
		ok     bool
	}{
		{"default", func(SymbolTable) {}, true},
		{"alias", func(s SymbolTable) { s["!="] = int(KindNotEq) }, true},
		{"quote alias", func(s SymbolTable) { s["'"] = int(KindQuote) }, true},
		{"missing literal", func(s SymbolTable) { delete(s, "+") }, false},
		{"letter literal", func(s SymbolTable) { s["x+"] = int(KindPlus) }, false},
		{"digit literal", func(s SymbolTable) { s["1"] = int(KindPlus) }, false},
		{"underscore literal", func(s SymbolTable) { s["_"] = int(KindPlus) }, false},
		{"space literal", func(s SymbolTable) { s[" +"] = int(KindPlus) }, false},
		{"empty literal", func(s SymbolTable) { s[""] = int(KindPlus) }, false},
		{"long quote", func(s SymbolTable) { s[`""`] = int(KindQuote) }, false},
		{"unknown id", func(s SymbolTable) { s["@"] = 999 }, false},
		{"non-symbol id", func(s SymbolTable) { s["@"] = int(KindName) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := DefaultSymbols()
			tt.modify(table)

			err := table.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate error: %v", err)
			}

			if !tt.ok && !errors.Is(err, ErrSymbolTable) {
				t.Errorf("Validate error = %v, want %v", err, ErrSymbolTable)
			}
		})
	}
}

func TestSymbolTable_Kind(t *testing.T) {
	table := DefaultSymbols()

	if k, ok := table.Kind("<="); !ok || k != KindLessEq {
		t.Errorf(`Kind("<=") = %v, %v`, k, ok)
	}

	if _, ok := table.Kind("and"); ok {
		t.Error(`Kind("and") found, want keyword absent`)
	}

	if _, ok := table.Kind("@"); ok {
		t.Error(`Kind("@") found`)
	}
}

func TestSymbolTable_Literals(t *testing.T) {
	lits := DefaultSymbols().Literals()

	for i := 1; i < len(lits); i++ {
		if len(lits[i]) > len(lits[i-1]) {
			t.Fatalf("Literals not longest first: %q before %q", lits[i-1], lits[i])
		}
	}

	if len(lits) != len(DefaultSymbols()) {
		t.Errorf("len(Literals) = %d, want %d", len(lits), len(DefaultSymbols()))
	}
}

func TestSymbolTable_Hash(t *testing.T) {
	a, b := DefaultSymbols(), DefaultSymbols()
	if a.Hash() != b.Hash() {
		t.Error("equal tables hash differently")
	}

	b["!="] = int(KindNotEq)
	if a.Hash() == b.Hash() {
		t.Error("different tables hash equally")
	}
}

func TestLoadSymbols(t *testing.T) {
	doc := `
symbols:
  "!=": NotEq
  "&&": and
  "||": 18
  "'": Quote
`

	table, err := LoadSymbols(context.Background(), strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadSymbols error: %v", err)
	}

	want := map[string]Kind{
		"!=": KindNotEq,
		"&&": KindAnd,
		"||": KindOr,
		"'":  KindQuote,
		"~=": KindNotEq,
		"+":  KindPlus,
	}

	for lit, kind := range want {
		if got, ok := table.Kind(lit); !ok || got != kind {
			t.Errorf("Kind(%q) = %v, %v; want %v", lit, got, ok, kind)
		}
	}
}

func TestLoadSymbols_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "symbols: [unclosed"},
		{"bad id", "symbols:\n  \"!=\": Bogus\n"},
		{"invalid literal", "symbols:\n  \"a\": Plus\n"},
		{"replace incomplete", "replace: true\nsymbols:\n  \"+\": Plus\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSymbols(context.Background(), strings.NewReader(tt.doc))
			if !errors.Is(err, ErrSymbolTable) {
				t.Errorf("error = %v, want %v", err, ErrSymbolTable)
			}
		})
	}
}

func TestSymbolTable_WriteYAML(t *testing.T) {
	table := DefaultSymbols()
	table["!="] = int(KindNotEq)

	var buf bytes.Buffer
	if err := table.WriteYAML(context.Background(), &buf); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}

	if !strings.Contains(buf.String(), "replace: true") {
		t.Errorf("YAML missing replace flag:\n%s", buf.String())
	}

	loaded, err := LoadSymbols(context.Background(), &buf)
	if err != nil {
		t.Fatalf("LoadSymbols error: %v", err)
	}

	if !maps.Equal(loaded, table) {
		t.Errorf("round trip = %v, want %v", loaded, table)
	}
}

func TestScanner_Scan(t *testing.T) {
	raw, err := DefaultScanner.Scan("ab<=1.5 $")
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	want := []struct {
		text string
		kind RawKind
		id   int
	}{
		{"ab", RawIdent, 0},
		{"<=", RawSymbol, int(KindLessEq)},
		{"1.5", RawNumber, 0},
		{" ", RawSpace, 0},
		{"$", RawOther, 0},
	}

	if len(raw) != len(want) {
		t.Fatalf("Scan = %v, want %d tokens", raw, len(want))
	}

	for i, w := range want {
		if raw[i].Text != w.text || raw[i].Kind != w.kind || raw[i].ID != w.id {
			t.Errorf("token %d = %q %v %d, want %q %v %d",
				i, raw[i].Text, raw[i].Kind, raw[i].ID, w.text, w.kind, w.id)
		}
	}

	if raw[2].Value != 1.5 {
		t.Errorf("number value = %v, want 1.5", raw[2].Value)
	}

	if p := raw[4].Pos; p.Offset != 8 || p.Line != 1 || p.Column != 9 {
		t.Errorf("position = %+v, want offset 8 at 1:9", p)
	}
}

func TestScanner_Unicode(t *testing.T) {
	raw, err := DefaultScanner.Scan("größe_2 + 1")
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if raw[0].Kind != RawIdent || raw[0].Text != "größe_2" {
		t.Errorf("first token = %q %v, want identifier", raw[0].Text, raw[0].Kind)
	}
}

func TestScanner_OutOfRange(t *testing.T) {
	raw, err := DefaultScanner.Scan("1e999")
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if !math.IsInf(raw[0].Value, 1) {
		t.Errorf("value = %v, want +Inf", raw[0].Value)
	}
}

func TestNewScanner(t *testing.T) {
	table := DefaultSymbols()
	delete(table, "(")

	if _, err := NewScanner(table); !errors.Is(err, ErrSymbolTable) {
		t.Errorf("NewScanner error = %v, want %v", err, ErrSymbolTable)
	}

	table = DefaultSymbols()

	s, err := NewScanner(table)
	if err != nil {
		t.Fatalf("NewScanner error: %v", err)
	}

	table["@"] = int(KindPlus)

	if _, ok := s.Symbols()["@"]; ok {
		t.Error("scanner shares the caller's table")
	}

	got := s.Symbols()
	got["#"] = int(KindPlus)

	if _, ok := s.Symbols()["#"]; ok {
		t.Error("Symbols returns the scanner's own table")
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		str    string
		name   string
		kind   Kind
		symbol bool
	}{
		{"end of input", "End", KindEnd, false},
		{"name", "Name", KindName, false},
		{"~=", "NotEq", KindNotEq, true},
		{"and", "And", KindAnd, true},
		{`"`, "Quote", KindQuote, true},
		{"Kind(99)", "Kind(99)", Kind(99), false},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}

		if got := tt.kind.Name(); got != tt.name {
			t.Errorf("Name() = %q, want %q", got, tt.name)
		}

		if got := tt.kind.IsSymbol(); got != tt.symbol {
			t.Errorf("%v.IsSymbol() = %v, want %v", tt.kind, got, tt.symbol)
		}
	}
}

func TestParseKind(t *testing.T) {
	for k := range Kinds() {
		got, ok := ParseKind(strings.ToLower(k.Name()))
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.Name(), got, ok)
		}
	}

	if _, ok := ParseKind("bogus"); ok {
		t.Error(`ParseKind("bogus") succeeded`)
	}
}

func TestToken_String(t *testing.T) {
	if got := (Token{Kind: KindEnd}).String(); got != "end of input" {
		t.Errorf("End token = %q", got)
	}

	if got := (Token{Kind: KindName, Text: "fc"}).String(); got != "fc" {
		t.Errorf("Name token = %q", got)
	}

	if got := (Position{Line: 3, Column: 7}).String(); got != "3:7" {
		t.Errorf("Position = %q", got)
	}
}
