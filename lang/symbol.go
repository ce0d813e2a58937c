package lang

import (
	"bytes"
	"cmp"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
	"github.com/zeebo/xxh3"
)

// SymbolTable maps literal punctuation to symbol ids.
//
// A symbol id is the integer value of a punctuation [Kind]. Several literals
// may share an id, e.g. both "~=" and "!=" may map to [KindNotEq].
// The literal mapped to [KindQuote] delimits string literals.
type SymbolTable map[string]int

// DefaultSymbols returns a new table holding the standard spelling of every
// operator and punctuator. Strings may be delimited by either double or
// single quotes.
func DefaultSymbols() SymbolTable {
	t := make(SymbolTable, int(kindCount)+1)

	for k := range Kinds() {
		if k.IsSymbol() && !isKeyword(k) {
			t[k.String()] = int(k)
		}
	}

	t["'"] = int(KindQuote)

	return t
}

func isKeyword(k Kind) bool {
	_, ok := keywords[k.String()]

	return ok
}

// requiredSymbols are the kinds that must have at least one literal.
var requiredSymbols = func() []Kind {
	var req []Kind

	for k := range Kinds() {
		if k.IsSymbol() && !isKeyword(k) {
			req = append(req, k)
		}
	}

	return req
}()

// Validate reports whether the table can drive a [Scanner].
//
// Every operator and punctuator needs at least one literal, literals must not
// begin with a letter, digit, underscore, or space, and the string delimiter
// must be a single character.
func (t SymbolTable) Validate() error {
	seen := make(map[Kind]bool, len(t))

	for _, lit := range slices.Sorted(maps.Keys(t)) {
		id := t[lit]
		kind := Kind(id)

		if !kind.IsSymbol() {
			return ErrSymbolTable.With(
				slog.String("literal", lit),
				slog.Int("id", id),
				slog.String("reason", "unknown id"),
			)
		}

		r, size := utf8.DecodeRuneInString(lit)
		if size == 0 || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) ||
			unicode.IsSpace(r) {
			return ErrSymbolTable.With(
				slog.String("literal", lit),
				slog.String("reason", "literal must begin with punctuation"),
			)
		}

		if kind == KindQuote && size != len(lit) {
			return ErrSymbolTable.With(
				slog.String("literal", lit),
				slog.String("reason", "string delimiter must be one character"),
			)
		}

		seen[kind] = true
	}

	for _, k := range requiredSymbols {
		if !seen[k] {
			return ErrSymbolTable.With(
				slog.String("kind", k.Name()),
				slog.String("reason", "missing literal"),
			)
		}
	}

	return nil
}

// Kind returns the token kind of the literal lit.
func (t SymbolTable) Kind(lit string) (Kind, bool) {
	id, ok := t[lit]
	if !ok || !Kind(id).IsSymbol() {
		return KindEnd, false
	}

	return Kind(id), true
}

// Literals returns the table's literals sorted longest first, so that a
// leftmost-first match prefers "<=" over "<".
func (t SymbolTable) Literals() []string {
	lits := slices.Collect(maps.Keys(t))

	slices.SortFunc(lits, func(a, b string) int {
		return cmp.Or(cmp.Compare(len(b), len(a)), strings.Compare(a, b))
	})

	return lits
}

// Hash returns a stable fingerprint of the table's contents.
func (t SymbolTable) Hash() uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	for _, lit := range slices.Sorted(maps.Keys(t)) {
		_ = enc.Encode(lit)
		_ = enc.Encode(t[lit])
	}

	return xxh3.Hash(buf.Bytes())
}

// LoadSymbols decodes a YAML mapping of literal to symbol id.
// Each id is either an integer or a kind name such as "NotEq".
//
// Entries extend [DefaultSymbols] unless the document sets the top-level key
// "replace" to true, in which case they are used alone:
//
//	replace: false
//	symbols:
//	  "!=": NotEq
//	  "'": Quote
func LoadSymbols(ctx context.Context, r io.Reader) (SymbolTable, error) {
	var doc struct {
		Symbols map[string]any `yaml:"symbols"`
		Replace bool           `yaml:"replace"`
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	if err := yaml.UnmarshalContext(ctx, data, &doc); err != nil {
		return nil, ErrSymbolTable.Wrap(err)
	}

	t := SymbolTable{}
	if !doc.Replace {
		t = DefaultSymbols()
	}

	for lit, val := range doc.Symbols {
		id, err := symbolID(val)
		if err != nil {
			return nil, ErrSymbolTable.Wrap(err).With(slog.String("literal", lit))
		}

		t[lit] = id
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return t, nil
}

func symbolID(val any) (int, error) {
	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		if k, ok := ParseKind(v); ok {
			return int(k), nil
		}

		if n, err := strconv.Atoi(v); err == nil {
			return n, nil
		}
	}

	return 0, NewError("invalid symbol id").With(slog.Any("value", val))
}

// WriteYAML encodes the table in the format read by [LoadSymbols].
func (t SymbolTable) WriteYAML(ctx context.Context, w io.Writer) error {
	syms := yaml.MapSlice{}

	for _, lit := range slices.Sorted(maps.Keys(t)) {
		syms = append(syms, yaml.MapItem{Key: lit, Value: Kind(t[lit]).Name()})
	}

	doc := yaml.MapSlice{
		{Key: "replace", Value: true},
		{Key: "symbols", Value: syms},
	}

	data, err := yaml.MarshalContext(ctx, doc)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}
