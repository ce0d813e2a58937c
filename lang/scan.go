package lang

import (
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// RawKind identifies the class of a [RawToken].
type RawKind int

const (
	RawSpace  RawKind = iota // whitespace
	RawNumber                // number
	RawIdent                 // identifier
	RawSymbol                // symbol
	RawOther                 // other
)

// String returns the name of the raw token class.
func (k RawKind) String() string {
	switch k {
	case RawSpace:
		return "whitespace"
	case RawNumber:
		return "number"
	case RawIdent:
		return "identifier"
	case RawSymbol:
		return "symbol"
	case RawOther:
		return "other"
	default:
		return "RawKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// RawToken is a token produced by a [Scanner] before normalization.
//
// Symbol tokens carry the id of their literal in the scanner's [SymbolTable].
// Number tokens carry their parsed value. Characters that belong to no other
// class, such as a backslash, are reported as [RawOther] so that they can
// still appear inside string literals.
type RawToken struct {
	Text  string
	Value float64
	Pos   Position
	ID    int
	Kind  RawKind
}

// Scanner splits expression source into raw tokens.
//
// A Scanner is immutable and safe for concurrent use.
type Scanner struct {
	def     *lexer.StatefulDefinition
	kinds   map[lexer.TokenType]RawKind
	symbols SymbolTable
	hash    uint64
}

// Raw token rule names.
const (
	ruleSpace  = "Space"
	ruleNumber = "Number"
	ruleIdent  = "Ident"
	ruleSymbol = "Symbol"
	ruleOther  = "Other"
)

// DefaultScanner scans source using [DefaultSymbols].
var DefaultScanner = MustNewScanner(DefaultSymbols())

// NewScanner returns a Scanner recognizing the literals of symbols.
// The table is copied, so later changes to symbols do not affect the Scanner.
func NewScanner(symbols SymbolTable) (*Scanner, error) {
	if err := symbols.Validate(); err != nil {
		return nil, err
	}

	lits := symbols.Literals()
	quoted := make([]string, len(lits))

	for i, lit := range lits {
		quoted[i] = regexp.QuoteMeta(lit)
	}

	def, err := lexer.NewSimple([]lexer.SimpleRule{
		{Name: ruleSpace, Pattern: `\s+`},
		{Name: ruleNumber, Pattern: `(?:\d+(?:\.\d+)?|\.\d+)(?:[eE][-+]?\d+)?`},
		{Name: ruleIdent, Pattern: `[\p{L}_][\p{L}\p{Nd}_]*`},
		{Name: ruleSymbol, Pattern: strings.Join(quoted, "|")},
		{Name: ruleOther, Pattern: `.`},
	})
	if err != nil {
		return nil, ErrSymbolTable.Wrap(err)
	}

	names := def.Symbols()
	kinds := map[lexer.TokenType]RawKind{
		names[ruleSpace]:  RawSpace,
		names[ruleNumber]: RawNumber,
		names[ruleIdent]:  RawIdent,
		names[ruleSymbol]: RawSymbol,
		names[ruleOther]:  RawOther,
	}

	table := make(SymbolTable, len(symbols))
	for lit, id := range symbols {
		table[lit] = id
	}

	return &Scanner{
		def:     def,
		kinds:   kinds,
		symbols: table,
		hash:    table.Hash(),
	}, nil
}

// MustNewScanner is like [NewScanner] but panics on error.
func MustNewScanner(symbols SymbolTable) *Scanner {
	s, err := NewScanner(symbols)
	if err != nil {
		panic(err)
	}

	return s
}

// Symbols returns a copy of the scanner's symbol table.
func (s *Scanner) Symbols() SymbolTable {
	t := make(SymbolTable, len(s.symbols))
	for lit, id := range s.symbols {
		t[lit] = id
	}

	return t
}

// Scan splits source into raw tokens. The returned slice does not include an
// end-of-input marker.
func (s *Scanner) Scan(source string) ([]RawToken, error) {
	lex, err := s.def.LexString("", source)
	if err != nil {
		return nil, ErrLexical.Wrap(err)
	}

	toks, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, ErrUnexpectedChar.Wrap(err)
	}

	raw := make([]RawToken, 0, len(toks))

	for _, tok := range toks {
		if tok.EOF() {
			break
		}

		rt := RawToken{
			Text: tok.Value,
			Kind: s.kinds[tok.Type],
			Pos: Position{
				Offset: tok.Pos.Offset,
				Line:   tok.Pos.Line,
				Column: tok.Pos.Column,
			},
		}

		switch rt.Kind {
		case RawNumber:
			// Out-of-range literals keep the ±Inf or zero that ParseFloat
			// returns alongside ErrRange.
			rt.Value, err = strconv.ParseFloat(tok.Value, 64)
			if err != nil && !errors.Is(err, strconv.ErrRange) {
				return nil, ErrInvalidNumber.Wrap(err).
					WithPosition(rt.Pos).
					With(slog.String("token", tok.Value))
			}

		case RawSymbol:
			rt.ID = s.symbols[tok.Value]
		}

		raw = append(raw, rt)
	}

	return raw, nil
}
