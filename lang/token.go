package lang

import (
	"iter"
	"strconv"
	"strings"
)

// Kind identifies the lexical class of a normalized [Token].
//
// The integer value of a punctuation Kind doubles as its symbol id in a
// [SymbolTable].
type Kind int

const (
	KindEnd       Kind = iota // end of input
	KindNumber                // number
	KindString                // string
	KindName                  // name
	KindPlus                  // +
	KindMinus                 // -
	KindStar                  // *
	KindSlash                 // /
	KindPercent               // %
	KindCaret                 // ^
	KindConcat                // ..
	KindEq                    // ==
	KindNotEq                 // ~=
	KindLess                  // <
	KindLessEq                // <=
	KindGreater               // >
	KindGreaterEq             // >=
	KindAnd                   // and
	KindOr                    // or
	KindNot                   // not
	KindLParen                // (
	KindRParen                // )
	KindComma                 // ,
	KindDot                   // .
	KindQuote                 // "

	kindCount
)

var kindInfo = [kindCount]struct{ name, text string }{
	KindEnd:       {"End", "end of input"},
	KindNumber:    {"Number", "number"},
	KindString:    {"String", "string"},
	KindName:      {"Name", "name"},
	KindPlus:      {"Plus", "+"},
	KindMinus:     {"Minus", "-"},
	KindStar:      {"Star", "*"},
	KindSlash:     {"Slash", "/"},
	KindPercent:   {"Percent", "%"},
	KindCaret:     {"Caret", "^"},
	KindConcat:    {"Concat", ".."},
	KindEq:        {"Eq", "=="},
	KindNotEq:     {"NotEq", "~="},
	KindLess:      {"Less", "<"},
	KindLessEq:    {"LessEq", "<="},
	KindGreater:   {"Greater", ">"},
	KindGreaterEq: {"GreaterEq", ">="},
	KindAnd:       {"And", "and"},
	KindOr:        {"Or", "or"},
	KindNot:       {"Not", "not"},
	KindLParen:    {"LParen", "("},
	KindRParen:    {"RParen", ")"},
	KindComma:     {"Comma", ","},
	KindDot:       {"Dot", "."},
	KindQuote:     {"Quote", `"`},
}

// String returns the canonical spelling of k.
// Operators and punctuation return their source form, and the remaining
// kinds return a short description.
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}

	return kindInfo[k].text
}

// Name returns the identifier-like name of k, e.g. "NotEq".
func (k Kind) Name() string {
	if k < 0 || k >= kindCount {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}

	return kindInfo[k].name
}

// ParseKind returns the Kind with the given name (as returned by [Kind.Name]).
// Matching is case-insensitive.
func ParseKind(name string) (Kind, bool) {
	name = strings.TrimSpace(name)
	for k := range Kinds() {
		if strings.EqualFold(kindInfo[k].name, name) {
			return k, true
		}
	}

	return KindEnd, false
}

// Kinds returns an iterator over all defined token kinds.
func Kinds() iter.Seq[Kind] {
	return func(yield func(Kind) bool) {
		for k := KindEnd; k < kindCount; k++ {
			if !yield(k) {
				return
			}
		}
	}
}

// IsSymbol reports whether k may appear as a symbol id in a [SymbolTable].
func (k Kind) IsSymbol() bool {
	return k >= KindPlus && k < kindCount
}

// keywords maps the word operators to their token kinds.
var keywords = map[string]Kind{
	"and": KindAnd,
	"or":  KindOr,
	"not": KindNot,
}

// Position identifies a location in expression source.
// Line and Column are 1-based, and Offset is a 0-based byte offset.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns the position formatted as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Token is a normalized token consumed by the [Parser].
//
// The Text of a [KindString] token includes its surrounding quotes, and the
// Number of a [KindNumber] token holds its numeric value.
type Token struct {
	Text   string
	Number float64
	Pos    Position
	Kind   Kind
}

// String returns the source text of the token, or the description of its
// kind for tokens without text.
func (t Token) String() string {
	if t.Text == "" {
		return t.Kind.String()
	}

	return t.Text
}
