package lang

import "log/slog"

// Binding powers of the operators, lowest first.
// An infix operator binds the expression to its left only while its power is
// greater than the power requested by the caller.
const (
	PowerNone     = 0
	PowerOr       = 3
	PowerAnd      = 4
	PowerCompare  = 5
	PowerConcat   = 6
	PowerSum      = 7
	PowerProduct  = 8
	PowerNot      = 9
	PowerExponent = 10
	PowerPrefix   = 11
	PowerCall     = 13
)

// PrefixParselet parses an expression that begins with a token.
// The token has already been consumed when Parse is called.
type PrefixParselet interface {
	Parse(p *Parser, tok Token) (Expr, error)
}

// InfixParselet parses an expression that continues left with a token.
// The token has already been consumed when Parse is called.
type InfixParselet interface {
	Parse(p *Parser, left Expr, tok Token) (Expr, error)
	Power() int
}

// Grammar is an immutable registry of parselets keyed by token kind.
type Grammar struct {
	prefix [kindCount]PrefixParselet
	infix  [kindCount]InfixParselet
}

// DefaultGrammar is the expression grammar used when no other is given.
var DefaultGrammar = NewGrammar()

// NewGrammar returns the expression grammar.
func NewGrammar() *Grammar {
	g := &Grammar{}

	g.prefix[KindNumber] = numberParselet{}
	g.prefix[KindString] = stringParselet{}
	g.prefix[KindName] = nameParselet{}
	g.prefix[KindLParen] = groupParselet{}
	g.prefix[KindPlus] = prefixParselet{power: PowerPrefix}
	g.prefix[KindMinus] = prefixParselet{power: PowerPrefix}
	g.prefix[KindNot] = prefixParselet{power: PowerNot}

	for kind, power := range map[Kind]int{
		KindOr:        PowerOr,
		KindAnd:       PowerAnd,
		KindEq:        PowerCompare,
		KindNotEq:     PowerCompare,
		KindLess:      PowerCompare,
		KindLessEq:    PowerCompare,
		KindGreater:   PowerCompare,
		KindGreaterEq: PowerCompare,
		KindConcat:    PowerConcat,
		KindPlus:      PowerSum,
		KindMinus:     PowerSum,
		KindStar:      PowerProduct,
		KindSlash:     PowerProduct,
		KindPercent:   PowerProduct,
	} {
		g.infix[kind] = binaryParselet{power: power}
	}

	g.infix[KindCaret] = binaryParselet{power: PowerExponent, right: true}
	g.infix[KindDot] = dotParselet{}
	g.infix[KindLParen] = callParselet{}

	return g
}

// Prefix returns the prefix parselet registered for kind.
func (g *Grammar) Prefix(kind Kind) (PrefixParselet, bool) {
	if kind < 0 || kind >= kindCount || g.prefix[kind] == nil {
		return nil, false
	}

	return g.prefix[kind], true
}

// Infix returns the infix parselet registered for kind.
func (g *Grammar) Infix(kind Kind) (InfixParselet, bool) {
	if kind < 0 || kind >= kindCount || g.infix[kind] == nil {
		return nil, false
	}

	return g.infix[kind], true
}

// Power returns the binding power of kind in infix position, or [PowerNone]
// if kind has no infix parselet.
func (g *Grammar) Power(kind Kind) int {
	if p, ok := g.Infix(kind); ok {
		return p.Power()
	}

	return PowerNone
}

type numberParselet struct{}

func (numberParselet) Parse(_ *Parser, tok Token) (Expr, error) {
	return NewNumber(tok.Number), nil
}

type stringParselet struct{}

func (stringParselet) Parse(_ *Parser, tok Token) (Expr, error) {
	return NewString(tok.Text), nil
}

type nameParselet struct{}

func (nameParselet) Parse(_ *Parser, tok Token) (Expr, error) {
	return NewName(tok.Text), nil
}

// groupParselet parses "(" expr ")".
type groupParselet struct{}

func (groupParselet) Parse(p *Parser, _ Token) (Expr, error) {
	inner, err := p.ParseExpression(PowerNone)
	if err != nil {
		return nil, err
	}

	if _, err := p.Expect(KindRParen); err != nil {
		return nil, err
	}

	return NewGroup(inner), nil
}

// prefixParselet parses a unary operator. The operand is parsed at the
// operator's own power, so "not a == b" is "((not a) == b)".
type prefixParselet struct {
	power int
}

func (pp prefixParselet) Parse(p *Parser, tok Token) (Expr, error) {
	operand, err := p.ParseExpression(pp.power)
	if err != nil {
		return nil, err
	}

	return NewPrefix(tok.Kind, operand), nil
}

// binaryParselet parses a binary operator. Right-associative operators parse
// their right operand one power lower so that an equal operator to the right
// binds first: "2 ^ 3 ^ 2" is "(2 ^ (3 ^ 2))".
type binaryParselet struct {
	power int
	right bool
}

func (bp binaryParselet) Power() int { return bp.power }

func (bp binaryParselet) Parse(p *Parser, left Expr, tok Token) (Expr, error) {
	power := bp.power
	if bp.right {
		power--
	}

	right, err := p.ParseExpression(power)
	if err != nil {
		return nil, err
	}

	return NewBinary(left, tok.Kind, right), nil
}

// dotParselet parses member access. The member must be a name.
type dotParselet struct{}

func (dotParselet) Power() int { return PowerCall }

func (dotParselet) Parse(p *Parser, left Expr, tok Token) (Expr, error) {
	next := p.LookAhead(0)
	if next.Kind != KindName {
		if next.Kind == KindEnd {
			return nil, ErrUnexpectedEnd.WithPosition(next.Pos).
				With(slog.String("after", tok.Text))
		}

		return nil, ErrInvalidMember.WithPosition(next.Pos).
			With(slog.String("token", next.String()))
	}

	p.Consume()

	return NewDot(left, NewName(next.Text)), nil
}

// callParselet parses an argument list: "(" [ expr { "," expr } ] ")".
type callParselet struct{}

func (callParselet) Power() int { return PowerCall }

func (callParselet) Parse(p *Parser, callee Expr, _ Token) (Expr, error) {
	var args []Expr

	if p.Match(KindRParen) {
		return NewCall(callee), nil
	}

	for {
		arg, err := p.ParseExpression(PowerNone)
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		if !p.Match(KindComma) {
			break
		}
	}

	if _, err := p.Expect(KindRParen); err != nil {
		return nil, err
	}

	return NewCall(callee, args...), nil
}
