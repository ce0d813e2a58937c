package lang

import (
	"errors"
	"log/slog"
	"strconv"
)

// Parser is a Pratt parser over a normalized token stream.
//
// Tokens are pulled from the source one at a time into a lookahead buffer
// that only grows when a parselet peeks further ahead. Consumed tokens are
// never returned to the buffer. A Parser is not safe for concurrent use.
type Parser struct {
	grammar  *Grammar
	read     func() Token
	buffer   []Token
	depth    int
	maxDepth int
}

// NewParser returns a Parser over tokens, which should end with a
// [KindEnd] token as returned by [Normalize]. Reading past the end of tokens
// yields [KindEnd] indefinitely.
//
// Only the [WithGrammar] and [WithMaxDepth] options affect a Parser.
func NewParser(tokens []Token, opts ...Option) *Parser {
	cfg := makeOptions(opts...)

	end := Token{Kind: KindEnd}
	if n := len(tokens); n > 0 && tokens[n-1].Kind == KindEnd {
		end = tokens[n-1]
	}

	next := 0

	return &Parser{
		grammar:  cfg.grammar,
		maxDepth: cfg.maxDepth,
		read: func() Token {
			if next >= len(tokens) {
				return end
			}

			tok := tokens[next]
			next++

			return tok
		},
	}
}

// LookAhead returns the token distance positions past the cursor without
// consuming it. LookAhead(0) is the next token.
func (p *Parser) LookAhead(distance int) Token {
	for distance >= len(p.buffer) {
		p.buffer = append(p.buffer, p.read())
	}

	return p.buffer[distance]
}

// Consume removes and returns the next token.
func (p *Parser) Consume() Token {
	tok := p.LookAhead(0)
	p.buffer = p.buffer[1:]

	return tok
}

// Match consumes the next token and returns true if it has the given kind.
// Otherwise the token is left in place.
func (p *Parser) Match(kind Kind) bool {
	if p.LookAhead(0).Kind != kind {
		return false
	}

	p.Consume()

	return true
}

// Expect consumes and returns the next token if it has the given kind.
// Otherwise it returns a syntax error and leaves the token in place.
func (p *Parser) Expect(kind Kind) (Token, error) {
	tok := p.LookAhead(0)
	if tok.Kind == kind {
		return p.Consume(), nil
	}

	want := slog.String("expected", kind.String())

	if tok.Kind == KindEnd {
		return tok, ErrUnexpectedEnd.
			Wrap(errors.New("expected " + strconv.Quote(kind.String()))).
			WithPosition(tok.Pos).
			With(want)
	}

	return tok, ErrUnexpectedToken.
		Wrap(errors.New("expected " + strconv.Quote(kind.String()) +
			", found " + strconv.Quote(tok.String()))).
		WithPosition(tok.Pos).
		With(want, slog.String("token", tok.String()))
}

// ParseExpression parses an expression whose infix operators all bind
// tighter than power.
//
// The next token is parsed by its prefix parselet. Then, while the following
// token has an infix parselet with a binding power greater than power, that
// token is consumed and its parselet extends the expression to the left.
func (p *Parser) ParseExpression(power int) (Expr, error) {
	p.depth++
	defer func() { p.depth-- }()

	tok := p.Consume()

	if p.maxDepth > 0 && p.depth > p.maxDepth {
		return nil, ErrMaxDepthExceeded.
			WithPosition(tok.Pos).
			With(slog.Int("max_depth", p.maxDepth))
	}

	prefix, ok := p.grammar.Prefix(tok.Kind)
	if !ok {
		if tok.Kind == KindEnd {
			return nil, ErrUnexpectedEnd.WithPosition(tok.Pos)
		}

		return nil, ErrNoPrefix.
			Wrap(errors.New("found " + strconv.Quote(tok.String()))).
			WithPosition(tok.Pos).
			With(slog.String("token", tok.String()))
	}

	left, err := prefix.Parse(p, tok)
	if err != nil {
		return nil, err
	}

	for {
		next := p.LookAhead(0)

		infix, ok := p.grammar.Infix(next.Kind)
		if !ok || infix.Power() <= power {
			return left, nil
		}

		p.Consume()

		left, err = infix.Parse(p, left, next)
		if err != nil {
			return nil, err
		}
	}
}

// Parse parses one complete expression. Any token left over before the end
// of input is a syntax error.
func (p *Parser) Parse() (Expr, error) {
	root, err := p.ParseExpression(PowerNone)
	if err != nil {
		return nil, err
	}

	if tok := p.LookAhead(0); tok.Kind != KindEnd {
		return nil, ErrUnexpectedToken.
			Wrap(errors.New("found " + strconv.Quote(tok.String()) +
				" after complete expression")).
			WithPosition(tok.Pos).
			With(slog.String("token", tok.String()))
	}

	return root, nil
}
