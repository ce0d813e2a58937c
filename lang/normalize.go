package lang

import (
	"log/slog"
	"strings"
)

// Normalize converts raw tokens into the token stream consumed by the
// [Parser].
//
// Whitespace is dropped, identifiers spelled "and", "or", and "not" become
// operator tokens, and every run of raw tokens between a pair of matching
// string delimiters is merged into one [KindString] token whose Text is the
// exact source text including both delimiters. A delimiter preceded by an odd
// number of backslashes does not close the string, and the backslashes are
// kept verbatim.
//
// The returned stream always ends with exactly one [KindEnd] token.
func Normalize(raw []RawToken) ([]Token, error) {
	var (
		out  = make([]Token, 0, len(raw)+1)
		str  strings.Builder
		open *RawToken // opening delimiter of the current string, if any
	)

	for i := range raw {
		rt := &raw[i]

		if open != nil {
			closing := rt.Kind == RawSymbol && Kind(rt.ID) == KindQuote &&
				rt.Text == open.Text && !escaped(str.String())

			str.WriteString(rt.Text)

			if closing {
				out = append(out, Token{
					Kind: KindString,
					Text: str.String(),
					Pos:  open.Pos,
				})
				open = nil

				str.Reset()
			}

			continue
		}

		switch rt.Kind {
		case RawSpace: // dropped

		case RawNumber:
			out = append(out, Token{
				Kind:   KindNumber,
				Text:   rt.Text,
				Number: rt.Value,
				Pos:    rt.Pos,
			})

		case RawIdent:
			kind, ok := keywords[rt.Text]
			if !ok {
				kind = KindName
			}

			out = append(out, Token{Kind: kind, Text: rt.Text, Pos: rt.Pos})

		case RawSymbol:
			kind := Kind(rt.ID)
			if !kind.IsSymbol() {
				return nil, ErrUnknownSymbol.
					WithPosition(rt.Pos).
					With(slog.String("token", rt.Text), slog.Int("id", rt.ID))
			}

			if kind == KindQuote {
				open = rt

				str.WriteString(rt.Text)

				continue
			}

			out = append(out, Token{Kind: kind, Text: rt.Text, Pos: rt.Pos})

		default:
			return nil, ErrUnexpectedChar.
				WithPosition(rt.Pos).
				With(slog.String("token", rt.Text))
		}
	}

	if open != nil {
		return nil, ErrUnterminatedString.
			WithPosition(open.Pos).
			With(slog.String("token", str.String()))
	}

	return append(out, Token{Kind: KindEnd, Pos: endPosition(raw)}), nil
}

// escaped reports whether s ends with an odd number of backslashes.
func escaped(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}

	return n%2 == 1
}

// endPosition returns the position just past the last raw token.
func endPosition(raw []RawToken) Position {
	if len(raw) == 0 {
		return Position{Line: 1, Column: 1}
	}

	last := raw[len(raw)-1]
	pos := last.Pos
	pos.Offset += len(last.Text)

	if nl := strings.LastIndexByte(last.Text, '\n'); nl >= 0 {
		pos.Line += strings.Count(last.Text, "\n")
		pos.Column = len(last.Text) - nl
	} else {
		pos.Column += len(last.Text)
	}

	return pos
}
