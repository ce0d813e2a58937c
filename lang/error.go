package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Error classes. Every error returned by this package wraps exactly one of
// these, so callers can classify failures with [errors.Is].
var (
	ErrLexical  = NewError("lexical error")
	ErrSyntax   = NewError("syntax error")
	ErrInternal = NewError("internal error")
)

// Refined errors (sentinel values).
var (
	ErrUnterminatedString = NewError("unterminated string").Wrap(ErrLexical)
	ErrUnknownSymbol      = NewError("unknown symbol").Wrap(ErrLexical)
	ErrUnexpectedChar     = NewError("unexpected character").Wrap(ErrLexical)
	ErrInvalidNumber      = NewError("invalid number").Wrap(ErrLexical)
	ErrNoPrefix           = NewError("expected expression").Wrap(ErrSyntax)
	ErrUnexpectedToken    = NewError("unexpected token").Wrap(ErrSyntax)
	ErrUnexpectedEnd      = NewError("unexpected end of input").Wrap(ErrSyntax)
	ErrInvalidMember      = NewError("member name must be an identifier").Wrap(ErrSyntax)
	ErrMaxDepthExceeded   = NewError("maximum nesting depth exceeded").Wrap(ErrSyntax)
	ErrSymbolTable        = NewError("invalid symbol table")
	ErrReadInput          = NewError("failed to read input")
	ErrGenerate           = NewError("code generation failed")
	ErrEvaluate           = NewError("evaluation failed")
	ErrBinding            = NewError("invalid binding")
)

// Error represents an error with optional structured logging attributes and
// source position.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	pos   *Position   // Location in source, if known
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error implements the error interface.
//
// The message is "<msg>: <err>" when both are set. Class errors wrapped by a
// refined sentinel are not repeated, so ErrNoPrefix reads "expected
// expression" rather than "expected expression: syntax error".
func (e *Error) Error() string {
	part := make([]string, 0, 3)

	if e.pos != nil {
		part = append(part, e.pos.String())
	}

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil && !isClass(e.err) {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the same sentinel as e.
// Errors derived from a sentinel with [Error.With], [Error.WithPosition], or
// [Error.Wrap] compare equal to it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.msg == "" {
		return false
	}

	return e.msg == t.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.pos != nil {
		attrs = append(attrs,
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column),
		)
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
//
// Wrapping a refined sentinel keeps its class reachable: the result of
// ErrNoPrefix.Wrap(err) still satisfies errors.Is(_, ErrSyntax).
func (e *Error) Wrap(err error) *Error {
	if e.err != nil && isClass(e.err) && err != nil {
		err = classError{class: e.err, err: err}
	}

	return &Error{
		msg:   e.msg,
		err:   err,
		pos:   e.pos,
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		pos:   e.pos,
		attrs: newAttrs,
	}
}

// WithPosition returns a copy of the error located at pos.
func (e *Error) WithPosition(pos Position) *Error {
	return &Error{
		msg:   e.msg,
		err:   e.err,
		pos:   &pos,
		attrs: e.attrs,
	}
}

// Position returns the source position of the error, if known.
func (e *Error) Position() (Position, bool) {
	if e.pos == nil {
		return Position{}, false
	}

	return *e.pos, true
}

// Attrs returns the structured attributes attached to the error.
func (e *Error) Attrs() []slog.Attr { return e.attrs }

// classError joins a class sentinel with a more specific cause.
type classError struct {
	class error
	err   error
}

func (c classError) Error() string   { return c.err.Error() }
func (c classError) Unwrap() []error { return []error{c.class, c.err} }

// isClass reports whether err is exactly one of the error classes.
func isClass(err error) bool {
	return err == ErrLexical || err == ErrSyntax || err == ErrInternal //nolint:errorlint
}

// ErrorPosition returns the source position carried by err, if any.
func ErrorPosition(err error) (Position, bool) {
	var e *Error
	for err != nil {
		if errors.As(err, &e) {
			if pos, ok := e.Position(); ok {
				return pos, true
			}

			err = e.Unwrap()

			continue
		}

		break
	}

	return Position{}, false
}

// Snippet formats the source line containing pos with a caret marking the
// column, e.g.
//
//	  1 | a + * b
//	          ^
//
// It returns an empty string if pos is outside source.
func Snippet(source string, pos Position) string {
	lines := strings.Split(source, "\n")
	if pos.Line < 1 || pos.Line > len(lines) {
		return ""
	}

	var src strings.Builder

	num := strconv.Itoa(pos.Line)

	src.WriteString("  ")
	src.WriteString(num)
	src.WriteString(" | ")
	src.WriteString(lines[pos.Line-1])
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(num)+5)
	if pos.Column > 0 {
		padding += strings.Repeat(" ", pos.Column-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}
