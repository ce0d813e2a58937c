package lang

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strconv"

	"github.com/klauspost/readahead"
)

// ResultKind identifies which field of a [Result] holds the compiled value.
type ResultKind int

const (
	ResultError  ResultKind = iota // error
	ResultNumber                   // number
	ResultString                   // string
	ResultTree                     // tree
)

// String returns the lowercase name of k.
func (k ResultKind) String() string {
	switch k {
	case ResultError:
		return "error"
	case ResultNumber:
		return "number"
	case ResultString:
		return "string"
	case ResultTree:
		return "tree"
	default:
		return "ResultKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Result is the outcome of compiling one expression.
//
// Exactly one of Number, String, Tree, or Err is meaningful, as selected by
// Kind. Canonical is the canonical name of the parsed expression, or the
// source text itself when compilation failed. Source is always the original
// source text.
type Result struct {
	Tree      Expr
	Err       error
	String    string
	Canonical string
	Source    string
	Number    float64
	Kind      ResultKind
}

// Classify folds a parsed expression into a [Result].
//
// A bare numeric literal, or a negated one such as "-7", yields
// [ResultNumber]. A bare string literal yields [ResultString] holding the
// literal contents between the delimiters. Every other expression, including
// a parenthesized literal, yields [ResultTree]. The canonical name always
// comes from root.
func Classify(root Expr, source string) Result {
	res := Result{
		Kind:      ResultTree,
		Tree:      root,
		Canonical: root.Canonical(),
		Source:    source,
	}

	switch lit := root.(type) {
	case *Number:
		res.Kind = ResultNumber
		res.Number = lit.Value()
		res.Tree = nil

	case *String:
		res.Kind = ResultString
		res.String = lit.Value()
		res.Tree = nil

	case *Prefix:
		if num, ok := lit.Operand().(*Number); ok && lit.Op() == KindMinus {
			res.Kind = ResultNumber
			res.Number = -num.Value()
			res.Tree = nil
		}
	}

	return res
}

// Failed returns an error [Result] for source.
func Failed(source string, err error) Result {
	return Result{
		Kind:      ResultError,
		Err:       err,
		Canonical: source,
		Source:    source,
	}
}

// Tokenize scans and normalizes source.
func Tokenize(source string, opts ...Option) ([]Token, error) {
	cfg := makeOptions(opts...)

	raw, err := cfg.scanner.Scan(source)
	if err != nil {
		return nil, err
	}

	return Normalize(raw)
}

// Parse scans, normalizes, and parses one complete expression.
func Parse(ctx context.Context, source string, opts ...Option) (Expr, error) {
	cfg := makeOptions(opts...)

	return parse(ctx, cfg, source)
}

func parse(ctx context.Context, cfg options, source string) (Expr, error) {
	raw, err := cfg.scanner.Scan(source)
	if err != nil {
		return nil, err
	}

	cfg.logger.TraceContext(ctx, "scan complete",
		slog.Int("raw_tokens", len(raw)))

	toks, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	cfg.logger.TraceContext(ctx, "normalize complete",
		slog.Int("tokens", len(toks)))

	root, err := NewParser(toks,
		WithGrammar(cfg.grammar),
		WithMaxDepth(cfg.maxDepth),
	).Parse()
	if err != nil {
		return nil, err
	}

	cfg.logger.TraceContext(ctx, "parse complete",
		slog.String("canonical", root.Canonical()),
		slog.String("type", root.Type().String()))

	return root, nil
}

// Compile turns expression source into a [Result].
//
// Compile never returns an error directly and never panics. Every failure is
// reported as a [ResultError] whose Err wraps [ErrLexical] or [ErrSyntax] for
// malformed source, or [ErrInternal] for an unexpected fault. Failures are
// also logged at error level to the logger given by [WithLogger].
func Compile(ctx context.Context, source string, opts ...Option) (res Result) {
	cfg := makeOptions(opts...)

	defer func() {
		if r := recover(); r != nil {
			res = failed(ctx, cfg, source, ErrInternal.
				Wrap(fmt.Errorf("%v", r)).
				With(slog.String("stack", string(debug.Stack()))))
		}
	}()

	root, err := parse(ctx, cfg, source)
	if err != nil {
		return failed(ctx, cfg, source, err)
	}

	res = Classify(root, source)

	cfg.logger.TraceContext(ctx, "compile complete",
		slog.String("kind", res.Kind.String()),
		slog.String("canonical", res.Canonical))

	return res
}

// failed logs err and returns it as an error Result.
func failed(ctx context.Context, cfg options, source string, err error) Result {
	cfg.logger.ErrorContext(ctx, "compile failed",
		slog.String("source", source),
		slog.Any("error", err))

	return Failed(source, err)
}

// CompileReader reads expression source from r and compiles it.
// A read failure is reported as a [ResultError] wrapping [ErrReadInput].
func CompileReader(ctx context.Context, r io.Reader, opts ...Option) Result {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		cfg := makeOptions(opts...)

		return failed(ctx, cfg, "", ErrReadInput.Wrap(err).
			With(slog.String("source", "reader")))
	}

	return Compile(ctx, string(data), opts...)
}
