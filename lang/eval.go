package lang

import (
	"context"
	"log/slog"
	"maps"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/MOARdV/AvionicsSystems-sub005/log"
)

// Env holds the variables and functions visible to generated evaluators.
// Nested maps and struct values are reached with member access, e.g.
// fc.GetThrottle() calls the GetThrottle method of the value bound to fc.
type Env map[string]any

// Evaluator computes the current value of a compiled expression.
// Numeric results are always float64.
type Evaluator func() (any, error)

// modFunc is the name of the built-in implementing the % operator.
const modFunc = "fmod"

// Generator turns compile results into evaluators backed by expr-lang
// programs. Programs are cached by the canonical name of the expression tree,
// so equivalent expressions share one program. Logical operators accept
// only boolean operands; see [Translate].
//
// A Generator is safe for concurrent use.
type Generator struct {
	env      map[string]any
	logger   log.Logger
	programs sync.Map // canonical name -> *vm.Program
}

// NewGenerator returns a Generator evaluating expressions against env.
// The env map is copied. Only the [WithLogger] option affects a Generator.
func NewGenerator(env Env, opts ...Option) *Generator {
	cfg := makeOptions(opts...)

	return &Generator{
		env:    maps.Clone(map[string]any(env)),
		logger: cfg.logger,
	}
}

// Generate returns an evaluator for res.
//
// Constant results evaluate to their value without running a program. An
// error result returns its Err.
func (g *Generator) Generate(ctx context.Context, res Result) (Evaluator, error) {
	switch res.Kind {
	case ResultNumber:
		num := res.Number

		return func() (any, error) { return num, nil }, nil

	case ResultString:
		str := decodeEscapes(res.String)

		return func() (any, error) { return str, nil }, nil

	case ResultTree:
		program, err := g.program(ctx, res.Tree)
		if err != nil {
			return nil, err
		}

		canonical := res.Canonical

		return func() (any, error) {
			out, err := expr.Run(program, g.env)
			if err != nil {
				return nil, ErrEvaluate.Wrap(err).
					With(slog.String("canonical", canonical))
			}

			return normalizeNumber(out), nil
		}, nil

	default:
		if res.Err != nil {
			return nil, res.Err
		}

		return nil, ErrGenerate.With(slog.String("kind", res.Kind.String()))
	}
}

// Eval compiles source and evaluates it once.
func (g *Generator) Eval(
	ctx context.Context,
	source string,
	opts ...Option,
) (any, error) {
	eval, err := g.Generate(ctx, CompileCached(ctx, source, opts...))
	if err != nil {
		return nil, err
	}

	return eval()
}

// program returns the cached program for tree, compiling it on first use.
func (g *Generator) program(ctx context.Context, tree Expr) (*vm.Program, error) {
	key := tree.Canonical()

	if cached, ok := g.programs.Load(key); ok {
		if program, ok := cached.(*vm.Program); ok {
			g.logger.TraceContext(ctx, "program cache hit",
				slog.String("canonical", key))

			return program, nil
		}
	}

	source, err := Translate(tree)
	if err != nil {
		return nil, err
	}

	program, err := expr.Compile(source,
		expr.Env(g.env),
		expr.Function(modFunc, luaMod),
		expr.Patch(&numberPatcher{logger: g.logger}),
	)
	if err != nil {
		return nil, ErrGenerate.Wrap(err).
			With(slog.String("canonical", key), slog.String("source", source))
	}

	g.logger.TraceContext(ctx, "program compiled",
		slog.String("canonical", key),
		slog.String("source", source))

	actual, _ := g.programs.LoadOrStore(key, program)
	if cached, ok := actual.(*vm.Program); ok {
		return cached, nil
	}

	return program, nil
}

// Translate renders tree as an expr-lang expression.
//
// Operators without a direct expr-lang spelling are rewritten: "~=" becomes
// "!=", "^" becomes "**", ".." converts both operands with string() and
// adds them, and "%" calls the built-in fmod, which follows the sign of the
// divisor.
//
// The logical operators "and", "or", and "not" keep their expr-lang meaning:
// operands must be booleans and the result is a boolean. The Lua idiom
// "c and x or y", which yields one of its operands, is rejected when the
// program is compiled.
func Translate(tree Expr) (string, error) {
	var b strings.Builder

	if err := translate(&b, tree); err != nil {
		return "", err
	}

	return b.String(), nil
}

func translate(b *strings.Builder, e Expr) error {
	switch n := e.(type) {
	case *Number:
		lit, err := numberLiteral(n.Value())
		if err != nil {
			return err
		}

		b.WriteString(lit)

	case *String:
		b.WriteString(strconv.Quote(decodeEscapes(n.Value())))

	case *Name:
		b.WriteString(n.Ident())

	case *Group:
		b.WriteByte('(')

		if err := translate(b, n.Inner()); err != nil {
			return err
		}

		b.WriteByte(')')

	case *Prefix:
		b.WriteByte('(')

		switch n.Op() {
		case KindNot:
			b.WriteString("not ")
		default:
			b.WriteString(n.Op().String())
		}

		if err := translate(b, n.Operand()); err != nil {
			return err
		}

		b.WriteByte(')')

	case *Binary:
		return translateBinary(b, n)

	case *Dot:
		if err := translate(b, n.Left()); err != nil {
			return err
		}

		b.WriteByte('.')
		b.WriteString(n.Right().Ident())

	case *Call:
		if err := translate(b, n.Callee()); err != nil {
			return err
		}

		b.WriteByte('(')

		for i, arg := range n.Args() {
			if i > 0 {
				b.WriteString(", ")
			}

			if err := translate(b, arg); err != nil {
				return err
			}
		}

		b.WriteByte(')')

	default:
		return ErrGenerate.With(slog.Any("node", e))
	}

	return nil
}

func translateBinary(b *strings.Builder, n *Binary) error {
	var pre, mid, post string

	switch n.Op() {
	case KindConcat:
		pre, mid, post = "(string(", ") + string(", "))"
	case KindPercent:
		pre, mid, post = modFunc+"(", ", ", ")"
	case KindCaret:
		pre, mid, post = "(", " ** ", ")"
	case KindNotEq:
		pre, mid, post = "(", " != ", ")"
	default:
		pre, mid, post = "(", " "+n.Op().String()+" ", ")"
	}

	b.WriteString(pre)

	if err := translate(b, n.Left()); err != nil {
		return err
	}

	b.WriteString(mid)

	if err := translate(b, n.Right()); err != nil {
		return err
	}

	b.WriteString(post)

	return nil
}

// maxExactInt is the largest integer below which every float64 integer value
// is exactly representable.
const maxExactInt = 1 << 53

// numberLiteral spells v as an expr-lang number. Integral values are written
// without a fraction, and [numberPatcher] turns them back into floats when
// the program is compiled.
func numberLiteral(v float64) (string, error) {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "", ErrGenerate.With(slog.Float64("number", v))
	}

	var lit string

	if v == math.Trunc(v) && math.Abs(v) < maxExactInt {
		lit = strconv.FormatInt(int64(v), 10)
	} else {
		lit = strconv.FormatFloat(v, 'g', -1, 64)
		if !strings.ContainsAny(lit, ".e") {
			lit += ".0"
		}
	}

	if v < 0 {
		return "(" + lit + ")", nil
	}

	return lit, nil
}

// decodeEscapes interprets backslash escapes in a string literal body.
// The body is returned unchanged if it is not a valid escaped string.
func decodeEscapes(body string) string {
	if !strings.ContainsRune(body, '\\') {
		return body
	}

	quoted := strings.ReplaceAll(body, `\'`, `'`)
	quoted = strings.ReplaceAll(quoted, `"`, `\"`)
	quoted = strings.ReplaceAll(quoted, `\\"`, `\"`)

	if s, err := strconv.Unquote(`"` + quoted + `"`); err == nil {
		return s
	}

	return body
}

// luaMod returns a - floor(a/b)*b for two numeric arguments.
func luaMod(params ...any) (any, error) {
	if len(params) != 2 {
		return nil, ErrEvaluate.With(
			slog.String("function", modFunc),
			slog.Int("args", len(params)),
		)
	}

	a, aok := toFloat(params[0])
	b, bok := toFloat(params[1])

	if !aok || !bok {
		return nil, ErrEvaluate.With(
			slog.String("function", modFunc),
			slog.Any("left", params[0]),
			slog.Any("right", params[1]),
		)
	}

	return a - math.Floor(a/b)*b, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// normalizeNumber converts any numeric value to float64.
func normalizeNumber(v any) any {
	if f, ok := toFloat(v); ok {
		return f
	}

	return v
}
