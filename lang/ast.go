package lang

import (
	"iter"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Type is the statically known result type of an [Expr].
type Type int

const (
	TypeDynamic Type = iota // dynamic
	TypeNumber              // number
	TypeString              // string
	TypeBoolean             // boolean
)

// String returns the lowercase name of t.
func (t Type) String() string {
	switch t {
	case TypeDynamic:
		return "dynamic"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeBoolean:
		return "boolean"
	default:
		return "Type(" + strconv.Itoa(int(t)) + ")"
	}
}

// Variant identifies the concrete node type of an [Expr].
type Variant int

const (
	VariantNumber Variant = iota // number
	VariantString                // string
	VariantName                  // name
	VariantPrefix                // prefix
	VariantBinary                // binary
	VariantDot                   // dot
	VariantCall                  // call
	VariantGroup                 // group
)

// String returns the lowercase name of v.
func (v Variant) String() string {
	switch v {
	case VariantNumber:
		return "number"
	case VariantString:
		return "string"
	case VariantName:
		return "name"
	case VariantPrefix:
		return "prefix"
	case VariantBinary:
		return "binary"
	case VariantDot:
		return "dot"
	case VariantCall:
		return "call"
	case VariantGroup:
		return "group"
	default:
		return "Variant(" + strconv.Itoa(int(v)) + ")"
	}
}

// Expr is a node of an expression tree.
//
// The set of implementations is closed: [*Number], [*String], [*Name],
// [*Prefix], [*Binary], [*Dot], [*Call], and [*Group]. Nodes are immutable
// once constructed. The canonical name and type of every node are computed
// by its constructor and never change.
type Expr interface {
	// Canonical returns the deterministic, fully parenthesized spelling of
	// the expression. Two trees with the same canonical name are equivalent.
	Canonical() string
	// Type returns the statically known result type of the expression.
	Type() Type
	// Variant identifies the concrete node type.
	Variant() Variant

	children() []Expr
}

// node holds the cached attributes shared by every expression.
type node struct {
	canonical string
	typ       Type
}

func (n node) Canonical() string { return n.canonical }
func (n node) Type() Type { return n.typ }

// Number is a numeric literal.
type Number struct {
	node
	value float64
}

// NewNumber returns a numeric literal.
func NewNumber(value float64) *Number {
	return &Number{
		node:  node{canonical: FormatNumber(value), typ: TypeNumber},
		value: value,
	}
}

// FormatNumber returns the shortest decimal spelling of v that parses back to
// v, e.g. "3", "0.5", or "1e+21".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (*Number) Variant() Variant { return VariantNumber }
func (*Number) children() []Expr { return nil }
func (n *Number) Value() float64 { return n.value }
func (n *Number) String() string { return n.canonical }

// String is a string literal. Its canonical name is the literal source text
// including the surrounding delimiters.
type String struct {
	node
	value string
}

// NewString returns a string literal from its source text, which must begin
// and end with the same one-character delimiter.
func NewString(text string) *String {
	return &String{
		node:  node{canonical: text, typ: TypeString},
		value: unquote(text),
	}
}

// unquote strips the delimiter rune from both ends of text.
// Escape sequences are left untouched.
func unquote(text string) string {
	_, head := utf8.DecodeRuneInString(text)
	_, tail := utf8.DecodeLastRuneInString(text)

	if head+tail > len(text) {
		return ""
	}

	return text[head : len(text)-tail]
}

func (*String) Variant() Variant { return VariantString }
func (*String) children() []Expr { return nil }
func (s *String) String() string { return s.canonical }

// Value returns the contents of the literal between its delimiters, exactly
// as written in source.
func (s *String) Value() string { return s.value }

// Name is an identifier reference.
type Name struct {
	node
}

// NewName returns an identifier reference.
func NewName(ident string) *Name {
	return &Name{node: node{canonical: ident, typ: TypeDynamic}}
}

func (*Name) Variant() Variant { return VariantName }
func (*Name) children() []Expr { return nil }
func (n *Name) Ident() string { return n.canonical }
func (n *Name) String() string { return n.canonical }

// Prefix is a unary operator applied to an operand.
type Prefix struct {
	node
	operand Expr
	op      Kind
}

// NewPrefix returns op applied to operand. The op must be one of
// [KindPlus], [KindMinus], or [KindNot].
func NewPrefix(op Kind, operand Expr) *Prefix {
	sep := ""
	if op == KindNot {
		sep = " "
	}

	return &Prefix{
		node: node{
			canonical: "(" + op.String() + sep + operand.Canonical() + ")",
			typ:       operatorType(op),
		},
		operand: operand,
		op:      op,
	}
}

func (*Prefix) Variant() Variant { return VariantPrefix }
func (p *Prefix) children() []Expr { return []Expr{p.operand} }
func (p *Prefix) Op() Kind { return p.op }
func (p *Prefix) Operand() Expr { return p.operand }
func (p *Prefix) String() string { return p.canonical }

// Binary is an infix operator applied to two operands.
type Binary struct {
	node
	left  Expr
	right Expr
	op    Kind
}

// NewBinary returns left op right.
func NewBinary(left Expr, op Kind, right Expr) *Binary {
	return &Binary{
		node: node{
			canonical: "(" + left.Canonical() + " " + op.String() + " " +
				right.Canonical() + ")",
			typ: operatorType(op),
		},
		left:  left,
		right: right,
		op:    op,
	}
}

func (*Binary) Variant() Variant { return VariantBinary }
func (b *Binary) children() []Expr { return []Expr{b.left, b.right} }
func (b *Binary) Left() Expr { return b.left }
func (b *Binary) Op() Kind { return b.op }
func (b *Binary) Right() Expr { return b.right }
func (b *Binary) String() string { return b.canonical }

// Dot is a member access.
type Dot struct {
	node
	left  Expr
	right *Name
}

// NewDot returns the member right of left.
func NewDot(left Expr, right *Name) *Dot {
	return &Dot{
		node: node{
			canonical: left.Canonical() + "." + right.Canonical(),
			typ:       TypeDynamic,
		},
		left:  left,
		right: right,
	}
}

func (*Dot) Variant() Variant { return VariantDot }
func (d *Dot) children() []Expr { return []Expr{d.left, d.right} }
func (d *Dot) Left() Expr { return d.left }
func (d *Dot) Right() *Name { return d.right }
func (d *Dot) String() string { return d.canonical }

// Call is a function call.
type Call struct {
	node
	callee Expr
	args   []Expr
}

// NewCall returns callee applied to args.
func NewCall(callee Expr, args ...Expr) *Call {
	var b strings.Builder

	b.WriteString(callee.Canonical())
	b.WriteByte('(')

	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(arg.Canonical())
	}

	b.WriteByte(')')

	return &Call{
		node:   node{canonical: b.String(), typ: TypeDynamic},
		callee: callee,
		args:   slices.Clone(args),
	}
}

func (*Call) Variant() Variant { return VariantCall }

func (c *Call) children() []Expr {
	return append([]Expr{c.callee}, c.args...)
}

func (c *Call) Callee() Expr { return c.callee }
func (c *Call) NumArgs() int { return len(c.args) }
func (c *Call) Arg(i int) Expr { return c.args[i] }
func (c *Call) String() string { return c.canonical }

// Args returns an iterator over the call arguments in source order.
func (c *Call) Args() iter.Seq2[int, Expr] {
	return slices.All(c.args)
}

// Group is a parenthesized expression. It is transparent: its canonical name
// and type are those of its inner expression.
type Group struct {
	node
	inner Expr
}

// NewGroup returns inner wrapped in parentheses.
func NewGroup(inner Expr) *Group {
	return &Group{
		node:  node{canonical: inner.Canonical(), typ: inner.Type()},
		inner: inner,
	}
}

func (*Group) Variant() Variant { return VariantGroup }
func (g *Group) children() []Expr { return []Expr{g.inner} }
func (g *Group) Inner() Expr { return g.inner }
func (g *Group) String() string { return g.canonical }

// operatorType returns the result type of an operator.
func operatorType(op Kind) Type {
	switch op {
	case KindPlus, KindMinus, KindStar, KindSlash, KindPercent, KindCaret:
		return TypeNumber
	case KindConcat:
		return TypeString
	case KindEq, KindNotEq, KindLess, KindLessEq, KindGreater, KindGreaterEq,
		KindAnd, KindOr, KindNot:
		return TypeBoolean
	default:
		return TypeDynamic
	}
}

// Walk visits e and its descendants in depth-first pre-order.
// If fn returns false, the children of that node are skipped.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}

	for _, c := range e.children() {
		Walk(c, fn)
	}
}

// All returns an iterator over e and its descendants in depth-first
// pre-order.
func All(e Expr) iter.Seq[Expr] {
	return func(yield func(Expr) bool) {
		stop := false

		Walk(e, func(x Expr) bool {
			if stop {
				return false
			}

			stop = !yield(x)

			return !stop
		})
	}
}

// Names returns the sorted, distinct variable references of e.
//
// A chain of member accesses on a name, such as fc.GetThrottle, is reported
// as one dotted reference. The callee of a call is included.
func Names(e Expr) []string {
	seen := map[string]struct{}{}

	collectNames(e, seen)

	return slices.Sorted(maps.Keys(seen))
}

func collectNames(e Expr, seen map[string]struct{}) {
	switch n := e.(type) {
	case nil:

	case *Name:
		seen[n.Ident()] = struct{}{}

	case *Dot:
		if path, ok := dottedPath(n); ok {
			seen[path] = struct{}{}

			return
		}

		// The member name is not a reference on its own.
		collectNames(n.Left(), seen)

	default:
		for _, c := range e.children() {
			collectNames(c, seen)
		}
	}
}

// dottedPath returns the dotted spelling of a member chain rooted at a name.
func dottedPath(d *Dot) (string, bool) {
	switch left := d.Left().(type) {
	case *Name:
		return left.Ident() + "." + d.Right().Ident(), true
	case *Dot:
		if path, ok := dottedPath(left); ok {
			return path + "." + d.Right().Ident(), true
		}
	}

	return "", false
}
