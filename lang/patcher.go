package lang

import (
	"log/slog"

	"github.com/expr-lang/expr/ast"

	"github.com/MOARdV/AvionicsSystems-sub005/log"
)

// numberPatcher rewrites integer literals in a translated program as floats.
//
// Lua has a single number type, so "7 / 2" and "2 ^ 0.5" must never fall
// back to integer arithmetic, and arguments passed to float64 parameters such
// as math.floor(3) must type-check.
type numberPatcher struct {
	logger log.Logger
	count  int
}

// Visit implements ast.Visitor for numberPatcher.
func (p *numberPatcher) Visit(node *ast.Node) {
	n, ok := (*node).(*ast.IntegerNode)
	if !ok {
		return
	}

	ast.Patch(node, &ast.FloatNode{Value: float64(n.Value)})

	p.count++

	p.logger.Trace("patched integer literal",
		slog.Int("value", n.Value))
}
