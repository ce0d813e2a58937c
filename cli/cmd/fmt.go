package cmd

import (
	"context"
	"io"

	"github.com/MOARdV/AvionicsSystems-sub005/lang"
	"github.com/MOARdV/AvionicsSystems-sub005/pkg"
)

// Fmt compiles expressions and prints each result in the chosen format.
type Fmt struct {
	Canonical Canonical `cmd:"" default:"withargs" help:"Print canonical names (default)."`
	JSON      JSON      `cmd:""                    help:"Format as JSON."`
	YAML      YAML      `cmd:""                    help:"Format as YAML."`
	Tree      Tree      `cmd:""                    help:"Format as an indented expression tree."`
}

// formatter writes a single result.
type formatter func(ctx context.Context, w io.Writer, res lang.Result) error

// formatEach compiles every expression and writes it with format. Results
// are separated by sep. Failed compiles are written like any other result
// and reported together once all expressions are written.
func formatEach(
	ctx context.Context,
	exprs []string,
	sep string,
	format formatter,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts, err := compileOptions(ctx)
	if err != nil {
		return err
	}

	out := outputFrom(ctx)

	var total, failed int

	err = eachSource(ctx, exprs, func(_ int, source string) error {
		if total > 0 && sep != "" {
			if _, err := io.WriteString(out, sep); err != nil {
				return err
			}
		}

		total++

		res := lang.CompileCached(ctx, source, opts...)
		if res.Kind == lang.ResultError {
			failed++
		}

		return format(ctx, out, res)
	})
	if err != nil {
		return err
	}

	switch {
	case total == 0:
		return ErrNoExpressions
	case failed > 0:
		return pkg.ErrCompile.Wrapf("%d of %d expressions", failed, total)
	default:
		return nil
	}
}

// Canonical prints the canonical name of each expression.
type Canonical struct {
	Exprs []string `arg:"" help:"Expressions to format (default: one per line of input)." name:"expr" optional:""`
}

// Run executes the canonical command.
func (c *Canonical) Run(ctx context.Context) error {
	return formatEach(ctx, c.Exprs, "",
		func(ctx context.Context, w io.Writer, res lang.Result) error {
			return res.Format(ctx, w)
		})
}

// JSON prints each result as a JSON document.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output (0 for compact)." short:"i"`

	Exprs []string `arg:"" help:"Expressions to format (default: one per line of input)." name:"expr" optional:""`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error {
	return formatEach(ctx, j.Exprs, "",
		func(ctx context.Context, w io.Writer, res lang.Result) error {
			err := res.FormatJSON(ctx, w, j.Indent)
			if err != nil {
				return pkg.ErrJSONMarshal.Wrap(err)
			}

			return nil
		})
}

// YAML prints each result as a YAML document.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output (0 for flow style)." short:"i"`

	Exprs []string `arg:"" help:"Expressions to format (default: one per line of input)." name:"expr" optional:""`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error {
	return formatEach(ctx, y.Exprs, "---\n",
		func(ctx context.Context, w io.Writer, res lang.Result) error {
			err := res.FormatYAML(ctx, w, y.Indent)
			if err != nil {
				return pkg.ErrYAMLMarshal.Wrap(err)
			}

			return nil
		})
}

// Tree prints each expression as an indented tree of nodes.
type Tree struct {
	Indent int `default:"2" help:"Indent width for nested nodes." short:"i"`

	Exprs []string `arg:"" help:"Expressions to format (default: one per line of input)." name:"expr" optional:""`
}

// Run executes the tree command.
func (t *Tree) Run(ctx context.Context) error {
	return formatEach(ctx, t.Exprs, "\n",
		func(ctx context.Context, w io.Writer, res lang.Result) error {
			return res.FormatTree(ctx, w, t.Indent)
		})
}
