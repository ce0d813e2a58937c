package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/MOARdV/AvionicsSystems-sub005/lang"
	"github.com/MOARdV/AvionicsSystems-sub005/log"
	"github.com/MOARdV/AvionicsSystems-sub005/pkg"
)

// Compile compiles expressions and prints the classification of each.
type Compile struct {
	Exprs   []string `arg:"" help:"Expressions to compile (default: one per line of input)." name:"expr" optional:""`
	Whole   bool     `       help:"Compile the entire input as one expression."                             short:"w"`
	Names   bool     `       help:"List the names referenced by each expression tree."                      short:"n"`
	NoCache bool     `       help:"Compile every expression, bypassing the result cache."`
}

// Run executes the compile command.
func (c *Compile) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts, err := compileOptions(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(outputFrom(ctx), 0, 4, 2, ' ', 0)

	var total, failed int

	emit := func(line int, res lang.Result) error {
		total++

		if res.Kind == lang.ResultError {
			failed++

			log.DebugContext(ctx, "expression rejected",
				slog.Int("line", line),
				slog.String("source", res.Source))
		}

		return c.write(tw, res)
	}

	if c.Whole {
		res := c.compileWhole(ctx, opts)
		if err := emit(1, res); err != nil {
			return err
		}
	} else {
		err = eachSource(ctx, c.Exprs, func(line int, source string) error {
			return emit(line, c.compile(ctx, source, opts))
		})
		if err != nil {
			return err
		}
	}

	if err := tw.Flush(); err != nil {
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

func (c *Compile) compile(
	ctx context.Context,
	source string,
	opts []lang.Option,
) lang.Result {
	if c.NoCache {
		return lang.Compile(ctx, source, opts...)
	}

	return lang.CompileCached(ctx, source, opts...)
}

func (c *Compile) compileWhole(ctx context.Context, opts []lang.Option) lang.Result {
	if len(c.Exprs) > 0 {
		return c.compile(ctx, strings.Join(c.Exprs, " "), opts)
	}

	return lang.CompileReader(ctx, inputReader(ctx), opts...)
}

// write prints one result as tab-separated columns: the result kind, the
// canonical name, and the folded value, the referenced names, or the error.
func (c *Compile) write(w io.Writer, res lang.Result) error {
	var detail string

	switch res.Kind {
	case lang.ResultNumber:
		detail = lang.FormatNumber(res.Number)
	case lang.ResultString:
		detail = strconv.Quote(res.String)
	case lang.ResultTree:
		if c.Names {
			detail = strings.Join(lang.Names(res.Tree), " ")
		}
	case lang.ResultError:
		detail = res.Err.Error()
	}

	if detail == "" {
		_, err := fmt.Fprintf(w, "%s\t%s\n", res.Kind, oneLine(res.Canonical))

		return err
	}

	_, err := fmt.Fprintf(w, "%s\t%s\t%s\n",
		res.Kind, oneLine(res.Canonical), detail)

	return err
}

// oneLine replaces line breaks so that multi-line sources stay in one row.
func oneLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
