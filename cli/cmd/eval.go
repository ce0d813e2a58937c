package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/MOARdV/AvionicsSystems-sub005/lang"
	"github.com/MOARdV/AvionicsSystems-sub005/pkg"
)

// Bindings holds the variable flags shared by the eval and repl commands.
type Bindings struct {
	Vars     []string `help:"Bind a variable; dotted names create nested tables." name:"var"      placeholder:"NAME=VALUE" short:"v"`
	VarsFile string   `help:"YAML file of variable bindings."                     name:"var-file" placeholder:"FILE"       type:"existingfile"`
}

// Env returns the built-in environment extended with the bindings from the
// variables file and then the --var flags, in that order.
func (b *Bindings) Env(ctx context.Context) (lang.Env, error) {
	env := lang.Builtins()

	if b.VarsFile != "" {
		file, err := os.Open(b.VarsFile)
		if err != nil {
			return nil, pkg.ErrReadInput.Wrap(err)
		}
		defer file.Close()

		if err := env.LoadYAML(ctx, file); err != nil {
			return nil, pkg.ErrInvalidBinding.Wrap(err)
		}
	}

	for _, v := range b.Vars {
		if err := env.Bind(v); err != nil {
			return nil, pkg.ErrInvalidBinding.Wrap(err)
		}
	}

	return env, nil
}

// Eval compiles and evaluates expressions, printing one value per line.
type Eval struct {
	Bindings `embed:""`

	Exprs []string `arg:"" help:"Expressions to evaluate (default: one per line of input)." name:"expr" optional:""`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts, err := compileOptions(ctx)
	if err != nil {
		return err
	}

	env, err := e.Env(ctx)
	if err != nil {
		return err
	}

	gen := lang.NewGenerator(env, opts...)
	out := outputFrom(ctx)
	total := 0

	err = eachSource(ctx, e.Exprs, func(line int, source string) error {
		total++

		value, err := gen.Eval(ctx, source, opts...)
		if err != nil {
			return ErrEvaluate.Wrap(err).With(
				slog.Int("line", line),
				slog.String("expr", source),
			)
		}

		_, err = fmt.Fprintln(out, lang.FormatValue(value))

		return err
	})
	if err != nil {
		return err
	}

	if total == 0 {
		return ErrNoExpressions
	}

	return nil
}
