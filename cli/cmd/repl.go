package cmd

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/MOARdV/AvionicsSystems-sub005/cli/cmd/repl"
	"github.com/MOARdV/AvionicsSystems-sub005/log"
)

// Repl starts an interactive session that compiles and evaluates each line.
type Repl struct {
	Bindings `embed:""`

	NoHistory bool `help:"Do not read or write the history file."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts, err := compileOptions(ctx)
	if err != nil {
		return err
	}

	env, err := r.Env(ctx)
	if err != nil {
		return err
	}

	cfg := repl.Config{
		Env:     env,
		Options: opts,
		Symbols: symbolsFrom(ctx),
		Logger:  log.Default().With(slog.String("cmd", "repl")),
	}

	if ktx := kongContextFrom(ctx); ktx != nil && !r.NoHistory {
		if dir, ok := ktx.Model.Vars()[CacheIdentifier]; ok && dir != "" {
			cfg.HistoryPath = filepath.Join(dir, repl.HistoryFile)
		}
	}

	return repl.Run(ctx, cfg)
}
