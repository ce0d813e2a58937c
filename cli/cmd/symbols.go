package cmd

import (
	"context"

	"github.com/MOARdV/AvionicsSystems-sub005/pkg"
)

// Symbols prints the active symbol table in the format read by --symbols.
type Symbols struct{}

// Run executes the symbols command.
func (s *Symbols) Run(ctx context.Context) error {
	if err := symbolsFrom(ctx).WriteYAML(ctx, outputFrom(ctx)); err != nil {
		return pkg.ErrYAMLMarshal.Wrap(err)
	}

	return nil
}
