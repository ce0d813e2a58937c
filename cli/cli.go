package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/MOARdV/AvionicsSystems-sub005/cli/cmd"
	"github.com/MOARdV/AvionicsSystems-sub005/lang"
	"github.com/MOARdV/AvionicsSystems-sub005/log"
	"github.com/MOARdV/AvionicsSystems-sub005/pkg"
)

// CLI is the top-level command-line interface for masexpr.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Source     []string `help:"Input source file(s) or '-' for stdin."                         name:"source"      short:"s"             type:"existingfile"`
	Symbols    string   `help:"Symbol table file (YAML), searched for in the symbol path."   name:"symbols"     placeholder:"FILE"`
	SymbolPath []string `help:"Directories searched for the symbol table before ${symbolEnv}." name:"symbol-path" placeholder:"DIR"       type:"path"`

	Version kong.VersionFlag `help:"Print version and exit."`

	Compile cmd.Compile `cmd:"" default:"withargs" help:"Compile and classify expressions"`
	Eval    cmd.Eval    `cmd:""                    help:"Evaluate expressions"`
	Fmt     cmd.Fmt     `cmd:""                    help:"Format compiled expressions"`
	Symtab  cmd.Symbols `cmd:""                    help:"Print the active symbol table" name:"symbols"`
	Repl    cmd.Repl    `cmd:""                    help:"Start an interactive session"`
	Init    cmd.Init    `cmd:""                    help:"Initialize configuration file"`
}

// Run executes the masexpr CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig + ".yaml")

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
		"version":            pkg.Version,
		"symbolEnv":          symbolPathEnv(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags so that errors reported while parsing are
	// already formatted as requested.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cli.Log.start(ctx)

	stop, err := cli.Pprof.start(ctx)
	if err != nil {
		return err
	}
	defer stop()

	symbols, err := cli.loadSymbols(ctx)
	if err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSourceFiles(ctx, cli.Source)

	if symbols != nil {
		ctx = cmd.WithSymbols(ctx, symbols)
	}

	return ktx.Run(ctx, &cli)
}

// loadSymbols reads the symbol table named by --symbols. Without the flag,
// the default symbol file is used if one exists in the search path, and
// the built-in table otherwise (indicated by a nil table).
func (c *CLI) loadSymbols(ctx context.Context) (lang.SymbolTable, error) {
	name := c.Symbols
	if name == "" {
		name = baseSymbols
	}

	path, err := findSymbols(name, c.SymbolPath)
	if err != nil {
		if c.Symbols == "" {
			return nil, nil //nolint:nilnil
		}

		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, pkg.ErrReadInput.Wrap(err)
	}
	defer file.Close()

	symbols, err := lang.LoadSymbols(ctx, file)
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "symbol table loaded",
		slog.String("path", path),
		slog.Int("symbols", len(symbols)))

	return symbols, nil
}
